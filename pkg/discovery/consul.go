package discovery

import (
	"fmt"
	"log"
	"slices"
	"strconv"

	"assessment-service/internal/config"

	"github.com/hashicorp/consul/api"
)

type ServiceRegistry struct {
	client *api.Client
	config *config.Config
}

var ServiceDiscovery *ServiceRegistry

func NewServiceRegistry(config *config.Config) (*ServiceRegistry, error) {
	consulConfig := api.DefaultConfig()
	consulConfig.Address = config.Consul.ConsulAddress

	client, err := api.NewClient(consulConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %v", err)
	}

	return &ServiceRegistry{
		client: client,
		config: config,
	}, nil
}

// buildRegistrations describes the HTTP API and the gRPC health endpoint
// as two Consul services sharing one name.
func buildRegistrations(cfg *config.Config) []*api.AgentServiceRegistration {
	httpPort, _ := strconv.Atoi(cfg.Server.Port)
	grpcPort, _ := strconv.Atoi(cfg.Server.GRPCPort)

	return []*api.AgentServiceRegistration{
		{
			ID:      cfg.Server.ServiceID + "-http",
			Name:    cfg.Server.ServiceName,
			Port:    httpPort,
			Address: cfg.Server.ServiceAddress,
			Check: &api.AgentServiceCheck{
				HTTP:     fmt.Sprintf("http://%s:%s/health", cfg.Server.ServiceAddress, cfg.Server.Port),
				Interval: "10s",
				Timeout:  "5s",
			},
			Tags: []string{"assessment", "grading", "http"},
			Meta: map[string]string{
				"protocol": "http",
			},
		},
		{
			ID:      cfg.Server.ServiceID + "-grpc",
			Name:    cfg.Server.ServiceName,
			Port:    grpcPort,
			Address: cfg.Server.ServiceAddress,
			Check: &api.AgentServiceCheck{
				GRPC:     fmt.Sprintf("%s:%s", cfg.Server.ServiceAddress, cfg.Server.GRPCPort),
				Interval: "10s",
				Timeout:  "5s",
			},
			Tags: []string{"assessment", "grading", "grpc"},
			Meta: map[string]string{
				"protocol": "grpc",
			},
		},
	}
}

func (sr *ServiceRegistry) Register() error {
	for _, registration := range buildRegistrations(sr.config) {
		if err := sr.client.Agent().ServiceRegister(registration); err != nil {
			return fmt.Errorf("failed to register %s with Consul: %v", registration.ID, err)
		}
	}

	log.Println("Successfully registered HTTP and gRPC services with Consul")
	return nil
}

func (sr *ServiceRegistry) Deregister() error {
	for _, registration := range buildRegistrations(sr.config) {
		if err := sr.client.Agent().ServiceDeregister(registration.ID); err != nil {
			log.Printf("Error deregistering %s: %v", registration.ID, err)
		}
	}
	return nil
}

// FindService looks up the healthy instances of a service in Consul
func (sr *ServiceRegistry) FindService(serviceName string) ([]*api.ServiceEntry, error) {
	services, meta, err := sr.client.Health().Service(serviceName, "", true, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to find service %s: %v", serviceName, err)
	}

	log.Printf("Found %d instances of service %s (ConsulIndex: %d)", len(services), serviceName, meta.LastIndex)

	if len(services) == 0 {
		return nil, fmt.Errorf("no healthy instances of service %s found", serviceName)
	}

	return services, nil
}

func (sr *ServiceRegistry) GetServiceAddress(serviceName string, protocol string) (string, error) {
	services, err := sr.FindService(serviceName)
	if err != nil {
		return "", err
	}

	address, err := selectAddress(services, protocol)
	if err != nil {
		return "", fmt.Errorf("service %s: %w", serviceName, err)
	}
	log.Printf("Using service address: %s (protocol: %s)", address, protocol)
	return address, nil
}

// selectAddress picks the first instance speaking protocol, matched on the
// protocol meta key or a tag. An empty protocol means http.
func selectAddress(services []*api.ServiceEntry, protocol string) (string, error) {
	if protocol == "" {
		protocol = "http"
	}

	for _, service := range services {
		proto, ok := service.Service.Meta["protocol"]
		if (ok && proto == protocol) || slices.Contains(service.Service.Tags, protocol) {
			address := service.Service.Address
			if address == "" && service.Node != nil {
				address = service.Node.Address
			}
			return fmt.Sprintf("%s:%d", address, service.Service.Port), nil
		}
	}
	return "", fmt.Errorf("no healthy instances with protocol %s found", protocol)
}
