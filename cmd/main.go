package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"assessment-service/internal/analytics"
	"assessment-service/internal/config"
	"assessment-service/internal/database/mongo"
	"assessment-service/internal/database/redis"
	"assessment-service/internal/event"
	"assessment-service/internal/grading"
	grpcserver "assessment-service/internal/grpc"
	"assessment-service/internal/handlers"
	"assessment-service/internal/middleware"
	"assessment-service/internal/repository"
	"assessment-service/internal/repository/memory"
	"assessment-service/internal/services"
	"assessment-service/pkg/discovery"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func setupLogging(logDir string) (*os.File, error) {
	err := os.MkdirAll(logDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	return file, nil
}

type stores struct {
	questions services.QuestionStore
	tests     services.TestStore
	attempts  services.AttemptStore
	results   services.ResultStore
	lock      services.GradingLock
	healthy   grpcserver.Probe
}

type indexed interface {
	InitializeIndexes(ctx context.Context) error
}

func openStores(cfg *config.Config) (*stores, error) {
	if cfg.Storage.Driver == "memory" {
		log.Println("Using in-memory storage")
		store := memory.NewStore()
		return &stores{
			questions: store.Questions(),
			tests:     store.Tests(),
			attempts:  store.Attempts(),
			results:   store.Results(),
			lock:      store.Locks(),
		}, nil
	}

	if err := mongo.Connect(cfg.MongoDB); err != nil {
		return nil, err
	}
	questionRepo := repository.NewQuestionRepository(mongo.Mongo_Database, "questions")
	testRepo := repository.NewTestRepository(mongo.Mongo_Database, "tests")
	attemptRepo := repository.NewAttemptRepository(mongo.Mongo_Database, "attempts")
	resultRepo := repository.NewResultRepository(mongo.Mongo_Database, "results")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	log.Println("Creating database indexes...")
	for _, repo := range []indexed{questionRepo, testRepo, attemptRepo, resultRepo} {
		if err := repo.InitializeIndexes(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize indexes: %w", err)
		}
	}
	log.Println("Database indexes created successfully")

	return &stores{
		questions: questionRepo,
		tests:     testRepo,
		attempts:  attemptRepo,
		results:   resultRepo,
		lock:      repository.NewLockRepository(redis.Connect(cfg.Redis), cfg.Server.ServiceName+":"),
		healthy:   mongo.IsConnected,
	}, nil
}

func main() {
	cfg := config.ServiceConfig

	logFile, err := setupLogging(cfg.Server.LogDir)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	st, err := openStores(cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}

	// Initialize event publisher
	eventPublisher, err := event.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange)
	if err != nil {
		log.Printf("Warning: Failed to initialize event publisher, events are disabled: %v", err)
		eventPublisher, _ = event.NewEventPublisher("", cfg.RabbitMQ.Exchange)
	}

	// Initialize services
	questionService := services.NewQuestionService(st.questions, st.tests)
	testService := services.NewTestService(st.tests, st.questions, eventPublisher, cfg.Grading.DefaultPassingScore)
	gradingService := services.NewGradingService(
		st.attempts, st.tests, st.questions, st.results, st.lock, eventPublisher,
		grading.NewEngine(grading.WithClock(time.Now)),
		cfg.Grading,
	)
	attemptService := services.NewAttemptService(st.attempts, st.tests, st.questions, gradingService, eventPublisher)
	resultService := services.NewResultService(st.results, st.tests)
	analyticsService := services.NewAnalyticsService(st.tests, st.attempts, st.results, analytics.DashboardPolicy{
		MinPassingRate:    cfg.Analytics.MinPassingRate,
		MinCompletionRate: cfg.Analytics.MinCompletionRate,
		TopN:              cfg.Analytics.TopTests,
	})

	// Initialize event consumer for generated questions
	eventConsumer, err := event.NewEventConsumer(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.QueueName, questionService)
	if err != nil {
		log.Printf("Warning: Failed to initialize event consumer: %v", err)
	} else if err := eventConsumer.Start(); err != nil {
		log.Printf("Warning: Failed to start event consumer: %v", err)
		eventConsumer.Close()
		eventConsumer = nil
	} else {
		log.Println("Successfully started event consumer for generated questions")
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"*"},
	}))
	app.Use(middleware.RequestLogger())

	app.Get("/health", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("Assessment Service is healthy")
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	auth := middleware.Authenticate(cfg.Auth)
	handlers.NewQuestionHandler(questionService).RegisterRoutes(app, auth)
	handlers.NewTestHandler(testService).RegisterRoutes(app, auth)
	handlers.NewAttemptHandler(attemptService, gradingService).RegisterRoutes(app, auth)
	handlers.NewResultHandler(resultService).RegisterRoutes(app, auth)
	handlers.NewAnalyticsHandler(analyticsService).RegisterRoutes(app, auth)

	// gRPC health endpoint
	healthServer := grpcserver.NewHealthServer(cfg.Server.ServiceName, st.healthy)
	watchCtx, stopWatch := context.WithCancel(context.Background())
	go healthServer.Watch(watchCtx, 15*time.Second)
	go func() {
		lis, err := net.Listen("tcp", fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.GRPCPort))
		if err != nil {
			log.Printf("Failed to listen for gRPC: %v", err)
			return
		}
		log.Printf("Starting gRPC server on port %s", cfg.Server.GRPCPort)
		if err := healthServer.Server.Serve(lis); err != nil {
			log.Printf("gRPC server error: %v", err)
		}
	}()

	// Register with service discovery
	if cfg.Consul.Enabled {
		registry, err := discovery.NewServiceRegistry(cfg)
		if err != nil {
			log.Printf("Warning: Service discovery init failed: %v", err)
		} else if err := registry.Register(); err != nil {
			log.Printf("Warning: %v", err)
		} else {
			discovery.ServiceDiscovery = registry
		}
	}

	shutdownChan := make(chan os.Signal, 1)
	doneChan := make(chan bool, 1)

	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := app.Listen(fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
		doneChan <- true
	}()

	<-shutdownChan
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	stopWatch()
	healthServer.Shutdown()

	if eventConsumer != nil {
		if err := eventConsumer.Close(); err != nil {
			log.Printf("Error closing event consumer: %v", err)
		}
	}
	if err := eventPublisher.Close(); err != nil {
		log.Printf("Error closing event publisher: %v", err)
	}

	mongo.DisconnectMongo()
	redis.Close()

	if discovery.ServiceDiscovery != nil {
		if err := discovery.ServiceDiscovery.Deregister(); err != nil {
			log.Printf("Error deregistering from service discovery: %v", err)
		}
	}

	<-doneChan
	log.Println("Server shutdown complete")
}
