package middleware

import (
	"fmt"
	"log"
	"strings"

	"assessment-service/internal/config"
	"assessment-service/internal/models"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
)

const (
	localUserID      = "userID"
	localRole        = "role"
	localPermissions = "permissions"
)

type Claims struct {
	jwt.RegisteredClaims
	Id          string   `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

type JWTVerifier struct {
	secretKey []byte
}

func NewJWTVerifier(jwtSecret string) *JWTVerifier {
	return &JWTVerifier{secretKey: []byte(jwtSecret)}
}

func (v *JWTVerifier) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return v.secretKey, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.Id == "" {
		claims.Id = claims.Subject
	}
	if claims.Id == "" {
		return nil, fmt.Errorf("token has no user id")
	}
	return claims, nil
}

// Authenticate resolves the caller from a bearer token, or from the
// X-User-ID, X-User-Role and X-User-Permissions headers when the gateway is
// trusted, and stores the identity in the request locals.
func Authenticate(cfg config.AuthConfig) fiber.Handler {
	verifier := NewJWTVerifier(cfg.JWTSecret)

	return func(c fiber.Ctx) error {
		var userID, role string
		var permissions []string

		if header := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(header, "Bearer ") {
			claims, err := verifier.VerifyToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				log.Printf("Rejected token from %s: %v", c.IP(), err)
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Unauthorized",
				})
			}
			userID, role, permissions = claims.Id, claims.Role, claims.Permissions
		} else if cfg.TrustGatewayHeaders && c.Get("X-User-ID") != "" {
			userID = c.Get("X-User-ID")
			role = c.Get("X-User-Role")
			if raw := c.Get("X-User-Permissions"); raw != "" {
				for _, perm := range strings.Split(raw, ",") {
					if perm = strings.TrimSpace(perm); perm != "" {
						permissions = append(permissions, perm)
					}
				}
			}
		} else {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		if role == "" {
			role = models.RoleStudent
		}
		permissions = append(permissions, RolePermissions[role]...)

		c.Locals(localUserID, userID)
		c.Locals(localRole, role)
		c.Locals(localPermissions, permissions)
		return c.Next()
	}
}

// ViewerFrom returns the identity Authenticate stored for the request.
func ViewerFrom(c fiber.Ctx) models.Viewer {
	userID, _ := c.Locals(localUserID).(string)
	role, _ := c.Locals(localRole).(string)
	return models.Viewer{UserID: userID, Role: role}
}
