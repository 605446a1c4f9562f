package middleware

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
)

// PermissionRequired lets the request through when the caller holds the
// permission, or any admin or manager permission.
func PermissionRequired(requiredPermission string) fiber.Handler {
	return func(c fiber.Ctx) error {
		permissions, _ := c.Locals(localPermissions).([]string)
		for _, perm := range permissions {
			if perm == requiredPermission || strings.HasPrefix(perm, AdminPermission) || strings.HasPrefix(perm, ManagerPermission) {
				return c.Next()
			}
		}

		log.Printf("Permission %s denied for user %v calling %s %s", requiredPermission, c.Locals(localUserID), c.Method(), c.OriginalURL())
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden",
		})
	}
}

// RequestLogger logs one line per request with its status and latency.
func RequestLogger() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		log.Printf("%s %s %s -> %d (%s)", c.IP(), c.Method(), c.OriginalURL(), status, time.Since(start))
		return err
	}
}
