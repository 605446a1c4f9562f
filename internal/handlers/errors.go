package handlers

import (
	"errors"
	"log"

	"assessment-service/internal/models"

	"github.com/gofiber/fiber/v3"
)

// respondError maps service errors onto HTTP statuses. Messages of
// validation, conflict and access errors are shown to the caller; anything
// else is logged and reported generically.
func respondError(c fiber.Ctx, action string, err error) error {
	log.Printf("Failed to %s: %v", action, err)

	var validationErr *models.ValidationError
	var computationErr *models.ComputationError
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, models.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, models.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &computationErr):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to " + action,
	})
}

func badRequest(c fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}
