package handlers

import (
	"context"
	"time"

	"assessment-service/internal/middleware"
	"assessment-service/internal/services"

	"github.com/gofiber/fiber/v3"
)

type AttemptHandler struct {
	attemptService *services.AttemptService
	gradingService *services.GradingService
}

func NewAttemptHandler(attemptService *services.AttemptService, gradingService *services.GradingService) *AttemptHandler {
	return &AttemptHandler{
		attemptService: attemptService,
		gradingService: gradingService,
	}
}

func (h *AttemptHandler) RegisterRoutes(app *fiber.App, auth fiber.Handler) {
	protectedGroup := app.Group("/protected/attempts", auth)

	protectedGroup.Post("/", middleware.PermissionRequired(middleware.TakeTestPermission), h.StartAttempt)
	protectedGroup.Get("/", middleware.PermissionRequired(middleware.TakeTestPermission), h.ListAttempts)
	protectedGroup.Get("/:id", h.GetAttempt)
	protectedGroup.Get("/:id/questions", h.GetAttemptQuestions)
	protectedGroup.Post("/:id/answers", middleware.PermissionRequired(middleware.TakeTestPermission), h.SubmitAnswer)
	protectedGroup.Post("/:id/submit", middleware.PermissionRequired(middleware.TakeTestPermission), h.SubmitAttempt)

	// Instructors regrade attempts of their own tests
	protectedGroup.Post("/:id/regrade", middleware.PermissionRequired(middleware.RegradeAttemptPermission), h.RegradeAttempt)
}

func (h *AttemptHandler) StartAttempt(c fiber.Ctx) error {
	var req struct {
		TestID string `json:"test_id"`
	}
	if err := c.Bind().Body(&req); err != nil || req.TestID == "" {
		return badRequest(c, "test_id is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	attempt, err := h.attemptService.StartAttempt(ctx, middleware.ViewerFrom(c), req.TestID)
	if err != nil {
		return respondError(c, "start attempt", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Attempt started",
		"data":    fiber.Map{"attempt": attempt},
	})
}

func (h *AttemptHandler) ListAttempts(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	attempts, err := h.attemptService.ListAttempts(ctx, middleware.ViewerFrom(c))
	if err != nil {
		return respondError(c, "list attempts", err)
	}
	return c.JSON(fiber.Map{
		"data":  fiber.Map{"attempts": attempts},
		"count": len(attempts),
	})
}

func (h *AttemptHandler) GetAttempt(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	attempt, err := h.attemptService.GetAttempt(ctx, middleware.ViewerFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, "get attempt", err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"attempt": attempt}})
}

func (h *AttemptHandler) GetAttemptQuestions(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	questions, err := h.attemptService.AttemptQuestions(ctx, middleware.ViewerFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, "get attempt questions", err)
	}
	return c.JSON(fiber.Map{
		"data":  fiber.Map{"questions": questions},
		"count": len(questions),
	})
}

func (h *AttemptHandler) SubmitAnswer(c fiber.Ctx) error {
	var input services.AnswerInput
	if err := c.Bind().Body(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	attempt, err := h.attemptService.SubmitAnswer(ctx, middleware.ViewerFrom(c), c.Params("id"), input)
	if err != nil {
		return respondError(c, "submit answer", err)
	}
	return c.JSON(fiber.Map{
		"message": "Answer recorded",
		"data":    fiber.Map{"attempt": attempt},
	})
}

func (h *AttemptHandler) SubmitAttempt(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := h.attemptService.SubmitAttempt(ctx, middleware.ViewerFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, "submit attempt", err)
	}
	return c.JSON(fiber.Map{
		"message": "Attempt submitted and graded",
		"data":    fiber.Map{"result": result},
	})
}

func (h *AttemptHandler) RegradeAttempt(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := h.gradingService.RegradeAttempt(ctx, middleware.ViewerFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, "regrade attempt", err)
	}
	return c.JSON(fiber.Map{
		"message": "Attempt regraded",
		"data":    fiber.Map{"result": result},
	})
}
