package handlers

import (
	"context"
	"time"

	"assessment-service/internal/middleware"
	"assessment-service/internal/services"

	"github.com/gofiber/fiber/v3"
)

type TestHandler struct {
	testService *services.TestService
}

func NewTestHandler(testService *services.TestService) *TestHandler {
	return &TestHandler{testService: testService}
}

func (h *TestHandler) RegisterRoutes(app *fiber.App, auth fiber.Handler) {
	protectedGroup := app.Group("/protected/tests", auth)

	protectedGroup.Post("/", middleware.PermissionRequired(middleware.WriteTestPermission), h.CreateTest)
	protectedGroup.Get("/", middleware.PermissionRequired(middleware.WriteTestPermission), h.ListTests)
	protectedGroup.Get("/:id", middleware.PermissionRequired(middleware.ReadTestPermission), h.GetTest)
	protectedGroup.Put("/:id", middleware.PermissionRequired(middleware.WriteTestPermission), h.UpdateTest)
	protectedGroup.Post("/:id/questions", middleware.PermissionRequired(middleware.WriteTestPermission), h.AddQuestion)
	protectedGroup.Delete("/:id/questions/:questionId", middleware.PermissionRequired(middleware.WriteTestPermission), h.RemoveQuestion)
	protectedGroup.Post("/:id/publish", middleware.PermissionRequired(middleware.PublishTestPermission), h.PublishTest)
}

func (h *TestHandler) CreateTest(c fiber.Ctx) error {
	var input services.TestInput
	if err := c.Bind().Body(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	test, err := h.testService.CreateTest(ctx, middleware.ViewerFrom(c), input)
	if err != nil {
		return respondError(c, "create test", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Test created successfully",
		"data":    fiber.Map{"test": test},
	})
}

func (h *TestHandler) ListTests(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tests, err := h.testService.ListTests(ctx, middleware.ViewerFrom(c))
	if err != nil {
		return respondError(c, "list tests", err)
	}
	return c.JSON(fiber.Map{
		"data":  fiber.Map{"tests": tests},
		"count": len(tests),
	})
}

func (h *TestHandler) GetTest(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	test, err := h.testService.GetTest(ctx, middleware.ViewerFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, "get test", err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"test": test}})
}

func (h *TestHandler) UpdateTest(c fiber.Ctx) error {
	var input services.TestInput
	if err := c.Bind().Body(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	test, err := h.testService.UpdateTest(ctx, middleware.ViewerFrom(c), c.Params("id"), input)
	if err != nil {
		return respondError(c, "update test", err)
	}
	return c.JSON(fiber.Map{
		"message": "Test updated successfully",
		"data":    fiber.Map{"test": test},
	})
}

func (h *TestHandler) AddQuestion(c fiber.Ctx) error {
	var req struct {
		QuestionID string `json:"question_id"`
	}
	if err := c.Bind().Body(&req); err != nil || req.QuestionID == "" {
		return badRequest(c, "question_id is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	test, err := h.testService.AddQuestion(ctx, middleware.ViewerFrom(c), c.Params("id"), req.QuestionID)
	if err != nil {
		return respondError(c, "add question", err)
	}
	return c.JSON(fiber.Map{
		"message": "Question added successfully",
		"data":    fiber.Map{"test": test},
	})
}

func (h *TestHandler) RemoveQuestion(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	test, err := h.testService.RemoveQuestion(ctx, middleware.ViewerFrom(c), c.Params("id"), c.Params("questionId"))
	if err != nil {
		return respondError(c, "remove question", err)
	}
	return c.JSON(fiber.Map{
		"message": "Question removed successfully",
		"data":    fiber.Map{"test": test},
	})
}

func (h *TestHandler) PublishTest(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	test, err := h.testService.PublishTest(ctx, middleware.ViewerFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, "publish test", err)
	}
	return c.JSON(fiber.Map{
		"message": "Test published successfully",
		"data":    fiber.Map{"test": test},
	})
}
