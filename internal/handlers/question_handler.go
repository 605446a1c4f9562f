package handlers

import (
	"context"
	"time"

	"assessment-service/internal/middleware"
	"assessment-service/internal/services"

	"github.com/gofiber/fiber/v3"
)

type QuestionHandler struct {
	questionService *services.QuestionService
}

func NewQuestionHandler(questionService *services.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

func (h *QuestionHandler) RegisterRoutes(app *fiber.App, auth fiber.Handler) {
	protectedGroup := app.Group("/protected/questions", auth)

	protectedGroup.Post("/", middleware.PermissionRequired(middleware.WriteQuestionPermission), h.CreateQuestion)
	protectedGroup.Get("/", middleware.PermissionRequired(middleware.ReadQuestionPermission), h.ListQuestions)
	protectedGroup.Get("/:id", middleware.PermissionRequired(middleware.ReadQuestionPermission), h.GetQuestion)
	protectedGroup.Put("/:id", middleware.PermissionRequired(middleware.WriteQuestionPermission), h.UpdateQuestion)
	protectedGroup.Delete("/:id", middleware.PermissionRequired(middleware.WriteQuestionPermission), h.DeleteQuestion)
}

func (h *QuestionHandler) CreateQuestion(c fiber.Ctx) error {
	var input services.QuestionInput
	if err := c.Bind().Body(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	question, err := h.questionService.CreateQuestion(ctx, middleware.ViewerFrom(c), input)
	if err != nil {
		return respondError(c, "create question", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Question created successfully",
		"data":    fiber.Map{"question": question},
	})
}

func (h *QuestionHandler) ListQuestions(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	questions, err := h.questionService.ListQuestions(ctx, middleware.ViewerFrom(c))
	if err != nil {
		return respondError(c, "list questions", err)
	}

	return c.JSON(fiber.Map{
		"data":  fiber.Map{"questions": questions},
		"count": len(questions),
	})
}

func (h *QuestionHandler) GetQuestion(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	question, err := h.questionService.GetQuestion(ctx, middleware.ViewerFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, "get question", err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"question": question}})
}

func (h *QuestionHandler) UpdateQuestion(c fiber.Ctx) error {
	var input services.QuestionInput
	if err := c.Bind().Body(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	question, err := h.questionService.UpdateQuestion(ctx, middleware.ViewerFrom(c), c.Params("id"), input)
	if err != nil {
		return respondError(c, "update question", err)
	}

	return c.JSON(fiber.Map{
		"message": "Question updated successfully",
		"data":    fiber.Map{"question": question},
	})
}

func (h *QuestionHandler) DeleteQuestion(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.questionService.DeleteQuestion(ctx, middleware.ViewerFrom(c), c.Params("id")); err != nil {
		return respondError(c, "delete question", err)
	}
	return c.JSON(fiber.Map{"message": "Question deleted successfully"})
}
