package handlers

import (
	"context"
	"time"

	"assessment-service/internal/middleware"
	"assessment-service/internal/services"

	"github.com/gofiber/fiber/v3"
)

type ResultHandler struct {
	resultService *services.ResultService
}

func NewResultHandler(resultService *services.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

func (h *ResultHandler) RegisterRoutes(app *fiber.App, auth fiber.Handler) {
	protectedGroup := app.Group("/protected/results", auth)

	protectedGroup.Get("/", middleware.PermissionRequired(middleware.ReadResultPermission), h.GetMyResults)
	protectedGroup.Get("/attempt/:attemptId", middleware.PermissionRequired(middleware.ReadResultPermission), h.GetResultByAttempt)
	protectedGroup.Get("/test/:testId", middleware.PermissionRequired(middleware.ReadTestResultPermission), h.GetResultsByTest)
}

func (h *ResultHandler) GetMyResults(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results, err := h.resultService.GetResultsByStudent(ctx, middleware.ViewerFrom(c))
	if err != nil {
		return respondError(c, "get results", err)
	}
	return c.JSON(fiber.Map{
		"data":  fiber.Map{"results": results},
		"count": len(results),
	})
}

func (h *ResultHandler) GetResultByAttempt(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.resultService.GetResultByAttempt(ctx, middleware.ViewerFrom(c), c.Params("attemptId"))
	if err != nil {
		return respondError(c, "get result", err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"result": result}})
}

func (h *ResultHandler) GetResultsByTest(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results, err := h.resultService.GetResultsByTest(ctx, middleware.ViewerFrom(c), c.Params("testId"))
	if err != nil {
		return respondError(c, "get test results", err)
	}
	return c.JSON(fiber.Map{
		"data":  fiber.Map{"results": results},
		"count": len(results),
	})
}
