package handlers

import (
	"context"
	"time"

	"assessment-service/internal/middleware"
	"assessment-service/internal/services"

	"github.com/gofiber/fiber/v3"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

func (h *AnalyticsHandler) RegisterRoutes(app *fiber.App, auth fiber.Handler) {
	protectedGroup := app.Group("/protected/analytics", auth)

	protectedGroup.Get("/tests/:testId/summary", middleware.PermissionRequired(middleware.ReadAnalyticsPermission), h.GetTestSummary)
	protectedGroup.Get("/tests/:testId/questions", middleware.PermissionRequired(middleware.ReadAnalyticsPermission), h.GetTestQuestionAnalytics)
	protectedGroup.Get("/tests/:testId/questions/:questionId", middleware.PermissionRequired(middleware.ReadAnalyticsPermission), h.GetQuestionAnalytics)
	protectedGroup.Get("/dashboard", middleware.PermissionRequired(middleware.ReadAnalyticsPermission), h.GetMyDashboard)
	protectedGroup.Get("/instructors/:instructorId/dashboard", middleware.PermissionRequired(middleware.ReadAllAnalyticsPermission), h.GetInstructorDashboard)
}

func (h *AnalyticsHandler) GetTestSummary(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	summary, err := h.analyticsService.TestSummary(ctx, middleware.ViewerFrom(c), c.Params("testId"))
	if err != nil {
		return respondError(c, "compute test summary", err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"summary": summary}})
}

func (h *AnalyticsHandler) GetTestQuestionAnalytics(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	questions, err := h.analyticsService.TestQuestionAnalytics(ctx, middleware.ViewerFrom(c), c.Params("testId"))
	if err != nil {
		return respondError(c, "compute question analytics", err)
	}
	return c.JSON(fiber.Map{
		"data":  fiber.Map{"questions": questions},
		"count": len(questions),
	})
}

func (h *AnalyticsHandler) GetQuestionAnalytics(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	qa, err := h.analyticsService.QuestionAnalytics(ctx, middleware.ViewerFrom(c), c.Params("testId"), c.Params("questionId"))
	if err != nil {
		return respondError(c, "compute question analytics", err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"question": qa}})
}

func (h *AnalyticsHandler) GetMyDashboard(c fiber.Ctx) error {
	viewer := middleware.ViewerFrom(c)
	return h.dashboard(c, viewer.UserID)
}

func (h *AnalyticsHandler) GetInstructorDashboard(c fiber.Ctx) error {
	return h.dashboard(c, c.Params("instructorId"))
}

func (h *AnalyticsHandler) dashboard(c fiber.Ctx, instructorID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dashboard, err := h.analyticsService.InstructorDashboard(ctx, middleware.ViewerFrom(c), instructorID)
	if err != nil {
		return respondError(c, "build dashboard", err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"dashboard": dashboard}})
}
