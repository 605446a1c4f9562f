package services

import (
	"context"
	"fmt"

	"assessment-service/internal/analytics"
	"assessment-service/internal/models"
)

type AnalyticsService struct {
	tests    TestStore
	attempts AttemptStore
	results  ResultStore
	policy   analytics.DashboardPolicy
}

func NewAnalyticsService(tests TestStore, attempts AttemptStore, results ResultStore, policy analytics.DashboardPolicy) *AnalyticsService {
	return &AnalyticsService{
		tests:    tests,
		attempts: attempts,
		results:  results,
		policy:   policy,
	}
}

func (s *AnalyticsService) TestSummary(ctx context.Context, viewer models.Viewer, testID string) (*models.TestSummary, error) {
	test, err := s.managedTest(ctx, viewer, testID)
	if err != nil {
		return nil, err
	}
	analyticsRequests.WithLabelValues("test_summary").Inc()

	summary, err := s.summarize(ctx, test)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *AnalyticsService) QuestionAnalytics(ctx context.Context, viewer models.Viewer, testID, questionID string) (*models.QuestionAnalytics, error) {
	test, err := s.managedTest(ctx, viewer, testID)
	if err != nil {
		return nil, err
	}
	if !test.HasQuestion(questionID) {
		return nil, fmt.Errorf("question %s on test %s: %w", questionID, testID, models.ErrNotFound)
	}
	analyticsRequests.WithLabelValues("question").Inc()

	results, err := s.results.FindByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	qa, err := analytics.AnalyzeQuestion(questionID, results)
	if err != nil {
		return nil, err
	}
	return &qa, nil
}

// TestQuestionAnalytics analyzes every question of a test in test order.
func (s *AnalyticsService) TestQuestionAnalytics(ctx context.Context, viewer models.Viewer, testID string) ([]models.QuestionAnalytics, error) {
	test, err := s.managedTest(ctx, viewer, testID)
	if err != nil {
		return nil, err
	}
	analyticsRequests.WithLabelValues("test_questions").Inc()

	results, err := s.results.FindByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	out := make([]models.QuestionAnalytics, 0, len(test.QuestionIDs))
	for _, qid := range test.QuestionIDs {
		qa, err := analytics.AnalyzeQuestion(qid, results)
		if err != nil {
			return nil, err
		}
		out = append(out, qa)
	}
	return out, nil
}

// InstructorDashboard aggregates every test the instructor created.
func (s *AnalyticsService) InstructorDashboard(ctx context.Context, viewer models.Viewer, instructorID string) (*models.InstructorDashboard, error) {
	if !viewer.CanManage(instructorID) {
		return nil, forbidden("dashboard of %s", instructorID)
	}
	analyticsRequests.WithLabelValues("dashboard").Inc()

	tests, err := s.tests.FindByInstructor(ctx, instructorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tests: %w", err)
	}
	summaries := make([]models.TestSummary, 0, len(tests))
	for i := range tests {
		summary, err := s.summarize(ctx, &tests[i])
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}

	dashboard, err := analytics.BuildInstructorDashboard(instructorID, summaries, s.policy)
	if err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func (s *AnalyticsService) summarize(ctx context.Context, test *models.Test) (models.TestSummary, error) {
	attempts, err := s.attempts.FindByTest(ctx, test.ID)
	if err != nil {
		return models.TestSummary{}, fmt.Errorf("failed to load attempts: %w", err)
	}
	results, err := s.results.FindByTest(ctx, test.ID)
	if err != nil {
		return models.TestSummary{}, fmt.Errorf("failed to load results: %w", err)
	}

	students := make([]string, 0, len(attempts))
	for _, a := range attempts {
		students = append(students, a.StudentID)
	}
	meta := analytics.TestMeta{
		TestID:        test.ID,
		Title:         test.Title,
		InstructorID:  test.InstructorID,
		QuestionCount: len(test.QuestionIDs),
		Published:     test.IsPublished(),
		CreatedAt:     test.CreatedAt,
		StudentIDs:    students,
	}
	return analytics.SummarizeTest(meta, len(attempts), results)
}

func (s *AnalyticsService) managedTest(ctx context.Context, viewer models.Viewer, testID string) (*models.Test, error) {
	test, err := s.tests.FindByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	if !viewer.CanManage(test.InstructorID) {
		return nil, forbidden("analytics for test %s", testID)
	}
	return test, nil
}
