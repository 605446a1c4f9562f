package services

import (
	"context"

	"assessment-service/internal/models"
)

type ResultService struct {
	results ResultStore
	tests   TestStore
}

func NewResultService(results ResultStore, tests TestStore) *ResultService {
	return &ResultService{results: results, tests: tests}
}

// GetResultByAttempt returns the graded result of an attempt to the student
// who took it or the owner of the test.
func (s *ResultService) GetResultByAttempt(ctx context.Context, viewer models.Viewer, attemptID string) (*models.TestResult, error) {
	result, err := s.results.FindByAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if result.StudentID == viewer.UserID {
		return result, nil
	}
	test, err := s.tests.FindByID(ctx, result.TestID)
	if err != nil {
		return nil, err
	}
	if !viewer.CanManage(test.InstructorID) {
		return nil, forbidden("result for attempt %s", attemptID)
	}
	return result, nil
}

func (s *ResultService) GetResultsByStudent(ctx context.Context, viewer models.Viewer) ([]models.TestResult, error) {
	return s.results.FindByStudent(ctx, viewer.UserID)
}

func (s *ResultService) GetResultsByTest(ctx context.Context, viewer models.Viewer, testID string) ([]models.TestResult, error) {
	test, err := s.tests.FindByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	if !viewer.CanManage(test.InstructorID) {
		return nil, forbidden("results for test %s", testID)
	}
	return s.results.FindByTest(ctx, testID)
}
