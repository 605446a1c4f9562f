package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"assessment-service/internal/config"
	"assessment-service/internal/event"
	"assessment-service/internal/grading"
	"assessment-service/internal/models"
)

type GradingService struct {
	attempts      AttemptStore
	tests         TestStore
	questions     QuestionStore
	results       ResultStore
	lock          GradingLock
	publisher     event.Publisher
	engine        *grading.Engine
	lockTTL       time.Duration
	regradePolicy string
}

func NewGradingService(
	attempts AttemptStore,
	tests TestStore,
	questions QuestionStore,
	results ResultStore,
	lock GradingLock,
	publisher event.Publisher,
	engine *grading.Engine,
	cfg config.GradingConfig,
) *GradingService {
	policy := cfg.RegradePolicy
	if policy == "" {
		policy = config.RegradeReplace
	}
	return &GradingService{
		attempts:      attempts,
		tests:         tests,
		questions:     questions,
		results:       results,
		lock:          lock,
		publisher:     publisher,
		engine:        engine,
		lockTTL:       cfg.LockTTL,
		regradePolicy: policy,
	}
}

// GradeAttempt grades a submitted attempt and stores the result. A graded
// attempt is graded again under the replace policy and the stored result
// is overwritten; under the reject policy it fails with ErrAlreadyGraded.
func (s *GradingService) GradeAttempt(ctx context.Context, attemptID string) (*models.TestResult, error) {
	start := time.Now()
	result, status, err := s.grade(ctx, attemptID)
	gradingAttempts.WithLabelValues(status).Inc()
	gradingDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	gradedScores.Observe(result.PercentageScore)
	return result, nil
}

// RegradeAttempt lets the test owner regrade an attempt, for instance after
// a grading failure left it submitted.
func (s *GradingService) RegradeAttempt(ctx context.Context, viewer models.Viewer, attemptID string) (*models.TestResult, error) {
	attempt, err := s.attempts.FindByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	test, err := s.tests.FindByID(ctx, attempt.TestID)
	if err != nil {
		return nil, err
	}
	if !viewer.CanManage(test.InstructorID) {
		return nil, forbidden("attempt %s", attemptID)
	}
	return s.GradeAttempt(ctx, attemptID)
}

func (s *GradingService) grade(ctx context.Context, attemptID string) (*models.TestResult, string, error) {
	lockKey := "grading:" + attemptID
	token, ok, err := s.lock.Acquire(ctx, lockKey, s.lockTTL)
	if err != nil {
		return nil, "error", fmt.Errorf("failed to acquire grading lock: %w", err)
	}
	if !ok {
		return nil, "conflict", ErrGradingInProgress
	}
	defer func() {
		if err := s.lock.Release(context.Background(), lockKey, token); err != nil {
			log.Printf("Failed to release grading lock for attempt %s: %v", attemptID, err)
		}
	}()

	attempt, err := s.attempts.FindByID(ctx, attemptID)
	if err != nil {
		return nil, "error", err
	}

	regrade := false
	switch attempt.Status {
	case models.AttemptStatusInProgress:
		return nil, "conflict", ErrAttemptNotSubmitted
	case models.AttemptStatusGraded:
		if s.regradePolicy == config.RegradeReject {
			return nil, "conflict", ErrAlreadyGraded
		}
		regrade = true
	}

	test, err := s.tests.FindByID(ctx, attempt.TestID)
	if err != nil {
		return nil, "error", fmt.Errorf("failed to load test %s: %w", attempt.TestID, err)
	}
	questions, err := s.questions.FindByIDs(ctx, attempt.QuestionIDs)
	if err != nil {
		return nil, "error", fmt.Errorf("failed to load questions: %w", err)
	}

	result, err := s.engine.Grade(*attempt, grading.NewQuestionBank(questions), test.PassingScore)
	if err != nil {
		var validationErr *models.ValidationError
		if errors.As(err, &validationErr) {
			return nil, "invalid", err
		}
		return nil, "error", err
	}

	replaced, err := s.results.Upsert(ctx, &result)
	if err != nil {
		return nil, "error", fmt.Errorf("failed to store result: %w", err)
	}
	if err := s.attempts.MarkGraded(ctx, attemptID); err != nil {
		return nil, "error", fmt.Errorf("failed to mark attempt graded: %w", err)
	}

	regraded := regrade || replaced
	if err := s.publisher.PublishResultEvent(ctx, event.CreateResultGradedEvent(&result, regraded)); err != nil {
		log.Printf("Failed to publish result.graded event for attempt %s: %v", attemptID, err)
	}

	status := "graded"
	if regraded {
		status = "regraded"
	}
	log.Printf("Graded attempt %s: %.2f%% (passed=%t, regraded=%t)", attemptID, result.PercentageScore, result.Passed, regraded)
	return &result, status, nil
}
