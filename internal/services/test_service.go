package services

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"assessment-service/internal/event"
	"assessment-service/internal/models"

	"github.com/google/uuid"
)

type TestInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	// PassingScore is a percentage; the configured default applies when omitted.
	PassingScore *float64 `json:"passing_score" validate:"omitempty,gte=0,lte=100"`
	QuestionIDs  []string `json:"question_ids" validate:"omitempty,unique,dive,required"`
}

type TestService struct {
	tests               TestStore
	questions           QuestionStore
	publisher           event.Publisher
	defaultPassingScore float64
	now                 func() time.Time
}

func NewTestService(tests TestStore, questions QuestionStore, publisher event.Publisher, defaultPassingScore float64) *TestService {
	return &TestService{
		tests:               tests,
		questions:           questions,
		publisher:           publisher,
		defaultPassingScore: defaultPassingScore,
		now:                 time.Now,
	}
}

func (s *TestService) CreateTest(ctx context.Context, viewer models.Viewer, input TestInput) (*models.Test, error) {
	if err := checkStruct("create_test", input); err != nil {
		return nil, err
	}
	if err := s.checkQuestions(ctx, viewer, "create_test", input.QuestionIDs); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	test := &models.Test{
		ID:           uuid.NewString(),
		InstructorID: viewer.UserID,
		Status:       models.TestStatusDraft,
		CreatedAt:    now,
	}
	s.applyTestInput(test, input, now)

	if err := s.tests.Create(ctx, test); err != nil {
		return nil, fmt.Errorf("failed to create test: %w", err)
	}
	return test, nil
}

// GetTest returns a test to its owner, or to anyone once it is published.
func (s *TestService) GetTest(ctx context.Context, viewer models.Viewer, id string) (*models.Test, error) {
	test, err := s.tests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !test.IsPublished() && !viewer.CanManage(test.InstructorID) {
		return nil, forbidden("test %s", id)
	}
	return test, nil
}

func (s *TestService) ListTests(ctx context.Context, viewer models.Viewer) ([]models.Test, error) {
	return s.tests.FindByInstructor(ctx, viewer.UserID)
}

func (s *TestService) UpdateTest(ctx context.Context, viewer models.Viewer, id string, input TestInput) (*models.Test, error) {
	if err := checkStruct("update_test", input); err != nil {
		return nil, err
	}
	test, err := s.draftFor(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkQuestions(ctx, viewer, "update_test", input.QuestionIDs); err != nil {
		return nil, err
	}

	s.applyTestInput(test, input, s.now().UTC())
	if err := s.tests.Update(ctx, test); err != nil {
		return nil, fmt.Errorf("failed to update test: %w", err)
	}
	return test, nil
}

// AddQuestion appends a question to the end of a draft test.
func (s *TestService) AddQuestion(ctx context.Context, viewer models.Viewer, testID, questionID string) (*models.Test, error) {
	test, err := s.draftFor(ctx, viewer, testID)
	if err != nil {
		return nil, err
	}
	if test.HasQuestion(questionID) {
		return nil, models.NewValidationError("add_question", models.ErrDuplicateQuestion, "question %s", questionID)
	}
	if err := s.checkQuestions(ctx, viewer, "add_question", []string{questionID}); err != nil {
		return nil, err
	}

	test.QuestionIDs = append(test.QuestionIDs, questionID)
	test.UpdatedAt = s.now().UTC()
	if err := s.tests.Update(ctx, test); err != nil {
		return nil, fmt.Errorf("failed to update test: %w", err)
	}
	return test, nil
}

func (s *TestService) RemoveQuestion(ctx context.Context, viewer models.Viewer, testID, questionID string) (*models.Test, error) {
	test, err := s.draftFor(ctx, viewer, testID)
	if err != nil {
		return nil, err
	}
	idx := slices.Index(test.QuestionIDs, questionID)
	if idx < 0 {
		return nil, fmt.Errorf("question %s on test %s: %w", questionID, testID, models.ErrNotFound)
	}

	test.QuestionIDs = slices.Delete(test.QuestionIDs, idx, idx+1)
	test.UpdatedAt = s.now().UTC()
	if err := s.tests.Update(ctx, test); err != nil {
		return nil, fmt.Errorf("failed to update test: %w", err)
	}
	return test, nil
}

// PublishTest freezes a draft so students can start attempts. Every
// question is re-checked so grading never meets an ungradable key.
func (s *TestService) PublishTest(ctx context.Context, viewer models.Viewer, id string) (*models.Test, error) {
	test, err := s.draftFor(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if len(test.QuestionIDs) == 0 {
		return nil, models.NewValidationError("publish_test", models.ErrEmptyTest, "test %s has no questions", id)
	}

	questions, err := s.questions.FindByIDs(ctx, test.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	if len(questions) != len(test.QuestionIDs) {
		return nil, models.NewValidationError("publish_test", models.ErrUnknownQuestion, "some questions of test %s no longer exist", id)
	}
	for i := range questions {
		if err := validateQuestion("publish_test", &questions[i]); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	test.Status = models.TestStatusPublished
	test.PublishedAt = now
	test.UpdatedAt = now
	if err := s.tests.Update(ctx, test); err != nil {
		return nil, fmt.Errorf("failed to publish test: %w", err)
	}

	if err := s.publisher.PublishTestEvent(ctx, event.CreateTestPublishedEvent(test)); err != nil {
		log.Printf("Failed to publish test.published event for %s: %v", test.ID, err)
	}
	return test, nil
}

// draftFor loads a test the viewer may edit.
func (s *TestService) draftFor(ctx context.Context, viewer models.Viewer, id string) (*models.Test, error) {
	test, err := s.tests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.CanManage(test.InstructorID) {
		return nil, forbidden("test %s", id)
	}
	if test.IsPublished() {
		return nil, ErrTestPublished
	}
	return test, nil
}

// checkQuestions verifies every id names a question the viewer owns.
func (s *TestService) checkQuestions(ctx context.Context, viewer models.Viewer, op string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	questions, err := s.questions.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load questions: %w", err)
	}

	found := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		found[q.ID] = q
	}
	for _, id := range ids {
		q, ok := found[id]
		if !ok {
			return models.NewValidationError(op, models.ErrUnknownQuestion, "question %s", id)
		}
		if !viewer.CanManage(q.InstructorID) {
			return forbidden("question %s", id)
		}
	}
	return nil
}

func (s *TestService) applyTestInput(test *models.Test, input TestInput, now time.Time) {
	passing := s.defaultPassingScore
	if input.PassingScore != nil {
		passing = *input.PassingScore
	}
	test.Title = strings.TrimSpace(input.Title)
	test.Description = input.Description
	test.PassingScore = passing
	test.QuestionIDs = append([]string{}, input.QuestionIDs...)
	test.UpdatedAt = now
}
