package services

import (
	"context"
	"fmt"
	"log"
	"slices"
	"time"

	"assessment-service/internal/event"
	"assessment-service/internal/models"

	"github.com/google/uuid"
)

type AnswerInput struct {
	QuestionID      string `json:"question_id" validate:"required"`
	SubmittedAnswer string `json:"submitted_answer"`
}

// AttemptQuestion is a question as shown to the student taking the test,
// without its answer key.
type AttemptQuestion struct {
	ID      string              `json:"id"`
	Number  int                 `json:"number"`
	Type    models.QuestionType `json:"type"`
	Text    string              `json:"text"`
	Options []string            `json:"options,omitempty"`
	Points  float64             `json:"points"`
}

type AttemptService struct {
	attempts  AttemptStore
	tests     TestStore
	questions QuestionStore
	grader    *GradingService
	publisher event.Publisher
	now       func() time.Time
}

func NewAttemptService(attempts AttemptStore, tests TestStore, questions QuestionStore, grader *GradingService, publisher event.Publisher) *AttemptService {
	return &AttemptService{
		attempts:  attempts,
		tests:     tests,
		questions: questions,
		grader:    grader,
		publisher: publisher,
		now:       time.Now,
	}
}

// StartAttempt opens an attempt on a published test. The test's question
// order is captured so later edits cannot reach the attempt.
func (s *AttemptService) StartAttempt(ctx context.Context, viewer models.Viewer, testID string) (*models.TestAttempt, error) {
	test, err := s.tests.FindByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	if !test.IsPublished() {
		return nil, ErrTestNotPublished
	}

	attempt := &models.TestAttempt{
		ID:          uuid.NewString(),
		TestID:      test.ID,
		StudentID:   viewer.UserID,
		QuestionIDs: append([]string{}, test.QuestionIDs...),
		Answers:     []models.Answer{},
		Status:      models.AttemptStatusInProgress,
		StartedAt:   s.now().UTC(),
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}
	return attempt, nil
}

// GetAttempt returns an attempt to the student who owns it or the test owner.
func (s *AttemptService) GetAttempt(ctx context.Context, viewer models.Viewer, id string) (*models.TestAttempt, error) {
	attempt, err := s.attempts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if attempt.StudentID == viewer.UserID {
		return attempt, nil
	}
	test, err := s.tests.FindByID(ctx, attempt.TestID)
	if err != nil {
		return nil, err
	}
	if !viewer.CanManage(test.InstructorID) {
		return nil, forbidden("attempt %s", id)
	}
	return attempt, nil
}

func (s *AttemptService) ListAttempts(ctx context.Context, viewer models.Viewer) ([]models.TestAttempt, error) {
	return s.attempts.FindByStudent(ctx, viewer.UserID)
}

// AttemptQuestions lists the attempt's questions in test order.
func (s *AttemptService) AttemptQuestions(ctx context.Context, viewer models.Viewer, id string) ([]AttemptQuestion, error) {
	attempt, err := s.GetAttempt(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	questions, err := s.questions.FindByIDs(ctx, attempt.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	byID := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	out := make([]AttemptQuestion, 0, len(attempt.QuestionIDs))
	for i, qid := range attempt.QuestionIDs {
		q, ok := byID[qid]
		if !ok {
			continue
		}
		out = append(out, AttemptQuestion{
			ID:      q.ID,
			Number:  i + 1,
			Type:    q.Type,
			Text:    q.Text,
			Options: q.Options,
			Points:  q.Points,
		})
	}
	return out, nil
}

// SubmitAnswer records an answer. Answering the same question again is
// allowed; the latest answer is the one graded.
func (s *AttemptService) SubmitAnswer(ctx context.Context, viewer models.Viewer, attemptID string, input AnswerInput) (*models.TestAttempt, error) {
	if err := checkStruct("submit_answer", input); err != nil {
		return nil, err
	}
	attempt, err := s.ownAttempt(ctx, viewer, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Status != models.AttemptStatusInProgress {
		return nil, ErrAttemptClosed
	}

	if !slices.Contains(attempt.QuestionIDs, input.QuestionID) {
		return nil, models.NewValidationError("submit_answer", models.ErrUnknownQuestion, "question %s is not on this test", input.QuestionID)
	}

	answer := models.Answer{
		QuestionID:      input.QuestionID,
		SubmittedAnswer: input.SubmittedAnswer,
		AnsweredAt:      s.now().UTC(),
	}
	if err := s.attempts.AppendAnswer(ctx, attemptID, answer); err != nil {
		return nil, err
	}
	attempt.Answers = append(attempt.Answers, answer)
	return attempt, nil
}

// SubmitAttempt seals the attempt and grades it. When grading fails the
// attempt stays submitted and can be regraded later.
func (s *AttemptService) SubmitAttempt(ctx context.Context, viewer models.Viewer, attemptID string) (*models.TestResult, error) {
	attempt, err := s.ownAttempt(ctx, viewer, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Status != models.AttemptStatusInProgress {
		return nil, ErrAttemptClosed
	}

	attempt.SubmittedAt = s.now().UTC()
	if err := s.attempts.Seal(ctx, attemptID, attempt.SubmittedAt); err != nil {
		return nil, err
	}
	attempt.Status = models.AttemptStatusSubmitted

	if err := s.publisher.PublishAttemptEvent(ctx, event.CreateAttemptSubmittedEvent(attempt)); err != nil {
		log.Printf("Failed to publish attempt.submitted event for %s: %v", attemptID, err)
	}

	result, err := s.grader.GradeAttempt(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("attempt %s submitted but not graded: %w", attemptID, err)
	}
	return result, nil
}

func (s *AttemptService) ownAttempt(ctx context.Context, viewer models.Viewer, id string) (*models.TestAttempt, error) {
	attempt, err := s.attempts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if attempt.StudentID != viewer.UserID {
		return nil, forbidden("attempt %s", id)
	}
	return attempt, nil
}
