package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"assessment-service/internal/event"
	"assessment-service/internal/models"

	"github.com/google/uuid"
)

const defaultQuestionPoints = 1.0

type QuestionInput struct {
	Type          string   `json:"type" validate:"required,oneof=multiple_choice true_false"`
	Text          string   `json:"text" validate:"required,max=2000"`
	Options       []string `json:"options" validate:"omitempty,max=10,dive,required"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
	// Points defaults to 1 when omitted.
	Points      *float64 `json:"points" validate:"omitempty,gte=0"`
	Explanation string   `json:"explanation"`
	DocumentID  string   `json:"document_id"`
}

type QuestionService struct {
	questions QuestionStore
	tests     TestStore
	now       func() time.Time
}

func NewQuestionService(questions QuestionStore, tests TestStore) *QuestionService {
	return &QuestionService{
		questions: questions,
		tests:     tests,
		now:       time.Now,
	}
}

// CreateQuestion stores a manually authored question owned by the viewer.
func (s *QuestionService) CreateQuestion(ctx context.Context, viewer models.Viewer, input QuestionInput) (*models.Question, error) {
	if err := checkStruct("create_question", input); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	question := &models.Question{
		ID:           uuid.NewString(),
		InstructorID: viewer.UserID,
		Source:       models.QuestionSourceManual,
		CreatedAt:    now,
	}
	applyQuestionInput(question, input, now)

	if err := validateQuestion("create_question", question); err != nil {
		return nil, err
	}
	if err := s.questions.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	return question, nil
}

// GetQuestion returns a question with its answer key. Only the owner sees it.
func (s *QuestionService) GetQuestion(ctx context.Context, viewer models.Viewer, id string) (*models.Question, error) {
	question, err := s.questions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.CanManage(question.InstructorID) {
		return nil, forbidden("question %s", id)
	}
	return question, nil
}

func (s *QuestionService) ListQuestions(ctx context.Context, viewer models.Viewer) ([]models.Question, error) {
	return s.questions.FindByInstructor(ctx, viewer.UserID)
}

// UpdateQuestion rewrites a question in place. Questions on a published
// test cannot change since recorded results refer to them.
func (s *QuestionService) UpdateQuestion(ctx context.Context, viewer models.Viewer, id string, input QuestionInput) (*models.Question, error) {
	if err := checkStruct("update_question", input); err != nil {
		return nil, err
	}

	question, err := s.GetQuestion(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnpublished(ctx, id); err != nil {
		return nil, err
	}

	applyQuestionInput(question, input, s.now().UTC())
	if err := validateQuestion("update_question", question); err != nil {
		return nil, err
	}
	if err := s.questions.Update(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	return question, nil
}

func (s *QuestionService) DeleteQuestion(ctx context.Context, viewer models.Viewer, id string) error {
	if _, err := s.GetQuestion(ctx, viewer, id); err != nil {
		return err
	}
	if err := s.ensureUnpublished(ctx, id); err != nil {
		return err
	}
	return s.questions.Delete(ctx, id)
}

func (s *QuestionService) ensureUnpublished(ctx context.Context, id string) error {
	published, err := s.tests.IsQuestionPublished(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check question usage: %w", err)
	}
	if published {
		return ErrQuestionLocked
	}
	return nil
}

// IngestGenerated stores the questions carried by a question.generated
// event. Questions that fail validation are skipped and logged; the rest
// are kept.
func (s *QuestionService) IngestGenerated(ctx context.Context, evt *event.GeneratedQuestionsEvent) (int, error) {
	if strings.TrimSpace(evt.InstructorID) == "" {
		return 0, models.NewValidationError("ingest_generated", models.ErrInvalidInput, "event has no instructor")
	}

	now := s.now().UTC()
	accepted := 0
	for i, generated := range evt.Questions {
		points := generated.Points
		if points == 0 {
			points = defaultQuestionPoints
		}
		question := &models.Question{
			ID:            uuid.NewString(),
			InstructorID:  evt.InstructorID,
			Type:          models.QuestionType(generated.Type),
			Text:          strings.TrimSpace(generated.Text),
			Options:       generated.Options,
			CorrectAnswer: strings.TrimSpace(generated.CorrectAnswer),
			Points:        points,
			Explanation:   generated.Explanation,
			DocumentID:    evt.DocumentID,
			Source:        models.QuestionSourceGenerated,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if err := validateQuestion("ingest_generated", question); err != nil {
			log.Printf("Skipping generated question %d from document %s: %v", i, evt.DocumentID, err)
			questionsIngested.WithLabelValues("rejected").Inc()
			continue
		}
		if err := s.questions.Create(ctx, question); err != nil {
			return accepted, fmt.Errorf("failed to store generated question: %w", err)
		}
		questionsIngested.WithLabelValues("accepted").Inc()
		accepted++
	}
	return accepted, nil
}

func applyQuestionInput(q *models.Question, input QuestionInput, now time.Time) {
	points := defaultQuestionPoints
	if input.Points != nil {
		points = *input.Points
	}
	q.Type = models.QuestionType(input.Type)
	q.Text = strings.TrimSpace(input.Text)
	q.Options = input.Options
	q.CorrectAnswer = strings.TrimSpace(input.CorrectAnswer)
	q.Points = points
	q.Explanation = input.Explanation
	q.DocumentID = input.DocumentID
	q.UpdatedAt = now
}
