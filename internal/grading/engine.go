package grading

import (
	"math"
	"strings"
	"time"

	"assessment-service/internal/models"

	"github.com/google/uuid"
)

const opGrade = "grade"

// resultNamespace seeds name-based result ids so that grading the same
// attempt twice yields the same id.
var resultNamespace = uuid.MustParse("6f1c2a7e-4d0b-4c1e-9a53-2b8f0d9e7c41")

// QuestionBank is the answer key for one grading call, keyed by question id.
type QuestionBank map[string]models.Question

func NewQuestionBank(questions []models.Question) QuestionBank {
	bank := make(QuestionBank, len(questions))
	for _, q := range questions {
		bank[q.ID] = q
	}
	return bank
}

// ResultID returns the id of the result produced for an attempt.
func ResultID(attemptID string) string {
	return uuid.NewSHA1(resultNamespace, []byte(attemptID)).String()
}

type Option func(*Engine)

// WithClock stamps results with the given clock instead of the attempt's
// submission time.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithScorer installs or replaces the scorer for a question type.
func WithScorer(t models.QuestionType, s Scorer) Option {
	return func(e *Engine) { e.scorers[t] = s }
}

type Engine struct {
	now     func() time.Time
	scorers map[models.QuestionType]Scorer
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		scorers: map[models.QuestionType]Scorer{
			models.QuestionTypeMultipleChoice: multipleChoiceScorer{},
			models.QuestionTypeTrueFalse:      trueFalseScorer{},
		},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Grade scores one submitted attempt against the answer key. Question
// results follow the attempt's question order, not the order in which the
// answers were given. The engine performs no I/O and never mutates its
// arguments.
func (e *Engine) Grade(attempt models.TestAttempt, bank QuestionBank, passingScore float64) (models.TestResult, error) {
	if err := validateAttempt(attempt, passingScore); err != nil {
		return models.TestResult{}, err
	}

	onTest := make(map[string]struct{}, len(attempt.QuestionIDs))
	for _, id := range attempt.QuestionIDs {
		if _, dup := onTest[id]; dup {
			return models.TestResult{}, models.NewValidationError(opGrade, models.ErrDuplicateQuestion, "question %q", id)
		}
		onTest[id] = struct{}{}
	}

	// A question answered more than once keeps its last answer.
	submitted := make(map[string]string, len(attempt.Answers))
	for _, a := range attempt.Answers {
		if _, ok := onTest[a.QuestionID]; !ok {
			return models.TestResult{}, models.NewValidationError(opGrade, models.ErrUnknownQuestion, "answer references question %q which is not on the test", a.QuestionID)
		}
		submitted[a.QuestionID] = a.SubmittedAnswer
	}

	result := models.TestResult{
		ID:              ResultID(attempt.ID),
		AttemptID:       attempt.ID,
		TestID:          attempt.TestID,
		StudentID:       attempt.StudentID,
		TotalQuestions:  len(attempt.QuestionIDs),
		PassingScore:    passingScore,
		QuestionResults: make([]models.QuestionResult, 0, len(attempt.QuestionIDs)),
	}

	for i, id := range attempt.QuestionIDs {
		q, ok := bank[id]
		if !ok {
			return models.TestResult{}, models.NewValidationError(opGrade, models.ErrUnknownQuestion, "question %q is missing from the question bank", id)
		}
		qr, err := e.gradeQuestion(i+1, q, submitted[id])
		if err != nil {
			return models.TestResult{}, err
		}

		switch {
		case !qr.Answered:
			result.UnansweredQuestions++
		case qr.IsCorrect:
			result.CorrectAnswers++
		default:
			result.IncorrectAnswers++
		}
		result.PointsEarned += qr.PointsEarned
		result.PointsPossible += qr.PointsPossible
		result.QuestionResults = append(result.QuestionResults, qr)
	}

	if result.PointsPossible > 0 {
		result.PercentageScore = result.PointsEarned / result.PointsPossible * 100
	}
	result.Passed = result.PercentageScore >= passingScore
	result.TimeTakenSeconds = math.Max(0, attempt.SubmittedAt.Sub(attempt.StartedAt).Seconds())

	result.GradedAt = attempt.SubmittedAt
	if e.now != nil {
		result.GradedAt = e.now()
	}

	return result, nil
}

func (e *Engine) gradeQuestion(number int, q models.Question, answer string) (models.QuestionResult, error) {
	if q.Points < 0 || math.IsNaN(q.Points) || math.IsInf(q.Points, 0) {
		return models.QuestionResult{}, models.NewValidationError(opGrade, models.ErrInvalidPoints, "question %q has %v points", q.ID, q.Points)
	}
	scorer, ok := e.scorers[q.Type]
	if !ok {
		return models.QuestionResult{}, models.NewValidationError(opGrade, models.ErrUnsupportedQuestionType, "question %q has type %q", q.ID, q.Type)
	}
	// Checked for unanswered questions too, a broken key must not go unnoticed.
	if err := scorer.ValidateKey(q); err != nil {
		return models.QuestionResult{}, err
	}

	qr := models.QuestionResult{
		QuestionID:      q.ID,
		QuestionNumber:  number,
		Type:            q.Type,
		Text:            q.Text,
		CorrectAnswer:   q.CorrectAnswer,
		SubmittedAnswer: answer,
		Answered:        strings.TrimSpace(answer) != "",
		PointsPossible:  q.Points,
	}
	if qr.Answered && scorer.Correct(q, answer) {
		qr.IsCorrect = true
		qr.PointsEarned = q.Points
	}
	return qr, nil
}

func validateAttempt(attempt models.TestAttempt, passingScore float64) error {
	if attempt.ID == "" {
		return models.NewValidationError(opGrade, models.ErrInvalidInput, "attempt id is required")
	}
	if math.IsNaN(passingScore) || passingScore < 0 || passingScore > 100 {
		return models.NewValidationError(opGrade, models.ErrInvalidPassingScore, "got %v", passingScore)
	}
	if len(attempt.QuestionIDs) == 0 {
		return models.NewValidationError(opGrade, models.ErrEmptyTest, "attempt %q", attempt.ID)
	}
	if attempt.StartedAt.IsZero() {
		return models.NewValidationError(opGrade, models.ErrMissingTimestamp, "attempt %q has no start time", attempt.ID)
	}
	if attempt.SubmittedAt.IsZero() {
		return models.NewValidationError(opGrade, models.ErrMissingTimestamp, "attempt %q has no submission time", attempt.ID)
	}
	return nil
}
