package services

import (
	"context"
	"time"

	"assessment-service/internal/models"
)

// The store contracts below are satisfied by the Mongo repositories and by
// the in-memory store. Lookups by id wrap models.ErrNotFound; conditional
// writes that find the record in the wrong state wrap models.ErrConflict.

type QuestionStore interface {
	Create(ctx context.Context, question *models.Question) error
	FindByID(ctx context.Context, id string) (*models.Question, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Question, error)
	FindByInstructor(ctx context.Context, instructorID string) ([]models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id string) error
}

type TestStore interface {
	Create(ctx context.Context, test *models.Test) error
	FindByID(ctx context.Context, id string) (*models.Test, error)
	FindByInstructor(ctx context.Context, instructorID string) ([]models.Test, error)
	Update(ctx context.Context, test *models.Test) error
	IsQuestionPublished(ctx context.Context, questionID string) (bool, error)
}

type AttemptStore interface {
	Create(ctx context.Context, attempt *models.TestAttempt) error
	FindByID(ctx context.Context, id string) (*models.TestAttempt, error)
	FindByTest(ctx context.Context, testID string) ([]models.TestAttempt, error)
	FindByStudent(ctx context.Context, studentID string) ([]models.TestAttempt, error)
	AppendAnswer(ctx context.Context, attemptID string, answer models.Answer) error
	Seal(ctx context.Context, attemptID string, submittedAt time.Time) error
	MarkGraded(ctx context.Context, attemptID string) error
}

type ResultStore interface {
	Upsert(ctx context.Context, result *models.TestResult) (bool, error)
	FindByAttempt(ctx context.Context, attemptID string) (*models.TestResult, error)
	FindByTest(ctx context.Context, testID string) ([]models.TestResult, error)
	FindByStudent(ctx context.Context, studentID string) ([]models.TestResult, error)
}

// GradingLock guarantees at most one grading pass per attempt at a time.
type GradingLock interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, token string) error
}
