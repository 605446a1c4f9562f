package services

import (
	"fmt"

	"assessment-service/internal/models"
)

var (
	ErrGradingInProgress   = fmt.Errorf("grading already in progress: %w", models.ErrConflict)
	ErrAlreadyGraded       = fmt.Errorf("attempt already graded: %w", models.ErrConflict)
	ErrAttemptNotSubmitted = fmt.Errorf("attempt has not been submitted: %w", models.ErrConflict)
	ErrAttemptClosed       = fmt.Errorf("attempt is no longer in progress: %w", models.ErrConflict)
	ErrTestPublished       = fmt.Errorf("test is already published: %w", models.ErrConflict)
	ErrTestNotPublished    = fmt.Errorf("test is not published: %w", models.ErrConflict)
	ErrQuestionLocked      = fmt.Errorf("question belongs to a published test: %w", models.ErrConflict)
)

func forbidden(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), models.ErrForbidden)
}
