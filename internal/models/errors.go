package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("conflict")
	ErrForbidden = errors.New("forbidden")

	ErrEmptyTest               = errors.New("test has no questions")
	ErrUnknownQuestion         = errors.New("unknown question")
	ErrDuplicateQuestion       = errors.New("question listed more than once")
	ErrInvalidPassingScore     = errors.New("passing score must be between 0 and 100")
	ErrInvalidPoints           = errors.New("points must be a non-negative number")
	ErrUnsupportedQuestionType = errors.New("unsupported question type")
	ErrInvalidAnswerKey        = errors.New("invalid answer key")
	ErrMissingTimestamp        = errors.New("missing timestamp")
	ErrTestMismatch            = errors.New("result belongs to another test")
	ErrInvalidPolicy           = errors.New("invalid dashboard policy")
	ErrInvalidInput            = errors.New("invalid input")

	ErrNegativeTime      = errors.New("negative time taken")
	ErrScoreOutOfRange   = errors.New("percentage score out of range")
	ErrInconsistentCount = errors.New("question counts do not add up")
)

// ValidationError reports malformed or incomplete input to a grading or
// aggregation call.
type ValidationError struct {
	Op     string
	Detail string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: validation failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: validation failed: %v: %s", e.Op, e.Err, e.Detail)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ComputationError reports an internal invariant that does not hold for
// otherwise well-formed input.
type ComputationError struct {
	Op     string
	Detail string
	Err    error
}

func (e *ComputationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: computation failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: computation failed: %v: %s", e.Op, e.Err, e.Detail)
}

func (e *ComputationError) Unwrap() error { return e.Err }

func NewValidationError(op string, err error, format string, args ...any) *ValidationError {
	return &ValidationError{Op: op, Err: err, Detail: fmt.Sprintf(format, args...)}
}

func NewComputationError(op string, err error, format string, args ...any) *ComputationError {
	return &ComputationError{Op: op, Err: err, Detail: fmt.Sprintf(format, args...)}
}
