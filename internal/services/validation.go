package services

import (
	"errors"
	"strings"

	"assessment-service/internal/grading"
	"assessment-service/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// checkStruct runs the struct tag rules and reports failures as a
// ValidationError for op.
func checkStruct(op string, v any) error {
	if err := validate.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			fields := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields = append(fields, fe.Field()+" "+fe.Tag())
			}
			return models.NewValidationError(op, models.ErrInvalidInput, "%s", strings.Join(fields, ", "))
		}
		return models.NewValidationError(op, models.ErrInvalidInput, "%v", err)
	}
	return nil
}

// validateQuestion checks that a question can be graded: a multiple choice
// answer must be one of at least two distinct options and a true/false
// answer must read as a boolean.
func validateQuestion(op string, q *models.Question) error {
	if err := checkStruct(op, q); err != nil {
		return err
	}

	switch q.Type {
	case models.QuestionTypeMultipleChoice:
		if len(q.Options) < 2 {
			return models.NewValidationError(op, models.ErrInvalidInput, "multiple choice questions need at least two options")
		}
		seen := make(map[string]struct{}, len(q.Options))
		for _, opt := range q.Options {
			key := strings.ToLower(strings.TrimSpace(opt))
			if _, dup := seen[key]; dup {
				return models.NewValidationError(op, models.ErrInvalidInput, "option %q is listed twice", opt)
			}
			seen[key] = struct{}{}
		}
		if _, ok := seen[strings.ToLower(strings.TrimSpace(q.CorrectAnswer))]; !ok {
			return models.NewValidationError(op, models.ErrInvalidAnswerKey, "correct answer %q is not one of the options", q.CorrectAnswer)
		}
	case models.QuestionTypeTrueFalse:
		value, ok := grading.ParseBool(q.CorrectAnswer)
		if !ok {
			return models.NewValidationError(op, models.ErrInvalidAnswerKey, "correct answer %q is not true or false", q.CorrectAnswer)
		}
		q.Options = []string{"True", "False"}
		if value {
			q.CorrectAnswer = "True"
		} else {
			q.CorrectAnswer = "False"
		}
	default:
		return models.NewValidationError(op, models.ErrUnsupportedQuestionType, "type %q", q.Type)
	}
	return nil
}
