package grading

import (
	"strings"

	"assessment-service/internal/models"
)

// Scorer decides whether one submitted answer earns full credit for a
// question of a given type. Credit is all or nothing.
type Scorer interface {
	ValidateKey(q models.Question) error
	Correct(q models.Question, submitted string) bool
}

type multipleChoiceScorer struct{}

func (multipleChoiceScorer) ValidateKey(q models.Question) error {
	if normalize(q.CorrectAnswer) == "" {
		return models.NewValidationError(opGrade, models.ErrInvalidAnswerKey, "question %q has an empty correct answer", q.ID)
	}
	return nil
}

func (multipleChoiceScorer) Correct(q models.Question, submitted string) bool {
	return normalize(submitted) == normalize(q.CorrectAnswer)
}

type trueFalseScorer struct{}

func (trueFalseScorer) ValidateKey(q models.Question) error {
	if _, ok := ParseBool(q.CorrectAnswer); !ok {
		return models.NewValidationError(opGrade, models.ErrInvalidAnswerKey, "question %q has non-boolean answer %q", q.ID, q.CorrectAnswer)
	}
	return nil
}

func (trueFalseScorer) Correct(q models.Question, submitted string) bool {
	got, ok := ParseBool(submitted)
	if !ok {
		return false
	}
	want, _ := ParseBool(q.CorrectAnswer)
	return got == want
}

// ParseBool reads the boolean-ish tokens students and question authors use
// for true/false questions.
func ParseBool(s string) (value bool, ok bool) {
	switch normalize(s) {
	case "true", "t", "yes", "y", "1":
		return true, true
	case "false", "f", "no", "n", "0":
		return false, true
	}
	return false, false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
