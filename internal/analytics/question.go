package analytics

import (
	"strings"

	"assessment-service/internal/models"
)

const opAnalyzeQuestion = "analyze_question"

type wrongAnswerTally struct {
	answer string
	count  int
}

// AnalyzeQuestion collects every graded answer to one question across the
// given results. Wrong answers are compared case-insensitively and the
// mode is reported in the spelling it was first seen in; among equally
// common answers the first seen wins.
func AnalyzeQuestion(questionID string, results []models.TestResult) (models.QuestionAnalytics, error) {
	if questionID == "" {
		return models.QuestionAnalytics{}, models.NewValidationError(opAnalyzeQuestion, models.ErrInvalidInput, "question id is required")
	}

	qa := models.QuestionAnalytics{QuestionID: questionID}
	tallies := make(map[string]*wrongAnswerTally)
	var order []string

	for _, r := range results {
		for _, qr := range r.QuestionResults {
			if qr.QuestionID != questionID {
				continue
			}
			if qr.IsCorrect && !qr.Answered {
				return models.QuestionAnalytics{}, models.NewComputationError(opAnalyzeQuestion, models.ErrInconsistentCount,
					"result %q marks unanswered question %q correct", r.ID, questionID)
			}

			qa.TotalAttempts++
			switch {
			case !qr.Answered:
				qa.UnansweredCount++
			case qr.IsCorrect:
				qa.CorrectCount++
			default:
				qa.IncorrectCount++
				key := strings.ToLower(strings.TrimSpace(qr.SubmittedAnswer))
				if key == "" {
					continue
				}
				tally, ok := tallies[key]
				if !ok {
					tally = &wrongAnswerTally{answer: strings.TrimSpace(qr.SubmittedAnswer)}
					tallies[key] = tally
					order = append(order, key)
				}
				tally.count++
			}
		}
	}

	if qa.TotalAttempts > 0 {
		qa.AccuracyRate = float64(qa.CorrectCount) / float64(qa.TotalAttempts)
	}

	var best *wrongAnswerTally
	for _, key := range order {
		if t := tallies[key]; best == nil || t.count > best.count {
			best = t
		}
	}
	if best != nil {
		answer := best.answer
		qa.MostCommonWrongAnswer = &answer
	}

	return qa, nil
}
