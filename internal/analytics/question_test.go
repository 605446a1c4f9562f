package analytics

import (
	"errors"
	"testing"

	"assessment-service/internal/models"
)

func answered(questionID, submitted string, correct bool) models.QuestionResult {
	return models.QuestionResult{
		QuestionID:      questionID,
		SubmittedAnswer: submitted,
		Answered:        submitted != "",
		IsCorrect:       correct,
	}
}

func withQuestions(id string, qrs ...models.QuestionResult) models.TestResult {
	return models.TestResult{ID: id, TestID: "t1", QuestionResults: qrs}
}

func TestAnalyzeQuestion(t *testing.T) {
	results := []models.TestResult{
		withQuestions("r1", answered("q1", "B", false), answered("q2", "x", true)),
		withQuestions("r2", answered("q1", "A", true)),
		withQuestions("r3", answered("q1", "B", false)),
		withQuestions("r4", answered("q1", "C", false)),
		withQuestions("r5", answered("q1", "", false)),
	}

	qa, err := AnalyzeQuestion("q1", results)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if qa.TotalAttempts != 5 {
		t.Errorf("Expected 5 attempts, got %d", qa.TotalAttempts)
	}
	if qa.CorrectCount != 1 || qa.IncorrectCount != 3 || qa.UnansweredCount != 1 {
		t.Errorf("Expected 1/3/1 correct/incorrect/unanswered, got %d/%d/%d", qa.CorrectCount, qa.IncorrectCount, qa.UnansweredCount)
	}
	if qa.AccuracyRate != 0.2 {
		t.Errorf("Expected accuracy 0.2, got %f", qa.AccuracyRate)
	}
	if qa.MostCommonWrongAnswer == nil || *qa.MostCommonWrongAnswer != "B" {
		t.Errorf("Expected most common wrong answer B, got %v", qa.MostCommonWrongAnswer)
	}
}

func TestAnalyzeQuestionWrongAnswerTies(t *testing.T) {
	testCases := []struct {
		name    string
		answers []string
		want    string
	}{
		{"first seen wins a tie", []string{"C", "B", "B", "C"}, "C"},
		{"case-insensitive grouping", []string{"b", "C", " B "}, "b"},
		{"single wrong answer", []string{"D"}, "D"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var results []models.TestResult
			for i, a := range tc.answers {
				results = append(results, withQuestions(string(rune('a'+i)), answered("q1", a, false)))
			}

			qa, err := AnalyzeQuestion("q1", results)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if qa.MostCommonWrongAnswer == nil || *qa.MostCommonWrongAnswer != tc.want {
				t.Errorf("Expected most common wrong answer %q, got %v", tc.want, qa.MostCommonWrongAnswer)
			}
		})
	}
}

func TestAnalyzeQuestionNoWrongAnswers(t *testing.T) {
	results := []models.TestResult{
		withQuestions("r1", answered("q1", "A", true)),
		withQuestions("r2", answered("q1", "", false)),
	}

	qa, err := AnalyzeQuestion("q1", results)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if qa.MostCommonWrongAnswer != nil {
		t.Errorf("Expected no most common wrong answer, got %q", *qa.MostCommonWrongAnswer)
	}
}

func TestAnalyzeQuestionNoAnswers(t *testing.T) {
	qa, err := AnalyzeQuestion("q9", []models.TestResult{withQuestions("r1", answered("q1", "A", true))})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if qa.TotalAttempts != 0 || qa.AccuracyRate != 0 {
		t.Errorf("Expected no attempts and accuracy 0, got %d and %f", qa.TotalAttempts, qa.AccuracyRate)
	}
}

func TestAnalyzeQuestionErrors(t *testing.T) {
	if _, err := AnalyzeQuestion("", nil); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty question id, got %v", err)
	}

	broken := models.QuestionResult{QuestionID: "q1", IsCorrect: true}
	_, err := AnalyzeQuestion("q1", []models.TestResult{withQuestions("r1", broken)})
	var computationErr *models.ComputationError
	if !errors.As(err, &computationErr) {
		t.Errorf("Expected a ComputationError, got %v", err)
	}
}
