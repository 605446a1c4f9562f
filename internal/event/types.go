package event

import (
	"time"

	"assessment-service/internal/models"
)

const (
	// Outgoing
	EventTypeResultGraded     = "result.graded"
	EventTypeAttemptSubmitted = "attempt.submitted"
	EventTypeTestPublished    = "test.published"

	// Incoming from the question generation service
	EventTypeQuestionGenerated = "question.generated"
)

// ResultEvent announces a stored grading outcome.
type ResultEvent struct {
	EventType       string  `json:"eventType"`
	ResultID        string  `json:"resultId"`
	AttemptID       string  `json:"attemptId"`
	TestID          string  `json:"testId"`
	StudentID       string  `json:"studentId"`
	PercentageScore float64 `json:"percentageScore"`
	Passed          bool    `json:"passed"`
	Regraded        bool    `json:"regraded"`
	Timestamp       int64   `json:"timestamp"`
}

type AttemptEvent struct {
	EventType string `json:"eventType"`
	AttemptID string `json:"attemptId"`
	TestID    string `json:"testId"`
	StudentID string `json:"studentId"`
	Answered  int    `json:"answered"`
	Timestamp int64  `json:"timestamp"`
}

type TestEvent struct {
	EventType     string  `json:"eventType"`
	TestID        string  `json:"testId"`
	InstructorID  string  `json:"instructorId"`
	Title         string  `json:"title"`
	QuestionCount int     `json:"questionCount"`
	PassingScore  float64 `json:"passingScore"`
	Timestamp     int64   `json:"timestamp"`
}

// GeneratedQuestionsEvent is emitted by the question generation service
// once questions have been extracted from a lecture document.
type GeneratedQuestionsEvent struct {
	EventType    string              `json:"eventType"`
	InstructorID string              `json:"instructorId"`
	DocumentID   string              `json:"documentId"`
	Questions    []GeneratedQuestion `json:"questions"`
	Timestamp    int64               `json:"timestamp"`
}

type GeneratedQuestion struct {
	Type          string   `json:"type"`
	Text          string   `json:"text"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer"`
	Points        float64  `json:"points"`
	Explanation   string   `json:"explanation,omitempty"`
}

func CreateResultGradedEvent(result *models.TestResult, regraded bool) *ResultEvent {
	return &ResultEvent{
		EventType:       EventTypeResultGraded,
		ResultID:        result.ID,
		AttemptID:       result.AttemptID,
		TestID:          result.TestID,
		StudentID:       result.StudentID,
		PercentageScore: result.PercentageScore,
		Passed:          result.Passed,
		Regraded:        regraded,
		Timestamp:       time.Now().Unix(),
	}
}

func CreateAttemptSubmittedEvent(attempt *models.TestAttempt) *AttemptEvent {
	return &AttemptEvent{
		EventType: EventTypeAttemptSubmitted,
		AttemptID: attempt.ID,
		TestID:    attempt.TestID,
		StudentID: attempt.StudentID,
		Answered:  len(attempt.Answers),
		Timestamp: time.Now().Unix(),
	}
}

func CreateTestPublishedEvent(test *models.Test) *TestEvent {
	return &TestEvent{
		EventType:     EventTypeTestPublished,
		TestID:        test.ID,
		InstructorID:  test.InstructorID,
		Title:         test.Title,
		QuestionCount: len(test.QuestionIDs),
		PassingScore:  test.PassingScore,
		Timestamp:     time.Now().Unix(),
	}
}
