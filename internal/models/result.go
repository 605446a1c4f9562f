package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type QuestionResult struct {
	QuestionID      string       `bson:"question_id" json:"question_id"`
	QuestionNumber  int          `bson:"question_number" json:"question_number"`
	Type            QuestionType `bson:"type" json:"type"`
	Text            string       `bson:"text" json:"text"`
	CorrectAnswer   string       `bson:"correct_answer" json:"correct_answer"`
	SubmittedAnswer string       `bson:"submitted_answer" json:"submitted_answer"`
	Answered        bool         `bson:"answered" json:"answered"`
	IsCorrect       bool         `bson:"is_correct" json:"is_correct"`
	PointsEarned    float64      `bson:"points_earned" json:"points_earned"`
	PointsPossible  float64      `bson:"points_possible" json:"points_possible"`
}

// TestResult is the graded outcome of one attempt. There is at most one
// per attempt; grading again replaces it.
type TestResult struct {
	ID                  string           `bson:"_id" json:"id"`
	AttemptID           string           `bson:"attempt_id" json:"attempt_id"`
	TestID              string           `bson:"test_id" json:"test_id"`
	StudentID           string           `bson:"student_id" json:"student_id"`
	TotalQuestions      int              `bson:"total_questions" json:"total_questions"`
	CorrectAnswers      int              `bson:"correct_answers" json:"correct_answers"`
	IncorrectAnswers    int              `bson:"incorrect_answers" json:"incorrect_answers"`
	UnansweredQuestions int              `bson:"unanswered_questions" json:"unanswered_questions"`
	PointsEarned        float64          `bson:"points_earned" json:"points_earned"`
	PointsPossible      float64          `bson:"points_possible" json:"points_possible"`
	PercentageScore     float64          `bson:"percentage_score" json:"percentage_score"`
	PassingScore        float64          `bson:"passing_score" json:"passing_score"`
	Passed              bool             `bson:"passed" json:"passed"`
	TimeTakenSeconds    float64          `bson:"time_taken_seconds" json:"time_taken_seconds"`
	GradedAt            time.Time        `bson:"graded_at" json:"graded_at"`
	QuestionResults     []QuestionResult `bson:"question_results" json:"question_results"`
}

func GetResultIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "attempt_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "test_id", Value: 1},
				{Key: "graded_at", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "student_id", Value: 1},
			},
		},
	}
}
