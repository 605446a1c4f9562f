package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "in_progress"
	AttemptStatusSubmitted  AttemptStatus = "submitted"
	AttemptStatusGraded     AttemptStatus = "graded"
)

type Answer struct {
	QuestionID      string    `bson:"question_id" json:"question_id"`
	SubmittedAnswer string    `bson:"submitted_answer" json:"submitted_answer"`
	AnsweredAt      time.Time `bson:"answered_at" json:"answered_at"`
}

// TestAttempt is one student's run through a test. QuestionIDs is the
// test's question order captured when the attempt started; Answers are
// kept in the order they were submitted.
type TestAttempt struct {
	ID          string        `bson:"_id" json:"id"`
	TestID      string        `bson:"test_id" json:"test_id"`
	StudentID   string        `bson:"student_id" json:"student_id"`
	QuestionIDs []string      `bson:"question_ids" json:"question_ids"`
	Answers     []Answer      `bson:"answers" json:"answers"`
	Status      AttemptStatus `bson:"status" json:"status"`
	StartedAt   time.Time     `bson:"started_at" json:"started_at"`
	SubmittedAt time.Time     `bson:"submitted_at" json:"submitted_at"`
}

func GetAttemptIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "test_id", Value: 1},
				{Key: "student_id", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "student_id", Value: 1},
				{Key: "started_at", Value: -1},
			},
		},
	}
}
