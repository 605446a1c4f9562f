package models

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type TestStatus string

const (
	TestStatusDraft     TestStatus = "draft"
	TestStatusPublished TestStatus = "published"
)

// Test is an ordered set of questions assembled by an instructor. Once
// published its question list and the questions themselves are frozen.
type Test struct {
	ID           string     `bson:"_id" json:"id"`
	InstructorID string     `bson:"instructor_id" json:"instructor_id"`
	Title        string     `bson:"title" json:"title"`
	Description  string     `bson:"description,omitempty" json:"description,omitempty"`
	QuestionIDs  []string   `bson:"question_ids" json:"question_ids"`
	PassingScore float64    `bson:"passing_score" json:"passing_score"`
	Status       TestStatus `bson:"status" json:"status"`
	CreatedAt    time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at" json:"updated_at"`
	PublishedAt  time.Time  `bson:"published_at" json:"published_at"`
}

func (t *Test) IsPublished() bool {
	return t.Status == TestStatusPublished
}

func (t *Test) HasQuestion(questionID string) bool {
	return slices.Contains(t.QuestionIDs, questionID)
}

func GetTestIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "instructor_id", Value: 1},
				{Key: "created_at", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "question_ids", Value: 1},
				{Key: "status", Value: 1},
			},
		},
	}
}
