package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeTrueFalse      QuestionType = "true_false"
)

func (t QuestionType) Valid() bool {
	return t == QuestionTypeMultipleChoice || t == QuestionTypeTrueFalse
}

const (
	QuestionSourceManual    = "manual"
	QuestionSourceGenerated = "generated"
)

// Question is one assessable item. Options are only meaningful for
// multiple choice questions and keep the order they were authored in.
type Question struct {
	ID            string       `bson:"_id" json:"id"`
	InstructorID  string       `bson:"instructor_id" json:"instructor_id"`
	Type          QuestionType `bson:"type" json:"type" validate:"required,oneof=multiple_choice true_false"`
	Text          string       `bson:"text" json:"text" validate:"required"`
	Options       []string     `bson:"options,omitempty" json:"options,omitempty" validate:"omitempty,dive,required"`
	CorrectAnswer string       `bson:"correct_answer" json:"correct_answer" validate:"required"`
	Points        float64      `bson:"points" json:"points" validate:"gte=0"`
	Explanation   string       `bson:"explanation,omitempty" json:"explanation,omitempty"`
	DocumentID    string       `bson:"document_id,omitempty" json:"document_id,omitempty"`
	Source        string       `bson:"source" json:"source"`
	CreatedAt     time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `bson:"updated_at" json:"updated_at"`
}

func GetQuestionIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "instructor_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "document_id", Value: 1},
			},
		},
	}
}
