package repository

import (
	"context"
	"errors"
	"fmt"

	"assessment-service/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type QuestionRepository struct {
	collection *mongo.Collection
}

func NewQuestionRepository(database *mongo.Database, collection string) *QuestionRepository {
	return &QuestionRepository{
		collection: database.Collection(collection),
	}
}

func (r *QuestionRepository) InitializeIndexes(ctx context.Context) error {
	if _, err := r.collection.Indexes().CreateMany(ctx, models.GetQuestionIndexes()); err != nil {
		return fmt.Errorf("failed to create question indexes: %w", err)
	}
	return nil
}

func (r *QuestionRepository) Create(ctx context.Context, question *models.Question) error {
	if _, err := r.collection.InsertOne(ctx, question); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("question %s already exists: %w", question.ID, models.ErrConflict)
		}
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

func (r *QuestionRepository) FindByID(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&question); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("question %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find question: %w", err)
	}
	return &question, nil
}

// FindByIDs returns the questions that exist among ids, in no particular
// order.
func (r *QuestionRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Question, error) {
	if len(ids) == 0 {
		return []models.Question{}, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find questions: %w", err)
	}
	defer cursor.Close(ctx)

	questions := []models.Question{}
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}
	return questions, nil
}

func (r *QuestionRepository) FindByInstructor(ctx context.Context, instructorID string) ([]models.Question, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"instructor_id": instructorID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find questions: %w", err)
	}
	defer cursor.Close(ctx)

	questions := []models.Question{}
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}
	return questions, nil
}

func (r *QuestionRepository) Update(ctx context.Context, question *models.Question) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": question.ID}, question)
	if err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("question %s: %w", question.ID, models.ErrNotFound)
	}
	return nil
}

func (r *QuestionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("question %s: %w", id, models.ErrNotFound)
	}
	return nil
}
