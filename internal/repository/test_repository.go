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

type TestRepository struct {
	collection *mongo.Collection
}

func NewTestRepository(database *mongo.Database, collection string) *TestRepository {
	return &TestRepository{
		collection: database.Collection(collection),
	}
}

func (r *TestRepository) InitializeIndexes(ctx context.Context) error {
	if _, err := r.collection.Indexes().CreateMany(ctx, models.GetTestIndexes()); err != nil {
		return fmt.Errorf("failed to create test indexes: %w", err)
	}
	return nil
}

func (r *TestRepository) Create(ctx context.Context, test *models.Test) error {
	if _, err := r.collection.InsertOne(ctx, test); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("test %s already exists: %w", test.ID, models.ErrConflict)
		}
		return fmt.Errorf("failed to create test: %w", err)
	}
	return nil
}

func (r *TestRepository) FindByID(ctx context.Context, id string) (*models.Test, error) {
	var test models.Test
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&test); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("test %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find test: %w", err)
	}
	return &test, nil
}

func (r *TestRepository) FindByInstructor(ctx context.Context, instructorID string) ([]models.Test, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"instructor_id": instructorID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find tests: %w", err)
	}
	defer cursor.Close(ctx)

	tests := []models.Test{}
	if err := cursor.All(ctx, &tests); err != nil {
		return nil, fmt.Errorf("failed to decode tests: %w", err)
	}
	return tests, nil
}

// Update replaces a test only while it is still a draft, so a published
// test can never be edited by a racing request.
func (r *TestRepository) Update(ctx context.Context, test *models.Test) error {
	filter := bson.M{"_id": test.ID, "status": models.TestStatusDraft}
	result, err := r.collection.ReplaceOne(ctx, filter, test)
	if err != nil {
		return fmt.Errorf("failed to update test: %w", err)
	}
	if result.MatchedCount == 0 {
		if _, err := r.FindByID(ctx, test.ID); err != nil {
			return err
		}
		return fmt.Errorf("test %s is published: %w", test.ID, models.ErrConflict)
	}
	return nil
}

func (r *TestRepository) IsQuestionPublished(ctx context.Context, questionID string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"question_ids": questionID,
		"status":       models.TestStatusPublished,
	})
	if err != nil {
		return false, fmt.Errorf("failed to count tests: %w", err)
	}
	return count > 0, nil
}
