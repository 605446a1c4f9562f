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

type ResultRepository struct {
	collection *mongo.Collection
}

func NewResultRepository(database *mongo.Database, collection string) *ResultRepository {
	return &ResultRepository{
		collection: database.Collection(collection),
	}
}

func (r *ResultRepository) InitializeIndexes(ctx context.Context) error {
	if _, err := r.collection.Indexes().CreateMany(ctx, models.GetResultIndexes()); err != nil {
		return fmt.Errorf("failed to create result indexes: %w", err)
	}
	return nil
}

// Upsert creates or replaces the result for its attempt. It reports
// whether an earlier result was replaced.
func (r *ResultRepository) Upsert(ctx context.Context, result *models.TestResult) (bool, error) {
	opts := options.Replace().SetUpsert(true)
	res, err := r.collection.ReplaceOne(ctx, bson.M{"attempt_id": result.AttemptID}, result, opts)
	if err != nil {
		return false, fmt.Errorf("failed to store result: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (r *ResultRepository) FindByAttempt(ctx context.Context, attemptID string) (*models.TestResult, error) {
	var result models.TestResult
	if err := r.collection.FindOne(ctx, bson.M{"attempt_id": attemptID}).Decode(&result); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("result for attempt %s: %w", attemptID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find result: %w", err)
	}
	return &result, nil
}

func (r *ResultRepository) FindByTest(ctx context.Context, testID string) ([]models.TestResult, error) {
	return r.find(ctx, bson.M{"test_id": testID})
}

func (r *ResultRepository) FindByStudent(ctx context.Context, studentID string) ([]models.TestResult, error) {
	return r.find(ctx, bson.M{"student_id": studentID})
}

func (r *ResultRepository) find(ctx context.Context, filter bson.M) ([]models.TestResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "graded_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find results: %w", err)
	}
	defer cursor.Close(ctx)

	results := []models.TestResult{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode results: %w", err)
	}
	return results, nil
}
