package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"assessment-service/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type AttemptRepository struct {
	collection *mongo.Collection
}

func NewAttemptRepository(database *mongo.Database, collection string) *AttemptRepository {
	return &AttemptRepository{
		collection: database.Collection(collection),
	}
}

func (r *AttemptRepository) InitializeIndexes(ctx context.Context) error {
	if _, err := r.collection.Indexes().CreateMany(ctx, models.GetAttemptIndexes()); err != nil {
		return fmt.Errorf("failed to create attempt indexes: %w", err)
	}
	return nil
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *models.TestAttempt) error {
	if _, err := r.collection.InsertOne(ctx, attempt); err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	return nil
}

func (r *AttemptRepository) FindByID(ctx context.Context, id string) (*models.TestAttempt, error) {
	var attempt models.TestAttempt
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&attempt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("attempt %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find attempt: %w", err)
	}
	return &attempt, nil
}

func (r *AttemptRepository) FindByTest(ctx context.Context, testID string) ([]models.TestAttempt, error) {
	return r.find(ctx, bson.M{"test_id": testID})
}

func (r *AttemptRepository) FindByStudent(ctx context.Context, studentID string) ([]models.TestAttempt, error) {
	return r.find(ctx, bson.M{"student_id": studentID})
}

func (r *AttemptRepository) find(ctx context.Context, filter bson.M) ([]models.TestAttempt, error) {
	opts := options.Find().SetSort(bson.D{{Key: "started_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find attempts: %w", err)
	}
	defer cursor.Close(ctx)

	attempts := []models.TestAttempt{}
	if err := cursor.All(ctx, &attempts); err != nil {
		return nil, fmt.Errorf("failed to decode attempts: %w", err)
	}
	return attempts, nil
}

// AppendAnswer pushes an answer onto an attempt that is still in progress.
func (r *AttemptRepository) AppendAnswer(ctx context.Context, attemptID string, answer models.Answer) error {
	filter := bson.M{"_id": attemptID, "status": models.AttemptStatusInProgress}
	update := bson.M{"$push": bson.M{"answers": answer}}
	return r.transition(ctx, attemptID, filter, update)
}

// Seal moves an in-progress attempt to submitted.
func (r *AttemptRepository) Seal(ctx context.Context, attemptID string, submittedAt time.Time) error {
	filter := bson.M{"_id": attemptID, "status": models.AttemptStatusInProgress}
	update := bson.M{"$set": bson.M{
		"status":       models.AttemptStatusSubmitted,
		"submitted_at": submittedAt,
	}}
	return r.transition(ctx, attemptID, filter, update)
}

func (r *AttemptRepository) MarkGraded(ctx context.Context, attemptID string) error {
	filter := bson.M{"_id": attemptID, "status": bson.M{"$in": []models.AttemptStatus{
		models.AttemptStatusSubmitted,
		models.AttemptStatusGraded,
	}}}
	update := bson.M{"$set": bson.M{"status": models.AttemptStatusGraded}}
	return r.transition(ctx, attemptID, filter, update)
}

func (r *AttemptRepository) transition(ctx context.Context, attemptID string, filter, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update attempt: %w", err)
	}
	if result.MatchedCount == 0 {
		if _, err := r.FindByID(ctx, attemptID); err != nil {
			return err
		}
		return fmt.Errorf("attempt %s is not in the expected state: %w", attemptID, models.ErrConflict)
	}
	return nil
}
