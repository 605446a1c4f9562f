package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"assessment-service/internal/models"
)

func TestLockStore(t *testing.T) {
	store := NewStore()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	locks := store.Locks()
	ctx := context.Background()

	token, ok, err := locks.Acquire(ctx, "attempt-1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("Expected first acquire to succeed, got ok=%v err=%v", ok, err)
	}
	if _, ok, _ := locks.Acquire(ctx, "attempt-1", time.Minute); ok {
		t.Errorf("Expected second acquire to fail while the lock is held")
	}

	if err := locks.Release(ctx, "attempt-1", "someone-else"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, ok, _ := locks.Acquire(ctx, "attempt-1", time.Minute); ok {
		t.Errorf("Expected a foreign token not to release the lock")
	}

	if err := locks.Release(ctx, "attempt-1", token); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, ok, _ := locks.Acquire(ctx, "attempt-1", time.Minute); !ok {
		t.Errorf("Expected acquire to succeed after release")
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := locks.Acquire(ctx, "attempt-1", time.Minute); !ok {
		t.Errorf("Expected acquire to succeed after expiry")
	}
}

func TestAttemptTransitions(t *testing.T) {
	store := NewStore()
	attempts := store.Attempts()
	ctx := context.Background()

	attempt := &models.TestAttempt{ID: "a1", TestID: "t1", StudentID: "s1", QuestionIDs: []string{"q1"}, Status: models.AttemptStatusInProgress}
	if err := attempts.Create(ctx, attempt); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := attempts.MarkGraded(ctx, "a1"); !errors.Is(err, models.ErrConflict) {
		t.Errorf("Expected conflict grading an in-progress attempt, got %v", err)
	}
	if err := attempts.AppendAnswer(ctx, "a1", models.Answer{QuestionID: "q1", SubmittedAnswer: "A"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := attempts.Seal(ctx, "a1", time.Now()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := attempts.AppendAnswer(ctx, "a1", models.Answer{QuestionID: "q1", SubmittedAnswer: "B"}); !errors.Is(err, models.ErrConflict) {
		t.Errorf("Expected conflict answering a sealed attempt, got %v", err)
	}
	if err := attempts.Seal(ctx, "missing", time.Now()); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}

	stored, err := attempts.FindByID(ctx, "a1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if stored.Status != models.AttemptStatusSubmitted || len(stored.Answers) != 1 {
		t.Errorf("Expected submitted attempt with 1 answer, got %s with %d", stored.Status, len(stored.Answers))
	}
}

func TestResultUpsertReplaces(t *testing.T) {
	results := NewStore().Results()
	ctx := context.Background()

	replaced, err := results.Upsert(ctx, &models.TestResult{ID: "r1", AttemptID: "a1", TestID: "t1", PercentageScore: 40})
	if err != nil || replaced {
		t.Fatalf("Expected fresh insert, got replaced=%v err=%v", replaced, err)
	}
	replaced, err = results.Upsert(ctx, &models.TestResult{ID: "r1", AttemptID: "a1", TestID: "t1", PercentageScore: 80})
	if err != nil || !replaced {
		t.Fatalf("Expected replacement, got replaced=%v err=%v", replaced, err)
	}

	byTest, _ := results.FindByTest(ctx, "t1")
	if len(byTest) != 1 || byTest[0].PercentageScore != 80 {
		t.Errorf("Expected a single result with score 80, got %+v", byTest)
	}
}
