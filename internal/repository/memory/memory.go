// Package memory keeps every store in process memory. It backs
// STORAGE_DRIVER=memory for local runs and the service and handler tests.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"assessment-service/internal/models"

	"github.com/google/uuid"
)

type Store struct {
	mu        sync.RWMutex
	questions map[string]models.Question
	tests     map[string]models.Test
	attempts  map[string]models.TestAttempt
	results   map[string]models.TestResult // keyed by attempt id
	locks     map[string]lockEntry
	now       func() time.Time
}

type lockEntry struct {
	token   string
	expires time.Time
}

func NewStore() *Store {
	return &Store{
		questions: make(map[string]models.Question),
		tests:     make(map[string]models.Test),
		attempts:  make(map[string]models.TestAttempt),
		results:   make(map[string]models.TestResult),
		locks:     make(map[string]lockEntry),
		now:       time.Now,
	}
}

func (s *Store) Questions() *QuestionStore { return &QuestionStore{s} }
func (s *Store) Tests() *TestStore         { return &TestStore{s} }
func (s *Store) Attempts() *AttemptStore   { return &AttemptStore{s} }
func (s *Store) Results() *ResultStore     { return &ResultStore{s} }
func (s *Store) Locks() *LockStore         { return &LockStore{s} }

type QuestionStore struct{ s *Store }

func (q *QuestionStore) Create(_ context.Context, question *models.Question) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	if _, ok := q.s.questions[question.ID]; ok {
		return fmt.Errorf("question %s already exists: %w", question.ID, models.ErrConflict)
	}
	q.s.questions[question.ID] = copyQuestion(*question)
	return nil
}

func (q *QuestionStore) FindByID(_ context.Context, id string) (*models.Question, error) {
	q.s.mu.RLock()
	defer q.s.mu.RUnlock()
	question, ok := q.s.questions[id]
	if !ok {
		return nil, fmt.Errorf("question %s: %w", id, models.ErrNotFound)
	}
	question = copyQuestion(question)
	return &question, nil
}

func (q *QuestionStore) FindByIDs(_ context.Context, ids []string) ([]models.Question, error) {
	q.s.mu.RLock()
	defer q.s.mu.RUnlock()
	questions := []models.Question{}
	for _, id := range ids {
		if question, ok := q.s.questions[id]; ok {
			questions = append(questions, copyQuestion(question))
		}
	}
	return questions, nil
}

func (q *QuestionStore) FindByInstructor(_ context.Context, instructorID string) ([]models.Question, error) {
	q.s.mu.RLock()
	defer q.s.mu.RUnlock()
	questions := []models.Question{}
	for _, question := range q.s.questions {
		if question.InstructorID == instructorID {
			questions = append(questions, copyQuestion(question))
		}
	}
	slices.SortFunc(questions, func(a, b models.Question) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return questions, nil
}

func (q *QuestionStore) Update(_ context.Context, question *models.Question) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	if _, ok := q.s.questions[question.ID]; !ok {
		return fmt.Errorf("question %s: %w", question.ID, models.ErrNotFound)
	}
	q.s.questions[question.ID] = copyQuestion(*question)
	return nil
}

func (q *QuestionStore) Delete(_ context.Context, id string) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	if _, ok := q.s.questions[id]; !ok {
		return fmt.Errorf("question %s: %w", id, models.ErrNotFound)
	}
	delete(q.s.questions, id)
	return nil
}

type TestStore struct{ s *Store }

func (t *TestStore) Create(_ context.Context, test *models.Test) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if _, ok := t.s.tests[test.ID]; ok {
		return fmt.Errorf("test %s already exists: %w", test.ID, models.ErrConflict)
	}
	t.s.tests[test.ID] = copyTest(*test)
	return nil
}

func (t *TestStore) FindByID(_ context.Context, id string) (*models.Test, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	test, ok := t.s.tests[id]
	if !ok {
		return nil, fmt.Errorf("test %s: %w", id, models.ErrNotFound)
	}
	test = copyTest(test)
	return &test, nil
}

func (t *TestStore) FindByInstructor(_ context.Context, instructorID string) ([]models.Test, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	tests := []models.Test{}
	for _, test := range t.s.tests {
		if test.InstructorID == instructorID {
			tests = append(tests, copyTest(test))
		}
	}
	slices.SortFunc(tests, func(a, b models.Test) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return tests, nil
}

func (t *TestStore) Update(_ context.Context, test *models.Test) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	current, ok := t.s.tests[test.ID]
	if !ok {
		return fmt.Errorf("test %s: %w", test.ID, models.ErrNotFound)
	}
	if current.Status != models.TestStatusDraft {
		return fmt.Errorf("test %s is published: %w", test.ID, models.ErrConflict)
	}
	t.s.tests[test.ID] = copyTest(*test)
	return nil
}

func (t *TestStore) IsQuestionPublished(_ context.Context, questionID string) (bool, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	for _, test := range t.s.tests {
		if test.IsPublished() && test.HasQuestion(questionID) {
			return true, nil
		}
	}
	return false, nil
}

type AttemptStore struct{ s *Store }

func (a *AttemptStore) Create(_ context.Context, attempt *models.TestAttempt) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if _, ok := a.s.attempts[attempt.ID]; ok {
		return fmt.Errorf("attempt %s already exists: %w", attempt.ID, models.ErrConflict)
	}
	a.s.attempts[attempt.ID] = copyAttempt(*attempt)
	return nil
}

func (a *AttemptStore) FindByID(_ context.Context, id string) (*models.TestAttempt, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	attempt, ok := a.s.attempts[id]
	if !ok {
		return nil, fmt.Errorf("attempt %s: %w", id, models.ErrNotFound)
	}
	attempt = copyAttempt(attempt)
	return &attempt, nil
}

func (a *AttemptStore) FindByTest(_ context.Context, testID string) ([]models.TestAttempt, error) {
	return a.filter(func(at models.TestAttempt) bool { return at.TestID == testID }), nil
}

func (a *AttemptStore) FindByStudent(_ context.Context, studentID string) ([]models.TestAttempt, error) {
	return a.filter(func(at models.TestAttempt) bool { return at.StudentID == studentID }), nil
}

func (a *AttemptStore) filter(keep func(models.TestAttempt) bool) []models.TestAttempt {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	attempts := []models.TestAttempt{}
	for _, attempt := range a.s.attempts {
		if keep(attempt) {
			attempts = append(attempts, copyAttempt(attempt))
		}
	}
	slices.SortFunc(attempts, func(x, y models.TestAttempt) int {
		if c := x.StartedAt.Compare(y.StartedAt); c != 0 {
			return c
		}
		return cmp.Compare(x.ID, y.ID)
	})
	return attempts
}

func (a *AttemptStore) AppendAnswer(_ context.Context, attemptID string, answer models.Answer) error {
	return a.transition(attemptID, []models.AttemptStatus{models.AttemptStatusInProgress}, func(at *models.TestAttempt) {
		at.Answers = append(at.Answers, answer)
	})
}

func (a *AttemptStore) Seal(_ context.Context, attemptID string, submittedAt time.Time) error {
	return a.transition(attemptID, []models.AttemptStatus{models.AttemptStatusInProgress}, func(at *models.TestAttempt) {
		at.Status = models.AttemptStatusSubmitted
		at.SubmittedAt = submittedAt
	})
}

func (a *AttemptStore) MarkGraded(_ context.Context, attemptID string) error {
	from := []models.AttemptStatus{models.AttemptStatusSubmitted, models.AttemptStatusGraded}
	return a.transition(attemptID, from, func(at *models.TestAttempt) {
		at.Status = models.AttemptStatusGraded
	})
}

func (a *AttemptStore) transition(attemptID string, from []models.AttemptStatus, apply func(*models.TestAttempt)) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	attempt, ok := a.s.attempts[attemptID]
	if !ok {
		return fmt.Errorf("attempt %s: %w", attemptID, models.ErrNotFound)
	}
	if !slices.Contains(from, attempt.Status) {
		return fmt.Errorf("attempt %s is not in the expected state: %w", attemptID, models.ErrConflict)
	}
	attempt = copyAttempt(attempt)
	apply(&attempt)
	a.s.attempts[attemptID] = attempt
	return nil
}

type ResultStore struct{ s *Store }

func (r *ResultStore) Upsert(_ context.Context, result *models.TestResult) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, replaced := r.s.results[result.AttemptID]
	r.s.results[result.AttemptID] = copyResult(*result)
	return replaced, nil
}

func (r *ResultStore) FindByAttempt(_ context.Context, attemptID string) (*models.TestResult, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result, ok := r.s.results[attemptID]
	if !ok {
		return nil, fmt.Errorf("result for attempt %s: %w", attemptID, models.ErrNotFound)
	}
	result = copyResult(result)
	return &result, nil
}

func (r *ResultStore) FindByTest(_ context.Context, testID string) ([]models.TestResult, error) {
	return r.filter(func(res models.TestResult) bool { return res.TestID == testID }), nil
}

func (r *ResultStore) FindByStudent(_ context.Context, studentID string) ([]models.TestResult, error) {
	return r.filter(func(res models.TestResult) bool { return res.StudentID == studentID }), nil
}

func (r *ResultStore) filter(keep func(models.TestResult) bool) []models.TestResult {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	results := []models.TestResult{}
	for _, result := range r.s.results {
		if keep(result) {
			results = append(results, copyResult(result))
		}
	}
	slices.SortFunc(results, func(a, b models.TestResult) int {
		if c := a.GradedAt.Compare(b.GradedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return results
}

type LockStore struct{ s *Store }

func (l *LockStore) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	now := l.s.now()
	if held, ok := l.s.locks[key]; ok && now.Before(held.expires) {
		return "", false, nil
	}
	token := uuid.NewString()
	l.s.locks[key] = lockEntry{token: token, expires: now.Add(ttl)}
	return token, true, nil
}

func (l *LockStore) Release(_ context.Context, key, token string) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if held, ok := l.s.locks[key]; ok && held.token == token {
		delete(l.s.locks, key)
	}
	return nil
}

func copyQuestion(q models.Question) models.Question {
	q.Options = slices.Clone(q.Options)
	return q
}

func copyTest(t models.Test) models.Test {
	t.QuestionIDs = slices.Clone(t.QuestionIDs)
	return t
}

func copyAttempt(a models.TestAttempt) models.TestAttempt {
	a.QuestionIDs = slices.Clone(a.QuestionIDs)
	a.Answers = slices.Clone(a.Answers)
	return a
}

func copyResult(r models.TestResult) models.TestResult {
	r.QuestionResults = slices.Clone(r.QuestionResults)
	return r
}
