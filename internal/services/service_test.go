package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"assessment-service/internal/analytics"
	"assessment-service/internal/config"
	"assessment-service/internal/event"
	"assessment-service/internal/grading"
	"assessment-service/internal/models"
	"assessment-service/internal/repository/memory"
)

type recordingPublisher struct {
	mu       sync.Mutex
	results  []*event.ResultEvent
	attempts []*event.AttemptEvent
	tests    []*event.TestEvent
}

func (p *recordingPublisher) PublishResultEvent(_ context.Context, e *event.ResultEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, e)
	return nil
}

func (p *recordingPublisher) PublishAttemptEvent(_ context.Context, e *event.AttemptEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attempts = append(p.attempts, e)
	return nil
}

func (p *recordingPublisher) PublishTestEvent(_ context.Context, e *event.TestEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tests = append(p.tests, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

var (
	instructor = models.Viewer{UserID: "inst-1", Role: models.RoleInstructor}
	otherInst  = models.Viewer{UserID: "inst-2", Role: models.RoleInstructor}
	student    = models.Viewer{UserID: "stu-1", Role: models.RoleStudent}
	student2   = models.Viewer{UserID: "stu-2", Role: models.RoleStudent}
	admin      = models.Viewer{UserID: "root", Role: models.RoleAdmin}
)

type fixture struct {
	store     *memory.Store
	publisher *recordingPublisher
	questions *QuestionService
	tests     *TestService
	grading   *GradingService
	attempts  *AttemptService
	results   *ResultService
	analytics *AnalyticsService
	clock     time.Time
}

func newFixture(t *testing.T, policy string) *fixture {
	t.Helper()
	store := memory.NewStore()
	pub := &recordingPublisher{}
	f := &fixture{
		store:     store,
		publisher: pub,
		clock:     time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.clock }

	f.questions = NewQuestionService(store.Questions(), store.Tests())
	f.questions.now = clock
	f.tests = NewTestService(store.Tests(), store.Questions(), pub, 60)
	f.tests.now = clock
	f.grading = NewGradingService(
		store.Attempts(), store.Tests(), store.Questions(), store.Results(), store.Locks(), pub,
		grading.NewEngine(),
		config.GradingConfig{LockTTL: 30 * time.Second, RegradePolicy: policy},
	)
	f.attempts = NewAttemptService(store.Attempts(), store.Tests(), store.Questions(), f.grading, pub)
	f.attempts.now = clock
	f.results = NewResultService(store.Results(), store.Tests())
	f.analytics = NewAnalyticsService(store.Tests(), store.Attempts(), store.Results(), analytics.DefaultDashboardPolicy())
	return f
}

func (f *fixture) advance(d time.Duration) { f.clock = f.clock.Add(d) }

func points(v float64) *float64 { return &v }

// publishedTest creates a two question test (one of each type, two points
// each) and publishes it.
func (f *fixture) publishedTest(t *testing.T) *models.Test {
	t.Helper()
	ctx := context.Background()
	mc, err := f.questions.CreateQuestion(ctx, instructor, QuestionInput{
		Type:          "multiple_choice",
		Text:          "Capital of France?",
		Options:       []string{"Paris", "Lyon", "Nice"},
		CorrectAnswer: "Paris",
		Points:        points(2),
	})
	if err != nil {
		t.Fatalf("Failed to create question: %v", err)
	}
	tf, err := f.questions.CreateQuestion(ctx, instructor, QuestionInput{
		Type:          "true_false",
		Text:          "Water boils at 100C at sea level.",
		CorrectAnswer: "yes",
		Points:        points(2),
	})
	if err != nil {
		t.Fatalf("Failed to create question: %v", err)
	}

	test, err := f.tests.CreateTest(ctx, instructor, TestInput{
		Title:       "Geography",
		QuestionIDs: []string{mc.ID, tf.ID},
	})
	if err != nil {
		t.Fatalf("Failed to create test: %v", err)
	}
	test, err = f.tests.PublishTest(ctx, instructor, test.ID)
	if err != nil {
		t.Fatalf("Failed to publish test: %v", err)
	}
	return test
}

func (f *fixture) takeTest(t *testing.T, viewer models.Viewer, test *models.Test, answers ...string) *models.TestResult {
	t.Helper()
	ctx := context.Background()
	attempt, err := f.attempts.StartAttempt(ctx, viewer, test.ID)
	if err != nil {
		t.Fatalf("Failed to start attempt: %v", err)
	}
	for i, a := range answers {
		if _, err := f.attempts.SubmitAnswer(ctx, viewer, attempt.ID, AnswerInput{QuestionID: test.QuestionIDs[i], SubmittedAnswer: a}); err != nil {
			t.Fatalf("Failed to submit answer: %v", err)
		}
	}
	f.advance(90 * time.Second)
	result, err := f.attempts.SubmitAttempt(ctx, viewer, attempt.ID)
	if err != nil {
		t.Fatalf("Failed to submit attempt: %v", err)
	}
	return result
}

func TestCreateQuestionValidation(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	tests := []struct {
		name    string
		input   QuestionInput
		wantErr error
	}{
		{
			name:    "missing text",
			input:   QuestionInput{Type: "multiple_choice", Options: []string{"a", "b"}, CorrectAnswer: "a"},
			wantErr: models.ErrInvalidInput,
		},
		{
			name:    "unknown type",
			input:   QuestionInput{Type: "essay", Text: "Explain", CorrectAnswer: "x"},
			wantErr: models.ErrInvalidInput,
		},
		{
			name:    "single option",
			input:   QuestionInput{Type: "multiple_choice", Text: "Pick", Options: []string{"a"}, CorrectAnswer: "a"},
			wantErr: models.ErrInvalidInput,
		},
		{
			name:    "duplicate options",
			input:   QuestionInput{Type: "multiple_choice", Text: "Pick", Options: []string{"a", " A "}, CorrectAnswer: "a"},
			wantErr: models.ErrInvalidInput,
		},
		{
			name:    "answer not an option",
			input:   QuestionInput{Type: "multiple_choice", Text: "Pick", Options: []string{"a", "b"}, CorrectAnswer: "c"},
			wantErr: models.ErrInvalidAnswerKey,
		},
		{
			name:    "true false key not boolean",
			input:   QuestionInput{Type: "true_false", Text: "Sky is blue", CorrectAnswer: "maybe"},
			wantErr: models.ErrInvalidAnswerKey,
		},
		{
			name:    "negative points",
			input:   QuestionInput{Type: "true_false", Text: "Sky is blue", CorrectAnswer: "true", Points: points(-1)},
			wantErr: models.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.questions.CreateQuestion(ctx, instructor, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
			var ve *models.ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("Expected a validation error, got %T", err)
			}
		})
	}
}

func TestCreateQuestionNormalizesTrueFalse(t *testing.T) {
	f := newFixture(t, "")
	q, err := f.questions.CreateQuestion(context.Background(), instructor, QuestionInput{
		Type:          "true_false",
		Text:          "The earth orbits the sun.",
		CorrectAnswer: " Y ",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if q.CorrectAnswer != "True" {
		t.Errorf("Expected correct answer True, got %q", q.CorrectAnswer)
	}
	if len(q.Options) != 2 {
		t.Errorf("Expected 2 options, got %v", q.Options)
	}
	if q.Points != 1 {
		t.Errorf("Expected default of 1 point, got %v", q.Points)
	}
	if q.InstructorID != instructor.UserID || q.Source != models.QuestionSourceManual {
		t.Errorf("Expected manual question owned by %s, got %+v", instructor.UserID, q)
	}
}

func TestQuestionOwnership(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	q, err := f.questions.CreateQuestion(ctx, instructor, QuestionInput{Type: "true_false", Text: "T", CorrectAnswer: "true"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, err := f.questions.GetQuestion(ctx, otherInst, q.ID); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("Expected ErrForbidden for another instructor, got %v", err)
	}
	if _, err := f.questions.GetQuestion(ctx, admin, q.ID); err != nil {
		t.Errorf("Expected admin to read the question, got %v", err)
	}
	if err := f.questions.DeleteQuestion(ctx, student, q.ID); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("Expected ErrForbidden for student delete, got %v", err)
	}
}

func TestQuestionFrozenOncePublished(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	test := f.publishedTest(t)
	qid := test.QuestionIDs[0]

	_, err := f.questions.UpdateQuestion(ctx, instructor, qid, QuestionInput{
		Type: "true_false", Text: "Changed", CorrectAnswer: "false",
	})
	if !errors.Is(err, ErrQuestionLocked) {
		t.Errorf("Expected ErrQuestionLocked on update, got %v", err)
	}
	if err := f.questions.DeleteQuestion(ctx, instructor, qid); !errors.Is(err, models.ErrConflict) {
		t.Errorf("Expected conflict on delete, got %v", err)
	}
}

func TestIngestGenerated(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	evt := &event.GeneratedQuestionsEvent{
		EventType:    event.EventTypeQuestionGenerated,
		InstructorID: instructor.UserID,
		DocumentID:   "doc-9",
		Questions: []event.GeneratedQuestion{
			{Type: "multiple_choice", Text: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: "4", Points: 3},
			{Type: "true_false", Text: "Go has generics", CorrectAnswer: "true"},
			{Type: "multiple_choice", Text: "Bad key", Options: []string{"a", "b"}, CorrectAnswer: "z"},
			{Type: "short_answer", Text: "Unsupported", CorrectAnswer: "x"},
		},
	}

	accepted, err := f.questions.IngestGenerated(ctx, evt)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if accepted != 2 {
		t.Errorf("Expected 2 accepted questions, got %d", accepted)
	}

	stored, _ := f.questions.ListQuestions(ctx, instructor)
	if len(stored) != 2 {
		t.Fatalf("Expected 2 stored questions, got %d", len(stored))
	}
	for _, q := range stored {
		if q.Source != models.QuestionSourceGenerated || q.DocumentID != "doc-9" {
			t.Errorf("Expected generated question from doc-9, got %+v", q)
		}
		if q.Points <= 0 {
			t.Errorf("Expected positive points, got %v", q.Points)
		}
	}

	if _, err := f.questions.IngestGenerated(ctx, &event.GeneratedQuestionsEvent{}); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for event without instructor, got %v", err)
	}
}

func TestTestLifecycle(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	q1, _ := f.questions.CreateQuestion(ctx, instructor, QuestionInput{Type: "true_false", Text: "A", CorrectAnswer: "true"})
	q2, _ := f.questions.CreateQuestion(ctx, instructor, QuestionInput{Type: "true_false", Text: "B", CorrectAnswer: "false"})
	foreign, _ := f.questions.CreateQuestion(ctx, otherInst, QuestionInput{Type: "true_false", Text: "C", CorrectAnswer: "false"})

	test, err := f.tests.CreateTest(ctx, instructor, TestInput{Title: "Quiz"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if test.PassingScore != 60 {
		t.Errorf("Expected default passing score 60, got %v", test.PassingScore)
	}

	if _, err := f.tests.PublishTest(ctx, instructor, test.ID); !errors.Is(err, models.ErrEmptyTest) {
		t.Errorf("Expected ErrEmptyTest publishing an empty test, got %v", err)
	}
	if _, err := f.tests.AddQuestion(ctx, instructor, test.ID, foreign.ID); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("Expected ErrForbidden adding a foreign question, got %v", err)
	}
	if _, err := f.tests.AddQuestion(ctx, instructor, test.ID, "missing"); !errors.Is(err, models.ErrUnknownQuestion) {
		t.Errorf("Expected ErrUnknownQuestion, got %v", err)
	}

	for _, q := range []*models.Question{q1, q2} {
		if test, err = f.tests.AddQuestion(ctx, instructor, test.ID, q.ID); err != nil {
			t.Fatalf("Failed to add question: %v", err)
		}
	}
	if _, err := f.tests.AddQuestion(ctx, instructor, test.ID, q1.ID); !errors.Is(err, models.ErrDuplicateQuestion) {
		t.Errorf("Expected ErrDuplicateQuestion, got %v", err)
	}
	if test, err = f.tests.RemoveQuestion(ctx, instructor, test.ID, q1.ID); err != nil {
		t.Fatalf("Failed to remove question: %v", err)
	}
	if len(test.QuestionIDs) != 1 || test.QuestionIDs[0] != q2.ID {
		t.Errorf("Expected only %s to remain, got %v", q2.ID, test.QuestionIDs)
	}

	if _, err := f.attempts.StartAttempt(ctx, student, test.ID); !errors.Is(err, ErrTestNotPublished) {
		t.Errorf("Expected ErrTestNotPublished, got %v", err)
	}
	if _, err := f.tests.GetTest(ctx, student, test.ID); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("Expected draft to be hidden from students, got %v", err)
	}

	published, err := f.tests.PublishTest(ctx, instructor, test.ID)
	if err != nil {
		t.Fatalf("Failed to publish: %v", err)
	}
	if !published.IsPublished() || !published.PublishedAt.Equal(f.clock) {
		t.Errorf("Expected published test stamped at %v, got %+v", f.clock, published)
	}
	if len(f.publisher.tests) != 1 {
		t.Errorf("Expected 1 test event, got %d", len(f.publisher.tests))
	}
	if _, err := f.tests.GetTest(ctx, student, test.ID); err != nil {
		t.Errorf("Expected published test to be visible, got %v", err)
	}
	if _, err := f.tests.UpdateTest(ctx, instructor, test.ID, TestInput{Title: "Renamed"}); !errors.Is(err, ErrTestPublished) {
		t.Errorf("Expected ErrTestPublished, got %v", err)
	}
}

func TestSubmitAttemptGrades(t *testing.T) {
	f := newFixture(t, "")
	test := f.publishedTest(t)

	result := f.takeTest(t, student, test, "paris", "false")

	if result.CorrectAnswers != 1 || result.IncorrectAnswers != 1 {
		t.Errorf("Expected 1 correct and 1 incorrect, got %d and %d", result.CorrectAnswers, result.IncorrectAnswers)
	}
	if result.PercentageScore != 50 {
		t.Errorf("Expected 50%%, got %v", result.PercentageScore)
	}
	if result.Passed {
		t.Errorf("Expected a fail against passing score 60")
	}
	if result.TimeTakenSeconds != 90 {
		t.Errorf("Expected 90 seconds taken, got %v", result.TimeTakenSeconds)
	}

	attempt, err := f.attempts.GetAttempt(context.Background(), student, result.AttemptID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if attempt.Status != models.AttemptStatusGraded {
		t.Errorf("Expected attempt graded, got %s", attempt.Status)
	}
	if len(f.publisher.attempts) != 1 || len(f.publisher.results) != 1 {
		t.Errorf("Expected one attempt and one result event, got %d and %d", len(f.publisher.attempts), len(f.publisher.results))
	}
	if f.publisher.results[0].Regraded {
		t.Errorf("Expected first grading not to be flagged as regrade")
	}
}

func TestSubmitAnswerRules(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	test := f.publishedTest(t)

	attempt, err := f.attempts.StartAttempt(ctx, student, test.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, err := f.attempts.SubmitAnswer(ctx, student2, attempt.ID, AnswerInput{QuestionID: test.QuestionIDs[0], SubmittedAnswer: "Paris"}); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("Expected ErrForbidden answering someone else's attempt, got %v", err)
	}
	if _, err := f.attempts.SubmitAnswer(ctx, student, attempt.ID, AnswerInput{QuestionID: "nope", SubmittedAnswer: "x"}); !errors.Is(err, models.ErrUnknownQuestion) {
		t.Errorf("Expected ErrUnknownQuestion, got %v", err)
	}
	if _, err := f.attempts.SubmitAnswer(ctx, student, attempt.ID, AnswerInput{SubmittedAnswer: "x"}); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput without question id, got %v", err)
	}

	questions, err := f.attempts.AttemptQuestions(ctx, student, attempt.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(questions) != 2 || questions[0].Number != 1 || questions[1].Number != 2 {
		t.Errorf("Expected two numbered questions, got %+v", questions)
	}

	if _, err := f.attempts.SubmitAttempt(ctx, student, attempt.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := f.attempts.SubmitAnswer(ctx, student, attempt.ID, AnswerInput{QuestionID: test.QuestionIDs[0], SubmittedAnswer: "Paris"}); !errors.Is(err, ErrAttemptClosed) {
		t.Errorf("Expected ErrAttemptClosed after submit, got %v", err)
	}
	if _, err := f.attempts.SubmitAttempt(ctx, student, attempt.ID); !errors.Is(err, ErrAttemptClosed) {
		t.Errorf("Expected ErrAttemptClosed on second submit, got %v", err)
	}
}

func TestRegradePolicies(t *testing.T) {
	tests := []struct {
		name         string
		policy       string
		wantErr      error
		wantRegraded bool
	}{
		{name: "default replaces", policy: "", wantRegraded: true},
		{name: "replace", policy: config.RegradeReplace, wantRegraded: true},
		{name: "reject", policy: config.RegradeReject, wantErr: ErrAlreadyGraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.policy)
			ctx := context.Background()
			test := f.publishedTest(t)
			first := f.takeTest(t, student, test, "Paris", "true")

			again, err := f.grading.RegradeAttempt(ctx, instructor, first.AttemptID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr != nil {
				return
			}
			if again.ID != first.ID {
				t.Errorf("Expected stable result id %s, got %s", first.ID, again.ID)
			}
			stored, _ := f.results.GetResultsByTest(ctx, instructor, test.ID)
			if len(stored) != 1 {
				t.Errorf("Expected exactly one stored result, got %d", len(stored))
			}
			last := f.publisher.results[len(f.publisher.results)-1]
			if last.Regraded != tt.wantRegraded {
				t.Errorf("Expected regraded=%t, got %t", tt.wantRegraded, last.Regraded)
			}
		})
	}
}

func TestRegradeRequiresTestOwner(t *testing.T) {
	f := newFixture(t, "")
	test := f.publishedTest(t)
	result := f.takeTest(t, student, test, "Paris", "true")

	if _, err := f.grading.RegradeAttempt(context.Background(), otherInst, result.AttemptID); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
}

func TestGradeAttemptStates(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	test := f.publishedTest(t)

	attempt, err := f.attempts.StartAttempt(ctx, student, test.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := f.grading.GradeAttempt(ctx, attempt.ID); !errors.Is(err, ErrAttemptNotSubmitted) {
		t.Errorf("Expected ErrAttemptNotSubmitted, got %v", err)
	}
	if _, err := f.grading.GradeAttempt(ctx, "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := f.store.Attempts().Seal(ctx, attempt.ID, f.clock); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	token, ok, _ := f.store.Locks().Acquire(ctx, "grading:"+attempt.ID, time.Minute)
	if !ok {
		t.Fatalf("Expected to take the grading lock")
	}
	if _, err := f.grading.GradeAttempt(ctx, attempt.ID); !errors.Is(err, ErrGradingInProgress) {
		t.Errorf("Expected ErrGradingInProgress while locked, got %v", err)
	}
	_ = f.store.Locks().Release(ctx, "grading:"+attempt.ID, token)

	result, err := f.grading.GradeAttempt(ctx, attempt.ID)
	if err != nil {
		t.Fatalf("Expected grading after release, got %v", err)
	}
	if result.UnansweredQuestions != 2 {
		t.Errorf("Expected 2 unanswered questions, got %d", result.UnansweredQuestions)
	}
}

func TestResultAccess(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	test := f.publishedTest(t)
	result := f.takeTest(t, student, test, "Paris", "true")

	tests := []struct {
		name    string
		viewer  models.Viewer
		wantErr error
	}{
		{name: "student who took it", viewer: student},
		{name: "test owner", viewer: instructor},
		{name: "admin", viewer: admin},
		{name: "other student", viewer: student2, wantErr: models.ErrForbidden},
		{name: "other instructor", viewer: otherInst, wantErr: models.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.results.GetResultByAttempt(ctx, tt.viewer, result.AttemptID)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	mine, _ := f.results.GetResultsByStudent(ctx, student)
	if len(mine) != 1 {
		t.Errorf("Expected 1 result for student, got %d", len(mine))
	}
}

func TestAnalyticsService(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	test := f.publishedTest(t)

	f.takeTest(t, student, test, "Paris", "true")
	f.takeTest(t, student2, test, "lyon", "true")
	if _, err := f.attempts.StartAttempt(ctx, models.Viewer{UserID: "stu-3", Role: models.RoleStudent}, test.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	summary, err := f.analytics.TestSummary(ctx, instructor, test.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if summary.TotalAttempted != 3 || summary.TotalCompleted != 2 {
		t.Errorf("Expected 3 attempted and 2 completed, got %d and %d", summary.TotalAttempted, summary.TotalCompleted)
	}
	if summary.AverageScore != 75 {
		t.Errorf("Expected average 75, got %v", summary.AverageScore)
	}
	if len(summary.StudentIDs) != 3 {
		t.Errorf("Expected 3 distinct students, got %v", summary.StudentIDs)
	}

	qa, err := f.analytics.QuestionAnalytics(ctx, instructor, test.ID, test.QuestionIDs[0])
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if qa.CorrectCount != 1 || qa.IncorrectCount != 1 {
		t.Errorf("Expected 1 correct and 1 incorrect, got %+v", qa)
	}
	if qa.MostCommonWrongAnswer == nil || *qa.MostCommonWrongAnswer != "lyon" {
		t.Errorf("Expected most common wrong answer lyon, got %v", qa.MostCommonWrongAnswer)
	}

	all, err := f.analytics.TestQuestionAnalytics(ctx, instructor, test.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(all) != 2 || all[1].AccuracyRate != 1 {
		t.Errorf("Expected two questions with the second always right, got %+v", all)
	}

	if _, err := f.analytics.QuestionAnalytics(ctx, instructor, test.ID, "elsewhere"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for question off the test, got %v", err)
	}
	if _, err := f.analytics.TestSummary(ctx, otherInst, test.ID); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}

	dashboard, err := f.analytics.InstructorDashboard(ctx, instructor, instructor.UserID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if dashboard.TestsCreated != 1 || dashboard.TestsPublished != 1 {
		t.Errorf("Expected 1 created and published test, got %+v", dashboard)
	}
	if dashboard.DistinctStudents != 3 {
		t.Errorf("Expected 3 distinct students, got %d", dashboard.DistinctStudents)
	}
	if _, err := f.analytics.InstructorDashboard(ctx, otherInst, instructor.UserID); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("Expected ErrForbidden for another instructor's dashboard, got %v", err)
	}
	if _, err := f.analytics.InstructorDashboard(ctx, admin, instructor.UserID); err != nil {
		t.Errorf("Expected admin to see any dashboard, got %v", err)
	}
}
