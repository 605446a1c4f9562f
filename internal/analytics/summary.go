package analytics

import (
	"math"
	"slices"
	"time"

	"assessment-service/internal/models"

	"github.com/montanaflynn/stats"
)

const opSummarize = "summarize_test"

const distributionBuckets = 10

// TestMeta carries the parts of a summary that do not come from results.
// StudentIDs lists the students who started at least one attempt.
type TestMeta struct {
	TestID        string
	Title         string
	InstructorID  string
	QuestionCount int
	Published     bool
	CreatedAt     time.Time
	StudentIDs    []string
}

// SummarizeTest aggregates the graded results of one test. attempted is
// the number of attempts started, including those never submitted; it is
// raised to len(results) when smaller. An empty result set yields zero
// statistics rather than an error.
func SummarizeTest(meta TestMeta, attempted int, results []models.TestResult) (models.TestSummary, error) {
	if meta.TestID == "" {
		return models.TestSummary{}, models.NewValidationError(opSummarize, models.ErrInvalidInput, "test id is required")
	}
	if attempted < 0 {
		return models.TestSummary{}, models.NewValidationError(opSummarize, models.ErrInvalidInput, "attempted count %d is negative", attempted)
	}
	for _, r := range results {
		if r.TestID != meta.TestID {
			return models.TestSummary{}, models.NewValidationError(opSummarize, models.ErrTestMismatch, "result %q is for test %q, not %q", r.ID, r.TestID, meta.TestID)
		}
		if err := checkResult(opSummarize, r); err != nil {
			return models.TestSummary{}, err
		}
	}

	summary := models.TestSummary{
		TestID:            meta.TestID,
		Title:             meta.Title,
		InstructorID:      meta.InstructorID,
		Published:         meta.Published,
		CreatedAt:         meta.CreatedAt,
		TotalAttempted:    max(attempted, len(results)),
		TotalCompleted:    len(results),
		QuestionCount:     meta.QuestionCount,
		ScoreDistribution: scoreDistribution(results),
		StudentIDs:        distinctStudents(meta.StudentIDs, results),
	}
	if summary.TotalAttempted > 0 {
		summary.CompletionRate = float64(summary.TotalCompleted) / float64(summary.TotalAttempted)
	}
	if len(results) == 0 {
		return summary, nil
	}

	scores := make(stats.Float64Data, 0, len(results))
	times := make(stats.Float64Data, 0, len(results))
	passed := 0
	for _, r := range results {
		scores = append(scores, r.PercentageScore)
		times = append(times, r.TimeTakenSeconds)
		if r.Passed {
			passed++
		}
	}

	var err error
	if summary.AverageScore, err = scores.Mean(); err != nil {
		return models.TestSummary{}, statsError(err)
	}
	if summary.MedianScore, err = scores.Median(); err != nil {
		return models.TestSummary{}, statsError(err)
	}
	if summary.HighestScore, err = scores.Max(); err != nil {
		return models.TestSummary{}, statsError(err)
	}
	if summary.LowestScore, err = scores.Min(); err != nil {
		return models.TestSummary{}, statsError(err)
	}
	if summary.StdDevScore, err = scores.StandardDeviationPopulation(); err != nil {
		return models.TestSummary{}, statsError(err)
	}
	if summary.AverageTimeTaken, err = times.Mean(); err != nil {
		return models.TestSummary{}, statsError(err)
	}
	summary.PassingRate = float64(passed) / float64(len(results))

	return summary, nil
}

// checkResult rejects stored results that break the grading invariants.
func checkResult(op string, r models.TestResult) error {
	if r.TimeTakenSeconds < 0 || math.IsNaN(r.TimeTakenSeconds) {
		return models.NewComputationError(op, models.ErrNegativeTime, "result %q has time taken %v", r.ID, r.TimeTakenSeconds)
	}
	if r.PercentageScore < 0 || r.PercentageScore > 100 || math.IsNaN(r.PercentageScore) {
		return models.NewComputationError(op, models.ErrScoreOutOfRange, "result %q has percentage %v", r.ID, r.PercentageScore)
	}
	if r.CorrectAnswers+r.IncorrectAnswers+r.UnansweredQuestions != r.TotalQuestions {
		return models.NewComputationError(op, models.ErrInconsistentCount, "result %q: %d + %d + %d != %d",
			r.ID, r.CorrectAnswers, r.IncorrectAnswers, r.UnansweredQuestions, r.TotalQuestions)
	}
	return nil
}

func statsError(err error) error {
	return &models.ComputationError{Op: opSummarize, Err: err}
}

func scoreDistribution(results []models.TestResult) []models.ScoreBucket {
	buckets := make([]models.ScoreBucket, distributionBuckets)
	width := 100 / distributionBuckets
	for i := range buckets {
		buckets[i] = models.ScoreBucket{Min: i * width, Max: (i + 1) * width}
	}
	for _, r := range results {
		idx := min(int(r.PercentageScore)/width, distributionBuckets-1)
		buckets[idx].Count++
	}
	return buckets
}

func distinctStudents(attempted []string, results []models.TestResult) []string {
	seen := make(map[string]struct{}, len(attempted)+len(results))
	for _, id := range attempted {
		if id != "" {
			seen[id] = struct{}{}
		}
	}
	for _, r := range results {
		if r.StudentID != "" {
			seen[r.StudentID] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
