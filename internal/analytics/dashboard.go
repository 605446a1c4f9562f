package analytics

import (
	"cmp"
	"math"
	"slices"

	"assessment-service/internal/models"

	"github.com/montanaflynn/stats"
)

const opDashboard = "build_instructor_dashboard"

// DashboardPolicy holds the thresholds used to flag tests. A TopN of zero
// keeps every test in the top performing list.
type DashboardPolicy struct {
	MinPassingRate    float64
	MinCompletionRate float64
	TopN              int
}

func DefaultDashboardPolicy() DashboardPolicy {
	return DashboardPolicy{
		MinPassingRate:    0.5,
		MinCompletionRate: 0.5,
		TopN:              5,
	}
}

func (p DashboardPolicy) validate() error {
	if !isRate(p.MinPassingRate) {
		return models.NewValidationError(opDashboard, models.ErrInvalidPolicy, "min passing rate %v", p.MinPassingRate)
	}
	if !isRate(p.MinCompletionRate) {
		return models.NewValidationError(opDashboard, models.ErrInvalidPolicy, "min completion rate %v", p.MinCompletionRate)
	}
	if p.TopN < 0 {
		return models.NewValidationError(opDashboard, models.ErrInvalidPolicy, "top n %d", p.TopN)
	}
	return nil
}

func isRate(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

// BuildInstructorDashboard composes the summaries of one instructor's
// tests. The average test score weighs every test with at least one
// completed result equally, regardless of how many students took it.
func BuildInstructorDashboard(instructorID string, summaries []models.TestSummary, policy DashboardPolicy) (models.InstructorDashboard, error) {
	if err := policy.validate(); err != nil {
		return models.InstructorDashboard{}, err
	}

	dashboard := models.InstructorDashboard{
		InstructorID:          instructorID,
		TestsCreated:          len(summaries),
		TopPerformingTests:    []models.TestSummary{},
		TestsNeedingAttention: []models.TestAttention{},
	}

	students := make(map[string]struct{})
	averages := make(stats.Float64Data, 0, len(summaries))
	for _, s := range summaries {
		if s.InstructorID != "" && instructorID != "" && s.InstructorID != instructorID {
			return models.InstructorDashboard{}, models.NewValidationError(opDashboard, models.ErrInvalidInput,
				"test %q belongs to instructor %q", s.TestID, s.InstructorID)
		}
		if s.TotalCompleted > s.TotalAttempted || !isRate(s.CompletionRate) || !isRate(s.PassingRate) {
			return models.InstructorDashboard{}, models.NewComputationError(opDashboard, models.ErrInconsistentCount,
				"summary for test %q is inconsistent", s.TestID)
		}

		if s.Published {
			dashboard.TestsPublished++
		}
		dashboard.TotalAttempts += s.TotalAttempted
		dashboard.TotalCompleted += s.TotalCompleted
		for _, id := range s.StudentIDs {
			students[id] = struct{}{}
		}

		if s.TotalCompleted > 0 {
			averages = append(averages, s.AverageScore)
			dashboard.TopPerformingTests = append(dashboard.TopPerformingTests, s)
		}

		if reasons := attentionReasons(s, policy); len(reasons) > 0 {
			dashboard.TestsNeedingAttention = append(dashboard.TestsNeedingAttention, models.TestAttention{
				Summary: s,
				Reasons: reasons,
			})
		}
	}
	dashboard.DistinctStudents = len(students)

	if len(averages) > 0 {
		avg, err := averages.Mean()
		if err != nil {
			return models.InstructorDashboard{}, &models.ComputationError{Op: opDashboard, Err: err}
		}
		dashboard.AverageTestScore = avg
	}

	slices.SortFunc(dashboard.TopPerformingTests, compareTestPerformance)
	if policy.TopN > 0 && len(dashboard.TopPerformingTests) > policy.TopN {
		dashboard.TopPerformingTests = dashboard.TopPerformingTests[:policy.TopN]
	}

	return dashboard, nil
}

// compareTestPerformance orders by average score, then completion rate,
// both descending, then by creation time and id ascending.
func compareTestPerformance(a, b models.TestSummary) int {
	if c := cmp.Compare(b.AverageScore, a.AverageScore); c != 0 {
		return c
	}
	if c := cmp.Compare(b.CompletionRate, a.CompletionRate); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.TestID, b.TestID)
}

// attentionReasons only looks at tests somebody attempted. The passing
// rate is only meaningful once at least one attempt has been graded.
func attentionReasons(s models.TestSummary, policy DashboardPolicy) []string {
	if s.TotalAttempted == 0 {
		return nil
	}
	var reasons []string
	if s.TotalCompleted > 0 && s.PassingRate < policy.MinPassingRate {
		reasons = append(reasons, models.AttentionLowPassingRate)
	}
	if s.CompletionRate < policy.MinCompletionRate {
		reasons = append(reasons, models.AttentionLowCompletionRate)
	}
	return reasons
}
