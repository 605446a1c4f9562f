package models

import "time"

// ScoreBucket counts results whose percentage score falls in [Min, Max).
// The last bucket is closed so that 100 is counted.
type ScoreBucket struct {
	Min   int `json:"min"`
	Max   int `json:"max"`
	Count int `json:"count"`
}

type TestSummary struct {
	TestID            string        `json:"test_id"`
	Title             string        `json:"title"`
	InstructorID      string        `json:"instructor_id"`
	Published         bool          `json:"published"`
	CreatedAt         time.Time     `json:"created_at"`
	TotalAttempted    int           `json:"total_attempted"`
	TotalCompleted    int           `json:"total_completed"`
	CompletionRate    float64       `json:"completion_rate"`
	AverageScore      float64       `json:"average_score"`
	MedianScore       float64       `json:"median_score"`
	HighestScore      float64       `json:"highest_score"`
	LowestScore       float64       `json:"lowest_score"`
	StdDevScore       float64       `json:"std_dev_score"`
	PassingRate       float64       `json:"passing_rate"`
	AverageTimeTaken  float64       `json:"average_time_taken"`
	QuestionCount     int           `json:"question_count"`
	ScoreDistribution []ScoreBucket `json:"score_distribution"`
	StudentIDs        []string      `json:"student_ids"`
}

type QuestionAnalytics struct {
	QuestionID            string  `json:"question_id"`
	TotalAttempts         int     `json:"total_attempts"`
	CorrectCount          int     `json:"correct_count"`
	IncorrectCount        int     `json:"incorrect_count"`
	UnansweredCount       int     `json:"unanswered_count"`
	AccuracyRate          float64 `json:"accuracy_rate"`
	MostCommonWrongAnswer *string `json:"most_common_wrong_answer"`
}

const (
	AttentionLowPassingRate    = "low_passing_rate"
	AttentionLowCompletionRate = "low_completion_rate"
)

type TestAttention struct {
	Summary TestSummary `json:"summary"`
	Reasons []string    `json:"reasons"`
}

type InstructorDashboard struct {
	InstructorID          string          `json:"instructor_id"`
	TestsCreated          int             `json:"tests_created"`
	TestsPublished        int             `json:"tests_published"`
	TotalAttempts         int             `json:"total_attempts"`
	TotalCompleted        int             `json:"total_completed"`
	DistinctStudents      int             `json:"distinct_students"`
	AverageTestScore      float64         `json:"average_test_score"`
	TopPerformingTests    []TestSummary   `json:"top_performing_tests"`
	TestsNeedingAttention []TestAttention `json:"tests_needing_attention"`
}
