package metric

import "time"

// TaskMetrics is the workload snapshot behind the admin dashboard.
type TaskMetrics struct {
	CompletedTasks       int64     `json:"completedTasks"`
	OpenTasks            int64     `json:"openTasks"`
	AvgCompletionSeconds int       `json:"avgCompletionSeconds"`
	GeneratedAt          time.Time `json:"generatedAt"`
}
