package models

import "time"

// SystemMetrics is a lightweight snapshot of process counters.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	OutcomesTotal            uint64    `json:"outcomes_total"`
	FailedOperations         uint64    `json:"failed_operations"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
