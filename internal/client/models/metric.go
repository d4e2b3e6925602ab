package models

import "time"

// Metric is a single spending record owned by one user. Every query and
// mutation touching metrics is scoped by UserID; cross-user access is not
// representable through the client.
type Metric struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Category    string    `json:"category"`
	Value       float64   `json:"value"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// MetricInput is the caller-supplied part of a new metric. The owner and
// timestamps are always filled in by the client, never by the caller.
type MetricInput struct {
	Category    string  `json:"category"`
	Value       float64 `json:"value"`
	Description string  `json:"description,omitempty"`
}
