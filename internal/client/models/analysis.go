package models

import "time"

// Pattern is a recurring spending behavior detected over a user's metrics.
type Pattern struct {
	Type       string    `json:"type"`
	Confidence float64   `json:"confidence"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Evidence   int       `json:"evidence"`
}

// Trigger is an external factor correlated with elevated spending.
type Trigger struct {
	Factor         string             `json:"factor"`
	SignalStrength float64            `json:"signal_strength"`
	Correlations   map[string]float64 `json:"correlations,omitempty"`
}

// Insight is a human-readable conclusion synthesized from patterns and
// triggers, ordered by priority (1 is highest).
type Insight struct {
	Summary        string   `json:"summary"`
	Detail         string   `json:"detail"`
	Priority       int      `json:"priority"`
	LinkedPatterns []string `json:"linked_patterns,omitempty"`
}

// Challenge is a proposed behavior change derived from an insight.
type Challenge struct {
	Goal     string             `json:"goal"`
	Rules    map[string]float64 `json:"rules"`
	Duration string             `json:"duration"`
	Status   string             `json:"status"`
}

// AnalysisSummary gives aggregate counts over one analysis run.
type AnalysisSummary struct {
	Metrics       int            `json:"metrics"`
	Patterns      map[string]int `json:"patterns"`
	Triggers      []string       `json:"triggers"`
	InsightsCount int            `json:"insights_count"`
}

// UnifiedAnalysis is the single derived-data payload cached under one
// storage key. It is regenerated wholesale on every analysis run; partial
// updates are not supported.
type UnifiedAnalysis struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Patterns    []Pattern       `json:"patterns"`
	Triggers    []Trigger       `json:"triggers"`
	Insights    []Insight       `json:"insights"`
	Challenges  []Challenge     `json:"challenges"`
	Summary     AnalysisSummary `json:"summary"`
}
