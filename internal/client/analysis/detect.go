// Package analysis derives the unified analysis payload from a user's
// metrics: behavior patterns, spending triggers, insights, proposed
// challenges and a summary. Everything here is pure computation over
// in-memory data; persistence and transport live elsewhere.
package analysis

import (
	"sort"
	"time"

	"github.com/sharmaronit/mindspend-labs/internal/client/models"
)

// discretionaryCategories marks spend that is a choice rather than an
// obligation.
var discretionaryCategories = map[string]struct{}{
	"shopping":      {},
	"entertainment": {},
	"dining":        {},
	"food":          {},
	"travel":        {},
}

const (
	// bingeWindow bounds a cluster of discretionary purchases.
	bingeWindow = 6 * time.Hour
	// bingeMinCount is the cluster size that counts as a binge.
	bingeMinCount = 3

	// weekendRatioThreshold is the weekend/weekday spend ratio above which
	// weekends count as a trigger.
	weekendRatioThreshold = 1.3

	// paydayShareThreshold is the fraction of discretionary spend near a
	// payday that counts as a trigger.
	paydayShareThreshold = 0.2
)

// TimeBucket labels the time of day of t.
func TimeBucket(t time.Time) string {
	switch h := t.Hour(); {
	case h < 5:
		return "late-night"
	case h < 12:
		return "morning"
	case h < 17:
		return "afternoon"
	default:
		return "evening"
	}
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsDiscretionary reports whether the category is optional spend.
func IsDiscretionary(category string) bool {
	_, ok := discretionaryCategories[category]
	return ok
}

// Tags derives the descriptive tags for one metric: its time-of-day bucket,
// plus "weekend" and "discretionary" when applicable.
func Tags(m models.Metric) []string {
	tags := []string{TimeBucket(m.CreatedAt)}
	if IsWeekend(m.CreatedAt) {
		tags = append(tags, "weekend")
	}
	if IsDiscretionary(m.Category) {
		tags = append(tags, "discretionary")
	}
	return tags
}

// Result holds the detected patterns and triggers of one analysis pass.
type Result struct {
	Patterns []models.Pattern
	Triggers []models.Trigger
}

// Analyze runs pattern and trigger detection over the metrics. The input
// order does not matter.
func Analyze(metrics []models.Metric) Result {
	discretionary := make([]models.Metric, 0, len(metrics))
	for _, m := range metrics {
		if IsDiscretionary(m.Category) {
			discretionary = append(discretionary, m)
		}
	}
	sort.Slice(discretionary, func(i, j int) bool {
		return discretionary[i].CreatedAt.Before(discretionary[j].CreatedAt)
	})

	var res Result
	res.Patterns = detectBinges(discretionary)
	res.Triggers = detectTriggers(metrics, discretionary)
	return res
}

// detectBinges finds clusters of at least bingeMinCount discretionary
// purchases inside a bingeWindow span. in must be sorted by time.
func detectBinges(in []models.Metric) []models.Pattern {
	var patterns []models.Pattern
	for i := range in {
		j := i
		for j < len(in) && in[j].CreatedAt.Sub(in[i].CreatedAt) <= bingeWindow {
			j++
		}
		if n := j - i; n >= bingeMinCount {
			confidence := 0.3 + 0.1*float64(n)
			if confidence > 1.0 {
				confidence = 1.0
			}
			patterns = append(patterns, models.Pattern{
				Type:       "binge",
				Confidence: confidence,
				Start:      in[i].CreatedAt,
				End:        in[j-1].CreatedAt,
				Evidence:   n,
			})
		}
	}
	return patterns
}

func detectTriggers(all, discretionary []models.Metric) []models.Trigger {
	var triggers []models.Trigger

	var weekendSpend, weekdaySpend float64
	for _, m := range all {
		if !IsDiscretionary(m.Category) {
			continue
		}
		if IsWeekend(m.CreatedAt) {
			weekendSpend += m.Value
		} else {
			weekdaySpend += m.Value
		}
	}

	weekendRatio := (weekendSpend + 1) / (weekdaySpend + 1)
	if weekendRatio > weekendRatioThreshold && weekendSpend > 0 {
		strength := weekendRatio / 2.0
		if strength > 1.0 {
			strength = 1.0
		}
		triggers = append(triggers, models.Trigger{
			Factor:         "weekend",
			SignalStrength: strength,
			Correlations: map[string]float64{
				"weekend_spend": weekendSpend,
				"weekday_spend": weekdaySpend,
			},
		})
	}

	// Payday heuristic: spend clustered within two days of the 1st or 15th.
	var nearPaydaySpend float64
	for _, m := range discretionary {
		anchor := 15
		if m.CreatedAt.Day() <= 8 {
			anchor = 1
		}
		diff := m.CreatedAt.Day() - anchor
		if diff < 0 {
			diff = -diff
		}
		if diff <= 2 {
			nearPaydaySpend += m.Value
		}
	}
	total := weekendSpend + weekdaySpend
	if nearPaydaySpend > 0 && nearPaydaySpend > total*paydayShareThreshold {
		strength := nearPaydaySpend / (total + 1)
		if strength > 1.0 {
			strength = 1.0
		}
		triggers = append(triggers, models.Trigger{
			Factor:         "payday",
			SignalStrength: strength,
			Correlations:   map[string]float64{"near_payday_spend": nearPaydaySpend},
		})
	}

	return triggers
}

// Summarize aggregates counts for one analysis run.
func Summarize(metrics []models.Metric, res Result, insights []models.Insight) models.AnalysisSummary {
	patternCounts := make(map[string]int)
	for _, p := range res.Patterns {
		patternCounts[p.Type]++
	}

	factorSet := make(map[string]struct{})
	for _, tr := range res.Triggers {
		factorSet[tr.Factor] = struct{}{}
	}
	factors := make([]string, 0, len(factorSet))
	for f := range factorSet {
		factors = append(factors, f)
	}
	sort.Strings(factors)

	return models.AnalysisSummary{
		Metrics:       len(metrics),
		Patterns:      patternCounts,
		Triggers:      factors,
		InsightsCount: len(insights),
	}
}

// Run performs a full analysis pass and assembles the unified payload.
func Run(metrics []models.Metric, now time.Time) models.UnifiedAnalysis {
	res := Analyze(metrics)
	insights := Insights(res)
	return models.UnifiedAnalysis{
		GeneratedAt: now,
		Patterns:    res.Patterns,
		Triggers:    res.Triggers,
		Insights:    insights,
		Challenges:  Challenges(insights),
		Summary:     Summarize(metrics, res, insights),
	}
}
