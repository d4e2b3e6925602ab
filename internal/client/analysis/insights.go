package analysis

import "github.com/sharmaronit/mindspend-labs/internal/client/models"

// Insights turns detected patterns and triggers into prioritized,
// human-readable conclusions.
func Insights(res Result) []models.Insight {
	var insights []models.Insight

	if hasPattern(res.Patterns, "binge") {
		insights = append(insights, models.Insight{
			Summary:        "Detected binge spending cycles",
			Detail:         "Multiple discretionary purchases clustered in short windows. Consider cooldown rules and pre-commit budgets.",
			Priority:       1,
			LinkedPatterns: []string{"binge"},
		})
	}
	if hasTrigger(res.Triggers, "weekend") {
		insights = append(insights, models.Insight{
			Summary:        "Weekend trigger detected",
			Detail:         "Discretionary spend is higher on weekends. Try weekend budget caps and planned activities.",
			Priority:       2,
			LinkedPatterns: []string{"weekend"},
		})
	}
	if hasTrigger(res.Triggers, "payday") {
		insights = append(insights, models.Insight{
			Summary:        "Post-payday spike",
			Detail:         "Spend increases near payday. Consider automatic transfers and 48-hour purchase delays.",
			Priority:       3,
			LinkedPatterns: []string{"payday"},
		})
	}

	return insights
}

func hasPattern(patterns []models.Pattern, typ string) bool {
	for _, p := range patterns {
		if p.Type == typ {
			return true
		}
	}
	return false
}

func hasTrigger(triggers []models.Trigger, factor string) bool {
	for _, t := range triggers {
		if t.Factor == factor {
			return true
		}
	}
	return false
}
