package analysis

import "github.com/sharmaronit/mindspend-labs/internal/client/models"

// Challenges proposes behavior changes for each linked pattern in the
// insights. Proposals start in status "proposed"; acceptance is a UI
// concern.
func Challenges(insights []models.Insight) []models.Challenge {
	var challenges []models.Challenge
	for _, ins := range insights {
		for _, linked := range ins.LinkedPatterns {
			switch linked {
			case "binge":
				challenges = append(challenges, models.Challenge{
					Goal:     "Reduce binge cycles",
					Rules:    map[string]float64{"cooldown_hours": 48, "max_discretionary_in_window": 2},
					Duration: "2 weeks",
					Status:   "proposed",
				})
			case "weekend":
				challenges = append(challenges, models.Challenge{
					Goal:     "Cap weekend discretionary spend",
					Rules:    map[string]float64{"weekend_cap": 50},
					Duration: "1 week",
					Status:   "proposed",
				})
			case "payday":
				challenges = append(challenges, models.Challenge{
					Goal:     "Post-payday delay",
					Rules:    map[string]float64{"purchase_delay_hours": 48},
					Duration: "1 week",
					Status:   "proposed",
				})
			}
		}
	}
	return challenges
}
