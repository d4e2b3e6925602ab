package analysis

import "strings"

// merchantCategoryHints maps merchant keywords to categories.
var merchantCategoryHints = map[string]string{
	"uber":      "travel",
	"lyft":      "travel",
	"mcdonald":  "food",
	"starbucks": "food",
	"amazon":    "shopping",
	"netflix":   "entertainment",
	"cinema":    "entertainment",
}

// DefaultCategory is used when no merchant keyword matches.
const DefaultCategory = "uncategorized"

// GuessCategory infers a category from a merchant or description string.
func GuessCategory(merchant string) string {
	m := strings.ToLower(merchant)
	for keyword, category := range merchantCategoryHints {
		if strings.Contains(m, keyword) {
			return category
		}
	}
	return DefaultCategory
}
