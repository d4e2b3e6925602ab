package api

// Hosted-database table names. Row-level policies on the service side key
// every table on the authenticated user's id.
const (
	TableProfiles  = "profiles"
	TableMetrics   = "metrics"
	TableFinancial = "financial_summaries"
)
