package models

// UserOverviewResponse is a user's recent runs with the newest run expanded.
// LatestRun and the LatestRun* slices are nil when the user has no runs.
type UserOverviewResponse struct {
	User                   User                `json:"user"`
	Runs                   []Run               `json:"runs"`
	LatestRun              *Run                `json:"latest_run,omitempty"`
	LatestRunEvents        []Event             `json:"latest_run_events,omitempty"`
	LatestRunDecisions     []Decision          `json:"latest_run_decisions,omitempty"`
	LatestRunEmailAttempts []EmailAttempt      `json:"latest_run_email_attempts,omitempty"`
	LatestRunFeatures      []Feature           `json:"latest_run_features,omitempty"`
	Suppressions           []EmailSuppression  `json:"suppressions,omitempty"`
	AutomationTriggers     []AutomationTrigger `json:"automation_triggers,omitempty"`
}
