package model

// CheckOutcome describes how a release check ended
type CheckOutcome string

const (
	OutcomeNoRelease       CheckOutcome = "no_release"
	OutcomePatternMismatch CheckOutcome = "pattern_mismatch"
	OutcomeUpToDate        CheckOutcome = "up_to_date"
	OutcomeNotified        CheckOutcome = "notified"
	OutcomeNotSent         CheckOutcome = "not_sent"
)

// CheckResult is returned by a completed release check
type CheckResult struct {
	Outcome  CheckOutcome
	Version  string // Fetched tag, empty for OutcomeNoRelease
	Previous string // Stored version before the check, empty if none
}

// Notified reports whether a notification was delivered and persisted
func (r *CheckResult) Notified() bool {
	return r.Outcome == OutcomeNotified
}
