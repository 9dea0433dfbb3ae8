package contention

import "time"

// Event records one write conflict observed against the shared store.
// Events are observational only; they never change retry or commit behavior.
type Event struct {
	ID         string
	OccurredAt time.Time
	LeagueID   string
	Operation  string
	Code       string
	Message    string
	Retries    int
	BatchSize  int
}
