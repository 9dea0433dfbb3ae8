package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/rosterlink/rosterlink/internal/domain/platform"
)

// Status is the canonical trade state shared across platforms.
type Status string

const (
	StatusPending     Status = "pending"
	StatusCompleted   Status = "completed"
	StatusRejected    Status = "rejected"
	StatusCanceled    Status = "canceled"
	StatusVetoed      Status = "vetoed"
	StatusInvalidated Status = "invalidated"
)

// UnknownCounterparty marks players or picks whose giving or receiving side
// could not be determined from the source payload. Adapters use it instead
// of guessing.
const UnknownCounterparty = "unknown"

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusRejected, StatusCanceled, StatusVetoed, StatusInvalidated:
		return true
	default:
		return false
	}
}

// NormalizeStatus folds an arbitrary status string onto the shared enum.
// Unrecognized values default to pending so a new platform status never
// drops a trade.
func NormalizeStatus(raw string) Status {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if s.Valid() {
		return s
	}
	return StatusPending
}

// Pick is a draft pick moved by a trade.
type Pick struct {
	Season        int
	Round         int
	OriginalOwner string
}

// Participant is one side of a trade: the roster involved and what it gave
// and received.
type Participant struct {
	ExternalTeamID  string
	PlayersGiven    []string
	PlayersReceived []string
	PicksGiven      []Pick
	PicksReceived   []Pick
}

// Trade is the canonical representation of a platform trade transaction,
// unique per (ExternalTradeID, LeagueID).
type Trade struct {
	ID               string
	ExternalTradeID  string
	LeagueID         string
	ExternalLeagueID string
	Platform         platform.Name
	Status           Status
	Participants     []Participant
	ProposedAt       time.Time
	ExecutedAt       *time.Time
	LastSynced       time.Time
}

func (t Trade) Validate() error {
	if t.ExternalTradeID == "" {
		return fmt.Errorf("trade external id is required")
	}
	if t.LeagueID == "" {
		return fmt.Errorf("trade league id is required")
	}
	if !t.Platform.Valid() {
		return fmt.Errorf("trade platform %q is not supported", t.Platform)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("trade status %q is not canonical", t.Status)
	}

	return nil
}
