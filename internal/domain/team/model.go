package team

import (
	"fmt"
	"time"
)

// Team is one roster within one league season. (ExternalTeamID, LeagueID)
// is unique; LeagueMasterID and Season are denormalized from the owning
// league for season-spanning lookups.
type Team struct {
	ID                 string
	LeagueID           string
	LeagueMasterID     string
	Season             int
	ExternalTeamID     string
	ExternalUserID     string
	Username           string
	OpponentExternalID string
	Players            []string
	Wins               int
	Losses             int
	Ties               int
	PointsFor          float64
	PointsAgainst      float64
	Version            int64
	LastFetched        *time.Time
}

func (t Team) Validate() error {
	if t.LeagueID == "" {
		return fmt.Errorf("team league id is required")
	}
	if t.ExternalTeamID == "" {
		return fmt.Errorf("team external id is required")
	}

	return nil
}

// OwnedBy reports whether the roster belongs to the given external user or
// external team id. Platforms differ in which of the two the caller knows.
func (t Team) OwnedBy(externalUserID, externalTeamID string) bool {
	if externalTeamID != "" && t.ExternalTeamID == externalTeamID {
		return true
	}
	return externalUserID != "" && t.ExternalUserID == externalUserID
}
