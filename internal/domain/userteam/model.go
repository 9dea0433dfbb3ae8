package userteam

import (
	"fmt"
	"time"
)

// UserTeam binds an internal user to one roster. (UserID, TeamID) must be
// unique; historical duplicates are a known data-quality issue the service
// detects and repairs. LeagueMasterID and CurrentSeason are denormalized
// from the team for history queries.
type UserTeam struct {
	ID             string
	UserID         string
	TeamID         string
	LeagueMasterID string
	CurrentSeason  int
	CreatedAt      time.Time
}

func (u UserTeam) Validate() error {
	if u.UserID == "" {
		return fmt.Errorf("user team user id is required")
	}
	if u.TeamID == "" {
		return fmt.Errorf("user team team id is required")
	}

	return nil
}
