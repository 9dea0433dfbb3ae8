package league

import (
	"fmt"
	"time"

	"github.com/rosterlink/rosterlink/internal/domain/platform"
)

// League is one season's instance of a fantasy league on an external platform.
// Once migrated, LeagueMasterID is immutable.
type League struct {
	ID               string
	Name             string
	Platform         platform.Name
	ExternalLeagueID string
	LeagueMasterID   string
	Season           int
	Version          int64
	LastModified     time.Time
}

func (l League) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if !l.Platform.Valid() {
		return fmt.Errorf("league platform %q is not supported", l.Platform)
	}
	if l.ExternalLeagueID == "" {
		return fmt.Errorf("league external id is required")
	}

	return nil
}

// Migrated reports whether the league has been attached to a league master.
func (l League) Migrated() bool {
	return l.LeagueMasterID != ""
}

// GroupKey is the canonical identity shared by every season of the same
// real-world league: the platform plus the platform's persistent league id.
func (l League) GroupKey() string {
	return GroupKey(l.Platform, l.ExternalLeagueID)
}

func GroupKey(p platform.Name, externalLeagueID string) string {
	return p.String() + "|" + externalLeagueID
}
