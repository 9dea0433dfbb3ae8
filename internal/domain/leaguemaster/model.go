package leaguemaster

import (
	"fmt"
	"time"

	"github.com/rosterlink/rosterlink/internal/domain/platform"
)

// LeagueMaster is the persistent identity of a real-world league across
// seasons. Exactly one exists per (platform, external league id); it is
// created by migration or first connect and never deleted.
type LeagueMaster struct {
	ID               string
	Name             string
	Platform         platform.Name
	ExternalLeagueID string
	CreatedBy        string
	CreatedAt        time.Time
	LastModified     time.Time
}

func (m LeagueMaster) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("league master id is required")
	}
	if m.Name == "" {
		return fmt.Errorf("league master name is required")
	}
	if !m.Platform.Valid() {
		return fmt.Errorf("league master platform %q is not supported", m.Platform)
	}
	if m.ExternalLeagueID == "" {
		return fmt.Errorf("league master external league id is required")
	}

	return nil
}
