package postgres

import (
	"time"

	"github.com/rosterlink/rosterlink/internal/domain/league"
	"github.com/rosterlink/rosterlink/internal/domain/platform"
)

type leagueTableModel struct {
	ID               string    `db:"id"`
	Name             string    `db:"name"`
	Platform         string    `db:"platform"`
	ExternalLeagueID string    `db:"external_league_id"`
	LeagueMasterID   string    `db:"league_master_id"`
	Season           int       `db:"season"`
	Version          int64     `db:"version"`
	LastModified     time.Time `db:"last_modified"`
}

var leagueSelectColumns = []string{
	"id",
	"name",
	"platform",
	"external_league_id",
	"league_master_id",
	"season",
	"version",
	"last_modified",
}

func (m leagueTableModel) toDomain() league.League {
	return league.League{
		ID:               m.ID,
		Name:             m.Name,
		Platform:         platform.Name(m.Platform),
		ExternalLeagueID: m.ExternalLeagueID,
		LeagueMasterID:   m.LeagueMasterID,
		Season:           m.Season,
		Version:          m.Version,
		LastModified:     m.LastModified,
	}
}
