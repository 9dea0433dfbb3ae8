package postgres

import (
	"time"

	"github.com/rosterlink/rosterlink/internal/domain/leaguemaster"
	"github.com/rosterlink/rosterlink/internal/domain/platform"
)

type leagueMasterTableModel struct {
	ID               string    `db:"id"`
	Name             string    `db:"name"`
	Platform         string    `db:"platform"`
	ExternalLeagueID string    `db:"external_league_id"`
	CreatedBy        string    `db:"created_by"`
	CreatedAt        time.Time `db:"created_at"`
	LastModified     time.Time `db:"last_modified"`
}

var leagueMasterSelectColumns = []string{
	"id",
	"name",
	"platform",
	"external_league_id",
	"created_by",
	"created_at",
	"last_modified",
}

func (m leagueMasterTableModel) toDomain() leaguemaster.LeagueMaster {
	return leaguemaster.LeagueMaster{
		ID:               m.ID,
		Name:             m.Name,
		Platform:         platform.Name(m.Platform),
		ExternalLeagueID: m.ExternalLeagueID,
		CreatedBy:        m.CreatedBy,
		CreatedAt:        m.CreatedAt,
		LastModified:     m.LastModified,
	}
}
