package postgres

import (
	"time"

	"github.com/rosterlink/rosterlink/internal/domain/userteam"
)

type userTeamTableModel struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	TeamID         string    `db:"team_id"`
	LeagueMasterID string    `db:"league_master_id"`
	CurrentSeason  int       `db:"current_season"`
	CreatedAt      time.Time `db:"created_at"`
}

var userTeamSelectColumns = []string{
	"id",
	"user_id",
	"team_id",
	"league_master_id",
	"current_season",
	"created_at",
}

func (m userTeamTableModel) toDomain() userteam.UserTeam {
	return userteam.UserTeam{
		ID:             m.ID,
		UserID:         m.UserID,
		TeamID:         m.TeamID,
		LeagueMasterID: m.LeagueMasterID,
		CurrentSeason:  m.CurrentSeason,
		CreatedAt:      m.CreatedAt,
	}
}
