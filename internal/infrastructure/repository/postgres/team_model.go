package postgres

import (
	"time"

	"github.com/lib/pq"
	"github.com/rosterlink/rosterlink/internal/domain/team"
)

type teamTableModel struct {
	ID                 string         `db:"id"`
	LeagueID           string         `db:"league_id"`
	LeagueMasterID     string         `db:"league_master_id"`
	Season             int            `db:"season"`
	ExternalTeamID     string         `db:"external_team_id"`
	ExternalUserID     string         `db:"external_user_id"`
	Username           string         `db:"username"`
	OpponentExternalID string         `db:"opponent_external_id"`
	Players            pq.StringArray `db:"players"`
	Wins               int            `db:"wins"`
	Losses             int            `db:"losses"`
	Ties               int            `db:"ties"`
	PointsFor          float64        `db:"points_for"`
	PointsAgainst      float64        `db:"points_against"`
	Version            int64          `db:"version"`
	LastFetched        *time.Time     `db:"last_fetched"`
}

var teamSelectColumns = []string{
	"id",
	"league_id",
	"league_master_id",
	"season",
	"external_team_id",
	"external_user_id",
	"username",
	"opponent_external_id",
	"players",
	"wins",
	"losses",
	"ties",
	"points_for",
	"points_against",
	"version",
	"last_fetched",
}

func (m teamTableModel) toDomain() team.Team {
	return team.Team{
		ID:                 m.ID,
		LeagueID:           m.LeagueID,
		LeagueMasterID:     m.LeagueMasterID,
		Season:             m.Season,
		ExternalTeamID:     m.ExternalTeamID,
		ExternalUserID:     m.ExternalUserID,
		Username:           m.Username,
		OpponentExternalID: m.OpponentExternalID,
		Players:            append([]string(nil), m.Players...),
		Wins:               m.Wins,
		Losses:             m.Losses,
		Ties:               m.Ties,
		PointsFor:          m.PointsFor,
		PointsAgainst:      m.PointsAgainst,
		Version:            m.Version,
		LastFetched:        m.LastFetched,
	}
}
