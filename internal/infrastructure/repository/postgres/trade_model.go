package postgres

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rosterlink/rosterlink/internal/domain/platform"
	"github.com/rosterlink/rosterlink/internal/domain/trade"
)

type tradeTableModel struct {
	ID               string     `db:"id"`
	ExternalTradeID  string     `db:"external_trade_id"`
	LeagueID         string     `db:"league_id"`
	ExternalLeagueID string     `db:"external_league_id"`
	Platform         string     `db:"platform"`
	Status           string     `db:"status"`
	Participants     []byte     `db:"participants"`
	ProposedAt       time.Time  `db:"proposed_at"`
	ExecutedAt       *time.Time `db:"executed_at"`
	LastSynced       time.Time  `db:"last_synced"`
}

var tradeSelectColumns = []string{
	"id",
	"external_trade_id",
	"league_id",
	"external_league_id",
	"platform",
	"status",
	"participants",
	"proposed_at",
	"executed_at",
	"last_synced",
}

// tradeParticipantModel is the JSONB shape of one trade side.
type tradeParticipantModel struct {
	ExternalTeamID  string           `json:"external_team_id"`
	PlayersGiven    []string         `json:"players_given,omitempty"`
	PlayersReceived []string         `json:"players_received,omitempty"`
	PicksGiven      []tradePickModel `json:"picks_given,omitempty"`
	PicksReceived   []tradePickModel `json:"picks_received,omitempty"`
}

type tradePickModel struct {
	Season        int    `json:"season"`
	Round         int    `json:"round"`
	OriginalOwner string `json:"original_owner"`
}

func (m tradeTableModel) toDomain() (trade.Trade, error) {
	var participants []tradeParticipantModel
	if len(m.Participants) > 0 {
		if err := sonic.Unmarshal(m.Participants, &participants); err != nil {
			return trade.Trade{}, fmt.Errorf("decode trade %s participants: %w", m.ID, err)
		}
	}

	out := trade.Trade{
		ID:               m.ID,
		ExternalTradeID:  m.ExternalTradeID,
		LeagueID:         m.LeagueID,
		ExternalLeagueID: m.ExternalLeagueID,
		Platform:         platform.Name(m.Platform),
		Status:           trade.Status(m.Status),
		Participants:     make([]trade.Participant, 0, len(participants)),
		ProposedAt:       m.ProposedAt,
		ExecutedAt:       m.ExecutedAt,
		LastSynced:       m.LastSynced,
	}
	for _, p := range participants {
		out.Participants = append(out.Participants, trade.Participant{
			ExternalTeamID:  p.ExternalTeamID,
			PlayersGiven:    p.PlayersGiven,
			PlayersReceived: p.PlayersReceived,
			PicksGiven:      picksToDomain(p.PicksGiven),
			PicksReceived:   picksToDomain(p.PicksReceived),
		})
	}

	return out, nil
}

func encodeParticipants(participants []trade.Participant) ([]byte, error) {
	models := make([]tradeParticipantModel, 0, len(participants))
	for _, p := range participants {
		models = append(models, tradeParticipantModel{
			ExternalTeamID:  p.ExternalTeamID,
			PlayersGiven:    p.PlayersGiven,
			PlayersReceived: p.PlayersReceived,
			PicksGiven:      picksToModel(p.PicksGiven),
			PicksReceived:   picksToModel(p.PicksReceived),
		})
	}

	return sonic.Marshal(models)
}

func picksToDomain(picks []tradePickModel) []trade.Pick {
	if len(picks) == 0 {
		return nil
	}
	out := make([]trade.Pick, 0, len(picks))
	for _, p := range picks {
		out = append(out, trade.Pick{Season: p.Season, Round: p.Round, OriginalOwner: p.OriginalOwner})
	}
	return out
}

func picksToModel(picks []trade.Pick) []tradePickModel {
	if len(picks) == 0 {
		return nil
	}
	out := make([]tradePickModel, 0, len(picks))
	for _, p := range picks {
		out = append(out, tradePickModel{Season: p.Season, Round: p.Round, OriginalOwner: p.OriginalOwner})
	}
	return out
}
