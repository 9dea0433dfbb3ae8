package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rosterlink/rosterlink/internal/domain/trade"
	qb "github.com/rosterlink/rosterlink/internal/platform/querybuilder"
)

type TradeRepository struct {
	db *sqlx.DB
}

func NewTradeRepository(db *sqlx.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

func (r *TradeRepository) ListByLeague(ctx context.Context, leagueID string) ([]trade.Trade, error) {
	query, args, err := qb.Select(tradeSelectColumns...).From("trades").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("proposed_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list trades query: %w", err)
	}

	var rows []tradeTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}

	out := make([]trade.Trade, 0, len(rows))
	for _, row := range rows {
		item, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}

	return out, nil
}

func (r *TradeRepository) GetByExternalID(ctx context.Context, leagueID, externalTradeID string) (trade.Trade, bool, error) {
	query, args, err := qb.Select(tradeSelectColumns...).From("trades").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("external_trade_id", externalTradeID),
		).
		ToSQL()
	if err != nil {
		return trade.Trade{}, false, fmt.Errorf("build get trade query: %w", err)
	}

	var row tradeTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return trade.Trade{}, false, nil
		}
		return trade.Trade{}, false, fmt.Errorf("get trade: %w", err)
	}

	item, err := row.toDomain()
	if err != nil {
		return trade.Trade{}, false, err
	}

	return item, true, nil
}

// UpsertBatch writes one sync's trades in a single transaction. The stored
// id survives re-syncs; everything else reflects the latest platform state.
func (r *TradeRepository) UpsertBatch(ctx context.Context, items []trade.Trade) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for trade batch: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const upsertSuffix = `
ON CONFLICT (league_id, external_trade_id)
DO UPDATE SET
    external_league_id = EXCLUDED.external_league_id,
    platform = EXCLUDED.platform,
    status = EXCLUDED.status,
    participants = EXCLUDED.participants,
    proposed_at = EXCLUDED.proposed_at,
    executed_at = EXCLUDED.executed_at,
    last_synced = EXCLUDED.last_synced`

	for _, item := range items {
		participants, err := encodeParticipants(item.Participants)
		if err != nil {
			return fmt.Errorf("encode trade %s participants: %w", item.ExternalTradeID, err)
		}

		query, args, err := qb.InsertInto("trades").
			Columns(tradeSelectColumns...).
			Values(item.ID, item.ExternalTradeID, item.LeagueID, item.ExternalLeagueID,
				item.Platform.String(), string(item.Status), participants,
				item.ProposedAt, item.ExecutedAt, item.LastSynced).
			Suffix(upsertSuffix).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build upsert trade query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert trade %s: %w", item.ExternalTradeID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit trade batch: %w", err)
	}

	return nil
}
