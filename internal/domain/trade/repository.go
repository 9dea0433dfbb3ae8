package trade

import "context"

// Repository describes trade persistence needs from use cases.
type Repository interface {
	ListByLeague(ctx context.Context, leagueID string) ([]Trade, error)
	GetByExternalID(ctx context.Context, leagueID, externalTradeID string) (Trade, bool, error)
	// UpsertBatch writes every trade of one sync in a single atomic batch,
	// keyed by (external trade id, league id).
	UpsertBatch(ctx context.Context, items []Trade) error
}
