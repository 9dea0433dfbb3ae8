package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rosterlink/rosterlink/internal/domain/league"
	"github.com/rosterlink/rosterlink/internal/domain/trade"
	idgen "github.com/rosterlink/rosterlink/internal/platform/id"
	"github.com/rosterlink/rosterlink/internal/platform/logging"
)

// TradeService syncs platform trade history into the canonical trade shape.
// Providers return trades with normalized statuses; this service owns
// identity resolution and the batched write.
type TradeService struct {
	registry *Registry
	leagues  league.Repository
	trades   trade.Repository
	ids      idgen.Generator
	logger   *logging.Logger
}

func NewTradeService(
	registry *Registry,
	leagues league.Repository,
	trades trade.Repository,
	ids idgen.Generator,
	logger *logging.Logger,
) *TradeService {
	if ids == nil {
		ids = idgen.NewRandomGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &TradeService{
		registry: registry,
		leagues:  leagues,
		trades:   trades,
		ids:      ids,
		logger:   logger,
	}
}

// SyncTrades fetches the league's trade history from its platform and
// upserts it as one batch keyed by (external trade id, league id). The
// stored league names the platform identity to fetch; a non-empty
// externalLeagueID overrides it. Re-runs are idempotent: an unchanged
// trade rewrites in place, a status change updates the stored row.
func (s *TradeService) SyncTrades(ctx context.Context, leagueID, externalLeagueID string) ([]trade.Trade, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TradeService.SyncTrades")
	defer span.End()

	owner, found, err := s.leagues.GetByID(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("lookup league: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: league %s", ErrNotFound, leagueID)
	}

	externalID := owner.ExternalLeagueID
	if externalLeagueID != "" {
		externalID = externalLeagueID
	}

	provider, err := s.registry.TradeProvider(owner.Platform)
	if err != nil {
		return nil, err
	}

	fetched, err := provider.FetchTrades(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch trades platform=%s external_league_id=%s: %v",
			ErrExternalPlatform, owner.Platform, externalID, err)
	}
	if len(fetched) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	batch := make([]trade.Trade, 0, len(fetched))
	for _, item := range fetched {
		item.LeagueID = owner.ID
		item.ExternalLeagueID = externalID
		item.Platform = owner.Platform
		item.LastSynced = now
		if !item.Status.Valid() {
			item.Status = trade.NormalizeStatus(string(item.Status))
		}

		current, exists, err := s.trades.GetByExternalID(ctx, owner.ID, item.ExternalTradeID)
		if err != nil {
			return nil, fmt.Errorf("lookup trade external_trade_id=%s: %w", item.ExternalTradeID, err)
		}
		if exists {
			item.ID = current.ID
		} else {
			newID, err := s.ids.NewID()
			if err != nil {
				return nil, fmt.Errorf("generate trade id: %w", err)
			}
			item.ID = newID
		}

		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("%w: trade external_trade_id=%s: %v", ErrInvalidInput, item.ExternalTradeID, err)
		}
		batch = append(batch, item)
	}

	if err := s.trades.UpsertBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("upsert trades league=%s: %w", owner.ID, err)
	}

	s.logger.InfoContext(ctx, "trades synced",
		"league_id", owner.ID,
		"platform", owner.Platform,
		"trade_count", len(batch),
	)
	return batch, nil
}

// ListTrades returns the stored trade history of one league, newest first.
func (s *TradeService) ListTrades(ctx context.Context, leagueID string) ([]trade.Trade, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TradeService.ListTrades")
	defer span.End()

	if _, found, err := s.leagues.GetByID(ctx, leagueID); err != nil {
		return nil, fmt.Errorf("lookup league: %w", err)
	} else if !found {
		return nil, fmt.Errorf("%w: league %s", ErrNotFound, leagueID)
	}

	items, err := s.trades.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	return items, nil
}
