package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/rosterlink/rosterlink/internal/domain/platform"
	"github.com/rosterlink/rosterlink/internal/domain/trade"
	"github.com/rosterlink/rosterlink/internal/infrastructure/repository/memory"
)

func newTradeTestService(provider TradeProvider) (*TradeService, *memory.TradeRepository) {
	registry := NewRegistry()
	if provider != nil {
		registry.RegisterTradeProvider(provider)
	}
	trades := memory.NewTradeRepository(nil)
	service := NewTradeService(registry,
		memory.NewLeagueRepository(memory.SeedLeagues()),
		trades, nil, nil)
	return service, trades
}

func TestTradeService_SyncTrades_WritesCanonicalBatch(t *testing.T) {
	provider := &stubTradeProvider{
		platform: platform.Sleeper,
		trades: []trade.Trade{
			{
				ExternalTradeID: "tx-100",
				Status:          trade.StatusCompleted,
				Participants: []trade.Participant{
					{ExternalTeamID: "1", PlayersGiven: []string{"4046"}, PlayersReceived: []string{"6794"}},
					{ExternalTeamID: "2", PlayersGiven: []string{"6794"}, PlayersReceived: []string{"4046"}},
				},
				ProposedAt: time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC),
			},
			{
				ExternalTradeID: "tx-101",
				Status:          trade.StatusPending,
				Participants: []trade.Participant{
					{ExternalTeamID: "1", PicksGiven: []trade.Pick{{Season: 2026, Round: 1, OriginalOwner: "1"}}},
				},
				ProposedAt: time.Date(2025, 9, 2, 10, 0, 0, 0, time.UTC),
			},
		},
	}
	service, trades := newTradeTestService(provider)

	synced, err := service.SyncTrades(t.Context(), memory.LeagueIDGridiron2025, "")
	if err != nil {
		t.Fatalf("sync trades failed: %v", err)
	}
	if len(synced) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(synced))
	}
	for _, item := range synced {
		if item.ID == "" {
			t.Fatalf("expected generated trade id")
		}
		if item.LeagueID != memory.LeagueIDGridiron2025 {
			t.Fatalf("expected league id filled, got %q", item.LeagueID)
		}
		if item.Platform != platform.Sleeper {
			t.Fatalf("expected platform stamped, got %q", item.Platform)
		}
		if item.LastSynced.IsZero() {
			t.Fatalf("expected last synced stamped")
		}
	}

	stored, _, err := trades.GetByExternalID(t.Context(), memory.LeagueIDGridiron2025, "tx-100")
	if err != nil {
		t.Fatalf("lookup stored trade failed: %v", err)
	}
	if stored.Status != trade.StatusCompleted {
		t.Fatalf("expected completed status, got %s", stored.Status)
	}
}

func TestTradeService_SyncTrades_IdempotentWithStatusProgression(t *testing.T) {
	provider := &stubTradeProvider{
		platform: platform.Sleeper,
		trades: []trade.Trade{
			{ExternalTradeID: "tx-200", Status: trade.StatusPending, ProposedAt: time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)},
		},
	}
	service, trades := newTradeTestService(provider)

	first, err := service.SyncTrades(t.Context(), memory.LeagueIDGridiron2025, "")
	if err != nil {
		t.Fatalf("first sync failed: %v", err)
	}

	// The platform later reports the same trade as vetoed.
	provider.trades[0].Status = trade.StatusVetoed
	second, err := service.SyncTrades(t.Context(), memory.LeagueIDGridiron2025, "")
	if err != nil {
		t.Fatalf("second sync failed: %v", err)
	}

	if second[0].ID != first[0].ID {
		t.Fatalf("expected stable trade id, got %s and %s", first[0].ID, second[0].ID)
	}

	all, err := trades.ListByLeague(t.Context(), memory.LeagueIDGridiron2025)
	if err != nil {
		t.Fatalf("list trades failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one stored trade after re-sync, got %d", len(all))
	}
	if all[0].Status != trade.StatusVetoed {
		t.Fatalf("expected status updated to vetoed, got %s", all[0].Status)
	}
}

func TestTradeService_SyncTrades_NormalizesUnknownStatus(t *testing.T) {
	provider := &stubTradeProvider{
		platform: platform.Sleeper,
		trades: []trade.Trade{
			{ExternalTradeID: "tx-300", Status: trade.Status("SOMETHING_NEW"), ProposedAt: time.Now().UTC()},
		},
	}
	service, _ := newTradeTestService(provider)

	synced, err := service.SyncTrades(t.Context(), memory.LeagueIDGridiron2025, "")
	if err != nil {
		t.Fatalf("sync trades failed: %v", err)
	}
	if synced[0].Status != trade.StatusPending {
		t.Fatalf("expected unknown status folded to pending, got %s", synced[0].Status)
	}
}

func TestTradeService_SyncTrades_ExternalLeagueIDOverride(t *testing.T) {
	provider := &stubTradeProvider{
		platform: platform.Sleeper,
		trades: []trade.Trade{
			{ExternalTradeID: "tx-400", Status: trade.StatusCompleted, ProposedAt: time.Now().UTC()},
		},
	}
	service, _ := newTradeTestService(provider)

	// The stored league identity drives the fetch by default.
	if _, err := service.SyncTrades(t.Context(), memory.LeagueIDGridiron2025, ""); err != nil {
		t.Fatalf("sync trades failed: %v", err)
	}
	defaultID := provider.lastFetchedID
	if defaultID == "" {
		t.Fatalf("expected stored external league id used for fetch")
	}

	// A caller-supplied identity wins over the stored one.
	synced, err := service.SyncTrades(t.Context(), memory.LeagueIDGridiron2025, "override-777")
	if err != nil {
		t.Fatalf("sync trades with override failed: %v", err)
	}
	if provider.lastFetchedID != "override-777" {
		t.Fatalf("expected override fetched, got %q", provider.lastFetchedID)
	}
	if synced[0].ExternalLeagueID != "override-777" {
		t.Fatalf("expected override stamped on trades, got %q", synced[0].ExternalLeagueID)
	}
}

func TestTradeService_SyncTrades_NoProviderForPlatform(t *testing.T) {
	service, _ := newTradeTestService(nil)

	_, err := service.SyncTrades(t.Context(), memory.LeagueIDGridiron2025, "")
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestTradeService_ListTrades_UnknownLeague(t *testing.T) {
	service, _ := newTradeTestService(nil)

	_, err := service.ListTrades(t.Context(), "lg-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
