package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rosterlink/rosterlink/internal/domain/league"
	"github.com/rosterlink/rosterlink/internal/domain/platform"
	"github.com/rosterlink/rosterlink/internal/domain/team"
	"github.com/rosterlink/rosterlink/internal/domain/trade"
	"github.com/rosterlink/rosterlink/internal/domain/userteam"
	"github.com/rosterlink/rosterlink/internal/infrastructure/repository/memory"
)

type stubAdapter struct {
	platform platform.Name
	league   LeagueData
	teams    []team.Team
	err      error
}

func (a *stubAdapter) Platform() platform.Name { return a.platform }

func (a *stubAdapter) FetchLeague(_ context.Context, _ string) (LeagueData, error) {
	if a.err != nil {
		return LeagueData{}, a.err
	}
	return a.league, nil
}

func (a *stubAdapter) FetchTeams(_ context.Context, _ string) ([]team.Team, error) {
	if a.err != nil {
		return nil, a.err
	}
	out := make([]team.Team, len(a.teams))
	copy(out, a.teams)
	return out, nil
}

type stubTradeProvider struct {
	platform      platform.Name
	trades        []trade.Trade
	err           error
	lastFetchedID string
}

func (p *stubTradeProvider) Platform() platform.Name { return p.platform }

func (p *stubTradeProvider) FetchTrades(_ context.Context, externalLeagueID string) ([]trade.Trade, error) {
	p.lastFetchedID = externalLeagueID
	if p.err != nil {
		return nil, p.err
	}
	out := make([]trade.Trade, len(p.trades))
	copy(out, p.trades)
	return out, nil
}

// conflictingLeagueRepo fails the first N upserts with a version conflict
// before delegating.
type conflictingLeagueRepo struct {
	league.Repository
	conflicts int
}

func (r *conflictingLeagueRepo) Upsert(ctx context.Context, item league.League) (league.League, error) {
	if r.conflicts > 0 {
		r.conflicts--
		return league.League{}, league.ErrVersionConflict
	}
	return r.Repository.Upsert(ctx, item)
}

func newTestRegistry(adapters ...Adapter) *Registry {
	registry := NewRegistry()
	for _, a := range adapters {
		registry.RegisterAdapter(a)
	}
	return registry
}

func TestSyncService_SyncLeague_CreateThenUpdate(t *testing.T) {
	adapter := &stubAdapter{
		platform: platform.Sleeper,
		league:   LeagueData{Name: "Gridiron Dynasty", ExternalLeagueID: "111", Season: 2025},
	}
	leagueRepo := memory.NewLeagueRepository(nil)
	masterRepo := memory.NewLeagueMasterRepository(nil)
	teamRepo := memory.NewTeamRepository(nil)
	userTeamRepo := memory.NewUserTeamRepository(nil)
	monitor := NewContentionMonitor(8, nil, nil, nil)

	service := NewSyncService(newTestRegistry(adapter), leagueRepo, masterRepo, teamRepo, userTeamRepo, monitor, nil, nil, 2025)

	created, err := service.SyncLeague(t.Context(), platform.Sleeper, "111", 0)
	if err != nil {
		t.Fatalf("sync league failed: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated league id")
	}
	if created.Season != 2025 {
		t.Fatalf("expected payload season 2025, got %d", created.Season)
	}
	if created.Version != 1 {
		t.Fatalf("expected version 1 on create, got %d", created.Version)
	}

	adapter.league.Name = "Gridiron Dynasty Renamed"
	updated, err := service.SyncLeague(t.Context(), platform.Sleeper, "111", 0)
	if err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("expected stable league id, got %s and %s", created.ID, updated.ID)
	}
	if updated.Version != 2 {
		t.Fatalf("expected version 2 after update, got %d", updated.Version)
	}
	if updated.Name != "Gridiron Dynasty Renamed" {
		t.Fatalf("expected updated name, got %s", updated.Name)
	}
}

func TestSyncService_SyncLeague_CallerSeasonWins(t *testing.T) {
	adapter := &stubAdapter{
		platform: platform.Sleeper,
		league:   LeagueData{Name: "Gridiron Dynasty", ExternalLeagueID: "111", Season: 2025},
	}
	service := NewSyncService(newTestRegistry(adapter),
		memory.NewLeagueRepository(nil),
		memory.NewLeagueMasterRepository(nil),
		memory.NewTeamRepository(nil),
		memory.NewUserTeamRepository(nil),
		NewContentionMonitor(8, nil, nil, nil), nil, nil, 2025)

	saved, err := service.SyncLeague(t.Context(), platform.Sleeper, "111", 2024)
	if err != nil {
		t.Fatalf("sync league failed: %v", err)
	}
	if saved.Season != 2024 {
		t.Fatalf("expected caller season 2024 to win over payload, got %d", saved.Season)
	}
}

func TestSyncService_SyncLeague_AttachesExistingMaster(t *testing.T) {
	adapter := &stubAdapter{
		platform: platform.Sleeper,
		league:   LeagueData{Name: "Gridiron Dynasty", ExternalLeagueID: "998877001122334455", Season: 2026},
	}
	service := NewSyncService(newTestRegistry(adapter),
		memory.NewLeagueRepository(nil),
		memory.NewLeagueMasterRepository(memory.SeedLeagueMasters()),
		memory.NewTeamRepository(nil),
		memory.NewUserTeamRepository(nil),
		NewContentionMonitor(8, nil, nil, nil), nil, nil, 2026)

	saved, err := service.SyncLeague(t.Context(), platform.Sleeper, "998877001122334455", 0)
	if err != nil {
		t.Fatalf("sync league failed: %v", err)
	}
	if saved.LeagueMasterID != memory.LeagueMasterIDGridiron {
		t.Fatalf("expected league attached to existing master, got %q", saved.LeagueMasterID)
	}
}

func TestSyncService_SyncTeams_PreservesIdentityAcrossRuns(t *testing.T) {
	adapter := &stubAdapter{
		platform: platform.Sleeper,
		league:   LeagueData{Name: "Gridiron Dynasty", ExternalLeagueID: "111", Season: 2025},
		teams: []team.Team{
			{ExternalTeamID: "1", ExternalUserID: "u-1", Username: "amos", Wins: 1},
			{ExternalTeamID: "2", ExternalUserID: "u-2", Username: "bea", Wins: 2},
		},
	}
	leagueRepo := memory.NewLeagueRepository(nil)
	teamRepo := memory.NewTeamRepository(nil)
	service := NewSyncService(newTestRegistry(adapter), leagueRepo,
		memory.NewLeagueMasterRepository(nil), teamRepo,
		memory.NewUserTeamRepository(nil),
		NewContentionMonitor(8, nil, nil, nil), nil, nil, 2025)

	owner, err := service.SyncLeague(t.Context(), platform.Sleeper, "111", 0)
	if err != nil {
		t.Fatalf("sync league failed: %v", err)
	}

	first, err := service.SyncTeams(t.Context(), owner.ID)
	if err != nil {
		t.Fatalf("first team sync failed: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 teams, got %d", len(first))
	}
	for _, item := range first {
		if item.LeagueID != owner.ID {
			t.Fatalf("expected team bound to league %s, got %s", owner.ID, item.LeagueID)
		}
		if item.Season != owner.Season {
			t.Fatalf("expected team season %d, got %d", owner.Season, item.Season)
		}
		if item.LastFetched == nil {
			t.Fatalf("expected last fetched stamped on sync")
		}
	}

	adapter.teams[0].Wins = 3
	second, err := service.SyncTeams(t.Context(), owner.ID)
	if err != nil {
		t.Fatalf("second team sync failed: %v", err)
	}

	byExternal := make(map[string]team.Team, len(second))
	for _, item := range second {
		byExternal[item.ExternalTeamID] = item
	}
	if byExternal["1"].ID != first[0].ID && byExternal["1"].ID != first[1].ID {
		t.Fatalf("expected stable team id across syncs")
	}
	if byExternal["1"].Wins != 3 {
		t.Fatalf("expected updated wins, got %d", byExternal["1"].Wins)
	}
	if byExternal["1"].Version != 2 {
		t.Fatalf("expected version 2 after update, got %d", byExternal["1"].Version)
	}
}

func TestSyncService_LinkUserTeam_RepairsDuplicates(t *testing.T) {
	leagueRepo := memory.NewLeagueRepository(memory.SeedLeagues())
	teamRepo := memory.NewTeamRepository(memory.SeedTeams())
	userTeamRepo := memory.NewUserTeamRepository([]userteam.UserTeam{
		{ID: "ut-1", UserID: "user-amos", TeamID: "tm-gridiron-2025-01", CreatedAt: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "ut-2", UserID: "user-amos", TeamID: "tm-gridiron-2025-01", CreatedAt: time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "ut-3", UserID: "user-amos", TeamID: "tm-gridiron-2025-01", CreatedAt: time.Date(2025, 8, 3, 0, 0, 0, 0, time.UTC)},
	})
	service := NewSyncService(newTestRegistry(), leagueRepo,
		memory.NewLeagueMasterRepository(memory.SeedLeagueMasters()),
		teamRepo, userTeamRepo,
		NewContentionMonitor(8, nil, nil, nil), nil, nil, 2025)

	kept, err := service.LinkUserTeam(t.Context(), "user-amos", memory.LeagueIDGridiron2025, "sleeper-user-amos", "")
	if err != nil {
		t.Fatalf("link user team failed: %v", err)
	}
	if kept.ID != "ut-1" {
		t.Fatalf("expected oldest row kept, got %s", kept.ID)
	}
	if kept.LeagueMasterID != memory.LeagueMasterIDGridiron {
		t.Fatalf("expected master stamped on kept row, got %q", kept.LeagueMasterID)
	}

	remaining, err := userTeamRepo.FindByUserAndTeam(t.Context(), "user-amos", "tm-gridiron-2025-01")
	if err != nil {
		t.Fatalf("find user teams failed: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected duplicates repaired down to 1 row, got %d", len(remaining))
	}
}

func TestSyncService_LinkUserTeam_NoMatchingRoster(t *testing.T) {
	service := NewSyncService(newTestRegistry(),
		memory.NewLeagueRepository(memory.SeedLeagues()),
		memory.NewLeagueMasterRepository(nil),
		memory.NewTeamRepository(memory.SeedTeams()),
		memory.NewUserTeamRepository(nil),
		NewContentionMonitor(8, nil, nil, nil), nil, nil, 2025)

	_, err := service.LinkUserTeam(t.Context(), "user-x", memory.LeagueIDGridiron2025, "no-such-user", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSyncService_SyncLeague_RetriesContentionOnce(t *testing.T) {
	adapter := &stubAdapter{
		platform: platform.Sleeper,
		league:   LeagueData{Name: "Gridiron Dynasty", ExternalLeagueID: "111", Season: 2025},
	}
	leagueRepo := &conflictingLeagueRepo{Repository: memory.NewLeagueRepository(nil), conflicts: 1}
	monitor := NewContentionMonitor(8, nil, nil, nil)
	service := NewSyncService(newTestRegistry(adapter), leagueRepo,
		memory.NewLeagueMasterRepository(nil),
		memory.NewTeamRepository(nil),
		memory.NewUserTeamRepository(nil),
		monitor, nil, nil, 2025)

	saved, err := service.SyncLeague(t.Context(), platform.Sleeper, "111", 0)
	if err != nil {
		t.Fatalf("expected retry to recover from one conflict, got %v", err)
	}
	if saved.ID == "" {
		t.Fatalf("expected league written on retry")
	}

	summary := monitor.Summary()
	if summary.Total != 1 {
		t.Fatalf("expected one contention event recorded, got %d", summary.Total)
	}
	if summary.ByOperation["league_upsert"] != 1 {
		t.Fatalf("expected league_upsert operation counted, got %+v", summary.ByOperation)
	}
}

func TestSyncService_SyncLeague_SurfacesPersistentContention(t *testing.T) {
	adapter := &stubAdapter{
		platform: platform.Sleeper,
		league:   LeagueData{Name: "Gridiron Dynasty", ExternalLeagueID: "111", Season: 2025},
	}
	leagueRepo := &conflictingLeagueRepo{Repository: memory.NewLeagueRepository(nil), conflicts: 10}
	monitor := NewContentionMonitor(8, nil, nil, nil)
	service := NewSyncService(newTestRegistry(adapter), leagueRepo,
		memory.NewLeagueMasterRepository(nil),
		memory.NewTeamRepository(nil),
		memory.NewUserTeamRepository(nil),
		monitor, nil, nil, 2025)

	_, err := service.SyncLeague(t.Context(), platform.Sleeper, "111", 0)
	if !errors.Is(err, ErrWriteContention) {
		t.Fatalf("expected ErrWriteContention, got %v", err)
	}
	if summary := monitor.Summary(); summary.Total != 2 {
		t.Fatalf("expected initial attempt plus retry recorded, got %d", summary.Total)
	}
}

func TestSyncService_SyncLeague_UnknownPlatform(t *testing.T) {
	service := NewSyncService(newTestRegistry(),
		memory.NewLeagueRepository(nil),
		memory.NewLeagueMasterRepository(nil),
		memory.NewTeamRepository(nil),
		memory.NewUserTeamRepository(nil),
		NewContentionMonitor(8, nil, nil, nil), nil, nil, 2025)

	_, err := service.SyncLeague(t.Context(), platform.Fleaflicker, "43210", 0)
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}
