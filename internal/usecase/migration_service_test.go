package usecase

import (
	"errors"
	"testing"

	"github.com/rosterlink/rosterlink/internal/domain/league"
	"github.com/rosterlink/rosterlink/internal/domain/platform"
	"github.com/rosterlink/rosterlink/internal/domain/team"
	"github.com/rosterlink/rosterlink/internal/domain/userteam"
	"github.com/rosterlink/rosterlink/internal/infrastructure/repository/memory"
)

func unmigratedFixtures() (*memory.LeagueRepository, *memory.LeagueMasterRepository, *memory.TeamRepository, *memory.UserTeamRepository) {
	leagues := memory.NewLeagueRepository([]league.League{
		{ID: "lg-dyn-2024", Name: "Gridiron Dynasty", Platform: platform.Sleeper, ExternalLeagueID: "111", Season: 2024, Version: 1},
		{ID: "lg-dyn-2025", Name: "Gridiron Dynasty", Platform: platform.Sleeper, ExternalLeagueID: "111", Season: 2025, Version: 1},
		// Legacy row from before seasons were recorded.
		{ID: "lg-harbor", Name: "Harbor City Keepers", Platform: platform.Fleaflicker, ExternalLeagueID: "43210", Version: 1},
	})
	masters := memory.NewLeagueMasterRepository(nil)
	teams := memory.NewTeamRepository([]team.Team{
		{ID: "tm-dyn-2024-1", LeagueID: "lg-dyn-2024", Season: 2024, ExternalTeamID: "1", Version: 1},
		{ID: "tm-dyn-2025-1", LeagueID: "lg-dyn-2025", Season: 2025, ExternalTeamID: "1", Version: 1},
		{ID: "tm-dyn-2025-2", LeagueID: "lg-dyn-2025", Season: 2025, ExternalTeamID: "2", Version: 1},
		{ID: "tm-harbor-1", LeagueID: "lg-harbor", ExternalTeamID: "1543", Version: 1},
	})
	userTeams := memory.NewUserTeamRepository([]userteam.UserTeam{
		{ID: "ut-1", UserID: "user-amos", TeamID: "tm-dyn-2025-1"},
		{ID: "ut-2", UserID: "user-cole", TeamID: "tm-harbor-1"},
	})
	return leagues, masters, teams, userTeams
}

func TestMigrationService_RunBulkMigration_GroupsSeasonsUnderOneMaster(t *testing.T) {
	leagues, masters, teams, userTeams := unmigratedFixtures()
	service := NewMigrationService(leagues, masters, teams, userTeams, nil, nil, 2025)

	stats, err := service.RunBulkMigration(t.Context(), BulkMigrationInput{CreatedBy: "system", MaxWorkers: 2})
	if err != nil {
		t.Fatalf("bulk migration failed: %v", err)
	}
	if len(stats.Errors) != 0 {
		t.Fatalf("expected clean run, got errors: %v", stats.Errors)
	}
	if stats.LeaguesProcessed != 3 {
		t.Fatalf("expected 3 leagues processed, got %d", stats.LeaguesProcessed)
	}
	if stats.GroupsProcessed != 2 {
		t.Fatalf("expected 2 groups, got %d", stats.GroupsProcessed)
	}
	if stats.LeagueMastersCreated != 2 {
		t.Fatalf("expected 2 masters created, got %d", stats.LeagueMastersCreated)
	}
	if stats.LeaguesUpdated != 3 {
		t.Fatalf("expected 3 leagues stamped, got %d", stats.LeaguesUpdated)
	}
	if stats.TeamsUpdated != 4 {
		t.Fatalf("expected 4 teams stamped, got %d", stats.TeamsUpdated)
	}
	if stats.UserTeamsUpdated != 2 {
		t.Fatalf("expected 2 user teams stamped, got %d", stats.UserTeamsUpdated)
	}

	// Both seasons of the dynasty league share one master.
	l2024, _, _ := leagues.GetByID(t.Context(), "lg-dyn-2024")
	l2025, _, _ := leagues.GetByID(t.Context(), "lg-dyn-2025")
	if l2024.LeagueMasterID == "" || l2024.LeagueMasterID != l2025.LeagueMasterID {
		t.Fatalf("expected shared master, got %q and %q", l2024.LeagueMasterID, l2025.LeagueMasterID)
	}

	// The legacy row gets the configured current season on migration.
	harbor, _, _ := leagues.GetByID(t.Context(), "lg-harbor")
	if !harbor.Migrated() {
		t.Fatalf("expected legacy league migrated")
	}
	if harbor.Season != 2025 {
		t.Fatalf("expected legacy league stamped with season 2025, got %d", harbor.Season)
	}
	if harbor.LeagueMasterID == l2025.LeagueMasterID {
		t.Fatalf("expected distinct masters per platform identity")
	}

	// The cascade reaches teams and user team bindings.
	harborTeam, _, _ := teams.GetByID(t.Context(), "tm-harbor-1")
	if harborTeam.LeagueMasterID != harbor.LeagueMasterID {
		t.Fatalf("expected team stamped with league's master")
	}
	if harborTeam.Season != 2025 {
		t.Fatalf("expected legacy team stamped with season 2025, got %d", harborTeam.Season)
	}
	bindings, _ := userTeams.FindByUserAndTeam(t.Context(), "user-amos", "tm-dyn-2025-1")
	if len(bindings) != 1 || bindings[0].LeagueMasterID != l2025.LeagueMasterID {
		t.Fatalf("expected user team stamped with master, got %+v", bindings)
	}
	if bindings[0].CurrentSeason != 2025 {
		t.Fatalf("expected user team season 2025, got %d", bindings[0].CurrentSeason)
	}
}

func TestMigrationService_RunBulkMigration_CallerSeasonWins(t *testing.T) {
	leagues, masters, teams, userTeams := unmigratedFixtures()
	service := NewMigrationService(leagues, masters, teams, userTeams, nil, nil, 2025)

	// A backfill run for a past season must not stamp the configured
	// current season onto legacy rows.
	_, err := service.RunBulkMigration(t.Context(), BulkMigrationInput{Season: 2024, CreatedBy: "system"})
	if err != nil {
		t.Fatalf("bulk migration failed: %v", err)
	}

	harbor, _, _ := leagues.GetByID(t.Context(), "lg-harbor")
	if harbor.Season != 2024 {
		t.Fatalf("expected legacy league stamped with requested season 2024, got %d", harbor.Season)
	}
	harborTeam, _, _ := teams.GetByID(t.Context(), "tm-harbor-1")
	if harborTeam.Season != 2024 {
		t.Fatalf("expected legacy team stamped with requested season 2024, got %d", harborTeam.Season)
	}

	// Rows that already carry a season keep it.
	l2025, _, _ := leagues.GetByID(t.Context(), "lg-dyn-2025")
	if l2025.Season != 2025 {
		t.Fatalf("expected stored season preserved, got %d", l2025.Season)
	}
}

func TestMigrationService_RunSingleLeagueMigration_CallerSeasonWins(t *testing.T) {
	leagues, masters, teams, userTeams := unmigratedFixtures()
	service := NewMigrationService(leagues, masters, teams, userTeams, nil, nil, 2025)

	stats, err := service.RunSingleLeagueMigration(t.Context(), "lg-harbor", 2024, "user-cole")
	if err != nil {
		t.Fatalf("single league migration failed: %v", err)
	}
	if stats.TeamsUpdated != 1 {
		t.Fatalf("expected one team stamped, got %d", stats.TeamsUpdated)
	}

	harbor, _, _ := leagues.GetByID(t.Context(), "lg-harbor")
	if harbor.Season != 2024 {
		t.Fatalf("expected requested season 2024 stamped, got %d", harbor.Season)
	}
	harborTeam, _, _ := teams.GetByID(t.Context(), "tm-harbor-1")
	if harborTeam.Season != 2024 {
		t.Fatalf("expected team stamped with requested season 2024, got %d", harborTeam.Season)
	}
	bindings, _ := userTeams.FindByUserAndTeam(t.Context(), "user-cole", "tm-harbor-1")
	if len(bindings) != 1 || bindings[0].CurrentSeason != 2024 {
		t.Fatalf("expected user team bound to season 2024, got %+v", bindings)
	}
}

func TestMigrationService_RunBulkMigration_Idempotent(t *testing.T) {
	leagues, masters, teams, userTeams := unmigratedFixtures()
	service := NewMigrationService(leagues, masters, teams, userTeams, nil, nil, 2025)

	if _, err := service.RunBulkMigration(t.Context(), BulkMigrationInput{CreatedBy: "system"}); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	l2025Before, _, _ := leagues.GetByID(t.Context(), "lg-dyn-2025")

	stats, err := service.RunBulkMigration(t.Context(), BulkMigrationInput{CreatedBy: "system"})
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if stats.LeagueMastersCreated != 0 {
		t.Fatalf("expected no new masters on re-run, got %d", stats.LeagueMastersCreated)
	}

	l2025After, _, _ := leagues.GetByID(t.Context(), "lg-dyn-2025")
	if l2025After.LeagueMasterID != l2025Before.LeagueMasterID {
		t.Fatalf("expected master unchanged on re-run")
	}

	allMasters, _ := masters.List(t.Context())
	if len(allMasters) != 2 {
		t.Fatalf("expected 2 masters after re-run, got %d", len(allMasters))
	}
}

func TestMigrationService_RunBulkMigration_DryRun(t *testing.T) {
	leagues, masters, teams, userTeams := unmigratedFixtures()
	service := NewMigrationService(leagues, masters, teams, userTeams, nil, nil, 2025)

	stats, err := service.RunBulkMigration(t.Context(), BulkMigrationInput{DryRun: true})
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if stats.GroupsProcessed != 2 {
		t.Fatalf("expected groups computed on dry run, got %d", stats.GroupsProcessed)
	}
	if stats.LeagueMastersCreated != 0 || stats.LeaguesUpdated != 0 {
		t.Fatalf("expected no writes on dry run, got %+v", stats)
	}

	allMasters, _ := masters.List(t.Context())
	if len(allMasters) != 0 {
		t.Fatalf("expected no masters created on dry run, got %d", len(allMasters))
	}
}

func TestMigrationService_RunSingleLeagueMigration(t *testing.T) {
	leagues, masters, teams, userTeams := unmigratedFixtures()
	service := NewMigrationService(leagues, masters, teams, userTeams, nil, nil, 2025)

	stats, err := service.RunSingleLeagueMigration(t.Context(), "lg-harbor", 0, "user-cole")
	if err != nil {
		t.Fatalf("single league migration failed: %v", err)
	}
	if !stats.MasterCreated {
		t.Fatalf("expected master created for first connect")
	}
	if stats.LeaguesUpdated != 1 || stats.TeamsUpdated != 1 || stats.UserTeamsUpdated != 1 {
		t.Fatalf("expected full cascade for one league, got %+v", stats)
	}

	master, found, _ := masters.GetByID(t.Context(), stats.LeagueMasterID)
	if !found {
		t.Fatalf("expected master persisted")
	}
	if master.CreatedBy != "user-cole" {
		t.Fatalf("expected created_by stamped, got %q", master.CreatedBy)
	}

	// Second attempt on a migrated league must refuse.
	_, err = service.RunSingleLeagueMigration(t.Context(), "lg-harbor", 0, "user-cole")
	if !errors.Is(err, ErrAlreadyMigrated) {
		t.Fatalf("expected ErrAlreadyMigrated, got %v", err)
	}
}

func TestMigrationService_RunSingleLeagueMigration_ReusesGroupMaster(t *testing.T) {
	leagues, masters, teams, userTeams := unmigratedFixtures()
	service := NewMigrationService(leagues, masters, teams, userTeams, nil, nil, 2025)

	first, err := service.RunSingleLeagueMigration(t.Context(), "lg-dyn-2024", 0, "user-amos")
	if err != nil {
		t.Fatalf("migrate 2024 failed: %v", err)
	}
	second, err := service.RunSingleLeagueMigration(t.Context(), "lg-dyn-2025", 0, "user-amos")
	if err != nil {
		t.Fatalf("migrate 2025 failed: %v", err)
	}
	if second.MasterCreated {
		t.Fatalf("expected second season to reuse the group master")
	}
	if first.LeagueMasterID != second.LeagueMasterID {
		t.Fatalf("expected one master, got %s and %s", first.LeagueMasterID, second.LeagueMasterID)
	}
}

func TestMigrationService_RunSingleLeagueMigration_NotFound(t *testing.T) {
	leagues, masters, teams, userTeams := unmigratedFixtures()
	service := NewMigrationService(leagues, masters, teams, userTeams, nil, nil, 2025)

	_, err := service.RunSingleLeagueMigration(t.Context(), "lg-missing", 0, "system")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
