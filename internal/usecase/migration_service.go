package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/rosterlink/rosterlink/internal/domain/league"
	"github.com/rosterlink/rosterlink/internal/domain/leaguemaster"
	"github.com/rosterlink/rosterlink/internal/domain/team"
	"github.com/rosterlink/rosterlink/internal/domain/userteam"
	idgen "github.com/rosterlink/rosterlink/internal/platform/id"
	"github.com/rosterlink/rosterlink/internal/platform/logging"
)

const (
	defaultMigrationWorkers = 4
	maxMigrationWorkers     = 16
	migrationPageSize       = 200
)

// MigrationService attaches every league, team and user team to its
// persistent league master identity. Bulk migration walks the whole store;
// single-league migration runs when one league connects for the first time.
type MigrationService struct {
	leagues   league.Repository
	masters   leaguemaster.Repository
	teams     team.Repository
	userTeams userteam.Repository
	ids       idgen.Generator
	logger    *logging.Logger
	season    int
}

type BulkMigrationInput struct {
	// Season is stamped through the cascade. Zero falls back to each
	// league's stored season, then to the configured current season.
	Season int
	// MaxWorkers bounds the pool migrating league groups concurrently.
	MaxWorkers int
	// CreatedBy is stamped onto masters created by this run.
	CreatedBy string
	// DryRun computes groups and counts without writing.
	DryRun bool
}

type MigrationStats struct {
	LeaguesProcessed     int      `json:"leagues_processed"`
	GroupsProcessed      int      `json:"groups_processed"`
	LeagueMastersCreated int      `json:"league_masters_created"`
	LeaguesUpdated       int64    `json:"leagues_updated"`
	TeamsUpdated         int64    `json:"teams_updated"`
	UserTeamsUpdated     int64    `json:"user_teams_updated"`
	WorkerCount          int      `json:"worker_count"`
	DurationMs           int64    `json:"duration_ms"`
	Errors               []string `json:"errors,omitempty"`
}

type SingleLeagueStats struct {
	LeagueMasterID   string `json:"league_master_id"`
	MasterCreated    bool   `json:"master_created"`
	LeaguesUpdated   int64  `json:"leagues_updated"`
	TeamsUpdated     int64  `json:"teams_updated"`
	UserTeamsUpdated int64  `json:"user_teams_updated"`
}

func NewMigrationService(
	leagues league.Repository,
	masters leaguemaster.Repository,
	teams team.Repository,
	userTeams userteam.Repository,
	ids idgen.Generator,
	logger *logging.Logger,
	currentSeason int,
) *MigrationService {
	if ids == nil {
		ids = idgen.NewRandomGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &MigrationService{
		leagues:   leagues,
		masters:   masters,
		teams:     teams,
		userTeams: userTeams,
		ids:       ids,
		logger:    logger,
		season:    currentSeason,
	}
}

// RunBulkMigration groups every stored league by (platform, external league
// id), resolves or creates one master per group, then stamps master id and
// season down through leagues, teams and user teams. Groups migrate
// concurrently; a failed group is reported and never blocks the others.
// The run is idempotent: already-migrated rows resolve to the same master.
func (s *MigrationService) RunBulkMigration(ctx context.Context, input BulkMigrationInput) (MigrationStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MigrationService.RunBulkMigration")
	defer span.End()

	start := time.Now()

	groups, leagueCount, err := s.collectGroups(ctx)
	if err != nil {
		return MigrationStats{}, err
	}

	workerCount := normalizeMigrationWorkerCount(input.MaxWorkers, len(groups))
	stats := MigrationStats{
		LeaguesProcessed: leagueCount,
		GroupsProcessed:  len(groups),
		WorkerCount:      workerCount,
	}
	if len(groups) == 0 || input.DryRun {
		stats.DurationMs = time.Since(start).Milliseconds()
		return stats, nil
	}

	var mastersCreated atomic.Int64
	var leaguesUpdated atomic.Int64
	var teamsUpdated atomic.Int64
	var userTeamsUpdated atomic.Int64

	var errMu sync.Mutex
	var runErrors []string

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return MigrationStats{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, group := range groups {
		group := group
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			outcome, err := s.migrateGroup(ctx, group, input.Season, input.CreatedBy)
			if err != nil {
				errMu.Lock()
				runErrors = append(runErrors, fmt.Sprintf("group %s: %v", group.key, err))
				errMu.Unlock()
				return
			}

			if outcome.masterCreated {
				mastersCreated.Add(1)
			}
			leaguesUpdated.Add(outcome.leaguesUpdated)
			teamsUpdated.Add(outcome.teamsUpdated)
			userTeamsUpdated.Add(outcome.userTeamsUpdated)
		}); err != nil {
			workers.Done()
			return MigrationStats{}, fmt.Errorf("submit group to worker pool: %w", err)
		}
	}
	workers.Wait()

	sort.Strings(runErrors)
	stats.LeagueMastersCreated = int(mastersCreated.Load())
	stats.LeaguesUpdated = leaguesUpdated.Load()
	stats.TeamsUpdated = teamsUpdated.Load()
	stats.UserTeamsUpdated = userTeamsUpdated.Load()
	stats.Errors = runErrors
	stats.DurationMs = time.Since(start).Milliseconds()

	s.logger.InfoContext(ctx, "bulk migration finished",
		"groups", stats.GroupsProcessed,
		"masters_created", stats.LeagueMastersCreated,
		"leagues_updated", stats.LeaguesUpdated,
		"teams_updated", stats.TeamsUpdated,
		"user_teams_updated", stats.UserTeamsUpdated,
		"errors", len(stats.Errors),
		"duration_ms", stats.DurationMs,
	)
	return stats, nil
}

// RunSingleLeagueMigration migrates one league on connect. Season follows
// the same precedence as bulk runs: the caller's value, then the league's
// stored season, then the configured current season. Already-migrated
// leagues return ErrAlreadyMigrated and are never restamped.
func (s *MigrationService) RunSingleLeagueMigration(ctx context.Context, leagueID string, season int, createdBy string) (SingleLeagueStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MigrationService.RunSingleLeagueMigration")
	defer span.End()

	item, found, err := s.leagues.GetByID(ctx, leagueID)
	if err != nil {
		return SingleLeagueStats{}, fmt.Errorf("lookup league: %w", err)
	}
	if !found {
		return SingleLeagueStats{}, fmt.Errorf("%w: league %s", ErrNotFound, leagueID)
	}
	if item.Migrated() {
		return SingleLeagueStats{}, fmt.Errorf("%w: league %s is attached to master %s",
			ErrAlreadyMigrated, item.ID, item.LeagueMasterID)
	}

	outcome, err := s.migrateGroup(ctx, leagueGroup{
		key:     item.GroupKey(),
		leagues: []league.League{item},
	}, season, createdBy)
	if err != nil {
		return SingleLeagueStats{}, err
	}

	return SingleLeagueStats{
		LeagueMasterID:   outcome.masterID,
		MasterCreated:    outcome.masterCreated,
		LeaguesUpdated:   outcome.leaguesUpdated,
		TeamsUpdated:     outcome.teamsUpdated,
		UserTeamsUpdated: outcome.userTeamsUpdated,
	}, nil
}

type leagueGroup struct {
	key     string
	leagues []league.League
}

type groupOutcome struct {
	masterID         string
	masterCreated    bool
	leaguesUpdated   int64
	teamsUpdated     int64
	userTeamsUpdated int64
}

// collectGroups pages through the store and buckets leagues by canonical
// identity. Both migrated and unmigrated leagues join their group so an
// interrupted earlier run converges instead of forking masters.
func (s *MigrationService) collectGroups(ctx context.Context) ([]leagueGroup, int, error) {
	buckets := make(map[string][]league.League)
	cursor := ""
	total := 0

	for {
		page, next, err := s.leagues.ListPage(ctx, cursor, migrationPageSize)
		if err != nil {
			return nil, 0, fmt.Errorf("list leagues: %w", err)
		}

		for _, l := range page {
			buckets[l.GroupKey()] = append(buckets[l.GroupKey()], l)
			total++
		}

		if next == "" {
			break
		}
		cursor = next
	}

	groups := make([]leagueGroup, 0, len(buckets))
	for key, leagues := range buckets {
		groups = append(groups, leagueGroup{key: key, leagues: leagues})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].key < groups[j].key })

	return groups, total, nil
}

// effectiveSeason picks the season stamped through a cascade: the caller's
// value wins, a season already on the row comes next, the configured
// current season is the last resort.
func (s *MigrationService) effectiveSeason(requested, stored int) int {
	if requested > 0 {
		return requested
	}
	if stored > 0 {
		return stored
	}
	return s.season
}

func (s *MigrationService) migrateGroup(ctx context.Context, group leagueGroup, requestedSeason int, createdBy string) (groupOutcome, error) {
	if len(group.leagues) == 0 {
		return groupOutcome{}, nil
	}

	// Newest season names the master.
	sorted := append([]league.League(nil), group.leagues...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Season > sorted[j].Season })
	newest := sorted[0]

	var outcome groupOutcome

	master, ok, err := s.masters.GetByExternalID(ctx, newest.Platform, newest.ExternalLeagueID)
	if err != nil {
		return groupOutcome{}, fmt.Errorf("lookup league master: %w", err)
	}
	if !ok {
		newID, err := s.ids.NewID()
		if err != nil {
			return groupOutcome{}, fmt.Errorf("generate league master id: %w", err)
		}
		candidate := leaguemaster.LeagueMaster{
			ID:               newID,
			Name:             newest.Name,
			Platform:         newest.Platform,
			ExternalLeagueID: newest.ExternalLeagueID,
			CreatedBy:        createdBy,
		}
		if err := candidate.Validate(); err != nil {
			return groupOutcome{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}

		// Create converges on the stored row when a concurrent run won the
		// race for this group.
		master, err = s.masters.Create(ctx, candidate)
		if err != nil {
			return groupOutcome{}, fmt.Errorf("create league master: %w", err)
		}
		outcome.masterCreated = master.ID == newID
	}
	outcome.masterID = master.ID

	leagueIDs := make([]string, 0, len(sorted))
	for _, l := range sorted {
		leagueIDs = append(leagueIDs, l.ID)
	}
	touched, err := s.leagues.SetLeagueMaster(ctx, leagueIDs, master.ID, s.effectiveSeason(requestedSeason, 0))
	if err != nil {
		return groupOutcome{}, fmt.Errorf("stamp leagues: %w", err)
	}
	outcome.leaguesUpdated = touched

	for _, l := range sorted {
		season := s.effectiveSeason(requestedSeason, l.Season)

		teamsTouched, err := s.teams.SetLeagueMaster(ctx, l.ID, master.ID, season)
		if err != nil {
			return groupOutcome{}, fmt.Errorf("stamp teams league=%s: %w", l.ID, err)
		}
		outcome.teamsUpdated += teamsTouched

		rosters, err := s.teams.ListByLeague(ctx, l.ID)
		if err != nil {
			return groupOutcome{}, fmt.Errorf("list teams league=%s: %w", l.ID, err)
		}
		if len(rosters) == 0 {
			continue
		}

		teamIDs := make([]string, 0, len(rosters))
		for _, t := range rosters {
			teamIDs = append(teamIDs, t.ID)
		}
		userTeamsTouched, err := s.userTeams.SetLeagueMasterByTeams(ctx, teamIDs, master.ID, season)
		if err != nil {
			return groupOutcome{}, fmt.Errorf("stamp user teams league=%s: %w", l.ID, err)
		}
		outcome.userTeamsUpdated += userTeamsTouched
	}

	return outcome, nil
}

func normalizeMigrationWorkerCount(value, groupCount int) int {
	if groupCount <= 0 {
		return 1
	}
	if value <= 0 {
		value = defaultMigrationWorkers
	}
	if value > maxMigrationWorkers {
		value = maxMigrationWorkers
	}
	if value > groupCount {
		value = groupCount
	}
	return value
}
