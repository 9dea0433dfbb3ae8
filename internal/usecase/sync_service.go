package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rosterlink/rosterlink/internal/domain/contention"
	"github.com/rosterlink/rosterlink/internal/domain/league"
	"github.com/rosterlink/rosterlink/internal/domain/leaguemaster"
	"github.com/rosterlink/rosterlink/internal/domain/platform"
	"github.com/rosterlink/rosterlink/internal/domain/team"
	"github.com/rosterlink/rosterlink/internal/domain/userteam"
	idgen "github.com/rosterlink/rosterlink/internal/platform/id"
	"github.com/rosterlink/rosterlink/internal/platform/logging"
)

// contentionRetries is how many times a conflicted write is replayed from a
// fresh read before the error surfaces to the caller.
const contentionRetries = 1

// SyncService pulls league and roster data through platform adapters and
// owns every canonical write. Adapters only fetch and map; nothing outside
// this service upserts leagues, teams or user teams.
type SyncService struct {
	registry  *Registry
	leagues   league.Repository
	masters   leaguemaster.Repository
	teams     team.Repository
	userTeams userteam.Repository
	monitor   *ContentionMonitor
	ids       idgen.Generator
	logger    *logging.Logger
	season    int
}

func NewSyncService(
	registry *Registry,
	leagues league.Repository,
	masters leaguemaster.Repository,
	teams team.Repository,
	userTeams userteam.Repository,
	monitor *ContentionMonitor,
	ids idgen.Generator,
	logger *logging.Logger,
	currentSeason int,
) *SyncService {
	if ids == nil {
		ids = idgen.NewRandomGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &SyncService{
		registry:  registry,
		leagues:   leagues,
		masters:   masters,
		teams:     teams,
		userTeams: userTeams,
		monitor:   monitor,
		ids:       ids,
		logger:    logger,
		season:    currentSeason,
	}
}

// SyncLeague fetches one league from its platform and upserts the canonical
// row for (platform, external league id, season). A caller-supplied season
// overrides whatever the platform payload carries; zero means take the
// payload's season, falling back to the configured current season.
func (s *SyncService) SyncLeague(ctx context.Context, p platform.Name, externalLeagueID string, season int) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.SyncLeague")
	defer span.End()

	if externalLeagueID == "" {
		return league.League{}, fmt.Errorf("%w: external league id is required", ErrInvalidInput)
	}

	adapter, err := s.registry.Adapter(p)
	if err != nil {
		return league.League{}, err
	}

	data, err := adapter.FetchLeague(ctx, externalLeagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("%w: fetch league platform=%s external_league_id=%s: %v",
			ErrExternalPlatform, p, externalLeagueID, err)
	}

	if season == 0 {
		season = data.Season
	}
	if season == 0 {
		season = s.season
	}

	item := league.League{
		Name:             data.Name,
		Platform:         p,
		ExternalLeagueID: data.ExternalLeagueID,
		Season:           season,
	}
	if err := item.Validate(); err != nil {
		return league.League{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// Leagues attach to an existing master eagerly so a re-connected league
	// never waits for the next migration run.
	if master, ok, err := s.masters.GetByExternalID(ctx, p, data.ExternalLeagueID); err != nil {
		return league.League{}, fmt.Errorf("lookup league master: %w", err)
	} else if ok {
		item.LeagueMasterID = master.ID
	}

	var saved league.League
	err = s.withContentionRetry(ctx, "league_upsert", "", 1, func(ctx context.Context) error {
		current, found, err := s.leagues.GetByExternalID(ctx, p, item.ExternalLeagueID, item.Season)
		if err != nil {
			return fmt.Errorf("lookup league: %w", err)
		}

		write := item
		if found {
			write.ID = current.ID
			write.Version = current.Version
			if write.LeagueMasterID == "" {
				write.LeagueMasterID = current.LeagueMasterID
			}
		} else {
			newID, err := s.ids.NewID()
			if err != nil {
				return fmt.Errorf("generate league id: %w", err)
			}
			write.ID = newID
		}

		saved, err = s.leagues.Upsert(ctx, write)
		return err
	})
	if err != nil {
		return league.League{}, err
	}

	if saved.LeagueMasterID != "" {
		if err := s.masters.TouchLastModified(ctx, saved.LeagueMasterID); err != nil {
			s.logger.WarnContext(ctx, "touch league master failed",
				"league_master_id", saved.LeagueMasterID, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "league synced",
		"league_id", saved.ID,
		"platform", p,
		"external_league_id", saved.ExternalLeagueID,
		"season", saved.Season,
	)
	return saved, nil
}

// SyncTeams fetches every roster of the league from its platform and writes
// them as one atomic batch. Stored identity fields that the platform payload
// cannot know (internal ids, master linkage, season) are carried over.
func (s *SyncService) SyncTeams(ctx context.Context, leagueID string) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.SyncTeams")
	defer span.End()

	owner, found, err := s.leagues.GetByID(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("lookup league: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: league %s", ErrNotFound, leagueID)
	}

	adapter, err := s.registry.Adapter(owner.Platform)
	if err != nil {
		return nil, err
	}

	fetched, err := adapter.FetchTeams(ctx, owner.ExternalLeagueID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch teams platform=%s external_league_id=%s: %v",
			ErrExternalPlatform, owner.Platform, owner.ExternalLeagueID, err)
	}

	now := time.Now().UTC()
	var saved []team.Team
	err = s.withContentionRetry(ctx, "team_upsert_batch", owner.ID, len(fetched), func(ctx context.Context) error {
		batch := make([]team.Team, 0, len(fetched))
		for _, item := range fetched {
			item.LeagueID = owner.ID
			item.LeagueMasterID = owner.LeagueMasterID
			item.Season = owner.Season
			fetchedAt := now
			item.LastFetched = &fetchedAt

			current, exists, err := s.teams.GetByExternalID(ctx, owner.ID, item.ExternalTeamID)
			if err != nil {
				return fmt.Errorf("lookup team external_team_id=%s: %w", item.ExternalTeamID, err)
			}
			if exists {
				item.ID = current.ID
				item.Version = current.Version
			} else {
				newID, err := s.ids.NewID()
				if err != nil {
					return fmt.Errorf("generate team id: %w", err)
				}
				item.ID = newID
			}

			if err := item.Validate(); err != nil {
				return fmt.Errorf("%w: team external_team_id=%s: %v", ErrInvalidInput, item.ExternalTeamID, err)
			}
			batch = append(batch, item)
		}

		if err := s.teams.UpsertBatch(ctx, batch); err != nil {
			return err
		}
		saved = batch
		return nil
	})
	if err != nil {
		return nil, err
	}

	if owner.LeagueMasterID != "" {
		if err := s.masters.TouchLastModified(ctx, owner.LeagueMasterID); err != nil {
			s.logger.WarnContext(ctx, "touch league master failed",
				"league_master_id", owner.LeagueMasterID, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "teams synced",
		"league_id", owner.ID,
		"platform", owner.Platform,
		"team_count", len(saved),
	)
	return saved, nil
}

// LinkUserTeam binds a user to their roster in the league, matching by
// external user id or external team id. Duplicate (user, team) rows from
// earlier data-quality issues are repaired in passing: the oldest row wins
// and the rest are deleted.
func (s *SyncService) LinkUserTeam(ctx context.Context, userID, leagueID, externalUserID, externalTeamID string) (userteam.UserTeam, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.LinkUserTeam")
	defer span.End()

	if userID == "" {
		return userteam.UserTeam{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if externalUserID == "" && externalTeamID == "" {
		return userteam.UserTeam{}, fmt.Errorf("%w: external user id or external team id is required", ErrInvalidInput)
	}

	owner, found, err := s.leagues.GetByID(ctx, leagueID)
	if err != nil {
		return userteam.UserTeam{}, fmt.Errorf("lookup league: %w", err)
	}
	if !found {
		return userteam.UserTeam{}, fmt.Errorf("%w: league %s", ErrNotFound, leagueID)
	}

	rosters, err := s.teams.ListByLeague(ctx, owner.ID)
	if err != nil {
		return userteam.UserTeam{}, fmt.Errorf("list teams: %w", err)
	}

	var roster team.Team
	var matched bool
	for _, t := range rosters {
		if t.OwnedBy(externalUserID, externalTeamID) {
			roster = t
			matched = true
			break
		}
	}
	if !matched {
		return userteam.UserTeam{}, fmt.Errorf("%w: no roster in league %s owned by user", ErrNotFound, owner.ID)
	}

	existing, err := s.userTeams.FindByUserAndTeam(ctx, userID, roster.ID)
	if err != nil {
		return userteam.UserTeam{}, fmt.Errorf("lookup user team: %w", err)
	}

	if len(existing) > 0 {
		keep := existing[0]
		for _, dup := range existing[1:] {
			if err := s.userTeams.Delete(ctx, dup.ID); err != nil {
				return userteam.UserTeam{}, fmt.Errorf("delete duplicate user team %s: %w", dup.ID, err)
			}
		}
		if len(existing) > 1 {
			s.logger.WarnContext(ctx, "repaired duplicate user teams",
				"user_id", userID, "team_id", roster.ID, "removed", len(existing)-1)
		}

		keep.LeagueMasterID = roster.LeagueMasterID
		if roster.Season != 0 {
			keep.CurrentSeason = roster.Season
		}
		if err := s.userTeams.Update(ctx, keep); err != nil {
			return userteam.UserTeam{}, fmt.Errorf("update user team: %w", err)
		}
		return keep, nil
	}

	newID, err := s.ids.NewID()
	if err != nil {
		return userteam.UserTeam{}, fmt.Errorf("generate user team id: %w", err)
	}
	item := userteam.UserTeam{
		ID:             newID,
		UserID:         userID,
		TeamID:         roster.ID,
		LeagueMasterID: roster.LeagueMasterID,
		CurrentSeason:  roster.Season,
		CreatedAt:      time.Now().UTC(),
	}
	if err := item.Validate(); err != nil {
		return userteam.UserTeam{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.userTeams.Create(ctx, item)
	if err != nil {
		return userteam.UserTeam{}, fmt.Errorf("create user team: %w", err)
	}
	return created, nil
}

// withContentionRetry replays fn from a fresh read when a concurrent writer
// invalidated the carried versions. Every conflict is recorded; after the
// retry budget the error surfaces as ErrWriteContention.
func (s *SyncService) withContentionRetry(ctx context.Context, operation, leagueID string, batchSize int, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, league.ErrVersionConflict) && !errors.Is(err, team.ErrVersionConflict) {
			return err
		}

		s.monitor.Record(ctx, contention.Event{
			LeagueID:  leagueID,
			Operation: operation,
			Code:      "version_conflict",
			Message:   err.Error(),
			Retries:   attempt,
			BatchSize: batchSize,
		})

		if attempt >= contentionRetries {
			return fmt.Errorf("%w: %s gave up after %d retries: %v", ErrWriteContention, operation, attempt, err)
		}
	}
}
