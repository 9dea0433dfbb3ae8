package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rosterlink/rosterlink/internal/domain/league"
	"github.com/rosterlink/rosterlink/internal/domain/leaguemaster"
	"github.com/rosterlink/rosterlink/internal/domain/team"
	"github.com/rosterlink/rosterlink/internal/domain/userteam"
	"github.com/rosterlink/rosterlink/internal/platform/logging"
)

// LeagueService serves the read paths: league pages, annotated rosters and
// a user's team history across seasons.
type LeagueService struct {
	leagues   league.Repository
	masters   leaguemaster.Repository
	teams     team.Repository
	userTeams userteam.Repository
	policy    StalenessPolicy
	logger    *logging.Logger
	clock     func() time.Time
}

// TeamView is a roster with its freshness flags resolved against the
// staleness policy at read time.
type TeamView struct {
	team.Team
	NeedsUpdate  bool `json:"needs_update"`
	NeedsMigrate bool `json:"needs_migrate"`
}

func NewLeagueService(
	leagues league.Repository,
	masters leaguemaster.Repository,
	teams team.Repository,
	userTeams userteam.Repository,
	policy StalenessPolicy,
	logger *logging.Logger,
) *LeagueService {
	if logger == nil {
		logger = logging.Default()
	}

	return &LeagueService{
		leagues:   leagues,
		masters:   masters,
		teams:     teams,
		userTeams: userTeams,
		policy:    policy,
		logger:    logger,
		clock:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *LeagueService) ListLeagues(ctx context.Context, cursor string, limit int) ([]league.League, string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.ListLeagues")
	defer span.End()

	items, next, err := s.leagues.ListPage(ctx, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("list leagues: %w", err)
	}
	return items, next, nil
}

func (s *LeagueService) GetLeague(ctx context.Context, leagueID string) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.GetLeague")
	defer span.End()

	item, found, err := s.leagues.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("lookup league: %w", err)
	}
	if !found {
		return league.League{}, fmt.Errorf("%w: league %s", ErrNotFound, leagueID)
	}
	return item, nil
}

func (s *LeagueService) ListMasters(ctx context.Context) ([]leaguemaster.LeagueMaster, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.ListMasters")
	defer span.End()

	items, err := s.masters.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list league masters: %w", err)
	}
	return items, nil
}

// ListTeams returns the league's rosters annotated with freshness flags.
// Rows past the touch threshold get lastFetched bumped in a detached write
// so repeated reads within the window stay cheap; the read result never
// waits on it.
func (s *LeagueService) ListTeams(ctx context.Context, leagueID string) ([]TeamView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.ListTeams")
	defer span.End()

	if _, found, err := s.leagues.GetByID(ctx, leagueID); err != nil {
		return nil, fmt.Errorf("lookup league: %w", err)
	} else if !found {
		return nil, fmt.Errorf("%w: league %s", ErrNotFound, leagueID)
	}

	rosters, err := s.teams.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	now := s.clock()
	views := make([]TeamView, 0, len(rosters))
	var touchIDs []string
	for _, t := range rosters {
		views = append(views, TeamView{
			Team:         t,
			NeedsUpdate:  s.policy.ComputeNeedsUpdate(t, now),
			NeedsMigrate: ComputeNeedsMigrate(t),
		})
		if s.policy.NeedsTouch(t, now) {
			touchIDs = append(touchIDs, t.ID)
		}
	}

	if len(touchIDs) > 0 {
		go func() {
			touchCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.teams.TouchLastFetched(touchCtx, touchIDs, now); err != nil {
				s.logger.Warn("touch last fetched failed",
					"league_id", leagueID, "team_count", len(touchIDs), "error", err)
			}
		}()
	}

	return views, nil
}

// ListUserTeams returns every roster binding of one user, oldest first.
func (s *LeagueService) ListUserTeams(ctx context.Context, userID string) ([]userteam.UserTeam, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.ListUserTeams")
	defer span.End()

	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	items, err := s.userTeams.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user teams: %w", err)
	}
	return items, nil
}
