package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rosterlink/rosterlink/internal/domain/league"
	"github.com/rosterlink/rosterlink/internal/domain/team"
	"github.com/rosterlink/rosterlink/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

const (
	refreshStateIdle     = "idle"
	refreshStateRunning  = "running"
	refreshStateStopping = "stopping"

	defaultRefreshConcurrency = 3
	defaultRefreshPace        = 500 * time.Millisecond
	refreshPageSize           = 100
)

type RefreshConfig struct {
	// Concurrency bounds how many leagues refresh at once.
	Concurrency int
	// Pace is the delay between league submissions, keeping the fan-out
	// polite toward platform rate limits.
	Pace time.Duration
}

type RefreshStatus struct {
	State            string     `json:"state"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
	LeaguesScanned   int        `json:"leagues_scanned"`
	LeaguesRefreshed int        `json:"leagues_refreshed"`
	TeamsRefreshed   int        `json:"teams_refreshed"`
	Errors           []string   `json:"errors,omitempty"`
}

// RefreshService runs the staleness sweep as one supervised background job:
// at most one run at a time, observable through Status, stoppable through
// Stop. The run owns its lifecycle end to end; callers get a snapshot, never
// a handle into the loop.
type RefreshService struct {
	leagues league.Repository
	teams   team.Repository
	sync    *SyncService
	policy  StalenessPolicy
	cfg     RefreshConfig
	logger  *logging.Logger
	clock   func() time.Time

	mu      sync.Mutex
	state   string
	status  RefreshStatus
	cancel  context.CancelFunc
	done    chan struct{}
	stopped atomic.Bool
}

func NewRefreshService(
	leagues league.Repository,
	teams team.Repository,
	syncService *SyncService,
	policy StalenessPolicy,
	cfg RefreshConfig,
	logger *logging.Logger,
) *RefreshService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultRefreshConcurrency
	}
	if cfg.Pace < 0 {
		cfg.Pace = defaultRefreshPace
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &RefreshService{
		leagues: leagues,
		teams:   teams,
		sync:    syncService,
		policy:  policy,
		cfg:     cfg,
		logger:  logger,
		clock:   func() time.Time { return time.Now().UTC() },
		state:   refreshStateIdle,
	}
}

// Start launches one sweep. A second Start while a sweep is live returns
// ErrRefreshRunning.
func (s *RefreshService) Start(ctx context.Context) (RefreshStatus, error) {
	s.mu.Lock()
	if s.state != refreshStateIdle {
		status := s.status
		s.mu.Unlock()
		return status, ErrRefreshRunning
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	started := s.clock()
	s.state = refreshStateRunning
	s.cancel = cancel
	s.done = make(chan struct{})
	s.stopped.Store(false)
	s.status = RefreshStatus{
		State:     refreshStateRunning,
		StartedAt: &started,
	}
	done := s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()
		s.run(runCtx)
	}()

	return s.snapshot(), nil
}

// Stop asks the live sweep to wind down and waits for it.
func (s *RefreshService) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.state == refreshStateIdle {
		s.mu.Unlock()
		return nil
	}
	s.state = refreshStateStopping
	s.status.State = refreshStateStopping
	s.stopped.Store(true)
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *RefreshService) Status() RefreshStatus {
	return s.snapshot()
}

func (s *RefreshService) snapshot() RefreshStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := s.status
	status.Errors = append([]string(nil), s.status.Errors...)
	return status
}

func (s *RefreshService) run(ctx context.Context) {
	targets, scanned, err := s.collectStaleLeagues(ctx)

	s.mu.Lock()
	s.status.LeaguesScanned = scanned
	if err != nil {
		s.status.Errors = append(s.status.Errors, err.Error())
	}
	s.mu.Unlock()

	var leaguesRefreshed atomic.Int64
	var teamsRefreshed atomic.Int64
	var errMu sync.Mutex
	var runErrors []string

	if err == nil && len(targets) > 0 {
		workers := pool.New().WithMaxGoroutines(s.cfg.Concurrency)
	submitLoop:
		for _, target := range targets {
			select {
			case <-ctx.Done():
				break submitLoop
			default:
			}

			target := target
			workers.Go(func() {
				if ctx.Err() != nil {
					return
				}
				synced, err := s.sync.SyncTeams(ctx, target.ID)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					errMu.Lock()
					runErrors = append(runErrors, fmt.Sprintf("league %s: %v", target.ID, err))
					errMu.Unlock()
					return
				}
				leaguesRefreshed.Add(1)
				teamsRefreshed.Add(int64(len(synced)))
			})

			if s.cfg.Pace > 0 {
				select {
				case <-ctx.Done():
					break submitLoop
				case <-time.After(s.cfg.Pace):
				}
			}
		}
		workers.Wait()
	}

	finished := s.clock()
	sort.Strings(runErrors)

	s.mu.Lock()
	s.status.LeaguesRefreshed = int(leaguesRefreshed.Load())
	s.status.TeamsRefreshed = int(teamsRefreshed.Load())
	s.status.Errors = append(s.status.Errors, runErrors...)
	s.status.FinishedAt = &finished
	s.status.State = refreshStateIdle
	s.state = refreshStateIdle
	s.cancel = nil
	s.mu.Unlock()

	s.logger.Info("refresh sweep finished",
		"leagues_scanned", scanned,
		"leagues_refreshed", leaguesRefreshed.Load(),
		"teams_refreshed", teamsRefreshed.Load(),
		"errors", len(runErrors),
		"stopped", s.stopped.Load(),
	)
}

// collectStaleLeagues pages through the store and keeps current-season
// leagues holding at least one roster the policy marks stale.
func (s *RefreshService) collectStaleLeagues(ctx context.Context) ([]league.League, int, error) {
	var targets []league.League
	scanned := 0
	cursor := ""
	now := s.clock()

	for {
		page, next, err := s.leagues.ListPage(ctx, cursor, refreshPageSize)
		if err != nil {
			return nil, scanned, fmt.Errorf("list leagues: %w", err)
		}

		for _, l := range page {
			scanned++
			if l.Season != s.policy.CurrentSeason {
				continue
			}

			rosters, err := s.teams.ListByLeague(ctx, l.ID)
			if err != nil {
				return nil, scanned, fmt.Errorf("list teams league=%s: %w", l.ID, err)
			}

			if len(rosters) == 0 {
				targets = append(targets, l)
				continue
			}
			for _, t := range rosters {
				if s.policy.ComputeNeedsUpdate(t, now) {
					targets = append(targets, l)
					break
				}
			}
		}

		if next == "" {
			break
		}
		cursor = next
	}

	return targets, scanned, nil
}
