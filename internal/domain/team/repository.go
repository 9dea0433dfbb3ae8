package team

import (
	"context"
	"errors"
	"time"
)

// ErrVersionConflict means a concurrent writer bumped a row version
// between the caller's read and its write. Batches fail whole.
var ErrVersionConflict = errors.New("team version conflict")

// Repository describes team persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Team, error)
	ListByLeague(ctx context.Context, leagueID string) ([]Team, error)
	GetByID(ctx context.Context, teamID string) (Team, bool, error)
	GetByExternalID(ctx context.Context, leagueID, externalTeamID string) (Team, bool, error)
	// UpsertBatch writes every team in one atomic batch, keyed by
	// (external team id, league id). Versions bump on update.
	UpsertBatch(ctx context.Context, items []Team) error
	// SetLeagueMaster stamps leagueMasterID and season onto every team of
	// the league and returns the number of rows touched.
	SetLeagueMaster(ctx context.Context, leagueID, leagueMasterID string, season int) (int64, error)
	// TouchLastFetched bumps lastFetched on the given teams in one batched
	// write. Used from the read path; callers fire and forget.
	TouchLastFetched(ctx context.Context, teamIDs []string, at time.Time) error
}
