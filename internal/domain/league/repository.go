package league

import (
	"context"
	"errors"

	"github.com/rosterlink/rosterlink/internal/domain/platform"
)

// ErrVersionConflict means a concurrent writer bumped the row version
// between the caller's read and its write.
var ErrVersionConflict = errors.New("league version conflict")

// Repository describes league persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]League, error)
	// ListPage returns up to limit leagues ordered by id, starting after
	// cursor (the last id of the previous page). The returned cursor is
	// empty when no more pages exist.
	ListPage(ctx context.Context, cursor string, limit int) ([]League, string, error)
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
	// GetByExternalID resolves one season's league row by its platform
	// identity. Season 0 matches rows that predate the identity migration.
	GetByExternalID(ctx context.Context, p platform.Name, externalLeagueID string, season int) (League, bool, error)
	// Upsert creates the league or updates it in place, keyed by
	// (platform, external league id, season). Version is bumped on update.
	Upsert(ctx context.Context, item League) (League, error)
	// SetLeagueMaster stamps leagueMasterID and season onto every listed
	// league in one batched write and returns the number of rows touched.
	SetLeagueMaster(ctx context.Context, leagueIDs []string, leagueMasterID string, season int) (int64, error)
}
