package leaguemaster

import (
	"context"

	"github.com/rosterlink/rosterlink/internal/domain/platform"
)

// Repository describes league master persistence needs from use cases.
// Uniqueness per (platform, external league id) is enforced by
// lookup-before-create on the caller side plus a store-level unique key.
type Repository interface {
	List(ctx context.Context) ([]LeagueMaster, error)
	GetByID(ctx context.Context, id string) (LeagueMaster, bool, error)
	GetByExternalID(ctx context.Context, p platform.Name, externalLeagueID string) (LeagueMaster, bool, error)
	Create(ctx context.Context, item LeagueMaster) (LeagueMaster, error)
	TouchLastModified(ctx context.Context, id string) error
}
