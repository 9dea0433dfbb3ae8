package cache

import (
	"context"
	"strconv"

	"github.com/rosterlink/rosterlink/internal/domain/league"
	"github.com/rosterlink/rosterlink/internal/domain/leaguemaster"
	"github.com/rosterlink/rosterlink/internal/domain/platform"
	basecache "github.com/rosterlink/rosterlink/internal/platform/cache"
)

// LeagueRepository caches the lookup-heavy league reads. Writes pass
// through and drop every league key, since master stamping can touch many
// rows at once.
type LeagueRepository struct {
	next  league.Repository
	cache *basecache.Store
}

func NewLeagueRepository(next league.Repository, cache *basecache.Store) *LeagueRepository {
	return &LeagueRepository{next: next, cache: cache}
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	v, err := r.cache.GetOrLoad(ctx, "league:list", func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]league.League(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]league.League)
	return append([]league.League(nil), items...), nil
}

// ListPage is not cached: cursors make the key space unbounded.
func (r *LeagueRepository) ListPage(ctx context.Context, cursor string, limit int) ([]league.League, string, error) {
	return r.next.ListPage(ctx, cursor, limit)
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	key := "league:id:" + leagueID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		return cachedLeague{value: item, exists: exists}, nil
	})
	if err != nil {
		return league.League{}, false, err
	}

	cached, _ := v.(cachedLeague)
	return cached.value, cached.exists, nil
}

func (r *LeagueRepository) GetByExternalID(ctx context.Context, p platform.Name, externalLeagueID string, season int) (league.League, bool, error) {
	key := leagueExternalKey(p, externalLeagueID, season)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByExternalID(ctx, p, externalLeagueID, season)
		if err != nil {
			return nil, err
		}
		return cachedLeague{value: item, exists: exists}, nil
	})
	if err != nil {
		return league.League{}, false, err
	}

	cached, _ := v.(cachedLeague)
	return cached.value, cached.exists, nil
}

func (r *LeagueRepository) Upsert(ctx context.Context, item league.League) (league.League, error) {
	saved, err := r.next.Upsert(ctx, item)
	if err != nil {
		return league.League{}, err
	}

	r.cache.DeletePrefix(ctx, "league:")
	return saved, nil
}

func (r *LeagueRepository) SetLeagueMaster(ctx context.Context, leagueIDs []string, leagueMasterID string, season int) (int64, error) {
	touched, err := r.next.SetLeagueMaster(ctx, leagueIDs, leagueMasterID, season)
	if err != nil {
		return touched, err
	}

	r.cache.DeletePrefix(ctx, "league:")
	return touched, nil
}

type cachedLeague struct {
	value  league.League
	exists bool
}

func leagueExternalKey(p platform.Name, externalLeagueID string, season int) string {
	return "league:ext:" + league.GroupKey(p, externalLeagueID) + ":" + strconv.Itoa(season)
}

// LeagueMasterRepository caches master lookups; masters change rarely and
// are read on every league sync.
type LeagueMasterRepository struct {
	next  leaguemaster.Repository
	cache *basecache.Store
}

func NewLeagueMasterRepository(next leaguemaster.Repository, cache *basecache.Store) *LeagueMasterRepository {
	return &LeagueMasterRepository{next: next, cache: cache}
}

func (r *LeagueMasterRepository) List(ctx context.Context) ([]leaguemaster.LeagueMaster, error) {
	v, err := r.cache.GetOrLoad(ctx, "league-master:list", func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]leaguemaster.LeagueMaster(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]leaguemaster.LeagueMaster)
	return append([]leaguemaster.LeagueMaster(nil), items...), nil
}

func (r *LeagueMasterRepository) GetByID(ctx context.Context, id string) (leaguemaster.LeagueMaster, bool, error) {
	key := "league-master:id:" + id
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return cachedLeagueMaster{value: item, exists: exists}, nil
	})
	if err != nil {
		return leaguemaster.LeagueMaster{}, false, err
	}

	cached, _ := v.(cachedLeagueMaster)
	return cached.value, cached.exists, nil
}

func (r *LeagueMasterRepository) GetByExternalID(ctx context.Context, p platform.Name, externalLeagueID string) (leaguemaster.LeagueMaster, bool, error) {
	key := "league-master:ext:" + league.GroupKey(p, externalLeagueID)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByExternalID(ctx, p, externalLeagueID)
		if err != nil {
			return nil, err
		}
		return cachedLeagueMaster{value: item, exists: exists}, nil
	})
	if err != nil {
		return leaguemaster.LeagueMaster{}, false, err
	}

	cached, _ := v.(cachedLeagueMaster)
	return cached.value, cached.exists, nil
}

func (r *LeagueMasterRepository) Create(ctx context.Context, item leaguemaster.LeagueMaster) (leaguemaster.LeagueMaster, error) {
	saved, err := r.next.Create(ctx, item)
	if err != nil {
		return leaguemaster.LeagueMaster{}, err
	}

	r.cache.DeletePrefix(ctx, "league-master:")
	return saved, nil
}

func (r *LeagueMasterRepository) TouchLastModified(ctx context.Context, id string) error {
	if err := r.next.TouchLastModified(ctx, id); err != nil {
		return err
	}

	r.cache.Delete(ctx, "league-master:id:"+id)
	r.cache.Delete(ctx, "league-master:list")
	return nil
}

type cachedLeagueMaster struct {
	value  leaguemaster.LeagueMaster
	exists bool
}
