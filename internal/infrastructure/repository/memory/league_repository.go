package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rosterlink/rosterlink/internal/domain/league"
	"github.com/rosterlink/rosterlink/internal/domain/platform"
)

type LeagueRepository struct {
	mu    sync.RWMutex
	items map[string]league.League
}

func NewLeagueRepository(leagues []league.League) *LeagueRepository {
	items := make(map[string]league.League, len(leagues))
	for _, l := range leagues {
		items[l.ID] = l
	}

	return &LeagueRepository{items: items}
}

func (r *LeagueRepository) List(_ context.Context) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0, len(r.items))
	for _, l := range r.items {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *LeagueRepository) ListPage(ctx context.Context, cursor string, limit int) ([]league.League, string, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, "", err
	}
	if limit <= 0 {
		limit = len(all)
	}

	start := 0
	if cursor != "" {
		start = sort.Search(len(all), func(i int) bool { return all[i].ID > cursor })
	}

	end := start + limit
	if end >= len(all) {
		return all[start:], "", nil
	}

	page := all[start:end]
	return page, page[len(page)-1].ID, nil
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.items[leagueID]
	if !ok {
		return league.League{}, false, nil
	}

	return l, true, nil
}

func (r *LeagueRepository) GetByExternalID(_ context.Context, p platform.Name, externalLeagueID string, season int) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.items {
		if l.Platform == p && l.ExternalLeagueID == externalLeagueID && l.Season == season {
			return l, true, nil
		}
	}

	return league.League{}, false, nil
}

func (r *LeagueRepository) Upsert(_ context.Context, item league.League) (league.League, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.items {
		if existing.Platform != item.Platform || existing.ExternalLeagueID != item.ExternalLeagueID || existing.Season != item.Season {
			continue
		}
		if item.Version != 0 && item.Version != existing.Version {
			return league.League{}, fmt.Errorf("%w: league %s has version %d, write carried %d",
				league.ErrVersionConflict, id, existing.Version, item.Version)
		}

		updated := item
		updated.ID = existing.ID
		if updated.LeagueMasterID == "" {
			updated.LeagueMasterID = existing.LeagueMasterID
		}
		updated.Version = existing.Version + 1
		updated.LastModified = time.Now().UTC()
		r.items[id] = updated
		return updated, nil
	}

	created := item
	created.Version = 1
	created.LastModified = time.Now().UTC()
	r.items[created.ID] = created
	return created, nil
}

func (r *LeagueRepository) SetLeagueMaster(_ context.Context, leagueIDs []string, leagueMasterID string, season int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var touched int64
	for _, id := range leagueIDs {
		l, ok := r.items[id]
		if !ok {
			continue
		}
		if l.LeagueMasterID != "" && l.LeagueMasterID != leagueMasterID {
			continue
		}

		l.LeagueMasterID = leagueMasterID
		if l.Season == 0 {
			l.Season = season
		}
		l.Version++
		l.LastModified = time.Now().UTC()
		r.items[id] = l
		touched++
	}

	return touched, nil
}
