package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rosterlink/rosterlink/internal/domain/leaguemaster"
	"github.com/rosterlink/rosterlink/internal/domain/platform"
)

type LeagueMasterRepository struct {
	mu    sync.RWMutex
	items map[string]leaguemaster.LeagueMaster
}

func NewLeagueMasterRepository(masters []leaguemaster.LeagueMaster) *LeagueMasterRepository {
	items := make(map[string]leaguemaster.LeagueMaster, len(masters))
	for _, m := range masters {
		items[m.ID] = m
	}

	return &LeagueMasterRepository{items: items}
}

func (r *LeagueMasterRepository) List(_ context.Context) ([]leaguemaster.LeagueMaster, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]leaguemaster.LeagueMaster, 0, len(r.items))
	for _, m := range r.items {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *LeagueMasterRepository) GetByID(_ context.Context, id string) (leaguemaster.LeagueMaster, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.items[id]
	if !ok {
		return leaguemaster.LeagueMaster{}, false, nil
	}

	return m, true, nil
}

func (r *LeagueMasterRepository) GetByExternalID(_ context.Context, p platform.Name, externalLeagueID string) (leaguemaster.LeagueMaster, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.items {
		if m.Platform == p && m.ExternalLeagueID == externalLeagueID {
			return m, true, nil
		}
	}

	return leaguemaster.LeagueMaster{}, false, nil
}

func (r *LeagueMasterRepository) Create(_ context.Context, item leaguemaster.LeagueMaster) (leaguemaster.LeagueMaster, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// The unique key on (platform, external league id) makes concurrent
	// creates converge on one master instead of erroring.
	for _, existing := range r.items {
		if existing.Platform == item.Platform && existing.ExternalLeagueID == item.ExternalLeagueID {
			return existing, nil
		}
	}

	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.LastModified = now
	r.items[item.ID] = item

	return item, nil
}

func (r *LeagueMasterRepository) TouchLastModified(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.items[id]
	if !ok {
		return nil
	}

	m.LastModified = time.Now().UTC()
	r.items[id] = m
	return nil
}
