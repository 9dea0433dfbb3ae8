package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rosterlink/rosterlink/internal/domain/team"
)

type TeamRepository struct {
	mu    sync.RWMutex
	items map[string]team.Team
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	items := make(map[string]team.Team, len(teams))
	for _, t := range teams {
		items[t.ID] = cloneTeam(t)
	}

	return &TeamRepository{items: items}
}

func (r *TeamRepository) List(_ context.Context) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.items))
	for _, t := range r.items {
		out = append(out, cloneTeam(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *TeamRepository) ListByLeague(_ context.Context, leagueID string) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []team.Team
	for _, t := range r.items {
		if t.LeagueID == leagueID {
			out = append(out, cloneTeam(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *TeamRepository) GetByID(_ context.Context, teamID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[teamID]
	if !ok {
		return team.Team{}, false, nil
	}

	return cloneTeam(t), true, nil
}

func (r *TeamRepository) GetByExternalID(_ context.Context, leagueID, externalTeamID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.items {
		if t.LeagueID == leagueID && t.ExternalTeamID == externalTeamID {
			return cloneTeam(t), true, nil
		}
	}

	return team.Team{}, false, nil
}

func (r *TeamRepository) UpsertBatch(_ context.Context, items []team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Version checks run for the whole batch before anything is applied so
	// a conflict leaves the store untouched.
	type pending struct {
		id   string
		item team.Team
	}
	writes := make([]pending, 0, len(items))

	for _, item := range items {
		existing, ok := r.findByExternalLocked(item.LeagueID, item.ExternalTeamID)
		if !ok {
			created := item
			created.Version = 1
			writes = append(writes, pending{id: created.ID, item: created})
			continue
		}

		if item.Version != 0 && item.Version != existing.Version {
			return fmt.Errorf("%w: team %s has version %d, write carried %d",
				team.ErrVersionConflict, existing.ID, existing.Version, item.Version)
		}

		updated := item
		updated.ID = existing.ID
		if updated.LeagueMasterID == "" {
			updated.LeagueMasterID = existing.LeagueMasterID
		}
		if updated.Season == 0 {
			updated.Season = existing.Season
		}
		updated.Version = existing.Version + 1
		writes = append(writes, pending{id: updated.ID, item: updated})
	}

	for _, w := range writes {
		r.items[w.id] = cloneTeam(w.item)
	}

	return nil
}

func (r *TeamRepository) SetLeagueMaster(_ context.Context, leagueID, leagueMasterID string, season int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var touched int64
	for id, t := range r.items {
		if t.LeagueID != leagueID {
			continue
		}

		t.LeagueMasterID = leagueMasterID
		if t.Season == 0 {
			t.Season = season
		}
		t.Version++
		r.items[id] = t
		touched++
	}

	return touched, nil
}

func (r *TeamRepository) TouchLastFetched(_ context.Context, teamIDs []string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at = at.UTC()
	for _, id := range teamIDs {
		t, ok := r.items[id]
		if !ok {
			continue
		}
		fetched := at
		t.LastFetched = &fetched
		r.items[id] = t
	}

	return nil
}

func (r *TeamRepository) findByExternalLocked(leagueID, externalTeamID string) (team.Team, bool) {
	for _, t := range r.items {
		if t.LeagueID == leagueID && t.ExternalTeamID == externalTeamID {
			return t, true
		}
	}
	return team.Team{}, false
}

func cloneTeam(t team.Team) team.Team {
	copied := t
	copied.Players = append([]string(nil), t.Players...)
	if t.LastFetched != nil {
		fetched := *t.LastFetched
		copied.LastFetched = &fetched
	}
	return copied
}
