package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rosterlink/rosterlink/internal/domain/userteam"
)

type UserTeamRepository struct {
	mu    sync.RWMutex
	items map[string]userteam.UserTeam
}

func NewUserTeamRepository(userTeams []userteam.UserTeam) *UserTeamRepository {
	items := make(map[string]userteam.UserTeam, len(userTeams))
	for _, ut := range userTeams {
		items[ut.ID] = ut
	}

	return &UserTeamRepository{items: items}
}

func (r *UserTeamRepository) List(_ context.Context) ([]userteam.UserTeam, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]userteam.UserTeam, 0, len(r.items))
	for _, ut := range r.items {
		out = append(out, ut)
	}
	sortUserTeams(out)

	return out, nil
}

func (r *UserTeamRepository) ListByUser(_ context.Context, userID string) ([]userteam.UserTeam, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []userteam.UserTeam
	for _, ut := range r.items {
		if ut.UserID == userID {
			out = append(out, ut)
		}
	}
	sortUserTeams(out)

	return out, nil
}

func (r *UserTeamRepository) FindByUserAndTeam(_ context.Context, userID, teamID string) ([]userteam.UserTeam, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []userteam.UserTeam
	for _, ut := range r.items {
		if ut.UserID == userID && ut.TeamID == teamID {
			out = append(out, ut)
		}
	}
	sortUserTeams(out)

	return out, nil
}

func (r *UserTeamRepository) Create(_ context.Context, item userteam.UserTeam) (userteam.UserTeam, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	r.items[item.ID] = item

	return item, nil
}

func (r *UserTeamRepository) Update(_ context.Context, item userteam.UserTeam) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; !ok {
		return nil
	}
	r.items[item.ID] = item

	return nil
}

func (r *UserTeamRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, id)
	return nil
}

func (r *UserTeamRepository) SetLeagueMasterByTeams(_ context.Context, teamIDs []string, leagueMasterID string, season int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := make(map[string]struct{}, len(teamIDs))
	for _, id := range teamIDs {
		wanted[id] = struct{}{}
	}

	var touched int64
	for id, ut := range r.items {
		if _, ok := wanted[ut.TeamID]; !ok {
			continue
		}

		ut.LeagueMasterID = leagueMasterID
		if season != 0 {
			ut.CurrentSeason = season
		}
		r.items[id] = ut
		touched++
	}

	return touched, nil
}

func sortUserTeams(items []userteam.UserTeam) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
