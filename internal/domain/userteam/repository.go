package userteam

import "context"

// Repository describes user-team persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]UserTeam, error)
	ListByUser(ctx context.Context, userID string) ([]UserTeam, error)
	// FindByUserAndTeam returns every row bound to (userID, teamID).
	// More than one row means duplicates that need repair.
	FindByUserAndTeam(ctx context.Context, userID, teamID string) ([]UserTeam, error)
	Create(ctx context.Context, item UserTeam) (UserTeam, error)
	Update(ctx context.Context, item UserTeam) error
	Delete(ctx context.Context, id string) error
	// SetLeagueMasterByTeams stamps leagueMasterID and currentSeason onto
	// every row whose team id is in teamIDs, batched, returning rows touched.
	SetLeagueMasterByTeams(ctx context.Context, teamIDs []string, leagueMasterID string, season int) (int64, error)
}
