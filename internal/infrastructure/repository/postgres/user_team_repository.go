package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rosterlink/rosterlink/internal/domain/userteam"
	qb "github.com/rosterlink/rosterlink/internal/platform/querybuilder"
)

type UserTeamRepository struct {
	db *sqlx.DB
}

func NewUserTeamRepository(db *sqlx.DB) *UserTeamRepository {
	return &UserTeamRepository{db: db}
}

func (r *UserTeamRepository) List(ctx context.Context) ([]userteam.UserTeam, error) {
	query, args, err := qb.Select(userTeamSelectColumns...).From("user_teams").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list user teams query: %w", err)
	}

	var rows []userTeamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list user teams: %w", err)
	}

	return userTeamsToDomain(rows), nil
}

func (r *UserTeamRepository) ListByUser(ctx context.Context, userID string) ([]userteam.UserTeam, error) {
	query, args, err := qb.Select(userTeamSelectColumns...).From("user_teams").
		Where(qb.Eq("user_id", userID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list user teams by user query: %w", err)
	}

	var rows []userTeamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list user teams by user: %w", err)
	}

	return userTeamsToDomain(rows), nil
}

// FindByUserAndTeam returns rows oldest first so callers repairing
// duplicates can keep the original binding.
func (r *UserTeamRepository) FindByUserAndTeam(ctx context.Context, userID, teamID string) ([]userteam.UserTeam, error) {
	query, args, err := qb.Select(userTeamSelectColumns...).From("user_teams").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("team_id", teamID),
		).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build find user team query: %w", err)
	}

	var rows []userTeamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("find user team: %w", err)
	}

	return userTeamsToDomain(rows), nil
}

func (r *UserTeamRepository) Create(ctx context.Context, item userteam.UserTeam) (userteam.UserTeam, error) {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	query, args, err := qb.InsertInto("user_teams").
		Columns(userTeamSelectColumns...).
		Values(item.ID, item.UserID, item.TeamID, item.LeagueMasterID,
			item.CurrentSeason, item.CreatedAt).
		ToSQL()
	if err != nil {
		return userteam.UserTeam{}, fmt.Errorf("build create user team query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return userteam.UserTeam{}, fmt.Errorf("create user team: %w", err)
	}

	return item, nil
}

func (r *UserTeamRepository) Update(ctx context.Context, item userteam.UserTeam) error {
	query, args, err := qb.Update("user_teams").
		Set("user_id", item.UserID).
		Set("team_id", item.TeamID).
		Set("league_master_id", item.LeagueMasterID).
		Set("current_season", item.CurrentSeason).
		Where(qb.Eq("id", item.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update user team query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update user team: %w", err)
	}

	return nil
}

func (r *UserTeamRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM user_teams WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete user team: %w", err)
	}

	return nil
}

func (r *UserTeamRepository) SetLeagueMasterByTeams(ctx context.Context, teamIDs []string, leagueMasterID string, season int) (int64, error) {
	var touched int64
	for _, chunk := range chunkStrings(teamIDs, inChunkSize) {
		query, args, err := qb.Update("user_teams").
			Set("league_master_id", leagueMasterID).
			SetExpr("current_season", "CASE WHEN ? <> 0 THEN ? ELSE current_season END", season, season).
			Where(qb.In("team_id", stringSliceToAny(chunk))).
			ToSQL()
		if err != nil {
			return touched, fmt.Errorf("build set user team league master query: %w", err)
		}

		result, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return touched, fmt.Errorf("set user team league master: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return touched, fmt.Errorf("count set user team league master rows: %w", err)
		}
		touched += rows
	}

	return touched, nil
}

func userTeamsToDomain(rows []userTeamTableModel) []userteam.UserTeam {
	out := make([]userteam.UserTeam, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}
