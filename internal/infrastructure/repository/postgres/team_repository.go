package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rosterlink/rosterlink/internal/domain/team"
	qb "github.com/rosterlink/rosterlink/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	query, args, err := qb.Select(teamSelectColumns...).From("teams").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list teams query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	return teamsToDomain(rows), nil
}

func (r *TeamRepository) ListByLeague(ctx context.Context, leagueID string) ([]team.Team, error) {
	query, args, err := qb.Select(teamSelectColumns...).From("teams").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list teams by league query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list teams by league: %w", err)
	}

	return teamsToDomain(rows), nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	query, args, err := qb.Select(teamSelectColumns...).From("teams").
		Where(qb.Eq("id", teamID)).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build get team query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *TeamRepository) GetByExternalID(ctx context.Context, leagueID, externalTeamID string) (team.Team, bool, error) {
	query, args, err := qb.Select(teamSelectColumns...).From("teams").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("external_team_id", externalTeamID),
		).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build get team by external id query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team by external id: %w", err)
	}

	return row.toDomain(), true, nil
}

// UpsertBatch locks every targeted row first and checks all carried
// versions before writing anything, so one stale roster fails the whole
// batch and the transaction rolls back untouched.
func (r *TeamRepository) UpsertBatch(ctx context.Context, items []team.Team) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for team batch: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const lockQuery = `
SELECT id, league_id, external_team_id, league_master_id, season, version
FROM teams
WHERE league_id = $1
  AND external_team_id = $2
FOR UPDATE`

	type lockedRow struct {
		ID             string `db:"id"`
		LeagueID       string `db:"league_id"`
		ExternalTeamID string `db:"external_team_id"`
		LeagueMasterID string `db:"league_master_id"`
		Season         int    `db:"season"`
		Version        int64  `db:"version"`
	}

	writes := make([]team.Team, 0, len(items))
	for _, item := range items {
		var existing lockedRow
		err := tx.GetContext(ctx, &existing, lockQuery, item.LeagueID, item.ExternalTeamID)
		switch {
		case isNotFound(err):
			created := item
			created.Version = 1
			writes = append(writes, created)
			continue
		case err != nil:
			return fmt.Errorf("lock team for batch: %w", err)
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
		writes = append(writes, updated)
	}

	const upsertSuffix = `
ON CONFLICT (league_id, external_team_id)
DO UPDATE SET
    league_master_id = EXCLUDED.league_master_id,
    season = EXCLUDED.season,
    external_user_id = EXCLUDED.external_user_id,
    username = EXCLUDED.username,
    opponent_external_id = EXCLUDED.opponent_external_id,
    players = EXCLUDED.players,
    wins = EXCLUDED.wins,
    losses = EXCLUDED.losses,
    ties = EXCLUDED.ties,
    points_for = EXCLUDED.points_for,
    points_against = EXCLUDED.points_against,
    version = EXCLUDED.version,
    last_fetched = EXCLUDED.last_fetched`

	for _, item := range writes {
		query, args, err := qb.InsertInto("teams").
			Columns(teamSelectColumns...).
			Values(item.ID, item.LeagueID, item.LeagueMasterID, item.Season,
				item.ExternalTeamID, item.ExternalUserID, item.Username, item.OpponentExternalID,
				pq.StringArray(item.Players), item.Wins, item.Losses, item.Ties,
				item.PointsFor, item.PointsAgainst, item.Version, item.LastFetched).
			Suffix(upsertSuffix).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build upsert team query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert team %s: %w", item.ExternalTeamID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit team batch: %w", err)
	}

	return nil
}

func (r *TeamRepository) SetLeagueMaster(ctx context.Context, leagueID, leagueMasterID string, season int) (int64, error) {
	query, args, err := qb.Update("teams").
		Set("league_master_id", leagueMasterID).
		SetExpr("season", "CASE WHEN season = 0 THEN ? ELSE season END", season).
		SetExpr("version", "version + 1").
		Where(qb.Eq("league_id", leagueID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build set team league master query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("set team league master: %w", err)
	}

	touched, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count set team league master rows: %w", err)
	}

	return touched, nil
}

func (r *TeamRepository) TouchLastFetched(ctx context.Context, teamIDs []string, at time.Time) error {
	at = at.UTC()
	for _, chunk := range chunkStrings(teamIDs, inChunkSize) {
		query, args, err := qb.Update("teams").
			Set("last_fetched", at).
			Where(qb.In("id", stringSliceToAny(chunk))).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build touch teams query: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("touch teams: %w", err)
		}
	}

	return nil
}

func teamsToDomain(rows []teamTableModel) []team.Team {
	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}
