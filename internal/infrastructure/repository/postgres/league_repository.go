package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rosterlink/rosterlink/internal/domain/league"
	"github.com/rosterlink/rosterlink/internal/domain/platform"
	qb "github.com/rosterlink/rosterlink/internal/platform/querybuilder"
)

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	query, args, err := qb.Select(leagueSelectColumns...).From("leagues").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list leagues query: %w", err)
	}

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	return leaguesToDomain(rows), nil
}

func (r *LeagueRepository) ListPage(ctx context.Context, cursor string, limit int) ([]league.League, string, error) {
	builder := qb.Select(leagueSelectColumns...).From("leagues").OrderBy("id")
	if cursor != "" {
		builder = builder.Where(qb.Gt("id", cursor))
	}
	if limit > 0 {
		// One extra row tells us whether a next page exists.
		builder = builder.Limit(limit + 1)
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, "", fmt.Errorf("build list leagues page query: %w", err)
	}

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, "", fmt.Errorf("list leagues page: %w", err)
	}

	next := ""
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
		next = rows[len(rows)-1].ID
	}

	return leaguesToDomain(rows), next, nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	query, args, err := qb.Select(leagueSelectColumns...).From("leagues").
		Where(qb.Eq("id", leagueID)).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *LeagueRepository) GetByExternalID(ctx context.Context, p platform.Name, externalLeagueID string, season int) (league.League, bool, error) {
	query, args, err := qb.Select(leagueSelectColumns...).From("leagues").
		Where(
			qb.Eq("platform", p.String()),
			qb.Eq("external_league_id", externalLeagueID),
			qb.Eq("season", season),
		).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league by external id query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league by external id: %w", err)
	}

	return row.toDomain(), true, nil
}

// Upsert keys on (platform, external_league_id, season) and enforces the
// carried version against the stored one inside a single transaction, so
// two racing writers cannot both win.
func (r *LeagueRepository) Upsert(ctx context.Context, item league.League) (league.League, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return league.League{}, fmt.Errorf("begin tx for league upsert: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const lockQuery = `
SELECT id, name, platform, external_league_id, league_master_id, season, version, last_modified
FROM leagues
WHERE platform = $1
  AND external_league_id = $2
  AND season = $3
FOR UPDATE`

	saved := item
	saved.LastModified = time.Now().UTC()

	var existing leagueTableModel
	err = tx.GetContext(ctx, &existing, lockQuery, item.Platform.String(), item.ExternalLeagueID, item.Season)
	switch {
	case isNotFound(err):
		saved.Version = 1
		query, args, buildErr := qb.InsertInto("leagues").
			Columns(leagueSelectColumns...).
			Values(saved.ID, saved.Name, saved.Platform.String(), saved.ExternalLeagueID,
				saved.LeagueMasterID, saved.Season, saved.Version, saved.LastModified).
			ToSQL()
		if buildErr != nil {
			return league.League{}, fmt.Errorf("build insert league query: %w", buildErr)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return league.League{}, fmt.Errorf("insert league: %w", err)
		}
	case err != nil:
		return league.League{}, fmt.Errorf("lock league for upsert: %w", err)
	default:
		if item.Version != 0 && item.Version != existing.Version {
			return league.League{}, fmt.Errorf("%w: league %s has version %d, write carried %d",
				league.ErrVersionConflict, existing.ID, existing.Version, item.Version)
		}

		saved.ID = existing.ID
		if saved.LeagueMasterID == "" {
			saved.LeagueMasterID = existing.LeagueMasterID
		}
		saved.Version = existing.Version + 1

		query, args, buildErr := qb.Update("leagues").
			Set("name", saved.Name).
			Set("league_master_id", saved.LeagueMasterID).
			Set("version", saved.Version).
			Set("last_modified", saved.LastModified).
			Where(qb.Eq("id", saved.ID)).
			ToSQL()
		if buildErr != nil {
			return league.League{}, fmt.Errorf("build update league query: %w", buildErr)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return league.League{}, fmt.Errorf("update league: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return league.League{}, fmt.Errorf("commit league upsert: %w", err)
	}

	return saved, nil
}

// SetLeagueMaster leaves leagues already attached to a different master
// untouched and stamps the season only onto rows that predate seasons.
func (r *LeagueRepository) SetLeagueMaster(ctx context.Context, leagueIDs []string, leagueMasterID string, season int) (int64, error) {
	var touched int64
	for _, chunk := range chunkStrings(leagueIDs, inChunkSize) {
		query, args, err := qb.Update("leagues").
			Set("league_master_id", leagueMasterID).
			SetExpr("season", "CASE WHEN season = 0 THEN ? ELSE season END", season).
			SetExpr("version", "version + 1").
			Set("last_modified", time.Now().UTC()).
			Where(
				qb.In("id", stringSliceToAny(chunk)),
				qb.Expr("(league_master_id = '' OR league_master_id = ?)", leagueMasterID),
			).
			ToSQL()
		if err != nil {
			return touched, fmt.Errorf("build set league master query: %w", err)
		}

		result, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return touched, fmt.Errorf("set league master: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return touched, fmt.Errorf("count set league master rows: %w", err)
		}
		touched += rows
	}

	return touched, nil
}

func leaguesToDomain(rows []leagueTableModel) []league.League {
	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}
