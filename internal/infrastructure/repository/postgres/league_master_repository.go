package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rosterlink/rosterlink/internal/domain/leaguemaster"
	"github.com/rosterlink/rosterlink/internal/domain/platform"
	qb "github.com/rosterlink/rosterlink/internal/platform/querybuilder"
)

type LeagueMasterRepository struct {
	db *sqlx.DB
}

func NewLeagueMasterRepository(db *sqlx.DB) *LeagueMasterRepository {
	return &LeagueMasterRepository{db: db}
}

func (r *LeagueMasterRepository) List(ctx context.Context) ([]leaguemaster.LeagueMaster, error) {
	query, args, err := qb.Select(leagueMasterSelectColumns...).From("league_masters").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list league masters query: %w", err)
	}

	var rows []leagueMasterTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list league masters: %w", err)
	}

	out := make([]leaguemaster.LeagueMaster, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *LeagueMasterRepository) GetByID(ctx context.Context, id string) (leaguemaster.LeagueMaster, bool, error) {
	query, args, err := qb.Select(leagueMasterSelectColumns...).From("league_masters").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return leaguemaster.LeagueMaster{}, false, fmt.Errorf("build get league master query: %w", err)
	}

	var row leagueMasterTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return leaguemaster.LeagueMaster{}, false, nil
		}
		return leaguemaster.LeagueMaster{}, false, fmt.Errorf("get league master: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *LeagueMasterRepository) GetByExternalID(ctx context.Context, p platform.Name, externalLeagueID string) (leaguemaster.LeagueMaster, bool, error) {
	query, args, err := qb.Select(leagueMasterSelectColumns...).From("league_masters").
		Where(
			qb.Eq("platform", p.String()),
			qb.Eq("external_league_id", externalLeagueID),
		).
		ToSQL()
	if err != nil {
		return leaguemaster.LeagueMaster{}, false, fmt.Errorf("build get league master by external id query: %w", err)
	}

	var row leagueMasterTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return leaguemaster.LeagueMaster{}, false, nil
		}
		return leaguemaster.LeagueMaster{}, false, fmt.Errorf("get league master by external id: %w", err)
	}

	return row.toDomain(), true, nil
}

// Create converges racing creators on one row: the unique key on
// (platform, external_league_id) turns the second insert into a no-op and
// the stored row is returned either way.
func (r *LeagueMasterRepository) Create(ctx context.Context, item leaguemaster.LeagueMaster) (leaguemaster.LeagueMaster, error) {
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.LastModified.IsZero() {
		item.LastModified = now
	}

	query, args, err := qb.InsertInto("league_masters").
		Columns(leagueMasterSelectColumns...).
		Values(item.ID, item.Name, item.Platform.String(), item.ExternalLeagueID,
			item.CreatedBy, item.CreatedAt, item.LastModified).
		Suffix("ON CONFLICT (platform, external_league_id) DO NOTHING").
		ToSQL()
	if err != nil {
		return leaguemaster.LeagueMaster{}, fmt.Errorf("build create league master query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return leaguemaster.LeagueMaster{}, fmt.Errorf("create league master: %w", err)
	}

	stored, ok, err := r.GetByExternalID(ctx, item.Platform, item.ExternalLeagueID)
	if err != nil {
		return leaguemaster.LeagueMaster{}, err
	}
	if !ok {
		return leaguemaster.LeagueMaster{}, fmt.Errorf("league master %s/%s missing after create", item.Platform, item.ExternalLeagueID)
	}

	return stored, nil
}

func (r *LeagueMasterRepository) TouchLastModified(ctx context.Context, id string) error {
	query, args, err := qb.Update("league_masters").
		Set("last_modified", time.Now().UTC()).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build touch league master query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("touch league master: %w", err)
	}

	return nil
}
