package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rosterlink/rosterlink/internal/domain/contention"
	qb "github.com/rosterlink/rosterlink/internal/platform/querybuilder"
)

type contentionEventTableModel struct {
	ID         string    `db:"id"`
	OccurredAt time.Time `db:"occurred_at"`
	LeagueID   string    `db:"league_id"`
	Operation  string    `db:"operation"`
	Code       string    `db:"code"`
	Message    string    `db:"message"`
	Retries    int       `db:"retries"`
	BatchSize  int       `db:"batch_size"`
}

var contentionEventColumns = []string{
	"id",
	"occurred_at",
	"league_id",
	"operation",
	"code",
	"message",
	"retries",
	"batch_size",
}

// ContentionRepository is the durable side of the contention log. Rows are
// append only.
type ContentionRepository struct {
	db *sqlx.DB
}

func NewContentionRepository(db *sqlx.DB) *ContentionRepository {
	return &ContentionRepository{db: db}
}

func (r *ContentionRepository) Append(ctx context.Context, event contention.Event) error {
	query, args, err := qb.InsertModel("contention_events", contentionEventTableModel{
		ID:         event.ID,
		OccurredAt: event.OccurredAt,
		LeagueID:   event.LeagueID,
		Operation:  event.Operation,
		Code:       event.Code,
		Message:    event.Message,
		Retries:    event.Retries,
		BatchSize:  event.BatchSize,
	}, "")
	if err != nil {
		return fmt.Errorf("build append contention event query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append contention event: %w", err)
	}

	return nil
}

func (r *ContentionRepository) ListRecent(ctx context.Context, limit int) ([]contention.Event, error) {
	builder := qb.Select(contentionEventColumns...).From("contention_events").
		OrderBy("occurred_at DESC", "id DESC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list contention events query: %w", err)
	}

	var rows []contentionEventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list contention events: %w", err)
	}

	out := make([]contention.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, contention.Event{
			ID:         row.ID,
			OccurredAt: row.OccurredAt,
			LeagueID:   row.LeagueID,
			Operation:  row.Operation,
			Code:       row.Code,
			Message:    row.Message,
			Retries:    row.Retries,
			BatchSize:  row.BatchSize,
		})
	}

	return out, nil
}
