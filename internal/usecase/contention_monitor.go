package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rosterlink/rosterlink/internal/domain/contention"
	idgen "github.com/rosterlink/rosterlink/internal/platform/id"
	"github.com/rosterlink/rosterlink/internal/platform/logging"
)

const defaultRingCapacity = 256

// ContentionMonitor records write-conflict events for operational
// visibility. It keeps a bounded in-memory ring and mirrors events into a
// durable log. Recording never blocks or fails the write that conflicted,
// and nothing here changes retry or commit behavior.
type ContentionMonitor struct {
	mu       sync.Mutex
	ring     []contention.Event
	next     int
	size     int
	total    int
	byLeague map[string]int
	byOp     map[string]int

	repo   contention.Repository
	ids    idgen.Generator
	logger *logging.Logger
}

// ContentionSummary is an aggregate view over everything recorded since
// startup.
type ContentionSummary struct {
	Total       int            `json:"total"`
	ByLeague    map[string]int `json:"by_league"`
	ByOperation map[string]int `json:"by_operation"`
}

func NewContentionMonitor(capacity int, repo contention.Repository, ids idgen.Generator, logger *logging.Logger) *ContentionMonitor {
	if capacity <= 0 {
		capacity = defaultRingCapacity
	}
	if ids == nil {
		ids = idgen.NewRandomGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &ContentionMonitor{
		ring:     make([]contention.Event, capacity),
		byLeague: make(map[string]int),
		byOp:     make(map[string]int),
		repo:     repo,
		ids:      ids,
		logger:   logger,
	}
}

// Record stores one contention event. The durable append runs detached so
// the conflicted write path is never blocked by the log itself.
func (m *ContentionMonitor) Record(ctx context.Context, event contention.Event) {
	if m == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if event.ID == "" {
		if generated, err := m.ids.NewID(); err == nil {
			event.ID = generated
		}
	}

	m.mu.Lock()
	m.ring[m.next] = event
	m.next = (m.next + 1) % len(m.ring)
	if m.size < len(m.ring) {
		m.size++
	}
	m.total++
	m.byLeague[event.LeagueID]++
	m.byOp[event.Operation]++
	m.mu.Unlock()

	m.logger.WarnContext(ctx, "write contention recorded",
		"league_id", event.LeagueID,
		"operation", event.Operation,
		"code", event.Code,
		"retries", event.Retries,
		"batch_size", event.BatchSize,
	)

	if m.repo == nil {
		return
	}
	go func() {
		appendCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.repo.Append(appendCtx, event); err != nil {
			m.logger.Warn("append contention event to durable log failed", "error", err)
		}
	}()
}

// Recent returns up to limit events, newest first.
func (m *ContentionMonitor) Recent(limit int) []contention.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 || limit > m.size {
		limit = m.size
	}

	out := make([]contention.Event, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (m.next - 1 - i + len(m.ring)*2) % len(m.ring)
		out = append(out, m.ring[idx])
	}
	return out
}

func (m *ContentionMonitor) Summary() ContentionSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	byLeague := make(map[string]int, len(m.byLeague))
	for k, v := range m.byLeague {
		byLeague[k] = v
	}
	byOp := make(map[string]int, len(m.byOp))
	for k, v := range m.byOp {
		byOp[k] = v
	}

	return ContentionSummary{
		Total:       m.total,
		ByLeague:    byLeague,
		ByOperation: byOp,
	}
}
