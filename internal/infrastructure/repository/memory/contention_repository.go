package memory

import (
	"context"
	"sync"

	"github.com/rosterlink/rosterlink/internal/domain/contention"
)

type ContentionRepository struct {
	mu     sync.RWMutex
	events []contention.Event
}

func NewContentionRepository() *ContentionRepository {
	return &ContentionRepository{}
}

func (r *ContentionRepository) Append(_ context.Context, event contention.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
	return nil
}

func (r *ContentionRepository) ListRecent(_ context.Context, limit int) ([]contention.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.events) {
		limit = len(r.events)
	}

	out := make([]contention.Event, 0, limit)
	for i := len(r.events) - 1; i >= len(r.events)-limit; i-- {
		out = append(out, r.events[i])
	}

	return out, nil
}
