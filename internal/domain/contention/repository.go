package contention

import "context"

// Repository is the durable side of the contention log.
type Repository interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
