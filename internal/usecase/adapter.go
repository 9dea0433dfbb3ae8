package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/rosterlink/rosterlink/internal/domain/platform"
	"github.com/rosterlink/rosterlink/internal/domain/team"
	"github.com/rosterlink/rosterlink/internal/domain/trade"
)

// LeagueData is the canonical league shape an adapter maps a platform
// payload onto before anything is written.
type LeagueData struct {
	Name             string
	ExternalLeagueID string
	Season           int
}

// Adapter fetches league and roster data from one external platform and
// maps it to canonical shapes. Adapters never write to the store; the
// sync service owns upsert semantics.
type Adapter interface {
	Platform() platform.Name
	FetchLeague(ctx context.Context, externalLeagueID string) (LeagueData, error)
	// FetchTeams returns one canonical team per roster in the league.
	// LeagueID and LeagueMasterID are left blank for the caller to fill.
	FetchTeams(ctx context.Context, externalLeagueID string) ([]team.Team, error)
}

// TradeProvider converts one platform's transaction history into canonical
// trades. LeagueID is left blank for the caller to fill; status strings are
// already normalized onto the shared enum.
type TradeProvider interface {
	Platform() platform.Name
	FetchTrades(ctx context.Context, externalLeagueID string) ([]trade.Trade, error)
}

// Registry maps platform names onto their adapter and trade provider
// instances. It is built once at startup and passed to consumers; nothing
// in this package holds process-wide singletons.
type Registry struct {
	adapters  map[platform.Name]Adapter
	providers map[platform.Name]TradeProvider
}

func NewRegistry() *Registry {
	return &Registry{
		adapters:  make(map[platform.Name]Adapter),
		providers: make(map[platform.Name]TradeProvider),
	}
}

func (r *Registry) RegisterAdapter(a Adapter) {
	if a == nil {
		return
	}
	r.adapters[a.Platform()] = a
}

func (r *Registry) RegisterTradeProvider(p TradeProvider) {
	if p == nil {
		return
	}
	r.providers[p.Platform()] = p
}

func (r *Registry) Adapter(p platform.Name) (Adapter, error) {
	a, ok := r.adapters[p]
	if !ok {
		return nil, fmt.Errorf("%w: no adapter registered for platform %q", ErrDependencyUnavailable, p)
	}
	return a, nil
}

func (r *Registry) TradeProvider(p platform.Name) (TradeProvider, error) {
	tp, ok := r.providers[p]
	if !ok {
		return nil, fmt.Errorf("%w: no trade provider registered for platform %q", ErrDependencyUnavailable, p)
	}
	return tp, nil
}

// Platforms lists registered adapter platforms in stable order.
func (r *Registry) Platforms() []platform.Name {
	out := make([]platform.Name, 0, len(r.adapters))
	for name := range r.adapters {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
