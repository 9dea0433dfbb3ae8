package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/rosterlink/rosterlink/internal/domain/trade"
)

type TradeRepository struct {
	mu    sync.RWMutex
	items map[string]trade.Trade
}

func NewTradeRepository(trades []trade.Trade) *TradeRepository {
	items := make(map[string]trade.Trade, len(trades))
	for _, t := range trades {
		items[tradeKey(t.LeagueID, t.ExternalTradeID)] = cloneTrade(t)
	}

	return &TradeRepository{items: items}
}

func (r *TradeRepository) ListByLeague(_ context.Context, leagueID string) ([]trade.Trade, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []trade.Trade
	for _, t := range r.items {
		if t.LeagueID == leagueID {
			out = append(out, cloneTrade(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProposedAt.Equal(out[j].ProposedAt) {
			return out[i].ExternalTradeID < out[j].ExternalTradeID
		}
		return out[i].ProposedAt.After(out[j].ProposedAt)
	})

	return out, nil
}

func (r *TradeRepository) GetByExternalID(_ context.Context, leagueID, externalTradeID string) (trade.Trade, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[tradeKey(leagueID, externalTradeID)]
	if !ok {
		return trade.Trade{}, false, nil
	}

	return cloneTrade(t), true, nil
}

func (r *TradeRepository) UpsertBatch(_ context.Context, items []trade.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		key := tradeKey(item.LeagueID, item.ExternalTradeID)
		if existing, ok := r.items[key]; ok {
			item.ID = existing.ID
		}
		r.items[key] = cloneTrade(item)
	}

	return nil
}

func tradeKey(leagueID, externalTradeID string) string {
	return leagueID + "::" + externalTradeID
}

func cloneTrade(t trade.Trade) trade.Trade {
	copied := t
	copied.Participants = make([]trade.Participant, len(t.Participants))
	for i, p := range t.Participants {
		cp := p
		cp.PlayersGiven = append([]string(nil), p.PlayersGiven...)
		cp.PlayersReceived = append([]string(nil), p.PlayersReceived...)
		cp.PicksGiven = append([]trade.Pick(nil), p.PicksGiven...)
		cp.PicksReceived = append([]trade.Pick(nil), p.PicksReceived...)
		copied.Participants[i] = cp
	}
	if t.ExecutedAt != nil {
		executed := *t.ExecutedAt
		copied.ExecutedAt = &executed
	}
	return copied
}
