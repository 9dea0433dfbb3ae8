package httpapi

import "net/http"

type syncTradesRequest struct {
	LeagueID string `json:"league_id" validate:"required"`
	// ExternalLeagueID overrides the identity stored on the league.
	ExternalLeagueID string `json:"external_league_id"`
}

func (h *Handler) SyncTrades(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SyncTrades")
	defer span.End()

	var req syncTradesRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	trades, err := h.tradeService.SyncTrades(ctx, req.LeagueID, req.ExternalLeagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "sync trades failed", "league_id", req.LeagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"trades_synced": len(trades)})
}

func (h *Handler) ListTradesByLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTradesByLeague")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	trades, err := h.tradeService.ListTrades(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list trades failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]tradeDTO, 0, len(trades))
	for _, t := range trades {
		items = append(items, tradeToDTO(t))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
