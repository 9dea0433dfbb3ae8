package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rosterlink/rosterlink/internal/domain/contention"
	"github.com/rosterlink/rosterlink/internal/usecase"
)

const defaultContentionLimit = 50

type contentionEventDTO struct {
	ID            string `json:"id"`
	OccurredAtUTC string `json:"occurred_at_utc"`
	LeagueID      string `json:"league_id"`
	Operation     string `json:"operation"`
	Code          string `json:"code"`
	Message       string `json:"message"`
	Retries       int    `json:"retries"`
	BatchSize     int    `json:"batch_size"`
}

func (h *Handler) GetContentionSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetContentionSummary")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.monitor.Summary())
}

func (h *Handler) ListContentionEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListContentionEvents")
	defer span.End()

	limit := defaultContentionLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(ctx, w, usecase.ErrInvalidInput)
			return
		}
		limit = parsed
	}

	events := h.monitor.Recent(limit)
	items := make([]contentionEventDTO, 0, len(events))
	for _, e := range events {
		items = append(items, contentionEventToDTO(e))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func contentionEventToDTO(e contention.Event) contentionEventDTO {
	return contentionEventDTO{
		ID:            e.ID,
		OccurredAtUTC: e.OccurredAt.UTC().Format(time.RFC3339),
		LeagueID:      e.LeagueID,
		Operation:     e.Operation,
		Code:          e.Code,
		Message:       e.Message,
		Retries:       e.Retries,
		BatchSize:     e.BatchSize,
	}
}
