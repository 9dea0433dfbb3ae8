package httpapi

import (
	"net/http"

	"github.com/rosterlink/rosterlink/internal/usecase"
)

type bulkMigrationRequest struct {
	Season     int    `json:"season" validate:"omitempty,gte=2000,lte=2100"`
	MaxWorkers int    `json:"max_workers" validate:"gte=0,lte=64"`
	CreatedBy  string `json:"created_by"`
	DryRun     bool   `json:"dry_run"`
}

type singleLeagueMigrationRequest struct {
	LeagueID  string `json:"league_id" validate:"required"`
	Season    int    `json:"season" validate:"omitempty,gte=2000,lte=2100"`
	CreatedBy string `json:"created_by"`
}

func (h *Handler) RunBulkMigration(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunBulkMigration")
	defer span.End()

	var req bulkMigrationRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	stats, err := h.migrationService.RunBulkMigration(ctx, usecase.BulkMigrationInput{
		Season:     req.Season,
		MaxWorkers: req.MaxWorkers,
		CreatedBy:  req.CreatedBy,
		DryRun:     req.DryRun,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "bulk migration failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, stats)
}

func (h *Handler) RunSingleLeagueMigration(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSingleLeagueMigration")
	defer span.End()

	var req singleLeagueMigrationRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	stats, err := h.migrationService.RunSingleLeagueMigration(ctx, req.LeagueID, req.Season, req.CreatedBy)
	if err != nil {
		h.logger.WarnContext(ctx, "single league migration failed", "league_id", req.LeagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, stats)
}
