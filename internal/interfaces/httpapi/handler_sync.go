package httpapi

import (
	"net/http"

	"github.com/rosterlink/rosterlink/internal/domain/platform"
)

type syncLeagueRequest struct {
	Platform         string `json:"platform" validate:"required"`
	ExternalLeagueID string `json:"external_league_id" validate:"required"`
	Season           int    `json:"season" validate:"gte=0"`
}

type syncTeamsRequest struct {
	LeagueID string `json:"league_id" validate:"required"`
}

type linkUserTeamRequest struct {
	UserID         string `json:"user_id" validate:"required"`
	LeagueID       string `json:"league_id" validate:"required"`
	ExternalUserID string `json:"external_user_id"`
	ExternalTeamID string `json:"external_team_id"`
}

func (h *Handler) SyncLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SyncLeague")
	defer span.End()

	var req syncLeagueRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.syncService.SyncLeague(ctx, platform.Normalize(req.Platform), req.ExternalLeagueID, req.Season)
	if err != nil {
		h.logger.WarnContext(ctx, "sync league failed",
			"platform", req.Platform, "external_league_id", req.ExternalLeagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(item))
}

func (h *Handler) SyncTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SyncTeams")
	defer span.End()

	var req syncTeamsRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	teams, err := h.syncService.SyncTeams(ctx, req.LeagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "sync teams failed", "league_id", req.LeagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"teams_synced": len(teams)})
}

func (h *Handler) LinkUserTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LinkUserTeam")
	defer span.End()

	var req linkUserTeamRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.syncService.LinkUserTeam(ctx, req.UserID, req.LeagueID, req.ExternalUserID, req.ExternalTeamID)
	if err != nil {
		h.logger.WarnContext(ctx, "link user team failed",
			"user_id", req.UserID, "league_id", req.LeagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, userTeamToDTO(item))
}
