package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rosterlink/rosterlink/internal/usecase"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))
	limit := defaultPageLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(ctx, w, usecase.ErrInvalidInput)
			return
		}
		limit = parsed
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	leagues, next, err := h.leagueService.ListLeagues(ctx, cursor, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list leagues failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueDTO, 0, len(leagues))
	for _, l := range leagues {
		items = append(items, leagueToDTO(l))
	}

	writeSuccess(ctx, w, http.StatusOK, leaguePageDTO{Items: items, NextCursor: next})
}

type leaguePageDTO struct {
	Items      []leagueDTO `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeague")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	item, err := h.leagueService.GetLeague(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get league failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(item))
}

func (h *Handler) ListLeagueMasters(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagueMasters")
	defer span.End()

	masters, err := h.leagueService.ListMasters(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list league masters failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueMasterDTO, 0, len(masters))
	for _, m := range masters {
		items = append(items, leagueMasterToDTO(m))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListTeamsByLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeamsByLeague")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	teams, err := h.leagueService.ListTeams(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamViewDTO, 0, len(teams))
	for _, t := range teams {
		items = append(items, teamViewToDTO(t))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListUserTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListUserTeams")
	defer span.End()

	userID := r.PathValue("userID")
	items, err := h.leagueService.ListUserTeams(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "list user teams failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]userTeamDTO, 0, len(items))
	for _, item := range items {
		out = append(out, userTeamToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}
