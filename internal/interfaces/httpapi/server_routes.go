package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues", handler.ListLeagues)
	mux.HandleFunc("GET /v1/leagues/{leagueID}", handler.GetLeague)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/teams", handler.ListTeamsByLeague)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/trades", handler.ListTradesByLeague)
	mux.HandleFunc("GET /v1/league-masters", handler.ListLeagueMasters)
	mux.HandleFunc("GET /v1/users/{userID}/teams", handler.ListUserTeams)
	mux.HandleFunc("GET /v1/contention/summary", handler.GetContentionSummary)
	mux.HandleFunc("GET /v1/contention/events", handler.ListContentionEvents)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	guard := func(h http.HandlerFunc) http.Handler {
		return RequireInternalJobToken(internalJobToken, h)
	}

	mux.Handle("POST /v1/internal/jobs/sync/league", guard(handler.SyncLeague))
	mux.Handle("POST /v1/internal/jobs/sync/teams", guard(handler.SyncTeams))
	mux.Handle("POST /v1/internal/jobs/sync/trades", guard(handler.SyncTrades))
	mux.Handle("POST /v1/internal/jobs/link-user-team", guard(handler.LinkUserTeam))
	mux.Handle("POST /v1/internal/jobs/migrations/bulk", guard(handler.RunBulkMigration))
	mux.Handle("POST /v1/internal/jobs/migrations/league", guard(handler.RunSingleLeagueMigration))
	mux.Handle("POST /v1/internal/jobs/refresh/start", guard(handler.StartRefresh))
	mux.Handle("POST /v1/internal/jobs/refresh/stop", guard(handler.StopRefresh))
	mux.Handle("GET /v1/internal/jobs/refresh/status", guard(handler.RefreshStatus))
}
