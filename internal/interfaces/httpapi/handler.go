package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/rosterlink/rosterlink/internal/domain/league"
	"github.com/rosterlink/rosterlink/internal/domain/leaguemaster"
	"github.com/rosterlink/rosterlink/internal/domain/trade"
	"github.com/rosterlink/rosterlink/internal/domain/userteam"
	"github.com/rosterlink/rosterlink/internal/platform/logging"
	"github.com/rosterlink/rosterlink/internal/usecase"
)

type Handler struct {
	leagueService    *usecase.LeagueService
	syncService      *usecase.SyncService
	tradeService     *usecase.TradeService
	migrationService *usecase.MigrationService
	refreshService   *usecase.RefreshService
	monitor          *usecase.ContentionMonitor
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	leagueService *usecase.LeagueService,
	syncService *usecase.SyncService,
	tradeService *usecase.TradeService,
	migrationService *usecase.MigrationService,
	refreshService *usecase.RefreshService,
	monitor *usecase.ContentionMonitor,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		leagueService:    leagueService,
		syncService:      syncService,
		tradeService:     tradeService,
		migrationService: migrationService,
		refreshService:   refreshService,
		monitor:          monitor,
		logger:           logger,
		validator:        validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, payload any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(payload); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type leagueDTO struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Platform         string `json:"platform"`
	ExternalLeagueID string `json:"external_league_id"`
	LeagueMasterID   string `json:"league_master_id,omitempty"`
	Season           int    `json:"season"`
	Version          int64  `json:"version"`
	LastModifiedUTC  string `json:"last_modified_utc"`
}

type leagueMasterDTO struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Platform         string `json:"platform"`
	ExternalLeagueID string `json:"external_league_id"`
	CreatedBy        string `json:"created_by,omitempty"`
	CreatedAtUTC     string `json:"created_at_utc"`
	LastModifiedUTC  string `json:"last_modified_utc"`
}

type teamViewDTO struct {
	ID             string   `json:"id"`
	LeagueID       string   `json:"league_id"`
	LeagueMasterID string   `json:"league_master_id,omitempty"`
	Season         int      `json:"season"`
	ExternalTeamID string   `json:"external_team_id"`
	ExternalUserID string   `json:"external_user_id,omitempty"`
	Username       string   `json:"username,omitempty"`
	Players        []string `json:"players"`
	Wins           int      `json:"wins"`
	Losses         int      `json:"losses"`
	Ties           int      `json:"ties"`
	PointsFor      float64  `json:"points_for"`
	PointsAgainst  float64  `json:"points_against"`
	LastFetchedUTC string   `json:"last_fetched_utc,omitempty"`
	NeedsUpdate    bool     `json:"needs_update"`
	NeedsMigrate   bool     `json:"needs_migrate"`
}

type userTeamDTO struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	TeamID         string `json:"team_id"`
	LeagueMasterID string `json:"league_master_id,omitempty"`
	CurrentSeason  int    `json:"current_season"`
	CreatedAtUTC   string `json:"created_at_utc"`
}

type tradeDTO struct {
	ID               string           `json:"id"`
	ExternalTradeID  string           `json:"external_trade_id"`
	LeagueID         string           `json:"league_id"`
	ExternalLeagueID string           `json:"external_league_id"`
	Platform         string           `json:"platform"`
	Status           string           `json:"status"`
	Participants     []participantDTO `json:"participants"`
	ProposedAtUTC    string           `json:"proposed_at_utc"`
	ExecutedAtUTC    string           `json:"executed_at_utc,omitempty"`
	LastSyncedUTC    string           `json:"last_synced_utc"`
}

type participantDTO struct {
	ExternalTeamID  string    `json:"external_team_id"`
	PlayersGiven    []string  `json:"players_given,omitempty"`
	PlayersReceived []string  `json:"players_received,omitempty"`
	PicksGiven      []pickDTO `json:"picks_given,omitempty"`
	PicksReceived   []pickDTO `json:"picks_received,omitempty"`
}

type pickDTO struct {
	Season        int    `json:"season"`
	Round         int    `json:"round"`
	OriginalOwner string `json:"original_owner"`
}

func leagueToDTO(v league.League) leagueDTO {
	return leagueDTO{
		ID:               v.ID,
		Name:             v.Name,
		Platform:         v.Platform.String(),
		ExternalLeagueID: v.ExternalLeagueID,
		LeagueMasterID:   v.LeagueMasterID,
		Season:           v.Season,
		Version:          v.Version,
		LastModifiedUTC:  v.LastModified.UTC().Format(time.RFC3339),
	}
}

func leagueMasterToDTO(v leaguemaster.LeagueMaster) leagueMasterDTO {
	return leagueMasterDTO{
		ID:               v.ID,
		Name:             v.Name,
		Platform:         v.Platform.String(),
		ExternalLeagueID: v.ExternalLeagueID,
		CreatedBy:        v.CreatedBy,
		CreatedAtUTC:     v.CreatedAt.UTC().Format(time.RFC3339),
		LastModifiedUTC:  v.LastModified.UTC().Format(time.RFC3339),
	}
}

func teamViewToDTO(v usecase.TeamView) teamViewDTO {
	out := teamViewDTO{
		ID:             v.ID,
		LeagueID:       v.LeagueID,
		LeagueMasterID: v.LeagueMasterID,
		Season:         v.Season,
		ExternalTeamID: v.ExternalTeamID,
		ExternalUserID: v.ExternalUserID,
		Username:       v.Username,
		Players:        append([]string(nil), v.Players...),
		Wins:           v.Wins,
		Losses:         v.Losses,
		Ties:           v.Ties,
		PointsFor:      v.PointsFor,
		PointsAgainst:  v.PointsAgainst,
		NeedsUpdate:    v.NeedsUpdate,
		NeedsMigrate:   v.NeedsMigrate,
	}
	if v.LastFetched != nil {
		out.LastFetchedUTC = v.LastFetched.UTC().Format(time.RFC3339)
	}
	return out
}

func userTeamToDTO(v userteam.UserTeam) userTeamDTO {
	return userTeamDTO{
		ID:             v.ID,
		UserID:         v.UserID,
		TeamID:         v.TeamID,
		LeagueMasterID: v.LeagueMasterID,
		CurrentSeason:  v.CurrentSeason,
		CreatedAtUTC:   v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func tradeToDTO(v trade.Trade) tradeDTO {
	participants := make([]participantDTO, 0, len(v.Participants))
	for _, p := range v.Participants {
		participants = append(participants, participantDTO{
			ExternalTeamID:  p.ExternalTeamID,
			PlayersGiven:    p.PlayersGiven,
			PlayersReceived: p.PlayersReceived,
			PicksGiven:      picksToDTO(p.PicksGiven),
			PicksReceived:   picksToDTO(p.PicksReceived),
		})
	}

	out := tradeDTO{
		ID:               v.ID,
		ExternalTradeID:  v.ExternalTradeID,
		LeagueID:         v.LeagueID,
		ExternalLeagueID: v.ExternalLeagueID,
		Platform:         v.Platform.String(),
		Status:           string(v.Status),
		Participants:     participants,
		ProposedAtUTC:    v.ProposedAt.UTC().Format(time.RFC3339),
		LastSyncedUTC:    v.LastSynced.UTC().Format(time.RFC3339),
	}
	if v.ExecutedAt != nil {
		out.ExecutedAtUTC = v.ExecutedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func picksToDTO(picks []trade.Pick) []pickDTO {
	if len(picks) == 0 {
		return nil
	}
	out := make([]pickDTO, 0, len(picks))
	for _, p := range picks {
		out = append(out, pickDTO{Season: p.Season, Round: p.Round, OriginalOwner: p.OriginalOwner})
	}
	return out
}
