package fleaflicker

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/rosterlink/rosterlink/internal/domain/platform"
	"github.com/rosterlink/rosterlink/internal/domain/team"
	"github.com/rosterlink/rosterlink/internal/domain/trade"
	"github.com/rosterlink/rosterlink/internal/platform/logging"
	"github.com/rosterlink/rosterlink/internal/platform/resilience"
	"github.com/rosterlink/rosterlink/internal/usecase"
)

const (
	defaultBaseURL = "https://www.fleaflicker.com"
	sportParam     = "NFL"
	maxBodyBytes   = 6 << 20
)

var errFleaflickerTransient = crerr.New("fleaflicker transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Season         int
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the Fleaflicker JSON API. Fleaflicker exposes RPC-style
// endpoints (FetchLeagueStandings, FetchLeagueRosters, FetchTrades) keyed by
// query parameters rather than paths.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	season         int
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

var _ usecase.Adapter = (*Client)(nil)
var _ usecase.TradeProvider = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		season:         cfg.Season,
		maxRetries:     cfg.MaxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) Platform() platform.Name { return platform.Fleaflicker }

func (c *Client) FetchLeague(ctx context.Context, externalLeagueID string) (usecase.LeagueData, error) {
	standings, err := c.fetchStandings(ctx, externalLeagueID)
	if err != nil {
		return usecase.LeagueData{}, err
	}

	name := strings.TrimSpace(standings.League.Name)
	if name == "" {
		name = fmt.Sprintf("Fleaflicker League %s", externalLeagueID)
	}
	return usecase.LeagueData{
		Name:             name,
		ExternalLeagueID: externalLeagueID,
		Season:           c.season,
	}, nil
}

// FetchTeams merges standings (records, points, owners) with rosters
// (player lists) into one canonical team per roster.
func (c *Client) FetchTeams(ctx context.Context, externalLeagueID string) ([]team.Team, error) {
	standings, err := c.fetchStandings(ctx, externalLeagueID)
	if err != nil {
		return nil, err
	}

	var rosters rostersResponse
	if err := c.doJSON(ctx, "/api/FetchLeagueRosters", map[string]string{
		"sport":     sportParam,
		"league_id": externalLeagueID,
	}, &rosters); err != nil {
		return nil, fmt.Errorf("fetch rosters %s: %w", externalLeagueID, err)
	}

	playersByTeam := make(map[int64][]string, len(rosters.Rosters))
	for _, r := range rosters.Rosters {
		if r.Team.ID <= 0 {
			continue
		}
		players := make([]string, 0, len(r.Players))
		for _, slot := range r.Players {
			if slot.ProPlayer.ID > 0 {
				players = append(players, strconv.FormatInt(slot.ProPlayer.ID, 10))
			}
		}
		playersByTeam[r.Team.ID] = players
	}

	var out []team.Team
	for _, division := range standings.Divisions {
		for _, row := range division.Teams {
			if row.ID <= 0 {
				continue
			}

			mapped := team.Team{
				ExternalTeamID: strconv.FormatInt(row.ID, 10),
				Players:        playersByTeam[row.ID],
				Wins:           row.RecordOverall.Wins,
				Losses:         row.RecordOverall.Losses,
				Ties:           row.RecordOverall.Ties,
				PointsFor:      row.PointsFor.Value,
				PointsAgainst:  row.PointsAgainst.Value,
			}
			if len(row.Owners) > 0 {
				mapped.ExternalUserID = strconv.FormatInt(row.Owners[0].ID, 10)
				mapped.Username = strings.TrimSpace(row.Owners[0].DisplayName)
			}
			out = append(out, mapped)
		}
	}
	return out, nil
}

// FetchTrades maps the league's trade log. Fleaflicker only reports what
// each side obtained; the giving side is derived for two-team trades and
// left to the unknown sentinel otherwise.
func (c *Client) FetchTrades(ctx context.Context, externalLeagueID string) ([]trade.Trade, error) {
	var payload tradesResponse
	if err := c.doJSON(ctx, "/api/FetchTrades", map[string]string{
		"sport":     sportParam,
		"league_id": externalLeagueID,
	}, &payload); err != nil {
		return nil, fmt.Errorf("fetch trades %s: %w", externalLeagueID, err)
	}

	out := make([]trade.Trade, 0, len(payload.Trades))
	for _, item := range payload.Trades {
		if item.ID <= 0 {
			continue
		}
		out = append(out, mapTradePayload(externalLeagueID, item))
	}
	return out, nil
}

func mapTradeStatus(raw string) trade.Status {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "TRADE_STATUS_EXECUTED":
		return trade.StatusCompleted
	case "TRADE_STATUS_OPEN":
		return trade.StatusPending
	case "TRADE_STATUS_REJECTED":
		return trade.StatusRejected
	case "TRADE_STATUS_CANCELED":
		return trade.StatusCanceled
	case "TRADE_STATUS_INVALIDATED":
		return trade.StatusInvalidated
	case "TRADE_STATUS_VETOED":
		return trade.StatusVetoed
	default:
		return trade.NormalizeStatus(raw)
	}
}

func mapTradePayload(externalLeagueID string, item tradePayload) trade.Trade {
	status := mapTradeStatus(item.Status)

	participants := make([]trade.Participant, 0, len(item.Teams))
	for _, side := range item.Teams {
		p := trade.Participant{ExternalTeamID: strconv.FormatInt(side.Team.ID, 10)}
		if side.Team.ID <= 0 {
			p.ExternalTeamID = trade.UnknownCounterparty
		}

		for _, slot := range side.PlayersObtained {
			if slot.ProPlayer.ID > 0 {
				p.PlayersReceived = append(p.PlayersReceived, strconv.FormatInt(slot.ProPlayer.ID, 10))
			}
		}
		for _, pick := range side.PicksObtained {
			mapped := trade.Pick{
				Season:        pick.Season,
				Round:         pick.Slot.Round,
				OriginalOwner: trade.UnknownCounterparty,
			}
			if pick.OriginalOwner.ID > 0 {
				mapped.OriginalOwner = strconv.FormatInt(pick.OriginalOwner.ID, 10)
			}
			p.PicksReceived = append(p.PicksReceived, mapped)
		}
		participants = append(participants, p)
	}

	// With exactly two sides, what one obtained the other gave.
	if len(participants) == 2 {
		participants[0].PlayersGiven = append([]string(nil), participants[1].PlayersReceived...)
		participants[1].PlayersGiven = append([]string(nil), participants[0].PlayersReceived...)
		participants[0].PicksGiven = append([]trade.Pick(nil), participants[1].PicksReceived...)
		participants[1].PicksGiven = append([]trade.Pick(nil), participants[0].PicksReceived...)
	}

	mapped := trade.Trade{
		ExternalTradeID:  strconv.FormatInt(item.ID, 10),
		ExternalLeagueID: externalLeagueID,
		Platform:         platform.Fleaflicker,
		Status:           status,
		Participants:     participants,
		ProposedAt:       parseEpochMillis(item.ProposedOn),
	}
	if status == trade.StatusCompleted {
		if executed := parseEpochMillis(item.ApprovedOn); !executed.IsZero() {
			mapped.ExecutedAt = &executed
		}
	}
	return mapped
}

// parseEpochMillis reads Fleaflicker's string-encoded millisecond
// timestamps. Zero time means the field was absent.
func parseEpochMillis(raw string) time.Time {
	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func (c *Client) fetchStandings(ctx context.Context, externalLeagueID string) (standingsResponse, error) {
	if strings.TrimSpace(externalLeagueID) == "" {
		return standingsResponse{}, fmt.Errorf("external league id is required")
	}

	query := map[string]string{
		"sport":     sportParam,
		"league_id": externalLeagueID,
	}
	if c.season > 0 {
		query["season"] = strconv.Itoa(c.season)
	}

	var standings standingsResponse
	if err := c.doJSON(ctx, "/api/FetchLeagueStandings", query, &standings); err != nil {
		return standingsResponse{}, fmt.Errorf("fetch standings %s: %w", externalLeagueID, err)
	}
	return standings, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "fleaflicker circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: fleaflicker is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(path+"?"+values.Encode(), func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && stderrors.Is(reqErr, errFleaflickerTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode fleaflicker payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errFleaflickerTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errFleaflickerTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: fleaflicker status=%d", errFleaflickerTransient, resp.StatusCode)
			default:
				return nil, fmt.Errorf("fleaflicker status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("fleaflicker request failed")
	}
	c.logger.WarnContext(ctx, "fleaflicker request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	body := strings.TrimSpace(string(raw))
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}
