package sleeper

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
	defaultBaseURL  = "https://api.sleeper.app"
	defaultMaxWeeks = 18
	maxBodyBytes    = 6 << 20
)

var errSleeperTransient = crerr.New("sleeper transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	MaxWeeks       int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the public Sleeper API and maps its payloads onto the
// canonical league, team and trade shapes. Sleeper is read-only and
// unauthenticated; rate limiting shows up as 429s, which retry with a
// linear backoff.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	maxWeeks       int
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
	maxWeeks := cfg.MaxWeeks
	if maxWeeks <= 0 {
		maxWeeks = defaultMaxWeeks
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     cfg.MaxRetries,
		maxWeeks:       maxWeeks,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) Platform() platform.Name { return platform.Sleeper }

func (c *Client) FetchLeague(ctx context.Context, externalLeagueID string) (usecase.LeagueData, error) {
	if strings.TrimSpace(externalLeagueID) == "" {
		return usecase.LeagueData{}, fmt.Errorf("external league id is required")
	}

	var payload leaguePayload
	if err := c.doJSON(ctx, "/v1/league/"+url.PathEscape(externalLeagueID), &payload); err != nil {
		return usecase.LeagueData{}, fmt.Errorf("fetch league %s: %w", externalLeagueID, err)
	}

	season, _ := strconv.Atoi(payload.Season)
	return usecase.LeagueData{
		Name:             strings.TrimSpace(payload.Name),
		ExternalLeagueID: payload.LeagueID,
		Season:           season,
	}, nil
}

// FetchTeams joins the league's rosters with its users so every canonical
// team carries both the roster identity and the owning user's name.
func (c *Client) FetchTeams(ctx context.Context, externalLeagueID string) ([]team.Team, error) {
	var rosters []rosterPayload
	if err := c.doJSON(ctx, "/v1/league/"+url.PathEscape(externalLeagueID)+"/rosters", &rosters); err != nil {
		return nil, fmt.Errorf("fetch rosters %s: %w", externalLeagueID, err)
	}

	var users []userPayload
	if err := c.doJSON(ctx, "/v1/league/"+url.PathEscape(externalLeagueID)+"/users", &users); err != nil {
		return nil, fmt.Errorf("fetch users %s: %w", externalLeagueID, err)
	}

	nameByUserID := make(map[string]string, len(users))
	for _, u := range users {
		nameByUserID[u.UserID] = strings.TrimSpace(u.DisplayName)
	}

	out := make([]team.Team, 0, len(rosters))
	for _, r := range rosters {
		if r.RosterID <= 0 {
			continue
		}
		out = append(out, team.Team{
			ExternalTeamID: strconv.Itoa(r.RosterID),
			ExternalUserID: r.OwnerID,
			Username:       nameByUserID[r.OwnerID],
			Players:        append([]string(nil), r.Players...),
			Wins:           r.Settings.Wins,
			Losses:         r.Settings.Losses,
			Ties:           r.Settings.Ties,
			PointsFor:      combinePoints(r.Settings.PointsFor, r.Settings.PointsForDecimal),
			PointsAgainst:  combinePoints(r.Settings.PointsAgainst, r.Settings.PointsAgainstDecimal),
		})
	}
	return out, nil
}

// FetchTrades walks the league's weekly transaction logs and keeps the
// trade entries. A week that fails mid-season is reported, not skipped:
// partial trade history would look like trades disappearing.
func (c *Client) FetchTrades(ctx context.Context, externalLeagueID string) ([]trade.Trade, error) {
	var out []trade.Trade
	for week := 1; week <= c.maxWeeks; week++ {
		var transactions []transactionPayload
		path := fmt.Sprintf("/v1/league/%s/transactions/%d", url.PathEscape(externalLeagueID), week)
		if err := c.doJSON(ctx, path, &transactions); err != nil {
			return nil, fmt.Errorf("fetch transactions %s week=%d: %w", externalLeagueID, week, err)
		}

		for _, tx := range transactions {
			if tx.Type != "trade" || tx.TransactionID == "" {
				continue
			}
			out = append(out, mapTransactionToTrade(externalLeagueID, tx))
		}
	}
	return out, nil
}

// mapTradeStatus folds Sleeper's transaction states onto the canonical
// enum. Anything Sleeper adds later lands on pending rather than dropping
// the trade.
func mapTradeStatus(raw string) trade.Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "complete":
		return trade.StatusCompleted
	case "pending":
		return trade.StatusPending
	case "failed":
		return trade.StatusRejected
	case "vetoed":
		return trade.StatusVetoed
	default:
		return trade.NormalizeStatus(raw)
	}
}

func mapTransactionToTrade(externalLeagueID string, tx transactionPayload) trade.Trade {
	status := mapTradeStatus(tx.Status)

	byRoster := make(map[int]*trade.Participant, len(tx.RosterIDs))
	order := make([]int, 0, len(tx.RosterIDs))
	participant := func(rosterID int) *trade.Participant {
		if p, ok := byRoster[rosterID]; ok {
			return p
		}
		p := &trade.Participant{ExternalTeamID: strconv.Itoa(rosterID)}
		byRoster[rosterID] = p
		order = append(order, rosterID)
		return p
	}
	for _, rosterID := range tx.RosterIDs {
		participant(rosterID)
	}

	// Adds map player -> receiving roster, drops map player -> giving roster.
	for playerID, rosterID := range tx.Adds {
		p := participant(rosterID)
		p.PlayersReceived = append(p.PlayersReceived, playerID)
	}
	for playerID, rosterID := range tx.Drops {
		p := participant(rosterID)
		p.PlayersGiven = append(p.PlayersGiven, playerID)
	}

	for _, pick := range tx.DraftPicks {
		season, _ := strconv.Atoi(pick.Season)
		mapped := trade.Pick{
			Season: season,
			Round:  pick.Round,
			// Sleeper omits the original owner on some historical picks.
			OriginalOwner: trade.UnknownCounterparty,
		}
		if pick.RosterID > 0 {
			mapped.OriginalOwner = strconv.Itoa(pick.RosterID)
		}
		if pick.OwnerID > 0 {
			p := participant(pick.OwnerID)
			p.PicksReceived = append(p.PicksReceived, mapped)
		}
		if pick.PreviousOwnerID > 0 {
			p := participant(pick.PreviousOwnerID)
			p.PicksGiven = append(p.PicksGiven, mapped)
		}
	}

	participants := make([]trade.Participant, 0, len(order))
	for _, rosterID := range order {
		participants = append(participants, *byRoster[rosterID])
	}

	item := trade.Trade{
		ExternalTradeID:  tx.TransactionID,
		ExternalLeagueID: externalLeagueID,
		Platform:         platform.Sleeper,
		Status:           status,
		Participants:     participants,
		ProposedAt:       time.UnixMilli(tx.Created).UTC(),
	}
	if status == trade.StatusCompleted && tx.StatusUpdated > 0 {
		executed := time.UnixMilli(tx.StatusUpdated).UTC()
		item.ExecutedAt = &executed
	}
	return item
}

func combinePoints(whole int, decimal int) float64 {
	return float64(whole) + float64(decimal)/100
}

func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "sleeper circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: sleeper is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + path
	out, err, _ := c.flight.Do(path, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && stderrors.Is(reqErr, errSleeperTransient) {
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
		return fmt.Errorf("decode sleeper payload: %w", err)
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
			lastErr = fmt.Errorf("%w: send request: %v", errSleeperTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errSleeperTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: sleeper status=%d", errSleeperTransient, resp.StatusCode)
			default:
				return nil, fmt.Errorf("sleeper status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
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
		lastErr = fmt.Errorf("sleeper request failed")
	}
	c.logger.WarnContext(ctx, "sleeper request failed", "url", fullURL, "error", lastErr)
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
