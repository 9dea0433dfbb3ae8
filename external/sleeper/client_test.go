package sleeper

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rosterlink/rosterlink/internal/domain/trade"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(ClientConfig{BaseURL: server.URL, MaxWeeks: 2})
}

func TestMapTradeStatus(t *testing.T) {
	t.Parallel()

	cases := map[string]trade.Status{
		"complete":      trade.StatusCompleted,
		"Complete":      trade.StatusCompleted,
		"pending":       trade.StatusPending,
		"failed":        trade.StatusRejected,
		"vetoed":        trade.StatusVetoed,
		"something_new": trade.StatusPending,
		"":              trade.StatusPending,
	}
	for raw, want := range cases {
		if got := mapTradeStatus(raw); got != want {
			t.Fatalf("status %q: expected %s, got %s", raw, want, got)
		}
	}
}

func TestMapTransactionToTrade(t *testing.T) {
	t.Parallel()

	tx := transactionPayload{
		TransactionID: "tx-1",
		Type:          "trade",
		Status:        "complete",
		RosterIDs:     []int{1, 2},
		Adds:          map[string]int{"4046": 2, "6794": 1},
		Drops:         map[string]int{"4046": 1, "6794": 2},
		DraftPicks: []draftPickPayload{
			{Season: "2026", Round: 1, RosterID: 1, OwnerID: 2, PreviousOwnerID: 1},
		},
		Created:       1756600000000,
		StatusUpdated: 1756700000000,
	}

	mapped := mapTransactionToTrade("999", tx)
	if mapped.ExternalTradeID != "tx-1" {
		t.Fatalf("unexpected trade id %q", mapped.ExternalTradeID)
	}
	if mapped.Status != trade.StatusCompleted {
		t.Fatalf("expected completed, got %s", mapped.Status)
	}
	if mapped.ExecutedAt == nil {
		t.Fatalf("expected executed_at on completed trade")
	}
	if len(mapped.Participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(mapped.Participants))
	}

	one := mapped.Participants[0]
	if one.ExternalTeamID != "1" {
		t.Fatalf("expected roster 1 first, got %s", one.ExternalTeamID)
	}
	if len(one.PlayersReceived) != 1 || one.PlayersReceived[0] != "6794" {
		t.Fatalf("unexpected players received for roster 1: %v", one.PlayersReceived)
	}
	if len(one.PlayersGiven) != 1 || one.PlayersGiven[0] != "4046" {
		t.Fatalf("unexpected players given for roster 1: %v", one.PlayersGiven)
	}
	if len(one.PicksGiven) != 1 || one.PicksGiven[0].Round != 1 {
		t.Fatalf("unexpected picks given for roster 1: %v", one.PicksGiven)
	}

	two := mapped.Participants[1]
	if len(two.PicksReceived) != 1 || two.PicksReceived[0].OriginalOwner != "1" {
		t.Fatalf("unexpected picks received for roster 2: %v", two.PicksReceived)
	}
}

func TestMapTransactionToTrade_UnknownPickOwner(t *testing.T) {
	t.Parallel()

	tx := transactionPayload{
		TransactionID: "tx-2",
		Type:          "trade",
		Status:        "pending",
		RosterIDs:     []int{3},
		DraftPicks: []draftPickPayload{
			{Season: "2027", Round: 3, OwnerID: 3},
		},
	}

	mapped := mapTransactionToTrade("999", tx)
	picks := mapped.Participants[0].PicksReceived
	if len(picks) != 1 {
		t.Fatalf("expected one pick, got %d", len(picks))
	}
	if picks[0].OriginalOwner != trade.UnknownCounterparty {
		t.Fatalf("expected unknown original owner, got %q", picks[0].OriginalOwner)
	}
}

func TestClient_FetchLeague(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/league/998" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"league_id":"998","name":"Gridiron Dynasty","season":"2025","status":"in_season","sport":"nfl"}`))
	}))

	data, err := client.FetchLeague(t.Context(), "998")
	if err != nil {
		t.Fatalf("fetch league failed: %v", err)
	}
	if data.Name != "Gridiron Dynasty" {
		t.Fatalf("unexpected name %q", data.Name)
	}
	if data.Season != 2025 {
		t.Fatalf("unexpected season %d", data.Season)
	}
	if data.ExternalLeagueID != "998" {
		t.Fatalf("unexpected external id %q", data.ExternalLeagueID)
	}
}

func TestClient_FetchTeams_JoinsRostersAndUsers(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/league/998/rosters":
			_, _ = w.Write([]byte(`[
				{"roster_id":1,"owner_id":"u-amos","players":["4046","6794"],"settings":{"wins":2,"losses":1,"ties":0,"fpts":341,"fpts_decimal":50,"fpts_against":298,"fpts_against_decimal":20}},
				{"roster_id":2,"owner_id":"u-bea","players":["8138"],"settings":{"wins":1,"losses":2,"ties":0,"fpts":301,"fpts_decimal":0,"fpts_against":322,"fpts_against_decimal":80}}
			]`))
		case "/v1/league/998/users":
			_, _ = w.Write([]byte(`[
				{"user_id":"u-amos","display_name":"amos"},
				{"user_id":"u-bea","display_name":"bea"}
			]`))
		default:
			http.NotFound(w, r)
		}
	}))

	teams, err := client.FetchTeams(t.Context(), "998")
	if err != nil {
		t.Fatalf("fetch teams failed: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("expected 2 teams, got %d", len(teams))
	}

	first := teams[0]
	if first.ExternalTeamID != "1" || first.ExternalUserID != "u-amos" {
		t.Fatalf("unexpected identity: %+v", first)
	}
	if first.Username != "amos" {
		t.Fatalf("expected display name joined, got %q", first.Username)
	}
	if first.PointsFor != 341.5 {
		t.Fatalf("expected decimal points combined to 341.5, got %v", first.PointsFor)
	}
	if len(first.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(first.Players))
	}
}

func TestClient_FetchTrades_FiltersNonTrades(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/league/998/transactions/1":
			_, _ = w.Write([]byte(`[
				{"transaction_id":"tx-1","type":"trade","status":"complete","roster_ids":[1,2],"adds":{"4046":2},"drops":{"4046":1},"created":1756600000000,"status_updated":1756700000000},
				{"transaction_id":"tx-2","type":"waiver","status":"complete","roster_ids":[1]}
			]`))
		case "/v1/league/998/transactions/2":
			_, _ = w.Write([]byte(`[]`))
		default:
			http.NotFound(w, r)
		}
	}))

	trades, err := client.FetchTrades(t.Context(), "998")
	if err != nil {
		t.Fatalf("fetch trades failed: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("expected only the trade transaction, got %d", len(trades))
	}
	if trades[0].ExternalTradeID != "tx-1" {
		t.Fatalf("unexpected trade id %q", trades[0].ExternalTradeID)
	}
}

func TestClient_FetchLeague_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	if _, err := client.FetchLeague(t.Context(), "missing"); err == nil {
		t.Fatalf("expected error on 404")
	}
}
