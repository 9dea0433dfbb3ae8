package sleeper

type leaguePayload struct {
	LeagueID string `json:"league_id"`
	Name     string `json:"name"`
	Season   string `json:"season"`
	Status   string `json:"status"`
	Sport    string `json:"sport"`
}

type rosterPayload struct {
	RosterID int            `json:"roster_id"`
	OwnerID  string         `json:"owner_id"`
	LeagueID string         `json:"league_id"`
	Players  []string       `json:"players"`
	Settings rosterSettings `json:"settings"`
}

type rosterSettings struct {
	Wins                 int `json:"wins"`
	Losses               int `json:"losses"`
	Ties                 int `json:"ties"`
	PointsFor            int `json:"fpts"`
	PointsForDecimal     int `json:"fpts_decimal"`
	PointsAgainst        int `json:"fpts_against"`
	PointsAgainstDecimal int `json:"fpts_against_decimal"`
}

type userPayload struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

type transactionPayload struct {
	TransactionID string             `json:"transaction_id"`
	Type          string             `json:"type"`
	Status        string             `json:"status"`
	RosterIDs     []int              `json:"roster_ids"`
	Adds          map[string]int     `json:"adds"`
	Drops         map[string]int     `json:"drops"`
	DraftPicks    []draftPickPayload `json:"draft_picks"`
	Created       int64              `json:"created"`
	StatusUpdated int64              `json:"status_updated"`
}

type draftPickPayload struct {
	Season          string `json:"season"`
	Round           int    `json:"round"`
	RosterID        int    `json:"roster_id"`
	OwnerID         int    `json:"owner_id"`
	PreviousOwnerID int    `json:"previous_owner_id"`
}
