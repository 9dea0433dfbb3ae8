package fleaflicker

type standingsResponse struct {
	League    leagueInfo `json:"league"`
	Divisions []division `json:"divisions"`
}

type leagueInfo struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

type division struct {
	ID    int64         `json:"id"`
	Name  string        `json:"name"`
	Teams []teamPayload `json:"teams"`
}

type teamPayload struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Owners        []ownerPayload `json:"owners"`
	RecordOverall recordPayload  `json:"recordOverall"`
	PointsFor     valuePayload   `json:"pointsFor"`
	PointsAgainst valuePayload   `json:"pointsAgainst"`
}

type ownerPayload struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"displayName"`
}

type recordPayload struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`
}

type valuePayload struct {
	Value float64 `json:"value"`
}

type rostersResponse struct {
	Rosters []rosterPayload `json:"rosters"`
}

type rosterPayload struct {
	Team    teamRef      `json:"team"`
	Players []playerSlot `json:"players"`
}

type teamRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type playerSlot struct {
	ProPlayer proPlayer `json:"proPlayer"`
}

type proPlayer struct {
	ID       int64  `json:"id"`
	NameFull string `json:"nameFull"`
	Position string `json:"position"`
}

type tradesResponse struct {
	Trades []tradePayload `json:"trades"`
}

type tradePayload struct {
	ID         int64           `json:"id"`
	Status     string          `json:"status"`
	ProposedOn string          `json:"proposedOn"`
	ApprovedOn string          `json:"approvedOn"`
	Teams      []tradeTeamSide `json:"teams"`
}

type tradeTeamSide struct {
	Team            teamRef       `json:"team"`
	PlayersObtained []playerSlot  `json:"playersObtained"`
	PicksObtained   []pickPayload `json:"picksObtained"`
}

type pickPayload struct {
	Season        int      `json:"season"`
	Slot          pickSlot `json:"slot"`
	OriginalOwner teamRef  `json:"originalOwner"`
}

type pickSlot struct {
	Round int `json:"round"`
}
