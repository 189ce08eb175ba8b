package models

// StationTotal is one station card on the dashboard.
type StationTotal struct {
	Station string  `json:"station"`
	Email   string  `json:"email"`
	Amount  float64 `json:"amount"`
	Bets    int     `json:"bets"`
}

// Dashboard aggregates one draw date across every station.
type Dashboard struct {
	Date     string               `json:"date"`
	Total    BetTotal             `json:"total"`
	ByTime   map[DrawTime]float64 `json:"byTime"`
	ByGame   map[Game]float64     `json:"byGame"`
	Stations []StationTotal       `json:"stations"`
}

// StationSummary groups bets of one station over a date range.
type StationSummary struct {
	Station string   `json:"station"`
	Bets    []*Bet   `json:"bets"`
	Total   BetTotal `json:"total"`
}

// NumberTotal is the amount wagered on one number of one game.
type NumberTotal struct {
	Game   Game    `json:"game"`
	Number string  `json:"number"`
	Amount float64 `json:"amount"`
	Bets   int     `json:"bets"`
}

// ExportRow is one line of a spreadsheet export.
type ExportRow struct {
	Station     string
	ReferenceNo string
	Date        string
	Time        DrawTime
	Game        Game
	Number      string
	Amount      float64
	User        string
}
