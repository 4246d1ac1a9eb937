package yahoo

// StatValue is one stat joined against the dictionary: the parsed numeric
// value plus its semantic name, display label, and category.
type StatValue struct {
	Value    float64 `json:"value"`
	Name     string  `json:"name"`
	Display  string  `json:"display"`
	Category string  `json:"category"`
}

// NormalizedStatSet is the flat, typed view of one stat payload.
//
// Raw holds every parseable stat keyed by provider stat ID, including IDs
// unknown to the dictionary. Formatted and ByCategory hold only dictionary
// matches, so their keys are always a subset of Raw's. FantasyPoints is nil
// when the payload carried no parseable points; nil and 0 are distinct.
type NormalizedStatSet struct {
	Raw           map[string]float64              `json:"raw"`
	Formatted     map[string]StatValue            `json:"formatted"`
	ByCategory    map[string]map[string]StatValue `json:"byCategory"`
	FantasyPoints *float64                        `json:"fantasyPoints,omitempty"`
}

// WeeklyStats is one week of a player's league-scoped stats.
type WeeklyStats struct {
	Week          int               `json:"week"`
	Stats         NormalizedStatSet `json:"stats"`
	FantasyPoints *float64          `json:"fantasyPoints,omitempty"`
}

// PlayerStats groups the season line with the per-week series.
type PlayerStats struct {
	Season NormalizedStatSet `json:"season"`
	Weekly []WeeklyStats     `json:"weekly"`
}

// PlayerName carries the provider's name variants.
type PlayerName struct {
	Full       string `json:"full"`
	First      string `json:"first"`
	Last       string `json:"last"`
	ASCIIFirst string `json:"ascii_first,omitempty"`
	ASCIILast  string `json:"ascii_last,omitempty"`
}

// Headshot is the provider's player image reference.
type Headshot struct {
	URL  string `json:"url"`
	Size string `json:"size,omitempty"`
}

// Player is the canonical flat record built from the provider's nested
// response. Constructed fresh per request and never cached; the vector
// store is the only persistence path.
type Player struct {
	PlayerID              string       `json:"player_id"`
	PlayerKey             string       `json:"player_key"`
	Name                  PlayerName   `json:"name"`
	EditorialTeamAbbr     string       `json:"editorial_team_abbr"`
	EditorialTeamFullName string       `json:"editorial_team_full_name,omitempty"`
	Team                  string       `json:"team"`
	Position              string       `json:"position"`
	DisplayPosition       string       `json:"display_position"`
	Status                string       `json:"status,omitempty"`
	InjuryStatus          string       `json:"injury_status,omitempty"`
	PercentOwned          *float64     `json:"percent_owned,omitempty"`
	RankOverall           *int         `json:"rank_overall,omitempty"`
	RankPosition          *int         `json:"rank_position,omitempty"`
	UniformNumber         string       `json:"uniform_number,omitempty"`
	EligiblePositions     []string     `json:"eligible_positions,omitempty"`
	ByeWeek               *int         `json:"bye_week,omitempty"`
	Headshot              *Headshot    `json:"headshot,omitempty"`
	Stats                 *PlayerStats `json:"stats,omitempty"`
}

// SearchResult is the payload of a player search.
type SearchResult struct {
	Players []Player `json:"players"`
	Total   int      `json:"total"`
}

// League identifies one fantasy league of the logged-in user.
type League struct {
	LeagueKey string `json:"league_key"`
	LeagueID  string `json:"league_id"`
	Name      string `json:"name"`
	Season    string `json:"season"`
	GameCode  string `json:"game_code"`
	IsActive  bool   `json:"is_active"`
}
