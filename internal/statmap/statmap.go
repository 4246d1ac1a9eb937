// Package statmap holds the static dictionary mapping Yahoo's numeric stat
// category codes to semantic names, display labels, and scoring categories.
// The table is provider-assigned and never mutated at runtime.
package statmap

// Category is one of the fixed NFL stat groupings.
type Category string

const (
	Passing   Category = "passing"
	Rushing   Category = "rushing"
	Receiving Category = "receiving"
	Kicking   Category = "kicking"
	Defense   Category = "defense"
	Returns   Category = "returns"
	Misc      Category = "misc"
)

// Mapping describes a single stat category code.
type Mapping struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Display  string   `json:"display"`
	Category Category `json:"category"`
}

// nflMappings is keyed by the provider-assigned numeric string ID.
var nflMappings = map[string]Mapping{
	"0":  {ID: "0", Name: "games_played", Display: "Games Played", Category: Misc},
	"1":  {ID: "1", Name: "passing_attempts", Display: "Pass Attempts", Category: Passing},
	"2":  {ID: "2", Name: "passing_completions", Display: "Pass Completions", Category: Passing},
	"3":  {ID: "3", Name: "incomplete_passes", Display: "Incomplete Passes", Category: Passing},
	"4":  {ID: "4", Name: "passing_yards", Display: "Passing Yards", Category: Passing},
	"5":  {ID: "5", Name: "passing_touchdowns", Display: "Passing TDs", Category: Passing},
	"6":  {ID: "6", Name: "interceptions", Display: "Interceptions", Category: Passing},
	"7":  {ID: "7", Name: "sacks", Display: "Times Sacked", Category: Passing},
	"8":  {ID: "8", Name: "rushing_attempts", Display: "Rush Attempts", Category: Rushing},
	"9":  {ID: "9", Name: "rushing_yards", Display: "Rushing Yards", Category: Rushing},
	"10": {ID: "10", Name: "rushing_touchdowns", Display: "Rushing TDs", Category: Rushing},
	"11": {ID: "11", Name: "receptions", Display: "Receptions", Category: Receiving},
	"12": {ID: "12", Name: "receiving_yards", Display: "Receiving Yards", Category: Receiving},
	"13": {ID: "13", Name: "receiving_touchdowns", Display: "Receiving TDs", Category: Receiving},
	"14": {ID: "14", Name: "return_touchdowns", Display: "Return TDs", Category: Returns},
	"15": {ID: "15", Name: "two_point_conversions", Display: "2-Point Conversions", Category: Misc},
	"16": {ID: "16", Name: "fumbles", Display: "Fumbles", Category: Misc},
	"17": {ID: "17", Name: "fumbles_lost", Display: "Fumbles Lost", Category: Misc},
	"18": {ID: "18", Name: "field_goals_made_0_19", Display: "FG Made (0-19)", Category: Kicking},
	"19": {ID: "19", Name: "field_goals_made_20_29", Display: "FG Made (20-29)", Category: Kicking},
	"20": {ID: "20", Name: "field_goals_made_30_39", Display: "FG Made (30-39)", Category: Kicking},
	"21": {ID: "21", Name: "field_goals_made_40_49", Display: "FG Made (40-49)", Category: Kicking},
	"22": {ID: "22", Name: "field_goals_made_50_plus", Display: "FG Made (50+)", Category: Kicking},
	"57": {ID: "57", Name: "field_goals_missed_0_19", Display: "FG Missed (0-19)", Category: Kicking},
	"58": {ID: "58", Name: "field_goals_missed_20_29", Display: "FG Missed (20-29)", Category: Kicking},
	"59": {ID: "59", Name: "field_goals_missed_30_39", Display: "FG Missed (30-39)", Category: Kicking},
	"60": {ID: "60", Name: "field_goals_missed_40_49", Display: "FG Missed (40-49)", Category: Kicking},
	"61": {ID: "61", Name: "field_goals_missed_50_plus", Display: "FG Missed (50+)", Category: Kicking},
	"62": {ID: "62", Name: "pat_made", Display: "PAT Made", Category: Kicking},
	"63": {ID: "63", Name: "pat_missed", Display: "PAT Missed", Category: Kicking},
	"64": {ID: "64", Name: "sacks_made", Display: "Sacks", Category: Defense},
	"65": {ID: "65", Name: "interceptions_made", Display: "Interceptions", Category: Defense},
	"66": {ID: "66", Name: "fumbles_recovered", Display: "Fumbles Recovered", Category: Defense},
	"67": {ID: "67", Name: "safeties", Display: "Safeties", Category: Defense},
	"68": {ID: "68", Name: "defensive_touchdowns", Display: "Defensive TDs", Category: Defense},
	"69": {ID: "69", Name: "special_teams_touchdowns", Display: "Special Teams TDs", Category: Returns},
	"78": {ID: "78", Name: "targets", Display: "Targets", Category: Receiving},
}

// Lookup returns the mapping for a provider stat ID.
func Lookup(id string) (Mapping, bool) {
	m, ok := nflMappings[id]
	return m, ok
}

// All returns a copy of the full dictionary so callers cannot mutate it.
func All() map[string]Mapping {
	out := make(map[string]Mapping, len(nflMappings))
	for k, v := range nflMappings {
		out[k] = v
	}
	return out
}
