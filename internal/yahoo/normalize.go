package yahoo

import (
	"log/slog"
	"math"
	"strconv"

	"github.com/gridline/fantasy-data/internal/statmap"
)

// ---------------------------------------------------------------------------
// Generic JSON navigation
// ---------------------------------------------------------------------------

// walk descends a decoded JSON value one key at a time. Map steps use the key
// directly; array steps parse it as an index. Yahoo collections keyed
// "0","1",...,"count" resolve the same way whether they decode as arrays or
// objects. Returns nil as soon as any step misses.
func walk(v any, path ...string) any {
	for _, key := range path {
		switch t := v.(type) {
		case map[string]any:
			v = t[key]
		case []any:
			i, err := strconv.Atoi(key)
			if err != nil || i < 0 || i >= len(t) {
				return nil
			}
			v = t[i]
		default:
			return nil
		}
		if v == nil {
			return nil
		}
	}
	return v
}

// collapseFields flattens Yahoo's array-of-single-key-objects encoding into
// one object. Later duplicate keys overwrite earlier ones, a documented
// provider quirk, not an error.
func collapseFields(fields []any) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		m, ok := f.(map[string]any)
		if !ok {
			continue
		}
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// asString coerces a JSON scalar to string. Yahoo sends most numbers as
// strings but not all of them.
func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// asFloat coerces a JSON scalar to a finite float64. NaN and infinities are
// rejected so they can never leak into a stat map.
func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return t, true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func asInt(v any) (int, bool) {
	f, ok := asFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// ---------------------------------------------------------------------------
// Stat transform
// ---------------------------------------------------------------------------

// TransformStats builds a NormalizedStatSet from the provider's stat entry
// array. Entries with a missing stat_id or an unparsable value are dropped
// from Raw entirely. Formatted and ByCategory are joined against the stat
// dictionary; unknown IDs stay in Raw only.
//
// When includePoints is set, fantasy points are probed across three response
// shapes in fixed priority: stat.points, then a top-level points field, then
// stat.value on the pseudo stat_id "points". If none parses, FantasyPoints
// stays nil; zero and "unknown" are distinct.
func TransformStats(entries []any, includePoints bool) NormalizedStatSet {
	raw := make(map[string]float64)
	for _, e := range entries {
		stat, _ := walk(e, "stat").(map[string]any)
		if stat == nil {
			continue
		}
		id := asString(stat["stat_id"])
		if id == "" {
			continue
		}
		val, ok := asFloat(stat["value"])
		if !ok {
			continue
		}
		raw[id] = val
	}

	formatted := make(map[string]StatValue)
	byCategory := make(map[string]map[string]StatValue)
	for id, val := range raw {
		m, ok := statmap.Lookup(id)
		if !ok {
			continue
		}
		sv := StatValue{Value: val, Name: m.Name, Display: m.Display, Category: string(m.Category)}
		formatted[id] = sv
		if byCategory[sv.Category] == nil {
			byCategory[sv.Category] = make(map[string]StatValue)
		}
		byCategory[sv.Category][id] = sv
	}

	set := NormalizedStatSet{Raw: raw, Formatted: formatted, ByCategory: byCategory}
	if includePoints {
		set.FantasyPoints = probeFantasyPoints(entries)
	}
	return set
}

// probeFantasyPoints tries the three known point placements per entry in
// priority order and returns the first parseable hit.
func probeFantasyPoints(entries []any) *float64 {
	for _, e := range entries {
		if v, ok := asFloat(walk(e, "stat", "points")); ok {
			return &v
		}
		if v, ok := asFloat(walk(e, "points")); ok {
			return &v
		}
		if asString(walk(e, "stat", "stat_id")) == "points" {
			if v, ok := asFloat(walk(e, "stat", "value")); ok {
				return &v
			}
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Player record extraction
// ---------------------------------------------------------------------------

// playerInfoMap resolves the field section of a player node. The provider
// sends either an array of single-key objects or an already-flat object.
func playerInfoMap(v any) map[string]any {
	switch t := v.(type) {
	case []any:
		return collapseFields(t)
	case map[string]any:
		return t
	default:
		return nil
	}
}

// parsePlayer builds a Player from a collapsed field map. Every optional
// field has an explicit fallback; a record missing player_key, player_id, or
// name is dropped from the batch and logged as a data-quality event.
func parsePlayer(info map[string]any, logger *slog.Logger) (Player, bool) {
	if info == nil {
		return Player{}, false
	}

	playerKey := asString(info["player_key"])
	playerID := asString(info["player_id"])
	name, _ := info["name"].(map[string]any)
	if playerKey == "" || playerID == "" || name == nil {
		if logger != nil {
			logger.Warn("dropping player record with missing required fields",
				"player_key", playerKey, "player_id", playerID, "has_name", name != nil)
		}
		return Player{}, false
	}

	teamAbbr := asString(info["editorial_team_abbr"])
	p := Player{
		PlayerID:  playerID,
		PlayerKey: playerKey,
		Name: PlayerName{
			Full:       asString(name["full"]),
			First:      asString(name["first"]),
			Last:       asString(name["last"]),
			ASCIIFirst: asString(name["ascii_first"]),
			ASCIILast:  asString(name["ascii_last"]),
		},
		EditorialTeamAbbr:     teamAbbr,
		EditorialTeamFullName: asString(info["editorial_team_full_name"]),
		Team:                  teamAbbr,
		Position:              asString(info["display_position"]),
		DisplayPosition:       asString(info["display_position"]),
		Status:                asString(info["status"]),
		InjuryStatus:          asString(info["injury_status"]),
		UniformNumber:         asString(info["uniform_number"]),
	}

	if po, ok := asFloat(walk(info, "percent_owned", "value")); ok {
		p.PercentOwned = &po
	}
	if overall, ok := asInt(walk(info, "rank", "overall")); ok {
		p.RankOverall = &overall
	}
	if position, ok := asInt(walk(info, "rank", "position")); ok {
		p.RankPosition = &position
	}
	if bye, ok := asInt(walk(info, "bye_weeks", "week")); ok {
		p.ByeWeek = &bye
	}

	if eligible, ok := info["eligible_positions"].([]any); ok {
		positions := make([]string, 0, len(eligible))
		for _, e := range eligible {
			if pos := asString(walk(e, "position")); pos != "" {
				positions = append(positions, pos)
			}
		}
		p.EligiblePositions = positions
	}

	if hs, ok := info["headshot"].(map[string]any); ok {
		p.Headshot = &Headshot{URL: asString(hs["url"]), Size: asString(hs["size"])}
	}

	return p, true
}

// statEntries pulls the stat entry array out of a player node section.
func statEntries(v any) []any {
	entries, _ := walk(v, "player_stats", "stats").([]any)
	return entries
}
