package predict

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gridline/fantasy-data/internal/statmap"
	"github.com/gridline/fantasy-data/internal/yahoo"
)

// BuildPrompt renders the analyst prompt for one prediction request. Stats
// are labeled through the dictionary so the model sees semantic names, not
// provider codes.
func BuildPrompt(req Request) string {
	var b strings.Builder

	b.WriteString("You are a fantasy football analyst with deep expertise in NFL player statistics and performance prediction.\n\n")
	fmt.Fprintf(&b, "Player Information:\nName: %s\nPosition: %s\nTeam: %s\nTarget Week: %d\n\n",
		req.PlayerName, req.Position, req.Team, req.TargetWeek)

	b.WriteString(formatWeeklyStats(req.WeeklyStats))

	fmt.Fprintf(&b, `Based on the historical weekly performance data above, predict this player's performance for Week %d.
Consider factors like:
- Recent performance trends
- Consistency patterns
- Position-specific metrics
- Team matchups and game script

Provide a detailed statistical prediction in this exact JSON format:
{
    "prediction": {
        "passing_yards": number,
        "passing_touchdowns": number,
        "passing_interceptions": number,
        "rushing_yards": number,
        "rushing_touchdowns": number,
        "receiving_yards": number,
        "receiving_touchdowns": number,
        "receptions": number,
        "targets": number,
        "fantasy_points": number
    },
    "confidence": number (0-1),
    "analysis": "string explaining the prediction"
}`, req.TargetWeek)

	return b.String()
}

// formatWeeklyStats renders the historical series week by week. Stat IDs are
// ordered numerically so the same input always renders the same prompt.
func formatWeeklyStats(weekly []yahoo.WeeklyStats) string {
	var b strings.Builder
	b.WriteString("Historical weekly performance:\n\n")

	for _, week := range weekly {
		fmt.Fprintf(&b, "Week %d:\n", week.Week)

		ids := make([]string, 0, len(week.Stats.Raw))
		for id := range week.Stats.Raw {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			ni, iErr := strconv.Atoi(ids[i])
			nj, jErr := strconv.Atoi(ids[j])
			if iErr == nil && jErr == nil {
				return ni < nj
			}
			return ids[i] < ids[j]
		})

		for _, id := range ids {
			m, ok := statmap.Lookup(id)
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "%s: %v %s\n", m.Name, week.Stats.Raw[id], m.Display)
		}
		if week.FantasyPoints != nil {
			fmt.Fprintf(&b, "Fantasy Points: %v\n", *week.FantasyPoints)
		}
		b.WriteString("\n")
	}
	return b.String()
}
