package yahoo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/gridline/fantasy-data/internal/cache"
	"github.com/gridline/fantasy-data/internal/config"
	"github.com/gridline/fantasy-data/internal/metrics"
)

// ErrPlayerNotFound means the provider answered but carried no player node
// for the requested key.
var ErrPlayerNotFound = errors.New("player not found")

// StatRecord is one normalized stat line handed to the persistence sink.
// Week 0 means the season-total line.
type StatRecord struct {
	PlayerKey     string
	PlayerName    string
	FirstName     string
	LastName      string
	Team          string
	Position      string
	Status        string
	Season        string
	LeagueKey     string
	Week          int
	Stats         map[string]float64
	FantasyPoints float64
}

// StatSink receives successful stat fetches for persistence. Implementations
// are called best-effort: errors are logged by the service and never reach
// the API caller.
type StatSink interface {
	Store(ctx context.Context, rec StatRecord) error
}

// Service orchestrates provider fetches: season and weekly stats, player
// search, and league listing. Records are built fresh per request; the only
// thing retained between requests is the resolved game key.
type Service struct {
	client *Client
	sink   StatSink
	cache  *cache.Cache
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires a provider client to an optional persistence sink.
func NewService(client *Client, sink StatSink, c *cache.Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if c == nil {
		c = cache.New(false)
	}
	return &Service{client: client, sink: sink, cache: c, logger: logger, now: time.Now}
}

// GetPlayerStats fetches a player's season line and, when a league context is
// given, the per-week series. The season fetch is essential and its failure
// fails the whole call; weekly fetches are best-effort. Each non-empty stat
// set is handed to the sink as a side effect.
func (s *Service) GetPlayerStats(ctx context.Context, accessToken, playerKey, leagueKey string) (*Player, error) {
	var path string
	if leagueKey != "" {
		path = fmt.Sprintf("/league/%s/players;player_keys=%s/stats/points", leagueKey, playerKey)
	} else {
		path = fmt.Sprintf("/player/%s/stats", playerKey)
	}

	data, err := s.client.get(ctx, accessToken, path)
	if err != nil {
		return nil, fmt.Errorf("fetch season stats: %w", err)
	}

	var playerData any
	if leagueKey != "" {
		playerData = walk(data, "fantasy_content", "league", "1", "players", "0", "player")
	} else {
		playerData = walk(data, "fantasy_content", "player")
	}
	if playerData == nil {
		return nil, ErrPlayerNotFound
	}

	player, ok := parsePlayer(playerInfoMap(walk(playerData, "0")), s.logger)
	if !ok {
		return nil, ErrPlayerNotFound
	}

	season := TransformStats(statEntries(walk(playerData, "1")), leagueKey != "")
	if leagueKey != "" {
		if total, ok := asFloat(walk(playerData, "1", "player_points", "total")); ok {
			season.FantasyPoints = &total
		}
	}

	var weekly []WeeklyStats
	if leagueKey != "" {
		weekly = s.FetchWeeklyStats(ctx, accessToken, playerKey, leagueKey)
	}

	s.persist(ctx, player, leagueKey, season, weekly)

	player.Stats = &PlayerStats{Season: season, Weekly: weekly}
	return &player, nil
}

// FetchSeasonStats returns just the season stat line for a player. The
// league-scoped endpoint includes fantasy points; the player-scoped one does
// not.
func (s *Service) FetchSeasonStats(ctx context.Context, accessToken, playerKey, leagueKey string) (NormalizedStatSet, error) {
	player, err := s.GetPlayerStats(ctx, accessToken, playerKey, leagueKey)
	if err != nil {
		return NormalizedStatSet{}, err
	}
	return player.Stats.Season, nil
}

// FetchWeeklyStats issues one request per regular-season week, sequentially.
// The provider's batch endpoint is unreliable, so each week is fetched on its
// own and a failing or empty week is skipped rather than aborting the rest.
// The result is sorted ascending by week.
func (s *Service) FetchWeeklyStats(ctx context.Context, accessToken, playerKey, leagueKey string) []WeeklyStats {
	weekly := make([]WeeklyStats, 0, config.RegularSeasonWeeks)

	for week := 1; week <= config.RegularSeasonWeeks; week++ {
		path := fmt.Sprintf("/league/%s/players;player_keys=%s/stats;type=week;week=%d/points", leagueKey, playerKey, week)

		data, err := s.client.get(ctx, accessToken, path)
		if err != nil {
			s.logger.Debug("skipping week", "week", week, "player_key", playerKey, "error", err)
			metrics.WeeksSkipped.Inc()
			continue
		}

		playerData := walk(data, "fantasy_content", "league", "1", "players", "0", "player")
		if playerData == nil {
			metrics.WeeksSkipped.Inc()
			continue
		}

		total, totalOK := asFloat(walk(playerData, "1", "player_points", "total"))
		stats := TransformStats(statEntries(walk(playerData, "1")), false)
		if len(stats.Raw) == 0 && !totalOK {
			metrics.WeeksSkipped.Inc()
			continue
		}

		ws := WeeklyStats{Week: week, Stats: stats}
		if totalOK {
			ws.FantasyPoints = &total
		}
		weekly = append(weekly, ws)
	}

	sort.Slice(weekly, func(i, j int) bool { return weekly[i].Week < weekly[j].Week })
	return weekly
}

// SearchPlayers resolves the current game key and runs a name search against
// it. Records missing required identity fields are dropped from the batch.
func (s *Service) SearchPlayers(ctx context.Context, accessToken, query string) (SearchResult, error) {
	gameKey, err := s.gameKey(ctx, accessToken)
	if err != nil {
		return SearchResult{}, err
	}

	path := fmt.Sprintf("/game/%s/players;search=%s", gameKey, url.QueryEscape(query))
	data, err := s.client.get(ctx, accessToken, path)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search players: %w", err)
	}

	playersData := walk(data, "fantasy_content", "game", "1", "players")
	if playersData == nil {
		return SearchResult{Players: []Player{}}, nil
	}

	count, _ := asInt(walk(playersData, "count"))
	players := make([]Player, 0, count)
	for i := 0; i < count; i++ {
		node := walk(playersData, strconv.Itoa(i), "player", "0")
		if p, ok := parsePlayer(playerInfoMap(node), s.logger); ok {
			players = append(players, p)
		}
	}
	return SearchResult{Players: players, Total: len(players)}, nil
}

// Leagues lists the logged-in user's NFL leagues across games.
func (s *Service) Leagues(ctx context.Context, accessToken string) ([]League, error) {
	data, err := s.client.get(ctx, accessToken, "/users;use_login=1/games;game_codes=nfl/leagues")
	if err != nil {
		return nil, fmt.Errorf("fetch leagues: %w", err)
	}

	out := []League{}
	games := walk(data, "fantasy_content", "users", "0", "user", "1", "games")
	gameCount, _ := asInt(walk(games, "count"))
	for g := 0; g < gameCount; g++ {
		gameNode := walk(games, strconv.Itoa(g), "game")
		if gameNode == nil {
			continue
		}
		gameCode := asString(walk(gameNode, "0", "code"))
		leagues := walk(gameNode, "1", "leagues")
		leagueCount, _ := asInt(walk(leagues, "count"))
		for l := 0; l < leagueCount; l++ {
			node := walk(leagues, strconv.Itoa(l), "league", "0")
			key := asString(walk(node, "league_key"))
			if key == "" {
				continue
			}
			out = append(out, League{
				LeagueKey: key,
				LeagueID:  asString(walk(node, "league_id")),
				Name:      asString(walk(node, "name")),
				Season:    asString(walk(node, "season")),
				GameCode:  gameCode,
				IsActive:  asString(walk(node, "is_active")) == "1",
			})
		}
	}
	return out, nil
}

// gameKey resolves the current NFL game key, reusing the cached value when
// present. The key changes once per season so a day of staleness is fine.
func (s *Service) gameKey(ctx context.Context, accessToken string) (string, error) {
	if key, ok := s.cache.Get("game_key:nfl"); ok {
		return key, nil
	}

	data, err := s.client.get(ctx, accessToken, "/games;game_codes=nfl;is_available=1")
	if err != nil {
		return "", fmt.Errorf("resolve current game: %w", err)
	}
	key := asString(walk(data, "fantasy_content", "games", "0", "game", "0", "game_key"))
	if key == "" {
		return "", fmt.Errorf("resolve current game: no game key in response")
	}

	s.cache.Set("game_key:nfl", key, cache.TTLGameKey)
	return key, nil
}

// persist hands every non-empty stat set to the sink. Failures are logged
// and never propagate; the vector store is additive history, not part of the
// read path.
func (s *Service) persist(ctx context.Context, player Player, leagueKey string, season NormalizedStatSet, weekly []WeeklyStats) {
	if s.sink == nil {
		return
	}
	currentSeason := strconv.Itoa(s.now().Year())

	store := func(week int, raw map[string]float64, points *float64) {
		if len(raw) == 0 {
			return
		}
		rec := StatRecord{
			PlayerKey:  player.PlayerKey,
			PlayerName: player.Name.Full,
			FirstName:  player.Name.First,
			LastName:   player.Name.Last,
			Team:       player.Team,
			Position:   player.DisplayPosition,
			Status:     player.Status,
			Season:     currentSeason,
			LeagueKey:  leagueKey,
			Week:       week,
			Stats:      raw,
		}
		if rec.Status == "" {
			rec.Status = "Active"
		}
		if points != nil {
			rec.FantasyPoints = *points
		}
		if err := s.sink.Store(ctx, rec); err != nil {
			metrics.VectorUpserts.WithLabelValues(metrics.ResultError).Inc()
			s.logger.Error("stat persistence failed", "player_key", player.PlayerKey, "week", week, "error", err)
			return
		}
		metrics.VectorUpserts.WithLabelValues(metrics.ResultOK).Inc()
	}

	store(0, season.Raw, season.FantasyPoints)
	for _, ws := range weekly {
		store(ws.Week, ws.Stats.Raw, ws.FantasyPoints)
	}
}
