package handler

import (
	"errors"
	"net/http"

	"github.com/gridline/fantasy-data/internal/api/respond"
	"github.com/gridline/fantasy-data/internal/yahoo"
)

// SearchPlayers searches the provider's player pool by name.
// @Summary Search players
// @Description Searches the current game's player pool. Malformed provider records are dropped.
// @Tags players
// @Produce json
// @Param q query string true "Search query"
// @Success 200 {object} yahoo.SearchResult
// @Failure 400 {object} respond.ErrorResponse
// @Failure 401 {object} respond.ErrorResponse
// @Router /players/search [get]
func (h *Handler) SearchPlayers(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.requireTokens(w, r)
	if !ok {
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		respond.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Search query is required")
		return
	}

	result, err := h.fantasy.SearchPlayers(r.Context(), rec.AccessToken, query)
	if err != nil {
		h.writeUpstreamError(w, "SEARCH_ERROR", "Failed to search players", err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, result)
}

// GetPlayerStats fetches a player's season stats and, with a league context,
// the weekly series. Fetched stats are persisted to the vector index as a
// side effect.
// @Summary Get player stats
// @Description Returns the player record with season and weekly stats populated.
// @Tags players
// @Produce json
// @Param player_key query string true "Provider player key"
// @Param league_key query string false "League key for fantasy-point scoring context"
// @Success 200 {object} yahoo.Player
// @Failure 400 {object} respond.ErrorResponse
// @Failure 401 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /players/stats [get]
func (h *Handler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.requireTokens(w, r)
	if !ok {
		return
	}

	playerKey := r.URL.Query().Get("player_key")
	if playerKey == "" {
		respond.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Player key is required")
		return
	}
	leagueKey := r.URL.Query().Get("league_key")

	player, err := h.fantasy.GetPlayerStats(r.Context(), rec.AccessToken, playerKey, leagueKey)
	if err != nil {
		if errors.Is(err, yahoo.ErrPlayerNotFound) {
			respond.WriteError(w, http.StatusNotFound, "PLAYER_NOT_FOUND", "Player not found")
			return
		}
		h.writeUpstreamError(w, "STATS_ERROR", "Failed to fetch player stats", err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, player)
}

// GetLeagues lists the authenticated user's leagues.
// @Summary List leagues
// @Description Returns the logged-in user's NFL leagues.
// @Tags leagues
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} respond.ErrorResponse
// @Router /leagues [get]
func (h *Handler) GetLeagues(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.requireTokens(w, r)
	if !ok {
		return
	}

	leagues, err := h.fantasy.Leagues(r.Context(), rec.AccessToken)
	if err != nil {
		h.writeUpstreamError(w, "LEAGUES_ERROR", "Failed to fetch leagues", err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"leagues": leagues})
}

// writeUpstreamError maps provider failures to a 500 carrying the provider's
// status text; anything else gets the generic message.
func (h *Handler) writeUpstreamError(w http.ResponseWriter, code, message string, err error) {
	h.logger.Error(message, "error", err)
	var ue *yahoo.UpstreamError
	if errors.As(err, &ue) {
		respond.WriteErrorDetail(w, http.StatusInternalServerError, code, message, ue.Status)
		return
	}
	respond.WriteError(w, http.StatusInternalServerError, code, message)
}
