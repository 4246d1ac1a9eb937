package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gridline/fantasy-data/internal/api/respond"
	"github.com/gridline/fantasy-data/internal/predict"
)

// pointsQuery is the request body for the similarity-based point prediction.
type pointsQuery struct {
	Position string             `json:"position"`
	Stats    map[string]float64 `json:"stats"`
	Season   string             `json:"season"`
	Week     *int               `json:"week,omitempty"`
}

// PredictPerformance produces a model-generated stat-line forecast from a
// player's weekly history.
// @Summary Predict player performance
// @Description Generates a stat-line forecast and analysis for a target week.
// @Tags predict
// @Accept json
// @Produce json
// @Success 200 {object} predict.Prediction
// @Failure 400 {object} respond.ErrorResponse
// @Failure 401 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /predict [post]
func (h *Handler) PredictPerformance(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireTokens(w, r); !ok {
		return
	}
	if h.predictor == nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "PREDICTION_UNCONFIGURED", "Prediction model is not configured")
		return
	}

	var req predict.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	p, err := h.predictor.Predict(r.Context(), req)
	if err != nil {
		h.logger.Error("prediction failed", "player", req.PlayerName, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "PREDICTION_ERROR", "Failed to generate prediction")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, p)
}

// PredictPoints returns the similarity-based fantasy point estimate: the
// mean of the 5 nearest stored performances for the same position and
// season. A 0 means no neighbors were found and should be treated as low
// confidence, not as a score.
// @Summary Predict fantasy points by similarity
// @Description Embeds the given stat line and averages the nearest stored performances.
// @Tags predict
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 401 {object} respond.ErrorResponse
// @Router /predict/points [post]
func (h *Handler) PredictPoints(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireTokens(w, r); !ok {
		return
	}

	var q pointsQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if q.Position == "" || q.Season == "" || len(q.Stats) == 0 {
		respond.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "position, season, and stats are required")
		return
	}

	prediction, err := h.engine.Predict(r.Context(), q.Position, q.Stats, q.Season, q.Week)
	if err != nil {
		h.logger.Error("similarity prediction failed", "position", q.Position, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "PREDICTION_ERROR", "Failed to predict fantasy points")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"prediction": prediction,
		"no_data":    prediction == 0,
	})
}
