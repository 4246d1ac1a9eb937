// Package predict generates week-ahead stat-line forecasts from historical
// weekly performance using a generative model.
package predict

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gridline/fantasy-data/internal/yahoo"
)

// ErrNoJSON means the model answered but no JSON object could be located in
// its output.
var ErrNoJSON = errors.New("no valid JSON found in model response")

// StatPrediction is the forecast stat line the model must return.
type StatPrediction struct {
	PassingYards         float64 `json:"passing_yards"`
	PassingTouchdowns    float64 `json:"passing_touchdowns"`
	PassingInterceptions float64 `json:"passing_interceptions"`
	RushingYards         float64 `json:"rushing_yards"`
	RushingTouchdowns    float64 `json:"rushing_touchdowns"`
	ReceivingYards       float64 `json:"receiving_yards"`
	ReceivingTouchdowns  float64 `json:"receiving_touchdowns"`
	Receptions           float64 `json:"receptions"`
	Targets              float64 `json:"targets"`
	FantasyPoints        float64 `json:"fantasy_points"`
}

// Prediction is the full model answer: a stat line, a confidence in 0..1,
// and a free-text rationale.
type Prediction struct {
	Prediction StatPrediction `json:"prediction"`
	Confidence float64        `json:"confidence"`
	Analysis   string         `json:"analysis"`
}

// Request carries everything the forecast needs.
type Request struct {
	PlayerName  string              `json:"player_name"`
	Position    string              `json:"position"`
	Team        string              `json:"team"`
	WeeklyStats []yahoo.WeeklyStats `json:"weekly_stats"`
	TargetWeek  int                 `json:"target_week"`
}

// Validate reports the first missing required field.
func (r Request) Validate() error {
	switch {
	case r.PlayerName == "":
		return errors.New("player_name is required")
	case r.Position == "":
		return errors.New("position is required")
	case r.Team == "":
		return errors.New("team is required")
	case len(r.WeeklyStats) == 0:
		return errors.New("weekly_stats is required")
	case r.TargetWeek < 1:
		return errors.New("target_week is required")
	default:
		return nil
	}
}

// Generator produces free-form text from a prompt. The Gemini client is the
// production implementation; tests use a stub.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service turns prediction requests into prompts and parses the model's
// answer back into a structured forecast.
type Service struct {
	gen    Generator
	logger *slog.Logger
}

// NewService wraps a generator.
func NewService(gen Generator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gen: gen, logger: logger}
}

// Predict builds the analyst prompt, runs the model, and decodes the JSON
// object embedded in its reply.
func (s *Service) Predict(ctx context.Context, req Request) (Prediction, error) {
	if err := req.Validate(); err != nil {
		return Prediction{}, err
	}

	text, err := s.gen.Generate(ctx, BuildPrompt(req))
	if err != nil {
		return Prediction{}, fmt.Errorf("generate prediction: %w", err)
	}

	raw, err := ExtractJSON(text)
	if err != nil {
		s.logger.Warn("model response carried no JSON", "player", req.PlayerName)
		return Prediction{}, err
	}

	var p Prediction
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Prediction{}, fmt.Errorf("decode prediction JSON: %w", err)
	}
	return p, nil
}

// ExtractJSON pulls the outermost JSON object out of free-form model text.
// Models tend to wrap answers in prose or code fences.
func ExtractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", ErrNoJSON
	}
	return text[start : end+1], nil
}
