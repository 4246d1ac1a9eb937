package predict

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gridline/fantasy-data/internal/yahoo"
)

type stubGenerator struct {
	response string
	err      error
	prompt   string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.response, g.err
}

func points(v float64) *float64 { return &v }

func testRequest() Request {
	return Request{
		PlayerName: "Pat Tester",
		Position:   "QB",
		Team:       "KC",
		TargetWeek: 8,
		WeeklyStats: []yahoo.WeeklyStats{
			{Week: 1, Stats: yahoo.NormalizedStatSet{Raw: map[string]float64{"4": 300, "5": 2}}, FantasyPoints: points(24.5)},
			{Week: 2, Stats: yahoo.NormalizedStatSet{Raw: map[string]float64{"4": 250}}, FantasyPoints: points(18)},
		},
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, false},
		{"wrapped in prose", "Sure! Here you go:\n{\"a\":1}\nHope that helps.", `{"a":1}`, false},
		{"code fence", "```json\n{\"a\":1}\n```", `{"a":1}`, false},
		{"no json", "I cannot help with that.", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrNoJSON) {
					t.Errorf("err = %v, want ErrNoJSON", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractJSON: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(testRequest())

	for _, want := range []string{
		"Name: Pat Tester",
		"Position: QB",
		"Target Week: 8",
		"Week 1:",
		"passing_yards: 300 Passing Yards",
		"Fantasy Points: 24.5",
		`"confidence": number (0-1)`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "stat_id") {
		t.Error("prompt must use semantic stat names, not provider codes")
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	req := testRequest()
	if BuildPrompt(req) != BuildPrompt(req) {
		t.Error("identical requests must render identical prompts")
	}
}

func TestService_Predict(t *testing.T) {
	gen := &stubGenerator{response: `Here is my take:
{"prediction":{"passing_yards":285,"passing_touchdowns":2,"fantasy_points":21.4},"confidence":0.7,"analysis":"Solid trend."}`}
	svc := NewService(gen, nil)

	p, err := svc.Predict(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if p.Prediction.PassingYards != 285 || p.Confidence != 0.7 {
		t.Errorf("prediction = %+v", p)
	}
	if !strings.Contains(gen.prompt, "Pat Tester") {
		t.Error("generator must receive the rendered prompt")
	}
}

func TestService_Predict_Validation(t *testing.T) {
	svc := NewService(&stubGenerator{}, nil)

	req := testRequest()
	req.PlayerName = ""
	if _, err := svc.Predict(context.Background(), req); err == nil {
		t.Error("missing player_name must fail validation")
	}

	req = testRequest()
	req.WeeklyStats = nil
	if _, err := svc.Predict(context.Background(), req); err == nil {
		t.Error("missing weekly_stats must fail validation")
	}
}

func TestService_Predict_NoJSONInResponse(t *testing.T) {
	svc := NewService(&stubGenerator{response: "no structured answer here"}, nil)
	if _, err := svc.Predict(context.Background(), testRequest()); !errors.Is(err, ErrNoJSON) {
		t.Errorf("err = %v, want ErrNoJSON", err)
	}
}

func TestGeminiClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "models/gemini-1.5-flash:generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("key = %q", r.URL.Query().Get("key"))
		}
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"hello"}]}}]}`)
	}))
	defer srv.Close()

	c := NewGeminiClient("test-key", "gemini-1.5-flash")
	c.baseURL = srv.URL

	got, err := c.Generate(context.Background(), "say hello")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "hello" {
		t.Errorf("got %q", got)
	}
}

func TestGeminiClient_ErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"code":400,"message":"API key not valid"}}`)
	}))
	defer srv.Close()

	c := NewGeminiClient("bad-key", "gemini-1.5-flash")
	c.baseURL = srv.URL

	_, err := c.Generate(context.Background(), "prompt")
	if err == nil || !strings.Contains(err.Error(), "API key not valid") {
		t.Errorf("err = %v, want provider message surfaced", err)
	}
}
