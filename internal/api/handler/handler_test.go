package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gridline/fantasy-data/internal/auth"
	"github.com/gridline/fantasy-data/internal/cache"
	"github.com/gridline/fantasy-data/internal/config"
	"github.com/gridline/fantasy-data/internal/vector"
	"github.com/gridline/fantasy-data/internal/yahoo"
)

// stubIndex serves canned similarity matches.
type stubIndex struct {
	matches []vector.Match
}

func (s *stubIndex) EnsureReady(context.Context) error { return nil }
func (s *stubIndex) Upsert(context.Context, vector.Record) error {
	return nil
}
func (s *stubIndex) Query(context.Context, vector.Query) ([]vector.Match, error) {
	return s.matches, nil
}

func testConfig() *config.Config {
	return &config.Config{
		AuthLandingPath: "/fantasy",
		CacheEnabled:    false,
	}
}

// newTestHandler wires a handler against a stub provider API. providerFn may
// be nil when the test never reaches the provider.
func newTestHandler(t *testing.T, providerFn http.HandlerFunc, matches []vector.Match) *Handler {
	t.Helper()

	providerURL := "http://127.0.0.1:0"
	if providerFn != nil {
		srv := httptest.NewServer(providerFn)
		t.Cleanup(srv.Close)
		providerURL = srv.URL
	}

	flow := auth.NewFlow("cid", "csecret", "https://localhost/cb",
		providerURL+"/oauth/auth", providerURL+"/oauth/token", "fspt-r", nil)
	client := yahoo.NewClient(providerURL, 60000, time.Second, nil)
	engine := vector.NewEngine(&stubIndex{matches: matches}, nil)
	svc := yahoo.NewService(client, engine, cache.New(false), nil)

	return New(testConfig(), flow, auth.NewCookieStore(false), svc, engine, nil, cache.New(false), nil, nil)
}

func authedRequest(method, target string, body string) *http.Request {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	expires := time.Now().Add(time.Hour).UnixMilli()
	r.AddCookie(&http.Cookie{Name: "yahoo_token", Value: "tok"})
	r.AddCookie(&http.Cookie{Name: "yahoo_refresh_token", Value: "ref"})
	r.AddCookie(&http.Cookie{Name: "yahoo_token_expires_at", Value: fmt.Sprint(expires)})
	return r
}

func TestAuthCheck_Unauthenticated(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	w := httptest.NewRecorder()
	h.AuthCheck(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/check", nil))

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["authenticated"] != false {
		t.Errorf("authenticated = %v, want false", body["authenticated"])
	}
}

func TestAuthCheck_Authenticated(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	w := httptest.NewRecorder()
	h.AuthCheck(w, authedRequest(http.MethodGet, "/api/v1/auth/check", ""))

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["authenticated"] != true {
		t.Errorf("authenticated = %v, want true", body["authenticated"])
	}
	if _, ok := body["expires_at"]; !ok {
		t.Error("expires_at missing from authenticated response")
	}
}

func TestAuthStart_RedirectsToProvider(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	w := httptest.NewRecorder()
	h.AuthStart(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/start", nil))

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want redirect", w.Code)
	}
	loc := w.Header().Get("Location")
	if !strings.Contains(loc, "client_id=cid") {
		t.Errorf("Location = %q, want provider authorization URL", loc)
	}
}

func TestAuthStart_ProviderDenialRedirectsDistinctly(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	w := httptest.NewRecorder()
	h.AuthStart(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/start?error=access_denied", nil))

	loc := w.Header().Get("Location")
	if !strings.HasPrefix(loc, "/fantasy?") || !strings.Contains(loc, "auth=denied") {
		t.Errorf("Location = %q, want landing redirect marked as denied", loc)
	}
	if !strings.Contains(loc, "access_denied") {
		t.Errorf("Location = %q, want the provider reason carried through", loc)
	}
}

func TestAuthStart_ExchangeSuccessSetsCookies(t *testing.T) {
	h := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"acc","refresh_token":"ref","token_type":"bearer","expires_in":3600}`)
	}, nil)

	w := httptest.NewRecorder()
	h.AuthStart(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/start?code=the-code", nil))

	if loc := w.Header().Get("Location"); !strings.Contains(loc, "auth=success") {
		t.Errorf("Location = %q, want success landing", loc)
	}
	if len(w.Result().Cookies()) != 3 {
		t.Errorf("wrote %d cookies, want 3", len(w.Result().Cookies()))
	}
}

func TestAuthStart_ExchangeFailureRedirectsWithError(t *testing.T) {
	h := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}, nil)

	w := httptest.NewRecorder()
	h.AuthStart(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/start?code=bad", nil))

	loc := w.Header().Get("Location")
	if !strings.Contains(loc, "auth=error") || !strings.Contains(loc, "exchange_failed") {
		t.Errorf("Location = %q, want error landing", loc)
	}
}

func TestLogout_ClearsCookies(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	w := httptest.NewRecorder()
	h.Logout(w, authedRequest(http.MethodPost, "/api/v1/auth/logout", ""))

	for _, c := range w.Result().Cookies() {
		if c.MaxAge >= 0 {
			t.Errorf("cookie %s not cleared", c.Name)
		}
	}
}

func TestSearchPlayers_RequiresAuth(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	w := httptest.NewRecorder()
	h.SearchPlayers(w, httptest.NewRequest(http.MethodGet, "/api/v1/players/search?q=Mahomes", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestSearchPlayers_RequiresQuery(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	w := httptest.NewRecorder()
	h.SearchPlayers(w, authedRequest(http.MethodGet, "/api/v1/players/search", ""))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetPlayerStats_RequiresPlayerKey(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	w := httptest.NewRecorder()
	h.GetPlayerStats(w, authedRequest(http.MethodGet, "/api/v1/players/stats", ""))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetPlayerStats_NotFound(t *testing.T) {
	h := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"fantasy_content":{}}`)
	}, nil)

	w := httptest.NewRecorder()
	h.GetPlayerStats(w, authedRequest(http.MethodGet, "/api/v1/players/stats?player_key=423.p.999", ""))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestPredictPoints(t *testing.T) {
	matches := []vector.Match{
		{ID: "a", Metadata: vector.Metadata{"fantasy_points": 10.0}},
		{ID: "b", Metadata: vector.Metadata{"fantasy_points": 20.0}},
	}
	h := newTestHandler(t, nil, matches)

	body := `{"position":"QB","season":"2025","stats":{"4":300,"5":2}}`
	w := httptest.NewRecorder()
	h.PredictPoints(w, authedRequest(http.MethodPost, "/api/v1/predict/points", body))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["prediction"] != 15.0 {
		t.Errorf("prediction = %v, want 15", resp["prediction"])
	}
	if resp["no_data"] != false {
		t.Errorf("no_data = %v", resp["no_data"])
	}
}

func TestPredictPoints_NoNeighborsSentinel(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	body := `{"position":"QB","season":"2025","stats":{"4":300}}`
	w := httptest.NewRecorder()
	h.PredictPoints(w, authedRequest(http.MethodPost, "/api/v1/predict/points", body))

	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["prediction"] != 0.0 || resp["no_data"] != true {
		t.Errorf("resp = %v, want zero sentinel flagged as no_data", resp)
	}
}

func TestPredictPerformance_UnconfiguredModel(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	body := `{"player_name":"Pat","position":"QB","team":"KC","weekly_stats":[{"week":1,"stats":{"raw":{"4":300}}}],"target_week":8}`
	w := httptest.NewRecorder()
	h.PredictPerformance(w, authedRequest(http.MethodPost, "/api/v1/predict", body))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 when model is unconfigured", w.Code)
	}
}
