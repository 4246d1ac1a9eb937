package handler

import (
	"net/http"
	"net/url"

	"github.com/gridline/fantasy-data/internal/api/respond"
)

// AuthStart begins or completes the OAuth flow. Without query parameters it
// redirects to the provider's authorization page. The provider redirects
// back to this same endpoint with either a code or an error parameter; user
// denial and exchange failure land on the UI with distinct markers.
// @Summary Start or complete OAuth authorization
// @Description Redirects to the provider, or completes the code exchange when called back.
// @Tags auth
// @Param code query string false "Authorization code from provider callback"
// @Param error query string false "Provider-reported error (e.g. access_denied)"
// @Success 307
// @Router /auth/start [get]
func (h *Handler) AuthStart(w http.ResponseWriter, r *http.Request) {
	if provErr := r.URL.Query().Get("error"); provErr != "" {
		h.logger.Warn("provider reported authorization error", "error", provErr)
		h.redirectLanding(w, r, url.Values{"auth": {"denied"}, "reason": {provErr}})
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, h.flow.AuthCodeURL(), http.StatusTemporaryRedirect)
		return
	}

	rec, err := h.flow.Exchange(r.Context(), code)
	if err != nil {
		h.redirectLanding(w, r, url.Values{"auth": {"error"}, "reason": {"exchange_failed"}})
		return
	}

	h.tokens.Save(w, rec)
	h.redirectLanding(w, r, url.Values{"auth": {"success"}})
}

// AuthCheck reports whether the caller holds usable tokens, refreshing them
// when expired. An unrefreshable record is cleared so the next check starts
// clean.
// @Summary Check authentication state
// @Description Returns whether the caller is authenticated and when the token expires.
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /auth/check [get]
func (h *Handler) AuthCheck(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.tokens.Load(r)
	if !ok {
		respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"authenticated": false})
		return
	}

	valid, refreshed, err := h.flow.EnsureValid(r.Context(), rec)
	if err != nil {
		h.tokens.Clear(w)
		respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"authenticated": false})
		return
	}
	if refreshed {
		h.tokens.Save(w, valid)
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"expires_at":    valid.ExpiresAt,
	})
}

// Logout clears the stored token cookies.
// @Summary Log out
// @Description Clears stored provider tokens.
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.tokens.Clear(w)
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) redirectLanding(w http.ResponseWriter, r *http.Request, params url.Values) {
	http.Redirect(w, r, h.cfg.AuthLandingPath+"?"+params.Encode(), http.StatusTemporaryRedirect)
}
