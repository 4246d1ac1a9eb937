// Package auth implements the OAuth2 token lifecycle against the Yahoo
// Fantasy provider: cookie-backed token storage, the authorization-code
// flow, and expiry-aware refresh.
package auth

import (
	"net/http"
	"strconv"
	"time"
)

// Cookie names for the three token fields.
const (
	accessCookie  = "yahoo_token"
	refreshCookie = "yahoo_refresh_token"
	expiresCookie = "yahoo_token_expires_at"
)

// expiryBuffer treats tokens within 5 minutes of expiry as already expired,
// absorbing clock skew against the provider.
const expiryBuffer = 5 * time.Minute

// cookieMaxAge is 30 days.
const cookieMaxAge = 30 * 24 * 60 * 60

// TokenRecord holds the three OAuth2 credential fields. A record missing any
// field is treated as absent, never partially used.
type TokenRecord struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64 // epoch milliseconds
}

// NewTokenRecord builds a record from a token response. ExpiresAt is always
// issuedAt + expiresIn seconds.
func NewTokenRecord(accessToken, refreshToken string, expiresIn int64, issuedAt time.Time) TokenRecord {
	return TokenRecord{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    issuedAt.UnixMilli() + expiresIn*1000,
	}
}

// Expired reports whether the record should be treated as expired at now.
// Tokens inside the 5-minute skew buffer count as expired.
func (t TokenRecord) Expired(now time.Time) bool {
	return now.UnixMilli() >= t.ExpiresAt-expiryBuffer.Milliseconds()
}

// complete reports whether all three fields are present.
func (t TokenRecord) complete() bool {
	return t.AccessToken != "" && t.RefreshToken != "" && t.ExpiresAt != 0
}

// CookieStore persists tokens in http-only cookies on the client, the only
// state this service keeps per user.
type CookieStore struct {
	Secure bool
}

// NewCookieStore creates a store. secure should be true outside local
// development so cookies are HTTPS-only.
func NewCookieStore(secure bool) *CookieStore {
	return &CookieStore{Secure: secure}
}

// Save writes all three token cookies. The three Set-Cookie headers go out
// in one response, which is as atomic as the medium allows.
func (s *CookieStore) Save(w http.ResponseWriter, tokens TokenRecord) {
	s.set(w, accessCookie, tokens.AccessToken, cookieMaxAge)
	s.set(w, refreshCookie, tokens.RefreshToken, cookieMaxAge)
	s.set(w, expiresCookie, strconv.FormatInt(tokens.ExpiresAt, 10), cookieMaxAge)
}

// Load reads the token record from the request. Returns ok=false when any of
// the three fields is missing or unparsable; partial records are absent.
func (s *CookieStore) Load(r *http.Request) (TokenRecord, bool) {
	access := cookieValue(r, accessCookie)
	refresh := cookieValue(r, refreshCookie)
	expires := cookieValue(r, expiresCookie)
	if access == "" || refresh == "" || expires == "" {
		return TokenRecord{}, false
	}
	expiresAt, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return TokenRecord{}, false
	}
	rec := TokenRecord{AccessToken: access, RefreshToken: refresh, ExpiresAt: expiresAt}
	if !rec.complete() {
		return TokenRecord{}, false
	}
	return rec, true
}

// Clear removes all three token cookies.
func (s *CookieStore) Clear(w http.ResponseWriter) {
	s.set(w, accessCookie, "", -1)
	s.set(w, refreshCookie, "", -1)
	s.set(w, expiresCookie, "", -1)
}

func (s *CookieStore) set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
