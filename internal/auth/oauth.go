package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"github.com/gridline/fantasy-data/internal/metrics"
)

// Flow drives the provider's authorization-code exchange and refresh cycle.
// It is stateless between calls; the resulting TokenRecord is persisted by
// the caller through the CookieStore.
type Flow struct {
	conf   *oauth2.Config
	logger *slog.Logger
	now    func() time.Time
}

// NewFlow creates a flow controller. authURL/tokenURL are parameterized so
// tests can point at a stub provider.
func NewFlow(clientID, clientSecret, redirectURI, authURL, tokenURL, scope string, logger *slog.Logger) *Flow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{scope},
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
				// Yahoo expects Basic-auth client credentials on the token endpoint.
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		logger: logger,
		now:    time.Now,
	}
}

// AuthCodeURL returns the provider authorization URL the user should be
// redirected to. No local state changes.
func (f *Flow) AuthCodeURL() string {
	return f.conf.AuthCodeURL("")
}

// Exchange trades an authorization code for a token record. Provider
// rejection surfaces as ErrAuthExchangeFailed.
func (f *Flow) Exchange(ctx context.Context, code string) (TokenRecord, error) {
	tok, err := f.conf.Exchange(ctx, code)
	if err != nil {
		f.logger.Error("token exchange failed", "error", err)
		return TokenRecord{}, fmt.Errorf("%w: %v", ErrAuthExchangeFailed, err)
	}
	return f.record(tok), nil
}

// Refresh performs a refresh-token grant and returns the replacement record.
// The stored record is replaced wholesale, never field by field.
func (f *Flow) Refresh(ctx context.Context, refreshToken string) (TokenRecord, error) {
	src := f.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return TokenRecord{}, fmt.Errorf("refresh token grant: %w", err)
	}
	rec := f.record(tok)
	if rec.RefreshToken == "" {
		// Provider did not rotate the refresh token; keep the current one.
		rec.RefreshToken = refreshToken
	}
	return rec, nil
}

// EnsureValid returns a usable record: the input as-is when not expired,
// otherwise the result of exactly one refresh attempt. A failed refresh
// yields ErrAuthRequired and the caller must clear stored tokens.
//
// Concurrent callers may race into redundant refreshes; the overwrite is
// idempotent so no locking is needed.
func (f *Flow) EnsureValid(ctx context.Context, tokens TokenRecord) (TokenRecord, bool, error) {
	if !tokens.Expired(f.now()) {
		return tokens, false, nil
	}
	refreshed, err := f.Refresh(ctx, tokens.RefreshToken)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues(metrics.ResultError).Inc()
		f.logger.Warn("token refresh failed", "error", err)
		return TokenRecord{}, false, fmt.Errorf("%w: refresh failed", ErrAuthRequired)
	}
	metrics.TokenRefreshes.WithLabelValues(metrics.ResultOK).Inc()
	return refreshed, true, nil
}

func (f *Flow) record(tok *oauth2.Token) TokenRecord {
	expiresAt := tok.Expiry
	if expiresAt.IsZero() {
		// Yahoo always sends expires_in; fall back to an hour if absent.
		expiresAt = f.now().Add(time.Hour)
	}
	return TokenRecord{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    expiresAt.UnixMilli(),
	}
}
