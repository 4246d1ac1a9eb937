package auth

import "errors"

// Sentinel errors for the auth flow. Handlers map these to HTTP behavior:
// ErrAuthRequired becomes a 401, ErrAuthExchangeFailed becomes a
// redirect-with-error back to the UI landing route.
var (
	// ErrAuthRequired means no usable tokens exist: nothing stored, the
	// stored record was partial, or it expired and the single refresh
	// attempt also failed.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthExchangeFailed means the provider rejected the authorization
	// code or client credentials during token exchange.
	ErrAuthExchangeFailed = errors.New("authorization code exchange failed")
)
