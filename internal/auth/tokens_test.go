package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokenRecord_ExpiredBoundary(t *testing.T) {
	now := time.Now()
	buffer := int64(5 * 60 * 1000)

	tests := []struct {
		name      string
		expiresAt int64
		want      bool
	}{
		{"well past expiry", now.UnixMilli() - 1000, true},
		{"inside skew buffer", now.UnixMilli() + buffer - 1, true},
		{"exactly at buffer edge", now.UnixMilli() + buffer, true},
		{"just outside buffer", now.UnixMilli() + buffer + 1, false},
		{"comfortably valid", now.UnixMilli() + 2*buffer, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := TokenRecord{AccessToken: "a", RefreshToken: "r", ExpiresAt: tt.expiresAt}
			if got := rec.Expired(now); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewTokenRecord_ExpiresAtInvariant(t *testing.T) {
	issued := time.UnixMilli(1_700_000_000_000)
	rec := NewTokenRecord("a", "r", 3600, issued)
	if rec.ExpiresAt != issued.UnixMilli()+3600*1000 {
		t.Errorf("ExpiresAt = %d, want issued_at + expires_in*1000", rec.ExpiresAt)
	}
}

func TestCookieStore_SaveLoadRoundTrip(t *testing.T) {
	store := NewCookieStore(true)
	rec := TokenRecord{AccessToken: "acc", RefreshToken: "ref", ExpiresAt: 1234567890}

	w := httptest.NewRecorder()
	store.Save(w, rec)

	cookies := w.Result().Cookies()
	if len(cookies) != 3 {
		t.Fatalf("Save wrote %d cookies, want 3", len(cookies))
	}
	for _, c := range cookies {
		if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode {
			t.Errorf("cookie %s missing http-only/secure/lax attributes", c.Name)
		}
		if c.MaxAge != 30*24*60*60 {
			t.Errorf("cookie %s MaxAge = %d, want 30 days", c.Name, c.MaxAge)
		}
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	loaded, ok := store.Load(r)
	if !ok {
		t.Fatal("Load should find a complete record")
	}
	if loaded != rec {
		t.Errorf("Load = %+v, want %+v", loaded, rec)
	}
}

func TestCookieStore_PartialRecordIsAbsent(t *testing.T) {
	store := NewCookieStore(false)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "yahoo_token", Value: "acc"})
	r.AddCookie(&http.Cookie{Name: "yahoo_token_expires_at", Value: "123"})
	// refresh token missing

	if _, ok := store.Load(r); ok {
		t.Error("a record missing the refresh token must be treated as absent")
	}
}

func TestCookieStore_GarbageExpiryIsAbsent(t *testing.T) {
	store := NewCookieStore(false)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "yahoo_token", Value: "acc"})
	r.AddCookie(&http.Cookie{Name: "yahoo_refresh_token", Value: "ref"})
	r.AddCookie(&http.Cookie{Name: "yahoo_token_expires_at", Value: "not-a-number"})

	if _, ok := store.Load(r); ok {
		t.Error("an unparsable expiry must invalidate the whole record")
	}
}

func TestCookieStore_Clear(t *testing.T) {
	store := NewCookieStore(false)
	w := httptest.NewRecorder()
	store.Clear(w)

	for _, c := range w.Result().Cookies() {
		if c.MaxAge >= 0 {
			t.Errorf("cookie %s not expired on Clear", c.Name)
		}
	}
}
