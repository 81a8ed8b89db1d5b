package session

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSessionValid(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		sess *Session
		want bool
	}{
		{"Nil", nil, false},
		{"Expired", &Session{AccessToken: "tok", ExpiresAt: now.Add(-time.Minute)}, false},
		{"NoToken", &Session{ExpiresAt: now.Add(time.Hour)}, false},
		{"Valid", &Session{AccessToken: "tok", ExpiresAt: now.Add(time.Hour)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sess.Valid(now); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"Nil", nil, false},
		{"Generic", errors.New("connection refused"), false},
		{"AuthErrorType", &AuthError{Err: errors.New("boom")}, true},
		{"WrappedAuthError", fmt.Errorf("call failed: %w", &AuthError{Err: errors.New("x")}), true},
		{"SentinelExpired", ErrSessionExpired, true},
		{"SentinelNoSession", fmt.Errorf("load: %w", ErrNoSession), true},
		{"SignatureJWT", errors.New("JWT expired at 2026-08-30"), true},
		{"SignatureUnauthorized", errors.New("server returned 401 Unauthorized"), true},
		{"SignatureRefreshToken", errors.New("refresh token is invalid"), true},
		{"SignatureCaseInsensitive", errors.New("SESSION EXPIRED"), true},
		{"Timeout", errors.New("context deadline exceeded"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAuthError(tt.err); got != tt.want {
				t.Errorf("IsAuthError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestAuthErrorMessages(t *testing.T) {
	expired := &AuthError{Err: errors.New("boom")}
	if expired.Error() != "session expired: boom" {
		t.Errorf("Error() = %q", expired.Error())
	}

	revoked := &AuthError{Revoked: true, Err: errors.New("boom")}
	if revoked.Error() != "session revoked: boom" {
		t.Errorf("Error() = %q", revoked.Error())
	}

	inner := errors.New("inner")
	if !errors.Is(&AuthError{Err: inner}, inner) {
		t.Error("AuthError does not unwrap to its cause")
	}
}

func TestSessionFields(t *testing.T) {
	id := uuid.New()
	s := &Session{
		ID:          id,
		UserID:      "user-1",
		AccessToken: "tok",
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	if s.ID != id {
		t.Errorf("ID = %v, want %v", s.ID, id)
	}
	if !s.Valid(time.Now()) {
		t.Error("session should be valid")
	}
}
