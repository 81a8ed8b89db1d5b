package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Session errors.
var (
	ErrNoSession      = errors.New("no active session")
	ErrSessionExpired = errors.New("session expired")
)

// Session is an authenticated session with the backend.
type Session struct {
	// ID uniquely identifies the session.
	ID uuid.UUID

	// UserID identifies the authenticated user.
	UserID string

	// AccessToken is the short-lived credential for API calls.
	AccessToken string

	// RefreshToken is the long-lived credential used to obtain new
	// access tokens.
	RefreshToken string

	// ExpiresAt is when the access token expires.
	ExpiresAt time.Time
}

// Valid reports whether the session is usable at the given time.
func (s *Session) Valid(now time.Time) bool {
	if s == nil {
		return false
	}
	return s.AccessToken != "" && now.Before(s.ExpiresAt)
}

// Client is the remote authentication/session service contract.
type Client interface {
	// RefreshSession obtains a new session from the auth service.
	RefreshSession(ctx context.Context) (*Session, error)

	// GetSession returns the current session, or nil with no error when
	// signed out.
	GetSession(ctx context.Context) (*Session, error)

	// SignOut ends the session. With localOnly set, only local state is
	// dropped; the session is not invalidated server-side.
	SignOut(ctx context.Context, localOnly bool) error
}

// AuthError marks a failure as authentication-classified: the session is
// expired, invalid, or revoked, and a refresh may help.
type AuthError struct {
	// Revoked indicates the credential was rejected outright rather
	// than merely expired.
	Revoked bool

	Err error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Revoked {
		return fmt.Sprintf("session revoked: %v", e.Err)
	}
	return fmt.Sprintf("session expired: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *AuthError) Unwrap() error { return e.Err }

// authSignatures are message fragments that mark an error from a foreign
// stack as authentication-classified.
var authSignatures = []string{
	"jwt expired",
	"token expired",
	"token is expired",
	"invalid token",
	"not authenticated",
	"unauthorized",
	"401",
	"session expired",
	"refresh token",
}

// IsAuthError reports whether the error is authentication-classified,
// either by type or by message signature.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	var ae *AuthError
	if errors.As(err, &ae) {
		return true
	}
	if errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrNoSession) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, sig := range authSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}
