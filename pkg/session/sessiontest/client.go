// Package sessiontest provides a scriptable in-memory session client for
// tests and simulators.
package sessiontest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wakeguard/wakeguard-go/pkg/session"
)

// Client is a fake session.Client whose behavior is scripted per call.
type Client struct {
	mu sync.Mutex

	// FailRefreshes makes the next N RefreshSession calls fail.
	failRefreshes int

	// failWith is the error returned for scripted failures.
	failWith error

	// TTL applied to sessions minted by RefreshSession.
	ttl time.Duration

	current *session.Session

	refreshCalls int
	getCalls     int
	signOutCalls int
	localSignOut bool
}

// NewClient creates a fake client with a signed-in session.
func NewClient() *Client {
	c := &Client{
		ttl:      time.Hour,
		failWith: errors.New("refresh unavailable"),
	}
	c.current = c.mint()
	return c
}

func (c *Client) mint() *session.Session {
	return &session.Session{
		ID:           uuid.New(),
		UserID:       "test-user",
		AccessToken:  uuid.New().String(),
		RefreshToken: uuid.New().String(),
		ExpiresAt:    time.Now().Add(c.ttl),
	}
}

// FailNextRefreshes scripts the next n RefreshSession calls to fail with err.
// A nil err selects a generic failure.
func (c *Client) FailNextRefreshes(n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failRefreshes = n
	if err != nil {
		c.failWith = err
	}
}

// RefreshSession implements session.Client.
func (c *Client) RefreshSession(ctx context.Context) (*session.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.refreshCalls++
	if c.failRefreshes > 0 {
		c.failRefreshes--
		return nil, c.failWith
	}

	c.current = c.mint()
	return c.current, nil
}

// GetSession implements session.Client.
func (c *Client) GetSession(ctx context.Context) (*session.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.getCalls++
	return c.current, nil
}

// SignOut implements session.Client.
func (c *Client) SignOut(ctx context.Context, localOnly bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.signOutCalls++
	c.localSignOut = localOnly
	c.current = nil
	return nil
}

// RefreshCalls returns how many times RefreshSession was invoked.
func (c *Client) RefreshCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshCalls
}

// SignOutCalls returns how many times SignOut was invoked.
func (c *Client) SignOutCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signOutCalls
}

// LastSignOutLocal reports whether the most recent SignOut was local-only.
func (c *Client) LastSignOutLocal() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.localSignOut
}

// Current returns the client's current session (nil when signed out).
func (c *Client) Current() *session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Compile-time interface satisfaction check.
var _ session.Client = (*Client)(nil)
