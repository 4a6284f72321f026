// Package session stores GitHub credentials between CLI runs.
//
// "stargraph github login" runs the device flow and saves the token with
// the account it belongs to; later commands read it when GITHUB_TOKEN is
// not set.
//
// # Usage
//
//	store, err := session.NewCLIStore("")
//	sess, err := session.New(token.AccessToken, viewer, session.DefaultTTL)
//	err = store.SaveSession(ctx, sess)
//
//	sess, err = store.GetSession(ctx) // nil, nil when logged out or expired
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/stargraph/pkg/integrations/github"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("session not found")

// DefaultTTL is how long a stored login stays valid. GitHub device-flow
// tokens do not expire on their own; the TTL only forces a periodic
// re-login.
const DefaultTTL = 30 * 24 * time.Hour

// Session stores an access token and the account it belongs to.
type Session struct {
	ID          string         `json:"id"`
	AccessToken string         `json:"access_token"`
	User        *github.Viewer `json:"user"`
	ExpiresAt   time.Time      `json:"expires_at"`
	CreatedAt   time.Time      `json:"created_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// UserID returns "github:<node id>", or "" without a user.
func (s *Session) UserID() string {
	if s == nil || s.User == nil {
		return ""
	}
	return fmt.Sprintf("github:%s", s.User.NodeID)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID. It returns nil, nil if the session
	// doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error
}

// New creates a session with a random id.
func New(accessToken string, user *github.Viewer, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:          uuid.NewString(),
		AccessToken: accessToken,
		User:        user,
		ExpiresAt:   now.Add(ttl),
		CreatedAt:   now,
	}
}
