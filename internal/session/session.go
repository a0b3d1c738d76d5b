// Package session holds the authenticated state shared between the
// dashboard and the HTTP gateway.
package session

import (
	"errors"
	"fmt"
	"sync"
)

// User is the account behind a session
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// TokenStore persists access tokens between runs
type TokenStore interface {
	GetSecret(key string) (string, error)
	SetSecret(key, value string) error
	DeleteSecret(key string) error
}

// ErrNoToken is returned by Restore when nothing was persisted
var ErrNoToken = errors.New("no stored session")

// Session is created on login and torn down on logout. It is safe for
// concurrent use; gateway requests read the token from command goroutines.
type Session struct {
	mu      sync.RWMutex
	profile string
	token   string
	user    *User
	store   TokenStore
}

// New creates an empty session for a backend profile. store may be nil,
// in which case tokens live only in memory.
func New(profile string, store TokenStore) *Session {
	return &Session{profile: profile, store: store}
}

func (s *Session) storeKey() string {
	return "token:" + s.profile
}

// Profile returns the backend profile name
func (s *Session) Profile() string {
	return s.profile
}

// Restore loads a persisted token
func (s *Session) Restore() error {
	if s.store == nil {
		return ErrNoToken
	}
	token, err := s.store.GetSecret(s.storeKey())
	if err != nil || token == "" {
		return ErrNoToken
	}

	s.mu.Lock()
	s.token = token
	s.user = nil
	s.mu.Unlock()
	return nil
}

// Begin starts a session with a freshly issued token and persists it
func (s *Session) Begin(token string) error {
	if token == "" {
		return fmt.Errorf("session: empty access token")
	}

	s.mu.Lock()
	s.token = token
	s.user = nil
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.SetSecret(s.storeKey(), token); err != nil {
			return fmt.Errorf("session: persist token: %w", err)
		}
	}
	return nil
}

// SetUser records the account the token belongs to
func (s *Session) SetUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
}

// Token returns the bearer token, or "" when logged out
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the authenticated user, if known
func (s *Session) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// Active reports whether a token is held
func (s *Session) Active() bool {
	return s.Token() != ""
}

// End clears the session and the persisted token
func (s *Session) End() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	return s.store.DeleteSecret(s.storeKey())
}
