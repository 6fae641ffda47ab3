package session

import "time"

// Store persists the raw session token at rest.
type Store interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// Session is the client-side session handle. It implements the TokenSource
// contract of the api and events packages: Token fails when no live token is
// available, so callers surface an auth failure before any remote call.
type Session struct {
	store Store
	now   func() time.Time
}

// New builds a session over the given store.
func New(store Store) *Session {
	return &Session{store: store, now: time.Now}
}

// Token returns the stored token, or an error when absent or expired.
func (s *Session) Token() (string, error) {
	token, err := s.store.Load()
	if err != nil || token == "" {
		return "", ErrNoToken
	}
	if expired(token, s.now()) {
		return "", ErrExpired
	}
	return token, nil
}

// SignIn stores a freshly issued token.
func (s *Session) SignIn(token string) error {
	if _, err := ParseClaims(token); err != nil {
		return err
	}
	return s.store.Save(token)
}

// SignOut drops the stored token.
func (s *Session) SignOut() error {
	return s.store.Clear()
}

// Claims returns the claims of the current token, expired or not.
func (s *Session) Claims() (*Claims, error) {
	token, err := s.store.Load()
	if err != nil || token == "" {
		return nil, ErrNoToken
	}
	return ParseClaims(token)
}
