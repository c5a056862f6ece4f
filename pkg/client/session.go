package client

import (
	"sync"
	"time"
)

// Session is the process-wide bearer-token state with an explicit lifecycle:
// login begins it, a 401 response tears it down, and app boot can restore a
// previously persisted token. Nothing else touches the stored credential.
type Session struct {
	mu         sync.Mutex
	token      string
	expiresAt  time.Time
	persistent bool
	onExpire   func()
}

func NewSession() *Session {
	return &Session{}
}

// Begin installs a freshly issued token. persistent mirrors the "remember me"
// choice so callers know whether to write the token to durable storage.
func (s *Session) Begin(token string, expiresAt time.Time, persistent bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.expiresAt = expiresAt
	s.persistent = persistent
}

// Restore re-installs a persisted token at boot. An already expired token is
// discarded instead.
func (s *Session) Restore(token string, expiresAt time.Time, persistent bool) {
	if !expiresAt.After(time.Now()) {
		return
	}
	s.Begin(token, expiresAt, persistent)
}

// Token returns the credential when the session is live.
func (s *Session) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" || !s.expiresAt.After(time.Now()) {
		return "", false
	}
	return s.token, true
}

func (s *Session) Valid() bool {
	_, ok := s.Token()
	return ok
}

func (s *Session) Persistent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistent
}

// OnExpire registers the re-authentication hook fired when the server answers
// 401.
func (s *Session) OnExpire(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onExpire = fn
}

// Expire clears the credential and fires the expiry hook. Used on 401.
func (s *Session) Expire() {
	s.mu.Lock()
	hook := s.onExpire
	s.token = ""
	s.expiresAt = time.Time{}
	s.persistent = false
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
}

// Clear drops the credential without treating it as an expiry, e.g. on an
// explicit logout.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expiresAt = time.Time{}
	s.persistent = false
}
