// Package session holds the authenticated identity of the client process.
//
// A Session is an explicit value handed to every component that issues
// requests on the user's behalf. Its context is cancelled on logout, which
// aborts in-flight requests and lets late completions detect that they no
// longer belong to the current session. Exactly one session is active at a
// time; every transition invalidates all state loaded for the previous one.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrEmptyHandle is returned when logging in without a user handle.
	ErrEmptyHandle = errors.New("user handle is required")
	// ErrNoSession is returned when an operation needs an active session.
	ErrNoSession = errors.New("no active session")
	// ErrSessionEnded is returned when a response arrives for a session that
	// is no longer current; the response is dropped.
	ErrSessionEnded = errors.New("session ended")
)

// Session is one authenticated period of use.
type Session struct {
	// ID correlates log lines of one session.
	ID string
	// UserHandle is the account identity (e-mail address).
	UserHandle string
	// StartedAt is the login time.
	StartedAt time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// Context is cancelled when the session ends.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Active reports whether the session has not ended yet.
func (s *Session) Active() bool {
	return s != nil && s.ctx.Err() == nil
}

// Listener is notified of session transitions. SessionEnded implementations
// must reset their state to the initial empty value.
type Listener interface {
	SessionStarted(sess *Session)
	SessionEnded(sess *Session)
}

// Store owns the current session.
type Store struct {
	mu        sync.Mutex
	current   *Session
	listeners []Listener
	log       *zap.Logger
}

// NewStore creates an anonymous store.
func NewStore(log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{log: log}
}

// Subscribe registers a lifecycle listener. Listeners are called in
// registration order, outside the store lock.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Login starts a session for handle. Credentials are validated elsewhere, so
// any non-empty handle succeeds. A running session is ended first.
func (s *Store) Login(handle string) (*Session, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, ErrEmptyHandle
	}

	s.Logout()

	ctx, cancel := context.WithCancel(context.Background())
	sess := &Session{
		ID:         uuid.NewString(),
		UserHandle: handle,
		StartedAt:  time.Now(),
		ctx:        ctx,
		cancel:     cancel,
	}

	s.mu.Lock()
	s.current = sess
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	s.log.Info("session started", zap.String("session", sess.ID), zap.String("user", handle))
	for _, l := range listeners {
		l.SessionStarted(sess)
	}
	return sess, nil
}

// Logout ends the current session, if any. No network call is made.
func (s *Store) Logout() {
	s.mu.Lock()
	sess := s.current
	s.current = nil
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	if sess == nil {
		return
	}
	sess.cancel()

	s.log.Info("session ended", zap.String("session", sess.ID), zap.String("user", sess.UserHandle))
	for _, l := range listeners {
		l.SessionEnded(sess)
	}
}

// Current returns the active session or nil.
func (s *Store) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// IsCurrent reports whether sess is the active session.
func (s *Store) IsCurrent(sess *Session) bool {
	if sess == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current == sess && sess.Active()
}
