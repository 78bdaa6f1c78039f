package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/leadwizard/pkg/domain"
)

type session struct {
	fields    map[string]string
	expiresAt time.Time
}

func (s *session) expired(now time.Time) bool {
	return !s.expiresAt.IsZero() && now.After(s.expiresAt)
}

// SessionStore implements ports.SessionStore in memory.
// Safe for concurrent use. Expired sessions are evicted when touched, and a write
// sweeps out every expired session at most once per TTL period.
type SessionStore struct {
	data      map[string]*session
	ttl       time.Duration
	now       func() time.Time
	nextSweep time.Time
	mu        sync.RWMutex
}

type Option func(*SessionStore)

// WithTTL sets the expiration applied when a session is created.
func WithTTL(ttl time.Duration) Option {
	return func(s *SessionStore) {
		s.ttl = ttl
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *SessionStore) {
		s.now = now
	}
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore(opts ...Option) *SessionStore {
	s := &SessionStore{
		data: make(map[string]*session),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// evict drops the session if it is still expired.
func (s *SessionStore) evict(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A concurrent SetField may have recreated it.
	if sess, ok := s.data[sessionID]; ok && sess.expired(s.now()) {
		delete(s.data, sessionID)
	}
}

// GetField reads one field of the session.
func (s *SessionStore) GetField(ctx context.Context, sessionID, field string) (string, bool, error) {
	s.mu.RLock()
	sess, ok := s.data[sessionID]
	if ok && !sess.expired(s.now()) {
		val, found := sess.fields[field]
		s.mu.RUnlock()
		return val, found, nil
	}
	s.mu.RUnlock()

	if ok {
		s.evict(sessionID)
	}
	return "", false, nil
}

// SetField writes one field, creating the session when needed.
func (s *SessionStore) SetField(ctx context.Context, sessionID, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	sess, ok := s.data[sessionID]
	if !ok || sess.expired(now) {
		sess = &session{fields: make(map[string]string)}
		if s.ttl > 0 {
			sess.expiresAt = now.Add(s.ttl)
		}
		s.data[sessionID] = sess
	}
	sess.fields[field] = value
	return nil
}

// sweep drops expired sessions once per TTL period. Caller holds the write lock.
func (s *SessionStore) sweep(now time.Time) {
	if s.ttl <= 0 || now.Before(s.nextSweep) {
		return
	}
	for id, sess := range s.data {
		if sess.expired(now) {
			delete(s.data, id)
		}
	}
	s.nextSweep = now.Add(s.ttl)
}

// GetAllAnswers returns a copy of the answers:* fields, without the prefix.
func (s *SessionStore) GetAllAnswers(ctx context.Context, sessionID string) (map[string]string, error) {
	answers := make(map[string]string)

	s.mu.RLock()
	sess, ok := s.data[sessionID]
	if ok && !sess.expired(s.now()) {
		for field, value := range sess.fields {
			if key, ok := domain.AnswerKeyFromField(field); ok {
				answers[key] = value
			}
		}
		s.mu.RUnlock()
		return answers, nil
	}
	s.mu.RUnlock()

	if ok {
		s.evict(sessionID)
	}
	return answers, nil
}

// Delete removes the session.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}
