package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/leadwizard/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix is the key namespace for session hashes.
const DefaultPrefix = "ctx:"

// SessionStore implements ports.SessionStore with one Redis hash per session.
type SessionStore struct {
	client backend.UniversalClient
	prefix string
	ttl    time.Duration
}

type Option func(*SessionStore)

// WithTTL sets the expiration applied when a session hash is created.
func WithTTL(ttl time.Duration) Option {
	return func(s *SessionStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for sessions.
func WithPrefix(prefix string) Option {
	return func(s *SessionStore) {
		s.prefix = prefix
	}
}

// New connects to Redis using a redis:// URL.
func New(url string, opts ...Option) (*SessionStore, error) {
	options, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewFromClient(backend.NewClient(options), opts...), nil
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client backend.UniversalClient, opts ...Option) *SessionStore {
	store := &SessionStore{
		client: client,
		prefix: DefaultPrefix,
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *SessionStore) key(sessionID string) string {
	return s.prefix + sessionID
}

// GetField reads one field of the session hash.
func (s *SessionStore) GetField(ctx context.Context, sessionID, field string) (string, bool, error) {
	val, err := s.client.HGet(ctx, s.key(sessionID), field).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return "", false, nil
		}
		return "", false, unavailable("hget", err)
	}
	return val, true, nil
}

// SetField writes one field. The TTL, when configured, is set only when the
// hash did not exist yet, so active sessions keep their original deadline.
func (s *SessionStore) SetField(ctx context.Context, sessionID, field, value string) error {
	key := s.key(sessionID)

	if s.ttl <= 0 {
		if err := s.client.HSet(ctx, key, field, value).Err(); err != nil {
			return unavailable("hset", err)
		}
		return nil
	}

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return unavailable("exists", err)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, field, value)
	if exists == 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return unavailable("hset", err)
	}
	return nil
}

// GetAllAnswers returns the answers:* fields of the session, without the prefix.
func (s *SessionStore) GetAllAnswers(ctx context.Context, sessionID string) (map[string]string, error) {
	fields, err := s.client.HGetAll(ctx, s.key(sessionID)).Result()
	if err != nil {
		return nil, unavailable("hgetall", err)
	}

	answers := make(map[string]string, len(fields))
	for field, value := range fields {
		if key, ok := domain.AnswerKeyFromField(field); ok {
			answers[key] = value
		}
	}
	return answers, nil
}

// Delete removes the session hash.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return unavailable("del", err)
	}
	return nil
}

// Ping checks connectivity.
func (s *SessionStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// Close closes the redis client.
func (s *SessionStore) Close() error {
	return s.client.Close()
}

func unavailable(op string, err error) error {
	return fmt.Errorf("redis %s: %w: %w", op, domain.ErrSessionStoreUnavailable, err)
}
