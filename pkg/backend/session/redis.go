package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "chatgraph:session:"

// RedisStore persists transcripts as JSON blobs in Redis, one key per
// session.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

type RedisOption func(*RedisStore)

// WithTTL sets an expiration on stored sessions. Zero means no expiration.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore connects to the given redis URL
// (redis://[user:pass@]host:port/db).
func NewRedisStore(url string, opts ...RedisOption) (*RedisStore, error) {
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	return NewRedisStoreFromClient(redis.NewClient(options), opts...), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: defaultPrefix,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) ([]Message, bool, error) {
	raw, err := s.client.Get(ctx, s.prefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	var messages []Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, false, fmt.Errorf("corrupt session %s: %w", sessionID, err)
	}

	return messages, true, nil
}

func (s *RedisStore) Put(ctx context.Context, sessionID string, messages []Message) error {
	raw, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", sessionID, err)
	}

	if err := s.client.Set(ctx, s.prefix+sessionID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session %s: %w", sessionID, err)
	}

	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.prefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}

	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
