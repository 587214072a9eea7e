package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrTokenNotFound = errors.New("invalid or expired token")

// TokenStore holds one-time magic-link tokens.
type TokenStore interface {
	Put(ctx context.Context, token, email string, ttl time.Duration) error
	// Take returns the email for token and removes it.
	Take(ctx context.Context, token string) (string, error)
}

type pendingToken struct {
	email     string
	expiresAt time.Time
}

type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]pendingToken
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]pendingToken)}
}

func (s *MemoryTokenStore) Put(_ context.Context, token, email string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = pendingToken{email: email, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryTokenStore) Take(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pt, ok := s.tokens[token]
	if !ok {
		return "", ErrTokenNotFound
	}
	delete(s.tokens, token)
	if time.Now().After(pt.expiresAt) {
		return "", ErrTokenNotFound
	}
	return pt.email, nil
}

// RedisTokenStore shares tokens between server instances.
type RedisTokenStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisTokenStore(rdb *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{rdb: rdb, prefix: "kanban:magic:"}
}

func (s *RedisTokenStore) Put(ctx context.Context, token, email string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, s.prefix+token, email, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) Take(ctx context.Context, token string) (string, error) {
	email, err := s.rdb.GetDel(ctx, s.prefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return email, nil
}
