package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/feedbackhub/feedback-client/internal/core/ports"
	"github.com/feedbackhub/feedback-client/internal/pkg/tokeninfo"
)

// DefaultKey is used when no key is configured.
const DefaultKey = ports.DefaultTokenKey

// TokenStore keeps the credential token under a single Redis key. Tokens that
// carry an expiry are stored with a matching TTL so Redis drops them on its
// own.
type TokenStore struct {
	client *redis.Client
	key    string
	now    func() time.Time
}

func NewTokenStore(client *redis.Client, key string) *TokenStore {
	if key == "" {
		key = DefaultKey
	}
	return &TokenStore{client: client, key: key, now: time.Now}
}

// Load returns "" when the key does not exist.
func (s *TokenStore) Load(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return token, nil
}

func (s *TokenStore) Save(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, s.ttl(token)).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", s.key, err)
	}
	return nil
}

func (s *TokenStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// ttl is zero (no expiry) for opaque tokens and tokens without exp. Already
// expired tokens still get stored; the backend is the judge of validity.
func (s *TokenStore) ttl(token string) time.Duration {
	claims := tokeninfo.Peek(token)
	if claims.ExpiresAt.IsZero() {
		return 0
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return 0
	}
	return ttl
}
