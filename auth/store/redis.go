package store

import (
	"context"
	"encoding/json"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"time"
)

// DefaultRedisKey is the key used by New for redis URLs.
const DefaultRedisKey = "simon:credential"

// RedisStore keeps the credential in redis so that several client processes
// acting for one user share it.
type RedisStore struct {
	client  redis.Cmdable
	key     string
	ttl     time.Duration
	timeout time.Duration
}

// RedisOption customises RedisStore.
type RedisOption func(*RedisStore)

// WithRedisKey overrides DefaultRedisKey.
func WithRedisKey(key string) RedisOption {
	return func(s *RedisStore) {
		s.key = key
	}
}

// WithRedisTTL expires the stored credential after ttl (0 keeps it until cleared).
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// NewRedisStore creates a store backed by client.
func NewRedisStore(client redis.Cmdable, options ...RedisOption) *RedisStore {
	ret := &RedisStore{client: client, key: DefaultRedisKey, timeout: 5 * time.Second}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

func (s *RedisStore) LookupToken() (*oauth2.Token, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		return nil, false
	}
	token := &oauth2.Token{}
	if err = json.Unmarshal(data, token); err != nil || isEmpty(token) {
		return nil, false
	}
	return token, true
}

func (s *RedisStore) AddToken(token *oauth2.Token) error {
	if isEmpty(token) {
		return s.ClearToken()
	}
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Set(ctx, s.key, data, s.ttl).Err()
}

func (s *RedisStore) ClearToken() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Del(ctx, s.key).Err()
}
