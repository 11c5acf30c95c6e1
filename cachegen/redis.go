package cachegen

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares entries, and the generation counter, across every
// instance pointed at the same Redis. Keys are prefixed with the namespace.
type RedisStore struct {
	rdb redis.UniversalClient
	ns  string
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client redis.UniversalClient, namespace string) *RedisStore {
	return &RedisStore{rdb: client, ns: namespace}
}

func (s *RedisStore) key(k string) string {
	if s.ns == "" {
		return k
	}
	return s.ns + ":" + k
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, s.key(key), val, ttl).Err()
}

func (s *RedisStore) Add(ctx context.Context, key string, val []byte, ttl time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, s.key(key), val, ttl).Result()
}

func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.rdb.Incr(ctx, s.key(key)).Result()
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error { return s.rdb.Close() }
