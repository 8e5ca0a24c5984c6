package cart

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "cart:snapshot:"

// RedisSnapshotStore keeps snapshots as plain string values. A zero ttl keeps them forever.
type RedisSnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSnapshotStore(client *redis.Client, ttl time.Duration) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client, ttl: ttl}
}

func (s *RedisSnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}
	return raw, nil
}

func (s *RedisSnapshotStore) Save(ctx context.Context, key string, raw []byte) error {
	return s.client.Set(ctx, redisKeyPrefix+key, raw, s.ttl).Err()
}

func (s *RedisSnapshotStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, redisKeyPrefix+key).Err()
}
