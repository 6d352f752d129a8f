package bootstrap

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisStorage adapts go-redis to fiber.Storage so the search rate limiter
// counts across instances.
type redisStorage struct {
	rdb    *redis.Client
	prefix string
}

func newRedisStorage(rdb *redis.Client) *redisStorage {
	return &redisStorage{
		rdb:    rdb,
		prefix: "ratelimit:",
	}
}

func (s *redisStorage) Get(key string) ([]byte, error) {
	val, err := s.rdb.Get(context.Background(), s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

func (s *redisStorage) Set(key string, val []byte, exp time.Duration) error {
	return s.rdb.Set(context.Background(), s.prefix+key, val, exp).Err()
}

func (s *redisStorage) Delete(key string) error {
	return s.rdb.Del(context.Background(), s.prefix+key).Err()
}

func (s *redisStorage) Reset() error {
	ctx := context.Background()
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (s *redisStorage) Close() error {
	return s.rdb.Close()
}
