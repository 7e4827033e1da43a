package oauthstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "oauth:pending:"

// RedisStore backs the registry with redis so the authorization-url request
// and the callback may land on different instances. Expiry is delegated to
// redis; GETDEL keeps Take atomic.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Put(ctx context.Context, requestToken string, p Pending) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	data, err := json.Marshal(p)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if err := s.client.Set(ctx, redisKeyPrefix+requestToken, data, s.ttl).Err(); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (s *RedisStore) Take(ctx context.Context, requestToken string) (*Pending, bool, error) {
	data, err := s.client.GetDel(ctx, redisKeyPrefix+requestToken).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}

	var p Pending
	if err := json.Unmarshal(data, &p); err != nil {
		slog.Info(err.Error())
		return nil, false, err
	}
	return &p, true, nil
}
