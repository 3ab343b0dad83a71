package kv

import (
	"context"
	"errors"

	redispkg "github.com/rahulmenon/billstack-backend/pkg/redis"
)

// RedisStore implements Store on the shared redis client. Used when the queue
// should survive host replacement rather than just process restarts.
type RedisStore struct {
	client *redispkg.Client
}

func NewRedisStore(client *redispkg.Client) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("kv: redis client is required")
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.client.QueueKey(key))
	if err != nil {
		if errors.Is(err, redispkg.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (s *RedisStore) SetItem(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.client.QueueKey(key), value, 0)
}

func (s *RedisStore) RemoveItem(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.client.QueueKey(key))
}
