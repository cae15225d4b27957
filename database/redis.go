package database

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisTimeout = 2 * time.Second

// RedisMedium keeps all items of one namespace in a single Redis hash.
type RedisMedium struct {
	client  *redis.Client
	hash    string
	timeout time.Duration
}

// NewRedisMedium returns a medium backed by the hash "zenboard:<namespace>".
func NewRedisMedium(client *redis.Client, namespace string, timeout time.Duration) *RedisMedium {
	if namespace == "" {
		namespace = "default"
	}
	if timeout <= 0 {
		timeout = defaultRedisTimeout
	}
	return &RedisMedium{
		client:  client,
		hash:    "zenboard:" + namespace,
		timeout: timeout,
	}
}

func (r *RedisMedium) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}

func (r *RedisMedium) GetItem(key string) (string, bool, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	value, err := r.client.HGet(ctx, r.hash, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read item: %w", err)
	}
	return value, true, nil
}

func (r *RedisMedium) SetItem(key, value string) error {
	ctx, cancel := r.ctx()
	defer cancel()

	if err := r.client.HSet(ctx, r.hash, key, value).Err(); err != nil {
		return fmt.Errorf("failed to write item: %w", err)
	}
	return nil
}

func (r *RedisMedium) RemoveItem(key string) error {
	ctx, cancel := r.ctx()
	defer cancel()

	if err := r.client.HDel(ctx, r.hash, key).Err(); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

func (r *RedisMedium) Clear() error {
	ctx, cancel := r.ctx()
	defer cancel()

	if err := r.client.Del(ctx, r.hash).Err(); err != nil {
		return fmt.Errorf("failed to clear items: %w", err)
	}
	return nil
}

func (r *RedisMedium) Len() (int, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	n, err := r.client.HLen(ctx, r.hash).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return int(n), nil
}

func (r *RedisMedium) Key(index int) (string, bool, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	keys, err := r.client.HKeys(ctx, r.hash).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to list keys: %w", err)
	}
	if index < 0 || index >= len(keys) {
		return "", false, nil
	}
	slices.Sort(keys)
	return keys[index], true, nil
}
