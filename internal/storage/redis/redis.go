// Package redis stores slots as plain redis strings, for favorites shared between machines.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/holocron/internal/shared"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces slot keys.
const DefaultPrefix = "holocron:slot:"

const pingTimeout = 3 * time.Second

// Slot maps each key to a single string value. Save is one SET, so replacement is atomic.
type Slot struct {
	client *redis.Client
	prefix string
}

// Connect dials redis and verifies the connection with a ping.
func Connect(ctx context.Context, cfg shared.RedisConfig) (*Slot, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: redis at %s: %v", shared.ErrServiceUnavailable, cfg.Addr, err)
	}
	return NewSlot(client, cfg.Prefix), nil
}

// NewSlot wraps an existing client. An empty prefix means [DefaultPrefix].
func NewSlot(client *redis.Client, prefix string) *Slot {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Slot{client: client, prefix: prefix}
}

// Key returns the redis key for a slot name.
func (s *Slot) Key(key string) string {
	return s.prefix + key
}

func (s *Slot) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.Key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", shared.ErrSlotNotFound, key)
		}
		return nil, fmt.Errorf("failed to get slot %s: %w", key, err)
	}
	return data, nil
}

func (s *Slot) Save(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.Key(key), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save slot %s: %w", key, err)
	}
	return nil
}

func (s *Slot) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.Key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete slot %s: %w", key, err)
	}
	return nil
}

func (s *Slot) Close() error {
	return s.client.Close()
}
