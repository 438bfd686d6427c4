// Package storage opens the durable slot backend selected in the config.
package storage

import (
	"context"
	"fmt"

	"github.com/desertthunder/holocron/internal/favorites"
	"github.com/desertthunder/holocron/internal/repositories"
	"github.com/desertthunder/holocron/internal/shared"
	"github.com/desertthunder/holocron/internal/storage/file"
	"github.com/desertthunder/holocron/internal/storage/memory"
	"github.com/desertthunder/holocron/internal/storage/redis"
)

// Slot is a [favorites.Storage] that can also drop keys and release its connection.
type Slot interface {
	favorites.Storage
	Delete(ctx context.Context, key string) error
	Close() error
}

var (
	_ Slot = (*repositories.SlotRepository)(nil)
	_ Slot = (*file.Slot)(nil)
	_ Slot = (*memory.Slot)(nil)
	_ Slot = (*redis.Slot)(nil)
)

// Open returns the backend named by cfg.Storage.Backend.
func Open(ctx context.Context, cfg *shared.Config) (Slot, error) {
	var (
		slot Slot
		err  error
	)

	switch cfg.Storage.Backend {
	case shared.BackendSQLite, "":
		slot, err = openSQLite(ctx, cfg.Database)
	case shared.BackendFile:
		slot, err = openFile(cfg.Storage.Dir)
	case shared.BackendRedis:
		slot, err = openRedis(ctx, cfg.Redis)
	case shared.BackendMemory:
		slot = memory.NewSlot()
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", shared.ErrInvalidConfig, cfg.Storage.Backend)
	}
	if err != nil {
		return nil, err
	}
	return slot, nil
}

// The helpers below keep a failed open from returning a typed nil inside a non-nil Slot.

func openSQLite(ctx context.Context, cfg shared.DatabaseConfig) (Slot, error) {
	repo, err := repositories.OpenSlotRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func openFile(dir string) (Slot, error) {
	slot, err := file.NewSlot(dir)
	if err != nil {
		return nil, err
	}
	return slot, nil
}

func openRedis(ctx context.Context, cfg shared.RedisConfig) (Slot, error) {
	slot, err := redis.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return slot, nil
}
