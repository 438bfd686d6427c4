package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/holocron/internal/shared"
)

// SlotInfo describes a stored slot without its value.
type SlotInfo struct {
	Key       string
	Size      int
	UpdatedAt time.Time
}

// SlotRepository persists slots in the "slots" table.
type SlotRepository struct {
	db     *sql.DB
	ownsDB bool
}

// NewSlotRepository creates a new [SlotRepository] with the given database connection.
// The caller keeps ownership of db.
func NewSlotRepository(db *sql.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// OpenSlotRepository opens the database at cfg.Path, applies migrations and returns a repository
// that closes the database on [SlotRepository.Close].
func OpenSlotRepository(ctx context.Context, cfg shared.DatabaseConfig) (*SlotRepository, error) {
	db, err := shared.NewDatabase(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	if cfg.MaxOpenConns > 0 {
		shared.ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)
	}

	if err := shared.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &SlotRepository{db: db, ownsDB: true}, nil
}

// Load returns the value stored under key, or [shared.ErrSlotNotFound].
func (r *SlotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM slots WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSlotNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query slot: %w", err)
	}
	return []byte(value), nil
}

// Save replaces the value under key in a single transaction.
func (r *SlotRepository) Save(ctx context.Context, key string, data []byte) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO slots (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := tx.ExecContext(ctx, query, key, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to upsert slot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit slot transaction: %w", err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *SlotRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM slots WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	return nil
}

// List returns every slot ordered by key.
func (r *SlotRepository) List(ctx context.Context) ([]SlotInfo, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT key, length(value), updated_at FROM slots ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to query slots: %w", err)
	}
	defer rows.Close()

	var slots []SlotInfo
	for rows.Next() {
		var info SlotInfo
		if err := rows.Scan(&info.Key, &info.Size, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, info)
	}
	return slots, rows.Err()
}

// Close closes the database when the repository opened it.
func (r *SlotRepository) Close() error {
	if r.ownsDB {
		return r.db.Close()
	}
	return nil
}
