// Package file stores slots as JSON documents under a directory, one file per key.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/holocron/internal/shared"
)

// Slot writes <dir>/<key>.json. Writes go to a temporary file that is
// synced and renamed over the target, so readers see the old or the new value.
type Slot struct {
	dir string
}

// NewSlot creates dir if needed.
func NewSlot(dir string) (*Slot, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating slot directory %s: %v", shared.ErrStorageWrite, dir, err)
	}
	return &Slot{dir: dir}, nil
}

// Path returns the file backing key.
func (s *Slot) Path(key string) (string, error) {
	if key == "" || key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("%w: invalid slot key %q", shared.ErrInvalidInput, key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

func (s *Slot) Load(_ context.Context, key string) ([]byte, error) {
	path, err := s.Path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSlotNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("reading slot file %s: %w", path, err)
	}
	return data, nil
}

func (s *Slot) Save(_ context.Context, key string, data []byte) error {
	path, err := s.Path(key)
	if err != nil {
		return err
	}

	temporaryPath := path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating temporary slot file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary slot file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary slot file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary slot file: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming slot file into place: %w", err)
	}
	return nil
}

func (s *Slot) Delete(_ context.Context, key string) error {
	path, err := s.Path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing slot file %s: %w", path, err)
	}
	return nil
}

func (s *Slot) Close() error {
	return nil
}
