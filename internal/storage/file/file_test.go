package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/holocron/internal/shared"
)

func TestSlot(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates Directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "slots")
		if _, err := NewSlot(dir); err != nil {
			t.Fatalf("NewSlot failed: %v", err)
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("expected directory %s to exist", dir)
		}
	})

	t.Run("Missing Key", func(t *testing.T) {
		s, _ := NewSlot(t.TempDir())
		if _, err := s.Load(ctx, "favorites"); !errors.Is(err, shared.ErrSlotNotFound) {
			t.Errorf("expected ErrSlotNotFound, got %v", err)
		}
	})

	t.Run("Save Replaces Atomically", func(t *testing.T) {
		dir := t.TempDir()
		s, _ := NewSlot(dir)

		if err := s.Save(ctx, "favorites", []byte(`[{"url":"people/1"}]`)); err != nil {
			t.Fatalf("first save failed: %v", err)
		}
		if err := s.Save(ctx, "favorites", []byte(`[]`)); err != nil {
			t.Fatalf("second save failed: %v", err)
		}

		got, err := s.Load(ctx, "favorites")
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if string(got) != "[]" {
			t.Errorf("expected latest value, got %q", got)
		}

		if _, err := os.Stat(filepath.Join(dir, "favorites.json.tmp")); !os.IsNotExist(err) {
			t.Error("temporary file should not remain after save")
		}
	})

	t.Run("Rejects Path Keys", func(t *testing.T) {
		s, _ := NewSlot(t.TempDir())
		for _, key := range []string{"", "../escape", "a/b", ".hidden"} {
			if err := s.Save(ctx, key, []byte("[]")); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("key %q: expected ErrInvalidInput, got %v", key, err)
			}
		}
	})

	t.Run("Delete", func(t *testing.T) {
		s, _ := NewSlot(t.TempDir())
		_ = s.Save(ctx, "favorites", []byte("[]"))

		if err := s.Delete(ctx, "favorites"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if err := s.Delete(ctx, "favorites"); err != nil {
			t.Errorf("deleting a missing key should succeed, got %v", err)
		}
		if _, err := s.Load(ctx, "favorites"); !errors.Is(err, shared.ErrSlotNotFound) {
			t.Errorf("expected ErrSlotNotFound after delete, got %v", err)
		}
	})
}
