// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/holocron/internal/storage/memory"
)

// FaultySlot is an in-memory slot whose reads and writes can be made to fail.
type FaultySlot struct {
	*memory.Slot

	mu      sync.Mutex
	LoadErr error
	SaveErr error
	saves   int
}

func NewFaultySlot() *FaultySlot {
	return &FaultySlot{Slot: memory.NewSlot()}
}

// Seed stores data under key directly, bypassing fault injection.
func (f *FaultySlot) Seed(t *testing.T, key string, data string) {
	t.Helper()
	if err := f.Slot.Save(context.Background(), key, []byte(data)); err != nil {
		t.Fatalf("failed to seed slot %s: %v", key, err)
	}
}

// Value returns the raw stored value, or "" when key is absent.
func (f *FaultySlot) Value(key string) string {
	data, err := f.Slot.Load(context.Background(), key)
	if err != nil {
		return ""
	}
	return string(data)
}

// SetSaveErr changes the write failure at runtime.
func (f *FaultySlot) SetSaveErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SaveErr = err
}

// Saves counts Save calls, failed ones included.
func (f *FaultySlot) Saves() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

func (f *FaultySlot) Load(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	err := f.LoadErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.Slot.Load(ctx, key)
}

func (f *FaultySlot) Save(ctx context.Context, key string, data []byte) error {
	f.mu.Lock()
	f.saves++
	err := f.SaveErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Slot.Save(ctx, key, data)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
