// Package memory provides a process-local slot store for tests and ephemeral runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/holocron/internal/shared"
)

// Slot keeps values in a map. Stored bytes are copied in both directions.
type Slot struct {
	lock sync.Mutex
	data map[string][]byte
}

func NewSlot() *Slot {
	return &Slot{data: make(map[string][]byte)}
}

func (s *Slot) Save(_ context.Context, key string, data []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.data[key] = append([]byte(nil), data...)
	return nil
}

func (s *Slot) Load(_ context.Context, key string) ([]byte, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	val, exist := s.data[key]
	if !exist {
		return nil, fmt.Errorf("%w: %s", shared.ErrSlotNotFound, key)
	}
	return append([]byte(nil), val...), nil
}

func (s *Slot) Delete(_ context.Context, key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.data, key)
	return nil
}

// Keys returns the stored keys in no particular order.
func (s *Slot) Keys() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

func (s *Slot) Close() error {
	return nil
}
