package favorites

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/holocron/internal/models"
	"github.com/desertthunder/holocron/internal/shared"
)

// DefaultKey is the slot name favorites are stored under.
const DefaultKey = "favorites"

// Storage is a durable key/value slot holding whole serialized documents.
//
// Load returns [shared.ErrSlotNotFound] (possibly wrapped) when key was never written.
// Save must replace the value atomically.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Listener receives the collection after a mutation. It must not call Toggle or Clear.
type Listener func(models.Collection)

// Options configures a [Store].
type Options struct {
	Key            string
	Logger         *log.Logger
	OnPersistError func(error)
}

// Store is the favorites state shared by all consumers.
type Store struct {
	storage Storage
	key     string
	logger  *log.Logger
	onError func(error)

	// opMu orders whole operations: mutate, persist, notify.
	opMu sync.Mutex

	mu    sync.RWMutex
	items models.Collection
	ready bool
	dirty bool

	listenerMu sync.Mutex
	listeners  []*subscription
}

type subscription struct {
	fn Listener
}

// NewStore creates an empty, not yet initialized store over storage.
func NewStore(storage Storage, opts Options) *Store {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Store{
		storage: storage,
		key:     opts.Key,
		logger:  shared.WithLogger(opts.Logger, "component", "favorites"),
		onError: opts.OnPersistError,
		items:   models.Collection{},
	}
}

// Initialize loads the collection from storage. Only the first call has any effect.
//
// A missing or unparseable slot yields an empty collection and nothing is written back.
// When a mutation already happened, the loaded value is discarded so the earlier mutation wins.
func (s *Store) Initialize(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	ready, dirty := s.ready, s.dirty
	s.mu.RUnlock()
	if ready {
		return
	}

	if dirty {
		s.logger.Debug("favorites mutated before initialize; keeping in-memory state")
		s.mu.Lock()
		s.ready = true
		s.mu.Unlock()
		return
	}

	loaded := s.load(ctx)

	s.mu.Lock()
	s.items = loaded
	s.ready = true
	s.mu.Unlock()

	s.logger.Debug("favorites loaded", "key", s.key, "count", len(loaded))
	s.notify(loaded)
}

func (s *Store) load(ctx context.Context) models.Collection {
	data, err := s.storage.Load(ctx, s.key)
	switch {
	case errors.Is(err, shared.ErrSlotNotFound):
		s.logger.Debug("no stored favorites", "key", s.key)
		return models.Collection{}
	case err != nil:
		s.logger.Warn("failed to read favorites", "key", s.key, "err", fmt.Errorf("%w: %v", shared.ErrStorageRead, err))
		return models.Collection{}
	}

	items, err := models.DecodeCollection(data)
	if err != nil {
		s.logger.Warn("discarding unreadable favorites", "key", s.key, "err", err)
		return models.Collection{}
	}
	return items
}

// Ready reports whether Initialize has completed.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Contains reports whether an entity with identity is bookmarked.
func (s *Store) Contains(identity string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items.Contains(identity)
}

// List returns a snapshot of the collection in insertion order.
func (s *Store) List() models.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items.Clone()
}

// Len returns the number of favorites.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Toggle removes e when its identity is present and appends it otherwise, returning whether
// e is a favorite afterwards.
//
// The only error is [shared.ErrInvalidEntity] for an entity without identity, in which case
// nothing changes.
func (s *Store) Toggle(ctx context.Context, e models.Entity) (bool, error) {
	if err := e.Validate(); err != nil {
		return false, err
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	var added bool
	if i := s.items.Index(e.Identity); i >= 0 {
		s.items = append(s.items[:i:i], s.items[i+1:]...)
	} else {
		s.items = append(s.items, e.Clone())
		added = true
	}
	s.dirty = true
	snapshot := s.items.Clone()
	s.mu.Unlock()

	s.logger.Debug("favorite toggled", "identity", e.Identity, "added", added)
	s.persist(ctx, snapshot)
	s.notify(snapshot)
	return added, nil
}

// Clear removes every favorite and persists the empty collection.
func (s *Store) Clear(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	s.items = models.Collection{}
	s.dirty = true
	s.mu.Unlock()

	s.logger.Debug("favorites cleared")
	s.persist(ctx, models.Collection{})
	s.notify(models.Collection{})
}

// persist writes the whole collection. Failures are reported, never returned.
func (s *Store) persist(ctx context.Context, items models.Collection) {
	data, err := items.MarshalJSON()
	if err != nil {
		s.report(fmt.Errorf("%w: failed to encode favorites: %v", shared.ErrStorageWrite, err))
		return
	}

	if err := s.storage.Save(ctx, s.key, data); err != nil {
		s.report(fmt.Errorf("%w: %v", shared.ErrStorageWrite, err))
	}
}

func (s *Store) report(err error) {
	s.logger.Error("favorites may not survive a restart", "key", s.key, "err", err)
	if s.onError != nil {
		s.onError(err)
	}
}

// Subscribe registers fn to run after every mutation and after Initialize loads.
// Listeners run synchronously in registration order. The returned func unsubscribes.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	sub := &subscription{fn: fn}

	s.listenerMu.Lock()
	s.listeners = append(s.listeners, sub)
	s.listenerMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenerMu.Lock()
			defer s.listenerMu.Unlock()
			for i, l := range s.listeners {
				if l == sub {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// notify hands every listener its own copy of items.
func (s *Store) notify(items models.Collection) {
	s.listenerMu.Lock()
	listeners := make([]*subscription, len(s.listeners))
	copy(listeners, s.listeners)
	s.listenerMu.Unlock()

	for _, l := range listeners {
		l.fn(items.Clone())
	}
}
