// Package favorites keeps the user's favorite movies and books as one JSON
// list in a client-local key/value store.
package favorites

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// Key is the storage key the whole list is saved under.
const Key = "moodmovie_favorites"

const lockTimeout = 5 * time.Second

var errNoStorage = errors.New("favorites storage is not available")

// Toggled is the outcome of Toggle.
type Toggled string

const (
	Added   Toggled = "added"
	Removed Toggled = "removed"
)

// Locker serializes writers across processes. lock.FileLock satisfies it.
type Locker interface {
	WithLock(ctx context.Context, key string, timeout time.Duration, fn func() error) error
}

// Store reads and writes the favorites list. All writes are a full
// read-modify-write of the list under a mutex, and under the Locker when one
// is set.
type Store struct {
	storage Storage
	locker  Locker
	logger  *slog.Logger
	mu      sync.Mutex
}

type Option func(*Store)

// WithLocker makes writes also hold a cross-process lock.
func WithLocker(l Locker) Option {
	return func(s *Store) { s.locker = l }
}

// NewStore returns a Store over storage. A nil storage behaves as an
// unavailable one: reads are empty and writes fail.
func NewStore(storage Storage, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{storage: storage, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the favorites in insertion order. Missing, unreadable or
// corrupt data yields an empty list; the cause is logged.
func (s *Store) Get(ctx context.Context) []Entry {
	if s.storage == nil {
		return []Entry{}
	}
	entries, err := s.load(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to read favorites", slog.Any("error", err))
		return []Entry{}
	}
	return entries
}

func (s *Store) IsFavorite(ctx context.Context, id int) bool {
	return slices.ContainsFunc(s.Get(ctx), func(e Entry) bool { return e.ID == id })
}

// Toggle removes the entry with e's id if present, otherwise appends e.
func (s *Store) Toggle(ctx context.Context, e Entry) (Toggled, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	var result Toggled
	err := s.update(ctx, func(entries []Entry) []Entry {
		if i := indexOf(entries, e.ID); i >= 0 {
			result = Removed
			return slices.Delete(entries, i, i+1)
		}
		result = Added
		return append(entries, e)
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

// Add appends e unless an entry with its id already exists.
func (s *Store) Add(ctx context.Context, e Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	return s.update(ctx, func(entries []Entry) []Entry {
		if indexOf(entries, e.ID) >= 0 {
			return entries
		}
		return append(entries, e)
	})
}

// Remove drops the entry with id, if any.
func (s *Store) Remove(ctx context.Context, id int) error {
	return s.update(ctx, func(entries []Entry) []Entry {
		return slices.DeleteFunc(entries, func(e Entry) bool { return e.ID == id })
	})
}

// Clear deletes the stored list.
func (s *Store) Clear(ctx context.Context) error {
	if s.storage == nil {
		return errNoStorage
	}
	return s.locked(ctx, func() error {
		if err := s.storage.Delete(ctx, Key); err != nil {
			return fmt.Errorf("failed to clear favorites: %w", err)
		}
		return nil
	})
}

// update is the single read-modify-write path every mutation goes through.
// Corrupt stored data is replaced; a storage read failure aborts the write so
// a transient error never wipes the list.
func (s *Store) update(ctx context.Context, fn func([]Entry) []Entry) error {
	if s.storage == nil {
		return errNoStorage
	}
	return s.locked(ctx, func() error {
		entries, err := s.load(ctx)
		if err != nil {
			if !isCorrupt(err) {
				return err
			}
			s.logger.WarnContext(ctx, "Discarding unreadable favorites", slog.Any("error", err))
			entries = []Entry{}
		}

		data, err := json.Marshal(fn(entries))
		if err != nil {
			return fmt.Errorf("failed to encode favorites: %w", err)
		}
		if err := s.storage.Set(ctx, Key, string(data)); err != nil {
			return fmt.Errorf("failed to save favorites: %w", err)
		}
		return nil
	})
}

func (s *Store) locked(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locker == nil {
		return fn()
	}
	return s.locker.WithLock(ctx, Key, lockTimeout, fn)
}

type corruptError struct{ err error }

func (e *corruptError) Error() string { return "failed to parse favorites: " + e.err.Error() }
func (e *corruptError) Unwrap() error { return e.err }

func isCorrupt(err error) bool {
	var ce *corruptError
	return errors.As(err, &ce)
}

func (s *Store) load(ctx context.Context) ([]Entry, error) {
	raw, ok, err := s.storage.Get(ctx, Key)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []Entry{}, nil
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, &corruptError{err: err}
	}
	if entries == nil {
		entries = []Entry{}
	}
	return dedupe(entries), nil
}

// dedupe keeps the first entry for each id, so a hand-edited store can't
// break the one-entry-per-id rule.
func dedupe(entries []Entry) []Entry {
	seen := make(map[int]struct{}, len(entries))
	out := entries[:0]
	for _, e := range entries {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}

func indexOf(entries []Entry, id int) int {
	return slices.IndexFunc(entries, func(e Entry) bool { return e.ID == id })
}
