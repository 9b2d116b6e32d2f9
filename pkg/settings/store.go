package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Store holds the current settings and writes them through to a Storage.
type Store struct {
	mu      sync.RWMutex
	flushMu sync.Mutex
	storage Storage
	log     *slog.Logger
	current Settings
}

// Open creates a Store and loads the persisted blob once. A missing key, a
// storage read error or an unparsable blob leaves the defaults in place; the
// failure is logged, never returned.
func Open(ctx context.Context, storage Storage, log *slog.Logger) *Store {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	s := &Store{storage: storage, log: log}
	s.current = s.load(ctx)

	return s
}

func (s *Store) load(ctx context.Context) Settings {
	var defaults Settings

	raw, ok, err := s.storage.GetItem(ctx, StorageKey)
	if err != nil {
		s.log.Warn("settings: load failed, using defaults", "error", err)
		return defaults
	}
	if !ok {
		s.log.Debug("settings: nothing stored, using defaults")
		return defaults
	}

	// Decoding into a copy of the defaults is a shallow merge: keys absent
	// from the blob keep their default value.
	merged := defaults
	if err := json.Unmarshal([]byte(raw), &merged); err != nil {
		s.log.Warn("settings: stored blob is not valid JSON, using defaults", "error", err)
		return defaults
	}

	return merged
}

// Current returns a snapshot of the settings.
func (s *Store) Current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current
}

// Set merges a single field into the settings and immediately persists the
// full object. The in-memory value is updated even if persisting fails; the
// error is returned.
func (s *Store) Set(ctx context.Context, f Field, value string) error {
	s.Stage(f, value)
	return s.Flush(ctx)
}

// Stage merges a single field into the in-memory settings without persisting
// and returns the result. A Flush must follow.
func (s *Store) Stage(f Field, value string) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = s.current.With(f, value)

	return s.current
}

// Save replaces the settings and persists them.
func (s *Store) Save(ctx context.Context, next Settings) error {
	s.mu.Lock()
	s.current = next
	s.mu.Unlock()

	return s.Flush(ctx)
}

// Flush writes the current settings to storage. Flushes are serialized and
// each one takes its snapshot under the lock, so the last flush to finish
// always stores the latest settings.
func (s *Store) Flush(ctx context.Context) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	data, err := json.Marshal(s.Current())
	if err != nil {
		return fmt.Errorf("settings: marshal: %w", err)
	}

	if err := s.storage.SetItem(ctx, StorageKey, string(data)); err != nil {
		return fmt.Errorf("settings: save: %w", err)
	}

	return nil
}
