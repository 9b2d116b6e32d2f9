package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Storage is a string key-value store with localStorage semantics: values are
// opaque strings and a missing key is not an error.
type Storage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
}

// -----------------------------------------------------------------------
// MemoryStorage
// -----------------------------------------------------------------------

// MemoryStorage keeps items in memory. The zero value is ready to use.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

func (m *MemoryStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]

	return v, ok, nil
}

func (m *MemoryStorage) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		m.data = make(map[string]string)
	}
	m.data[key] = value

	return nil
}

// -----------------------------------------------------------------------
// FileStorage
// -----------------------------------------------------------------------

// FileStorage persists items as a single JSON object of key → string. Every
// SetItem rereads the file so that concurrent processes end up
// last-write-wins per key, and writes through a temp file + rename.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

// NewFileStorage creates a FileStorage backed by path. The file is created on
// the first write.
func NewFileStorage(path string) (*FileStorage, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("settings: resolve path: %w", err)
	}

	return &FileStorage{path: abs}, nil
}

// Path returns the absolute path of the backing file.
func (s *FileStorage) Path() string { return s.path }

func (s *FileStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.read()
	if err != nil {
		return "", false, err
	}

	v, ok := items[key]

	return v, ok, nil
}

func (s *FileStorage) SetItem(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.read()
	if err != nil {
		return err
	}

	items[key] = value

	return s.write(items)
}

func (s *FileStorage) read() (map[string]string, error) {
	items := make(map[string]string)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return items, nil
		}

		return nil, fmt.Errorf("settings: read storage: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return items, nil
	}

	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("settings: parse storage: %w", err)
	}

	return items, nil
}

func (s *FileStorage) write(items map[string]string) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("settings: marshal storage: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("settings: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".storage-*.tmp")
	if err != nil {
		return fmt.Errorf("settings: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName) //nolint:gosec // tmpName comes from os.CreateTemp in a known directory
		return fmt.Errorf("settings: write temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName) //nolint:gosec // tmpName comes from os.CreateTemp in a known directory
		return fmt.Errorf("settings: close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil { //nolint:gosec // tmpName comes from os.CreateTemp in a known directory
		_ = os.Remove(tmpName) //nolint:gosec // tmpName comes from os.CreateTemp in a known directory
		return fmt.Errorf("settings: rename temp file: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------
// RedisStorage
// -----------------------------------------------------------------------

// RedisStorage stores items as plain Redis strings under Prefix+key.
type RedisStorage struct {
	Client redis.UniversalClient
	Prefix string
}

// NewRedisStorage wraps client. prefix is prepended to every key.
func NewRedisStorage(client redis.UniversalClient, prefix string) *RedisStorage {
	return &RedisStorage{Client: client, Prefix: prefix}
}

func (s *RedisStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, err := s.Client.Get(ctx, s.Prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("settings: redis get: %w", err)
	}

	return v, true, nil
}

func (s *RedisStorage) SetItem(ctx context.Context, key, value string) error {
	if err := s.Client.Set(ctx, s.Prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("settings: redis set: %w", err)
	}

	return nil
}
