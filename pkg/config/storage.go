package config

import (
	"io"

	"github.com/redis/go-redis/v9"

	"github.com/germanamz/rewriter/pkg/settings"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenStorage builds the configured settings storage. defaultPath is used by
// the file backend when Storage.Path is empty. The returned closer releases
// backend connections.
func (c StorageConfig) OpenStorage(defaultPath string) (settings.Storage, io.Closer, error) {
	switch c.Backend {
	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		})

		return settings.NewRedisStorage(client, c.Redis.Prefix), client, nil
	case BackendMemory:
		return &settings.MemoryStorage{}, nopCloser{}, nil
	}

	path := c.Path
	if path == "" {
		path = defaultPath
	}

	fs, err := settings.NewFileStorage(path)
	if err != nil {
		return nil, nil, err
	}

	return fs, nopCloser{}, nil
}
