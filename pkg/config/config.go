// Package config loads the rewriter's YAML configuration: where the rewriting
// service lives, which storage backend holds the settings and where logs go.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/germanamz/rewriter/pkg/rewrite"
)

// EnvServerURL overrides Server.URL when set.
const EnvServerURL = "REWRITER_SERVER_URL"

// DefaultServerURL is the address the rewriting service listens on by default.
const DefaultServerURL = "http://localhost:5000"

// Storage backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config is the top-level configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig locates the rewriting service.
type ServerConfig struct {
	URL     string `yaml:"url"`
	Path    string `yaml:"path"`
	Timeout string `yaml:"timeout"` // Duration string (e.g. "30s"); empty or "0s" means no timeout.
}

// StorageConfig selects where settings are persisted.
type StorageConfig struct {
	Backend string      `yaml:"backend"`
	Path    string      `yaml:"path"` // File backend; defaults to .rewriter/local/storage.json.
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig configures the redis storage backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"` //nolint:gosec // configuration field, usually ${VAR}
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// LogConfig controls the log file.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"` // Defaults to .rewriter/local/rewriter.log.
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		Server: ServerConfig{
			URL:  DefaultServerURL,
			Path: rewrite.DefaultPath,
		},
		Storage: StorageConfig{
			Backend: BackendFile,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "rewriter:",
			},
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// DefaultYAML is written by `rewriter init`.
const DefaultYAML = `server:
  url: ${REWRITER_SERVER_URL}
  path: /api/rewrite
  timeout: 0s
storage:
  backend: file
  redis:
    addr: localhost:6379
    password: ${REWRITER_REDIS_PASSWORD}
    db: 0
    prefix: "rewriter:"
log:
  level: info
  max_size_mb: 10
  max_backups: 3
`

// LoadConfig reads a YAML file over the defaults. Environment variables
// referenced as ${VAR} or $VAR are expanded before parsing.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return Config{}, fmt.Errorf("config: load: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML over the defaults. Keys left empty after env expansion
// keep their default.
func Parse(data []byte) (Config, error) {
	expanded := os.ExpandEnv(string(data))

	var raw Config
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}

	return merge(Default(), raw), nil
}

// Resolve loads path when it is set, otherwise fallback if that file exists,
// otherwise the defaults. The environment override is applied last.
func Resolve(path, fallback string) (Config, string, error) {
	candidate := path
	if candidate == "" {
		if _, err := os.Stat(fallback); err == nil {
			candidate = fallback
		}
	}

	cfg := Default()
	if candidate != "" {
		var err error
		if cfg, err = LoadConfig(candidate); err != nil {
			return Config{}, "", err
		}
	}

	cfg.ApplyEnv()

	return cfg, candidate, nil
}

// ApplyEnv applies environment overrides.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvServerURL)); v != "" {
		c.Server.URL = v
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	u, err := url.Parse(c.Server.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: server url %q must be an absolute URL", c.Server.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("config: server url %q: scheme must be http or https", c.Server.URL)
	}

	if _, err := c.Server.TimeoutDuration(); err != nil {
		return err
	}

	switch c.Storage.Backend {
	case BackendFile, BackendMemory:
	case BackendRedis:
		if c.Storage.Redis.Addr == "" {
			return errors.New("config: storage: redis addr is required")
		}
	default:
		return fmt.Errorf("config: storage: unknown backend %q", c.Storage.Backend)
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}

	return nil
}

// TimeoutDuration parses Timeout. Empty means no timeout.
func (s ServerConfig) TimeoutDuration() (time.Duration, error) {
	if s.Timeout == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0, fmt.Errorf("config: server timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: server timeout %s must not be negative", d)
	}

	return d, nil
}

// SlogLevel maps Level to a slog level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}

	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("config: log level: %w", err)
	}

	return lvl, nil
}

func merge(base, over Config) Config {
	setStr(&base.Server.URL, over.Server.URL)
	setStr(&base.Server.Path, over.Server.Path)
	setStr(&base.Server.Timeout, over.Server.Timeout)

	setStr(&base.Storage.Backend, over.Storage.Backend)
	setStr(&base.Storage.Path, over.Storage.Path)
	setStr(&base.Storage.Redis.Addr, over.Storage.Redis.Addr)
	setStr(&base.Storage.Redis.Password, over.Storage.Redis.Password)
	setStr(&base.Storage.Redis.Prefix, over.Storage.Redis.Prefix)
	if over.Storage.Redis.DB != 0 {
		base.Storage.Redis.DB = over.Storage.Redis.DB
	}

	setStr(&base.Log.Level, over.Log.Level)
	setStr(&base.Log.File, over.Log.File)
	if over.Log.MaxSizeMB > 0 {
		base.Log.MaxSizeMB = over.Log.MaxSizeMB
	}
	if over.Log.MaxBackups > 0 {
		base.Log.MaxBackups = over.Log.MaxBackups
	}

	return base
}

func setStr(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

// EnvRedisPassword is referenced from generated config files so that the
// password never lands on disk.
const EnvRedisPassword = "REWRITER_REDIS_PASSWORD"

// Marshal renders c as YAML suitable for LoadConfig.
func (c Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("config: marshal: %w", err)
	}

	return data, nil
}
