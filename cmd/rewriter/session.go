package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/germanamz/rewriter/pkg/config"
	"github.com/germanamz/rewriter/pkg/logging"
	"github.com/germanamz/rewriter/pkg/rewrite"
	"github.com/germanamz/rewriter/pkg/rewriterdir"
	"github.com/germanamz/rewriter/pkg/settings"
)

// globalFlags are accepted by every command that talks to the service or the
// settings storage.
type globalFlags struct {
	configPath string
	dir        string
	envFile    string
	server     string
	verbose    bool
}

func registerGlobalFlags(fs *flag.FlagSet) *globalFlags {
	g := &globalFlags{}
	fs.StringVar(&g.configPath, "config", "", "path to configuration file (default: .rewriter/config.yaml)")
	fs.StringVar(&g.dir, "rewriter-dir", ".rewriter", "path to .rewriter directory")
	fs.StringVar(&g.envFile, "env", ".env", "path to .env file (ignored if missing)")
	fs.StringVar(&g.server, "server", "", "rewriting service URL (overrides config and "+config.EnvServerURL+")")
	fs.BoolVar(&g.verbose, "verbose", false, "log at debug level")
	return g
}

// session bundles everything a command needs once configuration is loaded.
type session struct {
	cfg     config.Config
	dir     rewriterdir.Dir
	log     *slog.Logger
	store   *settings.Store
	client  *rewrite.Client
	closers []io.Closer
}

// openSession loads .env and the config, then builds the logger, the
// settings store and the service client.
func openSession(ctx context.Context, g *globalFlags) (*session, error) {
	if err := loadDotEnv(g.envFile); err != nil {
		return nil, err
	}

	dir := rewriterdir.New(g.dir)

	cfg, cfgPath, err := config.Resolve(g.configPath, dir.ConfigPath())
	if err != nil {
		return nil, err
	}
	if g.server != "" {
		cfg.Server.URL = g.server
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, _ := cfg.Log.SlogLevel()
	if g.verbose {
		level = slog.LevelDebug
	}

	logFile := cfg.Log.File
	if logFile == "" && dir.Exists() {
		logFile = dir.LogPath()
	}

	log, logCloser, err := logging.New(logging.Options{
		File:       logFile,
		Level:      level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, dir: dir, log: log, closers: []io.Closer{logCloser}}

	log.Info("config resolved",
		"path", cfgPath,
		"server", cfg.Server.URL,
		"storage", cfg.Storage.Backend,
	)

	storage, storageCloser, err := cfg.Storage.OpenStorage(dir.StoragePath())
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.closers = append(s.closers, storageCloser)
	s.store = settings.Open(ctx, storage, log)

	// Validate has already parsed the timeout.
	timeout, _ := cfg.Server.TimeoutDuration()
	s.client = rewrite.NewClient(cfg.Server.URL, &http.Client{Timeout: timeout})
	s.client.Path = cfg.Server.Path
	s.client.Logger = log

	return s, nil
}

// endpoint is the full URL of the rewrite endpoint, for display.
func (s *session) endpoint() string {
	return s.client.BaseURL + s.cfg.Server.Path
}

// Close releases the storage connection and flushes the log file.
func (s *session) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i].Close())
	}
	return errors.Join(errs...)
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
