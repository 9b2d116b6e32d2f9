// Package logging builds the rewriter's slog logger. The terminal belongs to
// the UI, so records go to a size-rotated file instead of stderr.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configure New.
type Options struct {
	File       string // Log file path; empty discards all records.
	Level      slog.Level
	MaxSizeMB  int
	MaxBackups int
}

// New returns a text logger writing to a rotating file and the closer that
// flushes it. An empty File yields a logger that drops everything.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	if opts.File == "" {
		return slog.New(slog.DiscardHandler), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o750); err != nil {
		return nil, nil, err
	}

	w := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}

	return NewWithWriter(w, opts.Level), w, nil
}

// NewWithWriter returns a text logger writing to w.
func NewWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
