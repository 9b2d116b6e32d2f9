package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/germanamz/rewriter/cmd/rewriter/internal/app"
	"github.com/germanamz/rewriter/cmd/rewriter/internal/format"
	"github.com/germanamz/rewriter/cmd/rewriter/internal/tty"
)

func runTUI(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rewriter", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage+"\nFlags:\n")
		fs.PrintDefaults()
	}
	g := registerGlobalFlags(fs)
	_ = fs.Parse(args)

	sess, err := openSession(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	model := app.New(ctx, app.Options{
		Client:    sess.client,
		Store:     sess.store,
		Clipboard: systemClipboard{},
		Logger:    sess.log,
		Server:    sess.endpoint(),
	})

	// Query the background once, before the program owns stdin, and drop
	// whatever the terminal answered.
	format.IsDarkBG = lipgloss.HasDarkBackground()
	tty.FlushStdinBuffer()

	staleFilter := tty.NewStaleEscapeFilter(func(m tea.Model) bool {
		switch v := m.(type) {
		case app.Model:
			return v.InputEnabled()
		case *app.Model:
			return v.InputEnabled()
		default:
			return true
		}
	})

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithFilter(staleFilter),
	)

	sess.log.Info("tui started")
	_, err = p.Run()
	sess.log.Info("tui stopped", "error", err)

	return err
}
