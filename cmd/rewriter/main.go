// Rewriter is a terminal client for the email rewriting service. It collects
// a draft email, the reason for writing it and rewriting instructions, sends
// them to the service and shows the structured result.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const usage = `Usage: rewriter [flags]
       rewriter <command> [flags]

Commands:
  init      Create a .rewriter directory with a default config
  settings  Show or edit the persisted API key, model and base URL
  run       Rewrite one draft without the interactive form

Run "rewriter <command> -h" for the flags of a command.
`

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		err  error
		args = os.Args[1:]
		cmd  string
	)
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "init":
		err = runInit(args[1:], os.Stdout)
	case "settings":
		err = runSettings(ctx, args[1:], os.Stdout)
	case "run":
		err = runRewrite(ctx, args[1:], os.Stdin, os.Stdout, os.Stderr)
	case "help":
		fmt.Fprint(os.Stderr, usage)
	default:
		err = runTUI(ctx, args)
	}

	if err != nil {
		if !errors.Is(err, errRewriteFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		cancel()
		os.Exit(1)
	}
}
