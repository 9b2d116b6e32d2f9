package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/germanamz/rewriter/cmd/rewriter/internal/format"
	"github.com/germanamz/rewriter/pkg/form"
	"github.com/germanamz/rewriter/pkg/rewrite"
)

// errRewriteFailed is returned when the rewrite failed and the failure was
// already printed: the result carries an error descriptor, or the request
// failed and its error panel text went to stderr.
var errRewriteFailed = errors.New("rewrite failed")

// runRewrite submits a single draft and prints the result. It uses the same
// controller and persisted settings as the interactive form.
func runRewrite(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: rewriter run --reason TEXT (--email TEXT | --email-file PATH) --instruction TEXT [flags]\n\nRewrite one draft and print the result.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	g := registerGlobalFlags(fs)
	reason := fs.String("reason", "", "why the email is being written")
	email := fs.String("email", "", "draft email text")
	emailFile := fs.String("email-file", "", `read the draft from a file ("-" for stdin)`)
	instruction := fs.String("instruction", "", "how the draft should be rewritten")
	asJSON := fs.Bool("json", false, "print the result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	draft := *email
	if *emailFile != "" {
		if *email != "" {
			return errors.New("run: --email and --email-file are mutually exclusive")
		}
		data, err := readDraft(*emailFile, stdin)
		if err != nil {
			return err
		}
		draft = data
	}

	sess, err := openSession(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	ctrl := form.New()
	ctrl.SetFields(rewrite.Fields{Reason: *reason, EmailText: draft, Instruction: *instruction})

	if err := ctrl.Submit(ctx, sess.client, sess.store.Current()); err != nil {
		if errors.Is(err, rewrite.ErrMissingFields) {
			return fmt.Errorf("run: %w", err)
		}
		fmt.Fprintln(stderr, ctrl.Err())
		return fmt.Errorf("run: %w: %w", errRewriteFailed, err)
	}

	res, _ := ctrl.Result()

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("run: write result: %w", err)
		}
	} else {
		fmt.Fprintln(stdout, format.RenderResult(res, format.ResultView{Width: 80}))
	}

	if res.Failed() {
		return fmt.Errorf("run: %w: %s", errRewriteFailed, res.Error)
	}

	return nil
}

func readDraft(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("run: read draft from stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // user-chosen input file
	if err != nil {
		return "", fmt.Errorf("run: read draft: %w", err)
	}

	return string(data), nil
}
