package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/germanamz/rewriter/pkg/settings"
)

const settingsUsage = `Usage: rewriter settings [flags]              edit interactively
       rewriter settings [flags] show         print the current values
       rewriter settings [flags] set FIELD V  set one field (api_key, model, base_url)
       rewriter settings [flags] clear        reset every field

Flags:
`

func runSettings(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("settings", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), settingsUsage)
		fs.PrintDefaults()
	}
	g := registerGlobalFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := openSession(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	rest := fs.Args()
	if len(rest) == 0 {
		return editSettings(ctx, sess.store)
	}

	switch rest[0] {
	case "show":
		printSettings(stdout, sess.store.Current())
		return nil
	case "set":
		if len(rest) != 3 {
			return errors.New("settings: set needs a field and a value")
		}
		f, err := settings.ParseField(rest[1])
		if err != nil {
			return err
		}
		return sess.store.Set(ctx, f, rest[2])
	case "clear":
		return sess.store.Save(ctx, settings.Settings{})
	}

	return fmt.Errorf("settings: unknown command %q", rest[0])
}

// editSettings shows a huh form prefilled with the stored values and saves
// the result. Aborting leaves the settings untouched.
func editSettings(ctx context.Context, store *settings.Store) error {
	cur := store.Current()
	next := cur

	input := func(f settings.Field, v *string) *huh.Input {
		return huh.NewInput().Title(f.Label()).Placeholder(f.Placeholder()).Value(v)
	}

	err := huh.NewForm(
		huh.NewGroup(
			input(settings.FieldAPIKey, &next.APIKey).EchoMode(huh.EchoModePassword),
			input(settings.FieldModel, &next.Model),
			input(settings.FieldBaseURL, &next.BaseURL).Validate(validateOptionalURL),
		).
			Title("Rewriter settings").
			Description("Blank values are not sent; the service uses its own defaults."),
	).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return nil
	}
	if err != nil {
		return err
	}

	return store.Save(ctx, next)
}

func printSettings(w io.Writer, s settings.Settings) {
	for _, f := range settings.Fields {
		v := s.Get(f)
		switch {
		case strings.TrimSpace(v) == "":
			v = "(not set)"
		case f == settings.FieldAPIKey:
			v = maskSecret(v)
		}
		fmt.Fprintf(w, "%-9s %s\n", f.Label()+":", v)
	}
}

// maskSecret keeps the first three characters of a key.
func maskSecret(v string) string {
	r := []rune(v)
	if len(r) <= 6 {
		return strings.Repeat("•", len(r))
	}
	return string(r[:3]) + strings.Repeat("•", 6)
}

func validateOptionalURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return validateURL(s)
}

func validateURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("must be an absolute URL such as https://host")
	}
	return nil
}
