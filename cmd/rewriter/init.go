package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"

	"github.com/germanamz/rewriter/pkg/config"
	"github.com/germanamz/rewriter/pkg/rewriterdir"
)

func runInit(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: rewriter init [flags]\n\nInitialize a .rewriter directory with default structure and config.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	dir := fs.String("rewriter-dir", ".rewriter", "path to .rewriter directory")
	yes := fs.Bool("yes", false, "write the default config without asking")
	if err := fs.Parse(args); err != nil {
		return err
	}

	d := rewriterdir.New(*dir)

	configYAML := []byte(config.DefaultYAML)
	if !*yes {
		var err error
		if configYAML, err = runInitWizard(); err != nil {
			return err
		}
	}

	if err := rewriterdir.BootstrapWithConfig(d, configYAML); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Initialized %s\n", d.Root())

	return nil
}

// runInitWizard asks for the service URL and the settings storage and
// returns the config to write.
func runInitWizard() ([]byte, error) {
	def := config.Default()
	serverURL := def.Server.URL
	backend := def.Storage.Backend
	redisAddr := def.Storage.Redis.Addr

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Rewriting service URL").
				Value(&serverURL).
				Validate(validateURL),
			huh.NewSelect[string]().
				Title("Where should settings be stored?").
				Options(
					huh.NewOption("Local file (.rewriter/local)", config.BackendFile),
					huh.NewOption("Redis", config.BackendRedis),
					huh.NewOption("Memory (not persisted)", config.BackendMemory),
				).
				Value(&backend),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Redis address").
				Description("The password is read from $"+config.EnvRedisPassword+".").
				Value(&redisAddr),
		).WithHideFunc(func() bool { return backend != config.BackendRedis }),
	).Run()
	if err != nil {
		return nil, err
	}

	return initConfigYAML(serverURL, backend, redisAddr)
}

func initConfigYAML(serverURL, backend, redisAddr string) ([]byte, error) {
	cfg := config.Default()
	cfg.Server.URL = serverURL
	cfg.Storage.Backend = backend
	cfg.Storage.Redis.Addr = redisAddr
	cfg.Storage.Redis.Password = "${" + config.EnvRedisPassword + "}"

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg.Marshal()
}
