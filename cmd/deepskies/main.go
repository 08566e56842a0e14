// Command deepskies renders a star field from a STARS.DAT catalog, either as
// an interactive terminal sky or as a single headless frame.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/litescript/deepskies/internal/config"
	"github.com/litescript/deepskies/internal/logging"
	"github.com/litescript/deepskies/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newApp builds the command tree writing results to stdout and diagnostics
// to stderr.
func newApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "deepskies",
		Usage:   "Interactive star-field renderer for STARS.DAT catalogs",
		Version: version.Version,
		Writer:  stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
				Sources: cli.EnvVars("DEEPSKIES_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "catalog",
				Usage: "Path to the star data file (default STARS.DAT)",
			},
			&cli.StringFlag{
				Name:  "index",
				Usage: "Path to the magnitude index database",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to this file while the terminal UI runs",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve Prometheus metrics on this host:port",
			},
			&cli.BoolFlag{
				Name:  "no-watch",
				Usage: "Do not redraw when the catalog changes on disk",
			},
		},
		Action: runTUI,
		Commands: []*cli.Command{
			renderCommand(stdout, stderr),
			validateCommand(stdout),
			starCommand(stdout),
			seedCommand(stdout),
			indexCommand(stdout),
		},
	}
}

// loadConfig reads the config file and environment, then applies flags.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("catalog") {
		cfg.Catalog = cmd.String("catalog")
	}
	if cmd.IsSet("index") {
		cfg.Index = cmd.String("index")
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("log-file") {
		cfg.LogFile = cmd.String("log-file")
	}
	if cmd.IsSet("metrics-addr") {
		cfg.MetricsAddr = cmd.String("metrics-addr")
	}
	if cmd.Bool("no-watch") {
		cfg.Watch = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// newLogger returns the command-line logger, writing to stderr.
func newLogger(cfg *config.Config, stderr io.Writer) *logging.Logger {
	return logging.NewWithOutput(logging.ParseLevel(cfg.LogLevel), stderr)
}
