package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/holocron/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{Logger: logger})

	err := newApp(runner).Run(context.Background(), os.Args)
	if cerr := runner.Close(); cerr != nil {
		logger.Warn("failed to close storage", "error", cerr)
	}

	if err != nil {
		if errors.Is(err, shared.ErrMissingArgument) || errors.Is(err, shared.ErrUnknownKind) {
			logger.Fatalf("%v (see holocron --help)", err)
		}
		logger.Fatalf("application error: %v", err)
	}
}

// newApp builds the root command around runner.
func newApp(runner *Runner) *cli.Command {
	return &cli.Command{
		Name:    "holocron",
		Usage:   "Browse Star Wars reference data and keep a list of favorites",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "ephemeral",
				Usage: "Keep favorites in memory for this run only",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the configured log level (debug, info, warn, error)",
			},
		},
		Before:   runner.configure,
		Commands: runner.register(),
	}
}
