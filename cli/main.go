package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

var version = "0.1.0"

func main() {
	app := &cli.App{
		Name:    "costopt",
		Usage:   "Cloud cost optimizer - turn a project description into a cost report",
		Version: version,
		Description: `Runs three model-backed stages against files in the working directory:
   1. project description -> project_profile.json
   2. profile -> mock_billing.json
   3. profile + billing -> cost_optimization_report.json

Without a command an interactive menu is shown.`,

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "dir",
				Aliases:     []string{"d"},
				Usage:       "Directory for artifact files",
				DefaultText: ".",
				EnvVars:     []string{"COSTOPT_DIR"},
			},
			&cli.StringFlag{
				Name:        "config",
				Usage:       "Path to config file",
				DefaultText: "~/.costopt.yaml",
				EnvVars:     []string{"COSTOPT_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "provider",
				Usage:   "Model provider (gemini, chat)",
				EnvVars: []string{"COSTOPT_PROVIDER"},
			},
			&cli.StringFlag{
				Name:    "model",
				Usage:   "Model name",
				EnvVars: []string{"COSTOPT_MODEL"},
			},
			&cli.StringFlag{
				Name:    "endpoint",
				Usage:   "Model API endpoint",
				EnvVars: []string{"COSTOPT_ENDPOINT"},
			},
			&cli.DurationFlag{
				Name:        "timeout",
				Usage:       "Model request timeout",
				DefaultText: "30s",
				EnvVars:     []string{"COSTOPT_TIMEOUT"},
			},
			&cli.BoolFlag{
				Name:    "compact",
				Aliases: []string{"c"},
				Usage:   "Force compact table output",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"COSTOPT_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "File to seed environment variables from",
			},
		},

		Before: setup,
		Action: runMenu,

		Commands: []*cli.Command{
			describeCommand(),
			billingCommand(),
			recommendCommand(),
			showCommand(),
			configCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the .env file and configures logging
func setup(c *cli.Context) error {
	level, err := zerolog.ParseLevel(strings.ToLower(c.String("log-level")))
	if err != nil {
		return fmt.Errorf("invalid --log-level %q", c.String("log-level"))
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()

	if path := c.String("env-file"); path != "" {
		// Variables already in the environment win
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}

	return nil
}
