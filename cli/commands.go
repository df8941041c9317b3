package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/zhaobenny/costopt/cli/internal/config"
	"github.com/zhaobenny/costopt/cli/internal/menu"
	"github.com/zhaobenny/costopt/cli/internal/output"
	"github.com/zhaobenny/costopt/internal/llm"
	"github.com/zhaobenny/costopt/internal/pipeline"
	"github.com/zhaobenny/costopt/internal/store"
)

// loadConfig resolves configuration from flags, environment and the config
// file, in that order of precedence
func loadConfig(c *cli.Context) (*config.Config, string, error) {
	path := c.String("config")
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, "", fmt.Errorf("locate config file: %w", err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}

	if c.IsSet("provider") {
		cfg.Provider = c.String("provider")
	}
	if c.IsSet("model") {
		cfg.Model = c.String("model")
	}
	if c.IsSet("endpoint") {
		cfg.Endpoint = c.String("endpoint")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}
	if c.IsSet("dir") {
		cfg.Dir = c.String("dir")
	}

	return cfg, path, nil
}

// newRunner builds the pipeline. A missing API key is fatal.
func newRunner(c *cli.Context) (*pipeline.Runner, error) {
	cfg, _, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.LoadAPIKey(); err != nil {
		return nil, err
	}

	llmCfg := cfg.LLM()
	client, err := llm.New(llmCfg, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("provider", llmCfg.Provider).
		Str("model", llmCfg.Model).
		Str("dir", cfg.Dir).
		Msg("pipeline ready")

	return pipeline.New(client, store.New(cfg.Dir), log.Logger, pipeline.WithModelName(llmCfg.Model)), nil
}

func tableOptions(c *cli.Context) output.TableOptions {
	return output.TableOptions{ForceCompact: c.Bool("compact")}
}

func runMenu(c *cli.Context) error {
	if c.Args().Present() {
		return fmt.Errorf("unknown command %q", c.Args().First())
	}

	runner, err := newRunner(c)
	if err != nil {
		return err
	}

	m := menu.New(os.Stdin, os.Stdout, runner, log.Logger, tableOptions(c))
	return m.Run(c.Context)
}

func describeCommand() *cli.Command {
	return &cli.Command{
		Name:      "describe",
		Usage:     "Extract a project profile from a free-text description",
		ArgsUsage: "[description]",
		Description: `The description is taken from the arguments, or read from stdin when
   no arguments are given.`,
		Action: runDescribe,
	}
}

func runDescribe(c *cli.Context) error {
	runner, err := newRunner(c)
	if err != nil {
		return err
	}

	text := strings.Join(c.Args().Slice(), " ")
	if text == "" {
		if text, err = readDescription(os.Stdin, os.Stdout); err != nil {
			return err
		}
	}

	profile, err := runner.Describe(c.Context, text)
	if err != nil {
		return stageFailed(err)
	}

	return output.PrintJSON(os.Stdout, profile)
}

// readDescription prompts for one line on a terminal, otherwise reads all
// of stdin. A single trailing line ending is dropped.
func readDescription(in *os.File, out io.Writer) (string, error) {
	var (
		raw string
		err error
	)

	if output.IsInteractive(in) {
		fmt.Fprint(out, "Enter project description: ")
		raw, err = bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read description: %w", err)
		}
	} else {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("read description: %w", err)
		}
		raw = string(data)
	}

	raw = strings.TrimSuffix(raw, "\n")
	return strings.TrimSuffix(raw, "\r"), nil
}

func billingCommand() *cli.Command {
	return &cli.Command{
		Name:  "billing",
		Usage: "Generate mock billing records for the saved profile",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print records as JSON",
			},
		},
		Action: runBilling,
	}
}

func runBilling(c *cli.Context) error {
	runner, err := newRunner(c)
	if err != nil {
		return err
	}

	records, err := runner.Billing(c.Context)
	if err != nil {
		return stageFailed(err)
	}

	if c.Bool("json") {
		return output.PrintJSON(os.Stdout, records)
	}
	output.PrintBilling(os.Stdout, records, tableOptions(c))
	fmt.Printf("Total records generated: %d\n", len(records))
	return nil
}

func recommendCommand() *cli.Command {
	return &cli.Command{
		Name:  "recommend",
		Usage: "Analyze billing and generate the cost optimization report",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the report as JSON",
			},
		},
		Action: runRecommend,
	}
}

func runRecommend(c *cli.Context) error {
	runner, err := newRunner(c)
	if err != nil {
		return err
	}

	report, err := runner.Recommend(c.Context)
	if err != nil {
		return stageFailed(err)
	}

	if c.Bool("json") {
		return output.PrintJSON(os.Stdout, report)
	}
	output.PrintReport(os.Stdout, report, tableOptions(c))
	return nil
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Print the saved report without calling the model",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the report as JSON",
			},
			&cli.BoolFlag{
				Name:  "description",
				Usage: "Print the saved project description instead",
			},
		},
		Action: runShow,
	}
}

func runShow(c *cli.Context) error {
	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}
	cfg.ApplyDefaults()

	st := store.New(cfg.Dir)

	if c.Bool("description") {
		text, err := st.LoadDescription()
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no description in %s: run 'costopt describe' first", st.Dir())
			}
			return err
		}
		fmt.Println(text)
		return nil
	}

	report, err := st.LoadReport()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no report in %s: run 'costopt recommend' first", st.Dir())
		}
		return err
	}

	if c.Bool("json") {
		return output.PrintJSON(os.Stdout, report)
	}
	output.PrintReport(os.Stdout, report, tableOptions(c))
	return nil
}

// stageFailed prints the diagnostic for a stage error and turns it into a
// plain exit error
func stageFailed(err error) error {
	log.Debug().Err(err).Msg("stage failed")
	output.PrintError(os.Stderr, err)
	return cli.Exit("", 1)
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Show or update the config file",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "show",
				Usage: "Show current configuration",
			},
			&cli.IntFlag{
				Name:  "requests-per-minute",
				Usage: "Maximum model requests per minute (0 for no limit)",
			},
		},
		Description: `Settings given with the global flags are written to the config file:

   costopt --provider chat --model meta-llama/Llama-3.1-8B-Instruct:cerebras config
   costopt config --show`,
		Action: runConfig,
	}
}

func runConfig(c *cli.Context) error {
	cfg, path, err := loadConfig(c)
	if err != nil {
		return err
	}

	if c.Bool("show") {
		cfg.ApplyDefaults()
		llmCfg := cfg.LLM()
		fmt.Printf("Config file: %s\n", path)
		fmt.Printf("Provider: %s\n", llmCfg.Provider)
		fmt.Printf("Model: %s\n", llmCfg.Model)
		fmt.Printf("Endpoint: %s\n", llmCfg.Endpoint)
		fmt.Printf("Timeout: %s\n", llmCfg.Timeout)
		if cfg.RequestsPerMinute > 0 {
			fmt.Printf("Requests per minute: %d\n", cfg.RequestsPerMinute)
		}
		fmt.Printf("Directory: %s\n", cfg.Dir)

		env := config.APIKeyEnv(llmCfg.Provider)
		if key := os.Getenv(env); key != "" && len(key) > 8 {
			fmt.Printf("API Key (%s): %s...%s\n", env, key[:4], key[len(key)-4:])
		} else if key != "" {
			fmt.Printf("API Key (%s): set\n", env)
		} else {
			fmt.Printf("API Key (%s): not set\n", env)
		}
		return nil
	}

	changed := false
	for _, name := range []string{"provider", "model", "endpoint", "timeout", "dir"} {
		if c.IsSet(name) {
			changed = true
		}
	}
	if c.IsSet("requests-per-minute") {
		cfg.RequestsPerMinute = c.Int("requests-per-minute")
		changed = true
	}
	if !changed {
		return cli.ShowSubcommandHelp(c)
	}

	// Unset fields stay out of the file, so validate a defaulted copy
	check := *cfg
	check.ApplyDefaults()
	if err := check.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("Configuration saved to %s.\n", path)
	return nil
}
