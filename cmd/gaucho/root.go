package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"

	"github.com/ahrav/go-gaucho/internal/app"
	"github.com/ahrav/go-gaucho/internal/config"
	"github.com/ahrav/go-gaucho/internal/worker"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configPath string
	temporal   bool
}

// cli carries what subcommands need: where to print and how to build the App.
type cli struct {
	out   io.Writer
	flags rootFlags
	opts  []app.Option
}

func newRootCmd(out io.Writer, opts ...app.Option) *cobra.Command {
	c := &cli{out: out, opts: opts}

	root := &cobra.Command{
		Use:   "gaucho",
		Short: "Consensus-validated scoring of Argentine cultural content",
		Long: `gaucho runs image analyses and text rubric evaluations through a
non-deterministic LLM judge and accepts a result only when independent
executions agree. Analyses are stored in per-category logs.

Configuration is read from --config (YAML) and GAUCHO_* environment variables.`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version: version,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&c.flags.configPath, "config", "c", "", "Path to YAML configuration")
	pf.BoolVar(&c.flags.temporal, "temporal", false, "Run analyses and evaluations as Temporal workflows")

	root.AddCommand(
		c.analyzeCmd(),
		c.listCmd(),
		c.evaluateCmd(),
		c.workerCmd(),
		c.serveCmd(),
	)
	return root
}

// setup loads configuration and builds the App. Logs go to stderr so that
// stdout carries only command output.
func (c *cli) setup(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load(c.flags.configPath)
	if err != nil {
		return nil, err
	}
	logger := app.NewLogger(cfg.Log, os.Stderr)
	return app.New(cmd.Context(), cfg, logger, c.opts...)
}

// service returns the entry points on the host selected by --temporal. The
// returned close function releases the Temporal client, if any.
func (c *cli) service(a *app.App) (app.Service, func(), error) {
	if !c.flags.temporal {
		return a.Local(), func() {}, nil
	}
	tc, err := c.dial(a)
	if err != nil {
		return nil, nil, err
	}
	return a.Distributed(tc), tc.Close, nil
}

func (c *cli) dial(a *app.App) (client.Client, error) {
	return worker.Dial(a.Config.Temporal, a.Logger)
}

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
