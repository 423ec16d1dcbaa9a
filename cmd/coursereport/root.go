package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"coursereport/internal/config"
	"coursereport/internal/infrastructure"
)

// cliEnv is the state shared by all subcommands
type cliEnv struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
	errOut io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	env := &cliEnv{out: out, errOut: errOut}

	rootCmd := &cobra.Command{
		Use:   "coursereport",
		Short: "Summarize course certificates by region",
		Long: `coursereport reads a course completion export (.xlsx) and builds a
per-region breakdown of learners with and without a certificate.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.init()
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().StringVarP(&env.configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&env.logLevel, "log-level", "warn", "log level written to stderr (debug, info, warn, error)")

	rootCmd.AddCommand(newAnalyzeCmd(env))
	rootCmd.AddCommand(newServeCmd(env))
	rootCmd.AddCommand(newVersionCmd(env))

	return rootCmd
}

// init loads configuration and sets up the stderr logger. A broken
// configuration falls back to defaults so the one-shot analysis still works.
func (e *cliEnv) init() error {
	e.logger = infrastructure.NewLogger(e.errOut, e.logLevel)
	slog.SetDefault(e.logger)

	var (
		cfg *config.Config
		err error
	)
	if e.configPath != "" {
		cfg, err = config.LoadFrom(e.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		e.logger.Warn("Failed to load config, using defaults", slog.String("error", err.Error()))
		cfg = config.Default()
	}
	e.cfg = cfg
	return nil
}
