package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"career-predictor/internal/common/config"
)

type rootOptions struct {
	configPath string
	logFile    string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "career-predictor",
		Short: "Predict a career path from eight numeric inputs",
		Long: `career-predictor collects age, CGPA and six self ratings, validates them
and asks the configured prediction service for a career.

Run without a subcommand to open the interactive form.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a config YAML file (default: configs/config.yaml)")
	root.PersistentFlags().StringVar(&opts.logFile, "log-file", "career-predictor.log", "where to write logs")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newPredictCmd(opts))
	return root
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFromFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
