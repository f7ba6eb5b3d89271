package main

import (
	"fmt"
	"os"

	"mlengine/config"
	"mlengine/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	verbose bool

	cfg *config.Config
	log *zap.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "engine",
	Short: "engine serves analytics over the GreenScale ticker universe",
	Long: `engine hydrates the GreenScale company universe and its daily ESG
history into memory and answers analytical queries over it: platform-wide
statistics, sector anomaly density, market-matrix samples, per-ticker
research with a 30/30-day ESG trend, and fuzzy ticker search backed by
Elasticsearch.

Run "engine serve" for the HTTP API, or one of the inspection commands to
hydrate once and print a single report.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}

		// one-shot commands print to stdout; keep the log quiet there
		if cmd.Annotations["quiet"] == "true" && !verbose {
			cfg.Log.Level = "warn"
		}

		log, err = logger.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		zap.ReplaceGlobals(log)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at the configured level in one-shot commands")
}
