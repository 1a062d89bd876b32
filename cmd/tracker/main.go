// Command tracker polls live sports scores and notifies on significant changes.
//
// Usage:
//
//	livescore-tracker run --threshold 3 --interval 15s
//	livescore-tracker config --env-file .env
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/riskibarqy/livescore-tracker/internal/app"
	"github.com/riskibarqy/livescore-tracker/internal/config"
	"github.com/riskibarqy/livescore-tracker/internal/observability"
	"github.com/riskibarqy/livescore-tracker/internal/platform/logging"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	envFile   string
	threshold int
	interval  time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "livescore-tracker",
		Short:         "Track live sports scores and notify on significant changes",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTracker(cmd.Context(), flags)
		},
	}
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file loaded before reading config")
	root.PersistentFlags().IntVar(&flags.threshold, "threshold", 0, "override the notification threshold")
	root.PersistentFlags().DurationVar(&flags.interval, "interval", 0, "override the polling interval")

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Start the polling loop (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTracker(cmd.Context(), flags)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Validate configuration and print the tracking summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			return printSummary(cmd, cfg)
		},
	})
	return root
}

func loadConfig(flags *rootFlags) (config.Config, error) {
	if err := config.LoadEnvFile(flags.envFile); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if flags.threshold > 0 {
		cfg.NotificationThreshold = flags.threshold
	}
	if flags.interval > 0 {
		cfg.PollingInterval = flags.interval
	}
	return cfg, cfg.Validate()
}

func printSummary(cmd *cobra.Command, cfg config.Config) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SETTING\tVALUE")
	for _, item := range cfg.TrackingSummary() {
		fmt.Fprintf(w, "%s\t%s\n", item.Setting, item.Value)
	}
	return w.Flush()
}

func runTracker(parent context.Context, flags *rootFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Fields: []any{"service", cfg.ServiceName, "env", cfg.AppEnv},
	})
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	for _, item := range cfg.TrackingSummary() {
		logger.Info("tracking setting", "setting", item.Setting, "value", item.Value)
	}

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return fmt.Errorf("init uptrace: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("uptrace shutdown failed", "error", err)
		}
	}()

	stopProfiling, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		return fmt.Errorf("init pyroscope: %w", err)
	}
	defer func() {
		if err := stopProfiling(); err != nil {
			logger.Warn("pyroscope stop failed", "error", err)
		}
	}()

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}
