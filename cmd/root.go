package cmd

import (
	"fmt"
	"os"

	"gtm-sync/core/config"
	"gtm-sync/core/gtm"
	"gtm-sync/core/logger"
	"gtm-sync/feature/workspace/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "gtm-sync",
	Short: "Google Tag Manager workspace synchronizer",
	Long: `gtm-sync reconciles a declared workspace configuration (YAML) against a
live Google Tag Manager workspace: it plans and applies creates, updates, and
deletes, with dry-run, deletion policies, and snapshot export.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Use the application's standard logger for error reporting
		// We default to console format to match user expectations (CLI tool)
		// We use "debug" level configuration to get ISO8601 timestamps (DevConfig) instead of Epoch (ProdConfig)
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			// Log the error with structured logger (Console encoding will make it pretty)
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			// Absolute fallback if logger creation fails (rare)
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

// bootstrap loads the configuration and builds the run-scoped logger and sync
// driver every command shares.
func bootstrap() (*config.Config, *zap.Logger, *sync.Driver, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	l = logger.WithRunID(l)

	client := gtm.NewClient(cfg.GTM, l)
	driver := sync.NewDriver(client, l, cfg.GTM.AccountID, cfg.GTM.ContainerID)
	return cfg, l, driver, nil
}
