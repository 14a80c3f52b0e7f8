package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kiira-hq/triton/pkg/cli"
	"kiira-hq/triton/pkg/config"
	"kiira-hq/triton/pkg/server"
	"kiira-hq/triton/pkg/telemetry/logging"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
	watch         bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the adapter server",
	Long: `Start the adapter server with the specified configuration.

The server listens on the configured address and serves the OpenAI chat
completions API backed by the Kiira provider.

Examples:
  # Start with default config
  triton run

  # Start with custom config
  triton run --config /etc/triton/config.yaml

  # Override listen address
  triton run --listen 0.0.0.0:8080

  # Validate config without starting the server
  triton run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
	runCmd.Flags().BoolVar(&runFlags.watch, "watch", true, "reload adapter settings when the config file changes")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger := logging.Setup(cfg.Telemetry.Logging)

	if runFlags.dryRun {
		fmt.Println("Configuration valid")
		return nil
	}

	srv, err := server.New(cfg, Version, logger)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	ctx := cli.SetupSignalHandler()

	if runFlags.watch {
		if _, err := os.Stat(cfgFile); err == nil {
			watcher, err := config.NewWatcher(cfgFile, logger)
			if err != nil {
				logger.Warn("config watcher unavailable", "error", err)
			} else {
				go func() {
					_ = watcher.Watch(ctx, func() error {
						if err := config.ReloadConfig(cfgFile); err != nil {
							return err
						}
						srv.Reload(config.GetConfig())
						return nil
					})
				}()
			}
		}
	}

	fmt.Printf("Triton %s listening on %s\n", Version, cfg.Server.ListenAddress)
	fmt.Printf("Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("Metrics endpoint: http://%s/metrics\n", cfg.Server.ListenAddress)
	}

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	return nil
}
