package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kiira-hq/triton/pkg/cli"
	"kiira-hq/triton/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load the configuration file, apply environment overrides, and run
all validation checks without starting the server.

Examples:
  triton validate
  triton validate --config /etc/triton/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	fmt.Println("Configuration valid")
	fmt.Printf("  listen address:  %s\n", cfg.Server.ListenAddress)
	fmt.Printf("  upstream:        %s\n", cfg.Upstream.BaseURL)
	fmt.Printf("  default agent:   %s\n", cfg.Adapter.DefaultAgent)
	fmt.Printf("  session backend: %s\n", cfg.Conversation.Backend)
	return nil
}
