package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "triton",
	Short: "Triton - OpenAI-compatible adapter for the Kiira chat provider",
	Long: `Triton exposes the OpenAI chat completions API on top of the Kiira
agent chat provider.

It handles guest authentication, fuzzy agent name resolution, chat group
management, image attachment upload, and translation of the provider's
event stream into OpenAI streaming chunks. Conversations stay continuous
across stateless clients through an inline conversation tag.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
