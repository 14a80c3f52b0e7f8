package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"kiira-hq/triton/pkg/cli"
	"kiira-hq/triton/pkg/config"
	"kiira-hq/triton/pkg/telemetry/logging"
	"kiira-hq/triton/pkg/upstream"
)

var agentsFlags struct {
	format  string
	timeout time.Duration
}

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List the upstream agent catalog",
	Long: `Log in as a guest and print the upstream agent catalog. Useful for
finding the exact agent names to put on the model allow-list.

Examples:
  triton agents
  triton agents --format json`,
	RunE: listAgents,
}

func init() {
	rootCmd.AddCommand(agentsCmd)

	agentsCmd.Flags().StringVar(&agentsFlags.format, "format", "text", "output format (text, json)")
	agentsCmd.Flags().DurationVar(&agentsFlags.timeout, "timeout", 30*time.Second, "request timeout")
}

// agentListing is one row of the agents command output.
type agentListing struct {
	Label       string `json:"label"`
	AccountNo   string `json:"account_no"`
	Description string `json:"description,omitempty"`
}

func (a agentListing) String() string {
	return fmt.Sprintf("%-40s %s", a.Label, a.AccountNo)
}

func listAgents(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}
	logger := logging.New(cfg.Telemetry.Logging)

	ctx, cancel := context.WithTimeout(context.Background(), agentsFlags.timeout)
	defer cancel()

	client := upstream.NewClient(cfg.Upstream, cfg.Adapter.AgentCacheTTL, logger)
	if _, err := client.LoginGuest(ctx); err != nil {
		return cli.NewCommandError("agents", err)
	}

	catalog, err := client.ListAgents(ctx)
	if err != nil {
		return cli.NewCommandError("agents", err)
	}

	formatter := cli.NewFormatter(cli.OutputFormat(agentsFlags.format))
	for _, entry := range catalog {
		listing := agentListing{
			Label:       entry.Label,
			AccountNo:   entry.AccountNo,
			Description: entry.Description,
		}
		if err := formatter.FormatTo(os.Stdout, listing); err != nil {
			return cli.NewCommandError("agents", err)
		}
	}
	return nil
}
