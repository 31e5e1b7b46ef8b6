package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fleetsync",
	Short: "Reconcile GCP projects with Elastic Fleet integrations",
	Long: `Fleetsync keeps per-project GCP monitoring integrations in an Elastic
Fleet agent policy in sync with the set of active GCP projects.

Each invocation runs one reconcile cycle:
  • new projects get an integration derived from the master template
  • integrations for deleted projects are removed
  • edits to the master template are pushed to every managed integration,
    detected via the template's revision counter

Configuration comes from the environment, optionally seeded from a .env
file: KIBANA_ENDPOINT, ELASTIC_API_KEY, GCP_AGENT_TAG,
MASTER_AGENT_POLICY_NAME, GCP_QUOTA_PROJECT are required;
IGNORE_PROJECTS, LOG_LEVEL and STATE_PATH are optional.`,
	SilenceUsage: true,
	RunE:         runSync,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
