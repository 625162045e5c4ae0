package commands

import (
	"github.com/spf13/cobra"

	"github.com/fileshare/fsdeploy/cmd/fsdeploy/handlers"
)

// Render returns the command that prints the Kubernetes manifests the
// deployment would submit, without touching AWS or any cluster.
func Render() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the Kubernetes manifests without deploying",
		Long: `Render the Kubernetes objects the deployment would create as YAML.

Cloud-side resources (cluster, bucket, IAM) are not rendered; values that
only exist after they are created (bucket name, role ARN) appear as
placeholders.

Examples:
  fsdeploy render -c production.yaml | less`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Render(cmd.OutOrStdout(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: fsdeploy.yaml)")

	return cmd
}
