package commands

import (
	"github.com/spf13/cobra"

	"github.com/fileshare/fsdeploy/cmd/fsdeploy/handlers"
)

// Deploy returns the command that runs the full deployment sequence.
//
// Optional flags:
//
//	--config, -c: Path to deployment configuration YAML (default: fsdeploy.yaml)
//
// AWS credentials are taken from the ambient credential chain (environment,
// shared config, or instance role).
func Deploy() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Provision the cluster and deploy the application",
		Long: `Provision the full FileShare stack.

The deployment runs as an ordered sequence of phases: EKS cluster and node
group, NGINX ingress controller, versioned S3 bucket, namespace and database
credentials, PostgreSQL, IAM workload identity, the application workload,
its service/ingress/autoscaler, and a final read of the assigned address.

The sequence is happy-path: the first unrecoverable failure aborts the run,
and partially created resources are left for manual cleanup.

Examples:
  # Deploy using fsdeploy.yaml in the current directory
  fsdeploy deploy

  # Deploy using a specific config file
  fsdeploy deploy -c production.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Deploy(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: fsdeploy.yaml)")

	return cmd
}
