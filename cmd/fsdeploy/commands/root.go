// Package commands defines the CLI command structure and flag bindings.
//
// Commands handle argument parsing and flag binding; execution is delegated
// to handler functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the fsdeploy CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fsdeploy",
		Short: "Deploy the FileShare demo stack to AWS",
	}

	cmd.AddCommand(Deploy())
	cmd.AddCommand(Render())
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
