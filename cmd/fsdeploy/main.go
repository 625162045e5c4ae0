// Package main is the entry point for the fsdeploy CLI.
//
// fsdeploy provisions a complete demo deployment of the FileShare
// application on AWS: an EKS cluster with a managed node group, the NGINX
// ingress controller, a versioned S3 bucket, a PostgreSQL database, a
// workload identity binding, and the application itself behind an ingress
// and a horizontal pod autoscaler.
//
// For detailed usage information, run:
//
//	fsdeploy --help
package main

import (
	"fmt"
	"os"

	"github.com/fileshare/fsdeploy/cmd/fsdeploy/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
