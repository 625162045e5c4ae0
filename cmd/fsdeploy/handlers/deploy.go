// Package handlers implements the business logic for CLI commands.
//
// Handlers are framework-agnostic and can be tested independently of the
// CLI framework.
package handlers

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/fileshare/fsdeploy/internal/addons"
	"github.com/fileshare/fsdeploy/internal/config"
	"github.com/fileshare/fsdeploy/internal/k8s"
	"github.com/fileshare/fsdeploy/internal/platform/eks"
	"github.com/fileshare/fsdeploy/internal/platform/iam"
	"github.com/fileshare/fsdeploy/internal/platform/s3"
	"github.com/fileshare/fsdeploy/internal/provisioning"
)

// defaultConfigPath is used when no --config flag is given.
const defaultConfigPath = "fsdeploy.yaml"

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfigFile loads config from file.
	loadConfigFile = config.LoadFile

	// newClients builds the real external-system clients.
	newClients = buildClients

	// runPhases executes the deployment sequence.
	runPhases = provisioning.RunPhases
)

// Deploy provisions the full FileShare stack on AWS.
//
// The workflow is an ordered sequence of provisioning phases; see the
// provisioning package for the exact order and semantics. The first
// unrecoverable failure aborts the run and partially created resources are
// left in place for manual cleanup.
//
// AWS credentials come from the ambient credential chain; no token flag or
// environment contract of our own is imposed.
func Deploy(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	log.Printf("Deploying FileShare stack: cluster %s in %s", cfg.Cluster.Name, cfg.Cluster.Region)

	clients, err := newClients(ctx, cfg.Cluster.Region)
	if err != nil {
		return err
	}

	pctx := provisioning.NewContext(ctx, cfg, clients)
	if err := runPhases(pctx, provisioning.DefaultPhases()); err != nil {
		return err
	}

	printDeploySummary(pctx)
	return nil
}

// loadConfig loads and validates the deployment configuration, falling back
// to fsdeploy.yaml in the current directory.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		if _, err := os.Stat(defaultConfigPath); err != nil {
			return nil, fmt.Errorf("no config file found: %w\nCreate %s or pass --config", err, defaultConfigPath)
		}
		configPath = defaultConfigPath
	}

	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// buildClients wires the real AWS and Kubernetes clients into the
// provisioning dependency bundle.
func buildClients(ctx context.Context, region string) (provisioning.Clients, error) {
	clusterClient, err := eks.NewClient(ctx, region)
	if err != nil {
		return provisioning.Clients{}, fmt.Errorf("failed to create EKS client: %w", err)
	}

	storageClient, err := s3.NewClient(ctx, region)
	if err != nil {
		return provisioning.Clients{}, fmt.Errorf("failed to create S3 client: %w", err)
	}

	identityClient, err := iam.NewClient(ctx, region)
	if err != nil {
		return provisioning.Clients{}, fmt.Errorf("failed to create IAM client: %w", err)
	}

	return provisioning.Clients{
		Cluster:  clusterClient,
		Storage:  storageClient,
		Identity: identityClient,
		NewKube: func(kubeconfig []byte) (provisioning.Kube, error) {
			return k8s.NewClientFromBytes(kubeconfig)
		},
		InstallIngress: addons.InstallIngressNginx,
	}, nil
}

// printDeploySummary outputs what the run produced and where to reach it.
func printDeploySummary(pctx *provisioning.Context) {
	state := pctx.State

	fmt.Printf("\nDeployment complete!\n")
	if state.Cluster != nil {
		fmt.Printf("Cluster:  %s\n", state.Cluster.ARN)
	}
	fmt.Printf("Bucket:   %s\n", state.BucketName)
	if state.Identity != nil {
		fmt.Printf("Role:     %s\n", state.Identity.RoleARN)
	}

	if state.IngressHost != "" {
		fmt.Printf("\nApplication: http://%s/\n", state.IngressHost)
	} else {
		fmt.Printf("\nThe public address was still pending; check it later with:\n")
		fmt.Printf("  kubectl get ingress -n %s\n", pctx.Config.Namespace)
	}
}
