// Package helm installs charts programmatically through the Helm SDK,
// driven by in-memory kubeconfig bytes.
package helm

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/getter"
	"helm.sh/helm/v3/pkg/registry"
	"helm.sh/helm/v3/pkg/release"
	"helm.sh/helm/v3/pkg/repo"
)

// Values holds chart values.
type Values = map[string]interface{}

// ChartSpec identifies a chart to install.
type ChartSpec struct {
	RepoURL     string
	Name        string
	Version     string
	ReleaseName string
	Namespace   string
}

// Client performs Helm installs against one cluster.
type Client struct {
	actionConfig *action.Configuration
	namespace    string
}

// NewClient creates a Helm client from kubeconfig bytes.
func NewClient(kubeconfig []byte, namespace string) (*Client, error) {
	actionConfig := new(action.Configuration)
	restGetter := newRESTClientGetter(kubeconfig, namespace)

	// Helm's debug logging is suppressed; the orchestrator reports phase
	// progress itself.
	if err := actionConfig.Init(restGetter, namespace, "secret", func(string, ...interface{}) {}); err != nil {
		return nil, fmt.Errorf("failed to initialize helm action config: %w", err)
	}

	return &Client{actionConfig: actionConfig, namespace: namespace}, nil
}

// Install installs the chart and waits for its resources to become ready.
// The release is assumed absent; this deployment never upgrades in place.
func (c *Client) Install(ctx context.Context, spec ChartSpec, values Values) (*release.Release, error) {
	installClient := action.NewInstall(c.actionConfig)
	installClient.ReleaseName = spec.ReleaseName
	installClient.Namespace = spec.Namespace
	installClient.CreateNamespace = true
	installClient.Version = spec.Version
	installClient.Wait = true
	installClient.Timeout = 10 * time.Minute

	chrt, err := c.loadChart(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart: %w", err)
	}

	rel, err := installClient.RunWithContext(ctx, chrt, values)
	if err != nil {
		return nil, fmt.Errorf("failed to install release %s: %w", spec.ReleaseName, err)
	}
	return rel, nil
}

func (c *Client) loadChart(spec ChartSpec) (*chart.Chart, error) {
	settings := cli.New()

	registryClient, err := registry.NewClient(
		registry.ClientOptDebug(false),
		registry.ClientOptWriter(io.Discard),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create registry client: %w", err)
	}
	_ = registryClient

	chartPath, err := repo.FindChartInRepoURL(
		spec.RepoURL,
		spec.Name,
		spec.Version,
		"", "", "",
		getter.All(settings),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find chart %s in repo %s: %w", spec.Name, spec.RepoURL, err)
	}

	defer func() {
		_ = os.Remove(chartPath)
	}()

	return loader.Load(chartPath)
}
