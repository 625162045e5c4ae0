package provisioning

import (
	"context"
	"fmt"
	"time"

	"github.com/fileshare/fsdeploy/internal/config"
)

// Clients bundles the external-system clients the phases use.
// Kubernetes and Helm clients cannot exist before the cluster does, so
// they are built lazily from the kubeconfig produced by the cluster phase.
type Clients struct {
	Cluster  ClusterProvisioner
	Storage  ObjectStorage
	Identity IdentityManager

	NewKube        func(kubeconfig []byte) (Kube, error)
	InstallIngress func(ctx context.Context, kubeconfig []byte, chartVersion string) error
}

// Context carries the shared dependencies and state through the phases.
type Context struct {
	context.Context
	Config   *config.Config
	State    *State
	Clients  Clients
	Observer Observer

	kube Kube
}

// NewContext creates a provisioning context for one run.
func NewContext(ctx context.Context, cfg *config.Config, clients Clients) *Context {
	return &Context{
		Context:  ctx,
		Config:   cfg,
		State:    NewState(time.Now()),
		Clients:  clients,
		Observer: NewConsoleObserver(),
	}
}

// Kube returns the Kubernetes client for the provisioned cluster, building
// it on first use from the kubeconfig in State.
func (c *Context) Kube() (Kube, error) {
	if c.kube != nil {
		return c.kube, nil
	}
	if len(c.State.Kubeconfig) == 0 {
		return nil, fmt.Errorf("kubeconfig not available before the cluster phase")
	}

	kube, err := c.Clients.NewKube(c.State.Kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	c.kube = kube
	return c.kube, nil
}
