package provisioning

import (
	"fmt"

	"github.com/fileshare/fsdeploy/internal/deploy"
)

// ApplicationPhase deploys the application workload under its workload
// identity service account.
type ApplicationPhase struct{}

func (ApplicationPhase) Name() string { return "application" }

func (ApplicationPhase) Provision(ctx *Context) error {
	kube, err := ctx.Kube()
	if err != nil {
		return err
	}
	if ctx.State.Identity == nil {
		return fmt.Errorf("workload identity not created")
	}
	cfg := ctx.Config

	ctx.Observer.Event(Event{Type: EventResourceCreating, Phase: "application", Resource: cfg.App.Name})
	if err := kube.CreateServiceAccount(ctx, deploy.AppServiceAccount(cfg, ctx.State.Identity.RoleARN)); err != nil {
		return fmt.Errorf("failed to create service account: %w", err)
	}
	if err := kube.CreateDeployment(ctx, deploy.AppDeployment(cfg, ctx.State.BucketName)); err != nil {
		return fmt.Errorf("failed to create application deployment: %w", err)
	}

	ctx.Observer.Event(Event{Type: EventResourceCreated, Phase: "application", Resource: cfg.App.Name})
	return nil
}
