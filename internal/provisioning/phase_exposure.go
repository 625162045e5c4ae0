package provisioning

import (
	"fmt"

	"github.com/fileshare/fsdeploy/internal/deploy"
)

// ExposurePhase wires the application to the outside world: internal
// service, ingress route, and the horizontal pod autoscaler.
type ExposurePhase struct{}

func (ExposurePhase) Name() string { return "exposure" }

func (ExposurePhase) Provision(ctx *Context) error {
	kube, err := ctx.Kube()
	if err != nil {
		return err
	}
	cfg := ctx.Config

	ctx.Observer.Event(Event{Type: EventResourceCreating, Phase: "exposure", Resource: cfg.App.Name})
	if err := kube.CreateService(ctx, deploy.AppService(cfg)); err != nil {
		return fmt.Errorf("failed to create application service: %w", err)
	}
	if err := kube.CreateIngress(ctx, deploy.AppIngress(cfg)); err != nil {
		return fmt.Errorf("failed to create ingress: %w", err)
	}

	hpa, err := deploy.Autoscaler(cfg)
	if err != nil {
		return fmt.Errorf("invalid autoscaler configuration: %w", err)
	}
	if err := kube.CreateHorizontalPodAutoscaler(ctx, hpa); err != nil {
		return fmt.Errorf("failed to create autoscaler: %w", err)
	}

	ctx.Observer.Event(Event{Type: EventResourceCreated, Phase: "exposure", Resource: cfg.App.Name})
	return nil
}
