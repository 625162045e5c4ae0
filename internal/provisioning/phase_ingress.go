package provisioning

import "fmt"

// IngressControllerPhase installs the NGINX ingress controller into the
// freshly provisioned cluster. The controller's LoadBalancer service is what
// eventually gives the application its public address.
type IngressControllerPhase struct{}

func (IngressControllerPhase) Name() string { return "ingress-controller" }

func (IngressControllerPhase) Provision(ctx *Context) error {
	if len(ctx.State.Kubeconfig) == 0 {
		return fmt.Errorf("kubeconfig not available before the cluster phase")
	}

	ctx.Observer.Event(Event{Type: EventResourceCreating, Phase: "ingress-controller", Resource: "ingress-nginx"})
	if err := ctx.Clients.InstallIngress(ctx, ctx.State.Kubeconfig, ctx.Config.Ingress.ChartVersion); err != nil {
		return fmt.Errorf("failed to install ingress controller: %w", err)
	}
	ctx.Observer.Event(Event{Type: EventResourceCreated, Phase: "ingress-controller", Resource: "ingress-nginx"})
	return nil
}
