package provisioning

import (
	"fmt"
	"time"
)

// defaultSettleDelay is how long the run waits before reading the assigned
// address. Load-balancer provisioning routinely takes this long; polling
// earlier just reads an empty status.
const defaultSettleDelay = 120 * time.Second

// AddressPhase waits for the deployment to settle, then reads the ingress
// address once. An address that has not been assigned yet is reported as
// pending, not treated as a failure: everything was created successfully
// and the assignment finishes on the cloud provider's own schedule.
type AddressPhase struct {
	SettleDelay time.Duration
}

func (AddressPhase) Name() string { return "address" }

func (p AddressPhase) Provision(ctx *Context) error {
	kube, err := ctx.Kube()
	if err != nil {
		return err
	}

	delay := p.SettleDelay
	if delay == 0 {
		delay = defaultSettleDelay
	}

	ctx.Observer.Printf("Waiting %v for the load balancer to settle...", delay)
	select {
	case <-ctx.Done():
		return fmt.Errorf("cancelled while waiting for the deployment to settle: %w", ctx.Err())
	case <-time.After(delay):
	}

	host, err := kube.IngressHostname(ctx, ctx.Config.Namespace, ctx.Config.App.Name)
	if err != nil {
		return fmt.Errorf("failed to read ingress address: %w", err)
	}

	if host == "" {
		ctx.Observer.Event(Event{Type: EventResourcePending, Phase: "address", Resource: ctx.Config.App.Name,
			Message: "address not assigned yet; check the ingress status later"})
		ctx.Observer.Printf("Ingress address still pending; run `kubectl get ingress -n %s` later.", ctx.Config.Namespace)
		return nil
	}

	ctx.State.IngressHost = host
	ctx.Observer.Printf("Application available at http://%s/", host)
	return nil
}
