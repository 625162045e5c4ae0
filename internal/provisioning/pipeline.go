package provisioning

import (
	"fmt"
	"time"
)

// RunPhases executes all phases sequentially, aborting on the first error.
func RunPhases(ctx *Context, phases []Phase) error {
	start := time.Now()
	ctx.Observer.Printf("Starting deployment with %d phases...", len(phases))

	for i, phase := range phases {
		phaseStart := time.Now()
		name := fmt.Sprintf("%s (%d/%d)", phase.Name(), i+1, len(phases))

		ctx.Observer.Event(Event{Type: EventPhaseStarted, Phase: phase.Name()})
		ctx.Observer.Printf("[%s] starting", name)

		if err := phase.Provision(ctx); err != nil {
			ctx.Observer.Event(Event{Type: EventPhaseFailed, Phase: phase.Name(), Message: err.Error()})
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}

		ctx.Observer.Event(Event{Type: EventPhaseCompleted, Phase: phase.Name()})
		ctx.Observer.Printf("[%s] completed in %v", name, time.Since(phaseStart).Round(time.Millisecond))
	}

	ctx.Observer.Printf("Deployment completed in %v", time.Since(start).Round(time.Millisecond))
	return nil
}
