package provisioning

import (
	"context"
	"errors"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"

	"github.com/fileshare/fsdeploy/internal/deploy"
	"github.com/fileshare/fsdeploy/internal/util/retry"
)

const (
	databaseReadyAttempts = 30
	databaseReadyInterval = 10 * time.Second
)

// DatabasePhase creates the PostgreSQL workload and blocks until it accepts
// connections. Readiness is probed with pg_isready inside the pod rather
// than from pod status alone: a Running postgres container can still be
// minutes away from accepting connections on a cold volume.
//
// The zero value uses the production poll budget; tests shrink it.
type DatabasePhase struct {
	ReadyAttempts int
	ReadyInterval time.Duration
}

func (DatabasePhase) Name() string { return "database" }

func (p DatabasePhase) Provision(ctx *Context) error {
	kube, err := ctx.Kube()
	if err != nil {
		return err
	}
	cfg := ctx.Config

	ctx.Observer.Event(Event{Type: EventResourceCreating, Phase: "database", Resource: deploy.DatabaseName})
	if err := kube.CreatePersistentVolumeClaim(ctx, deploy.DatabaseVolumeClaim(cfg)); err != nil {
		return fmt.Errorf("failed to create database volume claim: %w", err)
	}
	if err := kube.CreateDeployment(ctx, deploy.DatabaseDeployment(cfg)); err != nil {
		return fmt.Errorf("failed to create database deployment: %w", err)
	}
	if err := kube.CreateService(ctx, deploy.DatabaseService(cfg)); err != nil {
		return fmt.Errorf("failed to create database service: %w", err)
	}

	attempts := p.ReadyAttempts
	if attempts == 0 {
		attempts = databaseReadyAttempts
	}
	interval := p.ReadyInterval
	if interval == 0 {
		interval = databaseReadyInterval
	}

	selector := "app=" + deploy.DatabaseName
	ctx.Observer.Printf("Waiting for database to accept connections (up to %d checks, %v apart)...", attempts, interval)

	err = retry.Poll(ctx, attempts, interval, func(pollCtx context.Context) (bool, error) {
		ready, reason := p.checkReady(pollCtx, ctx, kube, cfg.Namespace, selector)
		if !ready {
			ctx.Observer.Event(Event{Type: EventResourcePending, Phase: "database", Resource: deploy.DatabaseName, Message: reason})
		}
		return ready, nil
	})
	if err != nil {
		if errors.Is(err, retry.ErrExhausted) {
			ctx.Observer.Printf("Database never became ready; dumping diagnostics:\n%s",
				kube.Diagnostics(ctx, cfg.Namespace, selector))
		}
		return fmt.Errorf("database did not become ready: %w", err)
	}

	ctx.Observer.Event(Event{Type: EventResourceCreated, Phase: "database", Resource: deploy.DatabaseName})
	return nil
}

// checkReady reports whether the database pod exists, is running, and
// pg_isready succeeds inside it. Transient API and exec failures count as
// not-ready rather than aborting the poll.
func (DatabasePhase) checkReady(pollCtx context.Context, ctx *Context, kube Kube, namespace, selector string) (bool, string) {
	pods, err := kube.PodsByLabel(pollCtx, namespace, selector)
	if err != nil {
		return false, fmt.Sprintf("listing pods: %v", err)
	}
	if len(pods) == 0 {
		return false, "no database pod scheduled yet"
	}

	pod := pods[0]
	if pod.Status.Phase != corev1.PodRunning {
		return false, fmt.Sprintf("pod %s is %s", pod.Name, pod.Status.Phase)
	}

	if _, err := kube.Exec(pollCtx, namespace, pod.Name, []string{
		"pg_isready", "-U", ctx.Config.Database.User,
	}); err != nil {
		return false, fmt.Sprintf("pg_isready: %v", err)
	}
	return true, ""
}
