package provisioning

import (
	"fmt"

	"github.com/fileshare/fsdeploy/internal/deploy"
	"github.com/fileshare/fsdeploy/internal/util/keygen"
)

// NamespacePhase creates the application namespace and the run's database
// credential secret. The generated password is kept in State so later phases
// (and tests) can assert it is never re-derived.
type NamespacePhase struct{}

func (NamespacePhase) Name() string { return "namespace" }

func (NamespacePhase) Provision(ctx *Context) error {
	kube, err := ctx.Kube()
	if err != nil {
		return err
	}

	ctx.Observer.Event(Event{Type: EventResourceCreating, Phase: "namespace", Resource: ctx.Config.Namespace})
	if err := kube.CreateNamespace(ctx, ctx.Config.Namespace); err != nil {
		return fmt.Errorf("failed to create namespace %s: %w", ctx.Config.Namespace, err)
	}

	password, err := keygen.Password(ctx.Config.Database.PasswordLength)
	if err != nil {
		return fmt.Errorf("failed to generate database password: %w", err)
	}
	ctx.State.DBPassword = password

	secret := deploy.DatabaseSecret(ctx.Config, password)
	if err := kube.CreateSecret(ctx, secret); err != nil {
		return fmt.Errorf("failed to create database secret: %w", err)
	}

	ctx.Observer.Event(Event{Type: EventResourceCreated, Phase: "namespace", Resource: secret.Name})
	return nil
}
