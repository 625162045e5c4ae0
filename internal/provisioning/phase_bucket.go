package provisioning

import (
	"fmt"

	"github.com/fileshare/fsdeploy/internal/util/naming"
)

// BucketPhase creates the versioned object-storage bucket.
type BucketPhase struct{}

func (BucketPhase) Name() string { return "bucket" }

func (BucketPhase) Provision(ctx *Context) error {
	name := naming.Bucket(ctx.Config.Bucket.Seed, ctx.State.RunStartedAt.Unix())

	ctx.Observer.Event(Event{Type: EventResourceCreating, Phase: "bucket", Resource: name})

	// Bucket names are timestamped per run, so a hit here means a name
	// collision with another account or a re-run within the same second.
	// Either way the run must not adopt a bucket it did not create.
	exists, err := ctx.Clients.Storage.BucketExists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", name, err)
	}
	if exists {
		return fmt.Errorf("bucket %s already exists", name)
	}

	if err := ctx.Clients.Storage.CreateBucket(ctx, name); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	if err := ctx.Clients.Storage.EnableVersioning(ctx, name); err != nil {
		return fmt.Errorf("failed to enable bucket versioning: %w", err)
	}

	ctx.State.BucketName = name
	ctx.Observer.Event(Event{Type: EventResourceCreated, Phase: "bucket", Resource: name})
	return nil
}
