package provisioning

import (
	"fmt"

	"github.com/fileshare/fsdeploy/internal/platform/iam"
	"github.com/fileshare/fsdeploy/internal/util/naming"
)

// defaultPolicyArtifactPath is where the generated bucket-access policy
// document is written as a local record of the run.
const defaultPolicyArtifactPath = "bucket-access-policy.json"

// IdentityPhase creates the bucket-access IAM policy and the role the
// application's service account assumes through the cluster's OIDC issuer.
type IdentityPhase struct {
	// PolicyArtifactPath overrides where the policy document is written.
	PolicyArtifactPath string
}

func (IdentityPhase) Name() string { return "identity" }

func (p IdentityPhase) Provision(ctx *Context) error {
	if ctx.State.Cluster == nil {
		return fmt.Errorf("cluster not provisioned")
	}
	if ctx.State.BucketName == "" {
		return fmt.Errorf("bucket not created")
	}

	path := p.PolicyArtifactPath
	if path == "" {
		path = defaultPolicyArtifactPath
	}

	cluster := ctx.Config.Cluster.Name
	in := iam.WorkloadIdentityInput{
		BucketName:     ctx.State.BucketName,
		PolicyName:     naming.AccessPolicy(cluster),
		RoleName:       naming.WorkloadRole(cluster),
		OIDCIssuer:     ctx.State.Cluster.OIDCIssuer,
		Namespace:      ctx.Config.Namespace,
		ServiceAccount: naming.ServiceAccount(ctx.Config.App.Name),
		PolicyPath:     path,
	}

	ctx.Observer.Event(Event{Type: EventResourceCreating, Phase: "identity", Resource: in.RoleName})
	identity, err := ctx.Clients.Identity.CreateWorkloadIdentity(ctx, in)
	if err != nil {
		return fmt.Errorf("failed to create workload identity: %w", err)
	}

	ctx.State.Identity = identity
	ctx.Observer.Event(Event{Type: EventResourceCreated, Phase: "identity", Resource: identity.RoleARN})
	return nil
}
