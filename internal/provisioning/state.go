package provisioning

import (
	"time"

	"github.com/fileshare/fsdeploy/internal/platform/eks"
	"github.com/fileshare/fsdeploy/internal/platform/iam"
)

// State holds the run-scoped values threaded between phases.
// It is progressively populated as each phase completes.
type State struct {
	// RunStartedAt anchors derived names; the bucket name embeds its
	// Unix timestamp for per-run uniqueness.
	RunStartedAt time.Time

	// Cluster results (populated by the cluster phase)
	Cluster    *eks.Cluster
	Kubeconfig []byte

	// Storage results (populated by the bucket phase)
	BucketName string

	// DBPassword is generated once in the namespace phase and referenced
	// by both the database and application workloads.
	DBPassword string

	// Identity results (populated by the identity phase)
	Identity *iam.WorkloadIdentity

	// IngressHost is the externally-assigned address, read once by the
	// address phase. Empty when the assignment was still pending.
	IngressHost string
}

// NewState creates an empty state anchored at the given run start time.
func NewState(startedAt time.Time) *State {
	return &State{RunStartedAt: startedAt}
}
