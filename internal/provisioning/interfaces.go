// Package provisioning drives the ordered deployment sequence: cluster,
// ingress controller, bucket, namespace and credentials, database,
// workload identity, application, exposure, and the final address read.
//
// The sequence is strictly linear and happy-path: each phase assumes its
// resources do not exist yet, and the first unrecoverable failure aborts
// the whole run. There is no rollback and no idempotent re-run safety.
package provisioning

import (
	"context"

	appsv1 "k8s.io/api/apps/v1"
	autoscalingv2 "k8s.io/api/autoscaling/v2"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"

	"github.com/fileshare/fsdeploy/internal/platform/eks"
	"github.com/fileshare/fsdeploy/internal/platform/iam"
)

// Phase is one step of the deployment sequence.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Provision executes the phase against the shared context.
	Provision(ctx *Context) error
}

// ClusterProvisioner creates the managed cluster and node group.
// Implemented by eks.Client.
type ClusterProvisioner interface {
	Provision(ctx context.Context, spec eks.ClusterSpec) (*eks.Cluster, error)
}

// ObjectStorage creates and configures the run's bucket.
// Implemented by s3.Client.
type ObjectStorage interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	CreateBucket(ctx context.Context, bucketName string) error
	EnableVersioning(ctx context.Context, bucketName string) error
}

// IdentityManager creates the access policy and workload identity binding.
// Implemented by iam.Client.
type IdentityManager interface {
	CreateWorkloadIdentity(ctx context.Context, in iam.WorkloadIdentityInput) (*iam.WorkloadIdentity, error)
}

// Kube is the set of Kubernetes operations the phases perform.
// Implemented by k8s.Client.
type Kube interface {
	CreateNamespace(ctx context.Context, name string) error
	CreateSecret(ctx context.Context, secret *corev1.Secret) error
	CreateServiceAccount(ctx context.Context, sa *corev1.ServiceAccount) error
	CreatePersistentVolumeClaim(ctx context.Context, pvc *corev1.PersistentVolumeClaim) error
	CreateDeployment(ctx context.Context, deploy *appsv1.Deployment) error
	CreateService(ctx context.Context, svc *corev1.Service) error
	CreateIngress(ctx context.Context, ing *networkingv1.Ingress) error
	CreateHorizontalPodAutoscaler(ctx context.Context, hpa *autoscalingv2.HorizontalPodAutoscaler) error
	PodsByLabel(ctx context.Context, namespace, labelSelector string) ([]corev1.Pod, error)
	Exec(ctx context.Context, namespace, podName string, command []string) (string, error)
	Diagnostics(ctx context.Context, namespace, labelSelector string) string
	IngressHostname(ctx context.Context, namespace, name string) (string, error)
}
