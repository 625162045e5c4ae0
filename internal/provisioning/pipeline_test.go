package provisioning

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	autoscalingv2 "k8s.io/api/autoscaling/v2"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"

	"github.com/fileshare/fsdeploy/internal/config"
	"github.com/fileshare/fsdeploy/internal/platform/eks"
	"github.com/fileshare/fsdeploy/internal/platform/iam"
	"github.com/fileshare/fsdeploy/internal/util/retry"
)

type fakeCluster struct {
	spec    eks.ClusterSpec
	cluster *eks.Cluster
	err     error
}

func (f *fakeCluster) Provision(_ context.Context, spec eks.ClusterSpec) (*eks.Cluster, error) {
	f.spec = spec
	if f.err != nil {
		return nil, f.err
	}
	return f.cluster, nil
}

type fakeStorage struct {
	existsChecks []string
	created      []string
	versioned    []string

	exists    bool
	existsErr error
	createErr error
}

func (f *fakeStorage) BucketExists(_ context.Context, name string) (bool, error) {
	f.existsChecks = append(f.existsChecks, name)
	return f.exists, f.existsErr
}

func (f *fakeStorage) CreateBucket(_ context.Context, name string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, name)
	return nil
}

func (f *fakeStorage) EnableVersioning(_ context.Context, name string) error {
	f.versioned = append(f.versioned, name)
	return nil
}

type fakeIdentity struct {
	input    iam.WorkloadIdentityInput
	identity *iam.WorkloadIdentity
	err      error
}

func (f *fakeIdentity) CreateWorkloadIdentity(_ context.Context, in iam.WorkloadIdentityInput) (*iam.WorkloadIdentity, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

// fakeKube records everything created and scripts readiness behavior.
type fakeKube struct {
	namespaces      []string
	secrets         []*corev1.Secret
	serviceAccounts []*corev1.ServiceAccount
	pvcs            []*corev1.PersistentVolumeClaim
	deployments     []*appsv1.Deployment
	services        []*corev1.Service
	ingresses       []*networkingv1.Ingress
	hpas            []*autoscalingv2.HorizontalPodAutoscaler

	pods []corev1.Pod

	// execFailures is how many initial Exec calls fail before succeeding.
	execFailures int
	execCalls    int

	hostname         string
	diagnosticsCalls int
}

func (f *fakeKube) CreateNamespace(_ context.Context, name string) error {
	f.namespaces = append(f.namespaces, name)
	return nil
}

func (f *fakeKube) CreateSecret(_ context.Context, s *corev1.Secret) error {
	f.secrets = append(f.secrets, s)
	return nil
}

func (f *fakeKube) CreateServiceAccount(_ context.Context, sa *corev1.ServiceAccount) error {
	f.serviceAccounts = append(f.serviceAccounts, sa)
	return nil
}

func (f *fakeKube) CreatePersistentVolumeClaim(_ context.Context, pvc *corev1.PersistentVolumeClaim) error {
	f.pvcs = append(f.pvcs, pvc)
	return nil
}

func (f *fakeKube) CreateDeployment(_ context.Context, d *appsv1.Deployment) error {
	f.deployments = append(f.deployments, d)
	return nil
}

func (f *fakeKube) CreateService(_ context.Context, s *corev1.Service) error {
	f.services = append(f.services, s)
	return nil
}

func (f *fakeKube) CreateIngress(_ context.Context, ing *networkingv1.Ingress) error {
	f.ingresses = append(f.ingresses, ing)
	return nil
}

func (f *fakeKube) CreateHorizontalPodAutoscaler(_ context.Context, hpa *autoscalingv2.HorizontalPodAutoscaler) error {
	f.hpas = append(f.hpas, hpa)
	return nil
}

func (f *fakeKube) PodsByLabel(_ context.Context, _, _ string) ([]corev1.Pod, error) {
	return f.pods, nil
}

func (f *fakeKube) Exec(_ context.Context, _, _ string, _ []string) (string, error) {
	f.execCalls++
	if f.execCalls <= f.execFailures {
		return "", fmt.Errorf("connection refused")
	}
	return "accepting connections", nil
}

func (f *fakeKube) Diagnostics(_ context.Context, _, _ string) string {
	f.diagnosticsCalls++
	return "pod postgres-0: Pending"
}

func (f *fakeKube) IngressHostname(_ context.Context, _, _ string) (string, error) {
	return f.hostname, nil
}

type recordingObserver struct {
	lines  []string
	events []Event
}

func (o *recordingObserver) Printf(format string, v ...interface{}) {
	o.lines = append(o.lines, fmt.Sprintf(format, v...))
}

func (o *recordingObserver) Event(e Event) {
	o.events = append(o.events, e)
}

func (o *recordingObserver) eventsOfType(t EventType) []Event {
	var out []Event
	for _, e := range o.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		Cluster: config.ClusterConfig{
			Name:              "demo",
			Region:            "us-west-2",
			KubernetesVersion: "1.31",
			NodeType:          "t3.medium",
			MinNodes:          1,
			MaxNodes:          3,
			DesiredNodes:      2,
			RoleARN:           "arn:aws:iam::123456789012:role/demo-cluster",
			NodeRoleARN:       "arn:aws:iam::123456789012:role/demo-nodes",
			SubnetIDs:         []string{"subnet-a", "subnet-b"},
		},
		Bucket:    config.BucketConfig{Seed: "fileshare-files"},
		Namespace: "fileshare",
		Database: config.DatabaseConfig{
			Name:           "postgres",
			User:           "postgres",
			Image:          "postgres:16",
			StorageSize:    "10Gi",
			PasswordLength: 24,
		},
		App: config.AppConfig{
			Name:     "fileshare",
			Image:    "example/fileshare:1.0",
			Replicas: 2,
			Port:     5000,
		},
		Autoscaler: config.AutoscalerConfig{
			MinReplicas:   2,
			MaxReplicas:   10,
			CPUPercent:    70,
			MemoryPercent: 80,
		},
		Ingress: config.IngressConfig{ChartVersion: "4.11.3"},
	}
}

func runningPostgresPod() corev1.Pod {
	pod := corev1.Pod{}
	pod.Name = "postgres-7f9c4b-x2k1p"
	pod.Namespace = "fileshare"
	pod.Labels = map[string]string{"app": "postgres"}
	pod.Status.Phase = corev1.PodRunning
	return pod
}

func TestFullDeploymentRun(t *testing.T) {
	cfg := testConfig()
	kube := &fakeKube{
		pods:     []corev1.Pod{runningPostgresPod()},
		hostname: "abc123.elb.us-west-2.amazonaws.com",
	}
	cluster := &fakeCluster{cluster: &eks.Cluster{
		Name:       "demo",
		ARN:        "arn:aws:eks:us-west-2:123456789012:cluster/demo",
		Endpoint:   "https://demo.eks.amazonaws.com",
		CAData:     "Y2VydA==",
		OIDCIssuer: "https://oidc.eks.us-west-2.amazonaws.com/id/DEADBEEF",
	}}
	storage := &fakeStorage{}
	identity := &fakeIdentity{identity: &iam.WorkloadIdentity{
		PolicyARN: "arn:aws:iam::123456789012:policy/demo-bucket-access",
		RoleARN:   "arn:aws:iam::123456789012:role/demo-app-role",
		RoleName:  "demo-app-role",
	}}

	var ingressKubeconfig []byte
	var ingressChartVersion string
	clients := Clients{
		Cluster:  cluster,
		Storage:  storage,
		Identity: identity,
		NewKube: func(kubeconfig []byte) (Kube, error) {
			require.NotEmpty(t, kubeconfig)
			return kube, nil
		},
		InstallIngress: func(_ context.Context, kubeconfig []byte, chartVersion string) error {
			ingressKubeconfig = kubeconfig
			ingressChartVersion = chartVersion
			return nil
		},
	}

	ctx := NewContext(context.Background(), cfg, clients)
	obs := &recordingObserver{}
	ctx.Observer = obs

	phases := []Phase{
		ClusterPhase{},
		IngressControllerPhase{},
		BucketPhase{},
		NamespacePhase{},
		DatabasePhase{ReadyAttempts: 3, ReadyInterval: time.Millisecond},
		IdentityPhase{PolicyArtifactPath: t.TempDir() + "/policy.json"},
		ApplicationPhase{},
		ExposurePhase{},
		AddressPhase{SettleDelay: time.Millisecond},
	}

	require.NoError(t, RunPhases(ctx, phases))

	// Cluster: the node group name derives from the cluster name and the
	// kubeconfig is rendered from the provision result.
	assert.Equal(t, "demo-nodes", cluster.spec.NodegroupName)
	assert.Contains(t, string(ctx.State.Kubeconfig), "https://demo.eks.amazonaws.com")
	assert.Equal(t, ctx.State.Kubeconfig, ingressKubeconfig)
	assert.Equal(t, "4.11.3", ingressChartVersion)

	// Bucket: name embeds the run start timestamp and is both created and
	// versioned under that exact name.
	expectedBucket := "fileshare-files-" + strconv.FormatInt(ctx.State.RunStartedAt.Unix(), 10)
	assert.Equal(t, expectedBucket, ctx.State.BucketName)
	assert.Equal(t, []string{expectedBucket}, storage.existsChecks)
	assert.Equal(t, []string{expectedBucket}, storage.created)
	assert.Equal(t, []string{expectedBucket}, storage.versioned)

	// Namespace: one namespace, one secret carrying the generated password.
	assert.Equal(t, []string{"fileshare"}, kube.namespaces)
	require.Len(t, kube.secrets, 1)
	assert.Len(t, ctx.State.DBPassword, 24)
	assert.Equal(t, ctx.State.DBPassword, kube.secrets[0].StringData["password"])

	// Identity: inputs derive from state and config, not re-computed names.
	assert.Equal(t, expectedBucket, identity.input.BucketName)
	assert.Equal(t, "demo-bucket-access", identity.input.PolicyName)
	assert.Equal(t, "demo-app-role", identity.input.RoleName)
	assert.Equal(t, "https://oidc.eks.us-west-2.amazonaws.com/id/DEADBEEF", identity.input.OIDCIssuer)
	assert.Equal(t, "fileshare", identity.input.Namespace)
	assert.Equal(t, "fileshare-sa", identity.input.ServiceAccount)

	// Application: service account annotated with the created role, and the
	// workload wired to the run's bucket and secret.
	require.Len(t, kube.serviceAccounts, 1)
	assert.Equal(t, identity.identity.RoleARN,
		kube.serviceAccounts[0].Annotations["eks.amazonaws.com/role-arn"])

	require.Len(t, kube.deployments, 2)
	app := kube.deployments[1]
	assert.Equal(t, "fileshare", app.Name)
	var bucketEnv, passwordSecret string
	for _, env := range app.Spec.Template.Spec.Containers[0].Env {
		switch env.Name {
		case "S3_BUCKET":
			bucketEnv = env.Value
		case "DB_PASSWORD":
			passwordSecret = env.ValueFrom.SecretKeyRef.Name
		}
	}
	assert.Equal(t, expectedBucket, bucketEnv)
	assert.Equal(t, kube.secrets[0].Name, passwordSecret)

	// Exposure: database service + app service, one ingress, one autoscaler
	// with the configured bounds.
	assert.Len(t, kube.services, 2)
	assert.Len(t, kube.ingresses, 1)
	require.Len(t, kube.hpas, 1)
	assert.Equal(t, int32(2), *kube.hpas[0].Spec.MinReplicas)
	assert.Equal(t, int32(10), kube.hpas[0].Spec.MaxReplicas)

	// Address read back after settling.
	assert.Equal(t, "abc123.elb.us-west-2.amazonaws.com", ctx.State.IngressHost)

	// Every phase completed exactly once.
	assert.Len(t, obs.eventsOfType(EventPhaseCompleted), len(phases))
	assert.Empty(t, obs.eventsOfType(EventPhaseFailed))
}

func TestRunPhasesAbortsOnFirstFailure(t *testing.T) {
	cfg := testConfig()
	kube := &fakeKube{}
	storage := &fakeStorage{createErr: errors.New("bucket name taken")}
	clients := Clients{
		Storage: storage,
		NewKube: func([]byte) (Kube, error) { return kube, nil },
	}

	ctx := NewContext(context.Background(), cfg, clients)
	obs := &recordingObserver{}
	ctx.Observer = obs
	ctx.State.Kubeconfig = []byte("kubeconfig")

	err := RunPhases(ctx, []Phase{BucketPhase{}, NamespacePhase{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket phase failed")
	assert.Contains(t, err.Error(), "bucket name taken")

	// The namespace phase never ran.
	assert.Empty(t, kube.namespaces)
	require.Len(t, obs.eventsOfType(EventPhaseFailed), 1)
	assert.Equal(t, "bucket", obs.eventsOfType(EventPhaseFailed)[0].Phase)
}

func TestBucketPhaseRejectsExistingBucket(t *testing.T) {
	cfg := testConfig()
	storage := &fakeStorage{exists: true}

	ctx := NewContext(context.Background(), cfg, Clients{Storage: storage})
	ctx.Observer = &recordingObserver{}

	err := BucketPhase{}.Provision(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.Empty(t, storage.created, "an existing bucket must not be adopted")
	assert.Empty(t, storage.versioned)
}

func TestDatabasePhaseWaitsForConnections(t *testing.T) {
	cfg := testConfig()
	kube := &fakeKube{
		pods:         []corev1.Pod{runningPostgresPod()},
		execFailures: 2,
	}

	ctx := NewContext(context.Background(), cfg, Clients{
		NewKube: func([]byte) (Kube, error) { return kube, nil },
	})
	ctx.Observer = &recordingObserver{}
	ctx.State.Kubeconfig = []byte("kubeconfig")

	phase := DatabasePhase{ReadyAttempts: 5, ReadyInterval: time.Millisecond}
	require.NoError(t, phase.Provision(ctx))

	// Two refusals, then success on the third check.
	assert.Equal(t, 3, kube.execCalls)
	assert.Len(t, kube.pvcs, 1)
	assert.Len(t, kube.deployments, 1)
	assert.Len(t, kube.services, 1)
	assert.Zero(t, kube.diagnosticsCalls)
}

func TestDatabasePhaseExhaustsBudgetAndDumpsDiagnostics(t *testing.T) {
	cfg := testConfig()
	kube := &fakeKube{
		pods:         []corev1.Pod{runningPostgresPod()},
		execFailures: 1 << 30,
	}

	ctx := NewContext(context.Background(), cfg, Clients{
		NewKube: func([]byte) (Kube, error) { return kube, nil },
	})
	obs := &recordingObserver{}
	ctx.Observer = obs
	ctx.State.Kubeconfig = []byte("kubeconfig")

	phase := DatabasePhase{ReadyAttempts: 3, ReadyInterval: time.Millisecond}
	err := phase.Provision(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, retry.ErrExhausted)

	// Exactly the budgeted number of checks, then one diagnostics dump.
	assert.Equal(t, 3, kube.execCalls)
	assert.Equal(t, 1, kube.diagnosticsCalls)

	var dumped bool
	for _, line := range obs.lines {
		if strings.Contains(line, "postgres-0: Pending") {
			dumped = true
		}
	}
	assert.True(t, dumped, "diagnostics should be surfaced in the log")
}

func TestDatabasePhaseReportsUnscheduledPod(t *testing.T) {
	cfg := testConfig()
	kube := &fakeKube{} // no pods at all

	ctx := NewContext(context.Background(), cfg, Clients{
		NewKube: func([]byte) (Kube, error) { return kube, nil },
	})
	obs := &recordingObserver{}
	ctx.Observer = obs
	ctx.State.Kubeconfig = []byte("kubeconfig")

	phase := DatabasePhase{ReadyAttempts: 2, ReadyInterval: time.Millisecond}
	err := phase.Provision(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, retry.ErrExhausted)
	assert.Zero(t, kube.execCalls)

	pending := obs.eventsOfType(EventResourcePending)
	require.NotEmpty(t, pending)
	assert.Contains(t, pending[0].Message, "no database pod")
}

func TestAddressPhasePendingIsNotAnError(t *testing.T) {
	cfg := testConfig()
	kube := &fakeKube{hostname: ""}

	ctx := NewContext(context.Background(), cfg, Clients{
		NewKube: func([]byte) (Kube, error) { return kube, nil },
	})
	obs := &recordingObserver{}
	ctx.Observer = obs
	ctx.State.Kubeconfig = []byte("kubeconfig")

	phase := AddressPhase{SettleDelay: time.Millisecond}
	require.NoError(t, phase.Provision(ctx))

	assert.Empty(t, ctx.State.IngressHost)
	pending := obs.eventsOfType(EventResourcePending)
	require.Len(t, pending, 1)
	assert.Equal(t, "address", pending[0].Phase)
}

func TestKubeUnavailableBeforeClusterPhase(t *testing.T) {
	ctx := NewContext(context.Background(), testConfig(), Clients{
		NewKube: func([]byte) (Kube, error) { return &fakeKube{}, nil },
	})

	_, err := ctx.Kube()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kubeconfig not available")
}

func TestDefaultPhasesOrder(t *testing.T) {
	var names []string
	for _, p := range DefaultPhases() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{
		"cluster",
		"ingress-controller",
		"bucket",
		"namespace",
		"database",
		"identity",
		"application",
		"exposure",
		"address",
	}, names)
}
