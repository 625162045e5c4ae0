package k8s

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func TestCreateNamespace(t *testing.T) {
	t.Parallel()
	clientset := fake.NewSimpleClientset()
	client := NewClientFromClientset(clientset)

	require.NoError(t, client.CreateNamespace(context.Background(), "fileshare"))

	ns, err := clientset.CoreV1().Namespaces().Get(context.Background(), "fileshare", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "fileshare", ns.Name)
}

func TestCreateNamespace_AlreadyExists(t *testing.T) {
	t.Parallel()
	clientset := fake.NewSimpleClientset(&corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{Name: "fileshare"},
	})
	client := NewClientFromClientset(clientset)

	err := client.CreateNamespace(context.Background(), "fileshare")
	require.Error(t, err, "pre-existing resources are not reconciled")
}

func TestIngressHostname(t *testing.T) {
	t.Parallel()

	t.Run("hostname assigned", func(t *testing.T) {
		t.Parallel()
		clientset := fake.NewSimpleClientset(&networkingv1.Ingress{
			ObjectMeta: metav1.ObjectMeta{Name: "fileshare", Namespace: "fileshare"},
			Status: networkingv1.IngressStatus{
				LoadBalancer: networkingv1.IngressLoadBalancerStatus{
					Ingress: []networkingv1.IngressLoadBalancerIngress{
						{Hostname: "abc123.elb.us-west-2.amazonaws.com"},
					},
				},
			},
		})
		client := NewClientFromClientset(clientset)

		host, err := client.IngressHostname(context.Background(), "fileshare", "fileshare")
		require.NoError(t, err)
		assert.Equal(t, "abc123.elb.us-west-2.amazonaws.com", host)
	})

	t.Run("not yet assigned returns empty without error", func(t *testing.T) {
		t.Parallel()
		clientset := fake.NewSimpleClientset(&networkingv1.Ingress{
			ObjectMeta: metav1.ObjectMeta{Name: "fileshare", Namespace: "fileshare"},
		})
		client := NewClientFromClientset(clientset)

		host, err := client.IngressHostname(context.Background(), "fileshare", "fileshare")
		require.NoError(t, err)
		assert.Empty(t, host)
	})

	t.Run("missing ingress is an error", func(t *testing.T) {
		t.Parallel()
		client := NewClientFromClientset(fake.NewSimpleClientset())

		_, err := client.IngressHostname(context.Background(), "fileshare", "absent")
		require.Error(t, err)
	})
}

func TestPodsByLabel(t *testing.T) {
	t.Parallel()
	clientset := fake.NewSimpleClientset(
		&corev1.Pod{ObjectMeta: metav1.ObjectMeta{
			Name: "db-0", Namespace: "fileshare", Labels: map[string]string{"app": "postgres"},
		}},
		&corev1.Pod{ObjectMeta: metav1.ObjectMeta{
			Name: "web-0", Namespace: "fileshare", Labels: map[string]string{"app": "fileshare"},
		}},
	)
	client := NewClientFromClientset(clientset)

	pods, err := client.PodsByLabel(context.Background(), "fileshare", "app=postgres")
	require.NoError(t, err)
	require.Len(t, pods, 1)
	assert.Equal(t, "db-0", pods[0].Name)
}

func TestDiagnostics_DescribesFailingPod(t *testing.T) {
	t.Parallel()
	clientset := fake.NewSimpleClientset(&corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name: "db-0", Namespace: "fileshare", Labels: map[string]string{"app": "postgres"},
		},
		Status: corev1.PodStatus{
			Phase: corev1.PodPending,
			ContainerStatuses: []corev1.ContainerStatus{
				{
					Name: "postgres",
					State: corev1.ContainerState{
						Waiting: &corev1.ContainerStateWaiting{
							Reason:  "ImagePullBackOff",
							Message: "pull access denied",
						},
					},
				},
			},
		},
	})
	client := NewClientFromClientset(clientset)

	out := client.Diagnostics(context.Background(), "fileshare", "app=postgres")
	assert.Contains(t, out, "db-0")
	assert.Contains(t, out, "Pending")
	assert.Contains(t, out, "ImagePullBackOff")
}

func TestDiagnostics_NoPods(t *testing.T) {
	t.Parallel()
	client := NewClientFromClientset(fake.NewSimpleClientset())

	out := client.Diagnostics(context.Background(), "fileshare", "app=postgres")
	assert.True(t, strings.Contains(out, "no pods found"), out)
}

func TestExec_RequiresRESTConfig(t *testing.T) {
	t.Parallel()
	client := NewClientFromClientset(fake.NewSimpleClientset())

	_, err := client.Exec(context.Background(), "fileshare", "db-0", []string{"pg_isready"})
	require.Error(t, err)
}
