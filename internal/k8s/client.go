// Package k8s wraps the client-go operations the deployment needs:
// creating the namespace-scoped resources, reading pod and ingress status,
// and running commands inside pods.
package k8s

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// Client wraps Kubernetes API operations against a single cluster.
type Client struct {
	clientset  kubernetes.Interface
	restConfig *rest.Config
}

// NewClientFromBytes creates a Client from kubeconfig bytes, avoiding any
// kubeconfig file on disk.
func NewClientFromBytes(kubeconfig []byte) (*Client, error) {
	restConfig, err := clientcmd.RESTConfigFromKubeConfig(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build kubeconfig from bytes: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	return &Client{
		clientset:  clientset,
		restConfig: restConfig,
	}, nil
}

// NewClientFromClientset creates a Client from a pre-built clientset.
// Used in tests with the fake clientset; Exec is unavailable on such clients.
func NewClientFromClientset(clientset kubernetes.Interface) *Client {
	return &Client{clientset: clientset}
}

// CreateNamespace creates a namespace.
func (c *Client) CreateNamespace(ctx context.Context, name string) error {
	ns := &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{Name: name},
	}
	if _, err := c.clientset.CoreV1().Namespaces().Create(ctx, ns, metav1.CreateOptions{}); err != nil {
		return fmt.Errorf("failed to create namespace %s: %w", name, err)
	}
	return nil
}

// PodsByLabel returns the pods matching a label selector in a namespace.
func (c *Client) PodsByLabel(ctx context.Context, namespace, labelSelector string) ([]corev1.Pod, error) {
	pods, err := c.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: labelSelector,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods with selector %q: %w", labelSelector, err)
	}
	return pods.Items, nil
}

// IngressHostname reads the externally-assigned hostname of an ingress.
// Returns an empty string when the address has not been assigned yet.
func (c *Client) IngressHostname(ctx context.Context, namespace, name string) (string, error) {
	ing, err := c.clientset.NetworkingV1().Ingresses(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to get ingress %s/%s: %w", namespace, name, err)
	}

	for _, lb := range ing.Status.LoadBalancer.Ingress {
		if lb.Hostname != "" {
			return lb.Hostname, nil
		}
		if lb.IP != "" {
			return lb.IP, nil
		}
	}
	return "", nil
}
