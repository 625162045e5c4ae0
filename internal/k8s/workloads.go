package k8s

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	autoscalingv2 "k8s.io/api/autoscaling/v2"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// The create methods below submit typed objects built by internal/deploy.
// Creation is strictly create-only: the deployment assumes a fresh
// namespace and does not reconcile pre-existing resources.

// CreateSecret creates a secret.
func (c *Client) CreateSecret(ctx context.Context, secret *corev1.Secret) error {
	if _, err := c.clientset.CoreV1().Secrets(secret.Namespace).Create(ctx, secret, metav1.CreateOptions{}); err != nil {
		return fmt.Errorf("failed to create secret %s/%s: %w", secret.Namespace, secret.Name, err)
	}
	return nil
}

// CreateServiceAccount creates a service account.
func (c *Client) CreateServiceAccount(ctx context.Context, sa *corev1.ServiceAccount) error {
	if _, err := c.clientset.CoreV1().ServiceAccounts(sa.Namespace).Create(ctx, sa, metav1.CreateOptions{}); err != nil {
		return fmt.Errorf("failed to create service account %s/%s: %w", sa.Namespace, sa.Name, err)
	}
	return nil
}

// CreatePersistentVolumeClaim creates a PVC.
func (c *Client) CreatePersistentVolumeClaim(ctx context.Context, pvc *corev1.PersistentVolumeClaim) error {
	if _, err := c.clientset.CoreV1().PersistentVolumeClaims(pvc.Namespace).Create(ctx, pvc, metav1.CreateOptions{}); err != nil {
		return fmt.Errorf("failed to create pvc %s/%s: %w", pvc.Namespace, pvc.Name, err)
	}
	return nil
}

// CreateDeployment creates a deployment.
func (c *Client) CreateDeployment(ctx context.Context, deploy *appsv1.Deployment) error {
	if _, err := c.clientset.AppsV1().Deployments(deploy.Namespace).Create(ctx, deploy, metav1.CreateOptions{}); err != nil {
		return fmt.Errorf("failed to create deployment %s/%s: %w", deploy.Namespace, deploy.Name, err)
	}
	return nil
}

// CreateService creates a service.
func (c *Client) CreateService(ctx context.Context, svc *corev1.Service) error {
	if _, err := c.clientset.CoreV1().Services(svc.Namespace).Create(ctx, svc, metav1.CreateOptions{}); err != nil {
		return fmt.Errorf("failed to create service %s/%s: %w", svc.Namespace, svc.Name, err)
	}
	return nil
}

// CreateIngress creates an ingress.
func (c *Client) CreateIngress(ctx context.Context, ing *networkingv1.Ingress) error {
	if _, err := c.clientset.NetworkingV1().Ingresses(ing.Namespace).Create(ctx, ing, metav1.CreateOptions{}); err != nil {
		return fmt.Errorf("failed to create ingress %s/%s: %w", ing.Namespace, ing.Name, err)
	}
	return nil
}

// CreateHorizontalPodAutoscaler creates an HPA.
func (c *Client) CreateHorizontalPodAutoscaler(ctx context.Context, hpa *autoscalingv2.HorizontalPodAutoscaler) error {
	if _, err := c.clientset.AutoscalingV2().HorizontalPodAutoscalers(hpa.Namespace).Create(ctx, hpa, metav1.CreateOptions{}); err != nil {
		return fmt.Errorf("failed to create hpa %s/%s: %w", hpa.Namespace, hpa.Name, err)
	}
	return nil
}
