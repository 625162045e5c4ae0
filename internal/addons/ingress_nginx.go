// Package addons installs cluster addons the deployment depends on.
// The only addon this deployment needs is the NGINX ingress controller,
// which fronts the application with a cloud load balancer.
package addons

import (
	"context"
	"fmt"

	"github.com/fileshare/fsdeploy/internal/addons/helm"
)

const (
	ingressNginxRepo      = "https://kubernetes.github.io/ingress-nginx"
	ingressNginxChart     = "ingress-nginx"
	ingressNginxRelease   = "ingress-nginx"
	ingressNginxNamespace = "ingress-nginx"
)

// InstallIngressNginx installs the NGINX ingress controller. Load-balancer
// provisioning, health checking, and traffic routing are all owned by the
// controller and the cloud provider from here on.
func InstallIngressNginx(ctx context.Context, kubeconfig []byte, chartVersion string) error {
	client, err := helm.NewClient(kubeconfig, ingressNginxNamespace)
	if err != nil {
		return fmt.Errorf("failed to create helm client: %w", err)
	}

	spec := helm.ChartSpec{
		RepoURL:     ingressNginxRepo,
		Name:        ingressNginxChart,
		Version:     chartVersion,
		ReleaseName: ingressNginxRelease,
		Namespace:   ingressNginxNamespace,
	}

	if _, err := client.Install(ctx, spec, IngressNginxValues()); err != nil {
		return fmt.Errorf("failed to install ingress-nginx: %w", err)
	}
	return nil
}

// IngressNginxValues returns the chart values for this deployment: an
// internet-facing LoadBalancer service and two controller replicas.
func IngressNginxValues() helm.Values {
	return helm.Values{
		"controller": helm.Values{
			"replicaCount": 2,
			"service": helm.Values{
				"type": "LoadBalancer",
			},
			// Admission webhooks need certificate plumbing that a
			// throwaway demo cluster does not carry.
			"admissionWebhooks": helm.Values{
				"enabled": false,
			},
		},
	}
}
