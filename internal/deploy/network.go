package deploy

import (
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"

	"github.com/fileshare/fsdeploy/internal/config"
)

const ingressClassName = "nginx"

// AppService builds the cluster-internal service in front of the app pods.
func AppService(cfg *config.Config) *corev1.Service {
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      cfg.App.Name,
			Namespace: cfg.Namespace,
		},
		Spec: corev1.ServiceSpec{
			Type:     corev1.ServiceTypeClusterIP,
			Selector: appLabels(cfg),
			Ports: []corev1.ServicePort{
				{
					Port:       80,
					TargetPort: intstr.FromInt32(cfg.App.Port),
				},
			},
		},
	}
}

// AppIngress builds the external entry point. The controller assigns the
// public hostname asynchronously; the address phase reads it back later.
func AppIngress(cfg *config.Config) *networkingv1.Ingress {
	className := ingressClassName
	pathType := networkingv1.PathTypePrefix

	rule := networkingv1.IngressRuleValue{
		HTTP: &networkingv1.HTTPIngressRuleValue{
			Paths: []networkingv1.HTTPIngressPath{
				{
					Path:     "/",
					PathType: &pathType,
					Backend: networkingv1.IngressBackend{
						Service: &networkingv1.IngressServiceBackend{
							Name: cfg.App.Name,
							Port: networkingv1.ServiceBackendPort{Number: 80},
						},
					},
				},
			},
		},
	}

	return &networkingv1.Ingress{
		ObjectMeta: metav1.ObjectMeta{
			Name:      cfg.App.Name,
			Namespace: cfg.Namespace,
		},
		Spec: networkingv1.IngressSpec{
			IngressClassName: &className,
			Rules: []networkingv1.IngressRule{
				{
					Host:             cfg.Ingress.Host,
					IngressRuleValue: rule,
				},
			},
		},
	}
}
