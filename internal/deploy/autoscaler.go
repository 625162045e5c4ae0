package deploy

import (
	"fmt"

	autoscalingv2 "k8s.io/api/autoscaling/v2"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/fileshare/fsdeploy/internal/config"
)

// Autoscaler builds the horizontal pod autoscaler bound to the application
// deployment, targeting CPU and memory utilization.
//
// The replica bounds are re-validated here even though config.Validate
// already checks them: the builder is the last gate before submission.
func Autoscaler(cfg *config.Config) (*autoscalingv2.HorizontalPodAutoscaler, error) {
	a := cfg.Autoscaler
	if a.MinReplicas >= a.MaxReplicas {
		return nil, fmt.Errorf("autoscaler min_replicas (%d) must be < max_replicas (%d)", a.MinReplicas, a.MaxReplicas)
	}
	if cfg.App.Replicas < a.MinReplicas || cfg.App.Replicas > a.MaxReplicas {
		return nil, fmt.Errorf("app replicas (%d) outside autoscaler bounds [%d, %d]",
			cfg.App.Replicas, a.MinReplicas, a.MaxReplicas)
	}

	minReplicas := a.MinReplicas
	cpu := a.CPUPercent
	memory := a.MemoryPercent

	return &autoscalingv2.HorizontalPodAutoscaler{
		ObjectMeta: metav1.ObjectMeta{
			Name:      cfg.App.Name,
			Namespace: cfg.Namespace,
		},
		Spec: autoscalingv2.HorizontalPodAutoscalerSpec{
			ScaleTargetRef: autoscalingv2.CrossVersionObjectReference{
				APIVersion: "apps/v1",
				Kind:       "Deployment",
				Name:       cfg.App.Name,
			},
			MinReplicas: &minReplicas,
			MaxReplicas: a.MaxReplicas,
			Metrics: []autoscalingv2.MetricSpec{
				utilizationMetric(corev1.ResourceCPU, &cpu),
				utilizationMetric(corev1.ResourceMemory, &memory),
			},
		},
	}, nil
}

func utilizationMetric(name corev1.ResourceName, target *int32) autoscalingv2.MetricSpec {
	return autoscalingv2.MetricSpec{
		Type: autoscalingv2.ResourceMetricSourceType,
		Resource: &autoscalingv2.ResourceMetricSource{
			Name: name,
			Target: autoscalingv2.MetricTarget{
				Type:               autoscalingv2.UtilizationMetricType,
				AverageUtilization: target,
			},
		},
	}
}
