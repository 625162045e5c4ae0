package deploy

import (
	"fmt"
	"strconv"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"

	"github.com/fileshare/fsdeploy/internal/config"
	"github.com/fileshare/fsdeploy/internal/util/naming"
)

// RoleARNAnnotation is the service account annotation binding pods to an
// IAM role through the cluster's OIDC provider.
const RoleARNAnnotation = "eks.amazonaws.com/role-arn"

// HealthPath is the application's liveness and readiness endpoint.
const HealthPath = "/up"

func appLabels(cfg *config.Config) map[string]string {
	return map[string]string{"app": cfg.App.Name}
}

// AppServiceAccount builds the workload identity service account annotated
// with the IAM role created for this run.
func AppServiceAccount(cfg *config.Config, roleARN string) *corev1.ServiceAccount {
	return &corev1.ServiceAccount{
		ObjectMeta: metav1.ObjectMeta{
			Name:      naming.ServiceAccount(cfg.App.Name),
			Namespace: cfg.Namespace,
			Annotations: map[string]string{
				RoleARNAnnotation: roleARN,
			},
		},
	}
}

// AppDeployment builds the application workload. The bucket name and region
// are injected as plain env; the database password is referenced from the
// same secret the database reads, so both sides of the connection always
// see the identical credential.
func AppDeployment(cfg *config.Config, bucketName string) *appsv1.Deployment {
	replicas := cfg.App.Replicas
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      cfg.App.Name,
			Namespace: cfg.Namespace,
			Labels:    appLabels(cfg),
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Selector: &metav1.LabelSelector{MatchLabels: appLabels(cfg)},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: appLabels(cfg)},
				Spec: corev1.PodSpec{
					ServiceAccountName: naming.ServiceAccount(cfg.App.Name),
					Containers: []corev1.Container{
						{
							Name:  cfg.App.Name,
							Image: cfg.App.Image,
							Ports: []corev1.ContainerPort{
								{ContainerPort: cfg.App.Port},
							},
							Env: appEnv(cfg, bucketName),
							// Requests are required for the HPA's
							// utilization targets to be computable.
							Resources: corev1.ResourceRequirements{
								Requests: corev1.ResourceList{
									corev1.ResourceCPU:    resource.MustParse("250m"),
									corev1.ResourceMemory: resource.MustParse("256Mi"),
								},
								Limits: corev1.ResourceList{
									corev1.ResourceCPU:    resource.MustParse("500m"),
									corev1.ResourceMemory: resource.MustParse("512Mi"),
								},
							},
							LivenessProbe:  httpProbe(cfg.App.Port, 10, 10),
							ReadinessProbe: httpProbe(cfg.App.Port, 5, 5),
						},
					},
				},
			},
		},
	}
}

func appEnv(cfg *config.Config, bucketName string) []corev1.EnvVar {
	return []corev1.EnvVar{
		{Name: "S3_BUCKET", Value: bucketName},
		{Name: "AWS_DEFAULT_REGION", Value: cfg.Cluster.Region},
		{Name: "DB_HOST", Value: DatabaseName},
		{Name: "DB_PORT", Value: strconv.Itoa(DatabasePort)},
		{Name: "DB_USER", Value: cfg.Database.User},
		{Name: "DB_NAME", Value: cfg.Database.Name},
		{
			Name: "DB_PASSWORD",
			ValueFrom: &corev1.EnvVarSource{
				SecretKeyRef: &corev1.SecretKeySelector{
					LocalObjectReference: corev1.LocalObjectReference{
						Name: naming.DatabaseSecret(cfg.App.Name),
					},
					Key: SecretPasswordKey,
				},
			},
		},
	}
}

func httpProbe(port int32, initialDelay, period int32) *corev1.Probe {
	return &corev1.Probe{
		ProbeHandler: corev1.ProbeHandler{
			HTTPGet: &corev1.HTTPGetAction{
				Path: HealthPath,
				Port: intstr.FromInt32(port),
			},
		},
		InitialDelaySeconds: initialDelay,
		PeriodSeconds:       period,
	}
}

// ConnectionString assembles the PostgreSQL connection string the
// application derives from its injected environment. Exposed so tests can
// assert the credential threading end to end.
func ConnectionString(cfg *config.Config, password string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		cfg.Database.User, password, DatabaseName, DatabasePort, cfg.Database.Name)
}
