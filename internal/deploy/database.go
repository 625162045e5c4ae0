// Package deploy builds the typed Kubernetes objects the deployment
// submits: database and application workloads, their exposure, and the
// autoscaler. Building objects programmatically (instead of interpolating
// manifest text) lets invariants be validated before submission.
package deploy

import (
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/fileshare/fsdeploy/internal/config"
	"github.com/fileshare/fsdeploy/internal/util/naming"
)

const (
	// DatabaseName is the fixed name of the database workload and its
	// service; the application reaches it as DB_HOST=postgres.
	DatabaseName = "postgres"
	// DatabasePort is the PostgreSQL port.
	DatabasePort = 5432
	// SecretPasswordKey is the key under which the generated password is
	// stored in the database secret.
	SecretPasswordKey = "password"
)

func databaseLabels() map[string]string {
	return map[string]string{"app": DatabaseName}
}

// DatabaseSecret builds the secret carrying the run's generated password.
// The same password object must back the application's DB_PASSWORD
// reference; see AppDeployment.
func DatabaseSecret(cfg *config.Config, password string) *corev1.Secret {
	return &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      naming.DatabaseSecret(cfg.App.Name),
			Namespace: cfg.Namespace,
		},
		Type: corev1.SecretTypeOpaque,
		StringData: map[string]string{
			SecretPasswordKey: password,
		},
	}
}

// DatabaseVolumeClaim builds the durable volume claim backing the database.
func DatabaseVolumeClaim(cfg *config.Config) *corev1.PersistentVolumeClaim {
	return &corev1.PersistentVolumeClaim{
		ObjectMeta: metav1.ObjectMeta{
			Name:      naming.DatabaseVolumeClaim(cfg.App.Name),
			Namespace: cfg.Namespace,
		},
		Spec: corev1.PersistentVolumeClaimSpec{
			AccessModes: []corev1.PersistentVolumeAccessMode{corev1.ReadWriteOnce},
			Resources: corev1.VolumeResourceRequirements{
				Requests: corev1.ResourceList{
					corev1.ResourceStorage: resource.MustParse(cfg.Database.StorageSize),
				},
			},
		},
	}
}

// DatabaseDeployment builds the single-replica PostgreSQL workload bound to
// the volume claim, with its password sourced from the run's secret.
func DatabaseDeployment(cfg *config.Config) *appsv1.Deployment {
	replicas := int32(1)
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      DatabaseName,
			Namespace: cfg.Namespace,
			Labels:    databaseLabels(),
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Selector: &metav1.LabelSelector{MatchLabels: databaseLabels()},
			Strategy: appsv1.DeploymentStrategy{
				// A ReadWriteOnce volume cannot be shared between an old
				// and new pod during a rolling update.
				Type: appsv1.RecreateDeploymentStrategyType,
			},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: databaseLabels()},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{
						{
							Name:  DatabaseName,
							Image: cfg.Database.Image,
							Ports: []corev1.ContainerPort{
								{ContainerPort: DatabasePort},
							},
							Env: []corev1.EnvVar{
								{Name: "POSTGRES_USER", Value: cfg.Database.User},
								{Name: "POSTGRES_DB", Value: cfg.Database.Name},
								{
									Name: "POSTGRES_PASSWORD",
									ValueFrom: &corev1.EnvVarSource{
										SecretKeyRef: &corev1.SecretKeySelector{
											LocalObjectReference: corev1.LocalObjectReference{
												Name: naming.DatabaseSecret(cfg.App.Name),
											},
											Key: SecretPasswordKey,
										},
									},
								},
								// Keep postgres data out of the volume root
								// so lost+found does not break initdb.
								{Name: "PGDATA", Value: "/var/lib/postgresql/data/pgdata"},
							},
							VolumeMounts: []corev1.VolumeMount{
								{
									Name:      "data",
									MountPath: "/var/lib/postgresql/data",
								},
							},
						},
					},
					Volumes: []corev1.Volume{
						{
							Name: "data",
							VolumeSource: corev1.VolumeSource{
								PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{
									ClaimName: naming.DatabaseVolumeClaim(cfg.App.Name),
								},
							},
						},
					},
				},
			},
		},
	}
}

// DatabaseService builds the stable internal address for the database.
func DatabaseService(cfg *config.Config) *corev1.Service {
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      DatabaseName,
			Namespace: cfg.Namespace,
		},
		Spec: corev1.ServiceSpec{
			Selector: databaseLabels(),
			Ports: []corev1.ServicePort{
				{Port: DatabasePort},
			},
		},
	}
}
