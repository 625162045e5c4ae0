package handlers

import (
	"fmt"
	"io"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/fileshare/fsdeploy/internal/deploy"
)

// Placeholders for values that only exist once the cloud-side resources
// have been created.
const (
	renderBucketPlaceholder   = "BUCKET_NAME"
	renderRoleARNPlaceholder  = "WORKLOAD_ROLE_ARN"
	renderPasswordPlaceholder = "GENERATED_AT_DEPLOY_TIME"
)

// Render writes the Kubernetes manifests the deployment would submit to w,
// in submission order, separated by YAML document markers.
func Render(w io.Writer, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	hpa, err := deploy.Autoscaler(cfg)
	if err != nil {
		return err
	}

	secret := deploy.DatabaseSecret(cfg, renderPasswordPlaceholder)
	secret.TypeMeta = typeMeta("v1", "Secret")
	pvc := deploy.DatabaseVolumeClaim(cfg)
	pvc.TypeMeta = typeMeta("v1", "PersistentVolumeClaim")
	dbDeploy := deploy.DatabaseDeployment(cfg)
	dbDeploy.TypeMeta = typeMeta("apps/v1", "Deployment")
	dbService := deploy.DatabaseService(cfg)
	dbService.TypeMeta = typeMeta("v1", "Service")
	sa := deploy.AppServiceAccount(cfg, renderRoleARNPlaceholder)
	sa.TypeMeta = typeMeta("v1", "ServiceAccount")
	appDeploy := deploy.AppDeployment(cfg, renderBucketPlaceholder)
	appDeploy.TypeMeta = typeMeta("apps/v1", "Deployment")
	appService := deploy.AppService(cfg)
	appService.TypeMeta = typeMeta("v1", "Service")
	ingress := deploy.AppIngress(cfg)
	ingress.TypeMeta = typeMeta("networking.k8s.io/v1", "Ingress")
	hpa.TypeMeta = typeMeta("autoscaling/v2", "HorizontalPodAutoscaler")

	objects := []interface{}{
		secret, pvc, dbDeploy, dbService,
		sa, appDeploy, appService, ingress, hpa,
	}

	for _, obj := range objects {
		out, err := sigsyaml.Marshal(obj)
		if err != nil {
			return fmt.Errorf("failed to marshal manifest: %w", err)
		}
		if _, err := fmt.Fprintf(w, "---\n%s", out); err != nil {
			return err
		}
	}
	return nil
}

func typeMeta(apiVersion, kind string) metav1.TypeMeta {
	return metav1.TypeMeta{APIVersion: apiVersion, Kind: kind}
}
