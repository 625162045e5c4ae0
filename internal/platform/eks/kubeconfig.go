package eks

import "fmt"

// Kubeconfig renders a kubeconfig for the cluster using exec-based
// authentication via `aws eks get-token`, the standard client pattern for
// EKS. The result is held in memory and handed to the Kubernetes and Helm
// clients; it is never written to disk by the orchestrator.
func Kubeconfig(cluster *Cluster, region string) []byte {
	return []byte(fmt.Sprintf(`apiVersion: v1
kind: Config
clusters:
- name: %[1]s
  cluster:
    server: %[2]s
    certificate-authority-data: %[3]s
contexts:
- name: %[1]s
  context:
    cluster: %[1]s
    user: %[1]s
current-context: %[1]s
users:
- name: %[1]s
  user:
    exec:
      apiVersion: client.authentication.k8s.io/v1beta1
      command: aws
      args:
      - eks
      - get-token
      - --cluster-name
      - %[1]s
      - --region
      - %[4]s
`, cluster.Name, cluster.Endpoint, cluster.CAData, region))
}
