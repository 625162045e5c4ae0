// Package naming derives names for the resources a deployment run creates.
// Cloud-side names carry the cluster name as a prefix so a run's resources
// can be identified (and cleaned up manually) from the console.
package naming

import "fmt"

// Bucket derives a globally-unique bucket name from the configured seed and
// the run start time. S3 bucket names share a global namespace, so the Unix
// timestamp suffix keeps two runs from colliding.
func Bucket(seed string, unixTime int64) string {
	return fmt.Sprintf("%s-%d", seed, unixTime)
}

// Nodegroup names the managed node group attached to the cluster.
func Nodegroup(cluster string) string {
	return fmt.Sprintf("%s-nodes", cluster)
}

// AccessPolicy names the IAM policy granting the workload bucket access.
func AccessPolicy(cluster string) string {
	return fmt.Sprintf("%s-bucket-access", cluster)
}

// WorkloadRole names the IAM role assumed by the application's service account.
func WorkloadRole(cluster string) string {
	return fmt.Sprintf("%s-app-role", cluster)
}

// DatabaseSecret names the namespace-scoped secret holding the generated
// database password.
func DatabaseSecret(app string) string {
	return fmt.Sprintf("%s-db-credentials", app)
}

// DatabaseVolumeClaim names the persistent volume claim backing the database.
func DatabaseVolumeClaim(app string) string {
	return fmt.Sprintf("%s-db-data", app)
}

// ServiceAccount names the application's workload identity service account.
func ServiceAccount(app string) string {
	return fmt.Sprintf("%s-sa", app)
}
