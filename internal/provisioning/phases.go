package provisioning

// DefaultPhases returns the deployment sequence in its required order.
// Each phase consumes state produced by the ones before it: the cluster
// phase yields the kubeconfig every Kubernetes phase needs, the bucket and
// identity phases feed the application's environment, and the address phase
// reads back what exposure created.
func DefaultPhases() []Phase {
	return []Phase{
		ClusterPhase{},
		IngressControllerPhase{},
		BucketPhase{},
		NamespacePhase{},
		DatabasePhase{},
		IdentityPhase{},
		ApplicationPhase{},
		ExposurePhase{},
		AddressPhase{},
	}
}
