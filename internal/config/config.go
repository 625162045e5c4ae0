// Package config defines the deployment configuration and its loader.
//
// A single immutable Config is loaded at startup and passed into every
// provisioning phase. Run-scoped values produced during the run (bucket
// name, generated password, kubeconfig) live in provisioning.State, not
// here.
package config

import "fmt"

// Config holds the full deployment configuration.
type Config struct {
	Cluster    ClusterConfig    `mapstructure:"cluster" yaml:"cluster"`
	Bucket     BucketConfig     `mapstructure:"bucket" yaml:"bucket"`
	Namespace  string           `mapstructure:"namespace" yaml:"namespace"`
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database"`
	App        AppConfig        `mapstructure:"app" yaml:"app"`
	Autoscaler AutoscalerConfig `mapstructure:"autoscaler" yaml:"autoscaler"`
	Ingress    IngressConfig    `mapstructure:"ingress" yaml:"ingress"`
}

// ClusterConfig describes the managed cluster and its node group.
type ClusterConfig struct {
	Name              string `mapstructure:"name" yaml:"name"`
	Region            string `mapstructure:"region" yaml:"region"`
	KubernetesVersion string `mapstructure:"kubernetes_version" yaml:"kubernetes_version"`
	NodeType          string `mapstructure:"node_type" yaml:"node_type"`
	MinNodes          int32  `mapstructure:"min_nodes" yaml:"min_nodes"`
	MaxNodes          int32  `mapstructure:"max_nodes" yaml:"max_nodes"`
	DesiredNodes      int32  `mapstructure:"desired_nodes" yaml:"desired_nodes"`
	// RoleARN and NodeRoleARN identify pre-existing IAM roles for the
	// control plane and node group. Subnets are where the cluster lives.
	RoleARN     string   `mapstructure:"role_arn" yaml:"role_arn"`
	NodeRoleARN string   `mapstructure:"node_role_arn" yaml:"node_role_arn"`
	SubnetIDs   []string `mapstructure:"subnet_ids" yaml:"subnet_ids"`
}

// BucketConfig describes the object-storage bucket.
type BucketConfig struct {
	// Seed is the name prefix; the run start timestamp is appended to
	// produce a globally-unique bucket name.
	Seed string `mapstructure:"seed" yaml:"seed"`
}

// DatabaseConfig describes the PostgreSQL workload.
type DatabaseConfig struct {
	Name        string `mapstructure:"name" yaml:"name"`
	User        string `mapstructure:"user" yaml:"user"`
	Image       string `mapstructure:"image" yaml:"image"`
	StorageSize string `mapstructure:"storage_size" yaml:"storage_size"`
	// PasswordLength controls the generated credential. The password
	// itself is never configured; it is generated fresh each run.
	PasswordLength int `mapstructure:"password_length" yaml:"password_length"`
}

// AppConfig describes the FileShare application workload.
type AppConfig struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Image    string `mapstructure:"image" yaml:"image"`
	Replicas int32  `mapstructure:"replicas" yaml:"replicas"`
	Port     int32  `mapstructure:"port" yaml:"port"`
}

// AutoscalerConfig describes the horizontal pod autoscaler bound to the app.
type AutoscalerConfig struct {
	MinReplicas   int32 `mapstructure:"min_replicas" yaml:"min_replicas"`
	MaxReplicas   int32 `mapstructure:"max_replicas" yaml:"max_replicas"`
	CPUPercent    int32 `mapstructure:"cpu_percent" yaml:"cpu_percent"`
	MemoryPercent int32 `mapstructure:"memory_percent" yaml:"memory_percent"`
}

// IngressConfig describes the ingress controller install and the app ingress.
type IngressConfig struct {
	ChartVersion string `mapstructure:"chart_version" yaml:"chart_version"`
	Host         string `mapstructure:"host" yaml:"host"`
}

// Validate checks cross-field invariants before any cloud call is made.
func (c *Config) Validate() error {
	if c.Cluster.Name == "" {
		return fmt.Errorf("cluster.name is required")
	}
	if c.Cluster.Region == "" {
		return fmt.Errorf("cluster.region is required")
	}
	if c.Cluster.MinNodes < 1 {
		return fmt.Errorf("cluster.min_nodes must be at least 1, got %d", c.Cluster.MinNodes)
	}
	if c.Cluster.MaxNodes < c.Cluster.MinNodes {
		return fmt.Errorf("cluster.max_nodes (%d) must be >= cluster.min_nodes (%d)",
			c.Cluster.MaxNodes, c.Cluster.MinNodes)
	}
	if c.Cluster.DesiredNodes < c.Cluster.MinNodes || c.Cluster.DesiredNodes > c.Cluster.MaxNodes {
		return fmt.Errorf("cluster.desired_nodes (%d) must be within [%d, %d]",
			c.Cluster.DesiredNodes, c.Cluster.MinNodes, c.Cluster.MaxNodes)
	}
	if c.Bucket.Seed == "" {
		return fmt.Errorf("bucket.seed is required")
	}
	if err := c.validateAutoscaler(); err != nil {
		return err
	}
	return nil
}

// validateAutoscaler enforces minReplicas <= app.replicas <= maxReplicas
// and minReplicas < maxReplicas. A violated bound would make the HPA
// rewrite the deployment's replica count immediately after apply.
func (c *Config) validateAutoscaler() error {
	a := c.Autoscaler
	if a.MinReplicas < 1 {
		return fmt.Errorf("autoscaler.min_replicas must be at least 1, got %d", a.MinReplicas)
	}
	if a.MinReplicas >= a.MaxReplicas {
		return fmt.Errorf("autoscaler.min_replicas (%d) must be < autoscaler.max_replicas (%d)",
			a.MinReplicas, a.MaxReplicas)
	}
	if c.App.Replicas < a.MinReplicas || c.App.Replicas > a.MaxReplicas {
		return fmt.Errorf("app.replicas (%d) must be within [%d, %d]",
			c.App.Replicas, a.MinReplicas, a.MaxReplicas)
	}
	if a.CPUPercent < 1 || a.CPUPercent > 100 {
		return fmt.Errorf("autoscaler.cpu_percent must be within [1, 100], got %d", a.CPUPercent)
	}
	if a.MemoryPercent < 1 || a.MemoryPercent > 100 {
		return fmt.Errorf("autoscaler.memory_percent must be within [1, 100], got %d", a.MemoryPercent)
	}
	return nil
}
