package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Default values applied when the config file leaves a field unset.
const (
	DefaultNamespace         = "fileshare"
	DefaultKubernetesVersion = "1.31"
	DefaultNodeType          = "t3.medium"
	DefaultDatabaseName      = "postgres"
	DefaultDatabaseUser      = "postgres"
	DefaultDatabaseImage     = "postgres:16"
	DefaultStorageSize       = "10Gi"
	DefaultPasswordLength    = 24
	DefaultAppName           = "fileshare"
	DefaultAppPort           = 5000
	DefaultAppReplicas       = 2
	DefaultMinReplicas       = 2
	DefaultMaxReplicas       = 10
	DefaultCPUPercent        = 70
	DefaultMemoryPercent     = 80
)

// LoadFile reads and parses the configuration from a YAML file,
// applies defaults, and validates the result.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var rawConfig map[string]interface{}
	if err := yaml.Unmarshal(data, &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	var cfg Config
	if err := mapstructure.Decode(rawConfig, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	if cfg.Cluster.KubernetesVersion == "" {
		cfg.Cluster.KubernetesVersion = DefaultKubernetesVersion
	}
	if cfg.Cluster.NodeType == "" {
		cfg.Cluster.NodeType = DefaultNodeType
	}
	if cfg.Cluster.MinNodes == 0 {
		cfg.Cluster.MinNodes = 1
	}
	if cfg.Cluster.MaxNodes == 0 {
		cfg.Cluster.MaxNodes = 3
	}
	if cfg.Cluster.DesiredNodes == 0 {
		cfg.Cluster.DesiredNodes = cfg.Cluster.MinNodes
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = DefaultDatabaseName
	}
	if cfg.Database.User == "" {
		cfg.Database.User = DefaultDatabaseUser
	}
	if cfg.Database.Image == "" {
		cfg.Database.Image = DefaultDatabaseImage
	}
	if cfg.Database.StorageSize == "" {
		cfg.Database.StorageSize = DefaultStorageSize
	}
	if cfg.Database.PasswordLength == 0 {
		cfg.Database.PasswordLength = DefaultPasswordLength
	}
	if cfg.App.Name == "" {
		cfg.App.Name = DefaultAppName
	}
	if cfg.App.Port == 0 {
		cfg.App.Port = DefaultAppPort
	}
	if cfg.App.Replicas == 0 {
		cfg.App.Replicas = DefaultAppReplicas
	}
	if cfg.Autoscaler.MinReplicas == 0 {
		cfg.Autoscaler.MinReplicas = DefaultMinReplicas
	}
	if cfg.Autoscaler.MaxReplicas == 0 {
		cfg.Autoscaler.MaxReplicas = DefaultMaxReplicas
	}
	if cfg.Autoscaler.CPUPercent == 0 {
		cfg.Autoscaler.CPUPercent = DefaultCPUPercent
	}
	if cfg.Autoscaler.MemoryPercent == 0 {
		cfg.Autoscaler.MemoryPercent = DefaultMemoryPercent
	}
}
