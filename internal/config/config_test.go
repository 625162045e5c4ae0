package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fsdeploy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const minimalConfig = `
cluster:
  name: demo
  region: us-west-2
  role_arn: arn:aws:iam::123456789012:role/demo-cluster
  node_role_arn: arn:aws:iam::123456789012:role/demo-nodes
  subnet_ids: [subnet-aaa, subnet-bbb]
bucket:
  seed: fileshare-demo
app:
  image: fileshare:latest
`

func TestLoadFile_AppliesDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := LoadFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "fileshare", cfg.Namespace)
	assert.Equal(t, "t3.medium", cfg.Cluster.NodeType)
	assert.Equal(t, int32(1), cfg.Cluster.MinNodes)
	assert.Equal(t, int32(3), cfg.Cluster.MaxNodes)
	assert.Equal(t, int32(1), cfg.Cluster.DesiredNodes)
	assert.Equal(t, "postgres:16", cfg.Database.Image)
	assert.Equal(t, 24, cfg.Database.PasswordLength)
	assert.Equal(t, int32(2), cfg.App.Replicas)
	assert.Equal(t, int32(5000), cfg.App.Port)
	assert.Equal(t, int32(2), cfg.Autoscaler.MinReplicas)
	assert.Equal(t, int32(10), cfg.Autoscaler.MaxReplicas)
	assert.Equal(t, int32(70), cfg.Autoscaler.CPUPercent)
	assert.Equal(t, int32(80), cfg.Autoscaler.MemoryPercent)
}

func TestLoadFile_MissingClusterName(t *testing.T) {
	t.Parallel()
	_, err := LoadFile(writeConfig(t, `
cluster:
  region: us-west-2
bucket:
  seed: x
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cluster.name")
}

func TestLoadFile_MissingRegion(t *testing.T) {
	t.Parallel()
	_, err := LoadFile(writeConfig(t, `
cluster:
  name: demo
bucket:
  seed: x
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cluster.region")
}

func TestLoadFile_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidate_AutoscalerBounds(t *testing.T) {
	t.Parallel()

	base := func() *Config {
		return &Config{
			Cluster: ClusterConfig{
				Name: "demo", Region: "us-west-2",
				MinNodes: 1, MaxNodes: 3, DesiredNodes: 2,
			},
			Bucket: BucketConfig{Seed: "s"},
			App:    AppConfig{Replicas: 2},
			Autoscaler: AutoscalerConfig{
				MinReplicas: 2, MaxReplicas: 10, CPUPercent: 70, MemoryPercent: 80,
			},
		}
	}

	t.Run("default bounds are valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("min equal to max rejected", func(t *testing.T) {
		cfg := base()
		cfg.Autoscaler.MinReplicas = 10
		cfg.App.Replicas = 10
		assert.Error(t, cfg.Validate())
	})

	t.Run("replicas below min rejected", func(t *testing.T) {
		cfg := base()
		cfg.App.Replicas = 1
		assert.Error(t, cfg.Validate())
	})

	t.Run("replicas above max rejected", func(t *testing.T) {
		cfg := base()
		cfg.App.Replicas = 11
		assert.Error(t, cfg.Validate())
	})

	t.Run("cpu target out of range rejected", func(t *testing.T) {
		cfg := base()
		cfg.Autoscaler.CPUPercent = 120
		assert.Error(t, cfg.Validate())
	})
}

func TestValidate_NodeBounds(t *testing.T) {
	t.Parallel()
	cfg := &Config{
		Cluster: ClusterConfig{
			Name: "demo", Region: "us-west-2",
			MinNodes: 3, MaxNodes: 1, DesiredNodes: 2,
		},
		Bucket:     BucketConfig{Seed: "s"},
		App:        AppConfig{Replicas: 2},
		Autoscaler: AutoscalerConfig{MinReplicas: 2, MaxReplicas: 10, CPUPercent: 70, MemoryPercent: 80},
	}
	assert.Error(t, cfg.Validate())
}
