package handlers

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRenderConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fsdeploy.yaml")
	data := []byte(`cluster:
  name: demo
  region: us-west-2
bucket:
  seed: fileshare-files
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestRender_EmitsAllManifests(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, writeRenderConfig(t)))
	out := buf.String()

	// Nine objects, nine documents.
	assert.Equal(t, 9, strings.Count(out, "---\n"))

	for _, kind := range []string{
		"kind: Secret",
		"kind: PersistentVolumeClaim",
		"kind: Deployment",
		"kind: Service",
		"kind: ServiceAccount",
		"kind: Ingress",
		"kind: HorizontalPodAutoscaler",
	} {
		assert.Contains(t, out, kind)
	}

	// Deploy-time values show up as placeholders, never as empty strings.
	assert.Contains(t, out, "BUCKET_NAME")
	assert.Contains(t, out, "WORKLOAD_ROLE_ARN")
	assert.Contains(t, out, "GENERATED_AT_DEPLOY_TIME")
}

func TestRender_OrderMatchesSubmission(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, writeRenderConfig(t)))
	out := buf.String()

	// The secret must precede the workloads that reference it.
	secretAt := strings.Index(out, "kind: Secret")
	deployAt := strings.Index(out, "kind: Deployment")
	require.GreaterOrEqual(t, secretAt, 0)
	require.GreaterOrEqual(t, deployAt, 0)
	assert.Less(t, secretAt, deployAt)
}
