package k8s

import (
	"bytes"
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/remotecommand"
)

// Exec runs a command inside a pod's first container and returns combined
// output. Used for in-workload readiness probes (pg_isready) that the pod
// phase alone cannot answer.
func (c *Client) Exec(ctx context.Context, namespace, podName string, command []string) (string, error) {
	if c.restConfig == nil {
		return "", fmt.Errorf("exec requires a REST config backed client")
	}

	req := c.clientset.CoreV1().RESTClient().
		Post().
		Resource("pods").
		Name(podName).
		Namespace(namespace).
		SubResource("exec").
		VersionedParams(&corev1.PodExecOptions{
			Command: command,
			Stdout:  true,
			Stderr:  true,
		}, scheme.ParameterCodec)

	executor, err := remotecommand.NewSPDYExecutor(c.restConfig, "POST", req.URL())
	if err != nil {
		return "", fmt.Errorf("failed to create executor for pod %s/%s: %w", namespace, podName, err)
	}

	var stdout, stderr bytes.Buffer
	err = executor.StreamWithContext(ctx, remotecommand.StreamOptions{
		Stdout: &stdout,
		Stderr: &stderr,
	})
	output := stdout.String() + stderr.String()
	if err != nil {
		return output, fmt.Errorf("exec %v in pod %s/%s failed: %w", command, namespace, podName, err)
	}

	return output, nil
}
