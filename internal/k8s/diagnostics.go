package k8s

import (
	"context"
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const diagnosticLogTail = 50

// Diagnostics gathers debug state for the pods behind a label selector:
// phase, container statuses, recent events, and a log tail. It is emitted
// once when a readiness wait exhausts its budget, right before the run
// aborts.
func (c *Client) Diagnostics(ctx context.Context, namespace, labelSelector string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Diagnostics: %s pods matching %q ===\n", namespace, labelSelector)

	pods, err := c.PodsByLabel(ctx, namespace, labelSelector)
	if err != nil {
		fmt.Fprintf(&b, "failed to list pods: %v\n", err)
		return b.String()
	}
	if len(pods) == 0 {
		b.WriteString("no pods found\n")
	}

	for _, pod := range pods {
		describePod(&b, &pod)
		c.appendEvents(ctx, &b, namespace, pod.Name)
		c.appendLogs(ctx, &b, namespace, pod.Name)
	}

	return b.String()
}

func describePod(b *strings.Builder, pod *corev1.Pod) {
	fmt.Fprintf(b, "\nPod %s: phase=%s node=%s\n", pod.Name, pod.Status.Phase, pod.Spec.NodeName)
	for _, cond := range pod.Status.Conditions {
		fmt.Fprintf(b, "  condition %s=%s reason=%s\n", cond.Type, cond.Status, cond.Reason)
	}
	for _, cs := range pod.Status.ContainerStatuses {
		state := "unknown"
		switch {
		case cs.State.Running != nil:
			state = "running"
		case cs.State.Waiting != nil:
			state = fmt.Sprintf("waiting (%s: %s)", cs.State.Waiting.Reason, cs.State.Waiting.Message)
		case cs.State.Terminated != nil:
			state = fmt.Sprintf("terminated (%s, exit %d)", cs.State.Terminated.Reason, cs.State.Terminated.ExitCode)
		}
		fmt.Fprintf(b, "  container %s: ready=%t restarts=%d state=%s\n",
			cs.Name, cs.Ready, cs.RestartCount, state)
	}
}

func (c *Client) appendEvents(ctx context.Context, b *strings.Builder, namespace, podName string) {
	events, err := c.clientset.CoreV1().Events(namespace).List(ctx, metav1.ListOptions{
		FieldSelector: fmt.Sprintf("involvedObject.name=%s", podName),
	})
	if err != nil {
		fmt.Fprintf(b, "  failed to list events: %v\n", err)
		return
	}
	for _, ev := range events.Items {
		fmt.Fprintf(b, "  event %s %s: %s\n", ev.Type, ev.Reason, ev.Message)
	}
}

func (c *Client) appendLogs(ctx context.Context, b *strings.Builder, namespace, podName string) {
	tail := int64(diagnosticLogTail)
	raw, err := c.clientset.CoreV1().Pods(namespace).
		GetLogs(podName, &corev1.PodLogOptions{TailLines: &tail}).
		Do(ctx).Raw()
	if err != nil {
		fmt.Fprintf(b, "  failed to fetch logs: %v\n", err)
		return
	}
	fmt.Fprintf(b, "  logs (last %d lines):\n%s\n", diagnosticLogTail, string(raw))
}
