// Package promql builds the fixed PromQL queries the analyzer issues.
// Builders are pure functions of their inputs so the generated query
// strings are fully deterministic.
package promql

import (
	"fmt"
	"time"

	"github.com/prometheus/common/model"
)

// Metric names scraped by cAdvisor and kube-state-metrics
const (
	cpuUsageMetric = "container_cpu_usage_seconds_total"
	memUsageMetric = "container_memory_usage_bytes"
	requestsMetric = "kube_pod_container_resource_requests"
)

// Builder constructs the per-pod aggregation queries, optionally scoped
// to a single namespace.
type Builder struct {
	namespace  string
	rateWindow time.Duration
}

// NewBuilder creates a Builder. An empty namespace means cluster-wide.
func NewBuilder(namespace string, rateWindow time.Duration) *Builder {
	if rateWindow <= 0 {
		rateWindow = 5 * time.Minute
	}
	return &Builder{namespace: namespace, rateWindow: rateWindow}
}

// CPUUsage returns the per-pod CPU usage rate query (cores).
func (b *Builder) CPUUsage() string {
	return fmt.Sprintf(`sum(rate(%s{%s}[%s])) by (pod, namespace)`,
		cpuUsageMetric, b.matchers(`container!=""`), model.Duration(b.rateWindow))
}

// MemoryUsage returns the per-pod memory usage query (bytes).
func (b *Builder) MemoryUsage() string {
	return fmt.Sprintf(`sum(%s{%s}) by (pod, namespace)`,
		memUsageMetric, b.matchers(`container!=""`))
}

// CPURequests returns the per-pod CPU request query (cores).
func (b *Builder) CPURequests() string {
	return fmt.Sprintf(`sum(%s{%s}) by (pod, namespace)`,
		requestsMetric, b.matchers(`resource="cpu"`))
}

// MemoryRequests returns the per-pod memory request query (bytes).
func (b *Builder) MemoryRequests() string {
	return fmt.Sprintf(`sum(%s{%s}) by (pod, namespace)`,
		requestsMetric, b.matchers(`resource="memory"`))
}

// PodCPUUsage returns a single-pod variant of CPUUsage, used by the
// lookback range queries.
func (b *Builder) PodCPUUsage(namespace, pod string) string {
	return fmt.Sprintf(`sum(rate(%s{container!="",namespace=%q,pod=%q}[%s]))`,
		cpuUsageMetric, namespace, pod, model.Duration(b.rateWindow))
}

// PodMemoryUsage returns a single-pod variant of MemoryUsage.
func (b *Builder) PodMemoryUsage(namespace, pod string) string {
	return fmt.Sprintf(`sum(%s{container!="",namespace=%q,pod=%q})`,
		memUsageMetric, namespace, pod)
}

func (b *Builder) matchers(base string) string {
	if b.namespace == "" {
		return base
	}
	return fmt.Sprintf(`%s,namespace=%q`, base, b.namespace)
}
