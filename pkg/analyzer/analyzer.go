package analyzer

import (
	"context"
	"fmt"
	"sort"

	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/datasource"
	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/models"
	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/promql"
)

// Analyzer collects the four per-pod metric vectors and joins them into
// usage rows keyed by (namespace, pod).
type Analyzer struct {
	source    datasource.DataSource
	queries   *promql.Builder
	namespace string
	verbose   bool
}

// New creates an Analyzer. An empty namespace means cluster-wide.
func New(source datasource.DataSource, queries *promql.Builder, namespace string, verbose bool) *Analyzer {
	return &Analyzer{
		source:    source,
		queries:   queries,
		namespace: namespace,
		verbose:   verbose,
	}
}

// Collect runs the instant queries and joins the results. CPU usage is the
// driving set: a pod with no CPU usage series is not reported at all, while
// missing request series only clear the Has*Request flags.
func (a *Analyzer) Collect(ctx context.Context) ([]models.Usage, error) {
	cpuUsage, err := a.source.QueryVector(ctx, a.queries.CPUUsage())
	if err != nil {
		return nil, fmt.Errorf("CPU usage query failed: %w", err)
	}
	if len(cpuUsage) == 0 {
		return nil, fmt.Errorf("no CPU usage data for %s", a.scope())
	}

	memUsage, err := a.source.QueryVector(ctx, a.queries.MemoryUsage())
	if err != nil {
		return nil, fmt.Errorf("memory usage query failed: %w", err)
	}

	cpuRequests, err := a.source.QueryVector(ctx, a.queries.CPURequests())
	if err != nil {
		return nil, fmt.Errorf("CPU requests query failed: %w", err)
	}

	memRequests, err := a.source.QueryVector(ctx, a.queries.MemoryRequests())
	if err != nil {
		return nil, fmt.Errorf("memory requests query failed: %w", err)
	}

	usages := Join(cpuUsage, memUsage, cpuRequests, memRequests)

	if a.verbose {
		fmt.Printf("[DEBUG] Joined %d workloads (%d CPU series, %d memory series, %d CPU requests, %d memory requests)\n",
			len(usages), len(cpuUsage), len(memUsage), len(cpuRequests), len(memRequests))
	}

	return usages, nil
}

// Join merges the four vectors into usage rows, sorted by namespace then
// pod so downstream output is deterministic.
func Join(cpuUsage, memUsage, cpuRequests, memRequests datasource.Vector) []models.Usage {
	usages := make([]models.Usage, 0, len(cpuUsage))

	for workload, cpu := range cpuUsage {
		usage := models.Usage{
			Workload:         workload,
			CPUUsageCores:    cpu,
			MemoryUsageBytes: memUsage[workload],
		}
		if req, ok := cpuRequests[workload]; ok {
			usage.CPURequestCores = req
			usage.HasCPURequest = true
		}
		if req, ok := memRequests[workload]; ok {
			usage.MemoryRequestBytes = req
			usage.HasMemoryRequest = true
		}
		usages = append(usages, usage)
	}

	sort.Slice(usages, func(i, j int) bool {
		if usages[i].Workload.Namespace != usages[j].Workload.Namespace {
			return usages[i].Workload.Namespace < usages[j].Workload.Namespace
		}
		return usages[i].Workload.Pod < usages[j].Workload.Pod
	})

	return usages
}

func (a *Analyzer) scope() string {
	if a.namespace == "" {
		return "any namespace"
	}
	return fmt.Sprintf("namespace %q", a.namespace)
}
