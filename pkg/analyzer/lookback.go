package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/models"
)

// Step between range-query samples. 5 minutes matches the default scrape
// resolution of kube-prometheus setups.
const lookbackStep = 5 * time.Minute

// RefineWithLookback replaces the instant usage values with P95 over the
// lookback window, queried per workload. Requests are left untouched: only
// the observed side benefits from history.
//
// A failed range query aborts the refinement with an error naming the
// workload. A pod whose window returned no samples keeps its instant
// values; a pod that appeared after the window started simply has fewer.
func (a *Analyzer) RefineWithLookback(ctx context.Context, usages []models.Usage, lookback time.Duration) error {
	if lookback <= 0 {
		return fmt.Errorf("lookback must be positive")
	}

	for i := range usages {
		u := &usages[i]
		w := u.Workload

		cpuSamples, err := a.source.QueryRange(ctx, a.queries.PodCPUUsage(w.Namespace, w.Pod), lookback, lookbackStep)
		if err != nil {
			return fmt.Errorf("CPU lookback for %s: %w", w, err)
		}

		memSamples, err := a.source.QueryRange(ctx, a.queries.PodMemoryUsage(w.Namespace, w.Pod), lookback, lookbackStep)
		if err != nil {
			return fmt.Errorf("memory lookback for %s: %w", w, err)
		}

		if percentiles, err := CalculatePercentiles(cpuSamples); err == nil {
			u.CPUUsageCores = percentiles.P95
			if a.verbose {
				fmt.Printf("[DEBUG] %s: %d CPU samples, P95=%.3f cores, CV=%.2f\n",
					w, len(cpuSamples), percentiles.P95, CoefficientOfVariation(cpuSamples))
			}
		}

		if percentiles, err := CalculatePercentiles(memSamples); err == nil {
			u.MemoryUsageBytes = percentiles.P95
			if a.verbose {
				fmt.Printf("[DEBUG] %s: %d memory samples, P95=%.0f bytes\n",
					w, len(memSamples), percentiles.P95)
			}
		}
	}

	return nil
}
