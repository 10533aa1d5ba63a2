package advisor

import (
	"fmt"

	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/config"
	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/models"
)

const bytesPerMiB = 1024 * 1024

// Advisor turns usage rows into optimization suggestions by comparing
// observed values against fixed thresholds.
type Advisor struct {
	lowCPUCores        float64
	lowMemoryBytes     float64
	highCPUUtilization float64
	highMemoryBytes    float64
}

// New creates an Advisor with the default thresholds.
func New() *Advisor {
	return &Advisor{
		lowCPUCores:        0.1,
		lowMemoryBytes:     50 * bytesPerMiB,
		highCPUUtilization: 80,
		highMemoryBytes:    500 * bytesPerMiB,
	}
}

// NewFromConfig creates an Advisor with thresholds from configuration.
func NewFromConfig(cfg *config.Config) *Advisor {
	return &Advisor{
		lowCPUCores:        cfg.LowCPUCores,
		lowMemoryBytes:     cfg.LowMemoryBytes,
		highCPUUtilization: cfg.HighCPUUtilization,
		highMemoryBytes:    cfg.HighMemoryBytes,
	}
}

// Evaluate applies the thresholds to one usage row. It is a pure function:
// the same row always produces the same suggestion. Every workload gets a
// suggestion; ones with nothing to change carry the single NO_CHANGE action.
func (a *Advisor) Evaluate(usage models.Usage) *models.Suggestion {
	s := &models.Suggestion{
		Workload:          usage.Workload,
		CPUUsageCores:     usage.CPUUsageCores,
		CPUUtilization:    usage.CPUUtilization(),
		MemoryUsageBytes:  usage.MemoryUsageBytes,
		MemoryUtilization: usage.MemoryUtilization(),
	}

	if usage.HasCPURequest && usage.CPUUsageCores < a.lowCPUCores {
		s.Actions = append(s.Actions, models.SuggestReduceCPURequest)
		s.Reasons = append(s.Reasons, fmt.Sprintf("Low CPU usage (%.2f cores) vs request (%.2f cores)",
			usage.CPUUsageCores, usage.CPURequestCores))
	}

	if usage.HasMemoryRequest && usage.MemoryUsageBytes < a.lowMemoryBytes {
		s.Actions = append(s.Actions, models.SuggestReduceMemoryRequest)
		s.Reasons = append(s.Reasons, fmt.Sprintf("Low memory usage (%.2f MiB) vs request (%.2f MiB)",
			usage.MemoryUsageBytes/bytesPerMiB, usage.MemoryRequestBytes/bytesPerMiB))
	}

	if s.CPUUtilization > a.highCPUUtilization || usage.MemoryUsageBytes > a.highMemoryBytes {
		s.Actions = append(s.Actions, models.SuggestScaleReplicas)
		s.Reasons = append(s.Reasons, fmt.Sprintf("High resource usage: CPU %.1f%%, memory %.2f MiB",
			s.CPUUtilization, usage.MemoryUsageBytes/bytesPerMiB))
	}

	if len(s.Actions) == 0 {
		s.Actions = append(s.Actions, models.SuggestNoChange)
		s.Reasons = append(s.Reasons, "Resource allocation is appropriate")
	}

	return s
}

// EvaluateAll evaluates every usage row, preserving input order.
func (a *Advisor) EvaluateAll(usages []models.Usage) []*models.Suggestion {
	suggestions := make([]*models.Suggestion, 0, len(usages))
	for _, usage := range usages {
		suggestions = append(suggestions, a.Evaluate(usage))
	}
	return suggestions
}
