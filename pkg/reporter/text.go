package reporter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/models"
)

const bytesPerMiB = 1024 * 1024

// ActionText returns the human-readable wording for an action.
func ActionText(action models.SuggestionType) string {
	switch action {
	case models.SuggestReduceCPURequest:
		return "Reduce CPU requests"
	case models.SuggestReduceMemoryRequest:
		return "Reduce memory requests"
	case models.SuggestScaleReplicas:
		return "Consider scaling replicas"
	case models.SuggestNoChange:
		return "No change"
	default:
		return string(action)
	}
}

// JoinActions renders the action list as a single display string.
func JoinActions(actions []models.SuggestionType) string {
	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		parts = append(parts, ActionText(a))
	}
	return strings.Join(parts, ", ")
}

// WriteText renders the report as an aligned table. Output carries no
// timestamps so two runs against identical data render identically.
func WriteText(report *Report, out io.Writer) error {
	actionable := report.Actionable()
	if len(actionable) == 0 {
		_, err := fmt.Fprintln(out, "No optimizations needed. All pods are well-optimized.")
		return err
	}

	fmt.Fprintln(out, "Optimization Suggestions:")
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAMESPACE\tPOD\tCPU USAGE\tCPU %\tMEMORY USAGE\tMEMORY %\tSUGGESTED OPTIMIZATION")

	for _, s := range actionable {
		fmt.Fprintf(w, "%s\t%s\t%.2f cores\t%.1f%%\t%.2f MiB\t%.1f%%\t%s\n",
			s.Workload.Namespace,
			s.Workload.Pod,
			s.CPUUsageCores,
			s.CPUUtilization,
			s.MemoryUsageBytes/bytesPerMiB,
			s.MemoryUtilization,
			JoinActions(s.Actions),
		)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Workloads analyzed: %d, optimization opportunities: %d\n",
		report.WorkloadCount, report.ActionableCount)

	return nil
}
