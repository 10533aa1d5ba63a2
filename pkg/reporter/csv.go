package reporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// WriteCSV creates a CSV report of the actionable suggestions.
func WriteCSV(report *Report, writer io.Writer) error {
	w := csv.NewWriter(writer)

	header := []string{
		"Namespace",
		"Pod",
		"CPU Usage (cores)",
		"CPU (%)",
		"Memory Usage (MiB)",
		"Memory (%)",
		"Suggested Optimization",
		"Reason",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, s := range report.Actionable() {
		row := []string{
			s.Workload.Namespace,
			s.Workload.Pod,
			fmt.Sprintf("%.2f", s.CPUUsageCores),
			fmt.Sprintf("%.1f", s.CPUUtilization),
			fmt.Sprintf("%.2f", s.MemoryUsageBytes/bytesPerMiB),
			fmt.Sprintf("%.1f", s.MemoryUtilization),
			JoinActions(s.Actions),
			strings.Join(s.Reasons, "; "),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	summary := [][]string{
		{},
		{"SUMMARY"},
		{"Workloads Analyzed", fmt.Sprintf("%d", report.WorkloadCount)},
		{"Optimization Opportunities", fmt.Sprintf("%d", report.ActionableCount)},
	}
	for _, row := range summary {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV summary: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	return nil
}
