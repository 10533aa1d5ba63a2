package reporter

import (
	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/models"
)

// ReportFormat represents the output format
type ReportFormat string

const (
	FormatText ReportFormat = "text"
	FormatJSON ReportFormat = "json"
	FormatCSV  ReportFormat = "csv"
)

// Report contains all data for rendering a suggestions report.
// It deliberately carries no generation timestamp: a report produced twice
// from the same inputs must render byte-identically.
type Report struct {
	Namespace       string
	Suggestions     []*models.Suggestion
	WorkloadCount   int
	ActionableCount int
	NamespaceStats  map[string]*NamespaceStats
}

// NamespaceStats holds per-namespace totals
type NamespaceStats struct {
	Namespace     string
	WorkloadCount int
	Actionable    int
}

// Build assembles a Report from suggestions.
func Build(suggestions []*models.Suggestion, namespace string) *Report {
	report := &Report{
		Namespace:      namespace,
		Suggestions:    suggestions,
		NamespaceStats: make(map[string]*NamespaceStats),
	}

	for _, s := range suggestions {
		report.WorkloadCount++

		ns := s.Workload.Namespace
		if _, exists := report.NamespaceStats[ns]; !exists {
			report.NamespaceStats[ns] = &NamespaceStats{Namespace: ns}
		}
		stat := report.NamespaceStats[ns]
		stat.WorkloadCount++

		if s.Actionable() {
			report.ActionableCount++
			stat.Actionable++
		}
	}

	return report
}

// Actionable returns only the suggestions that ask for a change, in the
// original order.
func (r *Report) Actionable() []*models.Suggestion {
	var out []*models.Suggestion
	for _, s := range r.Suggestions {
		if s.Actionable() {
			out = append(out, s)
		}
	}
	return out
}
