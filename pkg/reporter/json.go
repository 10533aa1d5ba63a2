package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/models"
)

// jsonSuggestion is the export shape for a single suggestion. Observed
// values are pre-formatted strings so exported files read the same as the
// text report.
type jsonSuggestion struct {
	Namespace             string `json:"namespace"`
	PodName               string `json:"pod_name"`
	CPUUsage              string `json:"cpu_usage"`
	CPUPercentage         string `json:"cpu_percentage"`
	MemoryUsage           string `json:"memory_usage"`
	MemoryPercentage      string `json:"memory_percentage"`
	SuggestedOptimization string `json:"suggested_optimization"`
	Reason                string `json:"reason"`
}

func toJSONSuggestion(s *models.Suggestion) jsonSuggestion {
	return jsonSuggestion{
		Namespace:             s.Workload.Namespace,
		PodName:               s.Workload.Pod,
		CPUUsage:              fmt.Sprintf("%.2f cores", s.CPUUsageCores),
		CPUPercentage:         fmt.Sprintf("%.1f%%", s.CPUUtilization),
		MemoryUsage:           fmt.Sprintf("%.2f MiB", s.MemoryUsageBytes/bytesPerMiB),
		MemoryPercentage:      fmt.Sprintf("%.1f%%", s.MemoryUtilization),
		SuggestedOptimization: JoinActions(s.Actions),
		Reason:                strings.Join(s.Reasons, "; "),
	}
}

// WriteJSON renders the actionable suggestions as indented JSON.
func WriteJSON(report *Report, out io.Writer) error {
	records := make([]jsonSuggestion, 0)
	for _, s := range report.Actionable() {
		records = append(records, toJSONSuggestion(s))
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// ExportJSON writes the JSON report to a file.
func ExportJSON(report *Report, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	return WriteJSON(report, file)
}
