package reporter

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/models"
)

func sampleSuggestions() []*models.Suggestion {
	return []*models.Suggestion{
		{
			Workload:          models.Workload{Namespace: "default", Pod: "api-1"},
			CPUUsageCores:     0.05,
			CPUUtilization:    10.0,
			MemoryUsageBytes:  32 * 1024 * 1024,
			MemoryUtilization: 12.5,
			Actions: []models.SuggestionType{
				models.SuggestReduceCPURequest,
				models.SuggestReduceMemoryRequest,
			},
			Reasons: []string{
				"Low CPU usage (0.05 cores) vs request (0.50 cores)",
				"Low memory usage (32.00 MiB) vs request (256.00 MiB)",
			},
		},
		{
			Workload:          models.Workload{Namespace: "default", Pod: "worker-1"},
			CPUUsageCores:     0.30,
			CPUUtilization:    60.0,
			MemoryUsageBytes:  200 * 1024 * 1024,
			MemoryUtilization: 78.0,
			Actions:           []models.SuggestionType{models.SuggestNoChange},
			Reasons:           []string{"Resource allocation is appropriate"},
		},
		{
			Workload:          models.Workload{Namespace: "payments", Pod: "gateway-1"},
			CPUUsageCores:     0.90,
			CPUUtilization:    90.0,
			MemoryUsageBytes:  600 * 1024 * 1024,
			MemoryUtilization: 58.6,
			Actions:           []models.SuggestionType{models.SuggestScaleReplicas},
			Reasons:           []string{"High resource usage: CPU 90.0%, memory 600.00 MiB"},
		},
	}
}

func TestBuildCountsActionable(t *testing.T) {
	report := Build(sampleSuggestions(), "")

	if report.WorkloadCount != 3 {
		t.Errorf("Expected 3 workloads, got %d", report.WorkloadCount)
	}
	if report.ActionableCount != 2 {
		t.Errorf("Expected 2 actionable, got %d", report.ActionableCount)
	}
	if stat := report.NamespaceStats["default"]; stat == nil || stat.WorkloadCount != 2 || stat.Actionable != 1 {
		t.Errorf("Unexpected default namespace stats: %+v", stat)
	}
}

func TestWriteTextIsDeterministic(t *testing.T) {
	report := Build(sampleSuggestions(), "")

	var first, second bytes.Buffer
	if err := WriteText(report, &first); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	if err := WriteText(report, &second); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}

	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("Text report is not byte-identical across renders")
	}
}

func TestWriteTextContainsNoTimestamps(t *testing.T) {
	report := Build(sampleSuggestions(), "")

	var out bytes.Buffer
	if err := WriteText(report, &out); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}

	text := out.String()
	if regexp.MustCompile(`\d{4}-\d{2}-\d{2}`).MatchString(text) ||
		regexp.MustCompile(`\d{2}:\d{2}:\d{2}`).MatchString(text) {
		t.Errorf("Report body must not contain timestamps:\n%s", text)
	}
}

func TestWriteTextSkipsNoChangeRows(t *testing.T) {
	report := Build(sampleSuggestions(), "")

	var out bytes.Buffer
	if err := WriteText(report, &out); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}

	text := out.String()
	if strings.Contains(text, "worker-1") {
		t.Error("NO_CHANGE workloads must not appear in the table")
	}
	if !strings.Contains(text, "api-1") || !strings.Contains(text, "gateway-1") {
		t.Errorf("Actionable workloads missing from report:\n%s", text)
	}
	if !strings.Contains(text, "Reduce CPU requests, Reduce memory requests") {
		t.Errorf("Expected joined action text, got:\n%s", text)
	}
}

func TestWriteTextAllHealthy(t *testing.T) {
	healthy := []*models.Suggestion{
		{
			Workload: models.Workload{Namespace: "default", Pod: "api-1"},
			Actions:  []models.SuggestionType{models.SuggestNoChange},
			Reasons:  []string{"Resource allocation is appropriate"},
		},
	}
	report := Build(healthy, "")

	var out bytes.Buffer
	if err := WriteText(report, &out); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}

	if !strings.Contains(out.String(), "No optimizations needed") {
		t.Errorf("Expected all-healthy message, got:\n%s", out.String())
	}
}

func TestWriteJSONShape(t *testing.T) {
	report := Build(sampleSuggestions(), "")

	var out bytes.Buffer
	if err := WriteJSON(report, &out); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var records []map[string]string
	if err := json.Unmarshal(out.Bytes(), &records); err != nil {
		t.Fatalf("Export is not valid JSON: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 actionable records, got %d", len(records))
	}

	first := records[0]
	if first["namespace"] != "default" || first["pod_name"] != "api-1" {
		t.Errorf("Unexpected first record: %v", first)
	}
	if first["cpu_usage"] != "0.05 cores" {
		t.Errorf("Expected formatted cpu_usage, got %q", first["cpu_usage"])
	}
	if first["suggested_optimization"] != "Reduce CPU requests, Reduce memory requests" {
		t.Errorf("Unexpected suggested_optimization: %q", first["suggested_optimization"])
	}
	if !strings.Contains(first["reason"], "; ") {
		t.Errorf("Expected joined reasons, got %q", first["reason"])
	}
}

func TestWriteCSVHeaderAndRows(t *testing.T) {
	report := Build(sampleSuggestions(), "")

	var out bytes.Buffer
	if err := WriteCSV(report, &out); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if !strings.HasPrefix(lines[0], "Namespace,Pod,") {
		t.Errorf("Unexpected CSV header: %s", lines[0])
	}

	var dataRows int
	for _, line := range lines[1:] {
		if strings.HasPrefix(line, "default,") || strings.HasPrefix(line, "payments,") {
			dataRows++
		}
	}
	if dataRows != 2 {
		t.Errorf("Expected 2 data rows, got %d", dataRows)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteCSVPropagatesWriteErrors(t *testing.T) {
	report := Build(sampleSuggestions(), "")

	if err := WriteCSV(report, failingWriter{}); err == nil {
		t.Error("Expected an error when the underlying writer fails")
	}
}
