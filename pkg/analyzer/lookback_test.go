package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/datasource"
	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/models"
	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/promql"
)

// fakeSource serves canned range-query results keyed by query string.
type fakeSource struct {
	ranges map[string][]models.Sample
	errs   map[string]error
}

func (f *fakeSource) QueryVector(ctx context.Context, query string) (datasource.Vector, error) {
	return nil, nil
}

func (f *fakeSource) QueryRange(ctx context.Context, query string, lookback, step time.Duration) ([]models.Sample, error) {
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	return f.ranges[query], nil
}

func (f *fakeSource) IsAvailable(ctx context.Context) bool { return true }

func (f *fakeSource) Name() string { return "fake" }

func rampSamples(n int) []models.Sample {
	samples := make([]models.Sample, n)
	for i := range samples {
		samples[i] = models.Sample{Value: float64(i + 1)}
	}
	return samples
}

func TestRefineWithLookbackReplacesInstantValues(t *testing.T) {
	queries := promql.NewBuilder("", 5*time.Minute)

	// 21 samples ramping 1..21: P95 lands exactly on the 20th value.
	source := &fakeSource{
		ranges: map[string][]models.Sample{
			queries.PodCPUUsage("default", "api-1"):    rampSamples(21),
			queries.PodMemoryUsage("default", "api-1"): {{Value: 100}, {Value: 100}, {Value: 100}},
		},
	}

	usages := []models.Usage{
		{
			Workload:         models.Workload{Namespace: "default", Pod: "api-1"},
			CPUUsageCores:    0.05,
			MemoryUsageBytes: 42,
		},
	}

	an := New(source, queries, "", false)
	if err := an.RefineWithLookback(context.Background(), usages, time.Hour); err != nil {
		t.Fatalf("RefineWithLookback failed: %v", err)
	}

	if usages[0].CPUUsageCores != 20 {
		t.Errorf("Expected P95 CPU 20, got %f", usages[0].CPUUsageCores)
	}
	if usages[0].MemoryUsageBytes != 100 {
		t.Errorf("Expected P95 memory 100, got %f", usages[0].MemoryUsageBytes)
	}
}

func TestRefineWithLookbackKeepsInstantValuesWithoutSamples(t *testing.T) {
	queries := promql.NewBuilder("", 5*time.Minute)

	// The pod is too new: both range queries come back empty.
	source := &fakeSource{}

	usages := []models.Usage{
		{
			Workload:         models.Workload{Namespace: "default", Pod: "fresh-1"},
			CPUUsageCores:    0.42,
			MemoryUsageBytes: 64 * 1024 * 1024,
		},
	}

	an := New(source, queries, "", false)
	if err := an.RefineWithLookback(context.Background(), usages, time.Hour); err != nil {
		t.Fatalf("RefineWithLookback failed: %v", err)
	}

	if usages[0].CPUUsageCores != 0.42 {
		t.Errorf("Expected instant CPU value kept, got %f", usages[0].CPUUsageCores)
	}
	if usages[0].MemoryUsageBytes != 64*1024*1024 {
		t.Errorf("Expected instant memory value kept, got %f", usages[0].MemoryUsageBytes)
	}
}

func TestRefineWithLookbackErrorNamesWorkload(t *testing.T) {
	queries := promql.NewBuilder("", 5*time.Minute)

	source := &fakeSource{
		errs: map[string]error{
			queries.PodCPUUsage("payments", "gateway-1"): errors.New("query timed out"),
		},
	}

	usages := []models.Usage{
		{Workload: models.Workload{Namespace: "payments", Pod: "gateway-1"}, CPUUsageCores: 0.9},
	}

	an := New(source, queries, "", false)
	err := an.RefineWithLookback(context.Background(), usages, time.Hour)
	if err == nil {
		t.Fatal("Expected an error when a range query fails")
	}
	if !strings.Contains(err.Error(), "payments/gateway-1") {
		t.Errorf("Expected error to name the workload, got: %v", err)
	}
	if usages[0].CPUUsageCores != 0.9 {
		t.Errorf("Failed refinement must not modify the row, got %f", usages[0].CPUUsageCores)
	}
}

func TestRefineWithLookbackRejectsNonPositiveWindow(t *testing.T) {
	an := New(&fakeSource{}, promql.NewBuilder("", 5*time.Minute), "", false)

	if err := an.RefineWithLookback(context.Background(), nil, 0); err == nil {
		t.Error("Expected an error for a zero lookback window")
	}
}
