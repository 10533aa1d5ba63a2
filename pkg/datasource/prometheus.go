package datasource

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/models"
)

// PrometheusSource queries a Prometheus-compatible /api/v1 endpoint
type PrometheusSource struct {
	client  v1.API
	url     string
	timeout time.Duration
}

// NewPrometheusSource creates a source for the given base URL.
func NewPrometheusSource(cfg Config) (*PrometheusSource, error) {
	client, err := api.NewClient(api.Config{
		Address: cfg.PrometheusURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus client: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &PrometheusSource{
		client:  v1.NewAPI(client),
		url:     cfg.PrometheusURL,
		timeout: timeout,
	}, nil
}

// QueryVector runs an instant query and returns one value per workload.
// Samples without pod and namespace labels are dropped.
func (p *PrometheusSource) QueryVector(ctx context.Context, query string) (Vector, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	result, warnings, err := p.client.Query(ctx, query, time.Now())
	if err != nil {
		return nil, fmt.Errorf("query %q failed: %w", query, err)
	}
	if len(warnings) > 0 {
		fmt.Printf("[WARN] Prometheus: %v\n", warnings)
	}

	vector, ok := result.(model.Vector)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %T for query %q", result, query)
	}

	values := make(Vector, len(vector))
	for _, sample := range vector {
		pod := string(sample.Metric["pod"])
		namespace := string(sample.Metric["namespace"])
		if pod == "" || namespace == "" {
			continue
		}
		values[models.Workload{Namespace: namespace, Pod: pod}] = float64(sample.Value)
	}

	return values, nil
}

// QueryRange runs a range query over the lookback window ending now and
// returns the flattened samples of all matching series.
func (p *PrometheusSource) QueryRange(ctx context.Context, query string, lookback, step time.Duration) ([]models.Sample, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	end := time.Now()
	r := v1.Range{
		Start: end.Add(-lookback),
		End:   end,
		Step:  step,
	}

	result, warnings, err := p.client.QueryRange(ctx, query, r)
	if err != nil {
		return nil, fmt.Errorf("range query %q failed: %w", query, err)
	}
	if len(warnings) > 0 {
		fmt.Printf("[WARN] Prometheus: %v\n", warnings)
	}

	matrix, ok := result.(model.Matrix)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %T for range query %q", result, query)
	}

	var samples []models.Sample
	for _, series := range matrix {
		for _, value := range series.Values {
			samples = append(samples, models.Sample{
				Timestamp: value.Timestamp.Time(),
				Value:     float64(value.Value),
			})
		}
	}

	return samples, nil
}

// IsAvailable checks if Prometheus is reachable
func (p *PrometheusSource) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	_, _, err := p.client.Query(ctx, "up", time.Now())
	return err == nil
}

func (p *PrometheusSource) Name() string {
	return "Prometheus"
}
