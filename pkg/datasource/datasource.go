package datasource

import (
	"context"
	"time"

	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/models"
)

// Vector maps workloads to a single metric value, the shape every
// per-pod instant query reduces to.
type Vector map[models.Workload]float64

// DataSource defines the interface for collecting metrics
type DataSource interface {
	QueryVector(ctx context.Context, query string) (Vector, error)
	QueryRange(ctx context.Context, query string, lookback time.Duration, step time.Duration) ([]models.Sample, error)
	IsAvailable(ctx context.Context) bool
	Name() string
}

type Config struct {
	PrometheusURL string
	Timeout       time.Duration
}
