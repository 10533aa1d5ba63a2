package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	// Prometheus
	PrometheusURL string
	QueryTimeout  time.Duration

	// Analysis
	RateWindow time.Duration // rate() window for CPU usage
	Lookback   time.Duration // 0 = instant queries only

	// Heuristic thresholds. These are deliberately plain configuration
	// values, not derived from workload history.
	LowCPUCores        float64 // below this, CPU requests look padded
	LowMemoryBytes     float64 // below this, memory requests look padded
	HighCPUUtilization float64 // percent of request
	HighMemoryBytes    float64 // above this, consider more replicas

	// Storage
	StorageEnabled bool
	DatabaseURL    string
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	return &Config{
		PrometheusURL:      getEnv("PROMETHEUS_URL", ""),
		QueryTimeout:       getEnvDuration("QUERY_TIMEOUT", 5*time.Second),
		RateWindow:         5 * time.Minute,
		Lookback:           0,
		LowCPUCores:        getEnvFloat("LOW_CPU_CORES", 0.1),
		LowMemoryBytes:     getEnvFloat("LOW_MEMORY_BYTES", 50*1024*1024),
		HighCPUUtilization: getEnvFloat("HIGH_CPU_UTILIZATION", 80),
		HighMemoryBytes:    getEnvFloat("HIGH_MEMORY_BYTES", 500*1024*1024),
		StorageEnabled:     getEnvBool("STORAGE_ENABLED", false),
		DatabaseURL:        getEnv("DATABASE_URL", "host=localhost port=5432 user=analyzer password=devpassword dbname=k8sanalyzer sslmode=disable"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.PrometheusURL == "" {
		return fmt.Errorf("prometheus URL must be set")
	}
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("query timeout must be positive")
	}
	if c.LowCPUCores < 0 || c.LowMemoryBytes < 0 {
		return fmt.Errorf("low-usage thresholds must be non-negative")
	}
	if c.HighCPUUtilization <= 0 || c.HighCPUUtilization > 100 {
		return fmt.Errorf("high CPU utilization threshold must be in (0, 100]")
	}
	if c.Lookback < 0 {
		return fmt.Errorf("lookback must be non-negative")
	}
	if c.StorageEnabled && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set when storage is enabled")
	}
	return nil
}
