package models

import "time"

// Workload identifies a Kubernetes workload by namespace and pod
type Workload struct {
	Namespace string
	Pod       string
}

func (w Workload) String() string {
	return w.Namespace + "/" + w.Pod
}

// Usage holds the observed metrics for a single workload, joined from the
// four Prometheus result sets by (namespace, pod).
type Usage struct {
	Workload Workload

	// CPU in cores, memory in bytes
	CPUUsageCores    float64
	MemoryUsageBytes float64

	// Configured requests from kube-state-metrics (or the cluster API).
	// HasCPURequest / HasMemoryRequest distinguish "request is zero" from
	// "no request series existed for this pod".
	CPURequestCores    float64
	MemoryRequestBytes float64
	HasCPURequest      bool
	HasMemoryRequest   bool
}

// CPUUtilization returns observed CPU as a percentage of the request,
// or 0 when no request is set.
func (u *Usage) CPUUtilization() float64 {
	if !u.HasCPURequest || u.CPURequestCores <= 0 {
		return 0
	}
	return u.CPUUsageCores / u.CPURequestCores * 100
}

// MemoryUtilization returns observed memory as a percentage of the request,
// or 0 when no request is set.
func (u *Usage) MemoryUtilization() float64 {
	if !u.HasMemoryRequest || u.MemoryRequestBytes <= 0 {
		return 0
	}
	return u.MemoryUsageBytes / u.MemoryRequestBytes * 100
}

// Sample represents a single metric sample
type Sample struct {
	Timestamp time.Time
	Value     float64
}
