// Package kube reads container resource requests straight from the
// cluster API, for clusters where kube-state-metrics is not scraped.
package kube

import (
	"context"
	"fmt"
	"path/filepath"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"

	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/models"
)

// Requests holds the summed container requests of one pod.
type Requests struct {
	CPUCores    float64
	MemoryBytes float64
}

// Client wraps a Kubernetes clientset
type Client struct {
	clientset kubernetes.Interface
}

// New builds a client from a kubeconfig path. An empty path falls back to
// ~/.kube/config.
func New(kubeconfig string) (*Client, error) {
	if kubeconfig == "" {
		if home := homedir.HomeDir(); home != "" {
			kubeconfig = filepath.Join(home, ".kube", "config")
		}
	}

	config, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build config: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	return &Client{clientset: clientset}, nil
}

// NewWithClientset wires an existing clientset, used by tests.
func NewWithClientset(clientset kubernetes.Interface) *Client {
	return &Client{clientset: clientset}
}

// ResourceRequests lists pods and sums their container requests per pod.
// An empty namespace lists across all namespaces.
func (c *Client) ResourceRequests(ctx context.Context, namespace string) (map[models.Workload]Requests, error) {
	pods, err := c.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods: %w", err)
	}

	requests := make(map[models.Workload]Requests, len(pods.Items))
	for _, pod := range pods.Items {
		var r Requests
		for _, container := range pod.Spec.Containers {
			r.CPUCores += float64(container.Resources.Requests.Cpu().MilliValue()) / 1000
			r.MemoryBytes += float64(container.Resources.Requests.Memory().Value())
		}
		requests[models.Workload{Namespace: pod.Namespace, Pod: pod.Name}] = r
	}

	return requests, nil
}

// ApplyRequests overlays cluster-reported requests onto usage rows.
// Zero-valued requests are treated as "not set", matching pods whose spec
// declares no requests.
func ApplyRequests(usages []models.Usage, requests map[models.Workload]Requests) {
	for i := range usages {
		u := &usages[i]
		r, ok := requests[u.Workload]
		if !ok {
			continue
		}
		if r.CPUCores > 0 {
			u.CPURequestCores = r.CPUCores
			u.HasCPURequest = true
		}
		if r.MemoryBytes > 0 {
			u.MemoryRequestBytes = r.MemoryBytes
			u.HasMemoryRequest = true
		}
	}
}
