package kube

import (
	"context"
	"math"
	"testing"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/models"
)

func testPod(namespace, name string, cpu, memory string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Namespace: namespace, Name: name},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{
				{
					Name: "main",
					Resources: corev1.ResourceRequirements{
						Requests: corev1.ResourceList{
							corev1.ResourceCPU:    resource.MustParse(cpu),
							corev1.ResourceMemory: resource.MustParse(memory),
						},
					},
				},
			},
		},
	}
}

func TestResourceRequestsSumsContainers(t *testing.T) {
	pod := testPod("default", "api-1", "250m", "256Mi")
	pod.Spec.Containers = append(pod.Spec.Containers, corev1.Container{
		Name: "sidecar",
		Resources: corev1.ResourceRequirements{
			Requests: corev1.ResourceList{
				corev1.ResourceCPU:    resource.MustParse("50m"),
				corev1.ResourceMemory: resource.MustParse("64Mi"),
			},
		},
	})

	client := NewWithClientset(fake.NewSimpleClientset(pod))

	requests, err := client.ResourceRequests(context.Background(), "default")
	if err != nil {
		t.Fatalf("ResourceRequests failed: %v", err)
	}

	r, ok := requests[models.Workload{Namespace: "default", Pod: "api-1"}]
	if !ok {
		t.Fatal("Expected requests for default/api-1")
	}
	if math.Abs(r.CPUCores-0.3) > 1e-9 {
		t.Errorf("Expected 0.3 cores, got %f", r.CPUCores)
	}
	if r.MemoryBytes != 320*1024*1024 {
		t.Errorf("Expected 320Mi, got %f", r.MemoryBytes)
	}
}

func TestResourceRequestsNoRequestsSet(t *testing.T) {
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Namespace: "default", Name: "bare-1"},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{{Name: "main"}},
		},
	}

	client := NewWithClientset(fake.NewSimpleClientset(pod))

	requests, err := client.ResourceRequests(context.Background(), "default")
	if err != nil {
		t.Fatalf("ResourceRequests failed: %v", err)
	}

	r := requests[models.Workload{Namespace: "default", Pod: "bare-1"}]
	if r.CPUCores != 0 || r.MemoryBytes != 0 {
		t.Errorf("Expected zero requests, got %+v", r)
	}
}

func TestApplyRequestsOverlaysUsage(t *testing.T) {
	usages := []models.Usage{
		{Workload: models.Workload{Namespace: "default", Pod: "api-1"}},
		{Workload: models.Workload{Namespace: "default", Pod: "api-2"}},
	}

	requests := map[models.Workload]Requests{
		{Namespace: "default", Pod: "api-1"}: {CPUCores: 0.5, MemoryBytes: 256 * 1024 * 1024},
	}

	ApplyRequests(usages, requests)

	if !usages[0].HasCPURequest || usages[0].CPURequestCores != 0.5 {
		t.Errorf("Expected overlaid CPU request, got %+v", usages[0])
	}
	if !usages[0].HasMemoryRequest || usages[0].MemoryRequestBytes != 256*1024*1024 {
		t.Errorf("Expected overlaid memory request, got %+v", usages[0])
	}
	if usages[1].HasCPURequest || usages[1].HasMemoryRequest {
		t.Error("Pod without cluster requests must keep flags clear")
	}
}

func TestApplyRequestsZeroMeansUnset(t *testing.T) {
	usages := []models.Usage{
		{Workload: models.Workload{Namespace: "default", Pod: "bare-1"}},
	}

	requests := map[models.Workload]Requests{
		{Namespace: "default", Pod: "bare-1"}: {},
	}

	ApplyRequests(usages, requests)

	if usages[0].HasCPURequest || usages[0].HasMemoryRequest {
		t.Error("Zero-valued requests must be treated as unset")
	}
}
