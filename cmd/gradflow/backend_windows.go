//go:build windows

package main

import (
	"k8s.io/klog/v2"

	"github.com/gradflow-ml/gradflow/internal/backend/cpu"
	"github.com/gradflow-ml/gradflow/internal/backend/webgpu"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// selectBackend picks the WebGPU backend when requested and available,
// falling back to the CPU backend otherwise.
func selectBackend(gpu bool) (tensor.Backend, func()) {
	if gpu {
		b, err := webgpu.New()
		if err == nil {
			return b, b.Release
		}
		klog.Warningf("webgpu unavailable, falling back to CPU: %v", err)
	}
	return cpu.New(), func() {}
}
