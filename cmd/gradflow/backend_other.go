//go:build !windows

package main

import (
	"k8s.io/klog/v2"

	"github.com/gradflow-ml/gradflow/internal/backend/cpu"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// selectBackend returns the CPU backend; wgpu_native bindings are only
// wired up on windows.
func selectBackend(gpu bool) (tensor.Backend, func()) {
	if gpu {
		klog.Warning("webgpu backend is not built on this platform, training on CPU")
	}
	return cpu.New(), func() {}
}
