// Copyright 2026 The Gradflow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package webgpu

import (
	internalwebgpu "github.com/gradflow-ml/gradflow/internal/backend/webgpu"
)

// Backend runs supported kernels on the GPU via WGSL compute shaders and
// falls back to the CPU backend for the rest. On platforms without
// wgpu_native support it is a placeholder whose constructor always fails.
type Backend = internalwebgpu.Backend

// New acquires a WebGPU device. Call Release when done.
func New() (*Backend, error) {
	return internalwebgpu.New()
}

// IsAvailable reports whether a WebGPU adapter can be acquired.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}
