// Copyright 2026 The Gradflow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu exposes the WebGPU compute backend. The wgpu_native
// bindings are only built on windows; on other platforms New always returns
// an error and IsAvailable reports false, so callers can fall back to the
// CPU backend:
//
//	var backend tensor.Backend = cpu.New()
//	if webgpu.IsAvailable() {
//	    gpu, err := webgpu.New()
//	    if err == nil {
//	        defer gpu.Release()
//	        backend = gpu
//	    }
//	}
package webgpu
