// Package webgpu implements the GPU kernel backend on top of WebGPU.
// Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO WebGPU bindings.
//
// The heavy kernels (element-wise arithmetic, activations, matmul, transpose,
// softmax) run as WGSL compute shaders. Broadcasting, gradient and gather
// kernels fall back to the CPU backend: they run once per graph step over
// small operands and are not worth a round trip through device memory.
package webgpu
