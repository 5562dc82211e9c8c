//go:build !windows

package webgpu

import "github.com/pkg/errors"

// Backend is a placeholder on platforms without wgpu_native support.
type Backend struct{}

// New always fails on platforms without wgpu_native support.
func New() (*Backend, error) {
	return nil, errors.New("webgpu: not supported on this platform")
}

// IsAvailable reports whether a WebGPU adapter can be acquired.
func IsAvailable() bool {
	return false
}

// Release is a no-op on platforms without wgpu_native support.
func (b *Backend) Release() {}
