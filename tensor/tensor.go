// Copyright 2026 The Gradflow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor exposes the dense float32 tensor type and the backend
// contract its kernels are written against.
package tensor

import (
	internaltensor "github.com/gradflow-ml/gradflow/internal/tensor"
)

// Rank is the fixed dimensionality of every shape; trailing extents are 1.
const Rank = internaltensor.Rank

// Shape describes the extents of a tensor.
type Shape = internaltensor.Shape

// NewShape builds a shape from up to Rank extents, padding with ones.
func NewShape(dims ...int) Shape {
	return internaltensor.NewShape(dims...)
}

// Broadcast returns the union shape of a and b, or an error when their
// extents are incompatible.
func Broadcast(a, b Shape) (Shape, error) {
	return internaltensor.Broadcast(a, b)
}

// Tensor is a dense float32 tensor, possibly a borrowed view into another
// tensor's storage.
type Tensor = internaltensor.Tensor

// NewView wraps existing storage without copying it.
func NewView(data []float32, shape Shape) *Tensor {
	return internaltensor.NewView(data, shape)
}

// Backend is the kernel set a compute device must implement.
type Backend = internaltensor.Backend

// Arena hands out tensor storage in reusable regions and tracks peak demand.
type Arena = internaltensor.Arena

// NewArena creates an empty arena.
func NewArena() *Arena {
	return internaltensor.NewArena()
}
