// Copyright 2026 The Gradflow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu exposes the pure-Go CPU backend.
package cpu

import (
	internalcpu "github.com/gradflow-ml/gradflow/internal/backend/cpu"
	"github.com/gradflow-ml/gradflow/tensor"
)

// Backend computes every kernel on the CPU, using gonum's BLAS for matrix
// multiplication.
type Backend = internalcpu.Backend

var _ tensor.Backend = (*Backend)(nil)

// New creates a CPU backend.
func New() *Backend {
	return internalcpu.New()
}
