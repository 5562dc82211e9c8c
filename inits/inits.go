// Copyright 2026 The Gradflow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package inits exposes parameter initialization strategies.
package inits

import (
	"math/rand"

	internalinits "github.com/gradflow-ml/gradflow/internal/inits"
)

// Initializer fills a freshly allocated tensor with starting values.
type Initializer = internalinits.Initializer

// Zeros fills with zeros.
func Zeros() Initializer { return internalinits.Zeros() }

// Ones fills with ones.
func Ones() Initializer { return internalinits.Ones() }

// Constant fills with v.
func Constant(v float32) Initializer { return internalinits.Constant(v) }

// Uniform samples uniformly from [lo, hi).
func Uniform(lo, hi float32, rng *rand.Rand) Initializer {
	return internalinits.Uniform(lo, hi, rng)
}

// Normal samples from a Gaussian.
func Normal(mean, std float32, rng *rand.Rand) Initializer {
	return internalinits.Normal(mean, std, rng)
}

// Glorot samples Xavier-uniform values scaled by the tensor's fan.
func Glorot(rng *rand.Rand) Initializer { return internalinits.Glorot(rng) }

// FromSlice copies fixed values; the slice length must match the tensor.
func FromSlice(values []float32) Initializer { return internalinits.FromSlice(values) }
