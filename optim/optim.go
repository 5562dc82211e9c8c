// Copyright 2026 The Gradflow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim exposes the gradient-descent optimizers.
package optim

import (
	internaloptim "github.com/gradflow-ml/gradflow/internal/optim"
)

// Optimizer updates parameter values from their accumulated gradients.
type Optimizer = internaloptim.Optimizer

// SGD is stochastic gradient descent with optional momentum.
type SGD = internaloptim.SGD

// SGDConfig configures SGD.
type SGDConfig = internaloptim.SGDConfig

// NewSGD creates an SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	return internaloptim.NewSGD(config)
}

// Adagrad adapts per-element learning rates by accumulated squared
// gradients.
type Adagrad = internaloptim.Adagrad

// AdagradConfig configures Adagrad.
type AdagradConfig = internaloptim.AdagradConfig

// NewAdagrad creates an Adagrad optimizer.
func NewAdagrad(config AdagradConfig) *Adagrad {
	return internaloptim.NewAdagrad(config)
}

// Adam combines momentum with per-element adaptive learning rates.
type Adam = internaloptim.Adam

// AdamConfig configures Adam.
type AdamConfig = internaloptim.AdamConfig

// NewAdam creates an Adam optimizer.
func NewAdam(config AdamConfig) *Adam {
	return internaloptim.NewAdam(config)
}
