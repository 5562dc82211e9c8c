// Package optim implements the parameter update algorithms applied between
// graph generations.
//
// This package provides:
//   - Optimizer interface: base interface for all optimizers
//   - SGD: stochastic gradient descent with optional momentum
//   - Adagrad: per-element adaptive learning rates
//   - Adam: adaptive moment estimation
//
// Example usage:
//
//	opt := optim.NewAdam(optim.AdamConfig{LR: 0.001})
//
//	for batch := range batches {
//	    g.Clear()
//	    loss := buildLoss(g, batch)
//	    if err := g.Backprop(); err != nil {
//	        return err
//	    }
//	    opt.Step(g.Params())
//	}
package optim

import "github.com/gradflow-ml/gradflow/internal/graph"

// Optimizer applies one gradient update to every parameter. Parameters are
// mutated in place between generations, never mid-pass; gradient zeroing is
// the graph's job at the start of the next backward pass.
type Optimizer interface {
	// Step applies the update rule to every parameter.
	Step(params *graph.Parameters)

	// LR returns the current learning rate, for monitoring and scheduling.
	LR() float32

	// SetLR replaces the learning rate, for external schedules.
	SetLR(lr float32)
}
