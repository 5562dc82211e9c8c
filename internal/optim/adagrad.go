package optim

import (
	"math"

	"github.com/gradflow-ml/gradflow/internal/graph"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Adagrad implements per-element adaptive learning rates.
//
// Update rule:
//
//	acc   = acc + gradient^2
//	param = param - lr * gradient / (sqrt(acc) + eps)
//
// Frequently updated elements see their effective rate shrink, which suits
// sparse-gradient parameters like embeddings.
type Adagrad struct {
	lr   float32
	eps  float32
	accs map[string][]float32
}

// AdagradConfig holds configuration for the Adagrad optimizer.
type AdagradConfig struct {
	LR  float32 // learning rate (default: 0.01)
	Eps float32 // denominator stabilizer (default: 1e-8)
}

// NewAdagrad creates an Adagrad optimizer.
func NewAdagrad(config AdagradConfig) *Adagrad {
	if config.LR == 0 {
		config.LR = 0.01
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &Adagrad{
		lr:   config.LR,
		eps:  config.Eps,
		accs: make(map[string][]float32),
	}
}

// Step applies one Adagrad update to every parameter.
func (a *Adagrad) Step(params *graph.Parameters) {
	params.Range(func(name string, val, grad *tensor.Tensor) {
		v, g := val.Data(), grad.Data()
		acc, ok := a.accs[name]
		if !ok {
			acc = make([]float32, len(v))
			a.accs[name] = acc
		}
		for i := range v {
			acc[i] += g[i] * g[i]
			v[i] -= a.lr * g[i] / (float32(math.Sqrt(float64(acc[i]))) + a.eps)
		}
	})
}

// LR returns the current learning rate.
func (a *Adagrad) LR() float32 { return a.lr }

// SetLR replaces the learning rate.
func (a *Adagrad) SetLR(lr float32) { a.lr = lr }
