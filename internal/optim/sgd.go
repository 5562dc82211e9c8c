package optim

import (
	"github.com/gradflow-ml/gradflow/internal/graph"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// SGD implements stochastic gradient descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
type SGD struct {
	lr         float32
	momentum   float32
	velocities map[string][]float32
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR       float32 // learning rate (default: 0.01)
	Momentum float32 // momentum factor (default: 0, range [0, 1))
}

// NewSGD creates an SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[string][]float32),
	}
}

// Step applies one SGD update to every parameter.
func (s *SGD) Step(params *graph.Parameters) {
	params.Range(func(name string, val, grad *tensor.Tensor) {
		v, g := val.Data(), grad.Data()
		if s.momentum == 0 {
			for i := range v {
				v[i] -= s.lr * g[i]
			}
			return
		}

		vel, ok := s.velocities[name]
		if !ok {
			vel = make([]float32, len(v))
			s.velocities[name] = vel
		}
		for i := range v {
			vel[i] = s.momentum*vel[i] + g[i]
			v[i] -= s.lr * vel[i]
		}
	})
}

// LR returns the current learning rate.
func (s *SGD) LR() float32 { return s.lr }

// SetLR replaces the learning rate.
func (s *SGD) SetLR(lr float32) { s.lr = lr }
