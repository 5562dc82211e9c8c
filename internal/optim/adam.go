package optim

import (
	"math"

	"github.com/gradflow-ml/gradflow/internal/graph"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Adam implements adaptive moment estimation.
//
// Update rule:
//
//	m     = beta1 * m + (1 - beta1) * gradient
//	v     = beta2 * v + (1 - beta2) * gradient^2
//	mhat  = m / (1 - beta1^t)
//	vhat  = v / (1 - beta2^t)
//	param = param - lr * mhat / (sqrt(vhat) + eps)
type Adam struct {
	lr    float32
	beta1 float32
	beta2 float32
	eps   float32
	step  int

	moments1 map[string][]float32
	moments2 map[string][]float32
}

// AdamConfig holds configuration for the Adam optimizer.
type AdamConfig struct {
	LR    float32 // learning rate (default: 0.001)
	Beta1 float32 // first-moment decay (default: 0.9)
	Beta2 float32 // second-moment decay (default: 0.999)
	Eps   float32 // denominator stabilizer (default: 1e-8)
}

// NewAdam creates an Adam optimizer.
func NewAdam(config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Beta1 == 0 {
		config.Beta1 = 0.9
	}
	if config.Beta2 == 0 {
		config.Beta2 = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &Adam{
		lr:       config.LR,
		beta1:    config.Beta1,
		beta2:    config.Beta2,
		eps:      config.Eps,
		moments1: make(map[string][]float32),
		moments2: make(map[string][]float32),
	}
}

// Step applies one Adam update to every parameter.
func (a *Adam) Step(params *graph.Parameters) {
	a.step++
	correction1 := 1 - float32(math.Pow(float64(a.beta1), float64(a.step)))
	correction2 := 1 - float32(math.Pow(float64(a.beta2), float64(a.step)))

	params.Range(func(name string, val, grad *tensor.Tensor) {
		v, g := val.Data(), grad.Data()
		m1, ok := a.moments1[name]
		if !ok {
			m1 = make([]float32, len(v))
			a.moments1[name] = m1
		}
		m2, ok := a.moments2[name]
		if !ok {
			m2 = make([]float32, len(v))
			a.moments2[name] = m2
		}

		for i := range v {
			m1[i] = a.beta1*m1[i] + (1-a.beta1)*g[i]
			m2[i] = a.beta2*m2[i] + (1-a.beta2)*g[i]*g[i]
			mhat := m1[i] / correction1
			vhat := m2[i] / correction2
			v[i] -= a.lr * mhat / (float32(math.Sqrt(float64(vhat))) + a.eps)
		}
	})
}

// LR returns the current learning rate.
func (a *Adam) LR() float32 { return a.lr }

// SetLR replaces the learning rate.
func (a *Adam) SetLR(lr float32) { a.lr = lr }
