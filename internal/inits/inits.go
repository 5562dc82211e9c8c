// Package inits provides weight initialization strategies for parameter and
// constant nodes. An Initializer fills an already-allocated tensor in place.
package inits

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Initializer fills a freshly allocated tensor with starting values.
type Initializer func(t *tensor.Tensor) error

// Zeros fills the tensor with zeros.
func Zeros() Initializer {
	return Constant(0)
}

// Ones fills the tensor with ones.
func Ones() Initializer {
	return Constant(1)
}

// Constant fills the tensor with a single value.
func Constant(v float32) Initializer {
	return func(t *tensor.Tensor) error {
		data := t.Data()
		for i := range data {
			data[i] = v
		}
		return nil
	}
}

// Uniform fills the tensor with samples from U(lo, hi).
func Uniform(lo, hi float32, rng *rand.Rand) Initializer {
	return func(t *tensor.Tensor) error {
		data := t.Data()
		for i := range data {
			data[i] = lo + rng.Float32()*(hi-lo)
		}
		return nil
	}
}

// Normal fills the tensor with samples from N(mean, std^2).
func Normal(mean, std float32, rng *rand.Rand) Initializer {
	return func(t *tensor.Tensor) error {
		data := t.Data()
		for i := range data {
			data[i] = mean + float32(rng.NormFloat64())*std
		}
		return nil
	}
}

// Glorot is the Xavier uniform initializer: U(-l, l) with
// l = sqrt(6 / (fan_in + fan_out)), fan counts taken from the leading two
// dimensions.
func Glorot(rng *rand.Rand) Initializer {
	return func(t *tensor.Tensor) error {
		s := t.Shape()
		fanOut := s[0]
		fanIn := t.Size() / fanOut
		limit := float32(math.Sqrt(6.0 / float64(fanIn+fanOut)))
		return Uniform(-limit, limit, rng)(t)
	}
}

// FromSlice copies the given values; the length must match the tensor size.
func FromSlice(values []float32) Initializer {
	return func(t *tensor.Tensor) error {
		if len(values) != t.Size() {
			return errors.Errorf("inits: %d values for tensor of size %d", len(values), t.Size())
		}
		copy(t.Data(), values)
		return nil
	}
}
