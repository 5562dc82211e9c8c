// Package cpu implements the tensor kernel interface in pure Go, with
// BLAS-backed matrix multiplication via gonum.
package cpu

import (
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Backend executes device operations on the host CPU.
type Backend struct{}

// New creates a new CPU backend.
func New() *Backend {
	return &Backend{}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "CPU"
}

// Copy copies src into dst.
func (b *Backend) Copy(dst, src *tensor.Tensor) {
	copy(dst.Data(), src.Data())
}

// Fill sets every element of t to v.
func (b *Backend) Fill(t *tensor.Tensor, v float32) {
	data := t.Data()
	for i := range data {
		data[i] = v
	}
}

// Add computes out = a + b with broadcasting.
func (b *Backend) Add(out, a, c *tensor.Tensor) {
	element2(out, a, c, func(x, y float32) float32 { return x + y })
}

// Sub computes out = a - b with broadcasting.
func (b *Backend) Sub(out, a, c *tensor.Tensor) {
	element2(out, a, c, func(x, y float32) float32 { return x - y })
}

// Mul computes out = a * b with broadcasting.
func (b *Backend) Mul(out, a, c *tensor.Tensor) {
	element2(out, a, c, func(x, y float32) float32 { return x * y })
}

// Div computes out = a / b with broadcasting.
func (b *Backend) Div(out, a, c *tensor.Tensor) {
	element2(out, a, c, func(x, y float32) float32 { return x / y })
}

// AddTo accumulates out += scale*a, broadcasting or reducing as needed.
func (b *Backend) AddTo(out, a *tensor.Tensor, scale float32) {
	accum1(out, a, func(x float32) float32 { return scale * x })
}

// AddProd accumulates out += scale*a*b.
func (b *Backend) AddProd(out, a, c *tensor.Tensor, scale float32) {
	accum2(out, a, c, func(x, y float32) float32 { return scale * x * y })
}

// Reduce writes out[j] = scale * sum of the a elements broadcasting onto j.
func (b *Backend) Reduce(out, a *tensor.Tensor, scale float32) {
	b.Fill(out, 0)
	accum1(out, a, func(x float32) float32 { return scale * x })
}
