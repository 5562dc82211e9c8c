package cpu

import (
	"math"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

func tanh32(x float32) float32  { return float32(math.Tanh(float64(x))) }
func exp32(x float32) float32   { return float32(math.Exp(float64(x))) }
func log32(x float32) float32   { return float32(math.Log(float64(x))) }
func sqrt32(x float32) float32  { return float32(math.Sqrt(float64(x))) }
func logit32(x float32) float32 { return float32(1.0 / (1.0 + math.Exp(float64(-x)))) }

// Tanh computes out = tanh(a).
func (b *Backend) Tanh(out, a *tensor.Tensor) {
	element1(out, a, tanh32)
}

// Logit computes the sigmoid out = 1/(1+exp(-a)).
func (b *Backend) Logit(out, a *tensor.Tensor) {
	element1(out, a, logit32)
}

// ReLU computes out = max(0, a).
func (b *Backend) ReLU(out, a *tensor.Tensor) {
	element1(out, a, func(x float32) float32 {
		if x > 0 {
			return x
		}
		return 0
	})
}

// Exp computes out = exp(a).
func (b *Backend) Exp(out, a *tensor.Tensor) {
	element1(out, a, exp32)
}

// Log computes out = log(a).
func (b *Backend) Log(out, a *tensor.Tensor) {
	element1(out, a, log32)
}

// Sqrt computes out = sqrt(a + eps).
func (b *Backend) Sqrt(out, a *tensor.Tensor, eps float32) {
	element1(out, a, func(x float32) float32 { return sqrt32(x + eps) })
}

// Square computes out = a*a.
func (b *Backend) Square(out, a *tensor.Tensor) {
	element1(out, a, func(x float32) float32 { return x * x })
}

// Neg computes out = -a.
func (b *Backend) Neg(out, a *tensor.Tensor) {
	element1(out, a, func(x float32) float32 { return -x })
}

// TanhGrad accumulates dx += adj * (1 - val²), val being tanh's output.
func (b *Backend) TanhGrad(dx, adj, val *tensor.Tensor) {
	accum2(dx, adj, val, func(g, v float32) float32 { return g * (1 - v*v) })
}

// LogitGrad accumulates dx += adj * val * (1 - val).
func (b *Backend) LogitGrad(dx, adj, val *tensor.Tensor) {
	accum2(dx, adj, val, func(g, v float32) float32 { return g * v * (1 - v) })
}

// ReLUGrad accumulates dx += adj where the forward input was positive.
func (b *Backend) ReLUGrad(dx, adj, xval *tensor.Tensor) {
	accum2(dx, adj, xval, func(g, x float32) float32 {
		if x > 0 {
			return g
		}
		return 0
	})
}

// ExpGrad accumulates dx += adj * val, val being exp's output.
func (b *Backend) ExpGrad(dx, adj, val *tensor.Tensor) {
	accum2(dx, adj, val, func(g, v float32) float32 { return g * v })
}

// LogGrad accumulates dx += adj / xval, xval being log's input.
func (b *Backend) LogGrad(dx, adj, xval *tensor.Tensor) {
	accum2(dx, adj, xval, func(g, x float32) float32 { return g / x })
}

// SqrtGrad accumulates dx += adj / (2 * val), val being sqrt's output.
func (b *Backend) SqrtGrad(dx, adj, val *tensor.Tensor) {
	accum2(dx, adj, val, func(g, v float32) float32 { return 0.5 * g / v })
}

// SquareGrad accumulates dx += 2 * xval * adj.
func (b *Backend) SquareGrad(dx, adj, xval *tensor.Tensor) {
	accum2(dx, adj, xval, func(g, x float32) float32 { return 2 * x * g })
}

// DivGradNumerator accumulates da += adj / b.
func (b *Backend) DivGradNumerator(da, adj, denom *tensor.Tensor) {
	accum2(da, adj, denom, func(g, y float32) float32 { return g / y })
}

// DivGradDenominator accumulates db += -adj * a / b².
func (b *Backend) DivGradDenominator(db, adj, num, denom *tensor.Tensor) {
	accum3(db, adj, num, denom, func(g, x, y float32) float32 { return -g * x / (y * y) })
}
