//go:build windows

package webgpu

import (
	"k8s.io/klog/v2"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// sameShape reports whether all tensors share one shape, the precondition for
// the non-broadcasting GPU kernels.
func sameShape(ts ...*tensor.Tensor) bool {
	for _, t := range ts[1:] {
		if !t.Shape().Equal(ts[0].Shape()) {
			return false
		}
	}
	return true
}

// binary dispatches an equal-shape binary kernel to the GPU and falls back to
// the CPU path on broadcasting or dispatch failure.
func (b *Backend) binary(name, code string, out, x, y *tensor.Tensor, fallback func()) {
	if !sameShape(out, x, y) {
		fallback()
		return
	}
	if err := b.runBinary(name, code, out.Data(), x.Data(), y.Data()); err != nil {
		klog.Warningf("webgpu: %s kernel failed, using CPU: %v", name, err)
		fallback()
	}
}

func (b *Backend) unary(name, code string, out, x *tensor.Tensor, eps float32, fallback func()) {
	if err := b.runUnary(name, code, out.Data(), x.Data(), eps); err != nil {
		klog.Warningf("webgpu: %s kernel failed, using CPU: %v", name, err)
		fallback()
	}
}

func (b *Backend) Copy(dst, src *tensor.Tensor) { b.fallback.Copy(dst, src) }

func (b *Backend) Fill(t *tensor.Tensor, v float32) { b.fallback.Fill(t, v) }

func (b *Backend) Add(out, x, y *tensor.Tensor) {
	b.binary("add", addShader, out, x, y, func() { b.fallback.Add(out, x, y) })
}

func (b *Backend) Sub(out, x, y *tensor.Tensor) {
	b.binary("sub", subShader, out, x, y, func() { b.fallback.Sub(out, x, y) })
}

func (b *Backend) Mul(out, x, y *tensor.Tensor) {
	b.binary("mul", mulShader, out, x, y, func() { b.fallback.Mul(out, x, y) })
}

func (b *Backend) Div(out, x, y *tensor.Tensor) {
	b.binary("div", divShader, out, x, y, func() { b.fallback.Div(out, x, y) })
}

// Accumulating kernels reduce over broadcast dimensions; they stay on CPU.

func (b *Backend) AddTo(out, a *tensor.Tensor, scale float32) { b.fallback.AddTo(out, a, scale) }

func (b *Backend) AddProd(out, x, y *tensor.Tensor, scale float32) {
	b.fallback.AddProd(out, x, y, scale)
}

func (b *Backend) Tanh(out, x *tensor.Tensor) {
	b.unary("tanh", tanhShader, out, x, 0, func() { b.fallback.Tanh(out, x) })
}

func (b *Backend) Logit(out, x *tensor.Tensor) {
	b.unary("sigmoid", sigmoidShader, out, x, 0, func() { b.fallback.Logit(out, x) })
}

func (b *Backend) ReLU(out, x *tensor.Tensor) {
	b.unary("relu", reluShader, out, x, 0, func() { b.fallback.ReLU(out, x) })
}

func (b *Backend) Exp(out, x *tensor.Tensor) {
	b.unary("exp", expShader, out, x, 0, func() { b.fallback.Exp(out, x) })
}

func (b *Backend) Log(out, x *tensor.Tensor) {
	b.unary("log", logShader, out, x, 0, func() { b.fallback.Log(out, x) })
}

func (b *Backend) Sqrt(out, x *tensor.Tensor, eps float32) {
	b.unary("sqrt", sqrtShader, out, x, eps, func() { b.fallback.Sqrt(out, x, eps) })
}

func (b *Backend) Square(out, x *tensor.Tensor) {
	b.unary("square", squareShader, out, x, 0, func() { b.fallback.Square(out, x) })
}

func (b *Backend) Neg(out, x *tensor.Tensor) {
	b.unary("neg", negShader, out, x, 0, func() { b.fallback.Neg(out, x) })
}

// Gradient kernels accumulate under broadcast rules; they stay on CPU.

func (b *Backend) TanhGrad(dx, adj, val *tensor.Tensor) { b.fallback.TanhGrad(dx, adj, val) }

func (b *Backend) LogitGrad(dx, adj, val *tensor.Tensor) { b.fallback.LogitGrad(dx, adj, val) }

func (b *Backend) ReLUGrad(dx, adj, xval *tensor.Tensor) { b.fallback.ReLUGrad(dx, adj, xval) }

func (b *Backend) ExpGrad(dx, adj, val *tensor.Tensor) { b.fallback.ExpGrad(dx, adj, val) }

func (b *Backend) LogGrad(dx, adj, xval *tensor.Tensor) { b.fallback.LogGrad(dx, adj, xval) }

func (b *Backend) SqrtGrad(dx, adj, val *tensor.Tensor) { b.fallback.SqrtGrad(dx, adj, val) }

func (b *Backend) SquareGrad(dx, adj, xval *tensor.Tensor) { b.fallback.SquareGrad(dx, adj, xval) }

func (b *Backend) DivGradNumerator(da, adj, y *tensor.Tensor) {
	b.fallback.DivGradNumerator(da, adj, y)
}

func (b *Backend) DivGradDenominator(db, adj, x, y *tensor.Tensor) {
	b.fallback.DivGradDenominator(db, adj, x, y)
}

func (b *Backend) Softmax(out, x, mask *tensor.Tensor) {
	if mask != nil {
		b.fallback.Softmax(out, x, mask)
		return
	}
	rows := x.Shape()[0]
	cols := x.Size() / rows
	workgroups := uint32((rows + workgroupSize - 1) / workgroupSize)
	err := b.runRowKernel("softmax", softmaxShader, out.Data(), x.Data(), rows, cols, workgroups, 1)
	if err != nil {
		klog.Warningf("webgpu: softmax kernel failed, using CPU: %v", err)
		b.fallback.Softmax(out, x, mask)
	}
}

func (b *Backend) SoftmaxGrad(dx, adj, val *tensor.Tensor) { b.fallback.SoftmaxGrad(dx, adj, val) }

func (b *Backend) LogSoftmax(out, x *tensor.Tensor) { b.fallback.LogSoftmax(out, x) }

func (b *Backend) LogSoftmaxGrad(dx, adj, val *tensor.Tensor) {
	b.fallback.LogSoftmaxGrad(dx, adj, val)
}

func (b *Backend) Reduce(out, a *tensor.Tensor, scale float32) { b.fallback.Reduce(out, a, scale) }

func (b *Backend) MatMul(c, x, y *tensor.Tensor, transA, transB bool, beta float32) {
	if transA || transB || beta != 0 {
		b.fallback.MatMul(c, x, y, transA, transB, beta)
		return
	}
	m := x.Shape()[0]
	k := x.Size() / m
	n := y.Size() / y.Shape()[0]
	if err := b.runMatMul(c.Data(), x.Data(), y.Data(), m, k, n); err != nil {
		klog.Warningf("webgpu: matmul kernel failed, using CPU: %v", err)
		b.fallback.MatMul(c, x, y, transA, transB, beta)
	}
}

func (b *Backend) CopyRows(out, in *tensor.Tensor, indices []int) {
	b.fallback.CopyRows(out, in, indices)
}

func (b *Backend) PasteRows(out, adj *tensor.Tensor, indices []int) {
	b.fallback.PasteRows(out, adj, indices)
}

func (b *Backend) Transpose2D(out, in *tensor.Tensor, beta float32) {
	if beta != 0 {
		b.fallback.Transpose2D(out, in, beta)
		return
	}
	rows := in.Shape()[0]
	cols := in.Size() / rows
	wgX := uint32((cols + 15) / 16)
	wgY := uint32((rows + 15) / 16)
	err := b.runRowKernel("transpose", transposeShader, out.Data(), in.Data(), rows, cols, wgX, wgY)
	if err != nil {
		klog.Warningf("webgpu: transpose kernel failed, using CPU: %v", err)
		b.fallback.Transpose2D(out, in, beta)
	}
}
