package tensor

// Backend is the device kernel interface the expression graph dispatches to.
// Every method is a primitive device operation: it reads and writes tensors
// whose storage was already allocated by the caller, never allocates graph
// memory itself, and is issued in graph order by a single driving goroutine.
//
// Elementwise kernels broadcast their operands, and gradient kernels
// accumulate into (never overwrite) their first argument, reducing over
// broadcast dimensions where the target is smaller than the source.
//
// Implementations:
//   - backend/cpu: pure Go loops, BLAS matrix multiply via gonum
//   - backend/webgpu: WGSL compute shaders via go-webgpu
type Backend interface {
	// Name returns the backend name (e.g. "CPU", "WebGPU").
	Name() string

	// Copy copies src into dst; sizes must match.
	Copy(dst, src *Tensor)
	// Fill sets every element of t to v.
	Fill(t *Tensor, v float32)

	// Elementwise binary kernels with broadcasting.
	Add(out, a, b *Tensor)
	Sub(out, a, b *Tensor)
	Mul(out, a, b *Tensor)
	Div(out, a, b *Tensor)

	// AddTo accumulates out += scale*a, broadcasting a up to out or reducing
	// a down onto out as their shapes require.
	AddTo(out, a *Tensor, scale float32)
	// AddProd accumulates out += scale*a*b under the same broadcast rules.
	AddProd(out, a, b *Tensor, scale float32)

	// Elementwise unary kernels.
	Tanh(out, a *Tensor)
	Logit(out, a *Tensor)
	ReLU(out, a *Tensor)
	Exp(out, a *Tensor)
	Log(out, a *Tensor)
	Sqrt(out, a *Tensor, eps float32)
	Square(out, a *Tensor)
	Neg(out, a *Tensor)

	// Gradient kernels; val is the forward value, adj the adjoint flowing in.
	TanhGrad(dx, adj, val *Tensor)
	LogitGrad(dx, adj, val *Tensor)
	ReLUGrad(dx, adj, xval *Tensor)
	ExpGrad(dx, adj, val *Tensor)
	LogGrad(dx, adj, xval *Tensor)
	SqrtGrad(dx, adj, val *Tensor)
	SquareGrad(dx, adj, xval *Tensor)
	DivGradNumerator(da, adj, b *Tensor)
	DivGradDenominator(db, adj, a, b *Tensor)

	// Row-wise softmax over the second dimension, optionally masked.
	Softmax(out, a, mask *Tensor)
	SoftmaxGrad(dx, adj, val *Tensor)
	LogSoftmax(out, a *Tensor)
	LogSoftmaxGrad(dx, adj, val *Tensor)

	// Reduce writes out[j] = scale * sum of the a elements that broadcast
	// onto j; out and a shapes must be broadcast-compatible.
	Reduce(out, a *Tensor, scale float32)

	// MatMul computes c = a x b + beta*c over the leading two dimensions,
	// with optional transposition of either operand.
	MatMul(c, a, b *Tensor, transA, transB bool, beta float32)

	// CopyRows gathers rows of in by index into out; PasteRows scatters
	// (accumulating) rows of adj back by the same indices.
	CopyRows(out, in *Tensor, indices []int)
	PasteRows(out, adj *Tensor, indices []int)

	// Transpose2D writes the two-dimensional transpose of in into out,
	// accumulating when beta is 1.
	Transpose2D(out, in *Tensor, beta float32)
}
