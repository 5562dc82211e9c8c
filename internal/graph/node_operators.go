package graph

import (
	"math"

	"github.com/pkg/errors"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Operator constructors return the canonical node for the requested
// computation: when a structurally identical node is already live, its handle
// comes back instead of a fresh one. Shape errors surface here, before the
// node enters the graph.

// binaryNode covers the elementwise arithmetic operators. The operands
// broadcast; gradient kernels reduce the adjoint back onto each operand's
// own shape.
type binaryNode struct {
	Node
}

func binaryOp(typ string, a, b Expr) (Expr, error) {
	shape, err := tensor.Broadcast(a.Shape(), b.Shape())
	if err != nil {
		return nil, errors.Wrapf(ErrShapeMismatch, "%s: %v", typ, err)
	}
	n := &binaryNode{Node: newNode(a.Graph(), typ, shape, a, b)}
	return a.Graph().Add(n), nil
}

// Plus returns a + b with broadcasting.
func Plus(a, b Expr) (Expr, error) { return binaryOp("+", a, b) }

// Minus returns a - b with broadcasting.
func Minus(a, b Expr) (Expr, error) { return binaryOp("-", a, b) }

// Mult returns the elementwise product a * b with broadcasting.
func Mult(a, b Expr) (Expr, error) { return binaryOp("*", a, b) }

// Div returns the elementwise quotient a / b with broadcasting.
func Div(a, b Expr) (Expr, error) { return binaryOp("/", a, b) }

func (n *binaryNode) ForwardOps() []NodeOp {
	be := n.graph.backend
	a, b := n.children[0], n.children[1]
	switch n.typ {
	case "+":
		return []NodeOp{func() { be.Add(n.Val(), a.Val(), b.Val()) }}
	case "-":
		return []NodeOp{func() { be.Sub(n.Val(), a.Val(), b.Val()) }}
	case "*":
		return []NodeOp{func() { be.Mul(n.Val(), a.Val(), b.Val()) }}
	default:
		return []NodeOp{func() { be.Div(n.Val(), a.Val(), b.Val()) }}
	}
}

func (n *binaryNode) BackwardOps() []NodeOp {
	be := n.graph.backend
	a, b := n.children[0], n.children[1]
	switch n.typ {
	case "+":
		return []NodeOp{
			func() { be.AddTo(a.Grad(), n.Grad(), 1) },
			func() { be.AddTo(b.Grad(), n.Grad(), 1) },
		}
	case "-":
		return []NodeOp{
			func() { be.AddTo(a.Grad(), n.Grad(), 1) },
			func() { be.AddTo(b.Grad(), n.Grad(), -1) },
		}
	case "*":
		return []NodeOp{
			func() { be.AddProd(a.Grad(), n.Grad(), b.Val(), 1) },
			func() { be.AddProd(b.Grad(), n.Grad(), a.Val(), 1) },
		}
	default:
		return []NodeOp{
			func() { be.DivGradNumerator(a.Grad(), n.Grad(), b.Val()) },
			func() { be.DivGradDenominator(b.Grad(), n.Grad(), a.Val(), b.Val()) },
		}
	}
}

// tanhNode applies tanh to the broadcast sum of its operands.
type tanhNode struct {
	Node
}

// Tanh returns tanh(a + b + ...) over one or more broadcast operands.
func Tanh(args ...Expr) (Expr, error) {
	if len(args) == 0 {
		return nil, errors.Wrap(ErrShapeMismatch, "tanh: no operands")
	}
	shape := args[0].Shape()
	for _, arg := range args[1:] {
		var err error
		shape, err = tensor.Broadcast(shape, arg.Shape())
		if err != nil {
			return nil, errors.Wrapf(ErrShapeMismatch, "tanh: %v", err)
		}
	}
	n := &tanhNode{Node: newNode(args[0].Graph(), "tanh", shape, args...)}
	return args[0].Graph().Add(n), nil
}

func (n *tanhNode) ForwardOps() []NodeOp {
	be := n.graph.backend
	return []NodeOp{func() {
		switch len(n.children) {
		case 1:
			be.Tanh(n.Val(), n.children[0].Val())
		default:
			be.Add(n.Val(), n.children[0].Val(), n.children[1].Val())
			for _, c := range n.children[2:] {
				be.AddTo(n.Val(), c.Val(), 1)
			}
			be.Tanh(n.Val(), n.Val())
		}
	}}
}

func (n *tanhNode) BackwardOps() []NodeOp {
	be := n.graph.backend
	ops := make([]NodeOp, len(n.children))
	for i := range n.children {
		child := n.children[i]
		ops[i] = func() { be.TanhGrad(child.Grad(), n.Grad(), n.Val()) }
	}
	return ops
}

// unaryNode covers the single-operand elementwise operators. eps is only
// meaningful for the sqrt kind.
type unaryNode struct {
	Node
	eps float32
}

func unary(typ string, a Expr, eps float32) Expr {
	n := &unaryNode{Node: newNode(a.Graph(), typ, a.Shape(), a), eps: eps}
	if typ == "sqrt" {
		n.mixHash(hashFloat(eps))
	}
	return a.Graph().Add(n)
}

// Logit returns the elementwise sigmoid of a.
func Logit(a Expr) Expr { return unary("logit", a, 0) }

// ReLU returns the elementwise rectifier max(0, a).
func ReLU(a Expr) Expr { return unary("ReLU", a, 0) }

// Log returns the elementwise natural logarithm of a.
func Log(a Expr) Expr { return unary("log", a, 0) }

// Exp returns the elementwise exponential of a.
func Exp(a Expr) Expr { return unary("exp", a, 0) }

// Square returns the elementwise square of a.
func Square(a Expr) Expr { return unary("square", a, 0) }

// Neg returns the elementwise negation of a.
func Neg(a Expr) Expr { return unary("negate", a, 0) }

// Sqrt returns the elementwise square root of a + eps.
func Sqrt(a Expr, eps float32) Expr { return unary("sqrt", a, eps) }

func (n *unaryNode) Equal(o Expr) bool {
	other, ok := o.(*unaryNode)
	return ok && n.Node.Equal(o) && n.eps == other.eps
}

func (n *unaryNode) ForwardOps() []NodeOp {
	be := n.graph.backend
	a := n.children[0]
	switch n.typ {
	case "logit":
		return []NodeOp{func() { be.Logit(n.Val(), a.Val()) }}
	case "ReLU":
		return []NodeOp{func() { be.ReLU(n.Val(), a.Val()) }}
	case "log":
		return []NodeOp{func() { be.Log(n.Val(), a.Val()) }}
	case "exp":
		return []NodeOp{func() { be.Exp(n.Val(), a.Val()) }}
	case "square":
		return []NodeOp{func() { be.Square(n.Val(), a.Val()) }}
	case "negate":
		return []NodeOp{func() { be.Neg(n.Val(), a.Val()) }}
	default:
		return []NodeOp{func() { be.Sqrt(n.Val(), a.Val(), n.eps) }}
	}
}

func (n *unaryNode) BackwardOps() []NodeOp {
	be := n.graph.backend
	a := n.children[0]
	switch n.typ {
	case "logit":
		return []NodeOp{func() { be.LogitGrad(a.Grad(), n.Grad(), n.Val()) }}
	case "ReLU":
		return []NodeOp{func() { be.ReLUGrad(a.Grad(), n.Grad(), a.Val()) }}
	case "log":
		return []NodeOp{func() { be.LogGrad(a.Grad(), n.Grad(), a.Val()) }}
	case "exp":
		return []NodeOp{func() { be.ExpGrad(a.Grad(), n.Grad(), n.Val()) }}
	case "square":
		return []NodeOp{func() { be.SquareGrad(a.Grad(), n.Grad(), a.Val()) }}
	case "negate":
		return []NodeOp{func() { be.AddTo(a.Grad(), n.Grad(), -1) }}
	default:
		return []NodeOp{func() { be.SqrtGrad(a.Grad(), n.Grad(), n.Val()) }}
	}
}

// softmaxNode normalizes rows, optionally under a mask. The mask operand
// receives no gradient.
type softmaxNode struct {
	Node
	logVariant bool
}

// Softmax returns the row-wise softmax of a; mask may be nil. Masked-out
// positions come out as zero probability. The mask must match a's shape
// exactly, the kernel walks both buffers in lockstep.
func Softmax(a, mask Expr) (Expr, error) {
	children := []Expr{a}
	if mask != nil {
		if mask.Shape() != a.Shape() {
			return nil, errors.Wrapf(ErrShapeMismatch, "softmax: mask shape %v does not match operand shape %v",
				mask.Shape(), a.Shape())
		}
		children = append(children, mask)
	}
	n := &softmaxNode{Node: newNode(a.Graph(), "softmax", a.Shape(), children...)}
	return a.Graph().Add(n), nil
}

// LogSoftmax returns the row-wise log-softmax of a.
func LogSoftmax(a Expr) Expr {
	n := &softmaxNode{
		Node:       newNode(a.Graph(), "logsoftmax", a.Shape(), a),
		logVariant: true,
	}
	return a.Graph().Add(n)
}

func (n *softmaxNode) ForwardOps() []NodeOp {
	be := n.graph.backend
	a := n.children[0]
	if n.logVariant {
		return []NodeOp{func() { be.LogSoftmax(n.Val(), a.Val()) }}
	}
	return []NodeOp{func() {
		var mask *tensor.Tensor
		if len(n.children) > 1 {
			mask = n.children[1].Val()
		}
		be.Softmax(n.Val(), a.Val(), mask)
	}}
}

func (n *softmaxNode) BackwardOps() []NodeOp {
	be := n.graph.backend
	a := n.children[0]
	var op NodeOp
	if n.logVariant {
		op = func() { be.LogSoftmaxGrad(a.Grad(), n.Grad(), n.Val()) }
	} else {
		op = func() { be.SoftmaxGrad(a.Grad(), n.Grad(), n.Val()) }
	}
	ops := []NodeOp{op}
	if len(n.children) > 1 {
		ops = append(ops, nil)
	}
	return ops
}

// reduceNode sums or averages over one axis.
type reduceNode struct {
	Node
	axis  int
	scale float32
}

func reduce(typ string, a Expr, axis int) (Expr, error) {
	if axis < 0 || axis >= tensor.Rank {
		return nil, errors.Wrapf(ErrShapeMismatch, "%s: axis %d out of range", typ, axis)
	}
	shape := a.Shape()
	extent := shape[axis]
	shape.Set(axis, 1)

	scale := float32(1)
	if typ == "mean" {
		scale = 1 / float32(extent)
	}
	n := &reduceNode{Node: newNode(a.Graph(), typ, shape, a), axis: axis, scale: scale}
	n.mixHash(uint64(axis))
	return a.Graph().Add(n), nil
}

// Sum reduces a by summation over the given axis.
func Sum(a Expr, axis int) (Expr, error) { return reduce("sum", a, axis) }

// Mean reduces a by averaging over the given axis.
func Mean(a Expr, axis int) (Expr, error) { return reduce("mean", a, axis) }

func (n *reduceNode) Equal(o Expr) bool {
	other, ok := o.(*reduceNode)
	return ok && n.Node.Equal(o) && n.axis == other.axis && n.scale == other.scale
}

func (n *reduceNode) ForwardOps() []NodeOp {
	be := n.graph.backend
	a := n.children[0]
	return []NodeOp{func() { be.Reduce(n.Val(), a.Val(), n.scale) }}
}

func (n *reduceNode) BackwardOps() []NodeOp {
	be := n.graph.backend
	a := n.children[0]
	return []NodeOp{func() { be.AddTo(a.Grad(), n.Grad(), n.scale) }}
}

// dotNode is the matrix product over the leading two dimensions.
type dotNode struct {
	Node
}

// Dot returns the matrix product a x b; the inner dimensions must agree.
func Dot(a, b Expr) (Expr, error) {
	aRows := a.Shape()[0]
	aCols := a.Shape().Elements() / aRows
	bRows := b.Shape()[0]
	bCols := b.Shape().Elements() / bRows
	if aCols != bRows {
		return nil, errors.Wrapf(ErrShapeMismatch, "dot: %v x %v", a.Shape(), b.Shape())
	}
	n := &dotNode{Node: newNode(a.Graph(), "dot", tensor.NewShape(aRows, bCols), a, b)}
	return a.Graph().Add(n), nil
}

func (n *dotNode) ForwardOps() []NodeOp {
	be := n.graph.backend
	a, b := n.children[0], n.children[1]
	return []NodeOp{func() { be.MatMul(n.Val(), a.Val(), b.Val(), false, false, 0) }}
}

func (n *dotNode) BackwardOps() []NodeOp {
	be := n.graph.backend
	a, b := n.children[0], n.children[1]
	return []NodeOp{
		// dA += adj x B^T
		func() { be.MatMul(a.Grad(), n.Grad(), b.Val(), false, true, 1) },
		// dB += A^T x adj
		func() { be.MatMul(b.Grad(), a.Val(), n.Grad(), true, false, 1) },
	}
}

// rowsNode gathers a subset of rows by index (embedding lookup).
type rowsNode struct {
	Node
	indices []int
}

// Rows selects the given rows of a, in order, into a new node.
func Rows(a Expr, indices []int) (Expr, error) {
	rows := a.Shape()[0]
	cols := a.Shape().Elements() / rows
	for _, idx := range indices {
		if idx < 0 || idx >= rows {
			return nil, errors.Wrapf(ErrShapeMismatch, "rows: index %d out of %d rows", idx, rows)
		}
	}
	n := &rowsNode{
		Node:    newNode(a.Graph(), "rows", tensor.NewShape(len(indices), cols), a),
		indices: indices,
	}
	extras := make([]uint64, len(indices))
	for i, idx := range indices {
		extras[i] = uint64(idx)
	}
	n.mixHash(extras...)
	return a.Graph().Add(n), nil
}

func (n *rowsNode) Equal(o Expr) bool {
	other, ok := o.(*rowsNode)
	if !ok || !n.Node.Equal(o) || len(n.indices) != len(other.indices) {
		return false
	}
	for i, idx := range n.indices {
		if idx != other.indices[i] {
			return false
		}
	}
	return true
}

func (n *rowsNode) ForwardOps() []NodeOp {
	be := n.graph.backend
	a := n.children[0]
	return []NodeOp{func() { be.CopyRows(n.Val(), a.Val(), n.indices) }}
}

func (n *rowsNode) BackwardOps() []NodeOp {
	be := n.graph.backend
	a := n.children[0]
	return []NodeOp{func() { be.PasteRows(a.Grad(), n.Grad(), n.indices) }}
}

// transposeNode swaps the leading two dimensions.
type transposeNode struct {
	Node
}

// Transpose returns the two-dimensional transpose of a.
func Transpose(a Expr) Expr {
	rows := a.Shape()[0]
	cols := a.Shape().Elements() / rows
	n := &transposeNode{Node: newNode(a.Graph(), "transpose", tensor.NewShape(cols, rows), a)}
	return a.Graph().Add(n)
}

func (n *transposeNode) ForwardOps() []NodeOp {
	be := n.graph.backend
	a := n.children[0]
	return []NodeOp{func() { be.Transpose2D(n.Val(), a.Val(), 0) }}
}

func (n *transposeNode) BackwardOps() []NodeOp {
	be := n.graph.backend
	a := n.children[0]
	return []NodeOp{func() { be.Transpose2D(a.Grad(), n.Grad(), 1) }}
}

func hashFloat(f float32) uint64 {
	return uint64(math.Float32bits(f))
}
