package graph

import (
	"github.com/pkg/errors"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// viewNode reinterprets a slice of its child's buffer under a different
// shape. It owns no storage: Val and Grad return borrowed views, allocation
// and reclamation are no-ops, and adjoint bookkeeping delegates to the child
// so gradient terms written through the view land in the child's buffer.
type viewNode struct {
	Node
	viewShape tensor.Shape
	offset    int
}

// Reshape reinterprets a's buffer under a new shape with the same element
// count.
func Reshape(a Expr, shape tensor.Shape) (Expr, error) {
	if shape.Elements() != a.Shape().Elements() {
		return nil, errors.Wrapf(ErrShapeMismatch, "reshape: %v to %v", a.Shape(), shape)
	}
	n := &viewNode{
		Node:      newNode(a.Graph(), "reshape", shape, a),
		viewShape: shape,
	}
	return a.Graph().Add(n), nil
}

// Timestep selects one leading-dimension slice of a as a (1, cols) view.
func Timestep(a Expr, step int) (Expr, error) {
	steps := a.Shape()[0]
	if step < 0 || step >= steps {
		return nil, errors.Wrapf(ErrShapeMismatch, "timestep: step %d of %d", step, steps)
	}
	cols := a.Shape().Elements() / steps
	shape := tensor.NewShape(1, cols)
	n := &viewNode{
		Node:      newNode(a.Graph(), "timestep", shape, a),
		viewShape: shape,
		offset:    step * cols,
	}
	n.mixHash(uint64(step))
	return a.Graph().Add(n), nil
}

func (n *viewNode) Equal(o Expr) bool {
	other, ok := o.(*viewNode)
	return ok && n.Node.Equal(o) && n.offset == other.offset
}

// Allocate is a no-op: the child's buffer, already allocated by the time this
// node runs, is the only storage.
func (n *viewNode) Allocate() error { return nil }

// Free is a no-op: a borrowed view must never be returned to the arena.
func (n *viewNode) Free() {}

func (n *viewNode) Val() *tensor.Tensor {
	data := n.children[0].Val().Data()
	return tensor.NewView(data[n.offset:n.offset+n.viewShape.Elements()], n.viewShape)
}

func (n *viewNode) Grad() *tensor.Tensor {
	data := n.children[0].Grad().Data()
	return tensor.NewView(data[n.offset:n.offset+n.viewShape.Elements()], n.viewShape)
}

// SetZeroAdjoint delegates to the child: the view has no adjoint buffer of
// its own, and zeroing must happen once per underlying buffer.
func (n *viewNode) SetZeroAdjoint() error {
	return n.children[0].SetZeroAdjoint()
}

// InitDependent seeds ones through the view into the child's adjoint.
func (n *viewNode) InitDependent() error {
	if err := n.children[0].SetZeroAdjoint(); err != nil {
		return err
	}
	if !n.graph.dry {
		n.graph.backend.Fill(n.Grad(), 1)
	}
	return nil
}
