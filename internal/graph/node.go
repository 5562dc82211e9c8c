package graph

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/pkg/errors"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Node is the embedded base of every concrete node type. It carries the whole
// Chainable state; concrete types add their kernels and any extra operands
// (axis, eps, indices) that must enter the structural hash.
type Node struct {
	graph     *Graph
	id        int
	typ       string
	name      string
	shape     tensor.Shape
	trainable bool
	group     int
	edges     int
	hash      uint64

	children []Expr

	val  *tensor.Tensor
	grad *tensor.Tensor

	debug        bool
	debugMessage string
}

// newNode builds the base for a composite node: trainable is the OR of the
// children's flags and the hash covers type, name and every child hash.
func newNode(g *Graph, typ string, shape tensor.Shape, children ...Expr) Node {
	trainable := false
	for _, c := range children {
		if c.Trainable() {
			trainable = true
			break
		}
	}
	n := Node{
		graph:     g,
		id:        -1,
		typ:       typ,
		name:      NameNone,
		shape:     shape,
		trainable: trainable,
		children:  children,
	}
	n.hash = n.structuralHash()
	return n
}

// newSourceNode builds the base for a childless node (input, parameter,
// constant). Sources get an identity hash: two separate inputs are distinct
// computations even when structurally indistinguishable.
func newSourceNode(g *Graph, typ string, shape tensor.Shape, trainable bool) Node {
	n := Node{
		graph:     g,
		id:        -1,
		typ:       typ,
		name:      NameNone,
		shape:     shape,
		trainable: trainable,
	}
	n.hash = hashValues(hashString(typ), g.nextSourceSeq())
	return n
}

// structuralHash folds type, name and the memoized child hashes.
func (n *Node) structuralHash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(n.typ))
	h.Write([]byte(n.name))
	var buf [8]byte
	for _, c := range n.children {
		binary.LittleEndian.PutUint64(buf[:], c.Hash())
		h.Write(buf[:])
	}
	return h.Sum64()
}

// mixHash folds extra operands (axis, eps, step) into the memoized hash.
// Concrete types call it once, at construction.
func (n *Node) mixHash(extras ...uint64) {
	n.hash = hashValues(append([]uint64{n.hash}, extras...)...)
}

func hashValues(vs ...uint64) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, v := range vs {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	return h.Sum64()
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

func (n *Node) ID() int      { return n.id }
func (n *Node) SetID(id int) { n.id = id }
func (n *Node) Type() string { return n.typ }
func (n *Node) Name() string { return n.name }
func (n *Node) SetName(s string) {
	n.name = s
}

func (n *Node) Shape() tensor.Shape { return n.shape }

func (n *Node) Trainable() bool     { return n.trainable }
func (n *Node) SetTrainable(t bool) { n.trainable = t }
func (n *Node) Children() []Expr    { return n.children }
func (n *Node) Hash() uint64        { return n.hash }
func (n *Node) Group() int          { return n.group }
func (n *Node) SetGroup(g int)      { n.group = g }
func (n *Node) Edges() int          { return n.edges }
func (n *Node) IncreaseEdges(i int) { n.edges += i }
func (n *Node) DecreaseEdges(i int) { n.edges -= i }
func (n *Node) Graph() *Graph       { return n.graph }

// Equal is the defensive structural comparison behind hash-based reuse:
// same operator kind, same name, same shape and identical child nodes.
// Types with extra operands wrap it with their own comparison.
func (n *Node) Equal(o Expr) bool {
	if n.typ != o.Type() || n.name != o.Name() || !n.shape.Equal(o.Shape()) {
		return false
	}
	oc := o.Children()
	if len(n.children) != len(oc) {
		return false
	}
	for i, c := range n.children {
		if c != oc[i] {
			return false
		}
	}
	return true
}

// Allocate acquires the value buffer from the graph arena. Idempotent.
func (n *Node) Allocate() error {
	if n.val != nil {
		return nil
	}
	val, err := n.graph.arena.Allocate(n.shape, n.graph.dry)
	if err != nil {
		return errors.Wrapf(err, "node %d (%s)", n.id, n.typ)
	}
	n.val = val
	return nil
}

// Free returns value and gradient storage to the arena.
func (n *Node) Free() {
	if n.val != nil {
		n.graph.arena.Free(n.val, n.graph.dry)
		n.val = nil
	}
	if n.grad != nil {
		n.graph.arena.Free(n.grad, n.graph.dry)
		n.grad = nil
	}
}

// Init is a no-op for composite nodes; sources override it to place their
// payload into the value buffer.
func (n *Node) Init() error { return nil }

// InitDependent seeds the adjoint with ones: d(objective)/d(objective) = 1.
func (n *Node) InitDependent() error {
	if err := n.allocateGrad(); err != nil {
		return err
	}
	if !n.graph.dry {
		n.graph.backend.Fill(n.grad, 1)
	}
	return nil
}

// SetZeroAdjoint allocates and zeroes the gradient buffer once; subsequent
// calls within a generation are no-ops.
func (n *Node) SetZeroAdjoint() error {
	if n.grad != nil {
		return nil
	}
	if err := n.allocateGrad(); err != nil {
		return err
	}
	if !n.graph.dry {
		n.graph.backend.Fill(n.grad, 0)
	}
	return nil
}

func (n *Node) allocateGrad() error {
	if n.grad != nil {
		return nil
	}
	grad, err := n.graph.arena.Allocate(n.shape, n.graph.dry)
	if err != nil {
		return errors.Wrapf(err, "node %d (%s) adjoint", n.id, n.typ)
	}
	n.grad = grad
	return nil
}

func (n *Node) Val() *tensor.Tensor  { return n.val }
func (n *Node) Grad() *tensor.Tensor { return n.grad }

// ForwardOps and BackwardOps are empty in the base; sources have no
// computation and concrete operators override them.
func (n *Node) ForwardOps() []NodeOp  { return nil }
func (n *Node) BackwardOps() []NodeOp { return nil }

// SetDebug requests a dump of the value after forward and, for trainable
// nodes, the gradient after backward.
func (n *Node) SetDebug(message string) {
	n.debug = true
	n.debugMessage = message
}

func (n *Node) debugRequested() (string, bool) {
	return n.debugMessage, n.debug
}
