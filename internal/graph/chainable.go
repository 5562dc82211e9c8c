package graph

import (
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// NodeOp is one primitive device operation. Forward and backward passes are
// lists of these, issued in order by the graph driver.
type NodeOp func()

// Expr is the contract every graph vertex satisfies. A node owns its place in
// the expression graph (id, children, tape level, edge count) and produces the
// device operations for its local computation and its local gradient
// contribution.
//
// BackwardOps returns one operation per child, aligned with Children(); the
// driver skips the operation for a child that is not trainable, and a nil
// entry means the child receives no gradient (e.g. a softmax mask).
type Expr interface {
	// ID returns the insertion-order id; a valid topological order.
	ID() int
	SetID(id int)

	// Type is the stable operator kind used in hashing and diagnostics.
	Type() string

	// Name returns the user-visible name, or NameNone for transient nodes.
	Name() string
	SetName(name string)

	Shape() tensor.Shape
	Trainable() bool
	SetTrainable(trainable bool)

	// Children returns the fixed operand list; immutable after construction.
	Children() []Expr

	// Hash is the memoized structural hash used for subexpression reuse.
	Hash() uint64
	// Equal is the defensive structural comparison run on a hash hit.
	Equal(other Expr) bool

	// Group is the tape level: 1 + the maximum group of any child.
	Group() int
	SetGroup(group int)

	Edges() int
	IncreaseEdges(n int)
	DecreaseEdges(n int)

	// Allocate acquires the value buffer from the graph arena; Free returns
	// value and gradient storage. Both are no-ops for view nodes.
	Allocate() error
	Free()

	// Init prepares the value buffer before forward ops run (sources copy or
	// fill their payload here; composite nodes do nothing).
	Init() error
	// InitDependent seeds the adjoint of the backward root with ones.
	InitDependent() error
	// SetZeroAdjoint allocates and zeroes the gradient buffer exactly once
	// per generation; later calls are no-ops so accumulated gradient terms
	// survive.
	SetZeroAdjoint() error

	ForwardOps() []NodeOp
	BackwardOps() []NodeOp

	Val() *tensor.Tensor
	Grad() *tensor.Tensor

	// Graph returns the graph this node was constructed against.
	Graph() *Graph
}

// NameNone marks a node as transient: its storage is reclaimed as soon as its
// edge count drains, and it never appears in the named table.
const NameNone = "none"

// Tape is an ordered sequence of nodes, used both for the full insertion
// order and for the per-level partition.
type Tape []Expr
