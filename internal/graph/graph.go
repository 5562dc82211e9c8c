package graph

import (
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/gradflow-ml/gradflow/internal/inits"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Graph owns one generation of the expression graph: the live nodes in
// insertion order, the hash table behind subexpression reuse, the tape-level
// partition, the top-node set, and the transient memory arena. The parameter
// table is the only state that survives Clear().
//
// A graph is driven from a single goroutine; it is not safe for concurrent
// use. One graph per compute device.
type Graph struct {
	backend tensor.Backend
	arena   *tensor.Arena
	params  *Parameters

	nodes    []Expr
	tapes    []Tape
	hashMap  map[uint64][]Expr
	named    map[string]Expr
	topNodes map[int]Expr

	count     int
	sourceSeq uint64

	// pos is the first node not yet evaluated; Forward resumes here so the
	// graph can be extended and partially re-evaluated.
	pos int

	// dry runs every structural step without numeric work, for memory
	// planning without a compute device.
	dry bool
}

// New creates an expression graph dispatching to the given kernel backend.
func New(backend tensor.Backend) *Graph {
	g := &Graph{
		backend: backend,
		arena:   tensor.NewArena(),
		params:  newParameters(),
	}
	g.reset()
	return g
}

func (g *Graph) reset() {
	g.nodes = nil
	g.tapes = nil
	g.hashMap = make(map[uint64][]Expr)
	g.named = make(map[string]Expr)
	g.topNodes = make(map[int]Expr)
	g.count = 0
	g.pos = 0
}

// Backend returns the kernel backend the graph dispatches to.
func (g *Graph) Backend() tensor.Backend { return g.backend }

// Params returns the persistent parameter table.
func (g *Graph) Params() *Parameters { return g.params }

// ReserveWorkspaceMB grows the transient arena to the given size up front.
// The arena also grows on demand; reserving just avoids growth during the
// first generations.
func (g *Graph) ReserveWorkspaceMB(mb int) {
	elements := mb * 1024 * 1024 / 4
	g.arena.Reserve(elements, false)
	klog.V(1).Infof("graph: reserved %s workspace", humanize.IBytes(uint64(mb)*1024*1024))
}

func (g *Graph) nextSourceSeq() uint64 {
	g.sourceSeq++
	return g.sourceSeq
}

// Add is the single insertion point for every newly constructed node. If a
// structurally identical node is already live, the new node is discarded and
// the existing one returned: all call sites building the same subexpression
// share one value and one gradient buffer.
func (g *Graph) Add(node Expr) Expr {
	h := node.Hash()
	for _, candidate := range g.hashMap[h] {
		if candidate.Equal(node) {
			return candidate
		}
	}

	node.SetID(g.count)
	g.count++
	g.nodes = append(g.nodes, node)
	g.hashMap[h] = append(g.hashMap[h], node)

	group := 0
	for _, child := range node.Children() {
		if child.Group()+1 > group {
			group = child.Group() + 1
		}
		// One edge slot for the forward read, one for the backward write,
		// charged to both endpoints.
		child.IncreaseEdges(2)
		node.IncreaseEdges(2)
		delete(g.topNodes, child.ID())
	}
	node.SetGroup(group)
	for len(g.tapes) <= group {
		g.tapes = append(g.tapes, nil)
	}
	g.tapes[group] = append(g.tapes[group], node)
	g.topNodes[node.ID()] = node

	return node
}

// Input creates a source node carrying externally supplied data.
func (g *Graph) Input(shape tensor.Shape, data []float32) (Expr, error) {
	if len(data) != shape.Elements() {
		return nil, errors.Wrapf(ErrShapeMismatch, "input: %d values for shape %v", len(data), shape)
	}
	n := &inputNode{Node: newSourceNode(g, "input", shape, true), data: data}
	return g.Add(n), nil
}

// Constant creates a non-trainable source node (masks, targets, literals).
func (g *Graph) Constant(shape tensor.Shape, init inits.Initializer) Expr {
	n := &constantNode{Node: newSourceNode(g, "const", shape, false), init: init}
	return g.Add(n)
}

// Param returns the named parameter, creating it on first use. An existing
// parameter is reattached into the current generation; its shape must match.
// Parameters are deduplicated by name, never by structural hash.
func (g *Graph) Param(name string, shape tensor.Shape, init inits.Initializer) (Expr, error) {
	if _, taken := g.named[name]; taken {
		return nil, errors.Wrapf(ErrNameCollision, "param %q names a non-parameter node", name)
	}

	if p := g.params.get(name); p != nil {
		if !p.Shape().Equal(shape) {
			return nil, errors.Wrapf(ErrShapeMismatch, "param %q exists with shape %v, requested %v",
				name, p.Shape(), shape)
		}
		if p.ID() < 0 {
			return g.Add(p), nil
		}
		return p, nil
	}

	p := &paramNode{Node: newSourceNode(g, "param", shape, true), init: init}
	p.SetName(name)
	g.params.add(p)
	return g.Add(p), nil
}

// NameNode binds a user-visible name to a node. Named nodes are excluded from
// eager memory reclamation and retrievable through Get.
func (g *Graph) NameNode(node Expr, name string) error {
	if _, taken := g.named[name]; taken {
		return errors.Wrapf(ErrNameCollision, "node name %q", name)
	}
	if g.params.get(name) != nil {
		return errors.Wrapf(ErrNameCollision, "node name %q collides with a parameter", name)
	}
	node.SetName(name)
	g.named[name] = node
	return nil
}

// Get returns the node bound to name, checking named nodes first and the
// parameter table second. Returns nil when the name is unbound.
func (g *Graph) Get(name string) Expr {
	if n, ok := g.named[name]; ok {
		return n
	}
	if p := g.params.get(name); p != nil {
		return p
	}
	return nil
}

// Forward evaluates every node not yet evaluated, in insertion order.
func (g *Graph) Forward() error {
	return g.forward(g.pos, false)
}

// ForwardFrom re-evaluates starting at an arbitrary position, used after the
// graph has been extended past an earlier Forward.
func (g *Graph) ForwardFrom(pos int) error {
	return g.forward(pos, false)
}

func (g *Graph) forward(pos int, dry bool) error {
	g.dry = dry
	defer func() { g.dry = false }()

	if err := g.params.allocateForward(dry); err != nil {
		return err
	}

	for i := pos; i < len(g.nodes); i++ {
		v := g.nodes[i]
		if err := v.Allocate(); err != nil {
			return err
		}
		if err := v.Init(); err != nil {
			return errors.Wrapf(err, "node %d (%s)", v.ID(), v.Type())
		}
		if !dry {
			for _, op := range v.ForwardOps() {
				op()
			}
			if msg, ok := debugRequested(v); ok {
				klog.Infof("debug %s: forward %s", msg, v.Val())
			}
		}
		for _, child := range v.Children() {
			child.DecreaseEdges(1)
			v.DecreaseEdges(1)
		}
	}
	g.pos = len(g.nodes)
	return nil
}

// Backward runs reverse-mode accumulation from the single top node and
// reclaims transient storage as edge counts drain.
func (g *Graph) Backward() error {
	return g.backward(false)
}

func (g *Graph) backward(dry bool) error {
	if len(g.topNodes) != 1 {
		return errors.Wrapf(ErrMultipleTopNodes, "%d top nodes", len(g.topNodes))
	}
	g.dry = dry
	defer func() { g.dry = false }()

	if err := g.params.allocateBackward(dry); err != nil {
		return err
	}

	var top Expr
	for _, v := range g.topNodes {
		top = v
	}
	if err := top.InitDependent(); err != nil {
		return err
	}

	for i := len(g.nodes) - 1; i >= 0; i-- {
		v := g.nodes[i]

		for _, child := range v.Children() {
			if child.Trainable() {
				if err := child.SetZeroAdjoint(); err != nil {
					return err
				}
			}
		}

		if v.Trainable() && !dry {
			ops := v.BackwardOps()
			children := v.Children()
			for j, op := range ops {
				if op == nil {
					continue
				}
				// Ops align with children; skip gradient work for operands
				// that take no gradient.
				if j < len(children) && !children[j].Trainable() {
					continue
				}
				op()
			}
			if msg, ok := debugRequested(v); ok {
				klog.Infof("debug %s: backward %s", msg, v.Grad())
			}
		}

		for _, child := range v.Children() {
			child.DecreaseEdges(1)
			v.DecreaseEdges(1)
			if child.Edges() == 0 && child.Name() == NameNone {
				child.Free()
			}
		}
		if v.Edges() == 0 && v.Name() == NameNone {
			v.Free()
		}
	}
	return nil
}

// Backprop runs one full generation: forward then backward.
func (g *Graph) Backprop() error {
	if err := g.Forward(); err != nil {
		return err
	}
	return g.Backward()
}

// PlanMemory executes a full dry generation and returns the peak transient
// arena demand in elements. It consumes the generation's edge counts; call
// Clear and rebuild before a real pass.
func (g *Graph) PlanMemory() (int, error) {
	if err := g.forward(g.pos, true); err != nil {
		return 0, err
	}
	if err := g.backward(true); err != nil {
		return 0, err
	}
	return g.arena.Peak(), nil
}

// Clear discards the current generation: all nodes, tapes, hashes, names and
// transient memory. Parameters and their storage persist.
func (g *Graph) Clear() {
	g.params.detach()
	g.reset()
	g.arena.Clear()
}

func debugRequested(v Expr) (string, bool) {
	type debugger interface {
		debugRequested() (string, bool)
	}
	if d, ok := v.(debugger); ok {
		return d.debugRequested()
	}
	return "", false
}
