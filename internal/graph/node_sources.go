package graph

import (
	"github.com/pkg/errors"

	"github.com/gradflow-ml/gradflow/internal/inits"
)

// inputNode holds externally supplied data (a batch). It is rebuilt every
// generation and receives a gradient like any other trainable node.
type inputNode struct {
	Node
	data []float32
}

// Init copies the payload into the freshly allocated value buffer.
func (n *inputNode) Init() error {
	if n.graph.dry {
		return nil
	}
	return n.val.SetAll(n.data)
}

// constantNode holds values that take no gradient (masks, targets).
type constantNode struct {
	Node
	init inits.Initializer
}

func (n *constantNode) Init() error {
	if n.graph.dry {
		return nil
	}
	return n.init(n.val)
}

// paramNode is a trained weight. Its storage comes from the parameter arena,
// not the transient arena, so it is never reclaimed by the edge-count
// protocol and its value survives Clear().
type paramNode struct {
	Node
	init        inits.Initializer
	initialized bool
}

// Allocate is a no-op: parameter storage is managed by Parameters before the
// forward pass starts.
func (n *paramNode) Allocate() error { return nil }

// Free is a no-op: parameters persist until process teardown.
func (n *paramNode) Free() {}

func (n *paramNode) allocateValue(dry bool) error {
	if n.val != nil && !dry && n.val.Data() == nil {
		// A planning pass reserved this slot without data; take a real
		// buffer now.
		n.val = nil
	}
	if n.val == nil {
		val, err := n.graph.params.arena.Allocate(n.shape, dry)
		if err != nil {
			return errors.Wrapf(err, "parameter %q", n.name)
		}
		n.val = val
	}
	if !n.initialized && !dry {
		if err := n.init(n.val); err != nil {
			return errors.Wrapf(err, "parameter %q", n.name)
		}
		n.initialized = true
	}
	return nil
}

func (n *paramNode) allocateGradient(dry bool) error {
	if n.grad != nil && !dry && n.grad.Data() == nil {
		n.grad = nil
	}
	if n.grad == nil {
		grad, err := n.graph.params.arena.Allocate(n.shape, dry)
		if err != nil {
			return errors.Wrapf(err, "parameter %q adjoint", n.name)
		}
		n.grad = grad
	}
	if !dry {
		n.graph.backend.Fill(n.grad, 0)
	}
	return nil
}

// SetZeroAdjoint is a no-op: parameter gradients were already allocated and
// zeroed at the start of the backward pass.
func (n *paramNode) SetZeroAdjoint() error {
	if n.grad == nil {
		return n.allocateGradient(n.graph.dry)
	}
	return nil
}

// detach resets per-generation scheduling state for reattachment.
func (n *paramNode) detach() {
	n.id = -1
	n.edges = 0
	n.group = 0
}
