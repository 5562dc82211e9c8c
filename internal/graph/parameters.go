package graph

import (
	"sort"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Parameters is the named, persistent subset of nodes. Unlike transient
// nodes, parameter storage lives in its own arena and survives Clear():
// values persist until process teardown and gradients are zeroed, not freed,
// between generations.
type Parameters struct {
	named map[string]*paramNode
	order []*paramNode
	arena *tensor.Arena
}

func newParameters() *Parameters {
	return &Parameters{
		named: make(map[string]*paramNode),
		arena: tensor.NewArena(),
	}
}

func (p *Parameters) get(name string) *paramNode {
	return p.named[name]
}

func (p *Parameters) add(node *paramNode) {
	p.named[node.Name()] = node
	p.order = append(p.order, node)
}

// allocateForward gives every parameter its value buffer and runs its
// initializer exactly once.
func (p *Parameters) allocateForward(dry bool) error {
	for _, node := range p.order {
		if err := node.allocateValue(dry); err != nil {
			return err
		}
	}
	return nil
}

// allocateBackward gives every parameter a gradient buffer and zeroes all of
// them; parameter gradients reset at the start of each backward pass rather
// than lazily like transient adjoints.
func (p *Parameters) allocateBackward(dry bool) error {
	for _, node := range p.order {
		if err := node.allocateGradient(dry); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of registered parameters.
func (p *Parameters) Len() int { return len(p.order) }

// TotalElements returns the summed element count of all parameters.
func (p *Parameters) TotalElements() int {
	var total int
	for _, node := range p.order {
		total += node.Shape().Elements()
	}
	return total
}

// Names returns all parameter names in sorted order.
func (p *Parameters) Names() []string {
	names := make([]string, 0, len(p.named))
	for name := range p.named {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Range calls fn for every parameter in registration order. It is the
// optimizer's entry point for the update step.
func (p *Parameters) Range(fn func(name string, val, grad *tensor.Tensor)) {
	for _, node := range p.order {
		fn(node.Name(), node.Val(), node.Grad())
	}
}

// detach resets the per-generation scheduling state of every parameter so it
// can be reattached into a fresh generation.
func (p *Parameters) detach() {
	for _, node := range p.order {
		node.detach()
	}
}
