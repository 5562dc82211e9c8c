// Package nn provides layer builders that assemble differentiable
// expressions on a graph. A layer owns no storage of its own: applying it
// declares (or reattaches) named parameters on the graph and returns the
// output expression, so the same builder can be reused across generations.
package nn

import (
	"github.com/gradflow-ml/gradflow/internal/graph"
)

// Activation selects the nonlinearity a Dense layer applies to its
// pre-activation output.
type Activation int

const (
	// ActNone leaves the affine output untouched.
	ActNone Activation = iota
	// ActTanh applies the hyperbolic tangent.
	ActTanh
	// ActSigmoid applies the logistic sigmoid.
	ActSigmoid
	// ActReLU applies the rectified linear unit.
	ActReLU
)

// chain threads a sticky error through a sequence of graph operations so
// builders read as straight-line math. After the first failure every call
// returns nil and the error is reported once at the end.
type chain struct {
	err error
}

func (c *chain) dot(a, b graph.Expr) graph.Expr {
	if c.err != nil {
		return nil
	}
	v, err := graph.Dot(a, b)
	if err != nil {
		c.err = err
		return nil
	}
	return v
}

func (c *chain) plus(a, b graph.Expr) graph.Expr {
	if c.err != nil {
		return nil
	}
	v, err := graph.Plus(a, b)
	if err != nil {
		c.err = err
		return nil
	}
	return v
}

func (c *chain) minus(a, b graph.Expr) graph.Expr {
	if c.err != nil {
		return nil
	}
	v, err := graph.Minus(a, b)
	if err != nil {
		c.err = err
		return nil
	}
	return v
}

func (c *chain) mult(a, b graph.Expr) graph.Expr {
	if c.err != nil {
		return nil
	}
	v, err := graph.Mult(a, b)
	if err != nil {
		c.err = err
		return nil
	}
	return v
}

func (c *chain) tanh(a graph.Expr) graph.Expr {
	if c.err != nil {
		return nil
	}
	v, err := graph.Tanh(a)
	if err != nil {
		c.err = err
		return nil
	}
	return v
}

func (c *chain) unary(a graph.Expr, f func(graph.Expr) graph.Expr) graph.Expr {
	if c.err != nil || a == nil {
		return nil
	}
	return f(a)
}
