package nn

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/gradflow-ml/gradflow/internal/graph"
	"github.com/gradflow-ml/gradflow/internal/inits"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// GRU is a gated recurrent unit cell builder.
//
// One step computes
//
//	z  = sigmoid(x·Wz + s·Uz + bz)
//	r  = sigmoid(x·Wr + s·Ur + br)
//	s~ = tanh(x·Wx + (r*s)·Ux + bx)
//	s' = (1-z)*s + z*s~
//
// where x is the (batch, in) input and s the (batch, dim) previous state.
// Each gate carries its own weight matrices and bias, registered under
// "<prefix>_Wz", "<prefix>_Uz", "<prefix>_bz" and so on, matching the dl4mt
// convention of input weights W, recurrent weights U and biases b.
type GRU struct {
	prefix string
	dim    int
	rng    *rand.Rand
}

// NewGRU creates a GRU cell builder with a dim-wide hidden state.
func NewGRU(prefix string, dim int, rng *rand.Rand) *GRU {
	return &GRU{prefix: prefix, dim: dim, rng: rng}
}

// Dim returns the width of the cell's hidden state.
func (c *GRU) Dim() int { return c.dim }

// InitialState returns a zero state constant for a batch of the given size.
func (c *GRU) InitialState(g *graph.Graph, batch int) graph.Expr {
	return g.Constant(tensor.NewShape(batch, c.dim), inits.Zeros())
}

// gateParams declares the three parameters of one gate.
func (c *GRU) gateParams(g *graph.Graph, gate string, in int) (w, u, b graph.Expr, err error) {
	if w, err = g.Param(c.prefix+"_W"+gate, tensor.NewShape(in, c.dim), inits.Glorot(c.rng)); err != nil {
		return
	}
	if u, err = g.Param(c.prefix+"_U"+gate, tensor.NewShape(c.dim, c.dim), inits.Glorot(c.rng)); err != nil {
		return
	}
	b, err = g.Param(c.prefix+"_b"+gate, tensor.NewShape(1, c.dim), inits.Zeros())
	return
}

// Apply advances the cell by one step and returns the new state expression.
func (c *GRU) Apply(g *graph.Graph, state, x graph.Expr) (graph.Expr, error) {
	in := x.Shape()[1]
	batch := state.Shape()[0]

	wz, uz, bz, err := c.gateParams(g, "z", in)
	if err != nil {
		return nil, err
	}
	wr, ur, br, err := c.gateParams(g, "r", in)
	if err != nil {
		return nil, err
	}
	wx, ux, bx, err := c.gateParams(g, "x", in)
	if err != nil {
		return nil, err
	}

	ch := &chain{}
	z := ch.unary(ch.plus(ch.plus(ch.dot(x, wz), ch.dot(state, uz)), bz), graph.Logit)
	r := ch.unary(ch.plus(ch.plus(ch.dot(x, wr), ch.dot(state, ur)), br), graph.Logit)
	prop := ch.tanh(ch.plus(ch.plus(ch.dot(x, wx), ch.dot(ch.mult(r, state), ux)), bx))

	ones := g.Constant(tensor.NewShape(batch, c.dim), inits.Ones())
	next := ch.plus(ch.mult(ch.minus(ones, z), state), ch.mult(z, prop))
	if ch.err != nil {
		return nil, errors.Wrapf(ch.err, "gru %s", c.prefix)
	}
	return next, nil
}
