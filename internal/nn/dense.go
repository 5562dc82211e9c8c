package nn

import (
	"fmt"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/gradflow-ml/gradflow/internal/graph"
	"github.com/gradflow-ml/gradflow/internal/inits"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Dense is a fully connected layer builder.
//
// Applying it to a single input computes y = act(x·W + b) where x has shape
// (batch, in), W has shape (in, dim) and b has shape (1, dim). Applying it to
// several inputs sums their individual projections before the bias and
// activation, with one weight matrix per input.
//
// Parameters are registered on the graph under dl4mt-style names: "<prefix>_W"
// and "<prefix>_b" for a single input, "<prefix>_W0", "<prefix>_W1", ... when
// there are several.
type Dense struct {
	prefix string
	dim    int
	act    Activation
	rng    *rand.Rand
}

// NewDense creates a dense layer builder producing dim output features.
// Weights are Glorot-initialized from rng; biases start at zero.
func NewDense(prefix string, dim int, act Activation, rng *rand.Rand) *Dense {
	return &Dense{prefix: prefix, dim: dim, act: act, rng: rng}
}

// Apply declares the layer's parameters on g and returns the output
// expression. Reapplying on a cleared graph reattaches the same parameters,
// so their values persist across generations.
func (d *Dense) Apply(g *graph.Graph, inputs ...graph.Expr) (graph.Expr, error) {
	if len(inputs) == 0 {
		return nil, errors.Errorf("dense %s: no inputs", d.prefix)
	}

	c := &chain{}
	var sum graph.Expr
	for i, x := range inputs {
		name := d.prefix + "_W"
		if len(inputs) > 1 {
			name = fmt.Sprintf("%s_W%d", d.prefix, i)
		}
		in := x.Shape()[1]
		w, err := g.Param(name, tensor.NewShape(in, d.dim), inits.Glorot(d.rng))
		if err != nil {
			return nil, err
		}
		proj := c.dot(x, w)
		if sum == nil {
			sum = proj
		} else {
			sum = c.plus(sum, proj)
		}
	}

	b, err := g.Param(d.prefix+"_b", tensor.NewShape(1, d.dim), inits.Zeros())
	if err != nil {
		return nil, err
	}
	out := c.plus(sum, b)

	switch d.act {
	case ActTanh:
		out = c.tanh(out)
	case ActSigmoid:
		out = c.unary(out, graph.Logit)
	case ActReLU:
		out = c.unary(out, graph.ReLU)
	}
	if c.err != nil {
		return nil, errors.Wrapf(c.err, "dense %s", d.prefix)
	}
	return out, nil
}
