package nn

import (
	"github.com/pkg/errors"

	"github.com/gradflow-ml/gradflow/internal/graph"
	"github.com/gradflow-ml/gradflow/internal/inits"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// CrossEntropy builds the mean negative log-likelihood of targets under the
// row-wise softmax of logits.
//
// logits has shape (batch, classes) and targets holds one class index per
// row. The loss is expressed as -mean(sum(onehot * logsoftmax(logits))),
// which keeps the computation stable for large logits and gives the usual
// softmax-minus-onehot gradient through the log-softmax backward kernel.
// The result is a (1, 1) expression.
func CrossEntropy(g *graph.Graph, logits graph.Expr, targets []int) (graph.Expr, error) {
	shape := logits.Shape()
	batch, classes := shape[0], shape[1]
	if len(targets) != batch {
		return nil, errors.Errorf("cross entropy: %d targets for %d logit rows", len(targets), batch)
	}

	hot := make([]float32, batch*classes)
	for i, t := range targets {
		if t < 0 || t >= classes {
			return nil, errors.Errorf("cross entropy: target %d out of range [0,%d)", t, classes)
		}
		hot[i*classes+t] = 1
	}
	// The one-hot selector is pure bookkeeping; as a constant it takes no
	// gradient buffer and no backward work.
	picks := g.Constant(tensor.NewShape(batch, classes), inits.FromSlice(hot))

	ch := &chain{}
	perRow := ch.mult(picks, graph.LogSoftmax(logits))
	if ch.err != nil {
		return nil, errors.Wrap(ch.err, "cross entropy")
	}
	rowLoss, err := graph.Sum(perRow, 1)
	if err != nil {
		return nil, err
	}
	mean, err := graph.Mean(rowLoss, 0)
	if err != nil {
		return nil, err
	}
	return graph.Neg(mean), nil
}
