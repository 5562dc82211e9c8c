package nn

import (
	"math/rand"

	"github.com/gradflow-ml/gradflow/internal/graph"
	"github.com/gradflow-ml/gradflow/internal/inits"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Embedding maps token ids to dense vectors by selecting rows of a (vocab,
// dim) parameter matrix. The matrix is registered under the given name alone,
// mirroring the classic "Wemb" lookup table.
type Embedding struct {
	name  string
	vocab int
	dim   int
	rng   *rand.Rand
}

// NewEmbedding creates an embedding table builder for vocab tokens of
// dimension dim.
func NewEmbedding(name string, vocab, dim int, rng *rand.Rand) *Embedding {
	return &Embedding{name: name, vocab: vocab, dim: dim, rng: rng}
}

// Dim returns the embedding dimension.
func (e *Embedding) Dim() int { return e.dim }

// Apply returns a (len(ids), dim) expression holding the embeddings of ids.
// Gradients scatter-accumulate back into the table, so repeated ids sum.
func (e *Embedding) Apply(g *graph.Graph, ids []int) (graph.Expr, error) {
	w, err := g.Param(e.name, tensor.NewShape(e.vocab, e.dim), inits.Glorot(e.rng))
	if err != nil {
		return nil, err
	}
	return graph.Rows(w, ids)
}
