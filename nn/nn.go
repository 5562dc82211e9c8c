// Copyright 2026 The Gradflow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn exposes layer builders that assemble differentiable
// expressions on a graph.
package nn

import (
	"math/rand"

	"github.com/gradflow-ml/gradflow/graph"
	internalnn "github.com/gradflow-ml/gradflow/internal/nn"
)

// Activation selects a Dense layer's nonlinearity.
type Activation = internalnn.Activation

const (
	ActNone    = internalnn.ActNone
	ActTanh    = internalnn.ActTanh
	ActSigmoid = internalnn.ActSigmoid
	ActReLU    = internalnn.ActReLU
)

// Dense is a fully connected layer builder.
type Dense = internalnn.Dense

// NewDense creates a dense layer producing dim output features.
func NewDense(prefix string, dim int, act Activation, rng *rand.Rand) *Dense {
	return internalnn.NewDense(prefix, dim, act, rng)
}

// GRU is a gated recurrent unit cell builder.
type GRU = internalnn.GRU

// NewGRU creates a GRU cell with a dim-wide hidden state.
func NewGRU(prefix string, dim int, rng *rand.Rand) *GRU {
	return internalnn.NewGRU(prefix, dim, rng)
}

// Embedding maps token ids to rows of a lookup table.
type Embedding = internalnn.Embedding

// NewEmbedding creates an embedding table for vocab tokens of dimension dim.
func NewEmbedding(name string, vocab, dim int, rng *rand.Rand) *Embedding {
	return internalnn.NewEmbedding(name, vocab, dim, rng)
}

// CrossEntropy builds the mean negative log-likelihood of targets under the
// row-wise softmax of logits.
func CrossEntropy(g *graph.Graph, logits graph.Expr, targets []int) (graph.Expr, error) {
	return internalnn.CrossEntropy(g, logits, targets)
}
