// Copyright 2026 The Gradflow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph exposes the differentiable expression graph: node
// construction with common-subexpression merging, forward evaluation,
// reverse-mode gradient accumulation and parameter persistence.
package graph

import (
	internalgraph "github.com/gradflow-ml/gradflow/internal/graph"
	"github.com/gradflow-ml/gradflow/tensor"
)

// Graph owns the nodes, tapes and memory of one expression graph.
type Graph = internalgraph.Graph

// Expr is a node in the expression graph.
type Expr = internalgraph.Expr

// Parameters is the named, persistent subset of a graph's nodes.
type Parameters = internalgraph.Parameters

// NameNone marks nodes without a user-visible name; only such nodes are
// reclaimed during the backward pass.
const NameNone = internalgraph.NameNone

// New creates an empty graph computing on the given backend.
func New(backend tensor.Backend) *Graph {
	return internalgraph.New(backend)
}

// Error sentinels for graph construction and scheduling failures.
var (
	ErrMultipleTopNodes = internalgraph.ErrMultipleTopNodes
	ErrNameCollision    = internalgraph.ErrNameCollision
	ErrShapeMismatch    = internalgraph.ErrShapeMismatch
	ErrMissingParameter = internalgraph.ErrMissingParameter
)

// Elementwise binary operators, broadcasting over compatible shapes.

func Plus(a, b Expr) (Expr, error)  { return internalgraph.Plus(a, b) }
func Minus(a, b Expr) (Expr, error) { return internalgraph.Minus(a, b) }
func Mult(a, b Expr) (Expr, error)  { return internalgraph.Mult(a, b) }
func Div(a, b Expr) (Expr, error)   { return internalgraph.Div(a, b) }

// Tanh sums its arguments and applies the hyperbolic tangent.
func Tanh(args ...Expr) (Expr, error) { return internalgraph.Tanh(args...) }

// Elementwise unary operators.

func Logit(a Expr) Expr  { return internalgraph.Logit(a) }
func ReLU(a Expr) Expr   { return internalgraph.ReLU(a) }
func Log(a Expr) Expr    { return internalgraph.Log(a) }
func Exp(a Expr) Expr    { return internalgraph.Exp(a) }
func Square(a Expr) Expr { return internalgraph.Square(a) }
func Neg(a Expr) Expr    { return internalgraph.Neg(a) }

// Sqrt computes sqrt(a + eps) elementwise.
func Sqrt(a Expr, eps float32) Expr { return internalgraph.Sqrt(a, eps) }

// Softmax normalizes each row; a non-nil mask excludes entries and takes no
// gradient. The mask must match a's shape.
func Softmax(a, mask Expr) (Expr, error) { return internalgraph.Softmax(a, mask) }

// LogSoftmax computes the logarithm of the row-wise softmax in a numerically
// stable way.
func LogSoftmax(a Expr) Expr { return internalgraph.LogSoftmax(a) }

// Sum reduces one axis to extent 1.
func Sum(a Expr, axis int) (Expr, error) { return internalgraph.Sum(a, axis) }

// Mean reduces one axis to its average.
func Mean(a Expr, axis int) (Expr, error) { return internalgraph.Mean(a, axis) }

// Dot multiplies two matrices.
func Dot(a, b Expr) (Expr, error) { return internalgraph.Dot(a, b) }

// Rows selects rows of a by index; gradients scatter-accumulate back.
func Rows(a Expr, indices []int) (Expr, error) { return internalgraph.Rows(a, indices) }

// Transpose swaps the two leading dimensions.
func Transpose(a Expr) Expr { return internalgraph.Transpose(a) }

// Reshape reinterprets a's storage under a new shape of equal element count.
func Reshape(a Expr, shape tensor.Shape) (Expr, error) {
	return internalgraph.Reshape(a, shape)
}

// Timestep borrows row `step` of a as a (1, cols) view.
func Timestep(a Expr, step int) (Expr, error) {
	return internalgraph.Timestep(a, step)
}
