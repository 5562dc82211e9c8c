package graph

import "github.com/pkg/errors"

// Failure modes of a graph generation. None of them is retried internally:
// the caller must Clear() and rebuild before trying again.
var (
	// ErrMultipleTopNodes is returned by the backward pass when the graph has
	// more than one output; reverse-mode accumulation assumes a single scalar
	// objective.
	ErrMultipleTopNodes = errors.New("graph: backward requires exactly one top node")

	// ErrNameCollision is returned when a node or parameter name is already
	// bound to a different node.
	ErrNameCollision = errors.New("graph: name already in use")

	// ErrShapeMismatch is returned at construction time when operand shapes
	// are not broadcast-compatible for an operator.
	ErrShapeMismatch = errors.New("graph: operand shapes are not compatible")

	// ErrMissingParameter is returned when a saved model lacks an expected
	// parameter.
	ErrMissingParameter = errors.New("graph: model file is missing parameter")
)
