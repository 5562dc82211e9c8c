package tensor

import (
	"fmt"
	"strings"
)

// Tensor is a handle to a contiguous float32 buffer with a fixed-rank shape.
// The buffer is either a slot inside an Arena (offset >= 0) or a borrowed
// view over another tensor's storage (offset < 0). Views must never be
// returned to an arena.
type Tensor struct {
	data   []float32
	shape  Shape
	offset int
}

// viewOffset marks storage not owned by an arena.
const viewOffset = -1

// NewView wraps an existing buffer without taking ownership.
// Used by reshape/timestep nodes that reinterpret a child's storage.
func NewView(data []float32, shape Shape) *Tensor {
	return &Tensor{data: data, shape: shape, offset: viewOffset}
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Size returns the number of elements.
func (t *Tensor) Size() int {
	return t.shape.Elements()
}

// Data returns the backing float32 slice. It is nil for tensors allocated in
// dry mode.
func (t *Tensor) Data() []float32 {
	return t.data
}

// IsView reports whether the tensor borrows another tensor's storage.
func (t *Tensor) IsView() bool {
	return t.offset == viewOffset
}

// Get returns the element at flat index i.
func (t *Tensor) Get(i int) float32 {
	return t.data[i]
}

// Set assigns the element at flat index i.
func (t *Tensor) Set(i int, v float32) {
	t.data[i] = v
}

// SetAll fills the tensor from a slice, which must match its size.
func (t *Tensor) SetAll(v []float32) error {
	if len(v) != t.Size() {
		return fmt.Errorf("tensor: cannot set %d values into tensor of size %d", len(v), t.Size())
	}
	copy(t.data, v)
	return nil
}

// ToSlice copies the tensor's contents into a fresh slice.
func (t *Tensor) ToSlice() []float32 {
	out := make([]float32, t.Size())
	copy(out, t.data)
	return out
}

// CopyFrom copies another tensor's contents; sizes must match.
func (t *Tensor) CopyFrom(src *Tensor) error {
	if src.Size() != t.Size() {
		return fmt.Errorf("tensor: size mismatch in copy: %d vs %d", src.Size(), t.Size())
	}
	copy(t.data, src.data)
	return nil
}

// Scalar returns the single element of a one-element tensor.
func (t *Tensor) Scalar() (float32, error) {
	if t.Size() != 1 {
		return 0, fmt.Errorf("tensor: %v is not a scalar", t.shape)
	}
	return t.data[0], nil
}

// Subtensor returns a borrowed view of size elements starting at offset.
func (t *Tensor) Subtensor(offset, size int) *Tensor {
	return NewView(t.data[offset:offset+size], NewShape(1, size))
}

// String renders up to the first few rows of the tensor for debugging.
func (t *Tensor) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "tensor%v", t.shape)
	if t.data == nil {
		sb.WriteString(" <unallocated>")
		return sb.String()
	}
	rows := t.shape[0]
	cols := t.Size() / rows
	const maxRows, maxCols = 4, 8
	for r := 0; r < rows && r < maxRows; r++ {
		sb.WriteString("\n  ")
		for c := 0; c < cols && c < maxCols; c++ {
			fmt.Fprintf(&sb, "% .5f ", t.data[r*cols+c])
		}
		if cols > maxCols {
			sb.WriteString("...")
		}
	}
	if rows > maxRows {
		sb.WriteString("\n  ...")
	}
	return sb.String()
}
