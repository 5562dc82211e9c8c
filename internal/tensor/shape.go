package tensor

import "fmt"

// Rank is the fixed rank of every shape. Dimensions beyond the ones a caller
// specifies are padded with 1, so a (3, 4) matrix and a length-4 vector are
// {3, 4, 1, 1} and {1, 4, 1, 1} respectively.
const Rank = 4

// Shape describes the extents of a tensor along each of its four dimensions.
type Shape [Rank]int

// NewShape builds a Shape from up to four extents, padding with 1.
// Panics if more than four or non-positive extents are given.
func NewShape(dims ...int) Shape {
	if len(dims) > Rank {
		panic(fmt.Sprintf("tensor: shape rank %d exceeds %d", len(dims), Rank))
	}
	s := Shape{1, 1, 1, 1}
	for i, d := range dims {
		if d <= 0 {
			panic(fmt.Sprintf("tensor: invalid extent %d at dimension %d", d, i))
		}
		s[i] = d
	}
	return s
}

// Elements returns the total number of elements.
func (s Shape) Elements() int {
	return s[0] * s[1] * s[2] * s[3]
}

// Set replaces the extent of one dimension.
func (s *Shape) Set(i, dim int) {
	if dim <= 0 {
		panic(fmt.Sprintf("tensor: invalid extent %d at dimension %d", dim, i))
	}
	s[i] = dim
}

// Equal reports whether two shapes have identical extents.
func (s Shape) Equal(other Shape) bool {
	return s == other
}

// Strides returns row-major strides for the shape.
func (s Shape) Strides() [Rank]int {
	var st [Rank]int
	st[Rank-1] = 1
	for i := Rank - 2; i >= 0; i-- {
		st[i] = st[i+1] * s[i+1]
	}
	return st
}

// String formats the shape with trailing singleton dimensions elided.
func (s Shape) String() string {
	last := Rank - 1
	for last > 1 && s[last] == 1 {
		last--
	}
	out := "("
	for i := 0; i <= last; i++ {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprint(s[i])
	}
	return out + ")"
}

// Broadcast merges two shapes under broadcasting rules: extents must be equal
// or one of them 1, and the result takes the larger extent per dimension.
func Broadcast(a, b Shape) (Shape, error) {
	out := a
	for i := 0; i < Rank; i++ {
		if a[i] != b[i] && a[i] != 1 && b[i] != 1 {
			return Shape{}, fmt.Errorf("shapes %v and %v cannot be broadcast at dimension %d", a, b, i)
		}
		if b[i] > out[i] {
			out[i] = b[i]
		}
	}
	return out, nil
}
