package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// MatMul computes c = a x b + beta*c over the leading two dimensions using
// single-precision BLAS. Operand shapes are validated at node construction;
// a mismatch here is an internal invariant violation.
func (bk *Backend) MatMul(c, a, b *tensor.Tensor, transA, transB bool, beta float32) {
	ga := general(a)
	gb := general(b)
	gc := general(c)

	ta, tb := blas.NoTrans, blas.NoTrans
	m, k := ga.Rows, ga.Cols
	if transA {
		ta = blas.Trans
		m, k = ga.Cols, ga.Rows
	}
	n := gb.Cols
	kb := gb.Rows
	if transB {
		tb = blas.Trans
		n, kb = gb.Rows, gb.Cols
	}
	if k != kb || gc.Rows != m || gc.Cols != n {
		panic(fmt.Sprintf("cpu: matmul shape mismatch: (%dx%d)(%dx%d) -> (%dx%d)",
			m, k, kb, n, gc.Rows, gc.Cols))
	}

	blas32.Gemm(ta, tb, 1, ga, gb, beta, gc)
}

// general views a tensor's leading two dimensions as a BLAS matrix.
func general(t *tensor.Tensor) blas32.General {
	s := t.Shape()
	cols := s.Elements() / s[0]
	return blas32.General{
		Rows:   s[0],
		Cols:   cols,
		Stride: cols,
		Data:   t.Data(),
	}
}

// CopyRows gathers rows of in by index into out.
func (bk *Backend) CopyRows(out, in *tensor.Tensor, indices []int) {
	rowSize := in.Size() / in.Shape()[0]
	od, id := out.Data(), in.Data()
	for i, idx := range indices {
		copy(od[i*rowSize:(i+1)*rowSize], id[idx*rowSize:(idx+1)*rowSize])
	}
}

// PasteRows scatters rows of adj back by index, accumulating since the same
// row may be selected more than once.
func (bk *Backend) PasteRows(out, adj *tensor.Tensor, indices []int) {
	rowSize := out.Size() / out.Shape()[0]
	od, gd := out.Data(), adj.Data()
	for i, idx := range indices {
		for c := 0; c < rowSize; c++ {
			od[idx*rowSize+c] += gd[i*rowSize+c]
		}
	}
}

// Transpose2D writes the transpose of in's leading two dimensions into out,
// accumulating when beta is 1.
func (bk *Backend) Transpose2D(out, in *tensor.Tensor, beta float32) {
	rows := in.Shape()[0]
	cols := in.Size() / rows
	od, id := out.Data(), in.Data()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			od[c*rows+r] = beta*od[c*rows+r] + id[r*cols+c]
		}
	}
}
