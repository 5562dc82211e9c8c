package cpu

import (
	"math"

	"github.com/gradflow-ml/gradflow/internal/parallel"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Softmax computes a row-wise softmax over the second dimension, shifting by
// the row maximum for numerical stability. A non-nil mask zeroes masked-out
// entries before normalization.
func (b *Backend) Softmax(out, a, mask *tensor.Tensor) {
	rows := a.Shape()[0]
	cols := a.Size() / rows
	od, ad := out.Data(), a.Data()
	var md []float32
	if mask != nil {
		md = mask.Data()
	}

	parallel.Rows(rows, cols, func(r int) {
		row := ad[r*cols : (r+1)*cols]
		orow := od[r*cols : (r+1)*cols]

		max := float32(math.Inf(-1))
		for c, v := range row {
			if md == nil || md[r*cols+c] != 0 {
				if v > max {
					max = v
				}
			}
		}

		var sum float32
		for c, v := range row {
			if md != nil && md[r*cols+c] == 0 {
				orow[c] = 0
				continue
			}
			e := exp32(v - max)
			orow[c] = e
			sum += e
		}
		for c := range orow {
			orow[c] /= sum
		}
	})
}

// SoftmaxGrad accumulates the softmax Jacobian-vector product:
// dx_j += val_j * (adj_j - sum_i adj_i*val_i), per row.
func (b *Backend) SoftmaxGrad(dx, adj, val *tensor.Tensor) {
	rows := val.Shape()[0]
	cols := val.Size() / rows
	xd, gd, vd := dx.Data(), adj.Data(), val.Data()

	parallel.Rows(rows, cols, func(r int) {
		var dot float32
		for c := 0; c < cols; c++ {
			dot += gd[r*cols+c] * vd[r*cols+c]
		}
		for c := 0; c < cols; c++ {
			i := r*cols + c
			xd[i] += vd[i] * (gd[i] - dot)
		}
	})
}

// LogSoftmax computes a row-wise log-softmax using the log-sum-exp trick.
func (b *Backend) LogSoftmax(out, a *tensor.Tensor) {
	rows := a.Shape()[0]
	cols := a.Size() / rows
	od, ad := out.Data(), a.Data()

	parallel.Rows(rows, cols, func(r int) {
		row := ad[r*cols : (r+1)*cols]

		max := float32(math.Inf(-1))
		for _, v := range row {
			if v > max {
				max = v
			}
		}
		var sum float32
		for _, v := range row {
			sum += exp32(v - max)
		}
		lse := max + log32(sum)
		for c, v := range row {
			od[r*cols+c] = v - lse
		}
	})
}

// LogSoftmaxGrad accumulates dx_j += adj_j - exp(val_j) * sum_i adj_i, per row.
func (b *Backend) LogSoftmaxGrad(dx, adj, val *tensor.Tensor) {
	rows := val.Shape()[0]
	cols := val.Size() / rows
	xd, gd, vd := dx.Data(), adj.Data(), val.Data()

	parallel.Rows(rows, cols, func(r int) {
		var sum float32
		for c := 0; c < cols; c++ {
			sum += gd[r*cols+c]
		}
		for c := 0; c < cols; c++ {
			i := r*cols + c
			xd[i] += gd[i] - exp32(vd[i])*sum
		}
	})
}
