package cpu

import (
	"math"
	"testing"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

func alloc(t *testing.T, a *tensor.Arena, shape tensor.Shape, data []float32) *tensor.Tensor {
	t.Helper()
	ten, err := a.Allocate(shape, false)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if data != nil {
		if err := ten.SetAll(data); err != nil {
			t.Fatalf("SetAll: %v", err)
		}
	}
	return ten
}

func approxEqual(t *testing.T, got, want []float32, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > tol {
			t.Errorf("element %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAdd_Broadcast(t *testing.T) {
	b := New()
	a := tensor.NewArena()
	a.Reserve(64, false)

	x := alloc(t, a, tensor.NewShape(2, 3), []float32{1, 2, 3, 4, 5, 6})
	row := alloc(t, a, tensor.NewShape(1, 3), []float32{10, 20, 30})
	out := alloc(t, a, tensor.NewShape(2, 3), nil)

	b.Add(out, x, row)
	approxEqual(t, out.ToSlice(), []float32{11, 22, 33, 14, 25, 36}, 0)
}

func TestAddTo_ReducesOntoSmallerTarget(t *testing.T) {
	b := New()
	a := tensor.NewArena()
	a.Reserve(64, false)

	grad := alloc(t, a, tensor.NewShape(1, 3), []float32{0, 0, 0})
	adj := alloc(t, a, tensor.NewShape(2, 3), []float32{1, 2, 3, 4, 5, 6})

	b.AddTo(grad, adj, 1)
	approxEqual(t, grad.ToSlice(), []float32{5, 7, 9}, 0)
}

func TestTanh_AndGrad(t *testing.T) {
	b := New()
	a := tensor.NewArena()
	a.Reserve(64, false)

	x := alloc(t, a, tensor.NewShape(1, 3), []float32{-1, 0, 1})
	val := alloc(t, a, tensor.NewShape(1, 3), nil)
	b.Tanh(val, x)

	th := float32(math.Tanh(1))
	approxEqual(t, val.ToSlice(), []float32{-th, 0, th}, 1e-6)

	adj := alloc(t, a, tensor.NewShape(1, 3), []float32{1, 1, 1})
	dx := alloc(t, a, tensor.NewShape(1, 3), []float32{0, 0, 0})
	b.TanhGrad(dx, adj, val)
	// d/dx tanh(0) = 1
	if got := dx.Get(1); got != 1 {
		t.Errorf("TanhGrad at 0 = %v, want 1", got)
	}
}

func TestSoftmax_RowsSumToOne(t *testing.T) {
	b := New()
	a := tensor.NewArena()
	a.Reserve(64, false)

	x := alloc(t, a, tensor.NewShape(2, 3), []float32{1, 2, 3, 0, 0, 0})
	out := alloc(t, a, tensor.NewShape(2, 3), nil)
	b.Softmax(out, x, nil)

	data := out.ToSlice()
	for r := 0; r < 2; r++ {
		var sum float32
		for c := 0; c < 3; c++ {
			sum += data[r*3+c]
		}
		if math.Abs(float64(sum-1)) > 1e-6 {
			t.Errorf("row %d sums to %v, want 1", r, sum)
		}
	}
	approxEqual(t, data[3:], []float32{1.0 / 3, 1.0 / 3, 1.0 / 3}, 1e-6)
}

func TestSoftmax_Masked(t *testing.T) {
	b := New()
	a := tensor.NewArena()
	a.Reserve(64, false)

	x := alloc(t, a, tensor.NewShape(1, 3), []float32{5, 5, 5})
	mask := alloc(t, a, tensor.NewShape(1, 3), []float32{1, 1, 0})
	out := alloc(t, a, tensor.NewShape(1, 3), nil)
	b.Softmax(out, x, mask)

	approxEqual(t, out.ToSlice(), []float32{0.5, 0.5, 0}, 1e-6)
}

func TestLogSoftmax_MatchesSoftmaxLog(t *testing.T) {
	b := New()
	a := tensor.NewArena()
	a.Reserve(64, false)

	x := alloc(t, a, tensor.NewShape(1, 4), []float32{0.5, -1, 2, 0})
	sm := alloc(t, a, tensor.NewShape(1, 4), nil)
	lsm := alloc(t, a, tensor.NewShape(1, 4), nil)
	b.Softmax(sm, x, nil)
	b.LogSoftmax(lsm, x)

	for i, v := range sm.ToSlice() {
		if math.Abs(float64(lsm.Get(i))-math.Log(float64(v))) > 1e-5 {
			t.Errorf("logsoftmax[%d] = %v, want log(%v)", i, lsm.Get(i), v)
		}
	}
}

func TestMatMul(t *testing.T) {
	b := New()
	a := tensor.NewArena()
	a.Reserve(64, false)

	// (2x3) x (3x2) -> (2x2)
	x := alloc(t, a, tensor.NewShape(2, 3), []float32{1, 2, 3, 4, 5, 6})
	y := alloc(t, a, tensor.NewShape(3, 2), []float32{7, 8, 9, 10, 11, 12})
	c := alloc(t, a, tensor.NewShape(2, 2), []float32{0, 0, 0, 0})

	b.MatMul(c, x, y, false, false, 0)
	approxEqual(t, c.ToSlice(), []float32{58, 64, 139, 154}, 1e-5)
}

func TestMatMul_TransposedAccumulate(t *testing.T) {
	b := New()
	a := tensor.NewArena()
	a.Reserve(64, false)

	// aᵀ x b with beta=1 accumulates into c.
	x := alloc(t, a, tensor.NewShape(2, 2), []float32{1, 2, 3, 4})
	y := alloc(t, a, tensor.NewShape(2, 2), []float32{1, 0, 0, 1})
	c := alloc(t, a, tensor.NewShape(2, 2), []float32{100, 100, 100, 100})

	b.MatMul(c, x, y, true, false, 1)
	approxEqual(t, c.ToSlice(), []float32{101, 103, 102, 104}, 1e-5)
}

func TestCopyRows_PasteRows(t *testing.T) {
	b := New()
	a := tensor.NewArena()
	a.Reserve(64, false)

	emb := alloc(t, a, tensor.NewShape(3, 2), []float32{1, 2, 3, 4, 5, 6})
	out := alloc(t, a, tensor.NewShape(2, 2), nil)
	b.CopyRows(out, emb, []int{2, 0})
	approxEqual(t, out.ToSlice(), []float32{5, 6, 1, 2}, 0)

	grad := alloc(t, a, tensor.NewShape(3, 2), []float32{0, 0, 0, 0, 0, 0})
	adj := alloc(t, a, tensor.NewShape(2, 2), []float32{1, 1, 1, 1})
	// Same row picked twice must accumulate.
	b.PasteRows(grad, adj, []int{1, 1})
	approxEqual(t, grad.ToSlice(), []float32{0, 0, 2, 2, 0, 0}, 0)
}

func TestTranspose2D(t *testing.T) {
	b := New()
	a := tensor.NewArena()
	a.Reserve(64, false)

	x := alloc(t, a, tensor.NewShape(2, 3), []float32{1, 2, 3, 4, 5, 6})
	out := alloc(t, a, tensor.NewShape(3, 2), nil)
	b.Transpose2D(out, x, 0)
	approxEqual(t, out.ToSlice(), []float32{1, 4, 2, 5, 3, 6}, 0)
}

func TestReduce_Scaled(t *testing.T) {
	b := New()
	a := tensor.NewArena()
	a.Reserve(64, false)

	x := alloc(t, a, tensor.NewShape(2, 2), []float32{1, 2, 3, 4})
	out := alloc(t, a, tensor.NewShape(1, 1), []float32{99})
	// Reduce assigns, ignoring prior contents; scale 0.25 gives the mean.
	b.Reduce(out, x, 0.25)
	if got := out.Get(0); got != 2.5 {
		t.Errorf("Reduce = %v, want 2.5", got)
	}
}
