//go:build windows

package webgpu

import (
	"math"
	"testing"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

func TestIsAvailable(t *testing.T) {
	// Reports status without failing; CI machines rarely have a GPU.
	t.Logf("WebGPU available: %v", IsAvailable())
}

func newGPU(t *testing.T) *Backend {
	t.Helper()
	backend, err := New()
	if err != nil {
		t.Logf("WebGPU not available: %v", err)
		t.Skip("WebGPU not available on this system")
	}
	t.Cleanup(backend.Release)
	return backend
}

func gpuAlloc(t *testing.T, a *tensor.Arena, shape tensor.Shape, data []float32) *tensor.Tensor {
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

func TestNew(t *testing.T) {
	backend := newGPU(t)
	if backend.Name() == "" {
		t.Error("Backend name should not be empty")
	}
	t.Logf("Backend name: %s", backend.Name())
}

func TestAdd_GPU(t *testing.T) {
	b := newGPU(t)
	a := tensor.NewArena()
	a.Reserve(64, false)

	x := gpuAlloc(t, a, tensor.NewShape(2, 3), []float32{1, 2, 3, 4, 5, 6})
	y := gpuAlloc(t, a, tensor.NewShape(2, 3), []float32{10, 20, 30, 40, 50, 60})
	out := gpuAlloc(t, a, tensor.NewShape(2, 3), nil)

	b.Add(out, x, y)
	want := []float32{11, 22, 33, 44, 55, 66}
	for i, v := range out.ToSlice() {
		if v != want[i] {
			t.Errorf("element %d = %v, want %v", i, v, want[i])
		}
	}
}

func TestTanh_GPU_MatchesCPU(t *testing.T) {
	b := newGPU(t)
	a := tensor.NewArena()
	a.Reserve(64, false)

	x := gpuAlloc(t, a, tensor.NewShape(1, 4), []float32{-2, -0.5, 0.5, 2})
	gpuOut := gpuAlloc(t, a, tensor.NewShape(1, 4), nil)
	cpuOut := gpuAlloc(t, a, tensor.NewShape(1, 4), nil)

	b.Tanh(gpuOut, x)
	b.fallback.Tanh(cpuOut, x)

	for i := 0; i < 4; i++ {
		if math.Abs(float64(gpuOut.Get(i)-cpuOut.Get(i))) > 1e-5 {
			t.Errorf("element %d: gpu %v, cpu %v", i, gpuOut.Get(i), cpuOut.Get(i))
		}
	}
}

func TestMatMul_GPU(t *testing.T) {
	b := newGPU(t)
	a := tensor.NewArena()
	a.Reserve(64, false)

	x := gpuAlloc(t, a, tensor.NewShape(2, 3), []float32{1, 2, 3, 4, 5, 6})
	y := gpuAlloc(t, a, tensor.NewShape(3, 2), []float32{7, 8, 9, 10, 11, 12})
	c := gpuAlloc(t, a, tensor.NewShape(2, 2), nil)

	b.MatMul(c, x, y, false, false, 0)
	want := []float32{58, 64, 139, 154}
	for i, v := range c.ToSlice() {
		if math.Abs(float64(v-want[i])) > 1e-4 {
			t.Errorf("element %d = %v, want %v", i, v, want[i])
		}
	}
}

func TestSoftmax_GPU_RowsSumToOne(t *testing.T) {
	b := newGPU(t)
	a := tensor.NewArena()
	a.Reserve(64, false)

	x := gpuAlloc(t, a, tensor.NewShape(2, 4), []float32{1, 2, 3, 4, -1, 0, 1, 2})
	out := gpuAlloc(t, a, tensor.NewShape(2, 4), nil)
	b.Softmax(out, x, nil)

	data := out.ToSlice()
	for r := 0; r < 2; r++ {
		var sum float32
		for c := 0; c < 4; c++ {
			sum += data[r*4+c]
		}
		if math.Abs(float64(sum-1)) > 1e-5 {
			t.Errorf("row %d sums to %v, want 1", r, sum)
		}
	}
}

func TestBroadcastFallsBackToCPU(t *testing.T) {
	b := newGPU(t)
	a := tensor.NewArena()
	a.Reserve(64, false)

	x := gpuAlloc(t, a, tensor.NewShape(2, 3), []float32{1, 2, 3, 4, 5, 6})
	row := gpuAlloc(t, a, tensor.NewShape(1, 3), []float32{10, 20, 30})
	out := gpuAlloc(t, a, tensor.NewShape(2, 3), nil)

	b.Add(out, x, row)
	want := []float32{11, 22, 33, 14, 25, 36}
	for i, v := range out.ToSlice() {
		if v != want[i] {
			t.Errorf("element %d = %v, want %v", i, v, want[i])
		}
	}
}
