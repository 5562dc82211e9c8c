package optim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradflow-ml/gradflow/internal/backend/cpu"
	"github.com/gradflow-ml/gradflow/internal/graph"
	"github.com/gradflow-ml/gradflow/internal/inits"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Every test descends loss = sum(w^2); its gradient with respect to w is 2w,
// so each optimizer should drive w toward zero.

func TestSGD_DescendsQuadratic(t *testing.T) {
	g := graph.New(cpu.New())
	opt := NewSGD(SGDConfig{LR: 0.1})

	var w graph.Expr
	for i := 0; i < 50; i++ {
		g.Clear()
		var err error
		w, err = g.Param("w", tensor.NewShape(1, 2), inits.FromSlice([]float32{1, -2}))
		require.NoError(t, err)
		if _, err = graph.Sum(graph.Square(w), 1); err != nil {
			t.Fatal(err)
		}
		require.NoError(t, g.Backprop())
		opt.Step(g.Params())
	}

	for i := 0; i < 2; i++ {
		assert.InDelta(t, 0, w.Val().Get(i), 1e-3, "element %d should approach the minimum", i)
	}
}

func TestSGD_MomentumAcceleratesFirstSteps(t *testing.T) {
	plain := NewSGD(SGDConfig{LR: 0.1})
	momentum := NewSGD(SGDConfig{LR: 0.1, Momentum: 0.9})

	run := func(opt Optimizer) float32 {
		g := graph.New(cpu.New())
		var w graph.Expr
		for i := 0; i < 5; i++ {
			g.Clear()
			var err error
			w, err = g.Param("w", tensor.NewShape(1, 1), inits.FromSlice([]float32{4}))
			require.NoError(t, err)
			if _, err = graph.Sum(graph.Square(w), 1); err != nil {
				t.Fatal(err)
			}
			require.NoError(t, g.Backprop())
			opt.Step(g.Params())
		}
		return w.Val().Get(0)
	}

	assert.Less(t, run(momentum), run(plain),
		"momentum should cover more ground on a consistent slope")
}

func TestAdagrad_Descends(t *testing.T) {
	g := graph.New(cpu.New())
	opt := NewAdagrad(AdagradConfig{LR: 0.5})

	var w graph.Expr
	for i := 0; i < 100; i++ {
		g.Clear()
		var err error
		w, err = g.Param("w", tensor.NewShape(1, 2), inits.FromSlice([]float32{1, -2}))
		require.NoError(t, err)
		if _, err = graph.Sum(graph.Square(w), 1); err != nil {
			t.Fatal(err)
		}
		require.NoError(t, g.Backprop())
		opt.Step(g.Params())
	}

	for i := 0; i < 2; i++ {
		assert.Less(t, absf(w.Val().Get(i)), float32(1), "element %d should have moved toward zero", i)
	}
}

func TestAdam_Descends(t *testing.T) {
	g := graph.New(cpu.New())
	opt := NewAdam(AdamConfig{LR: 0.1})

	var w graph.Expr
	for i := 0; i < 100; i++ {
		g.Clear()
		var err error
		w, err = g.Param("w", tensor.NewShape(1, 2), inits.FromSlice([]float32{1, -2}))
		require.NoError(t, err)
		if _, err = graph.Sum(graph.Square(w), 1); err != nil {
			t.Fatal(err)
		}
		require.NoError(t, g.Backprop())
		opt.Step(g.Params())
	}

	for i := 0; i < 2; i++ {
		assert.InDelta(t, 0, w.Val().Get(i), 0.1, "element %d should approach the minimum", i)
	}
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, float32(0.01), NewSGD(SGDConfig{}).LR())
	assert.Equal(t, float32(0.001), NewAdam(AdamConfig{}).LR())
	assert.Equal(t, float32(0.01), NewAdagrad(AdagradConfig{}).LR())
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
