package nn

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradflow-ml/gradflow/internal/backend/cpu"
	"github.com/gradflow-ml/gradflow/internal/graph"
	"github.com/gradflow-ml/gradflow/internal/inits"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

func newTestGraph(t *testing.T) *graph.Graph {
	t.Helper()
	return graph.New(cpu.New())
}

func TestDense_ShapesAndParameterNames(t *testing.T) {
	g := newTestGraph(t)
	rng := rand.New(rand.NewSource(1))

	x, err := g.Input(tensor.NewShape(2, 3), make([]float32, 6))
	require.NoError(t, err)

	y, err := NewDense("ff", 4, ActNone, rng).Apply(g, x)
	require.NoError(t, err)

	assert.Equal(t, tensor.NewShape(2, 4), y.Shape())
	assert.NotNil(t, g.Get("ff_W"))
	assert.NotNil(t, g.Get("ff_b"))
}

func TestDense_ZeroInputYieldsBias(t *testing.T) {
	g := newTestGraph(t)
	rng := rand.New(rand.NewSource(1))

	x, err := g.Input(tensor.NewShape(2, 3), make([]float32, 6))
	require.NoError(t, err)
	y, err := NewDense("ff", 4, ActTanh, rng).Apply(g, x)
	require.NoError(t, err)

	require.NoError(t, g.Forward())
	for i := 0; i < 8; i++ {
		assert.Zero(t, y.Val().Get(i), "zero input through zero bias and tanh stays zero")
	}
}

func TestDense_MultipleInputsGetIndexedWeights(t *testing.T) {
	g := newTestGraph(t)
	rng := rand.New(rand.NewSource(1))

	a, err := g.Input(tensor.NewShape(2, 3), make([]float32, 6))
	require.NoError(t, err)
	b, err := g.Input(tensor.NewShape(2, 5), make([]float32, 10))
	require.NoError(t, err)

	y, err := NewDense("out", 4, ActNone, rng).Apply(g, a, b)
	require.NoError(t, err)

	assert.Equal(t, tensor.NewShape(2, 4), y.Shape())
	assert.NotNil(t, g.Get("out_W0"))
	assert.NotNil(t, g.Get("out_W1"))
	assert.Nil(t, g.Get("out_W"))
}

func TestDense_Gradients(t *testing.T) {
	g := newTestGraph(t)
	rng := rand.New(rand.NewSource(1))

	ones := []float32{1, 1, 1, 1, 1, 1}
	x, err := g.Input(tensor.NewShape(2, 3), ones)
	require.NoError(t, err)
	y, err := NewDense("ff", 4, ActNone, rng).Apply(g, x)
	require.NoError(t, err)
	_, err = graph.Sum(y, 1)
	require.NoError(t, err)

	require.NoError(t, g.Backprop())

	// dL/dW_ij = sum over the batch of x_bi, and every x is one.
	w := g.Get("ff_W")
	for i := 0; i < 12; i++ {
		assert.InDelta(t, 2, w.Grad().Get(i), 1e-6)
	}
	b := g.Get("ff_b")
	for i := 0; i < 4; i++ {
		assert.InDelta(t, 2, b.Grad().Get(i), 1e-6)
	}
}

func TestGRU_ZeroStateAndInputStayAtZero(t *testing.T) {
	g := newTestGraph(t)
	rng := rand.New(rand.NewSource(7))

	cell := NewGRU("encoder", 5, rng)
	x, err := g.Input(tensor.NewShape(3, 4), make([]float32, 12))
	require.NoError(t, err)

	next, err := cell.Apply(g, cell.InitialState(g, 3), x)
	require.NoError(t, err)
	require.Equal(t, tensor.NewShape(3, 5), next.Shape())

	require.NoError(t, g.Forward())
	for i := 0; i < 15; i++ {
		assert.Zero(t, next.Val().Get(i), "update gate interpolates between two zero states")
	}
}

func TestGRU_ParameterNames(t *testing.T) {
	g := newTestGraph(t)
	rng := rand.New(rand.NewSource(7))

	cell := NewGRU("decoder", 2, rng)
	x, err := g.Input(tensor.NewShape(1, 3), make([]float32, 3))
	require.NoError(t, err)
	_, err = cell.Apply(g, cell.InitialState(g, 1), x)
	require.NoError(t, err)

	for _, name := range []string{
		"decoder_Wz", "decoder_Uz", "decoder_bz",
		"decoder_Wr", "decoder_Ur", "decoder_br",
		"decoder_Wx", "decoder_Ux", "decoder_bx",
	} {
		assert.NotNil(t, g.Get(name), name)
	}
}

func TestGRU_GradientsReachInputWeights(t *testing.T) {
	g := newTestGraph(t)
	rng := rand.New(rand.NewSource(7))

	cell := NewGRU("encoder", 3, rng)
	x, err := g.Input(tensor.NewShape(2, 2), []float32{1, 1, 1, 1})
	require.NoError(t, err)
	next, err := cell.Apply(g, cell.InitialState(g, 2), x)
	require.NoError(t, err)
	s, err := graph.Sum(next, 1)
	require.NoError(t, err)
	_, err = graph.Sum(s, 0)
	require.NoError(t, err)

	require.NoError(t, g.Backprop())

	// The candidate path contributes z * tanh' > 0 per unit, so with
	// all-ones input every Wx gradient is strictly positive.
	wx := g.Get("encoder_Wx")
	for i := 0; i < 6; i++ {
		assert.Greater(t, wx.Grad().Get(i), float32(0))
	}
}

func TestEmbedding_LooksUpRows(t *testing.T) {
	g := newTestGraph(t)
	rng := rand.New(rand.NewSource(3))

	emb := NewEmbedding("Wemb", 4, 2, rng)
	ids := []int{2, 0, 2}
	y, err := emb.Apply(g, ids)
	require.NoError(t, err)
	require.NoError(t, g.Forward())

	table := g.Get("Wemb").Val()
	for i, id := range ids {
		for j := 0; j < 2; j++ {
			assert.Equal(t, table.Get(id*2+j), y.Val().Get(i*2+j))
		}
	}
}

func TestCrossEntropy_UniformLogits(t *testing.T) {
	g := newTestGraph(t)

	logits, err := g.Param("logits", tensor.NewShape(2, 3), inits.Zeros())
	require.NoError(t, err)
	loss, err := CrossEntropy(g, logits, []int{0, 2})
	require.NoError(t, err)
	// Keep the top node's value alive through the backward pass.
	require.NoError(t, g.NameNode(loss, "cost"))

	require.NoError(t, g.Backprop())

	assert.InDelta(t, math.Log(3), float64(loss.Val().Get(0)), 1e-5)

	// d loss / d logits = (softmax - onehot) / batch.
	grad := logits.Grad()
	expect := []float32{
		1.0/3/2 - 0.5, 1.0 / 3 / 2, 1.0 / 3 / 2,
		1.0 / 3 / 2, 1.0 / 3 / 2, 1.0/3/2 - 0.5,
	}
	for i, want := range expect {
		assert.InDelta(t, want, grad.Get(i), 1e-5)
	}
}

// The one-hot selector is fixed data: it must enter the graph as a constant,
// not as a trainable input that would claim a gradient buffer.
func TestCrossEntropy_OneHotIsConstant(t *testing.T) {
	g := newTestGraph(t)

	logits, err := g.Param("logits", tensor.NewShape(2, 3), inits.Zeros())
	require.NoError(t, err)
	_, err = CrossEntropy(g, logits, []int{0, 2})
	require.NoError(t, err)

	dot := g.Graphviz()
	assert.Contains(t, dot, `"const`)
	assert.NotContains(t, dot, `"input`)
}

func TestCrossEntropy_TargetCountMismatch(t *testing.T) {
	g := newTestGraph(t)
	logits, err := g.Param("logits", tensor.NewShape(2, 3), inits.Zeros())
	require.NoError(t, err)
	_, err = CrossEntropy(g, logits, []int{0})
	assert.Error(t, err)
}
