package train

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradflow-ml/gradflow/internal/backend/cpu"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "train.yaml", `
model:
  emb-dim: 8
  rnn-dim: 16
training:
  optimizer: sgd
  learn-rate: 0.5
data:
  corpus: corpus.txt
output:
  model: model.gflw
`)

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8, c.Model.EmbDim)
	assert.Equal(t, 16, c.Model.RnnDim)
	assert.Equal(t, "sgd", c.Training.Optimizer)
	assert.Equal(t, float32(0.5), c.Training.LR)
	// Unset fields keep their defaults.
	assert.Equal(t, 16, c.Model.SeqLen)
	assert.Equal(t, "words", c.Data.Encoding)
}

func TestConfigValidate(t *testing.T) {
	c := DefaultConfig()
	assert.Error(t, c.Validate(), "corpus and model paths are required")

	c.Data.Corpus = "corpus.txt"
	c.Output.Model = "model.gflw"
	require.NoError(t, c.Validate())

	c.Training.Optimizer = "lbfgs"
	assert.Error(t, c.Validate())
}

func TestTrainer_RunTinyCorpus(t *testing.T) {
	dir := t.TempDir()

	// A perfectly predictable corpus: after "red" always comes "blue".
	corpus := strings.TrimSpace(strings.Repeat("red blue ", 60))
	corpusPath := writeFile(t, dir, "corpus.txt", corpus)

	cfg := DefaultConfig()
	cfg.Model.EmbDim = 4
	cfg.Model.RnnDim = 4
	cfg.Model.SeqLen = 2
	cfg.Model.BatchSize = 2
	cfg.Training.Epochs = 3
	cfg.Training.Optimizer = "sgd"
	cfg.Training.LR = 0.2
	cfg.Data.Corpus = corpusPath
	cfg.Output.Model = filepath.Join(dir, "model.gflw")
	cfg.Output.CheckpointEvery = 5

	tr, err := New(cfg, cpu.New())
	require.NoError(t, err)
	require.NoError(t, tr.Run())

	loss := float64(tr.LastLoss())
	require.False(t, math.IsNaN(loss) || math.IsInf(loss, 0))
	// Start is about ln(2); an alternating two-word corpus must train
	// well below that.
	assert.Less(t, loss, math.Log(2))

	_, err = os.Stat(cfg.Output.Model)
	assert.NoError(t, err, "final model written")
	_, err = os.Stat(cfg.Output.Model + ".ckpt")
	assert.NoError(t, err, "periodic checkpoint written")
}

func TestTrainer_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	_, err := New(cfg, cpu.New())
	assert.Error(t, err)
}
