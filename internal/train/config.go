// Package train drives next-token language-model training: it loads a YAML
// configuration, unrolls an embedding → GRU → dense softmax model over
// corpus batches and updates parameters between generations.
package train

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the YAML training configuration.
type Config struct {
	Model struct {
		EmbDim    int `yaml:"emb-dim"`
		RnnDim    int `yaml:"rnn-dim"`
		SeqLen    int `yaml:"seq-len"`
		BatchSize int `yaml:"batch-size"`
	} `yaml:"model"`

	Training struct {
		Epochs    int     `yaml:"epochs"`
		Optimizer string  `yaml:"optimizer"` // sgd, adagrad or adam
		LR        float32 `yaml:"learn-rate"`
		Momentum  float32 `yaml:"momentum"`
		Seed      int64   `yaml:"seed"`
	} `yaml:"training"`

	Data struct {
		Corpus   string `yaml:"corpus"`
		Encoding string `yaml:"encoding"` // "words" or a tiktoken encoding name
	} `yaml:"data"`

	Output struct {
		Model           string `yaml:"model"`
		CheckpointEvery int    `yaml:"checkpoint-every"` // batches; 0 disables
		WorkspaceMB     int    `yaml:"workspace-mb"`
	} `yaml:"output"`
}

// DefaultConfig returns a config with workable defaults for everything but
// the corpus and model paths.
func DefaultConfig() Config {
	var c Config
	c.Model.EmbDim = 64
	c.Model.RnnDim = 128
	c.Model.SeqLen = 16
	c.Model.BatchSize = 8
	c.Training.Epochs = 1
	c.Training.Optimizer = "adam"
	c.Training.Seed = 1234
	c.Data.Encoding = "words"
	c.Output.WorkspaceMB = 128
	return c
}

// LoadConfig reads a YAML config from path on top of the defaults.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, errors.Wrapf(err, "parse config %s", path)
	}
	return c, c.Validate()
}

// Validate rejects configurations the trainer cannot run.
func (c *Config) Validate() error {
	switch {
	case c.Data.Corpus == "":
		return errors.New("config: data.corpus is required")
	case c.Output.Model == "":
		return errors.New("config: output.model is required")
	case c.Model.EmbDim < 1 || c.Model.RnnDim < 1:
		return errors.Errorf("config: invalid model dims %dx%d", c.Model.EmbDim, c.Model.RnnDim)
	case c.Model.SeqLen < 1 || c.Model.BatchSize < 1:
		return errors.Errorf("config: invalid batch geometry %dx%d", c.Model.BatchSize, c.Model.SeqLen)
	case c.Training.Epochs < 1:
		return errors.Errorf("config: invalid epochs %d", c.Training.Epochs)
	}
	switch c.Training.Optimizer {
	case "sgd", "adagrad", "adam":
	default:
		return errors.Errorf("config: unknown optimizer %q", c.Training.Optimizer)
	}
	return nil
}
