package train

import (
	"fmt"
	"math/rand"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"

	"github.com/gradflow-ml/gradflow/internal/graph"
	"github.com/gradflow-ml/gradflow/internal/nn"
	"github.com/gradflow-ml/gradflow/internal/optim"
	"github.com/gradflow-ml/gradflow/internal/tensor"
	"github.com/gradflow-ml/gradflow/internal/textdata"
)

// Trainer unrolls a GRU language model over corpus batches and trains it.
// The expression graph is rebuilt for every batch; parameters persist on the
// graph across generations and the optimizer updates them in place.
type Trainer struct {
	cfg Config
	g   *graph.Graph
	opt optim.Optimizer

	emb   *nn.Embedding
	cell  *nn.GRU
	dense *nn.Dense

	lastLoss float32
}

// New prepares a trainer on the given backend. Model builders are created
// lazily in Run once the corpus vocabulary is known.
func New(cfg Config, backend tensor.Backend) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opt optim.Optimizer
	switch cfg.Training.Optimizer {
	case "sgd":
		opt = optim.NewSGD(optim.SGDConfig{LR: cfg.Training.LR, Momentum: cfg.Training.Momentum})
	case "adagrad":
		opt = optim.NewAdagrad(optim.AdagradConfig{LR: cfg.Training.LR})
	case "adam":
		opt = optim.NewAdam(optim.AdamConfig{LR: cfg.Training.LR})
	default:
		return nil, errors.Errorf("unknown optimizer %q", cfg.Training.Optimizer)
	}

	g := graph.New(backend)
	g.ReserveWorkspaceMB(cfg.Output.WorkspaceMB)
	return &Trainer{cfg: cfg, g: g, opt: opt}, nil
}

// LastLoss returns the mean per-token loss of the most recent batch.
func (t *Trainer) LastLoss() float32 { return t.lastLoss }

// Graph exposes the trainer's graph, mainly so callers can save or inspect
// parameters after training.
func (t *Trainer) Graph() *graph.Graph { return t.g }

func (t *Trainer) encoder() (textdata.Encoder, error) {
	if t.cfg.Data.Encoding == "words" {
		return textdata.NewWordEncoder(), nil
	}
	return textdata.NewTiktokenEncoder(t.cfg.Data.Encoding)
}

// buildLoss clears the graph and unrolls one batch, returning the summed
// per-step cross-entropy as the single top node.
func (t *Trainer) buildLoss(batch textdata.Batch) (graph.Expr, error) {
	t.g.Clear()
	state := t.cell.InitialState(t.g, t.cfg.Model.BatchSize)

	var total graph.Expr
	for step := range batch.Steps {
		x, err := t.emb.Apply(t.g, batch.Steps[step])
		if err != nil {
			return nil, err
		}
		if state, err = t.cell.Apply(t.g, state, x); err != nil {
			return nil, err
		}
		logits, err := t.dense.Apply(t.g, state)
		if err != nil {
			return nil, err
		}
		loss, err := nn.CrossEntropy(t.g, logits, batch.Targets[step])
		if err != nil {
			return nil, err
		}
		if total == nil {
			total = loss
		} else if total, err = graph.Plus(total, loss); err != nil {
			return nil, err
		}
	}
	// Naming the top node keeps its value alive through the backward pass
	// so the batch loss can be read afterwards.
	if err := t.g.NameNode(total, "cost"); err != nil {
		return nil, err
	}
	return total, nil
}

// Run trains for the configured number of epochs and writes the final model.
func (t *Trainer) Run() error {
	enc, err := t.encoder()
	if err != nil {
		return err
	}
	corpus, err := textdata.LoadCorpus(t.cfg.Data.Corpus, enc)
	if err != nil {
		return err
	}
	batches, err := corpus.Batches(t.cfg.Model.BatchSize, t.cfg.Model.SeqLen)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(t.cfg.Training.Seed))
	vocab := corpus.VocabSize()
	t.emb = nn.NewEmbedding("Wemb", vocab, t.cfg.Model.EmbDim, rng)
	t.cell = nn.NewGRU("encoder", t.cfg.Model.RnnDim, rng)
	t.dense = nn.NewDense("ff_logit", vocab, nn.ActNone, rng)

	klog.Infof("training on %d tokens, vocab %d, %d batches of %dx%d",
		corpus.Len(), vocab, len(batches), t.cfg.Model.BatchSize, t.cfg.Model.SeqLen)

	// Size the workspace on a dry pass over the first batch before any
	// real allocation happens.
	if _, err := t.buildLoss(batches[0]); err != nil {
		return err
	}
	peak, err := t.g.PlanMemory()
	if err != nil {
		return err
	}
	klog.V(1).Infof("planned workspace peak: %s", humanize.IBytes(uint64(peak)))

	steps := 0
	for epoch := 1; epoch <= t.cfg.Training.Epochs; epoch++ {
		bar := progressbar.NewOptions(len(batches),
			progressbar.OptionSetDescription(fmt.Sprintf("epoch %d/%d", epoch, t.cfg.Training.Epochs)),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("batches"),
		)
		var epochLoss float64
		for _, batch := range batches {
			loss, err := t.buildLoss(batch)
			if err != nil {
				return err
			}
			if err := t.g.Backprop(); err != nil {
				return errors.Wrap(err, "backprop")
			}
			t.opt.Step(t.g.Params())

			t.lastLoss = loss.Val().Get(0) / float32(t.cfg.Model.SeqLen)
			epochLoss += float64(t.lastLoss)
			steps++
			_ = bar.Add(1)

			if n := t.cfg.Output.CheckpointEvery; n > 0 && steps%n == 0 {
				ckpt := t.cfg.Output.Model + ".ckpt"
				if err := t.g.Save(ckpt); err != nil {
					return errors.Wrapf(err, "checkpoint at step %d", steps)
				}
				klog.V(1).Infof("checkpoint written to %s", ckpt)
			}
		}
		_ = bar.Finish()
		klog.Infof("epoch %d: mean loss %.4f", epoch, epochLoss/float64(len(batches)))
	}

	return t.g.Save(t.cfg.Output.Model)
}
