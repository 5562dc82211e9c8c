package textdata

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Corpus is a tokenized text with its ids remapped to a dense [0, V) range.
type Corpus struct {
	tokens []int // dense ids, in document order
	vocab  []int // dense id -> encoder id
	dense  map[int]int
	enc    Encoder
}

// LoadCorpus reads and tokenizes the file at path.
func LoadCorpus(path string, enc Encoder) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open corpus %s", path)
	}
	defer f.Close()
	c, err := ReadCorpus(f, enc)
	if err != nil {
		return nil, errors.Wrapf(err, "read corpus %s", path)
	}
	return c, nil
}

// ReadCorpus tokenizes everything from r.
func ReadCorpus(r io.Reader, enc Encoder) (*Corpus, error) {
	text, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw, err := enc.Encode(string(text))
	if err != nil {
		return nil, errors.Wrapf(err, "encode with %s", enc.Name())
	}

	c := &Corpus{
		tokens: make([]int, len(raw)),
		dense:  make(map[int]int),
		enc:    enc,
	}
	for i, id := range raw {
		d, ok := c.dense[id]
		if !ok {
			d = len(c.vocab)
			c.dense[id] = d
			c.vocab = append(c.vocab, id)
		}
		c.tokens[i] = d
	}
	klog.V(1).Infof("corpus: %d tokens, %d distinct (%s)", len(c.tokens), len(c.vocab), enc.Name())
	return c, nil
}

// Len returns the number of tokens in the corpus.
func (c *Corpus) Len() int { return len(c.tokens) }

// VocabSize returns the number of distinct tokens.
func (c *Corpus) VocabSize() int { return len(c.vocab) }

// Tokens returns the dense token stream.
func (c *Corpus) Tokens() []int { return c.tokens }

// EncoderID maps a dense id back to the encoder's id space.
func (c *Corpus) EncoderID(dense int) (int, error) {
	if dense < 0 || dense >= len(c.vocab) {
		return 0, errors.Errorf("dense id %d out of range [0,%d)", dense, len(c.vocab))
	}
	return c.vocab[dense], nil
}

// Batch holds one training example for a recurrent next-token model: Steps[t]
// is the batch of input ids at time t and Targets[t] the ids each sequence
// should predict next.
type Batch struct {
	Steps   [][]int
	Targets [][]int
}

// Batches cuts the corpus into batches of batchSize parallel sequences,
// seqLen steps each. Sequences are contiguous corpus slices; a trailing
// remainder shorter than seqLen+1 is dropped.
func (c *Corpus) Batches(batchSize, seqLen int) ([]Batch, error) {
	if batchSize < 1 || seqLen < 1 {
		return nil, errors.Errorf("invalid batch geometry %dx%d", batchSize, seqLen)
	}
	span := seqLen + 1 // inputs plus the shifted targets
	perBatch := batchSize * span
	n := len(c.tokens) / perBatch
	if n == 0 {
		return nil, errors.Errorf("corpus of %d tokens is too small for one %dx%d batch",
			len(c.tokens), batchSize, seqLen)
	}

	batches := make([]Batch, 0, n)
	for b := 0; b < n; b++ {
		batch := Batch{
			Steps:   make([][]int, seqLen),
			Targets: make([][]int, seqLen),
		}
		for t := 0; t < seqLen; t++ {
			batch.Steps[t] = make([]int, batchSize)
			batch.Targets[t] = make([]int, batchSize)
		}
		for s := 0; s < batchSize; s++ {
			seq := c.tokens[b*perBatch+s*span:]
			for t := 0; t < seqLen; t++ {
				batch.Steps[t][s] = seq[t]
				batch.Targets[t][s] = seq[t+1]
			}
		}
		batches = append(batches, batch)
	}
	return batches, nil
}
