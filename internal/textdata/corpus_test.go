package textdata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordEncoder_AssignsIDsInOrder(t *testing.T) {
	enc := NewWordEncoder()
	ids, err := enc.Encode("the cat sat on the mat")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 0, 4}, ids)
}

func TestReadCorpus_DenseRemap(t *testing.T) {
	// A sparse-id encoder: the corpus must still see ids 0..V-1.
	enc := &offsetEncoder{}
	c, err := ReadCorpus(strings.NewReader("a b a c"), enc)
	require.NoError(t, err)

	assert.Equal(t, 4, c.Len())
	assert.Equal(t, 3, c.VocabSize())
	assert.Equal(t, []int{0, 1, 0, 2}, c.Tokens())

	orig, err := c.EncoderID(2)
	require.NoError(t, err)
	assert.Equal(t, 2000, orig)

	_, err = c.EncoderID(3)
	assert.Error(t, err)
}

func TestBatches_GeometryAndShiftedTargets(t *testing.T) {
	enc := NewWordEncoder()
	// 14 single-letter words tokenize to ids 0..13 in order.
	c, err := ReadCorpus(strings.NewReader("a b c d e f g h i j k l m n"), enc)
	require.NoError(t, err)

	// span = 3+1 tokens per sequence, 2 sequences per batch: 14 tokens
	// yield one full batch of 8 and drop the remainder.
	batches, err := c.Batches(2, 3)
	require.NoError(t, err)
	require.Len(t, batches, 1)

	b := batches[0]
	require.Len(t, b.Steps, 3)
	for t2 := 0; t2 < 3; t2++ {
		require.Len(t, b.Steps[t2], 2)
		for s := 0; s < 2; s++ {
			assert.Equal(t, b.Steps[t2][s]+1, b.Targets[t2][s], "targets are the next token")
		}
	}
	// Sequence 0 starts at token 0, sequence 1 at token 4.
	assert.Equal(t, []int{0, 4}, b.Steps[0])
}

func TestBatches_CorpusTooSmall(t *testing.T) {
	c, err := ReadCorpus(strings.NewReader("a b c"), NewWordEncoder())
	require.NoError(t, err)
	_, err = c.Batches(4, 16)
	assert.Error(t, err)
}

// offsetEncoder returns ids with a large stride to exercise remapping.
type offsetEncoder struct{}

func (offsetEncoder) Encode(text string) ([]int, error) {
	words := strings.Fields(text)
	ids := make([]int, len(words))
	seen := map[string]int{}
	for i, w := range words {
		id, ok := seen[w]
		if !ok {
			id = len(seen) * 1000
			seen[w] = id
		}
		ids[i] = id
	}
	return ids, nil
}

func (offsetEncoder) Name() string { return "offsets" }
