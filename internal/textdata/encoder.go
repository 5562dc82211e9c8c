// Package textdata turns raw text into dense token-id streams and batches
// for next-token training. Corpus vocabularies are remapped to a dense
// [0, V) range so embedding tables and output layers size to the tokens the
// corpus actually uses rather than the encoder's full vocabulary.
package textdata

import (
	"bufio"
	"strings"

	"github.com/pkg/errors"
	"github.com/pkoukk/tiktoken-go"
)

// Encoder converts text into token ids in some external id space.
type Encoder interface {
	// Encode tokenizes text. Ids are encoder-specific and may be sparse.
	Encode(text string) ([]int, error)
	// Name identifies the encoding for logging and checkpoints.
	Name() string
}

// TiktokenEncoder tokenizes with an OpenAI BPE encoding via
// pkoukk/tiktoken-go. The rank data is fetched and cached on first use.
type TiktokenEncoder struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewTiktokenEncoder loads the named encoding, e.g. "cl100k_base" or
// "p50k_base".
func NewTiktokenEncoder(encodingName string) (*TiktokenEncoder, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, errors.Wrapf(err, "load tiktoken encoding %q", encodingName)
	}
	return &TiktokenEncoder{encoding: enc, name: encodingName}, nil
}

func (e *TiktokenEncoder) Encode(text string) ([]int, error) {
	return e.encoding.Encode(text, nil, nil), nil
}

func (e *TiktokenEncoder) Name() string { return e.name }

// WordEncoder is a whitespace tokenizer that assigns ids in order of first
// appearance. It needs no external data, which keeps tiny corpora and tests
// self-contained.
type WordEncoder struct {
	ids map[string]int
}

// NewWordEncoder creates an empty word-level encoder.
func NewWordEncoder() *WordEncoder {
	return &WordEncoder{ids: make(map[string]int)}
}

func (e *WordEncoder) Encode(text string) ([]int, error) {
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Split(bufio.ScanWords)
	var out []int
	for sc.Scan() {
		word := sc.Text()
		id, ok := e.ids[word]
		if !ok {
			id = len(e.ids)
			e.ids[word] = id
		}
		out = append(out, id)
	}
	return out, sc.Err()
}

func (e *WordEncoder) Name() string { return "words" }
