package serialization

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gflw")

	w := NewWriter(path)
	require.NoError(t, w.Append(Array{Name: "enc_W", Rows: 2, Cols: 3, Data: []float32{1, 2, 3, 4, 5, 6}}))
	require.NoError(t, w.Append(Array{Name: "enc_b", Rows: 1, Cols: 3, Data: []float32{-0.5, 0, 0.5}}))
	require.NoError(t, w.Close())

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	arrays := r.Arrays()
	require.Len(t, arrays, 2)

	assert.Equal(t, "enc_W", arrays[0].Name)
	assert.Equal(t, 2, arrays[0].Rows)
	assert.Equal(t, 3, arrays[0].Cols)

	values, err := r.Read(arrays[0])
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, values)

	values, err = r.Read(arrays[1])
	require.NoError(t, err)
	assert.Equal(t, []float32{-0.5, 0, 0.5}, values)
}

func TestAppend_SizeMismatch(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "model.gflw"))
	err := w.Append(Array{Name: "bad", Rows: 2, Cols: 2, Data: []float32{1, 2, 3}})
	assert.Error(t, err)
}

func TestWriter_ClosedRejectsAppend(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "model.gflw"))
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Append(Array{Name: "x", Rows: 1, Cols: 1, Data: []float32{1}}), ErrWriterClosed)
}

func TestReader_InvalidMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.gflw")
	require.NoError(t, os.WriteFile(path, []byte("NOTGFLWFILE padding padding padding padding padding"), 0o644))

	_, err := NewReader(path)
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestReader_DetectsCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gflw")

	w := NewWriter(path)
	require.NoError(t, w.Append(Array{Name: "w", Rows: 1, Cols: 4, Data: []float32{1, 2, 3, 4}}))
	require.NoError(t, w.Close())

	// Flip one byte in the data section (the end of the file).
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	_, err = NewReader(path)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}
