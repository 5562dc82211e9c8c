package serialization

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"time"

	"github.com/pkg/errors"
)

const toolVersion = "0.1.0"

// Array is one named float32 array queued for writing.
type Array struct {
	Name string
	Rows int
	Cols int
	Data []float32
}

// Writer writes model files in .gflw format. Arrays are buffered in memory
// until Close, when the checksum over the data section is known.
type Writer struct {
	path   string
	arrays []Array
	closed bool
}

// NewWriter creates a writer for the given path. Nothing is written until
// Close.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Append queues one array for writing.
func (w *Writer) Append(a Array) error {
	if w.closed {
		return ErrWriterClosed
	}
	if len(a.Data) != a.Rows*a.Cols {
		return errors.Errorf("serialization: array %q has %d values for (%d, %d)",
			a.Name, len(a.Data), a.Rows, a.Cols)
	}
	w.arrays = append(w.arrays, a)
	return nil
}

// Close writes the complete file and invalidates the writer.
func (w *Writer) Close() error {
	if w.closed {
		return ErrWriterClosed
	}
	w.closed = true

	header := Header{
		FormatVersion: FormatVersion,
		ToolVersion:   toolVersion,
		CreatedAt:     time.Now().UTC(),
	}

	var dataSize int64
	for _, a := range w.arrays {
		size := int64(len(a.Data) * 4)
		header.Arrays = append(header.Arrays, ArrayMeta{
			Name:   a.Name,
			Rows:   a.Rows,
			Cols:   a.Cols,
			Offset: dataSize,
			Size:   size,
		})
		dataSize += size
	}

	data := make([]byte, dataSize)
	for i, a := range w.arrays {
		off := header.Arrays[i].Offset
		for j, v := range a.Data {
			binary.LittleEndian.PutUint32(data[off+int64(j)*4:], math.Float32bits(v))
		}
	}
	checksum := ComputeChecksum(data)

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return errors.Wrap(err, "serialization: failed to marshal header")
	}

	file, err := os.Create(w.path)
	if err != nil {
		return errors.Wrap(err, "serialization: failed to create file")
	}
	defer file.Close()

	if _, err := file.WriteString(MagicBytes); err != nil {
		return errors.Wrap(err, "serialization: failed to write magic bytes")
	}
	if err := binary.Write(file, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return errors.Wrap(err, "serialization: failed to write version")
	}
	if _, err := file.Write(checksum[:]); err != nil {
		return errors.Wrap(err, "serialization: failed to write checksum")
	}
	if err := binary.Write(file, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return errors.Wrap(err, "serialization: failed to write header size")
	}
	if _, err := file.Write(headerJSON); err != nil {
		return errors.Wrap(err, "serialization: failed to write header")
	}

	pos := int64(fixedPrefixSize) + int64(len(headerJSON))
	if padding := (HeaderAlignment - pos%HeaderAlignment) % HeaderAlignment; padding > 0 {
		if _, err := file.Write(make([]byte, padding)); err != nil {
			return errors.Wrap(err, "serialization: failed to write padding")
		}
	}

	if _, err := file.Write(data); err != nil {
		return errors.Wrap(err, "serialization: failed to write data section")
	}
	return file.Sync()
}
