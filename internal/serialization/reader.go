package serialization

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
)

// Reader reads model files in .gflw format. The header is parsed and the
// data-section checksum validated on open.
type Reader struct {
	file       *os.File
	header     Header
	checksum   [ChecksumSize]byte
	dataOffset int64
	dataSize   int64
}

// NewReader opens a .gflw file and validates its header and checksum.
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "serialization: failed to open file")
	}

	r := &Reader{file: file}
	if err := r.parseHeader(); err != nil {
		_ = file.Close()
		return nil, err
	}
	if err := r.validate(); err != nil {
		_ = file.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) parseHeader() error {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r.file, magic); err != nil {
		return errors.Wrap(err, "serialization: failed to read magic bytes")
	}
	if string(magic) != MagicBytes {
		return ErrInvalidMagic
	}

	var version uint32
	if err := binary.Read(r.file, binary.LittleEndian, &version); err != nil {
		return errors.Wrap(err, "serialization: failed to read version")
	}
	if version != FormatVersion {
		return errors.Wrapf(ErrUnsupportedVersion, "got %d, expected %d", version, FormatVersion)
	}

	if _, err := io.ReadFull(r.file, r.checksum[:]); err != nil {
		return errors.Wrap(err, "serialization: failed to read checksum")
	}

	var headerSize uint64
	if err := binary.Read(r.file, binary.LittleEndian, &headerSize); err != nil {
		return errors.Wrap(err, "serialization: failed to read header size")
	}
	if headerSize > maxHeaderSize {
		return ErrHeaderTooLarge
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r.file, headerJSON); err != nil {
		return errors.Wrap(err, "serialization: failed to read header")
	}
	if err := json.Unmarshal(headerJSON, &r.header); err != nil {
		return errors.Wrap(err, "serialization: failed to parse header")
	}

	pos := int64(fixedPrefixSize) + int64(headerSize)
	r.dataOffset = pos + (HeaderAlignment-pos%HeaderAlignment)%HeaderAlignment

	info, err := r.file.Stat()
	if err != nil {
		return errors.Wrap(err, "serialization: failed to stat file")
	}
	r.dataSize = info.Size() - r.dataOffset
	return nil
}

func (r *Reader) validate() error {
	for _, meta := range r.header.Arrays {
		if meta.Offset < 0 || meta.Offset+meta.Size > r.dataSize {
			return errors.Wrapf(ErrOutOfBounds, "array %q", meta.Name)
		}
		if int64(meta.Rows*meta.Cols*4) != meta.Size {
			return errors.Errorf("serialization: array %q: size %d does not match (%d, %d)",
				meta.Name, meta.Size, meta.Rows, meta.Cols)
		}
	}

	data := make([]byte, r.dataSize)
	if _, err := r.file.ReadAt(data, r.dataOffset); err != nil {
		return errors.Wrap(err, "serialization: failed to read data section")
	}
	return ValidateChecksum(ComputeChecksum(data), r.checksum)
}

// Header returns the parsed file header.
func (r *Reader) Header() Header { return r.header }

// Arrays returns the metadata of every stored array, in file order.
func (r *Reader) Arrays() []ArrayMeta { return r.header.Arrays }

// Read loads one array's values.
func (r *Reader) Read(meta ArrayMeta) ([]float32, error) {
	raw := make([]byte, meta.Size)
	if _, err := r.file.ReadAt(raw, r.dataOffset+meta.Offset); err != nil {
		return nil, errors.Wrapf(err, "serialization: failed to read array %q", meta.Name)
	}
	values := make([]float32, meta.Rows*meta.Cols)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return values, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}
