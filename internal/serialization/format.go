// Package serialization implements the .gflw model container: a magic tag,
// a JSON header describing every stored array, 64-byte aligned float32 data
// and a SHA-256 checksum over the data section.
package serialization

import "time"

// Format constants.
const (
	MagicBytes      = "GFLW"
	FormatVersion   = 1
	HeaderAlignment = 64 // align array data for mmap-friendly reads
	ChecksumSize    = 32 // SHA-256

	// fixedPrefixSize is magic (4) + version (4) + checksum (32) +
	// header size (8).
	fixedPrefixSize = 4 + 4 + ChecksumSize + 8

	// maxHeaderSize bounds the JSON header on read, guarding against
	// corrupted or hostile files.
	maxHeaderSize = 100 * 1024 * 1024
)

// Header is the JSON header of a .gflw file.
type Header struct {
	FormatVersion int               `json:"format_version"`
	ToolVersion   string            `json:"tool_version"`
	CreatedAt     time.Time         `json:"created_at"`
	Arrays        []ArrayMeta       `json:"arrays"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// ArrayMeta describes one named float32 array. Arrays are stored as
// two-dimensional (rows, cols); one-dimensional data is folded to (1, N).
type ArrayMeta struct {
	Name   string `json:"name"`
	Rows   int    `json:"rows"`
	Cols   int    `json:"cols"`
	Offset int64  `json:"offset"` // bytes from the start of the data section
	Size   int64  `json:"size"`   // bytes
}
