package tensor

// Arena is a reusable memory workspace from which the expression graph
// requests tensor storage. Freed regions become available to later
// allocations within the same generation, so two tensors with disjoint
// lifetimes can share one backing region.
//
// The workspace grows on demand: when no free region fits, a new backing
// chunk is appended. Chunks are never reallocated or moved, so storage
// handed out earlier stays valid across growth. Reserve sizes the first
// chunk up front to avoid growth during the steady state.
//
// An arena is owned by exactly one graph and is only ever touched from the
// graph's driving goroutine; it is not safe for concurrent use.
//
// In dry mode the arena performs every structural step (offsets, splitting,
// peak tracking, growth) without backing memory, so a dry forward/backward
// cycle reports the workspace a real one would need. Chunks added dry are
// materialized lazily if a later real allocation lands in them.
type Arena struct {
	chunks   []chunk
	blocks   []block
	capacity int
	peak     int
	inUse    int
}

// chunk is one contiguous backing buffer. data stays nil for chunks grown
// during a dry pass until a real allocation needs them.
type chunk struct {
	data []float32
	base int
	size int
}

// block is an allocation bookkeeping entry; offsets are global across
// chunks.
type block struct {
	chunk  int
	offset int
	size   int
	free   bool
}

// NewArena returns an empty arena that grows as tensors are allocated.
func NewArena() *Arena {
	return &Arena{}
}

// Reserve grows the workspace to hold at least elements float32 values.
// Existing contents are preserved. In dry mode only the capacity is
// recorded.
func (a *Arena) Reserve(elements int, dry bool) {
	if elements <= a.capacity {
		return
	}
	a.addChunk(elements-a.capacity, dry)
}

// addChunk appends a fresh backing chunk with one free block covering it.
func (a *Arena) addChunk(size int, dry bool) {
	c := chunk{base: a.capacity, size: size}
	if !dry {
		c.data = make([]float32, size)
	}
	a.chunks = append(a.chunks, c)
	a.blocks = append(a.blocks, block{
		chunk:  len(a.chunks) - 1,
		offset: c.base,
		size:   size,
		free:   true,
	})
	a.capacity += size
}

// Capacity returns the reserved workspace size in elements.
func (a *Arena) Capacity() int {
	return a.capacity
}

// Peak returns the high-water mark of workspace usage in elements.
func (a *Arena) Peak() int {
	return a.peak
}

// InUse returns the number of currently allocated elements.
func (a *Arena) InUse() int {
	return a.inUse
}

// Allocate carves a region of shape.Elements() values out of the workspace
// and returns a tensor handle over it, growing the workspace when no free
// region is large enough. Growth appends a chunk, so earlier handles keep
// their storage.
func (a *Arena) Allocate(shape Shape, dry bool) (*Tensor, error) {
	n := shape.Elements()
	i := a.findFree(n)
	if i < 0 {
		a.addChunk(n, dry)
		i = len(a.blocks) - 1
	}

	b := &a.blocks[i]
	off := b.offset
	ci := b.chunk
	if b.size == n {
		b.free = false
	} else {
		rest := block{chunk: ci, offset: off + n, size: b.size - n, free: true}
		b.size = n
		b.free = false
		a.blocks = append(a.blocks[:i+1], append([]block{rest}, a.blocks[i+1:]...)...)
	}
	a.inUse += n
	if a.inUse > a.peak {
		a.peak = a.inUse
	}

	t := &Tensor{shape: shape, offset: off}
	if !dry {
		c := &a.chunks[ci]
		if c.data == nil {
			// Chunk was grown during a dry pass; back it now.
			c.data = make([]float32, c.size)
		}
		t.data = c.data[off-c.base : off-c.base+n]
	}
	return t, nil
}

// findFree returns the index of the first free block of at least n elements,
// or -1.
func (a *Arena) findFree(n int) int {
	for i := range a.blocks {
		if a.blocks[i].free && a.blocks[i].size >= n {
			return i
		}
	}
	return -1
}

// Free returns a tensor's region to the workspace. Views are not arena-owned
// and must not be freed.
func (a *Arena) Free(t *Tensor, dry bool) {
	if t == nil || t.IsView() {
		return
	}
	for i := range a.blocks {
		if a.blocks[i].offset != t.offset || a.blocks[i].free {
			continue
		}
		a.blocks[i].free = true
		a.inUse -= a.blocks[i].size
		a.coalesce(i)
		t.data = nil
		return
	}
}

// coalesce merges the block at index i with adjacent free blocks of the
// same chunk; regions never span a chunk boundary.
func (a *Arena) coalesce(i int) {
	if i+1 < len(a.blocks) && a.blocks[i+1].free && a.blocks[i+1].chunk == a.blocks[i].chunk {
		a.blocks[i].size += a.blocks[i+1].size
		a.blocks = append(a.blocks[:i+1], a.blocks[i+2:]...)
	}
	if i > 0 && a.blocks[i-1].free && a.blocks[i-1].chunk == a.blocks[i].chunk {
		a.blocks[i-1].size += a.blocks[i].size
		a.blocks = append(a.blocks[:i], a.blocks[i+1:]...)
	}
}

// Clear releases every allocation at once, keeping the backing chunks and
// the recorded peak.
func (a *Arena) Clear() {
	a.blocks = a.blocks[:0]
	for i, c := range a.chunks {
		a.blocks = append(a.blocks, block{chunk: i, offset: c.base, size: c.size, free: true})
	}
	a.inUse = 0
}
