package tensor

import "testing"

func TestArena_AllocateAndFree(t *testing.T) {
	a := NewArena()
	a.Reserve(100, false)

	t1, err := a.Allocate(NewShape(2, 10), false)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if len(t1.Data()) != 20 {
		t.Errorf("len(Data()) = %d, want 20", len(t1.Data()))
	}
	if a.InUse() != 20 {
		t.Errorf("InUse() = %d, want 20", a.InUse())
	}

	a.Free(t1, false)
	if a.InUse() != 0 {
		t.Errorf("InUse() after free = %d, want 0", a.InUse())
	}
	if t1.Data() != nil {
		t.Error("freed tensor should have nil data")
	}
}

// A freed region must be reusable by the next allocation of compatible size,
// so transient tensors with disjoint lifetimes share one backing region.
func TestArena_ReusesFreedRegion(t *testing.T) {
	a := NewArena()
	a.Reserve(100, false)

	t1, err := a.Allocate(NewShape(1, 10), false)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	off1 := t1.offset
	a.Free(t1, false)

	t2, err := a.Allocate(NewShape(1, 10), false)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if t2.offset != off1 {
		t.Errorf("second allocation at offset %d, want reuse of offset %d", t2.offset, off1)
	}
}

// An allocation larger than the remaining workspace grows the arena instead
// of failing, and storage handed out before the growth stays valid.
func TestArena_GrowsOnDemand(t *testing.T) {
	a := NewArena()
	a.Reserve(10, false)

	t1, err := a.Allocate(NewShape(1, 10), false)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	t1.Data()[3] = 7

	t2, err := a.Allocate(NewShape(1, 25), false)
	if err != nil {
		t.Fatalf("Allocate beyond reserve: %v", err)
	}
	if len(t2.Data()) != 25 {
		t.Errorf("len(Data()) = %d, want 25", len(t2.Data()))
	}
	if a.Capacity() < 35 {
		t.Errorf("Capacity() = %d, want at least 35", a.Capacity())
	}
	if t1.Data()[3] != 7 {
		t.Error("pre-growth tensor lost its storage")
	}
}

// An unreserved arena must serve allocations from a standing start.
func TestArena_AllocateWithoutReserve(t *testing.T) {
	a := NewArena()

	t1, err := a.Allocate(NewShape(2, 3), false)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if len(t1.Data()) != 6 {
		t.Errorf("len(Data()) = %d, want 6", len(t1.Data()))
	}
}

// A chunk grown during a dry pass has no backing memory; a later real
// allocation landing in it must materialize the chunk.
func TestArena_DryGrowthThenRealAllocation(t *testing.T) {
	a := NewArena()

	d, err := a.Allocate(NewShape(1, 12), true)
	if err != nil {
		t.Fatalf("dry Allocate: %v", err)
	}
	if d.Data() != nil {
		t.Error("dry allocation should have nil data")
	}
	a.Clear()

	r, err := a.Allocate(NewShape(1, 12), false)
	if err != nil {
		t.Fatalf("real Allocate: %v", err)
	}
	if len(r.Data()) != 12 {
		t.Errorf("len(Data()) = %d, want 12", len(r.Data()))
	}
}

func TestArena_PeakTracksHighWater(t *testing.T) {
	a := NewArena()
	a.Reserve(100, false)

	t1, _ := a.Allocate(NewShape(1, 30), false)
	t2, _ := a.Allocate(NewShape(1, 40), false)
	a.Free(t1, false)
	a.Free(t2, false)
	if _, err := a.Allocate(NewShape(1, 10), false); err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	if a.Peak() != 70 {
		t.Errorf("Peak() = %d, want 70", a.Peak())
	}
}

// Dry mode performs the same bookkeeping without backing memory, so peak
// usage can be planned without a real device.
func TestArena_DryMode(t *testing.T) {
	a := NewArena()
	a.Reserve(50, true)

	t1, err := a.Allocate(NewShape(2, 10), true)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if t1.Data() != nil {
		t.Error("dry allocation should have nil data")
	}
	if a.Peak() != 20 {
		t.Errorf("Peak() = %d, want 20", a.Peak())
	}
}

func TestArena_CoalesceAdjacentFree(t *testing.T) {
	a := NewArena()
	a.Reserve(30, false)

	t1, _ := a.Allocate(NewShape(1, 10), false)
	t2, _ := a.Allocate(NewShape(1, 10), false)
	t3, _ := a.Allocate(NewShape(1, 10), false)
	a.Free(t1, false)
	a.Free(t2, false)

	// The two freed neighbors must merge into one region of 20.
	if _, err := a.Allocate(NewShape(1, 20), false); err != nil {
		t.Errorf("expected coalesced region of 20 elements: %v", err)
	}
	a.Free(t3, false)
}

func TestArena_ClearKeepsCapacity(t *testing.T) {
	a := NewArena()
	a.Reserve(40, false)
	_, _ = a.Allocate(NewShape(1, 40), false)

	a.Clear()
	if a.InUse() != 0 {
		t.Errorf("InUse() after Clear = %d, want 0", a.InUse())
	}
	if _, err := a.Allocate(NewShape(1, 40), false); err != nil {
		t.Errorf("Allocate after Clear: %v", err)
	}
}
