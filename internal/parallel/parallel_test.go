package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRows_VisitsEveryRowOnce(t *testing.T) {
	const rows = 1000
	var visits [rows]int32
	// rowCost large enough to force the concurrent path.
	Rows(rows, 1<<12, func(r int) {
		atomic.AddInt32(&visits[r], 1)
	})
	for r := 0; r < rows; r++ {
		assert.Equal(t, int32(1), visits[r], "row %d", r)
	}
}

func TestRows_SmallWorkloadStaysOrdered(t *testing.T) {
	// Below the work threshold the loop is sequential, so appends are safe
	// and ordered.
	var order []int
	Rows(8, 1, func(r int) {
		order = append(order, r)
	})
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, order)
}

func TestRows_ZeroRows(t *testing.T) {
	called := false
	Rows(0, 100, func(int) { called = true })
	assert.False(t, called)
}
