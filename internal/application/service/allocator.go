package service

import (
	"math"
	"sync/atomic"

	"github.com/bridgeport/bridgeport-go/internal/domain/model"
)

// Allocator issues process-wide unique request identifiers: positive,
// monotonically increasing, starting at 1, never reused.
type Allocator struct {
	last atomic.Uint64
}

// NewAllocator creates an allocator whose first issued id is 1
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Next returns the next identifier. Overflow of the id space is a fatal
// condition rather than a silent wrap into previously issued ids; at realistic
// request volumes it cannot occur.
func (a *Allocator) Next() (uint64, error) {
	id := a.last.Add(1)
	if id > math.MaxInt64 {
		return 0, model.ErrIDExhausted
	}
	return id, nil
}
