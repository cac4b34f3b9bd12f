package sequence

import (
	"sync/atomic"
)

// Allocator hands out strictly increasing uint64 ids. Listings and orders
// each get their own allocator so the two id spaces never collide.
type Allocator interface {
	Next() uint64
	Current() uint64
}

type allocator struct {
	last uint64
}

func NewAllocator(start uint64) Allocator {
	return &allocator{last: start}
}

// Next returns the next id. The first id issued by a fresh allocator is
// start+1; an id is never reused, even when the request it was issued for
// fails.
func (a *allocator) Next() uint64 {
	return atomic.AddUint64(&a.last, 1)
}

func (a *allocator) Current() uint64 {
	return atomic.LoadUint64(&a.last)
}
