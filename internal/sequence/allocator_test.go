package sequence

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocator(t *testing.T) {
	t.Run("starts one past the seed", func(t *testing.T) {
		assert.Equal(t, uint64(1), NewAllocator(0).Next())
		assert.Equal(t, uint64(101), NewAllocator(100).Next())
	})

	t.Run("increases monotonically", func(t *testing.T) {
		allocator := NewAllocator(0)

		last := uint64(0)
		for i := 0; i < 1000; i++ {
			next := allocator.Next()
			assert.Greater(t, next, last)
			last = next
		}
	})

	t.Run("reports the last issued id", func(t *testing.T) {
		allocator := NewAllocator(0)
		assert.Equal(t, uint64(0), allocator.Current())

		allocator.Next()
		allocator.Next()
		assert.Equal(t, uint64(2), allocator.Current())
	})

	t.Run("never hands out the same id twice", func(t *testing.T) {
		allocator := NewAllocator(0)

		const workers = 8
		const perWorker = 250

		ids := make(chan uint64, workers*perWorker)

		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < perWorker; i++ {
					ids <- allocator.Next()
				}
			}()
		}
		wg.Wait()
		close(ids)

		seen := make(map[uint64]bool, workers*perWorker)
		for id := range ids {
			assert.False(t, seen[id])
			seen[id] = true
		}

		assert.Len(t, seen, workers*perWorker)
		assert.Equal(t, uint64(workers*perWorker), allocator.Current())
	})
}
