package capture

import (
	"sync"
)

// Queue is a FIFO hand-off buffer between the capture loop and the drain
// step. Push never blocks.
//
// With a zero cap the queue grows without bound. With a positive cap the
// oldest queued items are dropped to make room and counted in Dropped.
type Queue[T any] struct {
	mu      sync.Mutex
	items   []T
	limit   int
	dropped uint64
}

func NewQueue[T any](limit int) *Queue[T] {
	return &Queue[T]{limit: max(limit, 0)}
}

func (q *Queue[T]) Push(v T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.limit > 0 && len(q.items) >= q.limit {
		n := len(q.items) - q.limit + 1
		clear(q.items[:n])
		q.items = q.items[n:]
		q.dropped += uint64(n)
	}

	q.items = append(q.items, v)
}

// DrainAll removes and returns everything queued, oldest first. It returns
// nil immediately when the queue is empty.
func (q *Queue[T]) DrainAll() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}

	out := q.items
	q.items = nil

	return out
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

// Dropped returns how many items were discarded because the cap was reached.
func (q *Queue[T]) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.dropped
}
