package capture

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueueDrainAll(t *testing.T) {
	q := NewQueue[int](0)
	for i := range 5 {
		q.Push(i)
	}
	assert.Equal(t, 5, q.Len())

	assert.Equal(t, []int{0, 1, 2, 3, 4}, q.DrainAll())
	assert.Empty(t, q.DrainAll())
	assert.Zero(t, q.Len())

	q.Push(9)
	assert.Equal(t, []int{9}, q.DrainAll())
}

func TestQueueDrainEmpty(t *testing.T) {
	q := NewQueue[string](0)
	assert.Nil(t, q.DrainAll())
	assert.Nil(t, q.DrainAll())
}

func TestQueueDropOldest(t *testing.T) {
	tcs := []struct {
		name    string
		cap     int
		pushes  int
		want    []int
		dropped uint64
	}{
		{"unbounded", 0, 6, []int{0, 1, 2, 3, 4, 5}, 0},
		{"under cap", 10, 3, []int{0, 1, 2}, 0},
		{"at cap", 3, 3, []int{0, 1, 2}, 0},
		{"over cap", 3, 7, []int{4, 5, 6}, 4},
		{"negative cap is unbounded", -1, 4, []int{0, 1, 2, 3}, 0},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			q := NewQueue[int](tc.cap)
			for i := range tc.pushes {
				q.Push(i)
			}

			assert.Equal(t, tc.want, q.DrainAll())
			assert.Equal(t, tc.dropped, q.Dropped())
		})
	}
}

func TestQueueConcurrentProducer(t *testing.T) {
	q := NewQueue[int](0)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range 1000 {
			q.Push(i)
		}
	}()

	var got []int
	for len(got) < 1000 {
		got = append(got, q.DrainAll()...)
	}
	wg.Wait()

	for i, v := range got {
		assert.Equal(t, i, v)
	}
}
