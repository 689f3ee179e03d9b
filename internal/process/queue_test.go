package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue(4)
	assert.True(t, q.IsEmpty())

	for _, pid := range []int{3, 1, 2} {
		require.True(t, q.Enqueue(pid))
	}
	assert.Equal(t, 3, q.Len())

	head, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, 3, head)

	var got []int
	for !q.IsEmpty() {
		pid, ok := q.Dequeue()
		require.True(t, ok)
		got = append(got, pid)
	}
	assert.Equal(t, []int{3, 1, 2}, got)
}

func TestQueue_EmptyAccess(t *testing.T) {
	q := NewQueue(0)

	_, ok := q.Dequeue()
	assert.False(t, ok)
	_, ok = q.Peek()
	assert.False(t, ok)
}

func TestQueue_DuplicateIsNoop(t *testing.T) {
	q := NewQueue(2)
	require.True(t, q.Enqueue(0))
	require.True(t, q.Enqueue(1))

	assert.False(t, q.Enqueue(0))
	assert.Equal(t, []int{0, 1}, q.Snapshot())

	// a dequeued pid may come back
	_, _ = q.Dequeue()
	assert.True(t, q.Enqueue(0))
	assert.Equal(t, []int{1, 0}, q.Snapshot())
}

func TestQueue_SortByIsStable(t *testing.T) {
	burst := map[int]int64{0: 5, 1: 3, 2: 5, 3: 1, 4: 3}
	q := NewQueue(5)
	for pid := 0; pid < 5; pid++ {
		q.Enqueue(pid)
	}

	q.SortBy(func(a, b int) bool { return burst[a] < burst[b] })

	assert.Equal(t, []int{3, 1, 4, 0, 2}, q.Snapshot())
}

func TestQueue_SnapshotIsACopy(t *testing.T) {
	q := NewQueue(1)
	q.Enqueue(7)

	snap := q.Snapshot()
	snap[0] = 9

	head, _ := q.Peek()
	assert.Equal(t, 7, head)
}

func TestQueue_Each(t *testing.T) {
	q := NewQueue(3)
	q.Enqueue(2)
	q.Enqueue(0)

	var seen []int
	q.Each(func(pid int) { seen = append(seen, pid) })
	assert.Equal(t, []int{2, 0}, seen)
}
