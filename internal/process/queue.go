package process

import "sort"

// Queue is a FIFO of process indices awaiting dispatch. A pid is held at
// most once; the queue owns its entries until they are dequeued.
type Queue struct {
	pids []int
}

// NewQueue creates an empty queue sized for n processes.
func NewQueue(n int) *Queue {
	return &Queue{pids: make([]int, 0, n)}
}

// Enqueue appends pid to the back. It is a no-op returning false when pid
// is already queued.
func (q *Queue) Enqueue(pid int) bool {
	if q.Contains(pid) {
		return false
	}
	q.pids = append(q.pids, pid)
	return true
}

// Dequeue removes and returns the front pid.
func (q *Queue) Dequeue() (int, bool) {
	if len(q.pids) == 0 {
		return 0, false
	}
	pid := q.pids[0]
	q.pids = q.pids[1:]
	return pid, true
}

// Peek returns the front pid without removing it.
func (q *Queue) Peek() (int, bool) {
	if len(q.pids) == 0 {
		return 0, false
	}
	return q.pids[0], true
}

// Contains reports whether pid is queued.
func (q *Queue) Contains(pid int) bool {
	for _, p := range q.pids {
		if p == pid {
			return true
		}
	}
	return false
}

func (q *Queue) IsEmpty() bool { return len(q.pids) == 0 }

func (q *Queue) Len() int { return len(q.pids) }

// Each calls fn for every queued pid, front to back.
func (q *Queue) Each(fn func(pid int)) {
	for _, pid := range q.pids {
		fn(pid)
	}
}

// SortBy reorders the queue with a stable sort, so entries that compare
// equal keep their queue order.
func (q *Queue) SortBy(less func(a, b int) bool) {
	sort.SliceStable(q.pids, func(i, j int) bool {
		return less(q.pids[i], q.pids[j])
	})
}

// Snapshot returns a copy of the queued pids, front first.
func (q *Queue) Snapshot() []int {
	out := make([]int, len(q.pids))
	copy(out, q.pids)
	return out
}
