package priority_queue

import (
	"container/heap"

	"golang.org/x/exp/constraints"
)

// Item is a handle to an element stored in a Queue.
type Item[V any, P constraints.Ordered] struct {
	object   V
	priority P
	seq      uint64
	index    int
}

// Value returns the object held by the item.
func (it *Item[V, P]) Value() V {
	return it.object
}

// Priority returns the current priority of the item.
func (it *Item[V, P]) Priority() P {
	return it.priority
}

// Queued reports whether the item is still in its queue.
func (it *Item[V, P]) Queued() bool {
	return it.index >= 0
}

type wrapper[V any, P constraints.Ordered] []*Item[V, P]

func (pq wrapper[V, P]) Len() int {
	return len(pq)
}

// Equal priorities pop in insertion order.
func (pq wrapper[V, P]) Less(i, j int) bool {
	if pq[i].priority == pq[j].priority {
		return pq[i].seq < pq[j].seq
	}
	return pq[i].priority < pq[j].priority
}

func (pq wrapper[V, P]) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *wrapper[V, P]) Push(x any) {
	item := x.(*Item[V, P])
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *wrapper[V, P]) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // avoid memory leak
	item.index = -1 // for safety
	*pq = old[0 : n-1]
	return item
}

// Queue represents a priority queue with MINIMUM priority.
type Queue[V any, P constraints.Ordered] struct {
	pq  wrapper[V, P]
	seq uint64
}

// New creates a new priority queue. Not required to call.
func New[V any, P constraints.Ordered]() Queue[V, P] {
	return Queue[V, P]{pq: wrapper[V, P]{}}
}

// Len returns the length of the priority queue.
func (q *Queue[V, P]) Len() int {
	return len(q.pq)
}

// Push pushes the 'value' onto the priority queue.
func (q *Queue[V, P]) Push(value V, priority P) *Item[V, P] {
	q.seq++
	item := &Item[V, P]{
		object:   value,
		priority: priority,
		seq:      q.seq,
	}
	heap.Push(&q.pq, item)
	return item
}

// Peek returns the minimum element of the priority queue without removing it.
func (q *Queue[V, P]) Peek() V {
	return q.pq[0].object
}

// PeekPriority returns the minimum element's priority.
func (q *Queue[V, P]) PeekPriority() P {
	return q.pq[0].priority
}

// Pop removes and returns the minimum element of the priority queue.
func (q *Queue[V, P]) Pop() V {
	return heap.Pop(&q.pq).(*Item[V, P]).object
}

// Update modifies the priority and value of the item in the queue.
func (q *Queue[V, P]) Update(item *Item[V, P], value V, priority P) {
	if item == nil || item.index < 0 || item.index >= len(q.pq) || q.pq[item.index] != item {
		return
	}
	item.object = value
	item.priority = priority
	heap.Fix(&q.pq, item.index)
}

// Remove takes the item out of the queue, returning whether it was present.
func (q *Queue[V, P]) Remove(item *Item[V, P]) bool {
	if item == nil || item.index < 0 || item.index >= len(q.pq) || q.pq[item.index] != item {
		return false
	}
	heap.Remove(&q.pq, item.index)
	return true
}
