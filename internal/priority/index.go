// Package priority orders debtors by composite priority (score × amount).
package priority

import (
	"container/heap"

	"SmartRecover/internal/domain"
)

// entryHeap is a max-heap: the largest priority sits at the root.
// Equal priorities are ordered by ascending debtor id.
type entryHeap []domain.PriorityEntry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].Priority == h[j].Priority {
		return h[i].DebtorID < h[j].DebtorID
	}
	return h[i].Priority > h[j].Priority
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) {
	*h = append(*h, x.(domain.PriorityEntry))
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Index is the max-priority structure drained by the batch loop.
// It is not safe for concurrent mutation.
type Index struct {
	heap entryHeap
}

// NewIndex heapifies the given entries in linear time. The slice is owned by the index afterwards.
func NewIndex(entries []domain.PriorityEntry) *Index {
	h := entryHeap(entries)
	heap.Init(&h)
	return &Index{heap: h}
}

// Push inserts an entry in O(log n).
func (x *Index) Push(e domain.PriorityEntry) {
	heap.Push(&x.heap, e)
}

// Pop extracts the highest-priority entry in O(log n).
func (x *Index) Pop() (domain.PriorityEntry, bool) {
	if x.heap.Len() == 0 {
		return domain.PriorityEntry{}, false
	}
	return heap.Pop(&x.heap).(domain.PriorityEntry), true
}

// PopN extracts up to n entries, highest first.
func (x *Index) PopN(n int) []domain.PriorityEntry {
	if n > x.heap.Len() {
		n = x.heap.Len()
	}
	out := make([]domain.PriorityEntry, 0, n)
	for i := 0; i < n; i++ {
		e, _ := x.Pop()
		out = append(out, e)
	}
	return out
}

// Peek returns the highest-priority entry without removing it.
func (x *Index) Peek() (domain.PriorityEntry, bool) {
	if x.heap.Len() == 0 {
		return domain.PriorityEntry{}, false
	}
	return x.heap[0], true
}

// Len returns the number of pending entries.
func (x *Index) Len() int {
	return x.heap.Len()
}

// Top returns the k highest entries in extraction order without mutating the index.
func (x *Index) Top(k int) []domain.PriorityEntry {
	if k <= 0 {
		return nil
	}
	clone := &Index{heap: make(entryHeap, len(x.heap))}
	copy(clone.heap, x.heap)
	return clone.PopN(k)
}
