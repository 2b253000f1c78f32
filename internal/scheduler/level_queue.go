package scheduler

import (
	"container/heap"
	"sort"

	"github.com/example/wordloop/pkg/models"
)

type queueItem struct {
	entry models.QueueEntry
	seq   uint64
}

// entryHeap orders by due time, then by insertion sequence
type entryHeap []queueItem

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].entry.Due != h[j].entry.Due {
		return h[i].entry.Due < h[j].entry.Due
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x interface{}) { *h = append(*h, x.(queueItem)) }

func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// levelQueue holds the words waiting at one mastery level
type levelQueue struct {
	items entryHeap
}

func (q *levelQueue) push(e models.QueueEntry, seq uint64) {
	heap.Push(&q.items, queueItem{entry: e, seq: seq})
}

func (q *levelQueue) peek() (models.QueueEntry, bool) {
	if len(q.items) == 0 {
		return models.QueueEntry{}, false
	}
	return q.items[0].entry, true
}

func (q *levelQueue) pop() models.QueueEntry {
	return heap.Pop(&q.items).(queueItem).entry
}

func (q *levelQueue) len() int {
	return len(q.items)
}

// entries returns the queue contents in selection order
func (q *levelQueue) entries() []models.QueueEntry {
	sorted := append(entryHeap(nil), q.items...)
	sort.Sort(sorted)
	out := make([]models.QueueEntry, len(sorted))
	for i, it := range sorted {
		out[i] = it.entry
	}
	return out
}
