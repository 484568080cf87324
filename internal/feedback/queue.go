package feedback

import (
	"container/heap"
	"sync"
	"time"

	"github.com/plateful/platesearch/internal/models"
)

type pendingEvent struct {
	event       models.FeedbackEvent
	attempts    int
	nextAttempt time.Time
}

// retryQueue is a bounded time-ordered queue of feedback events awaiting
// their (re)try.
type retryQueue struct {
	mutex  sync.Mutex
	events []pendingEvent
	limit  int
}

type eventHeap []pendingEvent

func (h eventHeap) Len() int           { return len(h) }
func (h eventHeap) Less(i, j int) bool { return h[i].nextAttempt.Before(h[j].nextAttempt) }
func (h eventHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x interface{}) {
	*h = append(*h, x.(pendingEvent))
}

func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

func newRetryQueue(limit int) *retryQueue {
	return &retryQueue{events: make([]pendingEvent, 0), limit: limit}
}

// push adds an event; returns false when the queue is at capacity.
func (q *retryQueue) push(event pendingEvent) bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if len(q.events) >= q.limit {
		return false
	}
	heap.Push((*eventHeap)(&q.events), event)
	return true
}

// popDue removes and returns the earliest event whose attempt time has
// passed.
func (q *retryQueue) popDue(now time.Time) (pendingEvent, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if len(q.events) == 0 || q.events[0].nextAttempt.After(now) {
		return pendingEvent{}, false
	}
	return heap.Pop((*eventHeap)(&q.events)).(pendingEvent), true
}

func (q *retryQueue) len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.events)
}
