package timing

import "container/heap"

// eventQueue orders events by time. Events of the same cycle leave the queue
// in the order they were scheduled.
type eventQueue struct {
	events  scheduledEventHeap
	nextSeq uint64
}

func newEventQueue() *eventQueue {
	q := &eventQueue{}
	heap.Init(&q.events)

	return q
}

func (q *eventQueue) Push(evt *ScheduledEvent) {
	heap.Push(&q.events, queuedEvent{evt: evt, seq: q.nextSeq})
	q.nextSeq++
}

func (q *eventQueue) Pop() *ScheduledEvent {
	if q.events.Len() == 0 {
		return nil
	}

	return heap.Pop(&q.events).(queuedEvent).evt
}

func (q *eventQueue) Peek() *ScheduledEvent {
	if q.events.Len() == 0 {
		return nil
	}

	return q.events[0].evt
}

func (q *eventQueue) Len() int {
	return q.events.Len()
}

type queuedEvent struct {
	evt *ScheduledEvent
	seq uint64
}

type scheduledEventHeap []queuedEvent

func (h scheduledEventHeap) Len() int { return len(h) }

func (h scheduledEventHeap) Less(i, j int) bool {
	if h[i].evt.Time != h[j].evt.Time {
		return h[i].evt.Time < h[j].evt.Time
	}

	return h[i].seq < h[j].seq
}

func (h scheduledEventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *scheduledEventHeap) Push(x any) {
	*h = append(*h, x.(queuedEvent))
}

func (h *scheduledEventHeap) Pop() any {
	old := *h
	n := len(old)
	evt := old[n-1]
	*h = old[:n-1]

	return evt
}
