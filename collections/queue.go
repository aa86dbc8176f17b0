package collections

import "context"

// BoundedQueue is a fixed-capacity FIFO used for the transport reactor's
// command queue (~200 slots) and each websocket client's outbound snapshot
// queue in httpapi.
//
// The teacher's shared/data_structures.SafeQueue builds the same contract
// out of a hand-rolled doubly linked list with a goroutine spawned per
// lock acquisition; that's the wrong tool once Go has buffered channels,
// which give the identical bounded-FIFO-with-non-blocking-try-send contract
// for free and without the teacher implementation's lock-ordering hazards.
// BoundedQueue keeps the teacher's queue-per-consumer shape (see
// http_server/http_events/eventClient.go's msgQueue) but backs it with a
// channel.
type BoundedQueue[T any] struct {
	ch chan T
}

// NewBoundedQueue constructs a queue with room for capacity items.
func NewBoundedQueue[T any](capacity int) *BoundedQueue[T] {
	return &BoundedQueue[T]{ch: make(chan T, capacity)}
}

// TryEnqueue attempts a non-blocking send. It returns false if the queue is
// at capacity; the caller is expected to report this as a "channel full"
// condition rather than block the producer.
func (q *BoundedQueue[T]) TryEnqueue(value T) bool {
	select {
	case q.ch <- value:
		return true
	default:
		return false
	}
}

// Dequeue blocks until a value is available or ctx is done.
func (q *BoundedQueue[T]) Dequeue(ctx context.Context) (T, bool) {
	var zero T
	select {
	case v, ok := <-q.ch:
		if !ok {
			return zero, false
		}
		return v, true
	case <-ctx.Done():
		return zero, false
	}
}

// TryDequeue returns immediately, reporting false if nothing is queued.
func (q *BoundedQueue[T]) TryDequeue() (T, bool) {
	select {
	case v, ok := <-q.ch:
		return v, ok
	default:
		var zero T
		return zero, false
	}
}

// Len reports the number of items currently queued.
func (q *BoundedQueue[T]) Len() int {
	return len(q.ch)
}

// Close closes the underlying channel; further TryEnqueue calls panic, so
// callers must stop producing before calling Close.
func (q *BoundedQueue[T]) Close() {
	close(q.ch)
}
