package assistant

import "sync"

// Outbox holds messages sent while the assistant is busy. Messages leave
// one at a time, in the order they were appended, and only when nothing
// is in flight.
type Outbox[T any] struct {
	mu    sync.Mutex
	queue []T
	busy  bool
}

// Append queues msg.
func (o *Outbox[T]) Append(msg T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.queue = append(o.queue, msg)
}

// Drain releases the oldest queued message and marks the outbox busy. It
// returns false while a message is in flight or when nothing is queued.
func (o *Outbox[T]) Drain() (T, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var zero T
	if o.busy || len(o.queue) == 0 {
		return zero, false
	}
	msg := o.queue[0]
	o.queue[0] = zero
	o.queue = o.queue[1:]
	o.busy = true
	return msg, true
}

// Done marks the in-flight message finished.
func (o *Outbox[T]) Done() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.busy = false
}

// Len returns the number of queued messages, not counting one in flight.
func (o *Outbox[T]) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}

// Busy reports whether a message is in flight.
func (o *Outbox[T]) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy
}
