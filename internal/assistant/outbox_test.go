package assistant

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOutbox_FIFO(t *testing.T) {
	var o Outbox[string]
	if _, ok := o.Drain(); ok {
		t.Fatal("Drain on empty outbox returned a message")
	}

	o.Append("a")
	o.Append("b")
	o.Append("c")
	if o.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", o.Len())
	}

	var got []string
	for {
		msg, ok := o.Drain()
		if !ok {
			break
		}
		got = append(got, msg)
		o.Done()
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Errorf("drain order (-want +got):\n%s", diff)
	}
	if o.Len() != 0 || o.Busy() {
		t.Errorf("Len() = %d Busy() = %v after draining", o.Len(), o.Busy())
	}
}

func TestOutbox_OneInFlight(t *testing.T) {
	var o Outbox[int]
	o.Append(1)
	o.Append(2)

	first, ok := o.Drain()
	if !ok || first != 1 {
		t.Fatalf("Drain() = %d, %v; want 1, true", first, ok)
	}
	if !o.Busy() {
		t.Error("expected busy after Drain")
	}
	if _, ok := o.Drain(); ok {
		t.Fatal("Drain released a second message while one is in flight")
	}

	// Appending while busy queues behind the in-flight message.
	o.Append(3)
	if o.Len() != 2 {
		t.Errorf("Len() = %d, want 2", o.Len())
	}

	o.Done()
	second, ok := o.Drain()
	if !ok || second != 2 {
		t.Fatalf("Drain() = %d, %v; want 2, true", second, ok)
	}
}

func TestOutbox_Concurrent(t *testing.T) {
	var o Outbox[int]
	const senders, each = 8, 50

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[int]int)
	var inFlight atomic.Int32
	var overlap atomic.Bool

	for s := range senders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range each {
				o.Append(s*each + i)
				for {
					msg, ok := o.Drain()
					if !ok {
						break
					}
					if inFlight.Add(1) > 1 {
						overlap.Store(true)
					}
					mu.Lock()
					seen[msg]++
					mu.Unlock()
					inFlight.Add(-1)
					o.Done()
				}
			}
		}()
	}
	wg.Wait()

	// A message appended after the last successful Drain may be left; the
	// final sweep picks it up.
	for {
		msg, ok := o.Drain()
		if !ok {
			break
		}
		seen[msg]++
		o.Done()
	}

	if len(seen) != senders*each {
		t.Fatalf("delivered %d distinct messages, want %d", len(seen), senders*each)
	}
	for msg, n := range seen {
		if n != 1 {
			t.Errorf("message %d delivered %d times", msg, n)
		}
	}
	if overlap.Load() {
		t.Error("two messages were in flight at once")
	}
}
