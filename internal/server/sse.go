package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/kigopro/kigo/internal/events"
	"github.com/kigopro/kigo/internal/model"
)

const (
	// sseClientBuffer is how many events a slow client may fall behind
	// before new ones are dropped for it.
	sseClientBuffer = 64

	// sseKeepaliveInterval is how often keepalive comments are sent to
	// prevent connection timeouts.
	sseKeepaliveInterval = 15 * time.Second
)

// sseHub fans out recorded events to connected SSE clients. Replay after a
// reconnect reads the event log from the store, so the hub keeps no
// history of its own.
type sseHub struct {
	mu      sync.RWMutex
	clients map[*sseClient]struct{}
}

// sseClient represents a single connected SSE consumer.
type sseClient struct {
	topics []string // NATS-style patterns; empty matches every topic
	ch     chan *model.Event
}

func newSSEHub() *sseHub {
	return &sseHub{clients: make(map[*sseClient]struct{})}
}

// broadcast sends e to every client whose topics match. A client whose
// buffer is full misses the event.
func (h *sseHub) broadcast(e *model.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.wants(e.Topic) {
			continue
		}
		select {
		case c.ch <- e:
		default:
			slog.Warn("sse client too slow, dropping event", "topic", e.Topic, "id", e.ID)
		}
	}
}

func (h *sseHub) subscribe(topics []string) *sseClient {
	c := &sseClient{topics: topics, ch: make(chan *model.Event, sseClientBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *sseHub) unsubscribe(c *sseClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

func (h *sseHub) len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (c *sseClient) wants(topic string) bool {
	if len(c.topics) == 0 {
		return true
	}
	for _, p := range c.topics {
		if events.Match(p, topic) {
			return true
		}
	}
	return false
}

// handleEventStream handles GET /v1/events/stream?topics=a,b. A client
// reconnecting with Last-Event-ID first receives the recorded events it
// missed.
func (s *KigoServer) handleEventStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	// Subscribe before replaying so nothing recorded in between is lost;
	// events already replayed are skipped by ID.
	client := s.sseHub.subscribe(splitList(r.URL.Query().Get("topics")))
	defer s.sseHub.unsubscribe(client)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	var seen int64
	if v := r.Header.Get("Last-Event-ID"); v != "" {
		if lastID, err := strconv.ParseInt(v, 10, 64); err == nil {
			seen = lastID
			missed, err := s.store.ListEvents(r.Context(), "")
			if err != nil {
				slog.Warn("sse replay failed", "last_event_id", lastID, "error", err)
			}
			for _, e := range missed {
				if e.ID > lastID && client.wants(e.Topic) {
					writeSSEEvent(w, e)
					seen = e.ID
				}
			}
			flusher.Flush()
		}
	}

	ctx := r.Context()
	keepalive := time.NewTicker(sseKeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case e := <-client.ch:
			if e.ID != 0 && e.ID <= seen {
				continue
			}
			writeSSEEvent(w, e)
			flusher.Flush()
		case <-keepalive.C:
			fmt.Fprint(w, ":keepalive\n\n")
			flusher.Flush()
		}
	}
}

// writeSSEEvent writes one event. Events that were not recorded have no
// ID and cannot be resumed from.
func writeSSEEvent(w http.ResponseWriter, e *model.Event) {
	if e.ID != 0 {
		fmt.Fprintf(w, "id:%d\n", e.ID)
	}
	fmt.Fprintf(w, "event:%s\n", e.Topic)
	fmt.Fprintf(w, "data:%s\n\n", e.Payload)
}
