package server

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kigopro/kigo/internal/events"
	"github.com/kigopro/kigo/internal/model"
)

func TestSSEHub_TopicFilter(t *testing.T) {
	hub := newSSEHub()
	c := hub.subscribe([]string{"kigo.token.*"})
	defer hub.unsubscribe(c)

	hub.broadcast(&model.Event{ID: 1, Topic: events.TopicCampaignCreated})
	hub.broadcast(&model.Event{ID: 2, Topic: events.TopicTokenDisputed})

	select {
	case e := <-c.ch:
		if e.ID != 2 {
			t.Errorf("got event %d, want 2", e.ID)
		}
	default:
		t.Fatal("expected the token event")
	}
	select {
	case e := <-c.ch:
		t.Errorf("unexpected event %d on %s", e.ID, e.Topic)
	default:
	}
}

func TestSSEHub_SlowClientDoesNotBlock(t *testing.T) {
	hub := newSSEHub()
	c := hub.subscribe(nil)
	defer hub.unsubscribe(c)

	done := make(chan struct{})
	go func() {
		for i := range sseClientBuffer + 10 {
			hub.broadcast(&model.Event{ID: int64(i + 1), Topic: events.TopicAdUpdated})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("broadcast blocked on a full client")
	}
	if len(c.ch) != sseClientBuffer {
		t.Errorf("buffered %d events, want %d", len(c.ch), sseClientBuffer)
	}
}

func TestSSEHub_Unsubscribe(t *testing.T) {
	hub := newSSEHub()
	c := hub.subscribe(nil)
	if hub.len() != 1 {
		t.Fatalf("len = %d, want 1", hub.len())
	}
	hub.unsubscribe(c)
	if hub.len() != 0 {
		t.Fatalf("len = %d, want 0", hub.len())
	}
}

// sseEvent is one parsed server-sent event.
type sseEvent struct {
	ID    string
	Event string
	Data  string
}

// startSSEClient connects to the stream and parses events onto a channel
// until ctx is canceled.
func startSSEClient(t *testing.T, ctx context.Context, url, lastEventID string) <-chan sseEvent {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if lastEventID != "" {
		req.Header.Set("Last-Event-ID", lastEventID)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stream status = %d", resp.StatusCode)
	}

	out := make(chan sseEvent, 16)
	go func() {
		defer resp.Body.Close()
		defer close(out)
		scanner := bufio.NewScanner(resp.Body)
		var cur sseEvent
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case line == "":
				if cur.Event != "" {
					out <- cur
				}
				cur = sseEvent{}
			case strings.HasPrefix(line, "id:"):
				cur.ID = strings.TrimPrefix(line, "id:")
			case strings.HasPrefix(line, "event:"):
				cur.Event = strings.TrimPrefix(line, "event:")
			case strings.HasPrefix(line, "data:"):
				cur.Data = strings.TrimPrefix(line, "data:")
			}
		}
	}()
	return out
}

func waitForEvent(t *testing.T, ch <-chan sseEvent) sseEvent {
	t.Helper()
	select {
	case e, ok := <-ch:
		if !ok {
			t.Fatal("stream closed")
		}
		return e
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return sseEvent{}
}

// waitForClients polls until the hub has n subscribers.
func waitForClients(t *testing.T, s *KigoServer, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for s.sseHub.len() != n {
		if time.Now().After(deadline) {
			t.Fatalf("hub has %d clients, want %d", s.sseHub.len(), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestEventStream_LiveAndReplay(t *testing.T) {
	s, _, _ := newTestServer(t)
	h := s.NewHTTPHandler("")
	ts := httptest.NewServer(h)
	defer ts.Close()
	streamURL := ts.URL + "/v1/events/stream?topics=kigo.token.*"

	ctx, cancel := context.WithCancel(context.Background())
	live := startSSEClient(t, ctx, streamURL, "")
	waitForClients(t, s, 1)

	// An ad update does not match the client's topics.
	requireStatus(t, doJSON(t, h, "PATCH", "/v1/ads/ad-002", map[string]any{"name": "Weekend Bundle"}), http.StatusOK)
	requireStatus(t, doJSON(t, h, "POST", "/v1/tokens/tok003/dispute", map[string]any{"reason": "double charged"}), http.StatusOK)

	e := waitForEvent(t, live)
	if e.ID != "2" || e.Event != events.TopicTokenDisputed || !strings.Contains(e.Data, `"tok003"`) {
		t.Errorf("live event = %+v", e)
	}
	cancel()
	waitForClients(t, s, 0)

	// Missed while disconnected.
	requireStatus(t, doJSON(t, h, "POST", "/v1/tokens/tok004/reissue", map[string]any{"reason": "lost"}), http.StatusOK)

	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel2()
	replay := startSSEClient(t, ctx2, streamURL, "2")
	e = waitForEvent(t, replay)
	if e.ID != "3" || e.Event != events.TopicTokenReissued {
		t.Errorf("replayed event = %+v", e)
	}

	// Live delivery continues after the replay without repeats.
	waitForClients(t, s, 1)
	requireStatus(t, doJSON(t, h, "POST", "/v1/tokens/tok001/dispute", map[string]any{"reason": "x"}), http.StatusOK)
	e = waitForEvent(t, replay)
	if e.ID != "4" || e.Event != events.TopicTokenDisputed {
		t.Errorf("event after replay = %+v", e)
	}
}
