package events

import (
	"context"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"

	"github.com/kigopro/kigo/internal/model"
)

// startTestNATS starts an embedded NATS server and returns its client URL.
func startTestNATS(t *testing.T) string {
	t.Helper()
	opts := &natsserver.Options{Host: "127.0.0.1", Port: -1}
	srv, err := natsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("starting embedded NATS: %v", err)
	}
	srv.Start()
	t.Cleanup(srv.Shutdown)
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS not ready")
	}
	return srv.ClientURL()
}

func newPair(t *testing.T) (*NATSPublisher, *NATSSubscriber) {
	t.Helper()
	url := startTestNATS(t)
	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	t.Cleanup(func() { pub.Close() })
	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	t.Cleanup(func() { sub.Close() })
	return pub, sub
}

func TestNATSSubscriber_ImplementsSubscriber(t *testing.T) {
	var _ Subscriber = (*NATSSubscriber)(nil)
}

func TestNATSSubscriber_ReceivesTopicAndPayload(t *testing.T) {
	pub, sub := newPair(t)

	ch, cancel, err := sub.Subscribe(TopicAll)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	c := &model.Campaign{ID: "cmp-1", Name: "Spring"}
	if err := pub.Publish(context.Background(), TopicCampaignCreated, CampaignChanged{Campaign: c}); err != nil {
		t.Fatalf("publishing: %v", err)
	}
	pub.Flush()

	select {
	case msg := <-ch:
		if msg.Topic != TopicCampaignCreated {
			t.Errorf("Topic = %q", msg.Topic)
		}
		if len(msg.Data) == 0 {
			t.Error("empty payload")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestNATSSubscriber_WildcardFiltersTopics(t *testing.T) {
	pub, sub := newPair(t)

	ch, cancel, err := sub.Subscribe("kigo.token.*")
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	ctx := context.Background()
	for _, topic := range []string{TopicCampaignCreated, TopicTokenCreated, TopicAdUpdated, TopicTokenReissued} {
		if err := pub.Publish(ctx, topic, struct{}{}); err != nil {
			t.Fatalf("publishing to %s: %v", topic, err)
		}
	}
	pub.Flush()

	var got []string
	for range 2 {
		select {
		case msg := <-ch:
			got = append(got, msg.Topic)
		case <-time.After(time.Second):
			t.Fatalf("timed out after %v", got)
		}
	}
	if got[0] != TopicTokenCreated || got[1] != TopicTokenReissued {
		t.Errorf("got %v", got)
	}
	select {
	case msg := <-ch:
		t.Errorf("unexpected message on %s", msg.Topic)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNATSSubscriber_Cancel(t *testing.T) {
	_, sub := newPair(t)

	ch, cancel, err := sub.Subscribe(TopicAll)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	cancel()
	cancel() // idempotent

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed after cancel")
	}
}

func TestNATSSubscriber_CancelDuringMessages(t *testing.T) {
	pub, sub := newPair(t)

	ch, cancel, err := sub.Subscribe(TopicAll)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 100 {
			_ = pub.Publish(context.Background(), TopicAdUpdated, struct{}{})
		}
		pub.Flush()
	}()

	cancel()
	<-done

	for range ch {
		// drain anything delivered before cancel
	}
}

func TestNATSSubscriber_Connected(t *testing.T) {
	_, sub := newPair(t)
	if !sub.Connected() {
		t.Fatal("expected subscriber to be connected")
	}
}
