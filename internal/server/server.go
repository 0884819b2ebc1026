// Package server exposes the store over HTTP and gRPC, records and
// publishes domain events, and hosts the assistant sessions.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/kigopro/kigo/internal/assistant"
	"github.com/kigopro/kigo/internal/events"
	"github.com/kigopro/kigo/internal/listing"
	"github.com/kigopro/kigo/internal/model"
	"github.com/kigopro/kigo/internal/store"
)

// Options tune a KigoServer. Zero values take the defaults.
type Options struct {
	DefaultPageSize int              // default: model.DefaultPageSize
	MaxPageSize     int              // default: 100
	Now             func() time.Time // default: time.Now
}

// KigoServer holds the transport-agnostic operations behind the HTTP and
// gRPC APIs.
type KigoServer struct {
	store     store.Store
	publisher events.Publisher
	sseHub    *sseHub
	opts      Options

	// Assistant holds the chat campaign builder sessions. Completed
	// sessions create their campaign through this server.
	Assistant *assistant.Registry
}

// NewKigoServer returns a server backed by the given store and publisher.
func NewKigoServer(s store.Store, p events.Publisher, opts Options) *KigoServer {
	if opts.DefaultPageSize < 1 {
		opts.DefaultPageSize = model.DefaultPageSize
	}
	if opts.MaxPageSize < 1 {
		opts.MaxPageSize = 100
	}
	opts.DefaultPageSize = min(opts.DefaultPageSize, opts.MaxPageSize)
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if p == nil {
		p = events.NoopPublisher{}
	}
	srv := &KigoServer{
		store:     s,
		publisher: p,
		sseHub:    newSSEHub(),
		opts:      opts,
	}
	srv.Assistant = assistant.NewRegistry(srv.completeSession, opts.Now)
	return srv
}

func (s *KigoServer) today() model.Date { return model.DateOf(s.opts.Now()) }

// recordAndPublish persists an event, publishes it to NATS and fans it
// out to SSE clients. All three are best-effort; failures are logged but
// do not fail the caller.
func (s *KigoServer) recordAndPublish(ctx context.Context, topic, entityID, actor string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Warn("failed to marshal event", "topic", topic, "entity_id", entityID, "error", err)
		return
	}
	e := &model.Event{
		Topic:    topic,
		EntityID: entityID,
		Actor:    actor,
		Payload:  payload,
	}
	if err := s.store.RecordEvent(ctx, e); err != nil {
		slog.Warn("failed to record event", "topic", topic, "entity_id", entityID, "error", err)
	}
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "entity_id", entityID, "error", err)
	}
	s.sseHub.broadcast(e)
}

// inputError indicates invalid user input.
// Transport layers map this to 400 / InvalidArgument.
type inputError string

func (e inputError) Error() string { return string(e) }

// isInputError reports whether err is the caller's fault: a bad request
// field, a failed validation or a malformed filter expression.
func isInputError(err error) bool {
	var ie inputError
	var ve *model.ValidationError
	return errors.As(err, &ie) || errors.As(err, &ve) || errors.Is(err, listing.ErrInvalidFilter)
}
