package assistant

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kigopro/kigo/internal/model"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// CompleteFunc persists the campaign drafted by a session. It runs when
// the review step is confirmed; an error keeps the session on review.
type CompleteFunc func(ctx context.Context, sessionID string, d Draft) (*model.Campaign, error)

// Snapshot is the externally visible view of a session.
type Snapshot struct {
	ID string `json:"id"`
	State
	Queued     int       `json:"queued"`
	CampaignID string    `json:"campaign_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// pending is a queued chat message and where its outcome goes.
type pending struct {
	text   string
	result chan error
}

type session struct {
	id      string
	created time.Time
	outbox  Outbox[pending]

	mu         sync.Mutex
	state      State
	lastActive time.Time
	campaignID string
}

// ReaperConfig configures the idle-session reaper.
type ReaperConfig struct {
	// IdleAfter is how long a session may go without events before it is
	// removed. Default: 30 minutes.
	IdleAfter time.Duration

	// SweepInterval is how often the reaper scans. Default: 1 minute.
	SweepInterval time.Duration

	// OnExpire is called outside the lock for each removed session.
	OnExpire func(id string)
}

// Registry holds the live assistant sessions.
type Registry struct {
	complete CompleteFunc
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session

	reaperStop chan struct{}
	reaperDone chan struct{}
}

// NewRegistry creates an empty registry. now defaults to time.Now.
func NewRegistry(complete CompleteFunc, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		complete: complete,
		now:      now,
		sessions: make(map[string]*session),
	}
}

// Create starts a session drafting campaigns for owner.
func (r *Registry) Create(owner Owner) Snapshot {
	now := r.now()
	s := &session{
		id:         uuid.NewString(),
		created:    now,
		state:      Initial(owner),
		lastActive: now,
	}
	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()
	slog.Debug("assistant: session created", "session", s.id, "partner", owner.PartnerID)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Get returns the current snapshot of a session.
func (r *Registry) Get(id string) (Snapshot, error) {
	s, err := r.session(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(), nil
}

// List returns every live session, most recently active first.
func (r *Registry) List() []Snapshot {
	r.mu.RLock()
	all := make([]*session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.mu.RUnlock()

	out := make([]Snapshot, 0, len(all))
	for _, s := range all {
		s.mu.Lock()
		out = append(out, s.snapshot())
		s.mu.Unlock()
	}
	slices.SortFunc(out, func(a, b Snapshot) int {
		return cmp.Or(b.UpdatedAt.Compare(a.UpdatedAt), cmp.Compare(a.ID, b.ID))
	})
	return out
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Remove drops a session.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *Registry) session(id string) (*session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Dispatch applies ev to a session. Messages go through the session's
// outbox: a message sent while another is being analyzed waits its turn.
func (r *Registry) Dispatch(ctx context.Context, id string, ev Event) (Snapshot, error) {
	s, err := r.session(id)
	if err != nil {
		return Snapshot{}, err
	}
	if ev.Kind == EventMessage {
		return r.send(ctx, s, ev.Text)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err = r.apply(ctx, s, ev)
	return s.snapshot(), err
}

// send queues text and then drains the outbox until it is empty or busy
// elsewhere. The caller waits for its own message's outcome.
func (r *Registry) send(ctx context.Context, s *session, text string) (Snapshot, error) {
	p := pending{text: text, result: make(chan error, 1)}
	s.outbox.Append(p)

	for {
		msg, ok := s.outbox.Drain()
		if !ok {
			break
		}
		msg.result <- r.analyze(ctx, s, msg.text)
		s.outbox.Done()
	}

	var err error
	select {
	case err = <-p.result:
	case <-ctx.Done():
		err = ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(), err
}

// analyze runs one message through analyzing to presenting-options.
func (r *Registry) analyze(ctx context.Context, s *session, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := r.apply(ctx, s, Event{Kind: EventMessage, Text: text}); err != nil {
		return err
	}
	slog.Debug("assistant: message analyzed", "session", s.id, "intent", s.state.Intent)
	return r.apply(ctx, s, Event{Kind: EventAnalysisDone})
}

// apply runs one transition with s.mu held. Reaching complete persists
// the draft first; if that fails the session stays where it was.
func (r *Registry) apply(ctx context.Context, s *session, ev Event) error {
	now := r.now()
	next, err := s.state.Apply(ev, model.DateOf(now))
	if err != nil {
		return err
	}
	if next.Phase == PhaseComplete && s.state.Phase != PhaseComplete && r.complete != nil {
		c, err := r.complete(ctx, s.id, next.Draft)
		if err != nil {
			return fmt.Errorf("complete session %s: %w", s.id, err)
		}
		s.campaignID = c.ID
		slog.Info("assistant: campaign created", "session", s.id, "campaign", c.ID)
	}
	if ev.Kind == EventReset {
		s.campaignID = ""
	}
	s.state = next
	s.lastActive = now
	return nil
}

func (s *session) snapshot() Snapshot {
	st := s.state
	st.Options = slices.Clone(st.Options)
	st.Fields = slices.Clone(st.Fields)
	return Snapshot{
		ID:         s.id,
		State:      st,
		Queued:     s.outbox.Len(),
		CampaignID: s.campaignID,
		CreatedAt:  s.created,
		UpdatedAt:  s.lastActive,
	}
}

// StartReaper launches a background goroutine that removes idle sessions.
// Call Stop to shut it down.
func (r *Registry) StartReaper(cfg ReaperConfig) {
	if cfg.IdleAfter <= 0 {
		cfg.IdleAfter = 30 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}

	r.reaperStop = make(chan struct{})
	r.reaperDone = make(chan struct{})

	go r.reapLoop(cfg)
	slog.Info("assistant: reaper started",
		"idle_after", cfg.IdleAfter,
		"sweep_interval", cfg.SweepInterval)
}

// Stop shuts down the reaper goroutine.
func (r *Registry) Stop() {
	if r.reaperStop != nil {
		close(r.reaperStop)
		<-r.reaperDone
		r.reaperStop = nil
		r.reaperDone = nil
	}
}

func (r *Registry) reapLoop(cfg ReaperConfig) {
	defer close(r.reaperDone)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.reaperStop:
			return
		case <-ticker.C:
			r.sweep(cfg)
		}
	}
}

// sweep removes sessions idle for longer than cfg.IdleAfter.
func (r *Registry) sweep(cfg ReaperConfig) []string {
	now := r.now()

	r.mu.Lock()
	var expired []string
	for id, s := range r.sessions {
		// Skip sessions mid-event rather than wait on them.
		if !s.mu.TryLock() {
			continue
		}
		idle := now.Sub(s.lastActive)
		s.mu.Unlock()
		if idle > cfg.IdleAfter {
			delete(r.sessions, id)
			expired = append(expired, id)
		}
	}
	r.mu.Unlock()

	for _, id := range expired {
		slog.Info("assistant: session expired", "session", id, "idle_after", cfg.IdleAfter)
		if cfg.OnExpire != nil {
			cfg.OnExpire(id)
		}
	}
	return expired
}
