package viewstate

import (
	"context"
	"slices"
	"sync"

	"github.com/kigopro/kigo/internal/listing"
	"github.com/kigopro/kigo/internal/model"
)

// Source produces a page for a list request.
type Source[T any] interface {
	List(ctx context.Context, req model.ListRequest) (listing.Page[T], error)
}

// Listener is called after every successful dispatch.
type Listener[T any] func(State, listing.Page[T])

type subscriber[T any] struct {
	id int
	fn Listener[T]
}

// Store holds the state of one list view and the page it last fetched.
// Dispatches are serialized; listeners run outside the lock, in the
// order they subscribed.
type Store[T any] struct {
	source Source[T]
	env    Env

	mu        sync.Mutex
	state     State
	page      listing.Page[T]
	listeners []subscriber[T]
	nextID    int
}

// NewStore returns a store in the initial state. Call Dispatch (with no
// actions) to fetch the first page.
func NewStore[T any](source Source[T], env Env) *Store[T] {
	return &Store[T]{
		source: source,
		env:    env,
		state:  Initial(env.DefaultSort, env.PageSize),
	}
}

// State returns the current state.
func (s *Store[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Page returns the last fetched page.
func (s *Store[T]) Page() listing.Page[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// Dispatch reduces the actions in order, fetches the resulting page and
// commits both. If the fetch fails the state is left unchanged.
func (s *Store[T]) Dispatch(ctx context.Context, actions ...Action) (listing.Page[T], error) {
	s.mu.Lock()
	next := s.state
	for _, a := range actions {
		next = Reduce(next, a, s.env)
	}
	page, err := s.source.List(ctx, next.Request())
	if err == nil && next.Pagination.CurrentPage > max(1, page.TotalPages) {
		// The result shrank under the cursor; move to the last page.
		next = Reduce(next, clampPage{TotalPages: page.TotalPages}, s.env)
		page, err = s.source.List(ctx, next.Request())
	}
	if err != nil {
		s.mu.Unlock()
		return listing.Page[T]{}, err
	}
	next.Pagination.CurrentPage = page.CurrentPage
	s.state = next
	s.page = page
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l.fn(next, page)
	}
	return page, nil
}

// Subscribe registers l and returns a function that removes it.
func (s *Store[T]) Subscribe(l Listener[T]) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, subscriber[T]{id: id, fn: l})
	return func() {
		s.mu.Lock()
		s.listeners = slices.DeleteFunc(s.listeners, func(sub subscriber[T]) bool { return sub.id == id })
		s.mu.Unlock()
	}
}
