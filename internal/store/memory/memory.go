// Package memory implements store.Store over in-process maps. It backs the
// server when no database is configured and the tests of everything above
// the store.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/kigopro/kigo/internal/idgen"
	"github.com/kigopro/kigo/internal/listing"
	"github.com/kigopro/kigo/internal/model"
	"github.com/kigopro/kigo/internal/store"
)

// data is the full contents of a store. Stored records are never mutated
// in place; every write replaces the pointer, so clone can copy the maps
// shallowly.
type data struct {
	customers map[string]*model.Customer
	tokens    map[string]*model.Token
	ads       map[string]*model.Ad
	adGroups  map[string]*model.AdGroup
	campaigns map[string]*model.Campaign
	events    []*model.Event
	nextEvent int64
}

func newData() *data {
	return &data{
		customers: make(map[string]*model.Customer),
		tokens:    make(map[string]*model.Token),
		ads:       make(map[string]*model.Ad),
		adGroups:  make(map[string]*model.AdGroup),
		campaigns: make(map[string]*model.Campaign),
	}
}

func (d *data) clone() *data {
	return &data{
		customers: cloneMap(d.customers),
		tokens:    cloneMap(d.tokens),
		ads:       cloneMap(d.ads),
		adGroups:  cloneMap(d.adGroups),
		campaigns: cloneMap(d.campaigns),
		events:    slices.Clone(d.events),
		nextEvent: d.nextEvent,
	}
}

func cloneMap[T any](m map[string]*T) map[string]*T {
	out := make(map[string]*T, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store implements store.Store. All methods are safe for concurrent use and
// transactions are serialized.
type Store struct {
	mu  sync.Locker
	d   *data
	now func() time.Time
	tx  bool
}

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// New returns an empty store. now is the clock used for timestamps and
// campaign status; nil means time.Now.
func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{mu: &sync.Mutex{}, d: newData(), now: now}
}

// nopLocker stands in for the mutex inside a transaction, which already
// holds it.
type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}

// RunInTransaction runs fn against a private copy of the data and commits
// the copy only when fn succeeds.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	if s.tx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.d.clone()
	if err := fn(&Store{mu: nopLocker{}, d: work, now: s.now, tx: true}); err != nil {
		return err
	}
	s.d = work
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

func (s *Store) today() model.Date { return model.DateOf(s.now()) }

// Customers

func (s *Store) CreateCustomer(ctx context.Context, c *model.Customer) error {
	if err := idgen.Assign(&c.ID, idgen.Customer); err != nil {
		return err
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now().UTC()
	}
	return create(s, customersOf, c.ID, copyCustomer(c))
}

func (s *Store) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	return get(s, customersOf, id, copyCustomer)
}

func (s *Store) SearchCustomers(ctx context.Context, req model.ListRequest) (listing.Page[*model.Customer], error) {
	return list(s, customersOf, req, listing.CustomerSchema, copyCustomer, nil)
}

// Tokens

func (s *Store) CreateToken(ctx context.Context, t *model.Token) error {
	if err := idgen.Assign(&t.ID, idgen.Token); err != nil {
		return err
	}
	now := s.now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.CustomerID != "" {
		if _, ok := s.d.customers[t.CustomerID]; !ok {
			return fmt.Errorf("customer %s: %w", t.CustomerID, store.ErrNotFound)
		}
	}
	if _, ok := s.d.tokens[t.ID]; ok {
		return fmt.Errorf("token %s: %w", t.ID, store.ErrConflict)
	}
	s.d.tokens[t.ID] = copyToken(t)
	return nil
}

func (s *Store) GetToken(ctx context.Context, id string) (*model.Token, error) {
	return get(s, tokensOf, id, copyToken)
}

func (s *Store) UpdateToken(ctx context.Context, t *model.Token) error {
	t.UpdatedAt = s.now().UTC()
	return update(s, tokensOf, t.ID, copyToken(t))
}

func (s *Store) ListTokens(ctx context.Context, customerID string, req model.ListRequest) (listing.Page[*model.Token], error) {
	s.mu.Lock()
	_, ok := s.d.customers[customerID]
	s.mu.Unlock()
	if !ok {
		return listing.Page[*model.Token]{}, fmt.Errorf("customer %s: %w", customerID, store.ErrNotFound)
	}
	return list(s, tokensOf, req, listing.TokenSchema, copyToken, func(t *model.Token) bool {
		return t.CustomerID == customerID
	})
}

func (s *Store) ListCatalog(ctx context.Context, req model.ListRequest) (listing.Page[*model.Token], error) {
	return list(s, tokensOf, req, listing.TokenSchema, copyToken, func(t *model.Token) bool {
		return t.CustomerID == ""
	})
}

// Ads

func (s *Store) CreateAd(ctx context.Context, a *model.Ad) error {
	if err := idgen.Assign(&a.ID, idgen.Ad); err != nil {
		return err
	}
	now := s.now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	return create(s, adsOf, a.ID, copyAd(a))
}

func (s *Store) GetAd(ctx context.Context, id string) (*model.Ad, error) {
	return get(s, adsOf, id, copyAd)
}

func (s *Store) UpdateAd(ctx context.Context, a *model.Ad) error {
	a.UpdatedAt = s.now().UTC()
	return update(s, adsOf, a.ID, copyAd(a))
}

func (s *Store) ListAds(ctx context.Context, req model.ListRequest) (listing.Page[*model.Ad], error) {
	return list(s, adsOf, req, listing.AdSchema, copyAd, nil)
}

// Ad groups

func (s *Store) CreateAdGroup(ctx context.Context, g *model.AdGroup) error {
	if err := idgen.Assign(&g.ID, idgen.AdGroup); err != nil {
		return err
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = s.today()
	}
	if g.LastModified.IsZero() {
		g.LastModified = g.CreatedAt
	}
	return create(s, adGroupsOf, g.ID, copyAdGroup(g))
}

func (s *Store) GetAdGroup(ctx context.Context, id string) (*model.AdGroup, error) {
	return get(s, adGroupsOf, id, copyAdGroup)
}

func (s *Store) UpdateAdGroup(ctx context.Context, g *model.AdGroup) error {
	g.LastModified = s.today()
	return update(s, adGroupsOf, g.ID, copyAdGroup(g))
}

func (s *Store) ListAdGroups(ctx context.Context, req model.ListRequest) (listing.Page[*model.AdGroup], error) {
	return list(s, adGroupsOf, req, listing.AdGroupSchema, copyAdGroup, nil)
}

// Campaigns

func (s *Store) CreateCampaign(ctx context.Context, c *model.Campaign) error {
	if err := idgen.Assign(&c.ID, idgen.Campaign); err != nil {
		return err
	}
	now := s.now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	c.RefreshStatus(s.today())
	return create(s, campaignsOf, c.ID, copyCampaign(c))
}

func (s *Store) GetCampaign(ctx context.Context, id string) (*model.Campaign, error) {
	return get(s, campaignsOf, id, s.campaignView)
}

func (s *Store) UpdateCampaign(ctx context.Context, c *model.Campaign) error {
	c.UpdatedAt = s.now().UTC()
	c.RefreshStatus(s.today())
	return update(s, campaignsOf, c.ID, copyCampaign(c))
}

func (s *Store) ListCampaigns(ctx context.Context, req model.ListRequest) (listing.Page[*model.Campaign], error) {
	return list(s, campaignsOf, req, listing.CampaignSchema, s.campaignView, nil)
}

// campaignView copies c with its status derived as of today.
func (s *Store) campaignView(c *model.Campaign) *model.Campaign {
	out := copyCampaign(c)
	out.RefreshStatus(s.today())
	return out
}

// Events

func (s *Store) RecordEvent(ctx context.Context, e *model.Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.nextEvent++
	e.ID = s.d.nextEvent
	s.d.events = append(s.d.events, copyEvent(e))
	return nil
}

// ListEvents returns the events recorded for entityID in order, or every
// event when entityID is empty.
func (s *Store) ListEvents(ctx context.Context, entityID string) ([]*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.Event{}
	for _, e := range s.d.events {
		if entityID == "" || e.EntityID == entityID {
			out = append(out, copyEvent(e))
		}
	}
	return out, nil
}

// Generic helpers. pick selects the map under s.mu, since a committing
// transaction replaces s.d.

func customersOf(d *data) map[string]*model.Customer { return d.customers }
func tokensOf(d *data) map[string]*model.Token       { return d.tokens }
func adsOf(d *data) map[string]*model.Ad             { return d.ads }
func adGroupsOf(d *data) map[string]*model.AdGroup   { return d.adGroups }
func campaignsOf(d *data) map[string]*model.Campaign { return d.campaigns }

func create[T any](s *Store, pick func(*data) map[string]*T, id string, v *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := pick(s.d)
	if _, ok := m[id]; ok {
		return fmt.Errorf("%s: %w", id, store.ErrConflict)
	}
	m[id] = v
	return nil
}

func get[T any](s *Store, pick func(*data) map[string]*T, id string, view func(*T) *T) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := pick(s.d)[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, store.ErrNotFound)
	}
	return view(v), nil
}

func update[T any](s *Store, pick func(*data) map[string]*T, id string, v *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := pick(s.d)
	if _, ok := m[id]; !ok {
		return fmt.Errorf("%s: %w", id, store.ErrNotFound)
	}
	m[id] = v
	return nil
}

// list snapshots the matching records in ID order and runs the pipeline
// over them outside the lock. The ID order makes ties in the sort stable
// across calls.
func list[T any](s *Store, pick func(*data) map[string]*T, req model.ListRequest, schema *listing.Schema[*T], view func(*T) *T, keep func(*T) bool) (listing.Page[*T], error) {
	s.mu.Lock()
	m := pick(s.d)
	ids := make([]string, 0, len(m))
	for id, v := range m {
		if keep == nil || keep(v) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	records := make([]*T, len(ids))
	for i, id := range ids {
		records[i] = view(m[id])
	}
	s.mu.Unlock()
	return listing.Run(records, req, schema)
}

func copyCustomer(c *model.Customer) *model.Customer {
	out := *c
	return &out
}

func copyToken(t *model.Token) *model.Token {
	out := *t
	out.SupportActions = slices.Clone(t.SupportActions)
	return &out
}

func copyAd(a *model.Ad) *model.Ad {
	out := *a
	out.Channels = slices.Clone(a.Channels)
	return &out
}

func copyAdGroup(g *model.AdGroup) *model.AdGroup {
	out := *g
	out.AdIDs = slices.Clone(g.AdIDs)
	return &out
}

func copyCampaign(c *model.Campaign) *model.Campaign {
	out := *c
	return &out
}

func copyEvent(e *model.Event) *model.Event {
	out := *e
	out.Payload = bytes.Clone(e.Payload)
	return &out
}
