package server

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kigopro/kigo/internal/assistant"
	"github.com/kigopro/kigo/internal/events"
	"github.com/kigopro/kigo/internal/listing"
	"github.com/kigopro/kigo/internal/model"
	"github.com/kigopro/kigo/internal/store"
)

// reissueValidDays is how long a reissued token stays valid.
const reissueValidDays = 14

// Lists

// presetsFor returns the preset registry of a collection, or nil for
// collections without presets.
func presetsFor(kind string) *listing.Presets {
	switch kind {
	case "tokens":
		return listing.TokenPresets
	case "ads":
		return listing.AdPresets
	case "ad-groups":
		return listing.AdGroupPresets
	case "campaigns":
		return listing.CampaignPresets
	}
	return nil
}

// withPreset expands the named preset and lays the explicit dimensions
// of over on top of it. An unknown preset expands to no filters.
func (s *KigoServer) withPreset(presets *listing.Presets, name string, over model.FilterState) model.FilterState {
	f := presets.Apply(model.FilterState{}, name, s.opts.Now())
	if len(over.Status) > 0 {
		f.Status = over.Status
	}
	if len(over.Types) > 0 {
		f.Types = over.Types
	}
	if !over.DateRange.Start.IsZero() {
		f.DateRange.Start = over.DateRange.Start
	}
	if !over.DateRange.End.IsZero() {
		f.DateRange.End = over.DateRange.End
	}
	if over.FieldText != "" {
		f.FieldText = over.FieldText
	}
	if over.MinValue != nil {
		f.MinValue = over.MinValue
	}
	return f
}

// normalize validates req and applies the page-size default and limit.
func (s *KigoServer) normalize(req *model.ListRequest) error {
	if err := model.ValidateListRequest(req); err != nil {
		return err
	}
	if req.Pagination.PageSize < 1 {
		req.Pagination.PageSize = s.opts.DefaultPageSize
	}
	req.Pagination.PageSize = min(req.Pagination.PageSize, s.opts.MaxPageSize)
	req.Pagination.CurrentPage = max(1, req.Pagination.CurrentPage)
	return nil
}

// list normalizes req and runs one of the store's list methods.
func list[T any](s *KigoServer, ctx context.Context, req model.ListRequest, fn func(context.Context, model.ListRequest) (listing.Page[T], error)) (listing.Page[T], error) {
	if err := s.normalize(&req); err != nil {
		return listing.Page[T]{}, err
	}
	return fn(ctx, req)
}

// Customers

func (s *KigoServer) createCustomer(ctx context.Context, c *model.Customer) error {
	c.CreatedAt = s.opts.Now().UTC()
	if err := model.ValidateCustomer(c); err != nil {
		return err
	}
	return s.store.CreateCustomer(ctx, c)
}

// Tokens

func (s *KigoServer) createToken(ctx context.Context, t *model.Token) error {
	if t.State == "" {
		t.State = model.TokenActive
	}
	if t.CustomerID != "" && t.ClaimDate.IsZero() {
		t.ClaimDate = s.today()
	}
	t.CreatedAt, t.UpdatedAt = s.opts.Now().UTC(), s.opts.Now().UTC()
	if err := model.ValidateToken(t); err != nil {
		return err
	}
	if err := s.store.CreateToken(ctx, t); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return inputError(fmt.Sprintf("unknown customer %s", t.CustomerID))
		}
		return err
	}
	s.recordAndPublish(ctx, events.TopicTokenCreated, t.ID, "", events.TokenCreated{Token: t})
	return nil
}

// supportInput is the body of a reissue or dispute request.
type supportInput struct {
	Reason     string `json:"reason"`
	Comments   string `json:"comments,omitempty"`
	NotHonored bool   `json:"not_honored,omitempty"`
	Actor      string `json:"actor,omitempty"`
}

func (in supportInput) note() string {
	reason, comments := strings.TrimSpace(in.Reason), strings.TrimSpace(in.Comments)
	if comments == "" {
		return reason
	}
	return reason + ": " + comments
}

func hasAction(t *model.Token, typ string) bool {
	return slices.ContainsFunc(t.SupportActions, func(a model.SupportAction) bool { return a.Type == typ })
}

// reissueToken expires a customer's token and issues an active copy with
// a fresh claim date and expiry. An original expiry later than today is
// pulled back to today; one already past is kept. Both writes happen in
// one transaction.
func (s *KigoServer) reissueToken(ctx context.Context, id string, in supportInput) (orig, repl *model.Token, err error) {
	if strings.TrimSpace(in.Reason) == "" {
		return nil, nil, inputError("reason is required")
	}
	now, today := s.opts.Now().UTC(), s.today()

	err = s.store.RunInTransaction(ctx, func(tx store.Store) error {
		t, err := tx.GetToken(ctx, id)
		if err != nil {
			return err
		}
		if t.CustomerID == "" {
			return inputError(fmt.Sprintf("token %s is a catalog entry and cannot be reissued", id))
		}
		if t.State == model.TokenExpired && hasAction(t, model.ActionReissued) {
			return inputError(fmt.Sprintf("token %s was already reissued", id))
		}

		r := &model.Token{
			CustomerID:       t.CustomerID,
			Name:             t.Name,
			Description:      t.Description,
			Type:             t.Type,
			State:            model.TokenActive,
			ClaimDate:        today,
			ExpirationDate:   today.AddDays(reissueValidDays),
			MerchantName:     t.MerchantName,
			MerchantLocation: t.MerchantLocation,
			Value:            t.Value,
			ExternalURL:      t.ExternalURL,
			Disputed:         t.Disputed,
			DisputeReason:    t.DisputeReason,
			NotHonored:       t.NotHonored,
			SupportActions: []model.SupportAction{{
				Type:  model.ActionReissued,
				Note:  "replaces " + t.ID + ": " + in.note(),
				Actor: in.Actor,
				At:    now,
			}},
		}
		if err := tx.CreateToken(ctx, r); err != nil {
			return fmt.Errorf("create replacement: %w", err)
		}

		t.State = model.TokenExpired
		if !t.ExpirationDate.Valid() || t.ExpirationDate.Compare(today) > 0 {
			t.ExpirationDate = today
		}
		t.SupportActions = append(t.SupportActions, model.SupportAction{
			Type:  model.ActionReissued,
			Note:  "replaced by " + r.ID + ": " + in.note(),
			Actor: in.Actor,
			At:    now,
		})
		if err := tx.UpdateToken(ctx, t); err != nil {
			return fmt.Errorf("expire original: %w", err)
		}
		orig, repl = t, r
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	s.recordAndPublish(ctx, events.TopicTokenReissued, orig.ID, in.Actor, events.TokenReissued{Original: orig, Replacement: repl})
	return orig, repl, nil
}

// disputeToken flags a token the store did not honor, or that did not work.
func (s *KigoServer) disputeToken(ctx context.Context, id string, in supportInput) (*model.Token, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return nil, inputError("reason is required")
	}
	var out *model.Token
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		t, err := tx.GetToken(ctx, id)
		if err != nil {
			return err
		}
		t.Disputed = true
		t.DisputeReason = strings.TrimSpace(in.Reason)
		t.NotHonored = t.NotHonored || in.NotHonored
		t.SupportActions = append(t.SupportActions, model.SupportAction{
			Type:  model.ActionDisputed,
			Note:  in.note(),
			Actor: in.Actor,
			At:    s.opts.Now().UTC(),
		})
		if err := tx.UpdateToken(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.recordAndPublish(ctx, events.TopicTokenDisputed, out.ID, in.Actor, events.TokenDisputed{Token: out})
	return out, nil
}

// Patches. A nil field is left unchanged; each applied field that differs
// is named in the returned change list.

func setValue[T comparable](changes *[]string, name string, dst *T, src *T) {
	if src != nil && *dst != *src {
		*dst = *src
		*changes = append(*changes, name)
	}
}

func setDate(changes *[]string, name string, dst *model.Date, src *model.Date) {
	if src != nil && !dst.Equal(*src) {
		*dst = *src
		*changes = append(*changes, name)
	}
}

func setDecimal(changes *[]string, name string, dst *decimal.Decimal, src *decimal.Decimal) {
	if src != nil && !dst.Equal(*src) {
		*dst = *src
		*changes = append(*changes, name)
	}
}

func setStrings(changes *[]string, name string, dst *[]string, src *[]string) {
	if src != nil && !slices.Equal(*dst, *src) {
		*dst = slices.Clone(*src)
		*changes = append(*changes, name)
	}
}

// Ads

type adPatch struct {
	Name      *string          `json:"name"`
	Status    *model.AdStatus  `json:"status"`
	Channels  *[]string        `json:"channels"`
	StartDate *model.Date      `json:"start_date"`
	EndDate   *model.Date      `json:"end_date"`
	Budget    *decimal.Decimal `json:"budget"`
}

func (p adPatch) apply(a *model.Ad) []string {
	var changes []string
	setValue(&changes, "name", &a.Name, p.Name)
	setValue(&changes, "status", &a.Status, p.Status)
	setStrings(&changes, "channels", &a.Channels, p.Channels)
	setDate(&changes, "start_date", &a.StartDate, p.StartDate)
	setDate(&changes, "end_date", &a.EndDate, p.EndDate)
	setDecimal(&changes, "budget", &a.Budget, p.Budget)
	return changes
}

func (s *KigoServer) updateAd(ctx context.Context, id string, p adPatch) (*model.Ad, error) {
	var out *model.Ad
	var changes []string
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		a, err := tx.GetAd(ctx, id)
		if err != nil {
			return err
		}
		if changes = p.apply(a); len(changes) == 0 {
			out = a
			return nil
		}
		if err := model.ValidateAd(a); err != nil {
			return err
		}
		if err := tx.UpdateAd(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		s.recordAndPublish(ctx, events.TopicAdUpdated, out.ID, "", events.AdUpdated{Ad: out, Changes: changes})
	}
	return out, nil
}

// Ad groups

// checkAds drops duplicate ad IDs and rejects unknown ones.
func checkAds(ctx context.Context, tx store.Store, ids []string) ([]string, error) {
	var out []string
	for _, id := range ids {
		if slices.Contains(out, id) {
			continue
		}
		if _, err := tx.GetAd(ctx, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, inputError("unknown ad " + id)
			}
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func (s *KigoServer) createAdGroup(ctx context.Context, g *model.AdGroup) error {
	if g.Status == "" {
		g.Status = model.AdGroupDraft
	}
	g.CreatedAt, g.LastModified = model.Date{}, model.Date{}
	if err := model.ValidateAdGroup(g); err != nil {
		return err
	}
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		ids, err := checkAds(ctx, tx, g.AdIDs)
		if err != nil {
			return err
		}
		g.AdIDs = ids
		return tx.CreateAdGroup(ctx, g)
	})
	if err != nil {
		return err
	}
	s.recordAndPublish(ctx, events.TopicAdGroupCreated, g.ID, "", events.AdGroupChanged{AdGroup: g})
	return nil
}

type adGroupPatch struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	Status      *model.AdGroupStatus `json:"status"`
	AdIDs       *[]string            `json:"ad_ids"`
}

func (s *KigoServer) updateAdGroup(ctx context.Context, id string, p adGroupPatch) (*model.AdGroup, error) {
	var out *model.AdGroup
	var changes []string
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		g, err := tx.GetAdGroup(ctx, id)
		if err != nil {
			return err
		}
		if p.AdIDs != nil {
			ids, err := checkAds(ctx, tx, *p.AdIDs)
			if err != nil {
				return err
			}
			p.AdIDs = &ids
		}
		setValue(&changes, "name", &g.Name, p.Name)
		setValue(&changes, "description", &g.Description, p.Description)
		setValue(&changes, "status", &g.Status, p.Status)
		setStrings(&changes, "ad_ids", &g.AdIDs, p.AdIDs)
		out = g
		if len(changes) == 0 {
			return nil
		}
		if err := model.ValidateAdGroup(g); err != nil {
			return err
		}
		return tx.UpdateAdGroup(ctx, g)
	})
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		s.recordAndPublish(ctx, events.TopicAdGroupUpdated, out.ID, "", events.AdGroupChanged{AdGroup: out, Changes: changes})
	}
	return out, nil
}

// Campaigns

func (s *KigoServer) createCampaign(ctx context.Context, c *model.Campaign) error {
	if c.Type == "" {
		c.Type = model.CampaignPromotional
	}
	c.ID, c.Status = "", ""
	c.CreatedAt, c.UpdatedAt = s.opts.Now().UTC(), s.opts.Now().UTC()
	if c.UpdatedBy == "" {
		c.UpdatedBy = c.CreatedBy
	}
	if err := model.ValidateCampaign(c); err != nil {
		return err
	}
	if err := s.store.CreateCampaign(ctx, c); err != nil {
		return err
	}
	s.recordAndPublish(ctx, events.TopicCampaignCreated, c.ID, c.CreatedBy, events.CampaignChanged{Campaign: c})
	return nil
}

type campaignPatch struct {
	Name           *string             `json:"name"`
	Description    *string             `json:"description"`
	Type           *model.CampaignType `json:"type"`
	StartDate      *model.Date         `json:"start_date"`
	EndDate        *model.Date         `json:"end_date"`
	Active         *bool               `json:"active"`
	AutoActivate   *bool               `json:"auto_activate"`
	AutoDeactivate *bool               `json:"auto_deactivate"`
	HasProducts    *bool               `json:"has_products"`
	Budget         *decimal.Decimal    `json:"budget"`
	UpdatedBy      string              `json:"updated_by"`
}

func (p campaignPatch) apply(c *model.Campaign) []string {
	var changes []string
	setValue(&changes, "name", &c.Name, p.Name)
	setValue(&changes, "description", &c.Description, p.Description)
	setValue(&changes, "type", &c.Type, p.Type)
	setDate(&changes, "start_date", &c.StartDate, p.StartDate)
	setDate(&changes, "end_date", &c.EndDate, p.EndDate)
	setValue(&changes, "active", &c.Active, p.Active)
	setValue(&changes, "auto_activate", &c.AutoActivate, p.AutoActivate)
	setValue(&changes, "auto_deactivate", &c.AutoDeactivate, p.AutoDeactivate)
	setValue(&changes, "has_products", &c.HasProducts, p.HasProducts)
	setDecimal(&changes, "budget", &c.Budget, p.Budget)
	return changes
}

func (s *KigoServer) updateCampaign(ctx context.Context, id string, p campaignPatch) (*model.Campaign, error) {
	var out *model.Campaign
	var changes []string
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		c, err := tx.GetCampaign(ctx, id)
		if err != nil {
			return err
		}
		out = c
		if changes = p.apply(c); len(changes) == 0 {
			return nil
		}
		if p.UpdatedBy != "" {
			c.UpdatedBy = p.UpdatedBy
		}
		if err := model.ValidateCampaign(c); err != nil {
			return err
		}
		return tx.UpdateCampaign(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		s.recordAndPublish(ctx, events.TopicCampaignUpdated, out.ID, p.UpdatedBy, events.CampaignChanged{Campaign: out, Changes: changes})
	}
	return out, nil
}

// completeSession creates the campaign a finished assistant session drafted.
func (s *KigoServer) completeSession(ctx context.Context, sessionID string, d assistant.Draft) (*model.Campaign, error) {
	c := d.Campaign()
	if err := s.createCampaign(ctx, c); err != nil {
		return nil, err
	}
	s.recordAndPublish(ctx, events.TopicAssistantCompleted, sessionID, d.Actor, events.AssistantCompleted{SessionID: sessionID, Campaign: c})
	return c, nil
}
