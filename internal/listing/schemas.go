package listing

import (
	"github.com/shopspring/decimal"

	"github.com/kigopro/kigo/internal/model"
)

// HighValueThreshold is the minimum dollar value of the high-value preset.
var HighValueThreshold = decimal.NewFromInt(10)

// Preset windows, in days.
const (
	ExpiringSoonDays = 7
	RecentlyUsedDays = 30
)

// TokenPresets are the shortcuts offered on token lists.
var TokenPresets = NewPresets(
	NewPreset("active", "Active tokens", "Tokens that can still be redeemed",
		func(model.Date) model.FilterState {
			return model.FilterState{Status: []string{string(model.TokenActive)}}
		}),
	NewPreset("expiring-soon", "Expiring soon", "Active tokens expiring within 7 days",
		func(today model.Date) model.FilterState {
			return model.FilterState{
				Status:    []string{string(model.TokenActive)},
				DateRange: model.DateRange{End: today.AddDays(ExpiringSoonDays)},
			}
		}),
	NewPreset("recently-used", "Recently used", "Tokens used in the last 30 days",
		func(today model.Date) model.FilterState {
			return model.FilterState{
				Status:    []string{string(model.TokenUsed)},
				DateRange: model.DateRange{Start: today.AddDays(-RecentlyUsedDays)},
			}
		}),
	NewPreset("high-value", "High value", "Active dollar-value tokens worth $10 or more",
		func(model.Date) model.FilterState {
			v := HighValueThreshold
			return model.FilterState{Status: []string{string(model.TokenActive)}, MinValue: &v}
		}),
)

// TokenSchema reads tokens. The date range start is compared against the
// token's activity date and the end against its expiration date.
var TokenSchema = &Schema[*model.Token]{
	Name: "tokens",
	Search: []Field[*model.Token]{
		Text("name", func(t *model.Token) string { return t.Name }),
		Text("description", func(t *model.Token) string { return t.Description }),
		Text("value", func(t *model.Token) string { return t.Value }),
		Text("merchant_name", func(t *model.Token) string { return t.MerchantName }),
		Text("merchant_location", func(t *model.Token) string { return t.MerchantLocation }),
	},
	Status:     func(t *model.Token) string { return string(t.State) },
	Type:       func(t *model.Token) string { return string(t.Type) },
	RangeStart: (*model.Token).ActivityDate,
	RangeEnd:   func(t *model.Token) model.Date { return t.ExpirationDate },
	FieldText:  func(t *model.Token) string { return t.MerchantName },
	Value:      (*model.Token).MonetaryValue,
	Sorts: map[string]Compare[*model.Token]{
		"name":            ByFold(func(t *model.Token) string { return t.Name }),
		"type":            ByString(func(t *model.Token) string { return string(t.Type) }),
		"state":           ByString(func(t *model.Token) string { return string(t.State) }),
		"value":           ByDecimal((*model.Token).MonetaryValue),
		"merchant_name":   ByFold(func(t *model.Token) string { return t.MerchantName }),
		"claim_date":      ByDate(func(t *model.Token) model.Date { return t.ClaimDate }),
		"expiration_date": ByDate(func(t *model.Token) model.Date { return t.ExpirationDate }),
	},
	DefaultSort: model.SortSpec{Field: "claim_date", Direction: model.Desc},
	Idents: map[string]Ident[*model.Token]{
		"customer_id":       StringIdent(func(t *model.Token) string { return t.CustomerID }),
		"name":              StringIdent(func(t *model.Token) string { return t.Name }),
		"type":              StringIdent(func(t *model.Token) string { return string(t.Type) }),
		"state":             StringIdent(func(t *model.Token) string { return string(t.State) }),
		"merchant_name":     StringIdent(func(t *model.Token) string { return t.MerchantName }),
		"merchant_location": StringIdent(func(t *model.Token) string { return t.MerchantLocation }),
		"value":             StringIdent(func(t *model.Token) string { return t.Value }),
		"claim_date":        DateIdent(func(t *model.Token) model.Date { return t.ClaimDate }),
		"use_date":          DateIdent(func(t *model.Token) model.Date { return t.UseDate }),
		"share_date":        DateIdent(func(t *model.Token) model.Date { return t.ShareDate }),
		"expiration_date":   DateIdent(func(t *model.Token) model.Date { return t.ExpirationDate }),
		"disputed":          BoolIdent(func(t *model.Token) bool { return t.Disputed }),
		"not_honored":       BoolIdent(func(t *model.Token) bool { return t.NotHonored }),
		// Percent, FREE and BOGO tokens read as 0 here, so dollar_value < 5
		// includes them. The MinValue filter excludes them instead.
		"dollar_value": DoubleIdent(func(t *model.Token) float64 {
			v, _ := t.MonetaryValue()
			return v.InexactFloat64()
		}),
	},
	Presets: TokenPresets,
}

// AdPresets are the shortcuts offered on ad lists.
var AdPresets = NewPresets(
	NewPreset("live", "Live", "Active and published ads",
		func(model.Date) model.FilterState {
			return model.FilterState{Status: []string{string(model.AdActive), string(model.AdPublished)}}
		}),
	NewPreset("drafts", "Drafts", "Ads not yet published",
		func(model.Date) model.FilterState {
			return model.FilterState{Status: []string{string(model.AdDraft)}}
		}),
	NewPreset("ending-soon", "Ending soon", "Live ads ending within 7 days",
		func(today model.Date) model.FilterState {
			return model.FilterState{
				Status:    []string{string(model.AdActive), string(model.AdPublished)},
				DateRange: model.DateRange{End: today.AddDays(ExpiringSoonDays)},
			}
		}),
)

// AdSchema reads ads. The type dimension is the offer type and the field
// text filter matches the merchant name.
var AdSchema = &Schema[*model.Ad]{
	Name: "ads",
	Search: []Field[*model.Ad]{
		Text("name", func(a *model.Ad) string { return a.Name }),
		Text("merchant_name", func(a *model.Ad) string { return a.MerchantName }),
		Text("id", func(a *model.Ad) string { return a.ID }),
		Text("offer_id", func(a *model.Ad) string { return a.OfferID }),
		List("channels", func(a *model.Ad) []string { return a.Channels }),
	},
	Status:     func(a *model.Ad) string { return string(a.Status) },
	Type:       func(a *model.Ad) string { return string(a.OfferType) },
	RangeStart: func(a *model.Ad) model.Date { return a.StartDate },
	RangeEnd:   func(a *model.Ad) model.Date { return a.EndDate },
	FieldText:  func(a *model.Ad) string { return a.MerchantName },
	Value:      func(a *model.Ad) (decimal.Decimal, bool) { return a.Budget, true },
	Sorts: map[string]Compare[*model.Ad]{
		"name":          ByFold(func(a *model.Ad) string { return a.Name }),
		"status":        ByString(func(a *model.Ad) string { return string(a.Status) }),
		"merchant_name": ByFold(func(a *model.Ad) string { return a.MerchantName }),
		"offer_type":    ByString(func(a *model.Ad) string { return string(a.OfferType) }),
		"start_date":    ByDate(func(a *model.Ad) model.Date { return a.StartDate }),
		"end_date":      ByDate(func(a *model.Ad) model.Date { return a.EndDate }),
		"budget":        ByDecimal(func(a *model.Ad) (decimal.Decimal, bool) { return a.Budget, true }),
	},
	DefaultSort: model.SortSpec{Field: "start_date", Direction: model.Desc},
	Idents: map[string]Ident[*model.Ad]{
		"name":          StringIdent(func(a *model.Ad) string { return a.Name }),
		"status":        StringIdent(func(a *model.Ad) string { return string(a.Status) }),
		"merchant_id":   StringIdent(func(a *model.Ad) string { return a.MerchantID }),
		"merchant_name": StringIdent(func(a *model.Ad) string { return a.MerchantName }),
		"offer_type":    StringIdent(func(a *model.Ad) string { return string(a.OfferType) }),
		"start_date":    DateIdent(func(a *model.Ad) model.Date { return a.StartDate }),
		"end_date":      DateIdent(func(a *model.Ad) model.Date { return a.EndDate }),
		"budget":        DoubleIdent(func(a *model.Ad) float64 { return a.Budget.InexactFloat64() }),
	},
	Presets: AdPresets,
}

// AdGroupPresets are the shortcuts offered on ad group lists.
var AdGroupPresets = NewPresets(
	NewPreset("active", "Active", "Active ad groups",
		func(model.Date) model.FilterState {
			return model.FilterState{Status: []string{string(model.AdGroupActive)}}
		}),
	NewPreset("recent", "Recently created", "Ad groups created in the last 30 days",
		func(today model.Date) model.FilterState {
			return model.FilterState{DateRange: model.DateRange{Start: today.AddDays(-RecentlyUsedDays)}}
		}),
)

// AdGroupSchema reads ad groups. Both date bounds apply to the creation date.
var AdGroupSchema = &Schema[*model.AdGroup]{
	Name: "ad-groups",
	Search: []Field[*model.AdGroup]{
		Text("name", func(g *model.AdGroup) string { return g.Name }),
		Text("description", func(g *model.AdGroup) string { return g.Description }),
	},
	Status:     func(g *model.AdGroup) string { return string(g.Status) },
	RangeStart: func(g *model.AdGroup) model.Date { return g.CreatedAt },
	RangeEnd:   func(g *model.AdGroup) model.Date { return g.CreatedAt },
	Sorts: map[string]Compare[*model.AdGroup]{
		"name":          ByFold(func(g *model.AdGroup) string { return g.Name }),
		"status":        ByString(func(g *model.AdGroup) string { return string(g.Status) }),
		"created_at":    ByDate(func(g *model.AdGroup) model.Date { return g.CreatedAt }),
		"last_modified": ByDate(func(g *model.AdGroup) model.Date { return g.LastModified }),
		"ads":           ByNumber(func(g *model.AdGroup) int { return len(g.AdIDs) }),
	},
	DefaultSort: model.SortSpec{Field: "created_at", Direction: model.Desc},
	Idents: map[string]Ident[*model.AdGroup]{
		"name":          StringIdent(func(g *model.AdGroup) string { return g.Name }),
		"status":        StringIdent(func(g *model.AdGroup) string { return string(g.Status) }),
		"created_at":    DateIdent(func(g *model.AdGroup) model.Date { return g.CreatedAt }),
		"last_modified": DateIdent(func(g *model.AdGroup) model.Date { return g.LastModified }),
		"ad_count":      IntIdent(func(g *model.AdGroup) int64 { return int64(len(g.AdIDs)) }),
	},
	Presets: AdGroupPresets,
}

// CampaignPresets are the shortcuts offered on campaign lists.
var CampaignPresets = NewPresets(
	NewPreset("running", "Running", "Campaigns that are live today",
		func(model.Date) model.FilterState {
			return model.FilterState{Status: []string{string(model.CampaignRunning)}}
		}),
	NewPreset("upcoming", "Upcoming", "Campaigns starting today or later",
		func(today model.Date) model.FilterState {
			return model.FilterState{DateRange: model.DateRange{Start: today}}
		}),
	NewPreset("ended", "Ended", "Campaigns past their end date",
		func(model.Date) model.FilterState {
			return model.FilterState{Status: []string{string(model.CampaignEnded)}}
		}),
)

// CampaignSchema reads campaigns. Status must be refreshed with
// Campaign.RefreshStatus before filtering.
var CampaignSchema = &Schema[*model.Campaign]{
	Name: "campaigns",
	Search: []Field[*model.Campaign]{
		Text("name", func(c *model.Campaign) string { return c.Name }),
		Text("description", func(c *model.Campaign) string { return c.Description }),
		Text("partner_name", func(c *model.Campaign) string { return c.PartnerName }),
		Text("program_name", func(c *model.Campaign) string { return c.ProgramName }),
	},
	Status:     func(c *model.Campaign) string { return string(c.Status) },
	Type:       func(c *model.Campaign) string { return string(c.Type) },
	RangeStart: func(c *model.Campaign) model.Date { return c.StartDate },
	RangeEnd:   func(c *model.Campaign) model.Date { return c.EndDate },
	FieldText:  func(c *model.Campaign) string { return c.PartnerName },
	Value:      func(c *model.Campaign) (decimal.Decimal, bool) { return c.Budget, true },
	Sorts: map[string]Compare[*model.Campaign]{
		"name":         ByFold(func(c *model.Campaign) string { return c.Name }),
		"type":         ByString(func(c *model.Campaign) string { return string(c.Type) }),
		"status":       ByString(func(c *model.Campaign) string { return string(c.Status) }),
		"partner_name": ByFold(func(c *model.Campaign) string { return c.PartnerName }),
		"start_date":   ByDate(func(c *model.Campaign) model.Date { return c.StartDate }),
		"end_date":     ByDate(func(c *model.Campaign) model.Date { return c.EndDate }),
		"budget":       ByDecimal(func(c *model.Campaign) (decimal.Decimal, bool) { return c.Budget, true }),
	},
	DefaultSort: model.SortSpec{Field: "start_date", Direction: model.Desc},
	Idents: map[string]Ident[*model.Campaign]{
		"name":         StringIdent(func(c *model.Campaign) string { return c.Name }),
		"type":         StringIdent(func(c *model.Campaign) string { return string(c.Type) }),
		"status":       StringIdent(func(c *model.Campaign) string { return string(c.Status) }),
		"partner_id":   StringIdent(func(c *model.Campaign) string { return c.PartnerID }),
		"partner_name": StringIdent(func(c *model.Campaign) string { return c.PartnerName }),
		"program_id":   StringIdent(func(c *model.Campaign) string { return c.ProgramID }),
		"start_date":   DateIdent(func(c *model.Campaign) model.Date { return c.StartDate }),
		"end_date":     DateIdent(func(c *model.Campaign) model.Date { return c.EndDate }),
		"active":       BoolIdent(func(c *model.Campaign) bool { return c.Active }),
		"has_products": BoolIdent(func(c *model.Campaign) bool { return c.HasProducts }),
		"budget":       DoubleIdent(func(c *model.Campaign) float64 { return c.Budget.InexactFloat64() }),
	},
	Presets: CampaignPresets,
}

// CustomerSchema reads customers. Customers are searched, not filtered.
var CustomerSchema = &Schema[*model.Customer]{
	Name: "customers",
	Search: []Field[*model.Customer]{
		Text("email", func(c *model.Customer) string { return c.Email }),
		Text("first_name", func(c *model.Customer) string { return c.FirstName }),
		Text("last_name", func(c *model.Customer) string { return c.LastName }),
		Text("full_name", (*model.Customer).FullName),
		Text("phone", func(c *model.Customer) string { return c.Phone }),
		Text("extracare_id", func(c *model.Customer) string { return c.ExtraCareID }),
	},
	RangeStart: func(c *model.Customer) model.Date { return c.AccountCreated },
	RangeEnd:   func(c *model.Customer) model.Date { return c.AccountCreated },
	Sorts: map[string]Compare[*model.Customer]{
		"last_name": Then(
			ByFold(func(c *model.Customer) string { return c.LastName }),
			ByFold(func(c *model.Customer) string { return c.FirstName }),
		),
		"first_name":      ByFold(func(c *model.Customer) string { return c.FirstName }),
		"email":           ByFold(func(c *model.Customer) string { return c.Email }),
		"account_created": ByDate(func(c *model.Customer) model.Date { return c.AccountCreated }),
	},
	DefaultSort: model.SortSpec{Field: "last_name", Direction: model.Asc},
	Idents: map[string]Ident[*model.Customer]{
		"email":        StringIdent(func(c *model.Customer) string { return c.Email }),
		"extracare_id": StringIdent(func(c *model.Customer) string { return c.ExtraCareID }),
		"city":         StringIdent(func(c *model.Customer) string { return c.Address.City }),
		"state":        StringIdent(func(c *model.Customer) string { return c.Address.State }),
	},
}
