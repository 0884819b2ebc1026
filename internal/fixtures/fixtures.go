// Package fixtures builds the demo dataset used to seed the in-memory store
// and `kigo seed`. All generated dates are relative to the supplied time,
// and the random parts come from a fixed seed, so the same now always
// yields the same data.
package fixtures

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kigopro/kigo/internal/model"
)

// Dataset is everything a fresh store is seeded with.
type Dataset struct {
	Customers []*model.Customer
	Tokens    []*model.Token // held by customers
	Catalog   []*model.Token // CustomerID empty
	Ads       []*model.Ad
	AdGroups  []*model.AdGroup
	Campaigns []*model.Campaign
}

// GeneratedCustomers is how many customers are added after the fixed ones.
const GeneratedCustomers = 24

// Load returns the dataset as of now.
func Load(now time.Time) *Dataset {
	now = now.UTC()
	ds := &Dataset{}
	ds.addFixedCustomers(now)
	ds.addGeneratedCustomers(now, rand.New(rand.NewPCG(7, 42)))
	ds.Catalog = catalog(now)
	ds.Ads, ds.AdGroups = adsAndGroups(now)
	ds.Campaigns = campaigns(now)
	return ds
}

func d(s string) model.Date { return model.MustParseDate(s) }

func tokenURL(id string) string {
	return "https://www.cvs.com/extracare/token/view?id=" + id
}

func (ds *Dataset) addCustomer(c *model.Customer, tokens ...*model.Token) {
	ds.Customers = append(ds.Customers, c)
	for _, t := range tokens {
		t.CustomerID = c.ID
		if t.ExternalURL == "" {
			t.ExternalURL = tokenURL(t.ID)
		}
		t.CreatedAt = c.CreatedAt
		t.UpdatedAt = c.CreatedAt
		ds.Tokens = append(ds.Tokens, t)
	}
}

func (ds *Dataset) addFixedCustomers(now time.Time) {
	boston := func(street, apt, zip string) model.Address {
		return model.Address{Street: street, AptUnit: apt, City: "Boston", State: "MA", Zip: zip}
	}
	cvs := "CVS Pharmacy"

	ds.addCustomer(&model.Customer{
		ID: "cust001", FirstName: "Emily", LastName: "Johnson",
		Email: "emily.johnson@example.com", Phone: "(555) 123-4567", ExtraCareID: "4872913650",
		AccountCreated: d("2021-06-15"), Address: boston("123 Market Street", "Apt 4B", "02108"), CreatedAt: now,
	},
		&model.Token{
			ID: "tok001", Name: "$5 ExtraBucks Rewards",
			Description: "Earn $5 ExtraBucks Rewards when you spend $20 on beauty products",
			Type:        model.TokenExtraBucks, State: model.TokenActive,
			ClaimDate: d("2023-05-10"), ExpirationDate: d("2023-06-10"),
			MerchantName: cvs, MerchantLocation: "Downtown", Value: "$5.00",
		},
		&model.Token{
			ID: "tok002", Name: "20% Off Vitamins",
			Description: "20% off your purchase of vitamins and supplements",
			Type:        model.TokenCoupon, State: model.TokenExpired,
			ClaimDate: d("2023-04-01"), ExpirationDate: d("2023-05-01"),
			MerchantName: cvs, MerchantLocation: "Westside Mall", Value: "20%",
		},
	)
	ds.addCustomer(&model.Customer{
		ID: "cust002", FirstName: "Michael", LastName: "Williams",
		Email: "michael.williams@example.com", Phone: "(555) 987-6543", ExtraCareID: "7391265480",
		AccountCreated: d("2020-11-22"), Address: boston("456 Commonwealth Avenue", "", "02215"), CreatedAt: now,
	},
		&model.Token{
			ID: "tok003", Name: "30% Off Contact Lenses",
			Description: "30% off any contact lens purchase",
			Type:        model.TokenCoupon, State: model.TokenUsed,
			ClaimDate: d("2023-05-15"), UseDate: d("2023-05-20"), ExpirationDate: d("2023-06-15"),
			MerchantName: cvs, MerchantLocation: "North Avenue", Value: "30%",
		},
	)
	ds.addCustomer(&model.Customer{
		ID: "cust003", FirstName: "Sophia", LastName: "Martinez",
		Email: "sophia.martinez@example.com", Phone: "(555) 234-5678", ExtraCareID: "6129385740",
		AccountCreated: d("2022-01-07"), Address: boston("789 Boylston Street", "Suite 300", "02199"), CreatedAt: now,
	})
	ds.addCustomer(&model.Customer{
		ID: "cust004", FirstName: "John", LastName: "Doe",
		Email: "john.doe@example.com", Phone: "(555) 432-1098", ExtraCareID: "5134982760",
		AccountCreated: d("2022-01-12"), Address: boston("101 Beacon Street", "Unit 15", "02116"), CreatedAt: now,
	},
		&model.Token{
			ID: "tok004", Name: "$7 ExtraBucks Rewards",
			Description: "$7 ExtraBucks Rewards for beauty purchases",
			Type:        model.TokenExtraBucks, State: model.TokenActive,
			ClaimDate: d("2023-05-20"), ExpirationDate: d("2023-06-20"),
			MerchantName: cvs, MerchantLocation: "Eastside Plaza", Value: "$7.00",
		},
		&model.Token{
			ID: "tok005", Name: "25% Off Cosmetics",
			Description: "25% off cosmetics purchase",
			Type:        model.TokenCoupon, State: model.TokenActive,
			ClaimDate: d("2023-05-01"), ExpirationDate: d("2023-06-01"),
			MerchantName: cvs, MerchantLocation: "Eastside Plaza", Value: "25%",
		},
		&model.Token{
			ID: "tok006", Name: "BOGO Vitamins",
			Description: "Buy one get one free on select vitamins",
			Type:        model.TokenCoupon, State: model.TokenUsed,
			ClaimDate: d("2023-04-01"), UseDate: d("2023-04-15"), ExpirationDate: d("2023-05-01"),
			MerchantName: cvs, Value: "BOGO",
		},
	)
	ds.addCustomer(&model.Customer{
		ID: "cust005", FirstName: "Alice", LastName: "Smith",
		Email: "alice.smith@example.com", Phone: "(555) 789-6543", ExtraCareID: "7892136540",
		AccountCreated: d("2023-03-23"), Address: boston("222 Tremont Street", "Apt 7C", "02116"), CreatedAt: now,
	},
		&model.Token{
			ID: "tok010", Name: "Flash Sale: $5 ExtraBucks",
			Description: "Limited time $5 offer - Today only!",
			Type:        model.TokenLightning, State: model.TokenActive,
			ClaimDate: d("2023-05-25"), ExpirationDate: d("2023-05-26"),
			MerchantName: cvs, Value: "$5.00",
		},
	)
	ds.addCustomer(&model.Customer{
		ID: "cust006", FirstName: "Robert", LastName: "Johnson",
		Email: "robert.j@example.com", Phone: "(555) 321-7890", ExtraCareID: "3698521470",
		AccountCreated: d("2021-11-05"), Address: boston("333 Newbury Street", "", "02115"), CreatedAt: now,
	},
		&model.Token{
			ID: "tok011", Name: "40% Off Sunscreen",
			Description: "40% off all sunscreen products",
			Type:        model.TokenCoupon, State: model.TokenExpired,
			ClaimDate: d("2023-03-01"), ExpirationDate: d("2023-04-01"),
			MerchantName: cvs, Value: "40%",
		},
		&model.Token{
			ID: "tok012", Name: "$10 Off $40 Purchase",
			Description: "$10 off when you spend $40 or more",
			Type:        model.TokenCoupon, State: model.TokenExpired,
			ClaimDate: d("2023-02-01"), ExpirationDate: d("2023-03-01"),
			MerchantName: cvs, Value: "$10.00",
		},
	)
}

var (
	firstNames = []string{"Emily", "Michael", "Sophia", "John", "Alice", "Robert", "Maria", "David", "Olivia", "James", "Ava", "Daniel"}
	lastNames  = []string{"Johnson", "Williams", "Martinez", "Doe", "Smith", "Thompson", "Garcia", "Brown", "Lee", "Walker"}
	streets    = []string{"Market Street", "Commonwealth Avenue", "Boylston Street", "Beacon Street", "Tremont Street", "Newbury Street"}
	cities     = []struct{ city, state, zip string }{
		{"Boston", "MA", "02108"}, {"Cambridge", "MA", "02139"}, {"Providence", "RI", "02903"},
		{"Hartford", "CT", "06103"}, {"Worcester", "MA", "01608"},
	}

	tokenNames = []string{
		"$5 ExtraBucks Rewards", "20% Off Vitamins", "30% Off Contact Lenses", "Free Photo Print",
		"40% Off Sunscreen", "$3 Off Allergy Relief", "Flash Sale: $10 ExtraBucks", "BOGO Hair Care",
		"25% Off Cosmetics", "$15 Off Flu Shot Visit",
	}
	tokenDescriptions = []string{
		"Off your purchase of vitamins and supplements",
		"With any purchase of $10 or more",
		"Limited time offer - Today only!",
		"For ExtraCare members",
		"On qualifying refills",
		"Home health devices and supplies",
	}
	merchants = []string{"CVS Pharmacy", "CVS MinuteClinic", "CVS HealthHUB", "CVS y más", "CVS Photo", "CVS Specialty", "Target CVS"}
	locations = []string{"Downtown", "Westside Mall", "North Avenue", "Eastside Plaza", "South Center", "University Plaza", "Riverfront", "Medical District"}
)

func pick[T any](r *rand.Rand, xs []T) T { return xs[r.IntN(len(xs))] }

func (ds *Dataset) addGeneratedCustomers(now time.Time, r *rand.Rand) {
	today := model.DateOf(now)
	next := 3000
	for i := range GeneratedCustomers {
		first, last := pick(r, firstNames), pick(r, lastNames)
		loc := pick(r, cities)
		c := &model.Customer{
			ID:             fmt.Sprintf("cust%03d", 7+i),
			FirstName:      first,
			LastName:       last,
			Email:          fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), r.IntN(1000)),
			Phone:          fmt.Sprintf("(%d) %d-%04d", 200+r.IntN(800), 100+r.IntN(900), r.IntN(10000)),
			ExtraCareID:    fmt.Sprintf("%010d", r.Int64N(10_000_000_000)),
			AccountCreated: today.AddDays(-30 - r.IntN(1500)),
			Address: model.Address{
				Street: fmt.Sprintf("%d %s", 1+r.IntN(999), pick(r, streets)),
				City:   loc.city, State: loc.state, Zip: loc.zip,
			},
			CreatedAt: now,
		}
		var tokens []*model.Token
		for range r.IntN(6) {
			tokens = append(tokens, generateToken(r, fmt.Sprintf("tok%d", next), today))
			next++
		}
		ds.addCustomer(c, tokens...)
	}
}

func generateToken(r *rand.Rand, id string, today model.Date) *model.Token {
	t := &model.Token{
		ID:               id,
		Name:             pick(r, tokenNames),
		Description:      pick(r, tokenDescriptions),
		Type:             pick(r, model.TokenTypes),
		MerchantName:     pick(r, merchants),
		MerchantLocation: pick(r, locations),
	}
	switch roll := r.Float64(); {
	case roll < 0.5:
		t.State = model.TokenActive
	case roll < 0.7:
		t.State = model.TokenExpired
	case roll < 0.9:
		t.State = model.TokenUsed
	default:
		t.State = model.TokenShared
	}

	t.ClaimDate = today.AddDays(-r.IntN(180))
	t.ExpirationDate = t.ClaimDate.AddDays(30 + r.IntN(90))
	switch t.State {
	case model.TokenExpired:
		t.ExpirationDate = today.AddDays(-1 - r.IntN(30))
		if t.ExpirationDate.Compare(t.ClaimDate) < 0 {
			t.ClaimDate = t.ExpirationDate.AddDays(-30)
		}
	case model.TokenActive:
		t.ExpirationDate = today.AddDays(1 + r.IntN(60))
	}
	span := int(t.ExpirationDate.Time().Sub(t.ClaimDate.Time()).Hours() / 24)
	switch t.State {
	case model.TokenUsed:
		t.UseDate = t.ClaimDate.AddDays(r.IntN(max(1, span)))
	case model.TokenShared:
		t.ShareDate = t.ClaimDate.AddDays(r.IntN(max(1, span)))
	}

	switch t.Type {
	case model.TokenExtraBucks, model.TokenLightning:
		t.Value = fmt.Sprintf("$%d.00", 1+r.IntN(20))
	case model.TokenCoupon:
		t.Value = fmt.Sprintf("%d%%", (1+r.IntN(4))*10)
	default:
		t.Value = "FREE"
	}

	if r.Float64() < 0.1 {
		t.Disputed = true
		t.DisputeReason = pick(r, []string{"Store didn't honor", "Token not working"})
		t.NotHonored = r.Float64() < 0.7
	}
	return t
}

func catalog(now time.Time) []*model.Token {
	today := model.DateOf(now)
	entry := func(id, name, desc string, typ model.TokenType, value string, days int) *model.Token {
		return &model.Token{
			ID: id, Name: name, Description: desc, Type: typ, State: model.TokenActive,
			ClaimDate: today, ExpirationDate: today.AddDays(days),
			MerchantName: "CVS Pharmacy", Value: value, ExternalURL: tokenURL(id),
			CreatedAt: now, UpdatedAt: now,
		}
	}
	return []*model.Token{
		entry("cat001", "$10 ExtraBucks Rewards", "$10 ExtraBucks Rewards for ExtraCare members", model.TokenExtraBucks, "$10.00", 30),
		entry("cat002", "40% Off Photo", "40% off photo prints and gifts", model.TokenCoupon, "40%", 14),
		entry("cat003", "$3 ExtraBucks Rewards", "$3 ExtraBucks Rewards on qualifying refills", model.TokenExtraBucks, "$3.00", 30),
		entry("cat004", "Free Flu Shot Gift Card", "$5 gift card with any flu shot", model.TokenReward, "FREE", 60),
		entry("cat005", "Flash Sale: $15 ExtraBucks", "Limited time $15 offer when you spend $50", model.TokenLightning, "$15.00", 2),
		entry("cat006", "25% Off Vitamins", "25% off vitamins and supplements", model.TokenCoupon, "25%", 21),
	}
}

func adsAndGroups(now time.Time) ([]*model.Ad, []*model.AdGroup) {
	today := model.DateOf(now)
	budget := decimal.RequireFromString
	ad := func(id, name, merchantID, merchant, offerID string, ot model.OfferType, status model.AdStatus, startIn, days int, b string, channels ...string) *model.Ad {
		return &model.Ad{
			ID: id, Name: name, Status: status,
			MerchantID: merchantID, MerchantName: merchant,
			OfferID: offerID, OfferType: ot, Channels: channels,
			StartDate: today.AddDays(startIn), EndDate: today.AddDays(startIn + days),
			Budget: budget(b), CreatedAt: now, UpdatedAt: now,
		}
	}
	ads := []*model.Ad{
		ad("ad-001", "Tony's Pizza Family Special", "m1", "Tony's Pizza - Tony's Restaurant Corp", "o1", model.OfferPercentOff, model.AdActive, -14, 45, "1500.00", "Display Banner", "Social Media"),
		ad("ad-002", "Deacon's Weekend Bundle", "m2", "Deacon's Pizza - Deacon's Restaurant Corp", "o2", model.OfferFreeItem, model.AdActive, -13, 30, "900.00", "Display Banner", "Social Media"),
		ad("ad-003", "Frank's Lunch Deal", "m3", "Frank's Pizza - Frank's Restaurant Corp", "o3", model.OfferSpecial, model.AdPublished, -12, 20, "650.00", "Display Banner"),
		ad("ad-004", "Java Joe's Morning Special", "merchant-jj", "Java Joe's - Java Joe's Coffee Corp", "offer-jj-01", model.OfferFreeItem, model.AdActive, -10, 15, "400.00", "Social Media"),
		ad("ad-005", "Brew & Bite Breakfast", "merchant-bb", "Brew & Bite - Brew & Bite Coffee Corp", "offer-bb-01", model.OfferAmountOff, model.AdPaused, -9, 60, "750.00", "Display Banner"),
		ad("ad-006", "Starbucks Holiday Blend", "merchant-sb", "Starbucks - Starbucks Corporation", "offer-sb-02", model.OfferPercentOff, model.AdDraft, 30, 45, "5000.00", "Social Media", "Display Banner"),
		ad("ad-007", "Target Holiday Lighting", "merchant-target", "Target - Target Corporation", "offer-target-02", model.OfferPercentOff, model.AdDraft, 31, 45, "3200.00", "Display Banner"),
		ad("ad-008", "Summer Cashback Blast", "merchant-cvs", "CVS Pharmacy", "offer-cvs-cb", model.OfferCashback, model.AdEnded, -120, 60, "2500.00", "Email", "Social Media"),
	}
	group := func(id, name, desc string, status model.AdGroupStatus, created, modified int, adIDs ...string) *model.AdGroup {
		return &model.AdGroup{
			ID: id, Name: name, Description: desc, Status: status, AdIDs: adIDs,
			CreatedAt: today.AddDays(created), LastModified: today.AddDays(modified),
		}
	}
	groups := []*model.AdGroup{
		group("adg-001", "Pizza Promotions", "Family and lunch deals from local pizzerias", model.AdGroupActive, -20, -6, "ad-001", "ad-002", "ad-003"),
		group("adg-002", "Coffee Shop Deals", "Morning offers from coffee partners", model.AdGroupActive, -16, -3, "ad-004", "ad-005"),
		group("adg-003", "Holiday Specials", "Seasonal holiday offers", model.AdGroupDraft, -2, -1, "ad-006", "ad-007"),
		group("adg-004", "Back to School Campaign", "Educational and school supply promotions", model.AdGroupPaused, -95, -80),
		group("adg-005", "Electronics Flash Sale", "Limited time electronics deals", model.AdGroupActive, -40, -38),
		group("adg-006", "Summer Wellness", "Sunscreen, hydration and first aid", model.AdGroupPaused, -130, -60, "ad-008"),
	}
	return ads, groups
}

func campaigns(now time.Time) []*model.Campaign {
	today := model.DateOf(now)
	c := func(id, name string, typ model.CampaignType, partner, program string, startIn, days int, active, auto bool, b string) *model.Campaign {
		cp := &model.Campaign{
			ID: id, Name: name, Type: typ,
			PartnerID: "p-" + strings.ToLower(partner[:3]), PartnerName: partner,
			ProgramID: "prg-" + strings.ToLower(program[:3]), ProgramName: program,
			StartDate: today.AddDays(startIn), EndDate: today.AddDays(startIn + days),
			Active: active, AutoActivate: auto, AutoDeactivate: true,
			Budget:    decimal.RequireFromString(b),
			CreatedAt: now, CreatedBy: "seed", UpdatedAt: now, UpdatedBy: "seed",
		}
		cp.RefreshStatus(today)
		return cp
	}
	return []*model.Campaign{
		c("cmp-001", "Spring Wellness Push", model.CampaignPromotional, "CVS Health", "ExtraCare", -10, 40, true, false, "25000.00"),
		c("cmp-002", "Holiday Gift Guide", model.CampaignSeasonal, "Target", "Circle Rewards", 25, 35, false, true, "40000.00"),
		c("cmp-003", "Lapsed Shopper Win-back", model.CampaignTargeted, "CVS Health", "ExtraCare", -30, 60, false, false, "12000.00"),
		c("cmp-004", "Back to School", model.CampaignSeasonal, "Staples", "Staples Rewards", -120, 45, true, true, "18000.00"),
		c("cmp-005", "Coffee Loyalty Boost", model.CampaignTargeted, "Java Joe's", "Bean Club", 14, 30, false, false, "5000.00"),
		c("cmp-006", "Pizza Night Fridays", model.CampaignPromotional, "Tony's Pizza", "Slice Club", -3, 90, true, false, "7500.00"),
	}
}
