package model

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

// validToken returns a Token that passes all validation rules.
func validToken() Token {
	return Token{
		Name:           "$5 ExtraBucks Rewards",
		Type:           TokenExtraBucks,
		State:          TokenActive,
		ClaimDate:      MustParseDate("2023-05-10"),
		ExpirationDate: MustParseDate("2023-06-10"),
		Value:          "$5.00",
	}
}

// fieldErrors extracts a *ValidationError from err or fails the test.
func fieldErrors(t *testing.T, err error) []FieldError {
	t.Helper()
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	return ve.Errors
}

// hasFieldError reports whether the error list contains an error for the given field.
func hasFieldError(errs []FieldError, field string) bool {
	for _, fe := range errs {
		if fe.Field == field {
			return true
		}
	}
	return false
}

func TestValidateToken_Valid(t *testing.T) {
	tok := validToken()
	if err := ValidateToken(&tok); err != nil {
		t.Fatalf("ValidateToken() = %v, want nil", err)
	}
}

func TestValidateToken_Rules(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mutate func(*Token)
		field  string
	}{
		{"name required", func(t *Token) { t.Name = "  " }, "name"},
		{"name too long", func(t *Token) { t.Name = strings.Repeat("x", 201) }, "name"},
		{"bad type", func(t *Token) { t.Type = "Voucher" }, "type"},
		{"bad state", func(t *Token) { t.State = "" }, "state"},
		{"expires before claim", func(t *Token) { t.ExpirationDate = MustParseDate("2023-05-01") }, "expiration_date"},
		{"malformed claim date", func(t *Token) { t.ClaimDate = ParseDate("yesterday") }, "claim_date"},
		{"used without use date", func(t *Token) { t.State = TokenUsed }, "use_date"},
		{"shared without share date", func(t *Token) { t.State = TokenShared }, "share_date"},
		{"dispute without reason", func(t *Token) { t.Disputed = true }, "dispute_reason"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tok := validToken()
			tc.mutate(&tok)
			if errs := fieldErrors(t, ValidateToken(&tok)); !hasFieldError(errs, tc.field) {
				t.Errorf("errors %v missing field %q", errs, tc.field)
			}
		})
	}
}

func TestValidateToken_MultipleErrors(t *testing.T) {
	tok := Token{}
	errs := fieldErrors(t, ValidateToken(&tok))
	if len(errs) != 3 {
		t.Fatalf("got %d errors (%v), want 3", len(errs), errs)
	}
	msg := (&ValidationError{Errors: errs}).Error()
	if !strings.HasPrefix(msg, "validation failed: name: is required; ") {
		t.Errorf("Error() = %q", msg)
	}
}

func TestValidateCustomer(t *testing.T) {
	ok := Customer{FirstName: "Emily", Email: "emily@example.com"}
	if err := ValidateCustomer(&ok); err != nil {
		t.Fatalf("ValidateCustomer() = %v", err)
	}
	for _, email := range []string{"", "emily", "@example.com", "emily@"} {
		c := Customer{LastName: "Johnson", Email: email}
		if errs := fieldErrors(t, ValidateCustomer(&c)); !hasFieldError(errs, "email") {
			t.Errorf("email %q: errors %v missing email", email, errs)
		}
	}
	c := Customer{Email: "x@y.z"}
	if errs := fieldErrors(t, ValidateCustomer(&c)); !hasFieldError(errs, "name") {
		t.Errorf("errors %v missing name", errs)
	}
}

func TestValidateAd(t *testing.T) {
	ad := Ad{Name: "Summer Promo", Status: AdDraft, OfferType: OfferBOGO}
	if err := ValidateAd(&ad); err != nil {
		t.Fatalf("ValidateAd() = %v", err)
	}
	ad.Budget = decimal.NewFromInt(-1)
	ad.OfferType = "XYZ"
	errs := fieldErrors(t, ValidateAd(&ad))
	if !hasFieldError(errs, "budget") || !hasFieldError(errs, "offer_type") {
		t.Errorf("errors = %v, want budget and offer_type", errs)
	}
}

func TestValidateAdGroup(t *testing.T) {
	g := AdGroup{Name: "Holiday", Status: AdGroupPaused}
	if err := ValidateAdGroup(&g); err != nil {
		t.Fatalf("ValidateAdGroup() = %v", err)
	}
	g.Status = "Paused"
	if errs := fieldErrors(t, ValidateAdGroup(&g)); !hasFieldError(errs, "status") {
		t.Errorf("errors = %v, want status", errs)
	}
}

func TestValidateCampaign(t *testing.T) {
	c := Campaign{
		Name:      "Back to School",
		PartnerID: "p1",
		ProgramID: "pr1",
		Type:      CampaignSeasonal,
		StartDate: MustParseDate("2024-08-01"),
		EndDate:   MustParseDate("2024-09-15"),
	}
	if err := ValidateCampaign(&c); err != nil {
		t.Fatalf("ValidateCampaign() = %v", err)
	}
	c.EndDate = MustParseDate("2024-07-01")
	c.StartDate = Date{}
	errs := fieldErrors(t, ValidateCampaign(&c))
	if !hasFieldError(errs, "start_date") {
		t.Errorf("errors = %v, want start_date", errs)
	}
}

func TestValidateListRequest(t *testing.T) {
	neg := decimal.NewFromInt(-5)
	req := ListRequest{
		Filters: FilterState{
			DateRange: DateRange{Start: MustParseDate("2024-02-01"), End: MustParseDate("2024-01-01")},
			MinValue:  &neg,
		},
		Sort:       SortSpec{Field: "name", Direction: "sideways"},
		Pagination: Pagination{CurrentPage: -1, PageSize: -1},
	}
	errs := fieldErrors(t, ValidateListRequest(&req))
	for _, f := range []string{"to", "min_value", "sort", "page", "page_size"} {
		if !hasFieldError(errs, f) {
			t.Errorf("errors %v missing %q", errs, f)
		}
	}
	if err := ValidateListRequest(&ListRequest{}); err != nil {
		t.Errorf("empty request: %v", err)
	}
}
