package listing

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kigopro/kigo/internal/model"
)

// sampleTokens returns seven tokens claimed between January and May 2023.
func sampleTokens() []*model.Token {
	d := model.MustParseDate
	return []*model.Token{
		{ID: "tok1", Name: "20% Off Vitamins", Type: model.TokenCoupon, State: model.TokenActive,
			ClaimDate: d("2023-01-15"), ExpirationDate: d("2023-02-15"), MerchantName: "CVS Pharmacy", Value: "20%"},
		{ID: "tok2", Name: "Vitamin D Bonus", Type: model.TokenReward, State: model.TokenExpired,
			ClaimDate: d("2023-02-10"), ExpirationDate: d("2023-03-10"), MerchantName: "CVS Pharmacy", Value: "$3.00"},
		{ID: "tok3", Name: "$5 ExtraBucks Rewards", Description: "Earn $5 when you buy Vitamins",
			Type: model.TokenExtraBucks, State: model.TokenActive,
			ClaimDate: d("2023-03-01"), ExpirationDate: d("2023-06-01"), MerchantName: "CVS Pharmacy", Value: "$5.00"},
		{ID: "tok4", Name: "Sunscreen BOGO", Type: model.TokenCoupon, State: model.TokenActive,
			ClaimDate: d("2023-04-01"), ExpirationDate: d("2023-07-01"), MerchantName: "Walgreens", Value: "FREE"},
		{ID: "tok5", Name: "Multivitamin Reward", Type: model.TokenReward, State: model.TokenUsed,
			ClaimDate: d("2023-04-20"), UseDate: d("2023-05-01"), ExpirationDate: d("2023-05-20"),
			MerchantName: "CVS Pharmacy", Value: "$10.00"},
		{ID: "tok6", Name: "VITAMIN C Flash Sale", Type: model.TokenLightning, State: model.TokenActive,
			ClaimDate: d("2023-05-10"), ExpirationDate: d("2023-05-12"), MerchantName: "CVS Pharmacy",
			MerchantLocation: "Downtown", Value: "$15.00"},
		{ID: "tok7", Name: "Photo Prints", Type: model.TokenCoupon, State: model.TokenActive,
			ClaimDate: d("2023-05-25"), ExpirationDate: d("2023-08-25"), MerchantName: "CVS Photo", Value: "40%"},
	}
}

func ids(ts []*model.Token) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func TestRun_EndToEnd(t *testing.T) {
	req := model.ListRequest{
		Query:      "vitamin",
		Filters:    model.FilterState{Status: []string{"Active"}},
		Sort:       model.SortSpec{Field: "claim_date", Direction: model.Desc},
		Pagination: model.Pagination{CurrentPage: 1, PageSize: 5},
	}
	page, err := Run(sampleTokens(), req, TokenSchema)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if diff := cmp.Diff([]string{"tok6", "tok3", "tok1"}, ids(page.Items)); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
	if page.TotalItems != 3 || page.TotalPages != 1 || page.StartIndex != 0 || page.EndIndex != 3 {
		t.Errorf("page = %+v", page)
	}
}

func TestRun_TotalReflectsUnpaginatedCount(t *testing.T) {
	req := model.ListRequest{Pagination: model.Pagination{CurrentPage: 2, PageSize: 3}}
	page, err := Run(sampleTokens(), req, TokenSchema)
	if err != nil {
		t.Fatal(err)
	}
	// Default sort is claim date, newest first.
	if diff := cmp.Diff([]string{"tok4", "tok3", "tok2"}, ids(page.Items)); diff != "" {
		t.Errorf("page 2 mismatch (-want +got):\n%s", diff)
	}
	if page.TotalItems != 7 || page.TotalPages != 3 {
		t.Errorf("TotalItems=%d TotalPages=%d, want 7 and 3", page.TotalItems, page.TotalPages)
	}
}

func TestRun_FilterExpression(t *testing.T) {
	req := model.ListRequest{
		Filter: `merchant_name = "CVS Pharmacy" AND state != "Active"`,
		Sort:   model.SortSpec{Field: "name", Direction: model.Asc},
	}
	page, err := Run(sampleTokens(), req, TokenSchema)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"tok5", "tok2"}, ids(page.Items)); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_MalformedFilterExpression(t *testing.T) {
	for _, f := range []string{`state = `, `unknown_field = "x"`, `state = 3`} {
		if _, err := Run(sampleTokens(), model.ListRequest{Filter: f}, TokenSchema); err == nil {
			t.Errorf("Run(filter %q) succeeded, want error", f)
		}
	}
}

func TestRun_DoesNotMutateInput(t *testing.T) {
	in := sampleTokens()
	before := ids(in)
	_, err := Run(in, model.ListRequest{Sort: model.SortSpec{Field: "name"}}, TokenSchema)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(before, ids(in)); diff != "" {
		t.Errorf("input reordered (-want +got):\n%s", diff)
	}
}
