package viewstate

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/kigopro/kigo/internal/listing"
	"github.com/kigopro/kigo/internal/model"
)

var now = time.Date(2023, 5, 20, 9, 0, 0, 0, time.UTC)

func tokenEnv() Env {
	return Env{
		Presets:     listing.TokenPresets,
		DefaultSort: listing.TokenSchema.DefaultSort,
		PageSize:    2,
	}
}

func tokens() []*model.Token {
	d := model.MustParseDate
	var out []*model.Token
	for i := 1; i <= 7; i++ {
		state := model.TokenActive
		if i%3 == 0 {
			state = model.TokenExpired
		}
		out = append(out, &model.Token{
			ID:             fmt.Sprintf("tok%d", i),
			Name:           fmt.Sprintf("Token %d", i),
			Type:           model.TokenCoupon,
			State:          state,
			ClaimDate:      d(fmt.Sprintf("2023-0%d-01", (i+1)/2)),
			ExpirationDate: d("2023-12-31"),
			MerchantName:   "CVS Pharmacy",
			Value:          fmt.Sprintf("$%d.00", i),
		})
	}
	return out
}

func TestReduce_FilterChangesResetPage(t *testing.T) {
	env := tokenEnv()
	start := Initial(env.DefaultSort, env.PageSize)
	start.Pagination.CurrentPage = 4
	for _, a := range []Action{
		SetQuery{Query: "vit"},
		ToggleStatus{Value: "Active"},
		ToggleType{Value: "Coupon"},
		SetDateStart{Date: model.MustParseDate("2023-01-01")},
		SetDateEnd{Date: model.MustParseDate("2023-12-31")},
		SetFieldText{Text: "cvs"},
		SetMinValue{Value: &decimal.Decimal{}},
		ApplyPreset{Name: "active", Now: now},
		SetPageSize{Size: 20},
	} {
		if got := Reduce(start, a, env); got.Pagination.CurrentPage != 1 {
			t.Errorf("%T left page at %d", a, got.Pagination.CurrentPage)
		}
	}
	if got := Reduce(start, SetSort{Field: "name"}, env); got.Pagination.CurrentPage != 4 {
		t.Errorf("SetSort moved page to %d", got.Pagination.CurrentPage)
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	env := tokenEnv()
	s := Initial(env.DefaultSort, env.PageSize)
	s = Reduce(s, ToggleStatus{Value: "Active"}, env)
	s = Reduce(s, ToggleStatus{Value: "Used"}, env)
	before := s.Filters.Clone()
	_ = Reduce(s, ToggleStatus{Value: "Active"}, env)
	if diff := cmp.Diff(before, s.Filters); diff != "" {
		t.Errorf("input state mutated (-want +got):\n%s", diff)
	}
}

func TestReduce_Toggle(t *testing.T) {
	env := tokenEnv()
	s := Initial(env.DefaultSort, env.PageSize)
	s = Reduce(s, ToggleStatus{Value: "Active"}, env)
	s = Reduce(s, ToggleStatus{Value: "Used"}, env)
	s = Reduce(s, ToggleStatus{Value: "Active"}, env)
	if diff := cmp.Diff([]string{"Used"}, s.Filters.Status); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestReduce_SetSortToggles(t *testing.T) {
	env := tokenEnv()
	s := Initial(env.DefaultSort, env.PageSize)
	steps := []struct {
		a    SetSort
		want model.SortSpec
	}{
		{SetSort{Field: "name"}, model.SortSpec{Field: "name", Direction: model.Asc}},
		{SetSort{Field: "name"}, model.SortSpec{Field: "name", Direction: model.Desc}},
		{SetSort{Field: "name"}, model.SortSpec{Field: "name", Direction: model.Asc}},
		{SetSort{Field: "value"}, model.SortSpec{Field: "value", Direction: model.Asc}},
		{SetSort{Field: "value", Direction: model.Desc}, model.SortSpec{Field: "value", Direction: model.Desc}},
		{SetSort{Field: "claim_date", Direction: model.Desc}, model.SortSpec{Field: "claim_date", Direction: model.Desc}},
		{SetSort{Field: "claim_date"}, model.SortSpec{Field: "claim_date", Direction: model.Asc}},
	}
	for i, step := range steps {
		s = Reduce(s, step.a, env)
		if s.Sort != step.want {
			t.Fatalf("step %d: sort = %+v, want %+v", i, s.Sort, step.want)
		}
	}
}

func TestReduce_Presets(t *testing.T) {
	env := tokenEnv()
	s := Initial(env.DefaultSort, env.PageSize)
	s = Reduce(s, SetFieldText{Text: "walgreens"}, env)
	s = Reduce(s, ApplyPreset{Name: "expiring-soon", Now: now}, env)
	want := model.FilterState{
		Status:    []string{"Active"},
		DateRange: model.DateRange{End: model.MustParseDate("2023-05-27")},
	}
	if diff := cmp.Diff(want, s.Filters); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if s.Preset != "expiring-soon" {
		t.Errorf("Preset = %q", s.Preset)
	}

	unchanged := Reduce(s, ApplyPreset{Name: "nope", Now: now}, env)
	if diff := cmp.Diff(s, unchanged); diff != "" {
		t.Errorf("unknown preset changed state (-want +got):\n%s", diff)
	}

	s = Reduce(s, ToggleType{Value: "Coupon"}, env)
	if s.Preset != "" {
		t.Errorf("Preset = %q after editing filters, want empty", s.Preset)
	}
}

func TestReduce_ClearAll(t *testing.T) {
	env := tokenEnv()
	s := Initial(env.DefaultSort, env.PageSize)
	for _, a := range []Action{
		SetQuery{Query: "x"}, ToggleStatus{Value: "Used"}, SetSort{Field: "name"},
		SetPageSize{Size: 50}, SetPage{Page: 3},
	} {
		s = Reduce(s, a, env)
	}
	if diff := cmp.Diff(Initial(env.DefaultSort, env.PageSize), Reduce(s, ClearAll{}, env)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestReduce_Paging(t *testing.T) {
	env := tokenEnv()
	s := Initial(env.DefaultSort, env.PageSize)
	s = Reduce(s, PrevPage{}, env)
	if s.Pagination.CurrentPage != 1 {
		t.Errorf("PrevPage from 1 = %d", s.Pagination.CurrentPage)
	}
	s = Reduce(s, NextPage{}, env)
	s = Reduce(s, NextPage{}, env)
	if s.Pagination.CurrentPage != 3 {
		t.Errorf("NextPage twice = %d", s.Pagination.CurrentPage)
	}
	s = Reduce(s, SetPage{Page: -2}, env)
	if s.Pagination.CurrentPage != 1 {
		t.Errorf("SetPage(-2) = %d", s.Pagination.CurrentPage)
	}
	if got := Reduce(s, SetPageSize{Size: 0}, env); got.Pagination.PageSize != 2 {
		t.Errorf("SetPageSize(0) = %d", got.Pagination.PageSize)
	}
}

func TestStore_DispatchAndClamp(t *testing.T) {
	src := listing.NewLocalSource(tokens(), listing.TokenSchema)
	st := NewStore[*model.Token](src, tokenEnv())
	ctx := context.Background()

	page, err := st.Dispatch(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalItems != 7 || page.TotalPages != 4 || len(page.Items) != 2 {
		t.Fatalf("first page = %+v", page)
	}

	if _, err := st.Dispatch(ctx, SetPage{Page: 4}); err != nil {
		t.Fatal(err)
	}
	// Filtering to 5 active tokens leaves 3 pages; the cursor was reset anyway.
	page, err = st.Dispatch(ctx, ApplyPreset{Name: "active", Now: now})
	if err != nil {
		t.Fatal(err)
	}
	if page.CurrentPage != 1 || page.TotalItems != 5 {
		t.Errorf("after preset: %+v", page)
	}

	// Jumping past the end lands on the last page.
	page, err = st.Dispatch(ctx, SetPage{Page: 9})
	if err != nil {
		t.Fatal(err)
	}
	if page.CurrentPage != 3 || st.State().Pagination.CurrentPage != 3 || len(page.Items) != 1 {
		t.Errorf("clamped page = %+v, state page %d", page, st.State().Pagination.CurrentPage)
	}
}

func TestStore_Subscribe(t *testing.T) {
	src := listing.NewLocalSource(tokens(), listing.TokenSchema)
	st := NewStore[*model.Token](src, tokenEnv())
	var seen []string
	cancel := st.Subscribe(func(s State, p listing.Page[*model.Token]) {
		seen = append(seen, fmt.Sprintf("%s:%d", s.Query, p.TotalItems))
	})
	ctx := context.Background()
	if _, err := st.Dispatch(ctx, SetQuery{Query: "token 1"}); err != nil {
		t.Fatal(err)
	}
	cancel()
	if _, err := st.Dispatch(ctx, SetQuery{Query: ""}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"token 1:1"}, seen); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestStore_ListenersRunInSubscribeOrder(t *testing.T) {
	src := listing.NewLocalSource(tokens(), listing.TokenSchema)
	st := NewStore[*model.Token](src, tokenEnv())
	var order []string
	cancels := make(map[string]func())
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		cancels[name] = st.Subscribe(func(State, listing.Page[*model.Token]) {
			order = append(order, name)
		})
	}
	ctx := context.Background()
	for range 3 {
		if _, err := st.Dispatch(ctx, NextPage{}); err != nil {
			t.Fatal(err)
		}
	}
	cancels["c"]()
	if _, err := st.Dispatch(ctx, PrevPage{}); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"a", "b", "c", "d", "e",
		"a", "b", "c", "d", "e",
		"a", "b", "c", "d", "e",
		"a", "b", "d", "e",
	}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("notification order (-want +got):\n%s", diff)
	}
}

type failingSource struct{}

func (failingSource) List(context.Context, model.ListRequest) (listing.Page[*model.Token], error) {
	return listing.Page[*model.Token]{}, errors.New("offline")
}

func TestStore_FetchErrorKeepsState(t *testing.T) {
	st := NewStore[*model.Token](failingSource{}, tokenEnv())
	before := st.State()
	if _, err := st.Dispatch(context.Background(), SetQuery{Query: "x"}); err == nil {
		t.Fatal("Dispatch succeeded, want error")
	}
	if diff := cmp.Diff(before, st.State()); diff != "" {
		t.Errorf("state changed on error (-want +got):\n%s", diff)
	}
}

func TestState_Request(t *testing.T) {
	s := State{
		Query:      "q",
		Filters:    model.FilterState{Status: []string{"Active"}},
		Sort:       model.SortSpec{Field: "name", Direction: model.Asc},
		Pagination: model.Pagination{CurrentPage: 2, PageSize: 5},
	}
	req := s.Request()
	req.Filters.Status[0] = "Used"
	if s.Filters.Status[0] != "Active" {
		t.Error("Request shares filter sets with state")
	}
}
