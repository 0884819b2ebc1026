// Package viewstate owns the query, filters, sort and page cursor of a list
// view. State changes only through Reduce; Store adds fetching and change
// notification on top.
package viewstate

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kigopro/kigo/internal/listing"
	"github.com/kigopro/kigo/internal/model"
)

// State is the complete, serializable state of one list view.
type State struct {
	Query      string            `json:"query,omitempty"`
	Filters    model.FilterState `json:"filters,omitzero"`
	Preset     string            `json:"preset,omitempty"`
	Sort       model.SortSpec    `json:"sort"`
	Pagination model.Pagination  `json:"pagination"`
}

// Initial returns the state a view starts in.
func Initial(defaultSort model.SortSpec, pageSize int) State {
	if pageSize < 1 {
		pageSize = model.DefaultPageSize
	}
	return State{
		Sort:       defaultSort,
		Pagination: model.Pagination{CurrentPage: 1, PageSize: pageSize},
	}
}

// Request converts the state into a list request.
func (s State) Request() model.ListRequest {
	return model.ListRequest{
		Query:      s.Query,
		Filters:    s.Filters.Clone(),
		Sort:       s.Sort,
		Pagination: s.Pagination,
	}
}

// Env is what the reducer needs from its owner.
type Env struct {
	Presets     *listing.Presets
	DefaultSort model.SortSpec
	PageSize    int
}

// Action is a typed state transition.
type Action interface {
	apply(State, Env) State
}

// Reduce applies a to s and returns the new state; s is not modified.
func Reduce(s State, a Action, env Env) State {
	s.Filters = s.Filters.Clone()
	return a.apply(s, env)
}

func resetPage(s State) State {
	s.Pagination.CurrentPage = 1
	return s
}

// filtersChanged resets the page and forgets which preset produced the
// filters, since they no longer match it.
func filtersChanged(s State) State {
	s.Preset = ""
	return resetPage(s)
}

func toggle(set []string, v string) []string {
	if i := slices.Index(set, v); i >= 0 {
		return slices.Delete(set, i, i+1)
	}
	return append(set, v)
}

// SetQuery replaces the free-text query.
type SetQuery struct{ Query string }

func (a SetQuery) apply(s State, _ Env) State {
	if s.Query == a.Query {
		return s
	}
	s.Query = a.Query
	return resetPage(s)
}

// ToggleStatus adds or removes one status value.
type ToggleStatus struct{ Value string }

func (a ToggleStatus) apply(s State, _ Env) State {
	s.Filters.Status = toggle(s.Filters.Status, a.Value)
	return filtersChanged(s)
}

// ToggleType adds or removes one type value.
type ToggleType struct{ Value string }

func (a ToggleType) apply(s State, _ Env) State {
	s.Filters.Types = toggle(s.Filters.Types, a.Value)
	return filtersChanged(s)
}

// SetDateStart sets or, with a zero Date, clears the lower date bound.
type SetDateStart struct{ Date model.Date }

func (a SetDateStart) apply(s State, _ Env) State {
	s.Filters.DateRange.Start = a.Date
	return filtersChanged(s)
}

// SetDateEnd sets or, with a zero Date, clears the upper date bound.
type SetDateEnd struct{ Date model.Date }

func (a SetDateEnd) apply(s State, _ Env) State {
	s.Filters.DateRange.End = a.Date
	return filtersChanged(s)
}

// SetFieldText sets the field-specific substring filter.
type SetFieldText struct{ Text string }

func (a SetFieldText) apply(s State, _ Env) State {
	s.Filters.FieldText = a.Text
	return filtersChanged(s)
}

// SetMinValue sets or, with nil, clears the minimum value filter.
type SetMinValue struct{ Value *decimal.Decimal }

func (a SetMinValue) apply(s State, _ Env) State {
	s.Filters.MinValue = nil
	if a.Value != nil {
		v := *a.Value
		s.Filters.MinValue = &v
	}
	return filtersChanged(s)
}

// ApplyPreset replaces the filters with a named preset. Unknown names
// change nothing.
type ApplyPreset struct {
	Name string
	Now  time.Time
}

func (a ApplyPreset) apply(s State, env Env) State {
	p, ok := env.Presets.Lookup(a.Name)
	if !ok {
		return s
	}
	s.Filters = p.Filters(a.Now)
	s.Preset = a.Name
	return resetPage(s)
}

// ClearAll restores the initial state.
type ClearAll struct{}

func (ClearAll) apply(_ State, env Env) State {
	return Initial(env.DefaultSort, env.PageSize)
}

// SetSort selects a sort. With no direction, choosing the current field
// again flips the direction and choosing a new field sorts ascending.
type SetSort struct {
	Field     string
	Direction model.Direction
}

func (a SetSort) apply(s State, _ Env) State {
	switch {
	case a.Direction != "":
		s.Sort = model.SortSpec{Field: a.Field, Direction: a.Direction}
	case s.Sort.Field == a.Field:
		s.Sort.Direction = s.Sort.Direction.Toggle()
	default:
		s.Sort = model.SortSpec{Field: a.Field, Direction: model.Asc}
	}
	return s
}

// SetPage moves to a page. The store clamps it once the total is known.
type SetPage struct{ Page int }

func (a SetPage) apply(s State, _ Env) State {
	s.Pagination.CurrentPage = max(1, a.Page)
	return s
}

// NextPage and PrevPage step the cursor by one.
type (
	NextPage struct{}
	PrevPage struct{}
)

func (NextPage) apply(s State, _ Env) State {
	s.Pagination.CurrentPage++
	return s
}

func (PrevPage) apply(s State, _ Env) State {
	s.Pagination.CurrentPage = max(1, s.Pagination.CurrentPage-1)
	return s
}

// SetPageSize changes the page size and returns to the first page.
type SetPageSize struct{ Size int }

func (a SetPageSize) apply(s State, _ Env) State {
	if a.Size < 1 || a.Size == s.Pagination.PageSize {
		return s
	}
	s.Pagination.PageSize = a.Size
	return resetPage(s)
}

// clampPage is applied by the store once a fetch reports the page count.
type clampPage struct{ TotalPages int }

func (a clampPage) apply(s State, _ Env) State {
	s.Pagination.CurrentPage = listing.ClampPage(s.Pagination.CurrentPage, a.TotalPages)
	return s
}
