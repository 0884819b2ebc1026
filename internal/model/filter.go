package model

import (
	"slices"

	"github.com/shopspring/decimal"
)

// DateRange bounds a record's date fields. Either end may be unset.
type DateRange struct {
	Start Date `json:"start,omitzero"`
	End   Date `json:"end,omitzero"`
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool { return r.Start.IsZero() && r.End.IsZero() }

// FilterState holds the structured filter dimensions of a list view. Empty
// dimensions do not constrain; active ones combine with AND, and the values
// within a set combine with OR.
type FilterState struct {
	Status    []string         `json:"status,omitempty"`
	Types     []string         `json:"types,omitempty"`
	DateRange DateRange        `json:"date_range,omitzero"`
	FieldText string           `json:"field_text,omitempty"` // case-insensitive substring on the record's designated field
	MinValue  *decimal.Decimal `json:"min_value,omitempty"`
}

// IsZero reports whether no dimension is active.
func (f FilterState) IsZero() bool {
	return len(f.Status) == 0 && len(f.Types) == 0 && f.DateRange.IsZero() &&
		f.FieldText == "" && f.MinValue == nil
}

// Clone returns a deep copy so callers can mutate sets independently.
func (f FilterState) Clone() FilterState {
	out := f
	out.Status = slices.Clone(f.Status)
	out.Types = slices.Clone(f.Types)
	if f.MinValue != nil {
		v := *f.MinValue
		out.MinValue = &v
	}
	return out
}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// SortSpec selects a sort field and direction.
type SortSpec struct {
	Field     string    `json:"field,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

// String renders the sort the way list endpoints accept it: "field" for
// ascending, "-field" for descending.
func (s SortSpec) String() string {
	if s.Field == "" {
		return ""
	}
	if s.Direction == Desc {
		return "-" + s.Field
	}
	return s.Field
}

// DefaultPageSize is used when a request omits a page size.
const DefaultPageSize = 10

// PageSizes are the page sizes offered by list views.
var PageSizes = []int{5, 10, 20, 50}

// Pagination is the 1-based page cursor of a list view.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
}

// ListRequest is everything a list endpoint needs to produce one page.
type ListRequest struct {
	Query      string      `json:"query,omitempty"`
	Filters    FilterState `json:"filters,omitzero"`
	Filter     string      `json:"filter,omitempty"` // AIP-160 expression
	Sort       SortSpec    `json:"sort,omitzero"`
	Pagination Pagination  `json:"pagination"`
}
