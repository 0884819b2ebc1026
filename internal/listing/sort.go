package listing

import (
	"fmt"
	"slices"
	"strings"

	"go.einride.tech/aip/ordering"

	"github.com/kigopro/kigo/internal/model"
)

// SortRecords returns a stably sorted copy of rs. Equal keys keep their
// input order in both directions. An unknown field sorts by the schema
// default.
func SortRecords[T any](rs []T, spec model.SortSpec, s *Schema[T]) []T {
	out := slices.Clone(rs)
	if c := s.comparator(spec); c != nil {
		slices.SortStableFunc(out, c)
	}
	return out
}

// ParseSort accepts "field", "-field" (descending) or an AIP-132 order_by
// clause such as "claim_date desc". Only one field is allowed.
func ParseSort(s string) (model.SortSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.SortSpec{}, nil
	}
	if field, ok := strings.CutPrefix(s, "-"); ok {
		s = field + " desc"
	}
	var ob ordering.OrderBy
	if err := ob.UnmarshalString(s); err != nil {
		return model.SortSpec{}, fmt.Errorf("parse sort: %w", err)
	}
	if len(ob.Fields) != 1 {
		return model.SortSpec{}, fmt.Errorf("parse sort %q: exactly one field is supported", s)
	}
	spec := model.SortSpec{Field: ob.Fields[0].Path, Direction: model.Asc}
	if ob.Fields[0].Desc {
		spec.Direction = model.Desc
	}
	return spec, nil
}
