package listing

import (
	"slices"

	"github.com/kigopro/kigo/internal/model"
)

// EvaluateFilters reports whether r satisfies every active dimension of f.
// Dimensions are independent, so the evaluation order only affects speed.
func EvaluateFilters[T any](r T, f model.FilterState, s *Schema[T]) bool {
	if len(f.Status) > 0 && !slices.Contains(f.Status, str(s.Status, r)) {
		return false
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, str(s.Type, r)) {
		return false
	}
	if start := f.DateRange.Start; !start.IsZero() {
		d := date(s.RangeStart, r)
		if !d.Valid() || !start.Valid() || d.Compare(start) < 0 {
			return false
		}
	}
	if end := f.DateRange.End; !end.IsZero() {
		d := date(s.RangeEnd, r)
		if !d.Valid() || !end.Valid() || d.Compare(end) > 0 {
			return false
		}
	}
	if f.FieldText != "" && !containsFold(str(s.FieldText, r), NormalizeQuery(f.FieldText)) {
		return false
	}
	if f.MinValue != nil {
		if s.Value == nil {
			return false
		}
		v, ok := s.Value(r)
		if !ok || v.LessThan(*f.MinValue) {
			return false
		}
	}
	return true
}

func str[T any](get func(T) string, r T) string {
	if get == nil {
		return ""
	}
	return get(r)
}

func date[T any](get func(T) model.Date, r T) model.Date {
	if get == nil {
		return model.Date{}
	}
	return get(r)
}
