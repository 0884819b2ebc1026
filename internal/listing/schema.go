package listing

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kigopro/kigo/internal/model"
)

// Compare orders two records the way cmp.Compare does.
type Compare[T any] func(a, b T) int

// Schema describes how the pipeline reads one record type. Accessors that
// are nil read as empty values, so an active filter dimension with no
// accessor rejects every record.
type Schema[T any] struct {
	Name string

	// Search lists the fields the free-text query is matched against.
	Search []Field[T]

	Status func(T) string
	Type   func(T) string

	// RangeStart is compared against DateRange.Start and RangeEnd against
	// DateRange.End. Most records use the same date for both.
	RangeStart func(T) model.Date
	RangeEnd   func(T) model.Date

	// FieldText is the target of FilterState.FieldText.
	FieldText func(T) string

	// Value is the target of FilterState.MinValue; false means the record
	// has no comparable value.
	Value func(T) (decimal.Decimal, bool)

	Sorts       map[string]Compare[T]
	DefaultSort model.SortSpec

	// Idents are the identifiers usable in filter expressions.
	Idents map[string]Ident[T]

	Presets *Presets
}

// SortFields returns the sortable field names in a stable order.
func (s *Schema[T]) SortFields() []string {
	names := make([]string, 0, len(s.Sorts))
	for name := range s.Sorts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ResolveSort returns spec when its field is sortable, with an empty
// direction read as ascending, and the schema default otherwise.
func (s *Schema[T]) ResolveSort(spec model.SortSpec) model.SortSpec {
	if _, ok := s.Sorts[spec.Field]; !ok {
		return s.DefaultSort
	}
	if spec.Direction != model.Desc {
		spec.Direction = model.Asc
	}
	return spec
}

func (s *Schema[T]) comparator(spec model.SortSpec) Compare[T] {
	spec = s.ResolveSort(spec)
	c, ok := s.Sorts[spec.Field]
	if !ok {
		return nil
	}
	if spec.Direction == model.Desc {
		return func(a, b T) int { return -c(a, b) }
	}
	return c
}

// ByString orders by a string field, byte-wise.
func ByString[T any](get func(T) string) Compare[T] {
	return func(a, b T) int { return strings.Compare(get(a), get(b)) }
}

// ByFold orders by a string field, ignoring case.
func ByFold[T any](get func(T) string) Compare[T] {
	return func(a, b T) int {
		return strings.Compare(NormalizeQuery(get(a)), NormalizeQuery(get(b)))
	}
}

// ByNumber orders by any ordered field.
func ByNumber[T any, N cmp.Ordered](get func(T) N) Compare[T] {
	return func(a, b T) int { return cmp.Compare(get(a), get(b)) }
}

// ByBool orders false before true.
func ByBool[T any](get func(T) bool) Compare[T] {
	return func(a, b T) int {
		x, y := get(a), get(b)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	}
}

// ByDate orders by a date field. Unset and malformed dates sort before
// every valid date and tie with each other.
func ByDate[T any](get func(T) model.Date) Compare[T] {
	return func(a, b T) int {
		x, y := get(a), get(b)
		switch {
		case !x.Valid() && !y.Valid():
			return 0
		case !x.Valid():
			return -1
		case !y.Valid():
			return 1
		}
		return x.Compare(y)
	}
}

// ByDecimal orders by a decimal field. Records without a value sort first.
func ByDecimal[T any](get func(T) (decimal.Decimal, bool)) Compare[T] {
	return func(a, b T) int {
		x, okx := get(a)
		y, oky := get(b)
		switch {
		case !okx && !oky:
			return 0
		case !okx:
			return -1
		case !oky:
			return 1
		}
		return x.Cmp(y)
	}
}

// Then breaks ties in c with next.
func Then[T any](c, next Compare[T]) Compare[T] {
	return func(a, b T) int {
		if r := c(a, b); r != 0 {
			return r
		}
		return next(a, b)
	}
}
