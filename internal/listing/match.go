// Package listing derives a displayed page of records from a collection, a
// free-text query, structured filters, a sort selection and a page cursor.
//
// Every function here is pure: records are never mutated and the current
// time is always passed in.
package listing

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeQuery trims surrounding white space and lower-cases s.
func NormalizeQuery(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// A Caser carries state between calls and must not be shared.
	return cases.Lower(language.Und).String(s)
}

// containsFold reports whether the normalized form of s contains q, which
// must already be normalized.
func containsFold(s, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(NormalizeQuery(s), q)
}

// Field extracts searchable text from a record: either one string or a
// list of strings where any element may match.
type Field[T any] struct {
	Name string
	one  func(T) string
	many func(T) []string
}

// Text declares a scalar searchable field.
func Text[T any](name string, get func(T) string) Field[T] {
	return Field[T]{Name: name, one: get}
}

// List declares an array field; a record matches if any element does.
func List[T any](name string, get func(T) []string) Field[T] {
	return Field[T]{Name: name, many: get}
}

func (f Field[T]) matches(r T, q string) bool {
	if f.one != nil {
		return containsFold(f.one(r), q)
	}
	if f.many == nil {
		return false
	}
	for _, v := range f.many(r) {
		if containsFold(v, q) {
			return true
		}
	}
	return false
}

// Values returns the field's raw values for r.
func (f Field[T]) Values(r T) []string {
	if f.one != nil {
		return []string{f.one(r)}
	}
	if f.many != nil {
		return f.many(r)
	}
	return nil
}

// MatchesQuery reports whether q is a case-insensitive substring of at least
// one field of r. An empty or blank query matches every record.
func MatchesQuery[T any](r T, q string, fields []Field[T]) bool {
	q = NormalizeQuery(q)
	if q == "" {
		return true
	}
	for _, f := range fields {
		if f.matches(r, q) {
			return true
		}
	}
	return false
}
