package listing

import (
	"context"
	"fmt"
	"sync"

	"github.com/kigopro/kigo/internal/model"
)

// Run derives one page from records: structured filters, the optional
// filter expression, the text query, then sort and paginate. The only
// error is a malformed filter expression.
func Run[T any](records []T, req model.ListRequest, s *Schema[T]) (Page[T], error) {
	e, err := s.ParseFilter(req.Filter)
	if err != nil {
		return Page[T]{}, err
	}
	q := NormalizeQuery(req.Query)
	matched := make([]T, 0, len(records))
	for _, r := range records {
		if !EvaluateFilters(r, req.Filters, s) {
			continue
		}
		if e != nil {
			ok, err := EvaluateExpr(e, r, s)
			if err != nil {
				return Page[T]{}, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
			}
			if !ok {
				continue
			}
		}
		if !MatchesQuery(r, q, s.Search) {
			continue
		}
		matched = append(matched, r)
	}
	return Paginate(SortRecords(matched, req.Sort, s), req.Pagination), nil
}

// LocalSource serves pages from an in-memory collection.
type LocalSource[T any] struct {
	schema *Schema[T]

	mu      sync.RWMutex
	records []T
}

// NewLocalSource returns a source over records, which it does not copy.
func NewLocalSource[T any](records []T, schema *Schema[T]) *LocalSource[T] {
	return &LocalSource[T]{schema: schema, records: records}
}

// Replace swaps the underlying collection.
func (s *LocalSource[T]) Replace(records []T) {
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
}

// List runs the pipeline over the current collection.
func (s *LocalSource[T]) List(ctx context.Context, req model.ListRequest) (Page[T], error) {
	if err := ctx.Err(); err != nil {
		return Page[T]{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Run(s.records, req, s.schema)
}
