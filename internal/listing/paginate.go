package listing

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kigopro/kigo/internal/model"
)

// Page is one page of an ordered, filtered result.
type Page[T any] struct {
	Items       []T `json:"items"`
	StartIndex  int `json:"start_index"`
	EndIndex    int `json:"end_index"`
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
}

// PageNumbers returns the page-number strip for this page.
func (p Page[T]) PageNumbers() []PageNumber {
	return PageNumbers(p.CurrentPage, p.TotalPages)
}

// TotalPages is ceil(total/size).
func TotalPages(total, size int) int {
	if size < 1 || total < 1 {
		return 0
	}
	return (total + size - 1) / size
}

// ClampPage clamps page into [1, max(1, totalPages)].
func ClampPage(page, totalPages int) int {
	return max(1, min(page, max(1, totalPages)))
}

func pageSize(size int) int {
	if size < 1 {
		return model.DefaultPageSize
	}
	return size
}

// Paginate slices rs into the requested page. Out-of-range pages are
// clamped, never reported as errors, and an empty input yields an empty
// (non-nil) Items slice.
func Paginate[T any](rs []T, p model.Pagination) Page[T] {
	size := pageSize(p.PageSize)
	total := len(rs)
	pages := TotalPages(total, size)
	cur := ClampPage(p.CurrentPage, pages)
	start := min((cur-1)*size, total)
	end := min(start+size, total)
	items := make([]T, end-start)
	copy(items, rs[start:end])
	return Page[T]{
		Items:       items,
		StartIndex:  start,
		EndIndex:    end,
		TotalItems:  total,
		TotalPages:  pages,
		CurrentPage: cur,
		PageSize:    size,
	}
}

// PageOf wraps items that were already sliced elsewhere (for example by a
// SQL LIMIT/OFFSET) in a Page. total is the unpaginated count.
func PageOf[T any](items []T, total int, p model.Pagination) Page[T] {
	size := pageSize(p.PageSize)
	pages := TotalPages(total, size)
	cur := ClampPage(p.CurrentPage, pages)
	start := min((cur-1)*size, total)
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:       items,
		StartIndex:  start,
		EndIndex:    start + len(items),
		TotalItems:  total,
		TotalPages:  pages,
		CurrentPage: cur,
		PageSize:    size,
	}
}

// Offset returns the row offset of the clamped page for a known total.
func Offset(p model.Pagination, total int) int {
	size := pageSize(p.PageSize)
	return (ClampPage(p.CurrentPage, TotalPages(total, size)) - 1) * size
}

// PageNumber is an entry of the page-number strip: a page, or Ellipsis
// marking a gap.
type PageNumber int

// Ellipsis marks skipped pages.
const Ellipsis PageNumber = 0

// IsEllipsis reports whether n marks a gap.
func (n PageNumber) IsEllipsis() bool { return n == Ellipsis }

func (n PageNumber) String() string {
	if n.IsEllipsis() {
		return "..."
	}
	return strconv.Itoa(int(n))
}

// MarshalJSON renders pages as numbers and gaps as "ellipsis".
func (n PageNumber) MarshalJSON() ([]byte, error) {
	if n.IsEllipsis() {
		return []byte(`"ellipsis"`), nil
	}
	return []byte(strconv.Itoa(int(n))), nil
}

// UnmarshalJSON accepts a positive number or "ellipsis".
func (n *PageNumber) UnmarshalJSON(data []byte) error {
	if string(data) == `"ellipsis"` {
		*n = Ellipsis
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil || v < 1 {
		return fmt.Errorf("page number: invalid value %s", data)
	}
	*n = PageNumber(v)
	return nil
}

// PageNumbers builds the page strip: the first and last page, the current
// page with one neighbour on each side, and an ellipsis for each gap.
//
//	PageNumbers(1, 1)  == [1]
//	PageNumbers(5, 10) == [1 ... 4 5 6 ... 10]
func PageNumbers(current, total int) []PageNumber {
	total = max(1, total)
	current = ClampPage(current, total)
	out := []PageNumber{1}
	if current > 3 {
		out = append(out, Ellipsis)
	}
	for p := max(2, current-1); p <= min(total-1, current+1); p++ {
		out = append(out, PageNumber(p))
	}
	if current < total-2 {
		out = append(out, Ellipsis)
	}
	if total > 1 {
		out = append(out, PageNumber(total))
	}
	return out
}
