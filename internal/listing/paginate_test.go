package listing

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kigopro/kigo/internal/model"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPaginate_Indices(t *testing.T) {
	page := Paginate(seq(23), model.Pagination{CurrentPage: 3, PageSize: 10})
	want := Page[int]{
		Items:       []int{20, 21, 22},
		StartIndex:  20,
		EndIndex:    23,
		TotalItems:  23,
		TotalPages:  3,
		CurrentPage: 3,
		PageSize:    10,
	}
	if diff := cmp.Diff(want, page); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestPaginate_Coverage(t *testing.T) {
	for _, n := range []int{0, 1, 4, 5, 6, 23, 50} {
		for _, size := range []int{1, 3, 5, 10, 50} {
			records := seq(n)
			total := TotalPages(n, size)
			var got []int
			for p := 1; p <= total; p++ {
				page := Paginate(records, model.Pagination{CurrentPage: p, PageSize: size})
				if len(page.Items) > size {
					t.Fatalf("n=%d size=%d page=%d: %d items", n, size, p, len(page.Items))
				}
				got = append(got, page.Items...)
			}
			if !slices.Equal(got, records) && !(n == 0 && len(got) == 0) {
				t.Errorf("n=%d size=%d: pages concatenate to %v", n, size, got)
			}
		}
	}
}

func TestPaginate_Empty(t *testing.T) {
	for _, cur := range []int{-3, 0, 1, 7} {
		page := Paginate([]string{}, model.Pagination{CurrentPage: cur, PageSize: 5})
		if page.Items == nil || len(page.Items) != 0 {
			t.Errorf("page %d: Items = %#v, want empty non-nil", cur, page.Items)
		}
		if page.TotalPages != 0 || page.CurrentPage != 1 || page.StartIndex != 0 || page.EndIndex != 0 {
			t.Errorf("page %d: %+v", cur, page)
		}
	}
	data, err := json.Marshal(Paginate[string](nil, model.Pagination{}))
	if err != nil {
		t.Fatal(err)
	}
	var back map[string]any
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if items, ok := back["items"].([]any); !ok || len(items) != 0 {
		t.Errorf("items JSON = %v, want []", back["items"])
	}
}

func TestPaginate_ClampsOutOfRange(t *testing.T) {
	page := Paginate(seq(12), model.Pagination{CurrentPage: 9, PageSize: 5})
	if page.CurrentPage != 3 || page.StartIndex != 10 || len(page.Items) != 2 {
		t.Errorf("page = %+v", page)
	}
	page = Paginate(seq(12), model.Pagination{CurrentPage: 0, PageSize: 0})
	if page.CurrentPage != 1 || page.PageSize != model.DefaultPageSize || len(page.Items) != 10 {
		t.Errorf("defaults: page = %+v", page)
	}
}

func TestPageOf(t *testing.T) {
	page := PageOf([]string{"k", "l"}, 12, model.Pagination{CurrentPage: 3, PageSize: 5})
	if page.StartIndex != 10 || page.EndIndex != 12 || page.TotalPages != 3 || page.CurrentPage != 3 {
		t.Errorf("page = %+v", page)
	}
	if empty := PageOf[string](nil, 0, model.Pagination{}); empty.Items == nil {
		t.Error("PageOf(nil) Items is nil")
	}
	if got := Offset(model.Pagination{CurrentPage: 9, PageSize: 5}, 12); got != 10 {
		t.Errorf("Offset() = %d, want 10", got)
	}
}

func TestTotalPages(t *testing.T) {
	for _, tc := range []struct{ total, size, want int }{
		{0, 10, 0}, {1, 10, 1}, {10, 10, 1}, {11, 10, 2}, {5, 0, 0},
	} {
		if got := TotalPages(tc.total, tc.size); got != tc.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tc.total, tc.size, got, tc.want)
		}
	}
}

const gap = Ellipsis

func TestPageNumbers(t *testing.T) {
	for _, tc := range []struct {
		cur, total int
		want       []PageNumber
	}{
		{1, 1, []PageNumber{1}},
		{1, 0, []PageNumber{1}},
		{1, 2, []PageNumber{1, 2}},
		{2, 3, []PageNumber{1, 2, 3}},
		{1, 10, []PageNumber{1, 2, gap, 10}},
		{3, 10, []PageNumber{1, 2, 3, 4, gap, 10}},
		{4, 10, []PageNumber{1, gap, 3, 4, 5, gap, 10}},
		{5, 10, []PageNumber{1, gap, 4, 5, 6, gap, 10}},
		{7, 10, []PageNumber{1, gap, 6, 7, 8, gap, 10}},
		{8, 10, []PageNumber{1, gap, 7, 8, 9, 10}},
		{10, 10, []PageNumber{1, gap, 9, 10}},
		{99, 10, []PageNumber{1, gap, 9, 10}},
		{4, 5, []PageNumber{1, gap, 3, 4, 5}},
	} {
		if diff := cmp.Diff(tc.want, PageNumbers(tc.cur, tc.total)); diff != "" {
			t.Errorf("PageNumbers(%d, %d) (-want +got):\n%s", tc.cur, tc.total, diff)
		}
	}
}

func TestPageNumber_JSON(t *testing.T) {
	data, err := json.Marshal(PageNumbers(5, 10))
	if err != nil {
		t.Fatal(err)
	}
	const want = `[1,"ellipsis",4,5,6,"ellipsis",10]`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
	var back []PageNumber
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(PageNumbers(5, 10), back); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
	var bad PageNumber
	if err := json.Unmarshal([]byte(`0`), &bad); err == nil {
		t.Error("Unmarshal(0) succeeded")
	}
}
