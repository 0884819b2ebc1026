package listing

// Pagination is the page metadata of a list response.
type Pagination struct {
	StartIndex  int `json:"start_index"`
	EndIndex    int `json:"end_index"`
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
}

// Response is the wire form of a page shared by the HTTP and gRPC APIs.
type Response[T any] struct {
	Items       []T          `json:"items"`
	Pagination  Pagination   `json:"pagination"`
	PageNumbers []PageNumber `json:"page_numbers"`
}

// NewResponse renders p for the wire.
func NewResponse[T any](p Page[T]) Response[T] {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	return Response[T]{
		Items: items,
		Pagination: Pagination{
			StartIndex:  p.StartIndex,
			EndIndex:    p.EndIndex,
			TotalItems:  p.TotalItems,
			TotalPages:  p.TotalPages,
			CurrentPage: p.CurrentPage,
			PageSize:    p.PageSize,
		},
		PageNumbers: p.PageNumbers(),
	}
}

// Page converts a decoded response back into a Page.
func (r Response[T]) Page() Page[T] {
	items := r.Items
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:       items,
		StartIndex:  r.Pagination.StartIndex,
		EndIndex:    r.Pagination.EndIndex,
		TotalItems:  r.Pagination.TotalItems,
		TotalPages:  r.Pagination.TotalPages,
		CurrentPage: r.Pagination.CurrentPage,
		PageSize:    r.Pagination.PageSize,
	}
}
