package client

import (
	"context"

	"github.com/kigopro/kigo/internal/listing"
	"github.com/kigopro/kigo/internal/model"
)

// SourceFunc adapts a Client list call to viewstate.Source so an
// interactive view can page through a remote collection.
type SourceFunc[T any] func(ctx context.Context, req ListRequest) (*listing.Response[T], error)

// List fetches one page.
func (f SourceFunc[T]) List(ctx context.Context, req model.ListRequest) (listing.Page[T], error) {
	resp, err := f(ctx, ListRequest{ListRequest: req})
	if err != nil {
		return listing.Page[T]{}, err
	}
	return resp.Page(), nil
}
