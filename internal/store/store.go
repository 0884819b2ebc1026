package store

import (
	"context"
	"errors"

	"github.com/kigopro/kigo/internal/listing"
	"github.com/kigopro/kigo/internal/model"
)

var (
	// ErrNotFound is returned by Get and Update methods for unknown IDs.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned by Create methods when the ID is taken.
	ErrConflict = errors.New("already exists")
)

// Store defines the persistence interface for the loyalty back office.
// List methods run the full filter/sort/paginate pipeline for the request
// and return one page.
type Store interface {
	// Customers
	CreateCustomer(ctx context.Context, c *model.Customer) error
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	SearchCustomers(ctx context.Context, req model.ListRequest) (listing.Page[*model.Customer], error)

	// Tokens. ListTokens lists the tokens held by one customer; ListCatalog
	// lists the tokens not held by anyone.
	CreateToken(ctx context.Context, t *model.Token) error
	GetToken(ctx context.Context, id string) (*model.Token, error)
	UpdateToken(ctx context.Context, t *model.Token) error
	ListTokens(ctx context.Context, customerID string, req model.ListRequest) (listing.Page[*model.Token], error)
	ListCatalog(ctx context.Context, req model.ListRequest) (listing.Page[*model.Token], error)

	// Ads
	CreateAd(ctx context.Context, a *model.Ad) error
	GetAd(ctx context.Context, id string) (*model.Ad, error)
	UpdateAd(ctx context.Context, a *model.Ad) error
	ListAds(ctx context.Context, req model.ListRequest) (listing.Page[*model.Ad], error)

	// Ad groups
	CreateAdGroup(ctx context.Context, g *model.AdGroup) error
	GetAdGroup(ctx context.Context, id string) (*model.AdGroup, error)
	UpdateAdGroup(ctx context.Context, g *model.AdGroup) error
	ListAdGroups(ctx context.Context, req model.ListRequest) (listing.Page[*model.AdGroup], error)

	// Campaigns. Status is derived from the dates as of the store's clock.
	CreateCampaign(ctx context.Context, c *model.Campaign) error
	GetCampaign(ctx context.Context, id string) (*model.Campaign, error)
	UpdateCampaign(ctx context.Context, c *model.Campaign) error
	ListCampaigns(ctx context.Context, req model.ListRequest) (listing.Page[*model.Campaign], error)

	// Events
	RecordEvent(ctx context.Context, e *model.Event) error
	ListEvents(ctx context.Context, entityID string) ([]*model.Event, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}

// collectPageSize is the page size Collect walks with.
const collectPageSize = 500

// Collect pages through a list method and returns every record in order.
func Collect[T any](ctx context.Context, list func(context.Context, model.ListRequest) (listing.Page[T], error), sort model.SortSpec) ([]T, error) {
	var out []T
	for page := 1; ; page++ {
		p, err := list(ctx, model.ListRequest{
			Sort:       sort,
			Pagination: model.Pagination{CurrentPage: page, PageSize: collectPageSize},
		})
		if err != nil {
			return nil, err
		}
		out = append(out, p.Items...)
		if p.CurrentPage >= p.TotalPages {
			return out, nil
		}
	}
}
