// Package client provides a transport-agnostic interface for the Kigo
// service, with an HTTP/JSON implementation of the whole REST API and a
// gRPC implementation of its read surface.
package client

import (
	"context"

	"github.com/kigopro/kigo/internal/listing"
	"github.com/kigopro/kigo/internal/model"
)

// Client is the read surface every CLI list command uses. It is
// implemented by HTTPClient (default) and GRPCClient.
type Client interface {
	// Lists
	SearchCustomers(ctx context.Context, req ListRequest) (*listing.Response[*model.Customer], error)
	ListTokens(ctx context.Context, customerID string, req ListRequest) (*listing.Response[*model.Token], error)
	ListCatalog(ctx context.Context, req ListRequest) (*listing.Response[*model.Token], error)
	ListAds(ctx context.Context, req ListRequest) (*listing.Response[*model.Ad], error)
	ListAdGroups(ctx context.Context, req ListRequest) (*listing.Response[*model.AdGroup], error)
	ListCampaigns(ctx context.Context, req ListRequest) (*listing.Response[*model.Campaign], error)

	GetToken(ctx context.Context, id string) (*model.Token, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// ListRequest selects one page of a collection. The server expands
// Preset first and then lays the explicit filters over it.
type ListRequest struct {
	Preset string
	model.ListRequest
}

// SupportRequest is the body of a reissue or dispute.
type SupportRequest struct {
	Reason     string `json:"reason"`
	Comments   string `json:"comments,omitempty"`
	NotHonored bool   `json:"not_honored,omitempty"`
	Actor      string `json:"actor,omitempty"`
}

// ReissueResponse holds the expired original and its replacement.
type ReissueResponse struct {
	Original    *model.Token `json:"original"`
	Replacement *model.Token `json:"replacement"`
}

// PresetInfo describes one preset and the filters it expands to today.
type PresetInfo struct {
	Name        string            `json:"name"`
	Label       string            `json:"label"`
	Description string            `json:"description,omitempty"`
	Filters     model.FilterState `json:"filters"`
}
