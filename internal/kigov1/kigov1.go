// Package kigov1 declares the kigo.v1.Kigo gRPC service: method names,
// request messages and the JSON codec both ends speak. Messages are plain
// Go structs; responses reuse the model and listing types.
package kigov1

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"

	"github.com/kigopro/kigo/internal/model"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "kigo.v1.Kigo"

// Full method names.
const (
	MethodListTokens      = "/" + ServiceName + "/ListTokens"
	MethodListCatalog     = "/" + ServiceName + "/ListCatalog"
	MethodListAds         = "/" + ServiceName + "/ListAds"
	MethodListAdGroups    = "/" + ServiceName + "/ListAdGroups"
	MethodListCampaigns   = "/" + ServiceName + "/ListCampaigns"
	MethodSearchCustomers = "/" + ServiceName + "/SearchCustomers"
	MethodGetToken        = "/" + ServiceName + "/GetToken"
	MethodHealth          = "/" + ServiceName + "/Health"
)

// ListRequest selects one page of a collection. CustomerID scopes
// ListTokens. Preset is expanded before Filters are applied over it.
type ListRequest struct {
	CustomerID string `json:"customer_id,omitempty"`
	Preset     string `json:"preset,omitempty"`
	model.ListRequest
}

// GetRequest names one record.
type GetRequest struct {
	ID string `json:"id"`
}

type HealthRequest struct{}

type HealthResponse struct {
	Status string `json:"status"`
}

// CodecName is the content subtype of the JSON codec: requests travel as
// application/grpc+json.
const CodecName = "json"

// Codec marshals messages as JSON.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (Codec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (Codec) Name() string                       { return CodecName }

func init() {
	encoding.RegisterCodec(Codec{})
}
