package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/kigopro/kigo/internal/kigov1"
	"github.com/kigopro/kigo/internal/listing"
	"github.com/kigopro/kigo/internal/model"
)

// GRPCClient implements Client using the gRPC transport.
type GRPCClient struct {
	conn *grpc.ClientConn
}

var _ Client = (*GRPCClient)(nil)

// NewGRPCClient connects to the given gRPC address and returns a client.
// When token is non-empty it is sent as a bearer token on every call.
func NewGRPCClient(addr, token string) (*GRPCClient, error) {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(kigov1.CodecName)),
	}
	if token != "" {
		opts = append(opts, grpc.WithUnaryInterceptor(bearerInterceptor(token)))
	}
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial: %w", err)
	}
	return &GRPCClient{conn: conn}, nil
}

func bearerInterceptor(token string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func invokeList[T any](c *GRPCClient, ctx context.Context, method, customerID string, req ListRequest) (*listing.Response[T], error) {
	in := &kigov1.ListRequest{CustomerID: customerID, Preset: req.Preset, ListRequest: req.ListRequest}
	var out listing.Response[T]
	if err := c.conn.Invoke(ctx, method, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *GRPCClient) SearchCustomers(ctx context.Context, req ListRequest) (*listing.Response[*model.Customer], error) {
	return invokeList[*model.Customer](c, ctx, kigov1.MethodSearchCustomers, "", req)
}

func (c *GRPCClient) ListTokens(ctx context.Context, customerID string, req ListRequest) (*listing.Response[*model.Token], error) {
	return invokeList[*model.Token](c, ctx, kigov1.MethodListTokens, customerID, req)
}

func (c *GRPCClient) ListCatalog(ctx context.Context, req ListRequest) (*listing.Response[*model.Token], error) {
	return invokeList[*model.Token](c, ctx, kigov1.MethodListCatalog, "", req)
}

func (c *GRPCClient) ListAds(ctx context.Context, req ListRequest) (*listing.Response[*model.Ad], error) {
	return invokeList[*model.Ad](c, ctx, kigov1.MethodListAds, "", req)
}

func (c *GRPCClient) ListAdGroups(ctx context.Context, req ListRequest) (*listing.Response[*model.AdGroup], error) {
	return invokeList[*model.AdGroup](c, ctx, kigov1.MethodListAdGroups, "", req)
}

func (c *GRPCClient) ListCampaigns(ctx context.Context, req ListRequest) (*listing.Response[*model.Campaign], error) {
	return invokeList[*model.Campaign](c, ctx, kigov1.MethodListCampaigns, "", req)
}

func (c *GRPCClient) GetToken(ctx context.Context, id string) (*model.Token, error) {
	var t model.Token
	if err := c.conn.Invoke(ctx, kigov1.MethodGetToken, &kigov1.GetRequest{ID: id}, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *GRPCClient) Health(ctx context.Context) (string, error) {
	var resp kigov1.HealthResponse
	if err := c.conn.Invoke(ctx, kigov1.MethodHealth, &kigov1.HealthRequest{}, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}
