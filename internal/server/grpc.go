package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/kigopro/kigo/internal/kigov1"
	"github.com/kigopro/kigo/internal/listing"
	"github.com/kigopro/kigo/internal/model"
)

// NewGRPCServer creates a gRPC server with standard interceptors,
// registers the Kigo service, reflection, and returns the server ready to serve.
func NewGRPCServer(kigoServer *KigoServer, authToken string) *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor,
			LoggingInterceptor,
			AuthInterceptor(authToken),
		),
	)

	srv.RegisterService(&serviceDesc, kigoServer)
	reflection.Register(srv)

	return srv
}

// kigoService is the handler type serviceDesc checks registrations against.
type kigoService interface {
	ListTokens(context.Context, *kigov1.ListRequest) (*listing.Response[*model.Token], error)
	ListCatalog(context.Context, *kigov1.ListRequest) (*listing.Response[*model.Token], error)
	ListAds(context.Context, *kigov1.ListRequest) (*listing.Response[*model.Ad], error)
	ListAdGroups(context.Context, *kigov1.ListRequest) (*listing.Response[*model.AdGroup], error)
	ListCampaigns(context.Context, *kigov1.ListRequest) (*listing.Response[*model.Campaign], error)
	SearchCustomers(context.Context, *kigov1.ListRequest) (*listing.Response[*model.Customer], error)
	GetToken(context.Context, *kigov1.GetRequest) (*model.Token, error)
	Health(context.Context, *kigov1.HealthRequest) (*kigov1.HealthResponse, error)
}

var _ kigoService = (*KigoServer)(nil)

var serviceDesc = grpc.ServiceDesc{
	ServiceName: kigov1.ServiceName,
	HandlerType: (*kigoService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListTokens", Handler: unary(kigov1.MethodListTokens, kigoService.ListTokens)},
		{MethodName: "ListCatalog", Handler: unary(kigov1.MethodListCatalog, kigoService.ListCatalog)},
		{MethodName: "ListAds", Handler: unary(kigov1.MethodListAds, kigoService.ListAds)},
		{MethodName: "ListAdGroups", Handler: unary(kigov1.MethodListAdGroups, kigoService.ListAdGroups)},
		{MethodName: "ListCampaigns", Handler: unary(kigov1.MethodListCampaigns, kigoService.ListCampaigns)},
		{MethodName: "SearchCustomers", Handler: unary(kigov1.MethodSearchCustomers, kigoService.SearchCustomers)},
		{MethodName: "GetToken", Handler: unary(kigov1.MethodGetToken, kigoService.GetToken)},
		{MethodName: "Health", Handler: unary(kigov1.MethodHealth, kigoService.Health)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "kigo/v1/kigo.proto",
}

// unary adapts a typed method to a grpc.MethodDesc handler, routing the
// call through the interceptor chain the way generated code does.
func unary[Req, Resp any](fullMethod string, call func(kigoService, context.Context, *Req) (Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		svc := srv.(kigoService)
		if interceptor == nil {
			return call(svc, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(svc, ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// listRPC expands the request preset, runs fn and wraps the page.
func listRPC[T any](s *KigoServer, ctx context.Context, in *kigov1.ListRequest, presets *listing.Presets, fn func(context.Context, model.ListRequest) (listing.Page[T], error)) (*listing.Response[T], error) {
	req := in.ListRequest
	if in.Preset != "" {
		req.Filters = s.withPreset(presets, in.Preset, req.Filters)
	}
	page, err := list(s, ctx, req, fn)
	if err != nil {
		return nil, grpcError(err)
	}
	resp := listing.NewResponse(page)
	return &resp, nil
}

// ListTokens lists one customer's tokens.
func (s *KigoServer) ListTokens(ctx context.Context, in *kigov1.ListRequest) (*listing.Response[*model.Token], error) {
	return listRPC(s, ctx, in, listing.TokenPresets, func(ctx context.Context, req model.ListRequest) (listing.Page[*model.Token], error) {
		return s.store.ListTokens(ctx, in.CustomerID, req)
	})
}

// ListCatalog lists the unclaimed tokens.
func (s *KigoServer) ListCatalog(ctx context.Context, in *kigov1.ListRequest) (*listing.Response[*model.Token], error) {
	return listRPC(s, ctx, in, listing.TokenPresets, s.store.ListCatalog)
}

func (s *KigoServer) ListAds(ctx context.Context, in *kigov1.ListRequest) (*listing.Response[*model.Ad], error) {
	return listRPC(s, ctx, in, listing.AdPresets, s.store.ListAds)
}

func (s *KigoServer) ListAdGroups(ctx context.Context, in *kigov1.ListRequest) (*listing.Response[*model.AdGroup], error) {
	return listRPC(s, ctx, in, listing.AdGroupPresets, s.store.ListAdGroups)
}

func (s *KigoServer) ListCampaigns(ctx context.Context, in *kigov1.ListRequest) (*listing.Response[*model.Campaign], error) {
	return listRPC(s, ctx, in, listing.CampaignPresets, s.store.ListCampaigns)
}

func (s *KigoServer) SearchCustomers(ctx context.Context, in *kigov1.ListRequest) (*listing.Response[*model.Customer], error) {
	return listRPC(s, ctx, in, nil, s.store.SearchCustomers)
}

// GetToken returns one token.
func (s *KigoServer) GetToken(ctx context.Context, in *kigov1.GetRequest) (*model.Token, error) {
	t, err := s.store.GetToken(ctx, in.ID)
	return t, grpcError(err)
}

// Health returns the service health status.
func (s *KigoServer) Health(_ context.Context, _ *kigov1.HealthRequest) (*kigov1.HealthResponse, error) {
	return &kigov1.HealthResponse{Status: "ok"}, nil
}
