package grpcstore

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/datadao/storage"
)

// Server exposes a storage.Store over the Store gRPC service.
type Server struct {
	UnimplementedStoreServer
	Store storage.Store
}

func (s *Server) Set(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BoolValue, error) {
	if s == nil || s.Store == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing store")
	}
	md, _ := metadata.FromIncomingContext(ctx)
	key := first(md.Get(mdKey))
	if key == "" {
		return nil, status.Error(codes.InvalidArgument, "missing "+mdKey+" metadata")
	}
	var ttl time.Duration
	if raw := first(md.Get(mdTTL)); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			return nil, status.Errorf(codes.InvalidArgument, "invalid %s %q", mdTTL, raw)
		}
		ttl = d
	}
	if err := s.Store.Set(ctx, key, in.GetValue(), ttl); err != nil {
		return nil, mapErr(err)
	}
	return wrapperspb.Bool(true), nil
}

func (s *Server) Get(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	if s == nil || s.Store == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing store")
	}
	if in.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "empty key")
	}
	b, err := s.Store.Get(ctx, in.GetValue())
	if err != nil {
		return nil, mapErr(err)
	}
	return wrapperspb.Bytes(b), nil
}

func (s *Server) Has(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	if s == nil || s.Store == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing store")
	}
	return wrapperspb.Bool(s.Store.Has(ctx, in.GetValue())), nil
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}
