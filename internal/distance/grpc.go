package distance

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	grpcServiceName      = "distance.v1.DistanceService"
	grpcGetDistance      = "GetDistance"
	grpcGetDistanceFully = "/" + grpcServiceName + "/" + grpcGetDistance
)

// GRPCService queries a gRPC distance service. The request is a
// google.protobuf.Struct {"from", "to"}; the response a
// google.protobuf.Int64Value.
type GRPCService struct {
	endpoint string
	conn     *grpc.ClientConn
	log      *slog.Logger
}

// NewGRPCService creates a client for the given endpoint. TLS is used for
// https:// endpoints and port 443; extra dial options are appended.
func NewGRPCService(endpoint string, logger *slog.Logger, extra ...grpc.DialOption) (*GRPCService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	target := endpoint
	var opts []grpc.DialOption

	if strings.HasPrefix(endpoint, "https://") || strings.HasSuffix(endpoint, ":443") {
		creds := credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
		opts = append(opts, grpc.WithTransportCredentials(creds))
		target = strings.TrimPrefix(target, "https://")
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
		target = strings.TrimPrefix(target, "http://")
	}
	opts = append(opts, extra...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create grpc client for %s: %w", target, err)
	}

	return &GRPCService{
		endpoint: endpoint,
		conn:     conn,
		log:      logger.With("component", "grpc-distance", "endpoint", endpoint),
	}, nil
}

func (s *GRPCService) QueryDistance(ctx context.Context, from, to string) (int, error) {
	req, err := structpb.NewStruct(map[string]any{"from": from, "to": to})
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	resp := &wrapperspb.Int64Value{}
	if err := s.conn.Invoke(ctx, grpcGetDistanceFully, req, resp); err != nil {
		if delay := RetryDelay(err); delay > 0 {
			s.log.Debug("Server suggested retry delay", "from", from, "to", to, "delay", delay)
		}
		return 0, fmt.Errorf("grpc get distance: %w", err)
	}

	return int(resp.GetValue()), nil
}

// Close closes the connection.
func (s *GRPCService) Close() error {
	return s.conn.Close()
}

// RetryDelay extracts the RetryInfo delay attached to a gRPC status, if any.
func RetryDelay(err error) time.Duration {
	st, ok := status.FromError(err)
	if !ok {
		return 0
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.RetryInfo); ok {
			return info.GetRetryDelay().AsDuration()
		}
	}
	return 0
}

// RegisterGRPCServer exposes svc as distance.v1.DistanceService on s.
func RegisterGRPCServer(s grpc.ServiceRegistrar, svc Service) {
	desc := grpc.ServiceDesc{
		ServiceName: grpcServiceName,
		HandlerType: (*Service)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: grpcGetDistance,
				Handler:    getDistanceHandler,
			},
		},
		Streams: []grpc.StreamDesc{},
	}
	s.RegisterService(&desc, svc)
}

func getDistanceHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := &structpb.Struct{}
	if err := dec(in); err != nil {
		return nil, err
	}

	handler := func(ctx context.Context, req any) (any, error) {
		fields := req.(*structpb.Struct).GetFields()
		from := fields["from"].GetStringValue()
		to := fields["to"].GetStringValue()
		if from == "" || to == "" {
			return nil, status.Error(codes.InvalidArgument, "from and to are required")
		}

		d, err := srv.(Service).QueryDistance(ctx, from, to)
		if err != nil {
			if _, ok := status.FromError(err); ok {
				return nil, err
			}
			return nil, status.Error(codes.Unavailable, err.Error())
		}
		return wrapperspb.Int64(int64(d)), nil
	}

	if interceptor == nil {
		return handler(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: grpcGetDistanceFully}
	return interceptor(ctx, in, info, handler)
}
