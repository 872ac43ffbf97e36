package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ProxyService method names.
const (
	ProxyService_ServiceName           = "webkitproxy.v1.ProxyService"
	ProxyService_Start_FullMethodName  = "/webkitproxy.v1.ProxyService/Start"
	ProxyService_Stop_FullMethodName   = "/webkitproxy.v1.ProxyService/Stop"
	ProxyService_Status_FullMethodName = "/webkitproxy.v1.ProxyService/Status"
)

// ProxyServiceClient is the client API for ProxyService.
type ProxyServiceClient interface {
	// Start launches the proxy unless it is already running.
	Start(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	// Stop interrupts the running proxy.
	Stop(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	// Status describes the supervised proxy.
	Status(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type proxyServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewProxyServiceClient returns a client bound to cc.
//
//nolint:ireturn // Mirrors generated client constructors.
func NewProxyServiceClient(cc grpc.ClientConnInterface) ProxyServiceClient {
	return &proxyServiceClient{cc: cc}
}

func (c *proxyServiceClient) Start(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ProxyService_Start_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *proxyServiceClient) Stop(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ProxyService_Stop_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *proxyServiceClient) Status(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ProxyService_Status_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// ProxyServiceServer is the server API for ProxyService.
// Implementations must embed UnimplementedProxyServiceServer.
type ProxyServiceServer interface {
	Start(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Stop(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Status(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	mustEmbedUnimplementedProxyServiceServer()
}

// UnimplementedProxyServiceServer answers every method with codes.Unimplemented.
type UnimplementedProxyServiceServer struct{}

func (UnimplementedProxyServiceServer) Start(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Start not implemented")
}

func (UnimplementedProxyServiceServer) Stop(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Stop not implemented")
}

func (UnimplementedProxyServiceServer) Status(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Status not implemented")
}

func (UnimplementedProxyServiceServer) mustEmbedUnimplementedProxyServiceServer() {}

// RegisterProxyServiceServer registers srv on s.
func RegisterProxyServiceServer(s grpc.ServiceRegistrar, srv ProxyServiceServer) {
	s.RegisterService(&ProxyService_ServiceDesc, srv)
}

type unaryMethod func(srv ProxyServiceServer, ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)

// unaryHandler adapts a ProxyServiceServer method to grpc.MethodHandler.
func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(emptypb.Empty)
		if err := dec(in); err != nil {
			return nil, err
		}

		server, _ := srv.(ProxyServiceServer)
		if interceptor == nil {
			return call(server, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			request, _ := req.(*emptypb.Empty)

			return call(server, ctx, request)
		}

		return interceptor(ctx, in, info, handler)
	}
}

// ProxyService_ServiceDesc is the grpc.ServiceDesc for ProxyService.
//
//nolint:gochecknoglobals // Service descriptors are package-level by convention.
var ProxyService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ProxyService_ServiceName,
	HandlerType: (*ProxyServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Start",
			Handler: unaryHandler(ProxyService_Start_FullMethodName, func(srv ProxyServiceServer, ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error) {
				return srv.Start(ctx, in)
			}),
		},
		{
			MethodName: "Stop",
			Handler: unaryHandler(ProxyService_Stop_FullMethodName, func(srv ProxyServiceServer, ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error) {
				return srv.Stop(ctx, in)
			}),
		},
		{
			MethodName: "Status",
			Handler: unaryHandler(ProxyService_Status_FullMethodName, func(srv ProxyServiceServer, ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error) {
				return srv.Status(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "webkitproxy/v1/proxy.proto",
}
