package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "jobmate.board.v1.BoardService"

// BoardServiceServer is the server API for the board service. Messages are
// google.protobuf.Struct so clients need no generated stubs.
type BoardServiceServer interface {
	ListListings(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ToggleHide(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Unhide(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ToggleFavorite(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type structCall func(BoardServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call structCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BoardServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BoardServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes BoardService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BoardServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListListings", Handler: unaryHandler("ListListings", BoardServiceServer.ListListings)},
		{MethodName: "ToggleHide", Handler: unaryHandler("ToggleHide", BoardServiceServer.ToggleHide)},
		{MethodName: "Unhide", Handler: unaryHandler("Unhide", BoardServiceServer.Unhide)},
		{MethodName: "ToggleFavorite", Handler: unaryHandler("ToggleFavorite", BoardServiceServer.ToggleFavorite)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "jobmate/board/v1/board.proto",
}

// Register mounts srv and the standard health service on gs. The returned
// health server reports SERVING for the board service until shutdown.
func Register(gs *grpc.Server, srv BoardServiceServer) *health.Server {
	gs.RegisterService(&ServiceDesc, srv)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)
	return hs
}
