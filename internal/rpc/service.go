// Package rpc exposes the tutoring pipeline over gRPC. Requests and
// responses are google.protobuf.Struct values, so no generated stubs are
// needed on either side.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "mathmentor.MentorService"

// Method names.
const (
	MethodParse    = "Parse"
	MethodSolve    = "Solve"
	MethodRetrieve = "Retrieve"
	MethodApprove  = "Approve"
)

// #region server-interface
// MentorServer is the server API for MentorService.
type MentorServer interface {
	Parse(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Solve(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Retrieve(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Approve(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterMentorServer registers srv on s.
func RegisterMentorServer(s grpc.ServiceRegistrar, srv MentorServer) {
	s.RegisterService(&serviceDesc, srv)
}

// #endregion server-interface

// #region service-desc
type unaryCall func(MentorServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MentorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodParse, Handler: handler(MethodParse, MentorServer.Parse)},
		{MethodName: MethodSolve, Handler: handler(MethodSolve, MentorServer.Solve)},
		{MethodName: MethodRetrieve, Handler: handler(MethodRetrieve, MentorServer.Retrieve)},
		{MethodName: MethodApprove, Handler: handler(MethodApprove, MentorServer.Approve)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mathmentor/mentor.proto",
}

func fullMethod(method string) string { return "/" + ServiceName + "/" + method }

func handler(method string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MentorServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(srv.(MentorServer), ctx, req.(*structpb.Struct))
		})
	}
}

// #endregion service-desc
