package control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "hsu.sys.SysService"

// SysServiceServer is the server side of the control service. Messages are
// protobuf well-known types, so no generated code is required.
type SysServiceServer interface {
	Status(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	Kill(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	GetUID(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error)
	SetUID(context.Context, *wrapperspb.Int64Value) (*wrapperspb.Int64Value, error)
	GetGID(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error)
	SetGID(context.Context, *wrapperspb.Int64Value) (*wrapperspb.Int64Value, error)
	GetPID(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error)
	GetPPID(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error)
	GetPGID(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error)
	SetPGID(context.Context, *wrapperspb.Int64Value) (*wrapperspb.Int64Value, error)
	GetPriority(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error)
	SetPriority(context.Context, *wrapperspb.Int64Value) (*wrapperspb.Int64Value, error)
	SetRlimits(context.Context, *structpb.ListValue) (*emptypb.Empty, error)
	GetRlimits(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	ChangeProfile(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	AppArmorEnabled(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	AppArmorContext(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SafeBuild(context.Context, *emptypb.Empty) (*wrapperspb.BoolValue, error)
	Interactive(context.Context, *emptypb.Empty) (*wrapperspb.BoolValue, error)
	SetInteractive(context.Context, *wrapperspb.BoolValue) (*wrapperspb.BoolValue, error)
	SetTempDir(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// unary builds a method descriptor in the shape protoc-gen-go-grpc emits
func unary[Req proto.Message, Resp proto.Message](
	name string,
	newReq func() Req,
	call func(SysServiceServer, context.Context, Req) (Resp, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			server := srv.(SysServiceServer)
			if interceptor == nil {
				return call(server, ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod(name),
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(server, ctx, req.(Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func newEmpty() *emptypb.Empty           { return &emptypb.Empty{} }
func newInt64() *wrapperspb.Int64Value   { return &wrapperspb.Int64Value{} }
func newBool() *wrapperspb.BoolValue     { return &wrapperspb.BoolValue{} }
func newString() *wrapperspb.StringValue { return &wrapperspb.StringValue{} }
func newStruct() *structpb.Struct        { return &structpb.Struct{} }
func newList() *structpb.ListValue       { return &structpb.ListValue{} }

var sysServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SysServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Status", newEmpty, SysServiceServer.Status),
		unary("Kill", newStruct, SysServiceServer.Kill),
		unary("GetUID", newEmpty, SysServiceServer.GetUID),
		unary("SetUID", newInt64, SysServiceServer.SetUID),
		unary("GetGID", newEmpty, SysServiceServer.GetGID),
		unary("SetGID", newInt64, SysServiceServer.SetGID),
		unary("GetPID", newEmpty, SysServiceServer.GetPID),
		unary("GetPPID", newEmpty, SysServiceServer.GetPPID),
		unary("GetPGID", newEmpty, SysServiceServer.GetPGID),
		unary("SetPGID", newInt64, SysServiceServer.SetPGID),
		unary("GetPriority", newEmpty, SysServiceServer.GetPriority),
		unary("SetPriority", newInt64, SysServiceServer.SetPriority),
		unary("SetRlimits", newList, SysServiceServer.SetRlimits),
		unary("GetRlimits", newEmpty, SysServiceServer.GetRlimits),
		unary("ChangeProfile", newString, SysServiceServer.ChangeProfile),
		unary("AppArmorEnabled", newEmpty, SysServiceServer.AppArmorEnabled),
		unary("AppArmorContext", newEmpty, SysServiceServer.AppArmorContext),
		unary("SafeBuild", newEmpty, SysServiceServer.SafeBuild),
		unary("Interactive", newEmpty, SysServiceServer.Interactive),
		unary("SetInteractive", newBool, SysServiceServer.SetInteractive),
		unary("SetTempDir", newString, SysServiceServer.SetTempDir),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hsu/sys/sys_service.proto",
}

// invoke performs one unary call and returns the filled response
func invoke[Resp proto.Message](ctx context.Context, cc grpc.ClientConnInterface, name string, in proto.Message, out Resp) (Resp, error) {
	if err := cc.Invoke(ctx, fullMethod(name), in, out); err != nil {
		var zero Resp
		return zero, err
	}
	return out, nil
}
