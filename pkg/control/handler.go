package control

import (
	"context"

	"github.com/core-tools/hsu-sys/pkg/domain"
	"github.com/core-tools/hsu-sys/pkg/logging"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func RegisterGRPCServerHandler(grpcServerRegistrar grpc.ServiceRegistrar, handler domain.Contract, logger logging.Logger) {
	grpcServerRegistrar.RegisterService(&sysServiceDesc, &grpcServerHandler{
		handler: handler,
		logger:  logger,
	})
}

var _ SysServiceServer = (*grpcServerHandler)(nil)

type grpcServerHandler struct {
	handler domain.Contract
	logger  logging.Logger
}

func (h *grpcServerHandler) done(method string, err error) error {
	if err != nil {
		h.logger.Errorf("%s server handler: %v", method, err)
		return toStatus(err)
	}
	h.logger.Debugf("%s server handler done", method)
	return nil
}

func (h *grpcServerHandler) intResult(method string, v int, err error) (*wrapperspb.Int64Value, error) {
	if err = h.done(method, err); err != nil {
		return nil, err
	}
	return wrapperspb.Int64(int64(v)), nil
}

func (h *grpcServerHandler) boolResult(method string, v bool, err error) (*wrapperspb.BoolValue, error) {
	if err = h.done(method, err); err != nil {
		return nil, err
	}
	return wrapperspb.Bool(v), nil
}

func (h *grpcServerHandler) Status(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	s, err := h.handler.Status(ctx)
	if err = h.done("Status", err); err != nil {
		return nil, err
	}
	return wrapperspb.String(s), nil
}

func (h *grpcServerHandler) Kill(ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
	pid, signal, err := decodeKill(in)
	if err == nil {
		err = h.handler.Kill(ctx, pid, signal)
	}
	if err = h.done("Kill", err); err != nil {
		return nil, err
	}
	return &emptypb.Empty{}, nil
}

func (h *grpcServerHandler) GetUID(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	v, err := h.handler.GetUID(ctx)
	return h.intResult("GetUID", v, err)
}

func (h *grpcServerHandler) SetUID(ctx context.Context, in *wrapperspb.Int64Value) (*wrapperspb.Int64Value, error) {
	v, err := h.handler.SetUID(ctx, int(in.GetValue()))
	return h.intResult("SetUID", v, err)
}

func (h *grpcServerHandler) GetGID(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	v, err := h.handler.GetGID(ctx)
	return h.intResult("GetGID", v, err)
}

func (h *grpcServerHandler) SetGID(ctx context.Context, in *wrapperspb.Int64Value) (*wrapperspb.Int64Value, error) {
	v, err := h.handler.SetGID(ctx, int(in.GetValue()))
	return h.intResult("SetGID", v, err)
}

func (h *grpcServerHandler) GetPID(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	v, err := h.handler.GetPID(ctx)
	return h.intResult("GetPID", v, err)
}

func (h *grpcServerHandler) GetPPID(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	v, err := h.handler.GetPPID(ctx)
	return h.intResult("GetPPID", v, err)
}

func (h *grpcServerHandler) GetPGID(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	v, err := h.handler.GetPGID(ctx)
	return h.intResult("GetPGID", v, err)
}

func (h *grpcServerHandler) SetPGID(ctx context.Context, in *wrapperspb.Int64Value) (*wrapperspb.Int64Value, error) {
	v, err := h.handler.SetPGID(ctx, int(in.GetValue()))
	return h.intResult("SetPGID", v, err)
}

func (h *grpcServerHandler) GetPriority(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	v, err := h.handler.GetPriority(ctx)
	return h.intResult("GetPriority", v, err)
}

func (h *grpcServerHandler) SetPriority(ctx context.Context, in *wrapperspb.Int64Value) (*wrapperspb.Int64Value, error) {
	v, err := h.handler.SetPriority(ctx, int(in.GetValue()))
	return h.intResult("SetPriority", v, err)
}

func (h *grpcServerHandler) SetRlimits(ctx context.Context, in *structpb.ListValue) (*emptypb.Empty, error) {
	values, err := decodeLimitValues(in)
	if err == nil {
		err = h.handler.SetRlimits(ctx, values)
	}
	if err = h.done("SetRlimits", err); err != nil {
		return nil, err
	}
	return &emptypb.Empty{}, nil
}

func (h *grpcServerHandler) GetRlimits(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	limits, err := h.handler.GetRlimits(ctx)
	if err = h.done("GetRlimits", err); err != nil {
		return nil, err
	}
	return encodeLimits(limits), nil
}

func (h *grpcServerHandler) ChangeProfile(ctx context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
	err := h.handler.ChangeProfile(ctx, in.GetValue())
	if err = h.done("ChangeProfile", err); err != nil {
		return nil, err
	}
	return &emptypb.Empty{}, nil
}

func (h *grpcServerHandler) AppArmorEnabled(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	enabled, supported, err := h.handler.AppArmorEnabled(ctx)
	if err = h.done("AppArmorEnabled", err); err != nil {
		return nil, err
	}
	return encodeEnabled(enabled, supported), nil
}

func (h *grpcServerHandler) AppArmorContext(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	secCtx, ok, err := h.handler.AppArmorContext(ctx)
	if err = h.done("AppArmorContext", err); err != nil {
		return nil, err
	}
	return encodeContext(secCtx, ok), nil
}

func (h *grpcServerHandler) SafeBuild(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BoolValue, error) {
	v, err := h.handler.SafeBuild(ctx)
	return h.boolResult("SafeBuild", v, err)
}

func (h *grpcServerHandler) Interactive(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BoolValue, error) {
	v, err := h.handler.Interactive(ctx)
	return h.boolResult("Interactive", v, err)
}

func (h *grpcServerHandler) SetInteractive(ctx context.Context, in *wrapperspb.BoolValue) (*wrapperspb.BoolValue, error) {
	v, err := h.handler.SetInteractive(ctx, in.GetValue())
	return h.boolResult("SetInteractive", v, err)
}

func (h *grpcServerHandler) SetTempDir(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	v, err := h.handler.SetTempDir(ctx, in.GetValue())
	if err = h.done("SetTempDir", err); err != nil {
		return nil, err
	}
	return wrapperspb.String(v), nil
}
