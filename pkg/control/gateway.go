package control

import (
	"context"

	"github.com/core-tools/hsu-sys/pkg/apparmor"
	"github.com/core-tools/hsu-sys/pkg/domain"
	"github.com/core-tools/hsu-sys/pkg/logging"
	"github.com/core-tools/hsu-sys/pkg/rlimits"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func NewGRPCClientGateway(grpcClientConnection grpc.ClientConnInterface, logger logging.Logger) domain.Contract {
	return &grpcClientGateway{
		conn:   grpcClientConnection,
		logger: logger,
	}
}

type grpcClientGateway struct {
	conn   grpc.ClientConnInterface
	logger logging.Logger
}

func (gw *grpcClientGateway) done(method string, err error) error {
	if err != nil {
		gw.logger.Errorf("%s client gateway: %v", method, err)
		return fromStatus(err)
	}
	gw.logger.Debugf("%s client gateway done", method)
	return nil
}

func (gw *grpcClientGateway) callInt(ctx context.Context, method string, in proto.Message) (int, error) {
	out, err := invoke(ctx, gw.conn, method, in, &wrapperspb.Int64Value{})
	if err = gw.done(method, err); err != nil {
		return 0, err
	}
	return int(out.GetValue()), nil
}

func (gw *grpcClientGateway) callBool(ctx context.Context, method string, in proto.Message) (bool, error) {
	out, err := invoke(ctx, gw.conn, method, in, &wrapperspb.BoolValue{})
	if err = gw.done(method, err); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}

func (gw *grpcClientGateway) Status(ctx context.Context) (string, error) {
	out, err := invoke(ctx, gw.conn, "Status", &emptypb.Empty{}, &wrapperspb.StringValue{})
	if err = gw.done("Status", err); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}

func (gw *grpcClientGateway) Kill(ctx context.Context, pid int, signal int) error {
	_, err := invoke(ctx, gw.conn, "Kill", encodeKill(pid, signal), &emptypb.Empty{})
	return gw.done("Kill", err)
}

func (gw *grpcClientGateway) GetUID(ctx context.Context) (int, error) {
	return gw.callInt(ctx, "GetUID", &emptypb.Empty{})
}

func (gw *grpcClientGateway) SetUID(ctx context.Context, uid int) (int, error) {
	return gw.callInt(ctx, "SetUID", wrapperspb.Int64(int64(uid)))
}

func (gw *grpcClientGateway) GetGID(ctx context.Context) (int, error) {
	return gw.callInt(ctx, "GetGID", &emptypb.Empty{})
}

func (gw *grpcClientGateway) SetGID(ctx context.Context, gid int) (int, error) {
	return gw.callInt(ctx, "SetGID", wrapperspb.Int64(int64(gid)))
}

func (gw *grpcClientGateway) GetPID(ctx context.Context) (int, error) {
	return gw.callInt(ctx, "GetPID", &emptypb.Empty{})
}

func (gw *grpcClientGateway) GetPPID(ctx context.Context) (int, error) {
	return gw.callInt(ctx, "GetPPID", &emptypb.Empty{})
}

func (gw *grpcClientGateway) GetPGID(ctx context.Context) (int, error) {
	return gw.callInt(ctx, "GetPGID", &emptypb.Empty{})
}

func (gw *grpcClientGateway) SetPGID(ctx context.Context, pgid int) (int, error) {
	return gw.callInt(ctx, "SetPGID", wrapperspb.Int64(int64(pgid)))
}

func (gw *grpcClientGateway) GetPriority(ctx context.Context) (int, error) {
	return gw.callInt(ctx, "GetPriority", &emptypb.Empty{})
}

func (gw *grpcClientGateway) SetPriority(ctx context.Context, priority int) (int, error) {
	return gw.callInt(ctx, "SetPriority", wrapperspb.Int64(int64(priority)))
}

func (gw *grpcClientGateway) SetRlimits(ctx context.Context, values []float64) error {
	_, err := invoke(ctx, gw.conn, "SetRlimits", encodeLimitValues(values), &emptypb.Empty{})
	return gw.done("SetRlimits", err)
}

func (gw *grpcClientGateway) GetRlimits(ctx context.Context) ([]rlimits.Limit, error) {
	out, err := invoke(ctx, gw.conn, "GetRlimits", &emptypb.Empty{}, &structpb.ListValue{})
	if err = gw.done("GetRlimits", err); err != nil {
		return nil, err
	}
	return decodeLimits(out)
}

func (gw *grpcClientGateway) ChangeProfile(ctx context.Context, profile string) error {
	_, err := invoke(ctx, gw.conn, "ChangeProfile", wrapperspb.String(profile), &emptypb.Empty{})
	return gw.done("ChangeProfile", err)
}

func (gw *grpcClientGateway) AppArmorEnabled(ctx context.Context) (bool, bool, error) {
	out, err := invoke(ctx, gw.conn, "AppArmorEnabled", &emptypb.Empty{}, &structpb.Struct{})
	if err = gw.done("AppArmorEnabled", err); err != nil {
		return false, false, err
	}
	fields := out.GetFields()
	return fields["enabled"].GetBoolValue(), fields["supported"].GetBoolValue(), nil
}

func (gw *grpcClientGateway) AppArmorContext(ctx context.Context) (apparmor.SecurityContext, bool, error) {
	out, err := invoke(ctx, gw.conn, "AppArmorContext", &emptypb.Empty{}, &structpb.Struct{})
	if err = gw.done("AppArmorContext", err); err != nil {
		return apparmor.SecurityContext{}, false, err
	}
	secCtx, ok := decodeContext(out)
	return secCtx, ok, nil
}

func (gw *grpcClientGateway) SafeBuild(ctx context.Context) (bool, error) {
	return gw.callBool(ctx, "SafeBuild", &emptypb.Empty{})
}

func (gw *grpcClientGateway) Interactive(ctx context.Context) (bool, error) {
	return gw.callBool(ctx, "Interactive", &emptypb.Empty{})
}

func (gw *grpcClientGateway) SetInteractive(ctx context.Context, interactive bool) (bool, error) {
	return gw.callBool(ctx, "SetInteractive", wrapperspb.Bool(interactive))
}

func (gw *grpcClientGateway) SetTempDir(ctx context.Context, path string) (string, error) {
	out, err := invoke(ctx, gw.conn, "SetTempDir", wrapperspb.String(path), &wrapperspb.StringValue{})
	if err = gw.done("SetTempDir", err); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}
