package control

import (
	stderrors "errors"
	"strings"
	"syscall"

	"github.com/core-tools/hsu-sys/pkg/errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const errnoDetail = "errno"

// toStatus converts a domain error to a gRPC status. The message keeps the
// "<type>: " prefix of DomainError so fromStatus can restore the type.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	errorType, ok := errors.TypeOf(err)
	if !ok {
		return status.Error(codes.Unknown, err.Error())
	}
	st := status.New(codeFor(err, errorType), err.Error())
	if errno, ok := errnoOf(err); ok {
		detail := &structpb.Struct{Fields: map[string]*structpb.Value{
			errnoDetail: structpb.NewNumberValue(float64(errno)),
		}}
		if withDetail, derr := st.WithDetails(detail); derr == nil {
			st = withDetail
		}
	}
	return st.Err()
}

func errnoOf(err error) (syscall.Errno, bool) {
	var domainErr *errors.DomainError
	if !stderrors.As(err, &domainErr) {
		return 0, false
	}
	return domainErr.Errno()
}

// errnoFromDetails finds the OS error number toStatus attached, if any
func errnoFromDetails(st *status.Status) (syscall.Errno, bool) {
	for _, d := range st.Details() {
		detail, ok := d.(*structpb.Struct)
		if !ok {
			continue
		}
		if v, ok := detail.GetFields()[errnoDetail]; ok {
			return syscall.Errno(v.GetNumberValue()), true
		}
	}
	return 0, false
}

func codeFor(err error, errorType errors.ErrorType) codes.Code {
	switch errorType {
	case errors.ErrorTypeValidation:
		return codes.InvalidArgument
	case errors.ErrorTypeConfiguration:
		return codes.FailedPrecondition
	case errors.ErrorTypeUnsupported:
		return codes.Unimplemented
	case errors.ErrorTypeNotFound:
		return codes.NotFound
	case errors.ErrorTypeSyscall:
		if errno, ok := errnoOf(err); ok {
			switch errno {
			case syscall.EPERM, syscall.EACCES:
				return codes.PermissionDenied
			case syscall.ESRCH:
				return codes.NotFound
			case syscall.EINVAL:
				return codes.InvalidArgument
			}
		}
		return codes.Internal
	default:
		return codes.Internal
	}
}

var knownTypes = []errors.ErrorType{
	errors.ErrorTypeValidation,
	errors.ErrorTypeSyscall,
	errors.ErrorTypeConfiguration,
	errors.ErrorTypeUnsupported,
	errors.ErrorTypeNotFound,
	errors.ErrorTypeIO,
	errors.ErrorTypeInternal,
}

// fromStatus restores a DomainError from an RPC failure. An errno carried in
// the details becomes the cause again, so errors.Is works across the wire.
func fromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return errors.NewInternalError("rpc failed", err)
	}
	msg := st.Message()
	for _, t := range knownTypes {
		prefix := string(t) + ": "
		if strings.HasPrefix(msg, prefix) {
			msg = strings.TrimPrefix(msg, prefix)
			var cause error
			if errno, ok := errnoFromDetails(st); ok {
				msg = strings.TrimSuffix(msg, ": "+errno.Error())
				cause = errno
			}
			return errors.NewDomainError(t, msg, cause).
				WithContext("code", st.Code().String())
		}
	}
	return errors.NewInternalError("rpc failed", err).WithContext("code", st.Code().String())
}
