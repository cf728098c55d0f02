package control

import (
	"math"
	"strconv"

	"github.com/core-tools/hsu-sys/pkg/apparmor"
	"github.com/core-tools/hsu-sys/pkg/errors"
	"github.com/core-tools/hsu-sys/pkg/rlimits"

	"google.golang.org/protobuf/types/known/structpb"
)

// Missing limit values travel as null, everything else as a number.
func encodeLimitValues(values []float64) *structpb.ListValue {
	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(values))}
	for _, v := range values {
		if math.IsNaN(v) {
			list.Values = append(list.Values, structpb.NewNullValue())
		} else {
			list.Values = append(list.Values, structpb.NewNumberValue(v))
		}
	}
	return list
}

func decodeLimitValues(list *structpb.ListValue) ([]float64, error) {
	values := make([]float64, 0, len(list.GetValues()))
	for _, v := range list.GetValues() {
		switch kind := v.GetKind().(type) {
		case *structpb.Value_NullValue:
			values = append(values, math.NaN())
		case *structpb.Value_NumberValue:
			values = append(values, kind.NumberValue)
		default:
			return nil, errors.NewValidationError("limit vector is not numeric", nil)
		}
	}
	return values, nil
}

// Soft and hard limits are sent as decimal strings since a double cannot
// carry RLIM_INFINITY exactly.
func encodeLimits(limits []rlimits.Limit) *structpb.ListValue {
	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(limits))}
	for _, l := range limits {
		list.Values = append(list.Values, structpb.NewStructValue(&structpb.Struct{
			Fields: map[string]*structpb.Value{
				"name":      structpb.NewStringValue(l.Name),
				"resource":  structpb.NewNumberValue(float64(l.Resource)),
				"supported": structpb.NewBoolValue(l.Supported),
				"soft":      structpb.NewStringValue(strconv.FormatUint(l.Soft, 10)),
				"hard":      structpb.NewStringValue(strconv.FormatUint(l.Hard, 10)),
			},
		}))
	}
	return list
}

func decodeLimits(list *structpb.ListValue) ([]rlimits.Limit, error) {
	limits := make([]rlimits.Limit, 0, len(list.GetValues()))
	for _, v := range list.GetValues() {
		fields := v.GetStructValue().GetFields()
		soft, err := strconv.ParseUint(fields["soft"].GetStringValue(), 10, 64)
		if err != nil {
			return nil, errors.NewInternalError("malformed soft limit", err)
		}
		hard, err := strconv.ParseUint(fields["hard"].GetStringValue(), 10, 64)
		if err != nil {
			return nil, errors.NewInternalError("malformed hard limit", err)
		}
		limits = append(limits, rlimits.Limit{
			Kind: rlimits.Kind{
				Name:      fields["name"].GetStringValue(),
				Resource:  int(fields["resource"].GetNumberValue()),
				Supported: fields["supported"].GetBoolValue(),
			},
			Soft: soft,
			Hard: hard,
		})
	}
	return limits, nil
}

func encodeKill(pid int, signal int) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"pid":    structpb.NewNumberValue(float64(pid)),
		"signal": structpb.NewNumberValue(float64(signal)),
	}}
}

func decodeKill(s *structpb.Struct) (int, int, error) {
	pid, ok := s.GetFields()["pid"]
	if !ok {
		return 0, 0, errors.NewValidationError("kill request needs a pid", nil)
	}
	signal, ok := s.GetFields()["signal"]
	if !ok {
		return 0, 0, errors.NewValidationError("kill request needs a signal", nil)
	}
	return int(pid.GetNumberValue()), int(signal.GetNumberValue()), nil
}

func encodeEnabled(enabled, supported bool) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"enabled":   structpb.NewBoolValue(enabled),
		"supported": structpb.NewBoolValue(supported),
	}}
}

func encodeContext(ctx apparmor.SecurityContext, ok bool) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"ok":    structpb.NewBoolValue(ok),
		"label": structpb.NewStringValue(ctx.Label),
		"mode":  structpb.NewStringValue(ctx.Mode),
	}}
}

func decodeContext(s *structpb.Struct) (apparmor.SecurityContext, bool) {
	fields := s.GetFields()
	return apparmor.SecurityContext{
		Label: fields["label"].GetStringValue(),
		Mode:  fields["mode"].GetStringValue(),
	}, fields["ok"].GetBoolValue()
}
