package handler

import (
	"fmt"
	"math"
	"strconv"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// fieldReader は Struct から型付きの値を取り出します。
// キーが無い場合と null の場合は未指定 (nil) として扱います。
type fieldReader struct {
	fields map[string]*structpb.Value
}

func newFieldReader(s *structpb.Struct) fieldReader {
	return fieldReader{fields: s.GetFields()}
}

func (r fieldReader) lookup(name string) (*structpb.Value, bool) {
	v, ok := r.fields[name]
	if !ok || v == nil {
		return nil, false
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, false
	}
	return v, true
}

func (r fieldReader) String(name string) (*string, error) {
	v, ok := r.lookup(name)
	if !ok {
		return nil, nil
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return nil, invalidField(name, "must be a string")
	}
	s := sv.StringValue
	return &s, nil
}

func (r fieldReader) Number(name string) (*float64, error) {
	v, ok := r.lookup(name)
	if !ok {
		return nil, nil
	}
	nv, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return nil, invalidField(name, "must be a number")
	}
	n := nv.NumberValue
	return &n, nil
}

// Integer は整数値を読み取ります。10 進文字列も受け付けます。
func (r fieldReader) Integer(name string) (*int64, error) {
	v, ok := r.lookup(name)
	if !ok {
		return nil, nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		n := kind.NumberValue
		if n != math.Trunc(n) || math.Abs(n) > 1<<53 {
			return nil, invalidField(name, "must be an integer")
		}
		i := int64(n)
		return &i, nil
	case *structpb.Value_StringValue:
		i, err := strconv.ParseInt(kind.StringValue, 10, 64)
		if err != nil {
			return nil, invalidField(name, "must be an integer")
		}
		return &i, nil
	default:
		return nil, invalidField(name, "must be an integer")
	}
}

func invalidField(name, reason string) error {
	return status.Error(codes.InvalidArgument, fmt.Sprintf("%s: %s", name, reason))
}
