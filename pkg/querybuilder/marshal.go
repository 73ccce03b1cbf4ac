package querybuilder

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// GraphQLMarshaller is implemented by values that render themselves as a
// GraphQL literal, e.g. enums.
type GraphQLMarshaller interface {
	MarshalGQL(ctx context.Context) (string, error)
}

// MarshalGQL renders v as a GraphQL input literal.
func MarshalGQL(ctx context.Context, v any) (string, error) {
	if v == nil {
		return "null", nil
	}
	if m, ok := v.(GraphQLMarshaller); ok {
		return m.MarshalGQL(ctx)
	}
	return marshalValue(ctx, reflect.ValueOf(v))
}

func marshalValue(ctx context.Context, v reflect.Value) (string, error) {
	if v.CanInterface() {
		if m, ok := v.Interface().(GraphQLMarshaller); ok {
			return m.MarshalGQL(ctx)
		}
	}

	switch v.Kind() {
	case reflect.Invalid:
		return "null", nil
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return "null", nil
		}
		return marshalValue(ctx, v.Elem())
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64), nil
	case reflect.String:
		// GraphQL string escapes are a subset of JSON's
		quoted, err := json.Marshal(v.String())
		if err != nil {
			return "", err
		}
		return string(quoted), nil
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return "null", nil
		}
		elems := make([]string, v.Len())
		for i := range elems {
			elem, err := marshalValue(ctx, v.Index(i))
			if err != nil {
				return "", err
			}
			elems[i] = elem
		}
		return "[" + strings.Join(elems, ",") + "]", nil
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return "", fmt.Errorf("unsupported map key type %s", v.Type().Key())
		}
		if v.IsNil() {
			return "null", nil
		}
		keys := make([]string, 0, v.Len())
		for _, k := range v.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		fields := make([]string, len(keys))
		for i, k := range keys {
			val, err := marshalValue(ctx, v.MapIndex(reflect.ValueOf(k).Convert(v.Type().Key())))
			if err != nil {
				return "", err
			}
			fields[i] = k + ":" + val
		}
		return "{" + strings.Join(fields, ",") + "}", nil
	default:
		return "", fmt.Errorf("unsupported argument of kind %s", v.Kind())
	}
}
