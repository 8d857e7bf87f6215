package templates

import (
	"fmt"
	"reflect"

	"github.com/goliatone/go-bower/pkg/sexp"
)

// ToNative converts a Map into the plain Go environment expr programs run
// against. Keys are the Symbol or String names; other keys use their
// formatted text.
func ToNative(env sexp.Map) map[string]any {
	out := make(map[string]any, env.Len())
	for _, entry := range env.Entries() {
		out[keyName(entry.Key)] = native(entry.Value)
	}
	return out
}

func native(v sexp.Value) any {
	switch x := v.(type) {
	case nil, sexp.Null:
		return nil
	case sexp.Bool:
		return bool(x)
	case sexp.Int:
		return int(x)
	case sexp.Float:
		return float64(x)
	case sexp.String:
		return string(x)
	case sexp.Symbol:
		return string(x)
	case sexp.List:
		return nativeSlice(x)
	case sexp.Vector:
		return nativeSlice(x)
	case sexp.Map:
		return ToNative(x)
	default:
		return nil
	}
}

func nativeSlice(items []sexp.Value) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = native(item)
	}
	return out
}

func keyName(key sexp.Value) string {
	switch k := key.(type) {
	case sexp.Symbol:
		return string(k)
	case sexp.String:
		return string(k)
	default:
		return sexp.Format(key)
	}
}

// FromNative converts the result of an expr program back into a Value.
// Slices become Lists, maps become Symbol-keyed Maps and Values pass
// through untouched.
func FromNative(v any) (sexp.Value, error) {
	switch x := v.(type) {
	case nil:
		return sexp.Null{}, nil
	case sexp.Value:
		return x, nil
	case bool:
		return sexp.Bool(x), nil
	case string:
		return sexp.String(x), nil
	case int:
		return sexp.Int(x), nil
	case int8:
		return sexp.Int(x), nil
	case int16:
		return sexp.Int(x), nil
	case int32:
		return sexp.Int(x), nil
	case int64:
		return sexp.Int(x), nil
	case uint:
		return sexp.Int(x), nil
	case uint8:
		return sexp.Int(x), nil
	case uint16:
		return sexp.Int(x), nil
	case uint32:
		return sexp.Int(x), nil
	case float32:
		return sexp.Float(x), nil
	case float64:
		return sexp.Float(x), nil
	case []any:
		return fromSlice(x)
	case []string:
		out := make(sexp.List, len(x))
		for i, s := range x {
			out[i] = sexp.String(s)
		}
		return out, nil
	case map[string]any:
		entries := make([]sexp.Entry, 0, len(x))
		for key, item := range x {
			value, err := FromNative(item)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			entries = append(entries, sexp.Entry{Key: sexp.Symbol(key), Value: value})
		}
		return sexp.NewMap(entries...), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedResult, reflect.TypeOf(v))
	}
}

func fromSlice(items []any) (sexp.List, error) {
	out := make(sexp.List, len(items))
	for i, item := range items {
		value, err := FromNative(item)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		out[i] = value
	}
	return out, nil
}
