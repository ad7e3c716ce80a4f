package flex

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/i2y/smsbridge/internal/domain"
)

// ErrCoercion is returned when a raw value cannot be converted to its declared kind.
var ErrCoercion = errors.New("coercion failed")

const quoteChars = "\"'"

var (
	truthy = map[string]struct{}{"true": {}, "yes": {}, "y": {}, "1": {}}
	falsy  = map[string]struct{}{"false": {}, "no": {}, "n": {}, "0": {}}
)

// ParseKind maps a loosely written kind name onto a ParamKind.
// Unknown or empty names fall back to string.
func ParseKind(s string) domain.ParamKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bool", "boolean":
		return domain.KindBoolean
	case "int", "integer":
		return domain.KindInteger
	case "float", "number", "double":
		return domain.KindFloat
	case "list", "list[str]", "string-list", "array", "[]string":
		return domain.KindStringList
	default:
		return domain.KindString
	}
}

// Coerce converts raw into the canonical Go representation of kind:
// string, bool, int, float64 or []string.
func Coerce(kind domain.ParamKind, raw interface{}) (interface{}, error) {
	switch kind {
	case domain.KindBoolean:
		return toBool(raw), nil
	case domain.KindInteger:
		return toInt(raw)
	case domain.KindFloat:
		return toFloat(raw)
	case domain.KindStringList:
		return toStringList(raw), nil
	default:
		return toString(raw), nil
	}
}

func toString(v interface{}) string {
	if v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

func toBool(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		key := strings.ToLower(strings.TrimSpace(t))
		if _, ok := truthy[key]; ok {
			return true
		}
		if _, ok := falsy[key]; ok {
			return false
		}
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	}
	if isNumber(v) {
		f, _ := cast.ToFloat64E(v)
		return f != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	}
	return true
}

func toInt(v interface{}) (int, error) {
	switch t := v.(type) {
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case float32, float64:
		f, _ := cast.ToFloat64E(t)
		return int(f), nil
	case uint, uint32, uint64, uintptr:
		u := reflect.ValueOf(t).Uint()
		if u > math.MaxInt {
			return 0, fmt.Errorf("%w: %d overflows int", ErrCoercion, u)
		}
		return int(u), nil
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), nil
		}
		f, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrCoercion, t.String())
		}
		return int(f), nil
	}
	if isNumber(v) {
		return cast.ToIntE(v)
	}
	s := strings.TrimSpace(toString(v))
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrCoercion, s)
	}
	return n, nil
}

func toFloat(v interface{}) (float64, error) {
	switch t := v.(type) {
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrCoercion, t.String())
		}
		return f, nil
	}
	if isNumber(v) {
		return cast.ToFloat64E(v)
	}
	s := strings.TrimSpace(toString(v))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrCoercion, s)
	}
	return f, nil
}

func toStringList(v interface{}) []string {
	out := []string{}
	if v == nil {
		return out
	}
	if items, ok := asSlice(v); ok {
		for _, item := range items {
			if s := cleanListItem(toString(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	raw := strings.TrimSpace(toString(v))
	if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
		raw = raw[1 : len(raw)-1]
	}
	for _, part := range strings.Split(raw, ",") {
		if s := cleanListItem(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func cleanListItem(s string) string {
	return strings.Trim(strings.TrimSpace(s), quoteChars)
}

// asSlice flattens any slice or array value into []interface{}.
func asSlice(v interface{}) ([]interface{}, bool) {
	switch t := v.(type) {
	case []interface{}:
		return t, true
	case []string:
		out := make([]interface{}, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	case string, []byte:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func isNumber(v interface{}) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return true
	}
	return false
}
