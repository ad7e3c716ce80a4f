package flex

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cast"

	"github.com/i2y/smsbridge/internal/domain"
)

// ErrorResult is the structured error returned in place of a domain result
// when a call is rejected before reaching the domain function.
type ErrorResult struct {
	Error string `json:"error"`
}

// validate runs the required, required_if and max_lengths checks in that order.
// All missing names are reported together; only the first length violation is.
func validate(r rules, b domain.Binding) *ErrorResult {
	missing := make(map[string]struct{})
	for _, name := range r.required {
		if isEmpty(b[name]) {
			missing[name] = struct{}{}
		}
	}
	for _, rule := range r.requiredIf {
		if rule.Param == "" || !conditionsHold(rule.When, b) {
			continue
		}
		if isEmpty(b[rule.Param]) {
			missing[rule.Param] = struct{}{}
		}
	}
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for name := range missing {
			names = append(names, name)
		}
		sort.Strings(names)
		return &ErrorResult{Error: "Missing required parameter(s): " + strings.Join(names, ", ")}
	}

	for _, limit := range r.maxLengths {
		s, ok := b[limit.field].(string)
		if !ok {
			continue
		}
		if n := utf8.RuneCountInString(s); n > limit.max {
			return &ErrorResult{Error: fmt.Sprintf(
				"%s is too long (%d characters). Maximum allowed is %d. Please shorten it and try again.",
				limit.field, n, limit.max,
			)}
		}
	}
	return nil
}

func conditionsHold(when map[string]interface{}, b domain.Binding) bool {
	for field, want := range when {
		got, ok := b[field]
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b interface{}) bool {
	if isNumber(a) && isNumber(b) {
		fa, errA := cast.ToFloat64E(a)
		fb, errB := cast.ToFloat64E(b)
		return errA == nil && errB == nil && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

// isEmpty reports whether v counts as missing: nil, "", or an empty list or map.
func isEmpty(v interface{}) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
