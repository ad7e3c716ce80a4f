package flex

import (
	"fmt"
	"sort"

	"github.com/i2y/smsbridge/internal/domain"
)

// bind builds the per-call Binding: defaults first, then coerced declared
// parameters, then any remaining caller keys passed through unchanged.
func bind(fn domain.Function, r rules, args map[string]interface{}) (domain.Binding, *ErrorResult) {
	binding := make(domain.Binding, len(r.defaults)+len(args))
	for k, v := range r.defaults {
		binding[k] = v
	}

	declared := make(map[string]struct{}, len(fn.Params))
	for _, p := range fn.Params {
		declared[p.Name] = struct{}{}
		raw, ok := args[p.Name]
		if !ok {
			continue
		}
		kind := r.kindFor(p.Name, p.Kind)
		v, err := Coerce(kind, raw)
		if err != nil {
			return nil, coercionError(p.Name, kind)
		}
		binding[p.Name] = v
	}

	extra := make([]string, 0, len(args))
	for k := range args {
		if _, ok := declared[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		if kind, ok := r.expected[k]; ok {
			v, err := Coerce(kind, args[k])
			if err != nil {
				return nil, coercionError(k, kind)
			}
			binding[k] = v
			continue
		}
		if _, bound := binding[k]; !bound {
			binding[k] = args[k]
		}
	}
	return binding, nil
}

func (r rules) kindFor(name string, declared domain.ParamKind) domain.ParamKind {
	if kind, ok := r.expected[name]; ok && kind != "" {
		return kind
	}
	if declared == "" {
		return domain.KindString
	}
	return declared
}

func coercionError(field string, kind domain.ParamKind) *ErrorResult {
	return &ErrorResult{Error: fmt.Sprintf("Invalid value for %s: expected %s", field, kind)}
}
