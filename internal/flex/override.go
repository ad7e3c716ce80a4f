package flex

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/i2y/smsbridge/internal/domain"
)

// RequiredIf makes Param required when every field in When equals the bound value.
type RequiredIf struct {
	Param string                 `yaml:"param"`
	When  map[string]interface{} `yaml:"when"`
}

// Override is the declarative per-function rule set applied by a Wrapper.
// The zero value is a valid, empty override.
type Override struct {
	ExpectedTypes map[string]domain.ParamKind `yaml:"-"`
	Required      []string                    `yaml:"required,omitempty"`
	// Optional is documentation only; it never gates validation.
	Optional   []string               `yaml:"optional,omitempty"`
	RequiredIf []RequiredIf           `yaml:"required_if,omitempty"`
	Defaults   map[string]interface{} `yaml:"defaults,omitempty"`
	Aliases    map[string]string      `yaml:"aliases,omitempty"`
	MaxLengths map[string]int         `yaml:"max_lengths,omitempty"`
}

// UnmarshalYAML accepts loosely written kind names ("str", "list[str]", ...)
// under expected_types.
func (o *Override) UnmarshalYAML(node *yaml.Node) error {
	type plain Override
	var raw struct {
		plain         `yaml:",inline"`
		ExpectedTypes map[string]string `yaml:"expected_types"`
	}
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("failed to decode override: %w", err)
	}
	*o = Override(raw.plain)
	if len(raw.ExpectedTypes) > 0 {
		o.ExpectedTypes = make(map[string]domain.ParamKind, len(raw.ExpectedTypes))
		for name, kind := range raw.ExpectedTypes {
			o.ExpectedTypes[name] = ParseKind(kind)
		}
	}
	return nil
}

// WithAliases returns a copy of o whose alias table is base overlaid with o's
// own aliases. Entries in o win on conflict.
func (o Override) WithAliases(base map[string]string) Override {
	merged := make(map[string]string, len(base)+len(o.Aliases))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range o.Aliases {
		merged[k] = v
	}
	o.Aliases = merged
	return o
}

// Merge overlays other onto o field by field: a non-empty field in other
// replaces the same field in o. Map fields are merged key by key.
func (o Override) Merge(other Override) Override {
	out := o.clone()
	for k, v := range other.ExpectedTypes {
		if out.ExpectedTypes == nil {
			out.ExpectedTypes = map[string]domain.ParamKind{}
		}
		out.ExpectedTypes[k] = v
	}
	if len(other.Required) > 0 {
		out.Required = append([]string(nil), other.Required...)
	}
	if len(other.Optional) > 0 {
		out.Optional = append([]string(nil), other.Optional...)
	}
	if len(other.RequiredIf) > 0 {
		out.RequiredIf = append([]RequiredIf(nil), other.RequiredIf...)
	}
	for k, v := range other.Defaults {
		if out.Defaults == nil {
			out.Defaults = map[string]interface{}{}
		}
		out.Defaults[k] = v
	}
	for k, v := range other.Aliases {
		if out.Aliases == nil {
			out.Aliases = map[string]string{}
		}
		out.Aliases[k] = v
	}
	for k, v := range other.MaxLengths {
		if out.MaxLengths == nil {
			out.MaxLengths = map[string]int{}
		}
		out.MaxLengths[k] = v
	}
	return out
}

func (o Override) clone() Override {
	out := Override{
		Required:   append([]string(nil), o.Required...),
		Optional:   append([]string(nil), o.Optional...),
		RequiredIf: make([]RequiredIf, len(o.RequiredIf)),
	}
	for i, rule := range o.RequiredIf {
		when := make(map[string]interface{}, len(rule.When))
		for k, v := range rule.When {
			when[k] = v
		}
		out.RequiredIf[i] = RequiredIf{Param: rule.Param, When: when}
	}
	if o.ExpectedTypes != nil {
		out.ExpectedTypes = make(map[string]domain.ParamKind, len(o.ExpectedTypes))
		for k, v := range o.ExpectedTypes {
			out.ExpectedTypes[k] = v
		}
	}
	if o.Defaults != nil {
		out.Defaults = make(map[string]interface{}, len(o.Defaults))
		for k, v := range o.Defaults {
			out.Defaults[k] = v
		}
	}
	if o.Aliases != nil {
		out.Aliases = make(map[string]string, len(o.Aliases))
		for k, v := range o.Aliases {
			out.Aliases[k] = v
		}
	}
	if o.MaxLengths != nil {
		out.MaxLengths = make(map[string]int, len(o.MaxLengths))
		for k, v := range o.MaxLengths {
			out.MaxLengths[k] = v
		}
	}
	return out
}

type aliasPair struct {
	alias, canonical string
}

type lengthLimit struct {
	field string
	max   int
}

// rules is the frozen, iteration-ordered form of an Override held by a Wrapper.
type rules struct {
	expected   map[string]domain.ParamKind
	required   []string
	requiredIf []RequiredIf
	defaults   map[string]interface{}
	aliases    []aliasPair
	maxLengths []lengthLimit
}

func compile(o Override) rules {
	o = o.clone()
	r := rules{
		expected:   o.ExpectedTypes,
		required:   o.Required,
		requiredIf: o.RequiredIf,
		defaults:   o.Defaults,
	}
	for alias, canonical := range o.Aliases {
		if alias == canonical {
			continue
		}
		r.aliases = append(r.aliases, aliasPair{alias: alias, canonical: canonical})
	}
	sort.Slice(r.aliases, func(i, j int) bool { return r.aliases[i].alias < r.aliases[j].alias })
	for field, limit := range o.MaxLengths {
		r.maxLengths = append(r.maxLengths, lengthLimit{field: field, max: limit})
	}
	sort.Slice(r.maxLengths, func(i, j int) bool { return r.maxLengths[i].field < r.maxLengths[j].field })
	return r
}
