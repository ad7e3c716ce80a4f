package domain

import "context"

// ParamKind is the primitive kind a parameter value is coerced into.
type ParamKind string

const (
	KindString     ParamKind = "string"
	KindBoolean    ParamKind = "boolean"
	KindInteger    ParamKind = "integer"
	KindFloat      ParamKind = "float"
	KindStringList ParamKind = "string-list"
)

// Param describes one declared parameter of a Function.
type Param struct {
	Name string
	// Kind is the declared kind. An empty Kind is treated as KindString.
	Kind ParamKind
	// Required mirrors "has no default in the underlying function". It is only
	// used for documentation; validation is driven by overrides.
	Required    bool
	Default     interface{}
	Description string
}

// Binding is the resolved canonical-name → coerced-value mapping for a single call.
type Binding map[string]interface{}

// CallFunc executes a domain function with a fully validated Binding.
type CallFunc func(ctx context.Context, args Binding) (interface{}, error)

// Function is a domain function together with its compile-time declared schema.
type Function struct {
	Name        string
	Description string
	Params      []Param
	Call        CallFunc
}

// Param returns the declared parameter with the given name.
func (f Function) Param(name string) (Param, bool) {
	for _, p := range f.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Tool builds the host-facing descriptor from the declared parameters.
func (f Function) Tool() Tool {
	schema := JSONSchemaProps{
		Type:       "object",
		Properties: make(map[string]JSONSchemaProps, len(f.Params)),
	}
	for _, p := range f.Params {
		schema.Properties[p.Name] = p.Kind.Schema(p.Description, p.Default)
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}
	return Tool{
		Name:        f.Name,
		Description: f.Description,
		InputSchema: schema,
	}
}

// Schema returns the JSON schema fragment for a value of this kind.
func (k ParamKind) Schema(description string, def interface{}) JSONSchemaProps {
	props := JSONSchemaProps{Description: description, Default: def}
	switch k {
	case KindBoolean:
		props.Type = "boolean"
	case KindInteger:
		props.Type = "integer"
	case KindFloat:
		props.Type = "number"
	case KindStringList:
		props.Type = "array"
		props.Items = &JSONSchemaProps{Type: "string"}
	default:
		props.Type = "string"
	}
	return props
}
