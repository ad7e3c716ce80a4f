package domain

// Tool is the descriptor a host agent sees for one callable function.
// It carries the function's original name, description and parameter shape;
// the callable itself never has metadata attached to it.
type Tool struct {
	// Name is the canonical function name (e.g. "send_quick_bulk_sms").
	// It MUST be unique within a registry.
	Name string `json:"name"`

	// Description provides a natural language explanation of what the tool does.
	// This is crucial for the LLM to understand when to use the tool.
	Description string `json:"description"`

	// InputSchema documents the declared parameters of the underlying function.
	// At runtime the tool accepts a single flexible argument mapping, so this
	// is informational rather than enforced.
	InputSchema JSONSchemaProps `json:"input_schema"`
}

// JSONSchemaProps represents the properties of a JSON schema,
// used for tool input definitions.
type JSONSchemaProps struct {
	Type        string                     `json:"type"`                  // e.g., "object", "string", "number", "integer", "boolean", "array"
	Description string                     `json:"description,omitempty"` // Human readable hint for a single property
	Properties  map[string]JSONSchemaProps `json:"properties,omitempty"`  // For type "object"
	Required    []string                   `json:"required,omitempty"`    // For type "object"
	Items       *JSONSchemaProps           `json:"items,omitempty"`       // For type "array"
	Default     interface{}                `json:"default,omitempty"`
}
