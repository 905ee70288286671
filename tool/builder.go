package tool

// paramSpec is one declared argument in a Builder.
type paramSpec struct {
	name        string
	typ         string
	description string
	required    bool
}

// Builder declares a tool parameter-by-parameter and assembles the JSON
// schema at Build time. Builders are persistent values: WithParameter returns
// a new Builder, so a partially configured base can be branched safely.
//
// Example:
//
//	t, err := tool.New("get_weather", "Get weather for a city", weatherFn).
//		WithParameter("city", "string", "City name", true).
//		WithParameter("unit", "string", "celsius or fahrenheit", false).
//		Build()
type Builder struct {
	name        string
	description string
	fn          Func
	params      []paramSpec
}

// New starts a Builder for a tool with the given name, description and
// callback.
func New(name, description string, fn Func) Builder {
	return Builder{name: name, description: description, fn: fn}
}

// WithParameter declares an argument. typ is a JSON schema type name
// ("string", "number", "integer", "boolean", "array", "object"). The receiver
// is unmodified.
func (b Builder) WithParameter(name, typ, description string, required bool) Builder {
	nb := b
	nb.params = make([]paramSpec, len(b.params), len(b.params)+1)
	copy(nb.params, b.params)
	nb.params = append(nb.params, paramSpec{name: name, typ: typ, description: description, required: required})
	return nb
}

// Build assembles the schema and constructs the FunctionTool. Schema problems
// surface here as *SchemaError.
func (b Builder) Build() (*FunctionTool, error) {
	properties := make(map[string]any, len(b.params))
	required := make([]string, 0, len(b.params))
	for _, p := range b.params {
		if _, dup := properties[p.name]; dup {
			return nil, &SchemaError{Tool: b.name, Causes: []string{"duplicate parameter " + p.name}}
		}
		spec := map[string]any{"type": p.typ}
		if p.description != "" {
			spec["description"] = p.description
		}
		properties[p.name] = spec
		if p.required {
			required = append(required, p.name)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}

	return NewFunctionTool(b.name, b.description, schema, b.fn)
}
