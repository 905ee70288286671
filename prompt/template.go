// Package prompt builds ordered role-tagged message lists from static text,
// placeholder bindings and an injected structured-context blob.
//
// Placeholders use the form ${identifier}. Binding resolution precedence,
// highest first: bindings passed to Render, then bindings stored on the
// template via Bind. The reserved placeholder ${context} is replaced by a
// JSON serialization of the separately managed structured-context map, which
// keeps security/RAG metadata out of ordinary bindings. Rendering with a
// missing non-context placeholder is an error, never a silent blank.
//
// Templates are persistent values: every configuration call returns a new
// Template sharing no mutable state with its parent, so concurrent holders of
// a base template never observe later configuration.
package prompt

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/hupe1980/agentloop/core"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ContextKey is the reserved placeholder bound to the structured-context map.
const ContextKey = "context"

// MissingBindingError reports a placeholder with no value in scope at render
// time.
type MissingBindingError struct {
	Key string
}

func (e *MissingBindingError) Error() string {
	return fmt.Sprintf("prompt: no binding for placeholder %q", e.Key)
}

type entry struct {
	role core.Role
	text string
}

// Template assembles an ordered list of role-tagged messages.
// The zero value is an empty template ready for use.
type Template struct {
	entries  []entry
	bindings map[string]any
	context  map[string]any
}

// New creates an empty Template.
func New() Template { return Template{} }

func (t Template) clone() Template {
	nt := Template{}
	if len(t.entries) > 0 {
		nt.entries = make([]entry, len(t.entries))
		copy(nt.entries, t.entries)
	}
	if len(t.bindings) > 0 {
		nt.bindings = make(map[string]any, len(t.bindings))
		for k, v := range t.bindings {
			nt.bindings[k] = v
		}
	}
	if len(t.context) > 0 {
		nt.context = make(map[string]any, len(t.context))
		for k, v := range t.context {
			nt.context[k] = v
		}
	}
	return nt
}

// WithMessage appends a role-tagged text entry, returning a new Template.
func (t Template) WithMessage(role core.Role, text string) Template {
	nt := t.clone()
	nt.entries = append(nt.entries, entry{role: role, text: text})
	return nt
}

// WithSystem appends a system entry.
func (t Template) WithSystem(text string) Template { return t.WithMessage(core.RoleSystem, text) }

// WithUser appends a user entry.
func (t Template) WithUser(text string) Template { return t.WithMessage(core.RoleUser, text) }

// WithAssistant appends an assistant entry.
func (t Template) WithAssistant(text string) Template {
	return t.WithMessage(core.RoleAssistant, text)
}

// Bind stores a binding on the template. Stored bindings merge key-by-key;
// later calls override earlier values for the same key only.
func (t Template) Bind(key string, value any) Template {
	nt := t.clone()
	if nt.bindings == nil {
		nt.bindings = map[string]any{}
	}
	nt.bindings[key] = value
	return nt
}

// BindAll merges all given bindings into the stored set.
func (t Template) BindAll(values map[string]any) Template {
	nt := t.clone()
	if nt.bindings == nil {
		nt.bindings = make(map[string]any, len(values))
	}
	for k, v := range values {
		nt.bindings[k] = v
	}
	return nt
}

// WithContext merges entries into the structured-context map serialized into
// the reserved ${context} placeholder.
func (t Template) WithContext(values map[string]any) Template {
	nt := t.clone()
	if nt.context == nil {
		nt.context = make(map[string]any, len(values))
	}
	for k, v := range values {
		nt.context[k] = v
	}
	return nt
}

// Render resolves every entry's placeholders and returns the message list.
// Call-time bindings take precedence over stored bindings.
func (t Template) Render(bindings map[string]any) ([]core.Message, error) {
	messages := make([]core.Message, 0, len(t.entries))
	for _, e := range t.entries {
		text, err := t.render(e.text, bindings)
		if err != nil {
			return nil, err
		}
		messages = append(messages, core.NewMessage(e.role, text))
	}
	return messages, nil
}

// RenderText resolves placeholders in a single string using the template's
// bindings and context, without producing messages.
func (t Template) RenderText(text string, bindings map[string]any) (string, error) {
	return t.render(text, bindings)
}

func (t Template) render(text string, bindings map[string]any) (string, error) {
	var out []byte
	for i := 0; i < len(text); {
		if text[i] == '$' && i+1 < len(text) && text[i+1] == '{' {
			end := indexByteFrom(text, i+2, '}')
			if end < 0 {
				out = append(out, text[i:]...)
				break
			}
			key := text[i+2 : end]
			value, err := t.resolve(key, bindings)
			if err != nil {
				return "", err
			}
			out = append(out, value...)
			i = end + 1
			continue
		}
		out = append(out, text[i])
		i++
	}
	return string(out), nil
}

func (t Template) resolve(key string, bindings map[string]any) (string, error) {
	if key == ContextKey {
		if len(t.context) == 0 {
			return "{}", nil
		}
		data, err := json.Marshal(t.context)
		if err != nil {
			return "", fmt.Errorf("prompt: serialize context: %w", err)
		}
		return string(data), nil
	}
	if v, ok := bindings[key]; ok {
		return stringify(v), nil
	}
	if v, ok := t.bindings[key]; ok {
		return stringify(v), nil
	}
	return "", &MissingBindingError{Key: key}
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func indexByteFrom(s string, from int, b byte) int {
	for i := from; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}
