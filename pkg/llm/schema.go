package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	// ErrNoJSON is returned when a structured call produced no JSON object.
	ErrNoJSON = errors.New("no JSON object found in model response")
	// ErrSchemaMismatch wraps validation failures of a structured answer.
	ErrSchemaMismatch = errors.New("response does not match schema")
)

// Schema is the subset of JSON Schema used to describe structured model outputs.
type Schema struct {
	Name        string             `json:"-"`
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Items       *Schema            `json:"items,omitempty"`

	AdditionalProperties *bool `json:"additionalProperties,omitempty"`
}

// ObjectSchema builds an object schema whose properties are all required.
func ObjectSchema(name string, props map[string]*Schema) *Schema {
	required := make([]string, 0, len(props))
	for k := range props {
		required = append(required, k)
	}
	sort.Strings(required)
	closed := false
	return &Schema{Name: name, Type: "object", Properties: props, Required: required, AdditionalProperties: &closed}
}

// StringSchema describes a string field.
func StringSchema(description string, enum ...string) *Schema {
	return &Schema{Type: "string", Description: description, Enum: enum}
}

// JSON renders the schema document.
func (s *Schema) JSON() []byte {
	b, _ := json.Marshal(s)
	return b
}

// Validate checks a decoded document against the schema.
func (s *Schema) Validate(doc interface{}) error {
	c := jsonschema.NewCompiler()
	url := "mem://" + s.resourceName() + ".json"
	if err := c.AddResource(url, bytes.NewReader(s.JSON())); err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	return compiled.Validate(doc)
}

func (s *Schema) resourceName() string {
	if s.Name == "" {
		return "output"
	}
	return s.Name
}

// Decode runs a structured chat call and unmarshals the answer into out.
// Providers that support native structured output honor the schema directly;
// for the rest the JSON object is extracted from the text.
func Decode(ctx context.Context, provider LLMProvider, history []Message, schema *Schema, out interface{}, opts ...Option) error {
	opts = append([]Option{WithTemperature(0)}, opts...)
	opts = append(opts, WithResponseSchema(schema))

	response, err := provider.Chat(ctx, history, opts...)
	if err != nil {
		return err
	}

	raw := ExtractJSON(response)
	if raw == "" {
		return ErrNoJSON
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return fmt.Errorf("JSON unmarshal failed: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w %s: %v", ErrSchemaMismatch, schema.resourceName(), err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("JSON unmarshal failed: %w", err)
	}
	return nil
}

// ExtractJSON returns the outermost {...} block of a response, or "".
func ExtractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}
