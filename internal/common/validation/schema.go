// Package validation checks job payloads against JSON schemas before the
// career workers touch them.
package validation

import (
	"fmt"
	"sort"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Messages flattens the errors as "field: message".
func (r *ValidationResult) Messages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return out
}

// Schema is a compiled JSON schema.
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

// Compile parses a schema document given as Go maps.
func Compile(name string, doc map[string]interface{}) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Schema{name: name, schema: s}, nil
}

func (s *Schema) Name() string { return s.name }

// ValidateJSON validates a raw JSON document. A document that is not JSON is
// reported as an error rather than an invalid result.
func (s *Schema) ValidateJSON(raw string) (*ValidationResult, error) {
	return s.validate(gojsonschema.NewStringLoader(raw))
}

// Validate validates an already decoded value.
func (s *Schema) Validate(doc interface{}) (*ValidationResult, error) {
	return s.validate(gojsonschema.NewGoLoader(doc))
}

func (s *Schema) validate(loader gojsonschema.JSONLoader) (*ValidationResult, error) {
	result, err := s.schema.Validate(loader)
	if err != nil {
		return nil, fmt.Errorf("validate against %s: %w", s.name, err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, e := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
			Code:    e.Type(),
		})
	}
	sort.Slice(out.Errors, func(i, j int) bool {
		if out.Errors[i].Field != out.Errors[j].Field {
			return out.Errors[i].Field < out.Errors[j].Field
		}
		return out.Errors[i].Code < out.Errors[j].Code
	})
	return out, nil
}

var (
	compileOnce sync.Once
	schemas     map[string]*Schema
	compileErr  error
)

// Lookup returns one of the built-in job schemas by task type.
func Lookup(taskType string) (*Schema, error) {
	compileOnce.Do(func() {
		schemas = make(map[string]*Schema, len(jobSchemas))
		for name, doc := range jobSchemas {
			s, err := Compile(name, doc)
			if err != nil {
				compileErr = err
				return
			}
			schemas[name] = s
		}
	})
	if compileErr != nil {
		return nil, compileErr
	}
	s, ok := schemas[taskType]
	if !ok {
		return nil, fmt.Errorf("no schema for %s", taskType)
	}
	return s, nil
}
