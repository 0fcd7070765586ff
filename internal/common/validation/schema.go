package validation

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed payload.schema.json
var payloadSchemaJSON []byte

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

const (
	CodeInvalidJSON = "INVALID_JSON"
	rootField       = "(root)"
)

var (
	payloadSchema     *gojsonschema.Schema
	payloadSchemaErr  error
	payloadSchemaOnce sync.Once
)

func loadPayloadSchema() (*gojsonschema.Schema, error) {
	payloadSchemaOnce.Do(func() {
		payloadSchema, payloadSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(payloadSchemaJSON))
	})
	return payloadSchema, payloadSchemaErr
}

// ValidatePayload checks the shape of a raw submission payload: a fields
// array of {id, type, label} objects and a formData object of scalar values.
// It does not check that formData keys match any field.
func ValidatePayload(raw []byte) (*ValidationResult, error) {
	schema, err := loadPayloadSchema()
	if err != nil {
		return nil, fmt.Errorf("load payload schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		// gojsonschema only fails here when the document is not JSON.
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   rootField,
				Message: "payload is not valid JSON",
				Code:    CodeInvalidJSON,
			}},
		}, nil
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    desc.Type(),
		})
	}
	return out, nil
}

// GetErrorMessages returns "field: message" strings suitable for the
// details of an INVALID_PAYLOAD response.
func (r *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		messages = append(messages, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return messages
}

func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}
