// Package schemas provides JSON Schema validation for request payloads.
package schemas

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.schema.json
var schemaFS embed.FS

// Embedded schema file names.
const (
	SaveCandidateSchema  = "save_candidate.schema.json"
	CandidatePatchSchema = "candidate_patch.schema.json"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Summary joins the field errors on one line, for response bodies.
func (ve *ValidationError) Summary() string {
	parts := make([]string, 0, len(ve.Errors))
	for _, err := range ve.Errors {
		parts = append(parts, err.Field+": "+err.Message)
	}
	return strings.Join(parts, "; ")
}

// ValidateSaveCandidate validates a POST /pipeline body.
func ValidateSaveCandidate(body []byte) error {
	return ValidateEmbedded(SaveCandidateSchema, body)
}

// ValidateCandidatePatch validates a PATCH /pipeline/{login} body.
func ValidateCandidatePatch(body []byte) error {
	return ValidateEmbedded(CandidatePatchSchema, body)
}

// ValidateEmbedded validates a JSON document against one of the embedded schemas.
func ValidateEmbedded(name string, document []byte) error {
	schema, err := schemaFS.ReadFile(name)
	if err != nil {
		return &SchemaLoadError{Path: name, Message: "schema not embedded", Cause: err}
	}
	return validate(name, gojsonschema.NewBytesLoader(schema), gojsonschema.NewBytesLoader(document))
}

func validate(path string, schemaLoader, documentLoader gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    path,
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	if result.Valid() {
		return nil
	}

	// Build structured error
	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
