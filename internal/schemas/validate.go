// Package schemas provides JSON Schema validation for structured data artifacts.
package schemas

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/tanzparty/internal/types"
)

//go:embed *.schema.json
var schemaFiles embed.FS

var (
	candidateSchema     *gojsonschema.Schema
	candidateSchemaOnce sync.Once
	candidateSchemaErr  error
)

// ValidationError represents a schema validation failure with field paths.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// ValidateCandidate checks an event candidate against the embedded
// JSON Schema. Structural problems the Go type system cannot express
// (date format, closed enums) are caught here.
func ValidateCandidate(c *types.EventCandidate) error {
	schema, err := loadCandidateSchema()
	if err != nil {
		return err
	}

	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal candidate: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if !result.Valid() {
		ve := &ValidationError{}
		for _, e := range result.Errors() {
			ve.Errors = append(ve.Errors, FieldError{
				Field:   e.Field(),
				Message: e.Description(),
			})
		}
		return ve
	}
	return nil
}

func loadCandidateSchema() (*gojsonschema.Schema, error) {
	candidateSchemaOnce.Do(func() {
		data, err := schemaFiles.ReadFile("event_candidate.schema.json")
		if err != nil {
			candidateSchemaErr = fmt.Errorf("failed to read embedded schema: %w", err)
			return
		}
		candidateSchema, candidateSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	})
	return candidateSchema, candidateSchemaErr
}
