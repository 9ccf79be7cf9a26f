// Package schemas validates report and transcript documents against the
// embedded JSON Schemas that define the API contract.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

var (
	//go:embed report.schema.json
	reportSchemaJSON string
	//go:embed transcript.schema.json
	transcriptSchemaJSON string
)

// ValidationError lists every schema violation found in one document.
type ValidationError struct {
	Document string
	Errors   []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	parts := make([]string, len(ve.Errors))
	for i, fe := range ve.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return fmt.Sprintf("invalid %s: %s", ve.Document, strings.Join(parts, "; "))
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

// embedded is a schema compiled on first use.
type embedded struct {
	file     string
	document string
	load     func() (*gojsonschema.Schema, error)
}

func newEmbedded(file, document, source string) *embedded {
	return &embedded{
		file:     file,
		document: document,
		load: sync.OnceValues(func() (*gojsonschema.Schema, error) {
			schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
			if err != nil {
				return nil, &SchemaLoadError{Path: file, Message: "invalid embedded schema", Cause: err}
			}
			return schema, nil
		}),
	}
}

var (
	reportSchema     = newEmbedded("report.schema.json", "report", reportSchemaJSON)
	transcriptSchema = newEmbedded("transcript.schema.json", "transcript", transcriptSchemaJSON)
)

// ReportSchema returns the raw JSON Schema for InterviewReport documents.
func ReportSchema() string {
	return reportSchemaJSON
}

// ValidateReport checks a report JSON document against the embedded report schema.
func ValidateReport(jsonContent string) error {
	return reportSchema.validate(jsonContent)
}

// ValidateTranscript checks a chat transcript JSON array against the embedded schema.
func ValidateTranscript(jsonContent string) error {
	return transcriptSchema.validate(jsonContent)
}

func (e *embedded) validate(jsonContent string) error {
	schema, err := e.load()
	if err != nil {
		return err
	}
	result, err := schema.Validate(gojsonschema.NewStringLoader(jsonContent))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", e.document, err)
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Document: e.document}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}
