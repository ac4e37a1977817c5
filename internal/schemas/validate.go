// Package schemas validates LLM output against embedded JSON Schemas before
// it is decoded into typed structures, so malformed model output cannot
// propagate untyped data deeper into the system.
package schemas

import (
	"embed"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.schema.json
var schemaFiles embed.FS

// Schema names accepted by Validate.
const (
	UserProfile       = "user_profile"
	CompanyProfile    = "company_profile"
	GeneratedDocument = "generated_document"
	JobAnalysis       = "job_analysis"
)

var (
	mu       sync.Mutex
	compiled = make(map[string]*gojsonschema.Schema)
)

// ValidationError reports which fields of a model response violated the
// schema.
type ValidationError struct {
	Schema string
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("response does not match %s schema: %v", e.Schema, e.Issues)
}

// Validate checks data against the named embedded schema. A nil return means
// the document is safe to unmarshal into the corresponding type.
func Validate(name string, data []byte) error {
	schema, err := compile(name)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &ValidationError{Schema: name, Issues: []string{err.Error()}}
	}
	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return &ValidationError{Schema: name, Issues: issues}
}

func compile(name string) (*gojsonschema.Schema, error) {
	mu.Lock()
	defer mu.Unlock()

	if schema, ok := compiled[name]; ok {
		return schema, nil
	}

	data, err := schemaFiles.ReadFile(name + ".schema.json")
	if err != nil {
		return nil, fmt.Errorf("unknown schema %q: %w", name, err)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %q: %w", name, err)
	}

	compiled[name] = schema
	return schema, nil
}
