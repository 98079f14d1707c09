package auditreport

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed report.schema.json
var reportSchemaJSON []byte

const schemaResourceName = "audit-report-v2.schema.json"

var (
	compiledSchema     *jsonschema.Schema
	compileSchemaOnce  sync.Once
	compileSchemaError error
)

func loadSchema() (*jsonschema.Schema, error) {
	compileSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaResourceName, bytes.NewReader(reportSchemaJSON)); err != nil {
			compileSchemaError = fmt.Errorf("failed to register audit report schema: %w", err)
			return
		}
		compiledSchema, compileSchemaError = compiler.Compile(schemaResourceName)
	})
	return compiledSchema, compileSchemaError
}

// ValidateJSON checks that data conforms to the audit report schema.
func ValidateJSON(data []byte) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("audit report is not valid JSON: %w", err)
	}

	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("audit report failed schema validation: %w", err)
	}
	return nil
}
