// Package schema validates a trace file's context dictionary against an
// optional on-disk JSON Schema document (spec §4.10).
package schema

import (
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidateContext compiles the JSON Schema at schemaPath and validates ctx
// against it. An empty schemaPath is not expected to reach here; callers
// only invoke this when a trace file names one.
func ValidateContext(schemaPath string, ctx map[string]string) error {
	compiled, err := jsonschema.Compile(schemaPath)
	if err != nil {
		return fmt.Errorf("compile schema %q: %w", schemaPath, err)
	}

	doc := make(map[string]interface{}, len(ctx))
	for k, v := range ctx {
		doc[k] = v
	}

	if err := compiled.Validate(doc); err != nil {
		return fmt.Errorf("context does not satisfy schema %q: %w", schemaPath, err)
	}
	return nil
}
