package model

import "fmt"

// SchemaViolationError reports a required input field that is absent from
// the batch entirely. It indicates an upstream contract breach, not a
// data-quality edge case, and always aborts the run: partial RouteRuns would
// silently under-report billing.
type SchemaViolationError struct {
	Field string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("schema violation: required field %q missing from input batch", e.Field)
}
