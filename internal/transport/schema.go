package transport

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var backendSchema []byte

// SchemaValidator checks backend responses against the OpenAPI description
// of the endpoints the client calls.
type SchemaValidator struct {
	doc        *openapi3.T
	operations map[string]*openapi3.Operation
}

// NewSchemaValidator loads the embedded backend description
func NewSchemaValidator() (*SchemaValidator, error) {
	return LoadSchemaValidator(backendSchema)
}

// LoadSchemaValidator builds a validator from an OpenAPI 3 document
func LoadSchemaValidator(data []byte) (*SchemaValidator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI schema: %w", err)
	}

	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI schema: %w", err)
	}

	operations := make(map[string]*openapi3.Operation)
	for _, item := range doc.Paths.Map() {
		for _, op := range item.Operations() {
			if op.OperationID != "" {
				operations[op.OperationID] = op
			}
		}
	}

	return &SchemaValidator{doc: doc, operations: operations}, nil
}

// Validate checks body, already decoded into generic JSON values, against the
// response schema declared for operation and status. Operations or statuses
// without a declared JSON schema are accepted.
func (v *SchemaValidator) Validate(operation string, status int, body any) error {
	op, ok := v.operations[operation]
	if !ok || op.Responses == nil {
		return nil
	}

	ref := op.Responses.Status(status)
	if ref == nil {
		ref = op.Responses.Default()
	}
	if ref == nil || ref.Value == nil {
		return nil
	}

	media := ref.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil
	}

	if err := media.Schema.Value.VisitJSON(body); err != nil {
		return &SchemaError{Operation: operation, Err: err}
	}
	return nil
}

// Operations lists the operation IDs the validator knows about
func (v *SchemaValidator) Operations() []string {
	ids := make([]string, 0, len(v.operations))
	for id := range v.operations {
		ids = append(ids, id)
	}
	return ids
}

// BackendSchema returns the embedded OpenAPI description of the backend
func BackendSchema() []byte {
	return backendSchema
}
