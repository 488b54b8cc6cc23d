// Package schema provides JSON schema generation for declaration files.
package schema

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/reglet-dev/reglet-mux/domain/entities"
	domainerrors "github.com/reglet-dev/reglet-mux/domain/errors"
)

// GenerateSchema creates a JSON schema from a Go struct.
// It uses the `invopop/jsonschema` library to reflect on the struct
// and generate a standard JSON Schema (Draft 2020-12).
func GenerateSchema(v interface{}) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true, // Expand struct definitions inline
		Anonymous:      true, // No $id, so $refs resolve inside the document
	}
	schema := reflector.Reflect(v)

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, &domainerrors.SchemaError{Type: fmt.Sprintf("%T", v), Err: err}
	}

	return jsonBytes, nil
}

var declarationSchema = sync.OnceValues(func() ([]byte, error) {
	return GenerateSchema(&entities.Declaration{})
})

// DeclarationSchema returns the JSON schema of declaration files.
// The schema is generated once.
func DeclarationSchema() ([]byte, error) {
	return declarationSchema()
}
