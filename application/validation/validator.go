// Package validation checks declaration files before a multiplexer is built
// from them.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/reglet-dev/reglet-mux/application/schema"
	"github.com/reglet-dev/reglet-mux/domain/entities"
	domainerrors "github.com/reglet-dev/reglet-mux/domain/errors"
	"github.com/reglet-dev/reglet-mux/domain/ports"
	"github.com/reglet-dev/reglet-mux/infrastructure/wazero"
)

// validate is a package-level singleton for better performance.
// Creating a new validator on each call is expensive; reusing is recommended.
var validate = validator.New()

const schemaResource = "declaration.json"

// DeclarationValidator implements ports.DeclarationValidator in three passes:
// the generated JSON schema, struct tags, then semantic rules.
type DeclarationValidator struct {
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
}

var _ ports.DeclarationValidator = (*DeclarationValidator)(nil)

// NewDeclarationValidator creates a new validator.
func NewDeclarationValidator() *DeclarationValidator {
	return &DeclarationValidator{}
}

func (v *DeclarationValidator) schema() (*jsonschema.Schema, error) {
	v.compileOnce.Do(func() {
		raw, err := schema.DeclarationSchema()
		if err != nil {
			v.compileErr = err
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaResource, bytes.NewReader(raw)); err != nil {
			v.compileErr = &domainerrors.SchemaError{Type: "Declaration", Err: err}
			return
		}
		v.compiled, v.compileErr = compiler.Compile(schemaResource)
		if v.compileErr != nil {
			v.compileErr = &domainerrors.SchemaError{Type: "Declaration", Err: v.compileErr}
		}
	})
	return v.compiled, v.compileErr
}

// Validate checks normalized JSON and the decoded declaration. A nil decl
// skips the struct and semantic passes. The error return is reserved for
// failures of the validator itself.
func (v *DeclarationValidator) Validate(normalized []byte, decl *entities.Declaration) (*entities.ValidationResult, error) {
	result := &entities.ValidationResult{Valid: true}

	sch, err := v.schema()
	if err != nil {
		return nil, err
	}

	var doc interface{}
	if err := json.Unmarshal(normalized, &doc); err != nil {
		result.Add("", fmt.Sprintf("document is not JSON: %v", err))
		return result, nil
	}
	if err := sch.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			addSchemaErrors(result, ve)
		} else {
			result.Add("", err.Error())
		}
	}

	if decl == nil {
		return result, nil
	}

	if err := validate.Struct(decl); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				result.Add(fe.Namespace(), fmt.Sprintf("failed on the '%s' rule", fe.Tag()))
			}
		} else {
			result.Add("", err.Error())
		}
	}

	checkSemantics(result, decl)
	return result, nil
}

// addSchemaErrors flattens a schema validation error tree to its leaves.
func addSchemaErrors(result *entities.ValidationResult, ve *jsonschema.ValidationError) {
	if len(ve.Causes) == 0 {
		result.Add(ve.InstanceLocation, ve.Message)
		return
	}
	for _, c := range ve.Causes {
		addSchemaErrors(result, c)
	}
}

// checkSemantics applies the rules the schema cannot express.
func checkSemantics(result *entities.ValidationResult, decl *entities.Declaration) {
	if len(decl.Capabilities) > entities.MaxCapabilities {
		result.Add("capabilities", fmt.Sprintf("at most %d capabilities are allowed", entities.MaxCapabilities))
	}

	caps := make(map[string]bool, len(decl.Capabilities))
	for i, c := range decl.Capabilities {
		field := fmt.Sprintf("capabilities[%d]", i)
		if caps[c.Name] {
			result.Add(field+".name", fmt.Sprintf("capability %q declared twice", c.Name))
		}
		caps[c.Name] = true

		fns := make(map[string]bool, len(c.Functions))
		for j, fn := range c.Functions {
			fnField := fmt.Sprintf("%s.functions[%d]", field, j)
			if fns[fn.Name] {
				result.Add(fnField+".name", fmt.Sprintf("function %q listed twice", fn.Name))
			}
			fns[fn.Name] = true
			for _, vt := range append(append([]string{}, fn.Params...), fn.Results...) {
				if _, err := wazero.ParseValueType(vt); err != nil {
					result.Add(fnField, err.Error())
				}
			}
		}
	}

	impls := make(map[string]bool, len(decl.Implementors))
	for i, impl := range decl.Implementors {
		field := fmt.Sprintf("implementors[%d]", i)
		if impls[impl.Name] {
			result.Add(field+".name", fmt.Sprintf("implementor %q declared twice", impl.Name))
		}
		impls[impl.Name] = true
		for _, name := range impl.Capabilities {
			if !caps[name] {
				result.Add(field+".capabilities", fmt.Sprintf("unknown capability %q", name))
			}
		}
	}
}
