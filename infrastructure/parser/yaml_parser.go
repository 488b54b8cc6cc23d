// Package parser reads declaration files.
//
// Both parsers normalize their input to plain JSON first, so the JSON Schema
// validator and the decoder see the same document regardless of the source
// format.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/reglet-dev/reglet-mux/domain/entities"
	"github.com/reglet-dev/reglet-mux/domain/ports"
)

// YamlDeclarationParser implements DeclarationParser for YAML.
type YamlDeclarationParser struct{}

// NewYamlDeclarationParser creates a new YamlDeclarationParser.
func NewYamlDeclarationParser() ports.DeclarationParser {
	return &YamlDeclarationParser{}
}

// Normalize converts YAML bytes to JSON.
func (p *YamlDeclarationParser) Normalize(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("parsing YAML: empty document")
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("converting YAML to JSON: %w", err)
	}
	return out, nil
}

// Parse unmarshals YAML bytes into a Declaration.
func (p *YamlDeclarationParser) Parse(data []byte) (*entities.Declaration, error) {
	normalized, err := p.Normalize(data)
	if err != nil {
		return nil, err
	}
	return decode(normalized)
}

// decode reads normalized JSON strictly: unknown fields are errors.
func decode(normalized []byte) (*entities.Declaration, error) {
	dec := json.NewDecoder(bytes.NewReader(normalized))
	dec.DisallowUnknownFields()

	var decl entities.Declaration
	if err := dec.Decode(&decl); err != nil {
		return nil, fmt.Errorf("decoding declaration: %w", err)
	}
	return &decl, nil
}
