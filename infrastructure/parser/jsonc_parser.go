package parser

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/jsonc"

	"github.com/reglet-dev/reglet-mux/domain/entities"
	"github.com/reglet-dev/reglet-mux/domain/ports"
)

// JsoncDeclarationParser implements DeclarationParser for JSON extended with
// comments and trailing commas.
type JsoncDeclarationParser struct{}

// NewJsoncDeclarationParser creates a new JsoncDeclarationParser.
func NewJsoncDeclarationParser() ports.DeclarationParser {
	return &JsoncDeclarationParser{}
}

// Normalize strips comments and trailing commas.
func (p *JsoncDeclarationParser) Normalize(data []byte) ([]byte, error) {
	stripped := jsonc.ToJSON(data)
	if !json.Valid(stripped) {
		return nil, fmt.Errorf("parsing JSONC: malformed document")
	}
	return stripped, nil
}

// Parse unmarshals JSONC bytes into a Declaration.
func (p *JsoncDeclarationParser) Parse(data []byte) (*entities.Declaration, error) {
	normalized, err := p.Normalize(data)
	if err != nil {
		return nil, err
	}
	return decode(normalized)
}
