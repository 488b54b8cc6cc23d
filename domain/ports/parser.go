package ports

import "github.com/reglet-dev/reglet-mux/domain/entities"

// DeclarationParser reads a declaration file format.
type DeclarationParser interface {
	// Normalize converts raw file bytes to plain JSON for schema validation.
	Normalize(data []byte) ([]byte, error)

	// Parse decodes raw file bytes into a Declaration.
	Parse(data []byte) (*entities.Declaration, error)
}
