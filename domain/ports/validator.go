package ports

import "github.com/reglet-dev/reglet-mux/domain/entities"

// DeclarationValidator checks a declaration before it is built.
type DeclarationValidator interface {
	// Validate checks normalized JSON against the declaration schema and
	// the decoded declaration against its semantic rules.
	Validate(normalized []byte, decl *entities.Declaration) (*entities.ValidationResult, error)
}
