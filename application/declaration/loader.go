// Package declaration loads declaration files: it parses, validates and
// decodes them into entities.Declaration.
package declaration

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/reglet-dev/reglet-mux/application/validation"
	"github.com/reglet-dev/reglet-mux/domain/entities"
	domainerrors "github.com/reglet-dev/reglet-mux/domain/errors"
	"github.com/reglet-dev/reglet-mux/domain/ports"
	"github.com/reglet-dev/reglet-mux/infrastructure/parser"
	"github.com/reglet-dev/reglet-mux/log"
)

// loaderConfig holds configuration for the Loader.
type loaderConfig struct {
	logger    *slog.Logger
	parser    ports.DeclarationParser
	validator ports.DeclarationValidator
}

func defaultLoaderConfig() loaderConfig {
	return loaderConfig{
		logger:    log.Nop(),
		validator: validation.NewDeclarationValidator(),
	}
}

// Loader orchestrates the declaration loading pipeline.
type Loader struct {
	config loaderConfig
}

// LoaderOption configures the Loader.
type LoaderOption func(*loaderConfig)

// WithParser forces a parser. By default LoadFile picks one by file
// extension and Load uses YAML.
func WithParser(p ports.DeclarationParser) LoaderOption {
	return func(c *loaderConfig) {
		c.parser = p
	}
}

// WithValidator sets the validator. A nil validator disables validation.
func WithValidator(v ports.DeclarationValidator) LoaderOption {
	return func(c *loaderConfig) {
		c.validator = v
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(c *loaderConfig) {
		c.logger = log.OrNop(logger)
	}
}

// NewLoader creates a new Loader with defaults.
func NewLoader(opts ...LoaderOption) *Loader {
	cfg := defaultLoaderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Loader{config: cfg}
}

// ParserFor picks a parser by file extension:
// .yaml and .yml are YAML, .json and .jsonc are JSONC.
func ParserFor(path string) (ports.DeclarationParser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parser.NewYamlDeclarationParser(), nil
	case ".json", ".jsonc":
		return parser.NewJsoncDeclarationParser(), nil
	default:
		return nil, fmt.Errorf("unsupported declaration file extension %q", filepath.Ext(path))
	}
}

// Load parses and validates raw declaration bytes.
func (l *Loader) Load(raw []byte) (*entities.Declaration, error) {
	p := l.config.parser
	if p == nil {
		p = parser.NewYamlDeclarationParser()
	}
	return l.load(p, raw, "")
}

// LoadFile reads, parses and validates a declaration file.
func (l *Loader) LoadFile(path string) (*entities.Declaration, error) {
	p := l.config.parser
	if p == nil {
		var err error
		if p, err = ParserFor(path); err != nil {
			return nil, &domainerrors.DeclarationError{Err: err, File: path}
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &domainerrors.DeclarationError{Err: err, File: path}
	}
	return l.load(p, raw, path)
}

func (l *Loader) load(p ports.DeclarationParser, raw []byte, file string) (*entities.Declaration, error) {
	normalized, err := p.Normalize(raw)
	if err != nil {
		return nil, &domainerrors.DeclarationError{Err: err, File: file}
	}

	if l.config.validator != nil {
		// schema pass only; struct and semantic checks follow decoding
		res, err := l.config.validator.Validate(normalized, nil)
		if err != nil {
			return nil, fmt.Errorf("validation error: %w", err)
		}
		if !res.Valid {
			return nil, failed(res, file)
		}
	}

	decl, err := p.Parse(raw)
	if err != nil {
		return nil, &domainerrors.DeclarationError{Err: err, File: file}
	}

	if l.config.validator != nil {
		res, err := l.config.validator.Validate(normalized, decl)
		if err != nil {
			return nil, fmt.Errorf("validation error: %w", err)
		}
		if !res.Valid {
			return nil, failed(res, file)
		}
	}

	l.config.logger.Debug("loaded declaration",
		"file", file, "name", decl.Name, "capabilities", len(decl.Capabilities), "implementors", len(decl.Implementors))
	return decl, nil
}

func failed(res *entities.ValidationResult, file string) error {
	msg := "declaration validation failed:"
	for _, e := range res.Errors {
		msg += fmt.Sprintf("\n- %s: %s", e.Field, e.Message)
	}
	return &domainerrors.DeclarationError{Err: errors.New(msg), File: file, Field: res.Errors[0].Field}
}
