// Package errors provides domain-specific error types for the multiplexer.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/reglet-dev/reglet-mux/domain/entities"
)

// Sentinels matched by the typed errors through errors.Is.
var (
	ErrDuplicateCapability      = stdErrors.New("duplicate capability")
	ErrUnknownCapability        = stdErrors.New("unknown capability")
	ErrCapabilitySpaceExhausted = stdErrors.New("capability space exhausted")
	ErrUnknownCombination       = stdErrors.New("unknown capability combination")
	ErrContractMismatch         = stdErrors.New("contract mismatch")
	ErrInvalidContract          = stdErrors.New("invalid contract")
	ErrSealed                   = stdErrors.New("multiplexer sealed")
	ErrUnregisteredImplementor  = stdErrors.New("unregistered implementor")
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// DetailedError is an interface for custom error types that can convert themselves
// to a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to a structured ErrorDetail.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    "internal",
	}
}

// DuplicateCapabilityError reports a capability name declared twice.
type DuplicateCapabilityError struct {
	Name string
}

func (e *DuplicateCapabilityError) Error() string {
	return fmt.Sprintf("capability %q already declared", e.Name)
}

func (e *DuplicateCapabilityError) Is(target error) bool {
	return target == ErrDuplicateCapability
}

// ToErrorDetail implements DetailedError.
func (e *DuplicateCapabilityError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "registry", Code: "duplicate_capability"}
}

// UnknownCapabilityError reports a reference to a capability the registry does not hold.
// Name is empty when the reference was a bare bit position.
type UnknownCapabilityError struct {
	Name string
	ID   int
}

func (e *UnknownCapabilityError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("unknown capability %q", e.Name)
	}
	return fmt.Sprintf("unknown capability bit %d", e.ID)
}

func (e *UnknownCapabilityError) Is(target error) bool {
	return target == ErrUnknownCapability
}

// ToErrorDetail implements DetailedError.
func (e *UnknownCapabilityError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "registry", Code: "unknown_capability"}
}

// CapabilitySpaceExhaustedError reports a declaration past the representable capability count.
type CapabilitySpaceExhaustedError struct {
	Name  string
	Limit int
}

func (e *CapabilitySpaceExhaustedError) Error() string {
	return fmt.Sprintf("cannot declare capability %q: registry holds at most %d capabilities", e.Name, e.Limit)
}

func (e *CapabilitySpaceExhaustedError) Is(target error) bool {
	return target == ErrCapabilitySpaceExhausted
}

// ToErrorDetail implements DetailedError.
func (e *CapabilitySpaceExhaustedError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "registry", Code: "capability_space_exhausted"}
}

// UnknownCombinationError reports a detected capability set with no variant.
// It only occurs in observed mode.
type UnknownCombinationError struct {
	Set          entities.CapabilitySet
	Capabilities []string
}

func (e *UnknownCombinationError) Error() string {
	return fmt.Sprintf("no variant for capability set %s [%s]", e.Set, strings.Join(e.Capabilities, ", "))
}

func (e *UnknownCombinationError) Is(target error) bool {
	return target == ErrUnknownCombination
}

// ToErrorDetail implements DetailedError.
func (e *UnknownCombinationError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message: e.Error(),
		Type:    "conversion",
		Code:    "unknown_combination",
		Details: map[string]any{"capabilities": e.Capabilities},
	}
}

// ContractMismatchError reports an implementor that does not satisfy a
// capability it was declared or projected with.
type ContractMismatchError struct {
	Err         error
	Capability  string
	Implementor string
}

func (e *ContractMismatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s does not satisfy capability %q: %v", e.Implementor, e.Capability, e.Err)
	}
	return fmt.Sprintf("%s does not satisfy capability %q", e.Implementor, e.Capability)
}

func (e *ContractMismatchError) Unwrap() error {
	return e.Err
}

func (e *ContractMismatchError) Is(target error) bool {
	return target == ErrContractMismatch
}

// ToErrorDetail implements DetailedError.
func (e *ContractMismatchError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "contract", Code: "contract_mismatch"}
}

// InvalidContractError reports a contract that cannot describe a capability,
// such as a non-interface Go type or an unknown WASM value type.
type InvalidContractError struct {
	Contract string
	Reason   string
}

func (e *InvalidContractError) Error() string {
	return fmt.Sprintf("invalid contract %s: %s", e.Contract, e.Reason)
}

func (e *InvalidContractError) Is(target error) bool {
	return target == ErrInvalidContract
}

// ToErrorDetail implements DetailedError.
func (e *InvalidContractError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "contract", Code: "invalid_contract"}
}

// InvalidCapabilityNameError reports an empty or otherwise unusable capability name.
type InvalidCapabilityNameError struct {
	Name string
}

func (e *InvalidCapabilityNameError) Error() string {
	return fmt.Sprintf("invalid capability name %q", e.Name)
}

// ToErrorDetail implements DetailedError.
func (e *InvalidCapabilityNameError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "registry", Code: "invalid_name"}
}

// DuplicateImplementorError reports an implementor registered twice.
type DuplicateImplementorError struct {
	Implementor string
}

func (e *DuplicateImplementorError) Error() string {
	return fmt.Sprintf("implementor %s already registered", e.Implementor)
}

// ToErrorDetail implements DetailedError.
func (e *DuplicateImplementorError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "detection", Code: "duplicate_implementor"}
}

// UnregisteredImplementorError reports an object wrapped under the explicit
// strategy without a prior registration.
type UnregisteredImplementorError struct {
	Implementor string
}

func (e *UnregisteredImplementorError) Error() string {
	return fmt.Sprintf("implementor %s is not registered and structural probing is disabled", e.Implementor)
}

func (e *UnregisteredImplementorError) Is(target error) bool {
	return target == ErrUnregisteredImplementor
}

// ToErrorDetail implements DetailedError.
func (e *UnregisteredImplementorError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "detection", Code: "unregistered_implementor"}
}

// MissingDeclarationError reports a registration without a capability list
// under the explicit strategy.
type MissingDeclarationError struct {
	Implementor string
}

func (e *MissingDeclarationError) Error() string {
	return fmt.Sprintf("implementor %s must list its capabilities under the explicit strategy", e.Implementor)
}

// ToErrorDetail implements DetailedError.
func (e *MissingDeclarationError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "detection", Code: "missing_declaration"}
}

// SealedError reports a mutation attempted after a multiplexer was sealed.
type SealedError struct {
	Operation string
}

func (e *SealedError) Error() string {
	return fmt.Sprintf("cannot %s: multiplexer is sealed", e.Operation)
}

func (e *SealedError) Is(target error) bool {
	return target == ErrSealed
}

// ToErrorDetail implements DetailedError.
func (e *SealedError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "registry", Code: "sealed"}
}

// DeclarationError represents a declaration file that failed to load.
type DeclarationError struct {
	Err   error
	File  string
	Field string
}

func (e *DeclarationError) Error() string {
	var where string
	switch {
	case e.File != "" && e.Field != "":
		where = fmt.Sprintf(" %s (field '%s')", e.File, e.Field)
	case e.File != "":
		where = " " + e.File
	case e.Field != "":
		where = fmt.Sprintf(" field '%s'", e.Field)
	}
	return fmt.Sprintf("declaration%s invalid: %v", where, e.Err)
}

func (e *DeclarationError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *DeclarationError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "declaration", Code: e.Field}
}

// SchemaError represents a schema generation or validation error.
type SchemaError struct {
	Err  error
	Type string
}

func (e *SchemaError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("schema error for type %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("schema error: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *SchemaError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "validation", Code: "schema"}
}
