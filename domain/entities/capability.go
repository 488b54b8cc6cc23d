package entities

import (
	"strings"
	"unicode"
)

// MaxCapabilities is the number of capabilities a single registry can hold.
// Each capability occupies one bit of a CapabilitySet.
const MaxCapabilities = 64

// AccessorPrefix prefixes every per-capability accessor name.
const AccessorPrefix = "try_as_"

// CapabilityID is the stable bit position assigned to a capability.
// IDs are assigned in declaration order starting at zero.
type CapabilityID uint8

// Bit returns the single-capability set for the ID.
func (id CapabilityID) Bit() CapabilitySet {
	return CapabilitySet(1) << id
}

// Capability is a named interface contract declared in a registry.
type Capability struct {
	// Name is unique within the registry.
	Name string `json:"name"`

	// Description is free text for tooling.
	Description string `json:"description,omitempty"`

	// ID is the bit position of the capability.
	ID CapabilityID `json:"id"`
}

// Accessor returns the documented accessor name for the capability,
// e.g. "try_as_greet" for "Greet" and "try_as_binary_debug" for "BinaryDebug".
func (c Capability) Accessor() string {
	return AccessorName(c.Name)
}

// String returns the capability name.
func (c Capability) String() string {
	return c.Name
}

// AccessorName derives the accessor name for a capability name.
func AccessorName(name string) string {
	return AccessorPrefix + SnakeCase(name)
}

// SnakeCase lower-cases an identifier, inserting underscores at word boundaries.
// "BinaryDebug" -> "binary_debug", "HTTPClient" -> "http_client", "io.Reader" -> "io_reader".
func SnakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	b.Grow(len(name) + 4)

	for i, r := range runes {
		switch {
		case r == '-' || r == '.' || r == ' ' || r == '_':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
			continue
		case unicode.IsUpper(r):
			if i > 0 && b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}

	return strings.TrimSuffix(b.String(), "_")
}
