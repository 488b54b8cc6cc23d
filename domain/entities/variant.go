package entities

import "strings"

// emptyVariantSuffix names the variant holding no capabilities.
const emptyVariantSuffix = "None"

// Variant is a capability set recognized as a distinguishable case of a multiplexer.
type Variant struct {
	// Name is the multiplexer name followed by the member capability names,
	// e.g. "ShapeGreetCalculate", or "ShapeNone" for the empty set.
	Name string `json:"name" cbor:"1,keyasint"`

	// Set holds the member capabilities.
	Set CapabilitySet `json:"set" cbor:"2,keyasint"`

	// Index is the position of the variant in bitmask order within its table.
	Index uint64 `json:"index" cbor:"3,keyasint"`
}

// Has reports whether the variant carries the capability.
func (v Variant) Has(id CapabilityID) bool {
	return v.Set.Has(id)
}

// VariantName builds the variant name for set. caps must be indexed by ID.
func VariantName(muxName string, caps []Capability, set CapabilitySet) string {
	if set.IsEmpty() {
		return muxName + emptyVariantSuffix
	}

	var b strings.Builder
	b.WriteString(muxName)
	for _, id := range set.IDs() {
		if int(id) < len(caps) {
			b.WriteString(caps[id].Name)
		}
	}
	return b.String()
}
