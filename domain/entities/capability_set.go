package entities

import (
	"math/bits"
	"strconv"
	"strings"
)

// CapabilitySet is an immutable set of capabilities encoded as a bitmask.
// Bit i is set when the capability with ID i is a member.
type CapabilitySet uint64

// EmptySet contains no capabilities.
const EmptySet CapabilitySet = 0

// SetOf builds a set from capability IDs.
func SetOf(ids ...CapabilityID) CapabilitySet {
	var s CapabilitySet
	for _, id := range ids {
		s |= id.Bit()
	}
	return s
}

// FullSet returns the set holding the first n capabilities.
func FullSet(n int) CapabilitySet {
	if n >= MaxCapabilities {
		return ^CapabilitySet(0)
	}
	if n <= 0 {
		return EmptySet
	}
	return CapabilitySet(1)<<uint(n) - 1
}

// Has reports whether id is a member.
func (s CapabilitySet) Has(id CapabilityID) bool {
	return s&id.Bit() != 0
}

// With returns s plus id.
func (s CapabilitySet) With(id CapabilityID) CapabilitySet {
	return s | id.Bit()
}

// Without returns s minus id.
func (s CapabilitySet) Without(id CapabilityID) CapabilitySet {
	return s &^ id.Bit()
}

// Union returns s ∪ o.
func (s CapabilitySet) Union(o CapabilitySet) CapabilitySet {
	return s | o
}

// Intersect returns s ∩ o.
func (s CapabilitySet) Intersect(o CapabilitySet) CapabilitySet {
	return s & o
}

// IsSubsetOf reports whether every member of s is in o.
func (s CapabilitySet) IsSubsetOf(o CapabilitySet) bool {
	return s&^o == 0
}

// IsEmpty reports whether the set has no members.
func (s CapabilitySet) IsEmpty() bool {
	return s == EmptySet
}

// Len returns the number of members.
func (s CapabilitySet) Len() int {
	return bits.OnesCount64(uint64(s))
}

// IDs returns the members in ascending order.
func (s CapabilitySet) IDs() []CapabilityID {
	ids := make([]CapabilityID, 0, s.Len())
	for rest := uint64(s); rest != 0; rest &= rest - 1 {
		ids = append(ids, CapabilityID(bits.TrailingZeros64(rest)))
	}
	return ids
}

// String renders the set as its member IDs, e.g. "{0,2}".
func (s CapabilitySet) String() string {
	ids := s.IDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(int(id))
	}
	return "{" + strings.Join(parts, ",") + "}"
}
