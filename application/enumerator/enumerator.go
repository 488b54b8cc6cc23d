// Package enumerator derives the variants a multiplexer can represent from
// its declared capabilities.
package enumerator

import (
	"fmt"
	"iter"
	"log/slog"
	"math"
	"slices"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"

	"github.com/reglet-dev/reglet-mux/domain/entities"
	domainerrors "github.com/reglet-dev/reglet-mux/domain/errors"
	"github.com/reglet-dev/reglet-mux/log"
)

// LargeFullThreshold is the capability count above which full enumeration
// logs a warning. 2^N variants stop being practical to list or match past it.
const LargeFullThreshold = 10

// fingerprintMaskLimit bounds how many capabilities a full table may have
// for its variant masks to be included in the fingerprint.
const fingerprintMaskLimit = 16

// encMode is the CBOR encoder configured with Core Deterministic Encoding,
// so the same table always produces identical bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("enumerator: CBOR encoder initialization failed: " + err.Error())
	}
}

// Option configures Enumerate.
type Option func(*config)

type config struct {
	logger *slog.Logger
	name   string
}

func defaultConfig() config {
	return config{logger: log.Nop()}
}

// WithName sets the multiplexer name used as the variant name prefix.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = log.OrNop(logger)
	}
}

// Table is the immutable result of an enumeration.
// Variants are ordered by ascending bitmask value.
type Table struct {
	index    map[entities.CapabilitySet]int
	name     string
	caps     []entities.Capability
	observed []entities.Variant
	mask     entities.CapabilitySet
	mode     entities.Mode
}

// Enumerate derives the variant table for caps, which must be indexed by ID.
// In full mode every subset of caps is a variant and observed is ignored.
// In observed mode the variants are the empty set plus each distinct set in observed.
func Enumerate(caps []entities.Capability, mode entities.Mode, observed []entities.CapabilitySet, opts ...Option) (*Table, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	t := &Table{
		name: cfg.name,
		mode: mode,
		caps: slices.Clone(caps),
		mask: entities.FullSet(len(caps)),
	}

	switch mode {
	case entities.ModeFull:
		if len(caps) > LargeFullThreshold {
			cfg.logger.Warn("full enumeration over many capabilities; consider observed mode",
				"multiplexer", cfg.name, "capabilities", len(caps))
		}
	case entities.ModeObserved:
		if err := t.collect(observed); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("enumeration mode must be full or observed, got %s", mode)
	}

	cfg.logger.Debug("enumerated variants",
		"multiplexer", cfg.name, "mode", mode.String(), "capabilities", len(caps), "variants", t.Count())
	return t, nil
}

// collect builds the sorted, deduplicated observed variant list.
func (t *Table) collect(observed []entities.CapabilitySet) error {
	sets := make([]entities.CapabilitySet, 0, len(observed)+1)
	sets = append(sets, entities.EmptySet)
	for _, s := range observed {
		if !s.IsSubsetOf(t.mask) {
			extra := s &^ t.mask
			return &domainerrors.UnknownCapabilityError{ID: int(extra.IDs()[0])}
		}
		sets = append(sets, s)
	}

	slices.Sort(sets)
	sets = slices.Compact(sets)

	t.observed = make([]entities.Variant, len(sets))
	t.index = make(map[entities.CapabilitySet]int, len(sets))
	for i, s := range sets {
		t.observed[i] = t.variant(s, uint64(i))
		t.index[s] = i
	}
	return nil
}

func (t *Table) variant(set entities.CapabilitySet, index uint64) entities.Variant {
	return entities.Variant{
		Name:  entities.VariantName(t.name, t.caps, set),
		Set:   set,
		Index: index,
	}
}

// Name returns the multiplexer name.
func (t *Table) Name() string {
	return t.name
}

// Mode returns the enumeration mode.
func (t *Table) Mode() entities.Mode {
	return t.mode
}

// Capabilities returns the capabilities the table was built from.
func (t *Table) Capabilities() []entities.Capability {
	return slices.Clone(t.caps)
}

// Lookup returns the variant for set. In full mode every set within the
// declared capabilities is a variant and is materialized on demand.
func (t *Table) Lookup(set entities.CapabilitySet) (entities.Variant, bool) {
	if t.mode == entities.ModeFull {
		if !set.IsSubsetOf(t.mask) {
			return entities.Variant{}, false
		}
		return t.variant(set, uint64(set)), true
	}

	i, ok := t.index[set]
	if !ok {
		return entities.Variant{}, false
	}
	return t.observed[i], true
}

// Contains reports whether set is a variant.
func (t *Table) Contains(set entities.CapabilitySet) bool {
	_, ok := t.Lookup(set)
	return ok
}

// Count returns the number of variants. It saturates at math.MaxUint64
// for a full table over 64 capabilities.
func (t *Table) Count() uint64 {
	if t.mode == entities.ModeFull {
		if len(t.caps) >= entities.MaxCapabilities {
			return math.MaxUint64
		}
		return uint64(1) << uint(len(t.caps))
	}
	return uint64(len(t.observed))
}

// All yields the variants in ascending bitmask order.
func (t *Table) All() iter.Seq[entities.Variant] {
	return func(yield func(entities.Variant) bool) {
		if t.mode != entities.ModeFull {
			for _, v := range t.observed {
				if !yield(v) {
					return
				}
			}
			return
		}

		last := uint64(t.mask)
		for m := uint64(0); ; m++ {
			if !yield(t.variant(entities.CapabilitySet(m), m)) {
				return
			}
			if m == last {
				return
			}
		}
	}
}

// Variants collects All into a slice. Avoid it for large full tables.
func (t *Table) Variants() []entities.Variant {
	return slices.Collect(t.All())
}

// Matching returns the variants that carry the capability, in table order.
func (t *Table) Matching(id entities.CapabilityID) []entities.Variant {
	var out []entities.Variant
	for v := range t.All() {
		if v.Has(id) {
			out = append(out, v)
		}
	}
	return out
}

// fingerprintInput is the canonical form hashed by Fingerprint.
type fingerprintInput struct {
	Name         string   `cbor:"1,keyasint"`
	Mode         string   `cbor:"2,keyasint"`
	Capabilities []string `cbor:"3,keyasint"`
	Masks        []uint64 `cbor:"4,keyasint,omitempty"`
}

// Fingerprint returns a BLAKE3 digest of the table's canonical CBOR encoding.
// Two tables built from the same name, mode, capability order and observed
// sets have the same fingerprint.
func (t *Table) Fingerprint() ([32]byte, error) {
	in := fingerprintInput{
		Name:         t.name,
		Mode:         t.mode.String(),
		Capabilities: make([]string, len(t.caps)),
	}
	for i, c := range t.caps {
		in.Capabilities[i] = c.Name
	}
	if t.mode != entities.ModeFull || len(t.caps) <= fingerprintMaskLimit {
		for v := range t.All() {
			in.Masks = append(in.Masks, uint64(v.Set))
		}
	}

	data, err := encMode.Marshal(in)
	if err != nil {
		return [32]byte{}, fmt.Errorf("failed to encode variant table: %w", err)
	}
	return blake3.Sum256(data), nil
}
