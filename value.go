package mux

import (
	"math/bits"
	"sync"
	"sync/atomic"

	"github.com/reglet-dev/reglet-mux/domain/entities"
)

// group is the shared ownership record of one wrapped object. Every clone of
// a value points at the same group.
type group struct {
	obj      any
	releaser Releaser
	err      error
	refs     atomic.Int64
	once     sync.Once
}

func newGroup(obj any, releaser Releaser) *group {
	g := &group{obj: obj, releaser: releaser}
	g.refs.Store(1)
	return g
}

// acquire adds a reference unless the group has already been released.
func (g *group) acquire() bool {
	for {
		n := g.refs.Load()
		if n <= 0 {
			return false
		}
		if g.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// drop removes a reference and runs the releaser when it was the last one.
func (g *group) drop() error {
	if g.refs.Add(-1) != 0 {
		return nil
	}
	g.once.Do(func() {
		if g.releaser != nil {
			g.err = g.releaser(g.obj)
		}
	})
	return g.err
}

// Value is one reference to a wrapped object. Its tag is fixed at wrap time
// and never changes.
//
// A Value is safe for concurrent use. Release ends this reference only;
// other clones stay valid until they are released too.
type Value struct {
	group    *group
	handles  []any
	variant  entities.Variant
	released atomic.Bool
}

// Tag returns the variant the object was classified as.
func (v *Value) Tag() entities.Variant {
	return v.variant
}

// Set returns the capability set of the tag.
func (v *Value) Set() entities.CapabilitySet {
	return v.variant.Set
}

// Clone returns a new reference to the same object and handles.
// It returns nil when v has been released or the object is gone.
func (v *Value) Clone() *Value {
	if v.released.Load() || !v.group.acquire() {
		return nil
	}
	return &Value{
		group:   v.group,
		handles: v.handles,
		variant: v.variant,
	}
}

// Release ends this reference. The releaser runs once, when the last
// reference of the group is released, and its error is returned to that
// caller. Releasing the same reference again does nothing.
func (v *Value) Release() error {
	if !v.released.CompareAndSwap(false, true) {
		return nil
	}
	return v.group.drop()
}

// Released reports whether this reference has been released.
func (v *Value) Released() bool {
	return v.released.Load()
}

// Refs returns the number of live references sharing the object.
func (v *Value) Refs() int64 {
	return v.group.refs.Load()
}

// TryAs returns the handle for capability id when the tag carries it.
// It answers from the tag alone and never probes the object.
func (v *Value) TryAs(id entities.CapabilityID) (any, bool) {
	if v.released.Load() || !v.variant.Has(id) {
		return nil, false
	}
	return v.handles[handleIndex(v.variant.Set, id)], true
}

// Implements reports whether the tag carries capability id.
func (v *Value) Implements(id entities.CapabilityID) bool {
	_, ok := v.TryAs(id)
	return ok
}

// Underlying returns the wrapped object itself.
func (v *Value) Underlying() (any, bool) {
	if v.released.Load() {
		return nil, false
	}
	return v.group.obj, true
}

// handleIndex locates the handle of id among the handles of set, which are
// stored in ID order.
func handleIndex(set entities.CapabilitySet, id entities.CapabilityID) int {
	return bits.OnesCount64(uint64(set & (id.Bit() - 1)))
}
