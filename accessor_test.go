package mux

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/reglet-mux/domain/entities"
	domainerrors "github.com/reglet-dev/reglet-mux/domain/errors"
)

type BinaryDebug interface {
	DebugBytes() []byte
}

func TestAccessor_Names(t *testing.T) {
	m, _, _ := newShape(t)
	_, err := Declare[BinaryDebug](m, "BinaryDebug")
	require.NoError(t, err)

	var names []string
	for _, a := range m.Accessors() {
		names = append(names, a.Name())
	}
	assert.Equal(t, []string{"try_as_greet", "try_as_calculate", "try_as_binary_debug"}, names)

	a, err := m.AccessorByMethod("try_as_binary_debug")
	require.NoError(t, err)
	assert.Equal(t, "BinaryDebug", a.Capability().Name)
	assert.Equal(t, entities.CapabilityID(2), a.Capability().ID)

	_, err = m.AccessorByMethod("try_as_fly")
	assert.True(t, errors.Is(err, domainerrors.ErrUnknownCapability))
	_, err = m.Accessor("Fly")
	assert.True(t, errors.Is(err, domainerrors.ErrUnknownCapability))
}

func TestAccessor_Get(t *testing.T) {
	m, _, _ := newShape(t, WithMode(entities.ModeFull))

	greet, err := m.Accessor("Greet")
	require.NoError(t, err)
	calc, err := m.AccessorByMethod("try_as_calculate")
	require.NoError(t, err)

	obj := &greeter{name: "ann"}
	v, err := m.Wrap(obj)
	require.NoError(t, err)

	h, ok := greet.Get(v)
	require.True(t, ok)
	assert.Same(t, obj, h)

	_, ok = calc.Get(v)
	assert.False(t, ok)
}

func TestTryAs_WrongType(t *testing.T) {
	m, greet, _ := newShape(t, WithMode(entities.ModeFull))

	v, err := m.Wrap(&greeter{})
	require.NoError(t, err)

	_, ok := TryAs[Calculator](v, greet)
	assert.False(t, ok)
	_, ok = TryAs[Greeter](v, 7)
	assert.False(t, ok)
}

func TestAccessorFor(t *testing.T) {
	m, _, _ := newShape(t, WithMode(entities.ModeFull))

	t.Run("matching interface", func(t *testing.T) {
		a, err := AccessorFor[Greeter](m, "Greet")
		require.NoError(t, err)
		assert.Equal(t, "try_as_greet", a.Name())

		v, err := m.Wrap(&calculatorGreeter{})
		require.NoError(t, err)
		g, ok := a.Get(v)
		require.True(t, ok)
		assert.Equal(t, "hi", g.Greet())
	})

	t.Run("wider target", func(t *testing.T) {
		_, err := AccessorFor[any](m, "Calculate")
		assert.NoError(t, err)
	})

	t.Run("mismatched interface", func(t *testing.T) {
		_, err := AccessorFor[Calculator](m, "Greet")
		assert.True(t, errors.Is(err, domainerrors.ErrInvalidContract))

		_, err = AccessorFor[fmt.Stringer](m, "Greet")
		assert.True(t, errors.Is(err, domainerrors.ErrInvalidContract))
	})

	t.Run("unknown capability", func(t *testing.T) {
		_, err := AccessorFor[Greeter](m, "Fly")
		assert.True(t, errors.Is(err, domainerrors.ErrUnknownCapability))
	})

	t.Run("opaque capability accepts any target", func(t *testing.T) {
		tagged, err := DeclareMultiplexer("Tagged", []string{"Alpha"}, WithMode(entities.ModeFull))
		require.NoError(t, err)
		_, err = AccessorFor[*greeter](tagged, "Alpha")
		assert.NoError(t, err)
	})
}
