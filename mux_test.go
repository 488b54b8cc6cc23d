package mux

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/reglet-mux/domain/entities"
	domainerrors "github.com/reglet-dev/reglet-mux/domain/errors"
	"github.com/reglet-dev/reglet-mux/internal/testutil"
)

type Greeter interface {
	Greet() string
}

type Calculator interface {
	Calculate(a, b int) int
}

type greeter struct{ name string }

func (g *greeter) Greet() string { return "hello " + g.name }

type calculator struct{}

func (*calculator) Calculate(a, b int) int { return a + b }

type calculatorGreeter struct{ greeted int }

func (c *calculatorGreeter) Greet() string          { c.greeted++; return "hi" }
func (c *calculatorGreeter) Calculate(a, b int) int { return a + b + c.greeted }

type nothing struct{}

// newShape declares Greet and Calculate in that order.
func newShape(t *testing.T, opts ...Option) (*Mux, entities.CapabilityID, entities.CapabilityID) {
	t.Helper()
	m := New("Shape", opts...)
	greet, err := Declare[Greeter](m, "Greet")
	require.NoError(t, err)
	calc, err := Declare[Calculator](m, "Calculate")
	require.NoError(t, err)
	return m, greet, calc
}

func variantNames(vs []entities.Variant) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Name
	}
	return out
}

var shapeVariants = []string{"ShapeNone", "ShapeGreet", "ShapeCalculate", "ShapeGreetCalculate"}

func TestScenario(t *testing.T) {
	tests := []struct {
		name     string
		mode     entities.Mode
		register bool
	}{
		{name: "full", mode: entities.ModeFull},
		{name: "observed", mode: entities.ModeObserved, register: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, greet, calc := newShape(t, WithMode(tt.mode))

			if tt.register {
				for _, typ := range []reflect.Type{
					reflect.TypeFor[*greeter](),
					reflect.TypeFor[*calculator](),
					reflect.TypeFor[*calculatorGreeter](),
					reflect.TypeFor[*nothing](),
				} {
					_, err := m.RegisterImplementor(typ)
					require.NoError(t, err)
				}
			}
			require.NoError(t, m.Seal())
			assert.Equal(t, shapeVariants, variantNames(m.Variants()))

			cases := []struct {
				obj      any
				variant  string
				hasGreet bool
				hasCalc  bool
			}{
				{obj: &greeter{name: "bob"}, variant: "ShapeGreet", hasGreet: true},
				{obj: &calculator{}, variant: "ShapeCalculate", hasCalc: true},
				{obj: &calculatorGreeter{}, variant: "ShapeGreetCalculate", hasGreet: true, hasCalc: true},
				{obj: &nothing{}, variant: "ShapeNone"},
			}
			for _, c := range cases {
				v, err := m.Wrap(c.obj)
				require.NoError(t, err)
				assert.Equal(t, c.variant, v.Tag().Name)
				assert.Equal(t, c.hasGreet, v.Implements(greet))
				assert.Equal(t, c.hasCalc, v.Implements(calc))

				g, ok := TryAs[Greeter](v, greet)
				assert.Equal(t, c.hasGreet, ok)
				if ok {
					assert.NotEmpty(t, g.Greet())
				}
				cl, ok := TryAs[Calculator](v, calc)
				assert.Equal(t, c.hasCalc, ok)
				if ok {
					assert.GreaterOrEqual(t, cl.Calculate(2, 3), 5)
				}
				require.NoError(t, v.Release())
			}
		})
	}
}

func TestWrap_IdentitySharing(t *testing.T) {
	m, greet, calc := newShape(t, WithMode(entities.ModeFull))

	obj := &calculatorGreeter{}
	v, err := m.Wrap(obj)
	require.NoError(t, err)

	g, ok := TryAs[Greeter](v, greet)
	require.True(t, ok)
	c, ok := TryAs[Calculator](v, calc)
	require.True(t, ok)

	assert.Same(t, obj, g.(*calculatorGreeter))
	assert.Same(t, obj, c.(*calculatorGreeter))

	g.Greet()
	g.Greet()
	assert.Equal(t, 5, c.Calculate(1, 2), "the calculator handle observes greetings")

	u, ok := v.Underlying()
	require.True(t, ok)
	assert.Same(t, obj, u)
}

func TestWrap_TagIsSnapshot(t *testing.T) {
	m, _, _ := newShape(t, WithMode(entities.ModeFull))

	v, err := m.Wrap(&greeter{})
	require.NoError(t, err)

	tag := v.Tag()
	tag.Name = "changed"
	tag.Set = entities.SetOf(0, 1)
	assert.Equal(t, "ShapeGreet", v.Tag().Name)
	assert.Equal(t, entities.SetOf(0), v.Set())

	clone := v.Clone()
	require.NotNil(t, clone)
	assert.Equal(t, v.Tag(), clone.Tag())
}

func TestWrap_Deterministic(t *testing.T) {
	build := func() *Mux {
		m, _, _ := newShape(t)
		_, err := m.RegisterImplementor(reflect.TypeFor[*calculatorGreeter]())
		require.NoError(t, err)
		_, err = m.RegisterImplementor(reflect.TypeFor[*greeter]())
		require.NoError(t, err)
		require.NoError(t, m.Seal())
		return m
	}

	a, b := build(), build()
	assert.Equal(t, a.Variants(), b.Variants())

	fa, err := a.Table().Fingerprint()
	require.NoError(t, err)
	fb, err := b.Table().Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fa, fb)

	va, err := a.Wrap(&calculatorGreeter{})
	require.NoError(t, err)
	vb, err := b.Wrap(&calculatorGreeter{})
	require.NoError(t, err)
	assert.Equal(t, va.Tag(), vb.Tag())
}

func TestWrap_ObservedUnknownCombination(t *testing.T) {
	m, _, _ := newShape(t)
	_, err := m.RegisterImplementor(reflect.TypeFor[*greeter]())
	require.NoError(t, err)

	_, err = m.Wrap(&calculatorGreeter{})
	require.True(t, errors.Is(err, domainerrors.ErrUnknownCombination))
	combo := testutil.RequireErrorAs[*domainerrors.UnknownCombinationError](t, err)
	assert.Equal(t, []string{"Greet", "Calculate"}, combo.Capabilities)

	v, err := m.Wrap(&nothing{})
	require.NoError(t, err, "the empty set is always a variant")
	assert.Equal(t, "ShapeNone", v.Tag().Name)
}

func TestWrap_ExplicitStrategy(t *testing.T) {
	m, greet, calc := newShape(t, WithStrategy(entities.StrategyExplicit))

	_, err := m.RegisterImplementor(reflect.TypeFor[*greeter]())
	testutil.RequireErrorAs[*domainerrors.MissingDeclarationError](t, err)

	set, err := m.RegisterImplementor(reflect.TypeFor[*calculatorGreeter](), "Greet")
	require.NoError(t, err)
	assert.Equal(t, entities.SetOf(greet), set)

	_, err = m.RegisterExplicit(reflect.TypeFor[*nothing](), nil)
	require.NoError(t, err)

	_, err = m.RegisterImplementor(reflect.TypeFor[*calculator](), "Greet")
	mismatch := testutil.RequireErrorAs[*domainerrors.ContractMismatchError](t, err)
	assert.Equal(t, "Greet", mismatch.Capability)

	v, err := m.Wrap(&calculatorGreeter{})
	require.NoError(t, err)
	assert.Equal(t, "ShapeGreet", v.Tag().Name, "the explicit list narrows the structural set")
	assert.False(t, v.Implements(calc))

	v, err = m.Wrap(&nothing{})
	require.NoError(t, err)
	assert.Equal(t, "ShapeNone", v.Tag().Name)

	_, err = m.Wrap(&greeter{})
	assert.True(t, errors.Is(err, domainerrors.ErrUnregisteredImplementor))
}

func TestSeal(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		m, _, _ := newShape(t)
		assert.False(t, m.Sealed())
		assert.Nil(t, m.Table())
		assert.Nil(t, m.Variants())

		require.NoError(t, m.Seal())
		table := m.Table()
		require.NoError(t, m.Seal())
		assert.Same(t, table, m.Table())
		assert.True(t, m.Sealed())
	})

	t.Run("wrap seals", func(t *testing.T) {
		m, _, _ := newShape(t, WithMode(entities.ModeFull))
		_, err := m.Wrap(&greeter{})
		require.NoError(t, err)
		assert.True(t, m.Sealed())
	})

	t.Run("declarations after seal", func(t *testing.T) {
		m, _, _ := newShape(t)
		require.NoError(t, m.Seal())

		_, err := Declare[Greeter](m, "Other")
		assert.True(t, errors.Is(err, domainerrors.ErrSealed))
		_, err = m.RegisterImplementor(reflect.TypeFor[*greeter]())
		assert.True(t, errors.Is(err, domainerrors.ErrSealed))
		_, err = m.RegisterExplicit(reflect.TypeFor[*greeter](), []string{"Greet"})
		assert.True(t, errors.Is(err, domainerrors.ErrSealed))
	})

	t.Run("unset mode", func(t *testing.T) {
		m, _, _ := newShape(t, WithMode(entities.ModeUnset))
		require.Error(t, m.Seal())
		assert.False(t, m.Sealed())
		_, err := m.Wrap(&greeter{})
		assert.Error(t, err)
	})
}

func TestWrap_Nil(t *testing.T) {
	m, _, _ := newShape(t)
	_, err := m.Wrap(nil)
	assert.Error(t, err)
}

func TestDeclare_NotAnInterface(t *testing.T) {
	m := New("Shape")
	_, err := Declare[greeter](m, "Greet")
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidContract))
	assert.Empty(t, m.Capabilities())
}

func TestDeclareMultiplexer(t *testing.T) {
	t.Run("opaque capabilities", func(t *testing.T) {
		m, err := DeclareMultiplexer("Tagged", []string{"Alpha", "Beta"})
		require.NoError(t, err)
		assert.Equal(t, "Tagged", m.Name())
		assert.Equal(t, entities.ModeObserved, m.Mode())
		assert.Equal(t, entities.StrategyStructural, m.Strategy())
		require.Len(t, m.Capabilities(), 2)

		_, err = m.RegisterImplementor(reflect.TypeFor[*nothing](), "Beta")
		require.NoError(t, err)

		obj := &nothing{}
		v, err := m.Wrap(obj)
		require.NoError(t, err)
		assert.Equal(t, "TaggedBeta", v.Tag().Name)

		h, ok := v.TryAs(1)
		require.True(t, ok)
		assert.Same(t, obj, h)
		_, ok = v.TryAs(0)
		assert.False(t, ok)
	})

	t.Run("opaque capabilities are never probed", func(t *testing.T) {
		m, err := DeclareMultiplexer("Tagged", []string{"Alpha"}, WithMode(entities.ModeFull))
		require.NoError(t, err)
		v, err := m.Wrap(&greeter{})
		require.NoError(t, err)
		assert.Equal(t, "TaggedNone", v.Tag().Name)
	})

	t.Run("duplicate names", func(t *testing.T) {
		_, err := DeclareMultiplexer("Tagged", []string{"Alpha", "Alpha"})
		assert.True(t, errors.Is(err, domainerrors.ErrDuplicateCapability))
	})
}
