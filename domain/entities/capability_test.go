package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Greet", want: "greet"},
		{in: "Calculate", want: "calculate"},
		{in: "BinaryDebug", want: "binary_debug"},
		{in: "HTTPClient", want: "http_client"},
		{in: "io.Reader", want: "io_reader"},
		{in: "already_snake", want: "already_snake"},
		{in: "Version2Reader", want: "version2_reader"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SnakeCase(tt.in))
		})
	}
}

func TestCapability_Accessor(t *testing.T) {
	c := Capability{ID: 1, Name: "Calculate"}
	assert.Equal(t, "try_as_calculate", c.Accessor())
	assert.Equal(t, "Calculate", c.String())
	assert.Equal(t, SetOf(1), c.ID.Bit())
}

func TestVariantName(t *testing.T) {
	caps := []Capability{{ID: 0, Name: "Greet"}, {ID: 1, Name: "Calculate"}}

	assert.Equal(t, "ShapeNone", VariantName("Shape", caps, EmptySet))
	assert.Equal(t, "ShapeGreet", VariantName("Shape", caps, SetOf(0)))
	assert.Equal(t, "ShapeGreetCalculate", VariantName("Shape", caps, SetOf(0, 1)))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("full")
	assert.NoError(t, err)
	assert.Equal(t, ModeFull, m)

	m, err = ParseMode("observed")
	assert.NoError(t, err)
	assert.Equal(t, ModeObserved, m)

	_, err = ParseMode("partial")
	assert.Error(t, err)

	var decoded Mode
	assert.NoError(t, decoded.UnmarshalText([]byte("observed")))
	assert.Equal(t, ModeObserved, decoded)
	text, _ := ModeFull.MarshalText()
	assert.Equal(t, "full", string(text))
	assert.Equal(t, "unset", ModeUnset.String())
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	assert.NoError(t, err)
	assert.Equal(t, StrategyStructural, s)

	s, err = ParseStrategy("explicit")
	assert.NoError(t, err)
	assert.Equal(t, StrategyExplicit, s)
	assert.Equal(t, "explicit", s.String())

	_, err = ParseStrategy("guess")
	assert.Error(t, err)
}

func TestNamedImplementor(t *testing.T) {
	assert.Equal(t, "greeter", NamedImplementor("greeter").ImplementorKey())
}
