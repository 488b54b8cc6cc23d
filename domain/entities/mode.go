package entities

import "fmt"

// Mode selects which capability sets become variants.
type Mode uint8

const (
	// ModeUnset is the zero value. A multiplexer refuses to seal with it.
	ModeUnset Mode = iota
	// ModeFull makes every subset of the declared capabilities a variant.
	ModeFull
	// ModeObserved makes only the empty set and the registered implementors' sets variants.
	ModeObserved
)

// ParseMode parses "full" or "observed".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "full":
		return ModeFull, nil
	case "observed":
		return ModeObserved, nil
	default:
		return ModeUnset, fmt.Errorf("unknown mode %q (want full or observed)", s)
	}
}

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeObserved:
		return "observed"
	default:
		return "unset"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Strategy selects how implementor capabilities are detected.
type Strategy uint8

const (
	// StrategyStructural probes contracts for implementors registered without
	// an explicit capability list and for unregistered objects.
	StrategyStructural Strategy = iota
	// StrategyExplicit requires every implementor to list its capabilities.
	StrategyExplicit
)

// ParseStrategy parses "structural" or "explicit". An empty string is structural.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "", "structural":
		return StrategyStructural, nil
	case "explicit":
		return StrategyExplicit, nil
	default:
		return StrategyStructural, fmt.Errorf("unknown strategy %q (want structural or explicit)", s)
	}
}

func (s Strategy) String() string {
	if s == StrategyExplicit {
		return "explicit"
	}
	return "structural"
}
