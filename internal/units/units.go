// Package units converts quantities between the metric units used by the
// ingredient catalogue. Conversions are only defined within one physical
// family: mass (kg, g) or volume (lt, ml). Cross-family conversion has no
// meaning without a density and always fails.
package units

import (
	"errors"
	"fmt"
	"strings"
)

// Supported unit symbols.
const (
	Kilogram   = "kg"
	Gram       = "g"
	Liter      = "lt"
	Milliliter = "ml"
)

var (
	// ErrInvalidUnit reports a symbol outside the supported metric set.
	ErrInvalidUnit = errors.New("units: invalid unit")
	// ErrIncompatibleUnits reports a conversion across physical families.
	ErrIncompatibleUnits = errors.New("units: incompatible units")
)

type family int

const (
	mass family = iota
	volume
)

// Each unit maps to its family and its factor toward the family base
// (kilogram for mass, liter for volume).
var factors = map[string]struct {
	family family
	toBase float64
}{
	Kilogram:   {mass, 1},
	Gram:       {mass, 0.001},
	Liter:      {volume, 1},
	Milliliter: {volume, 0.001},
}

// Normalize trims and lowercases a unit symbol.
func Normalize(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}

// IsMetricUnit reports whether the symbol is one of kg, g, lt, or ml.
func IsMetricUnit(unit string) bool {
	_, ok := factors[Normalize(unit)]
	return ok
}

// Compatible reports whether both symbols are metric units of the same
// physical family.
func Compatible(from, to string) bool {
	src, okFrom := factors[Normalize(from)]
	dst, okTo := factors[Normalize(to)]
	return okFrom && okTo && src.family == dst.family
}

// Convert expresses value, given in from, as an amount of to. The identity
// conversion is exact; everything else goes through the family base.
func Convert(value float64, from, to string) (float64, error) {
	fromSym, toSym := Normalize(from), Normalize(to)

	src, ok := factors[fromSym]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidUnit, from)
	}
	dst, ok := factors[toSym]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidUnit, to)
	}

	if fromSym == toSym {
		return value, nil
	}
	if src.family != dst.family {
		return 0, fmt.Errorf("%w: %s -> %s", ErrIncompatibleUnits, fromSym, toSym)
	}

	return value * src.toBase / dst.toBase, nil
}
