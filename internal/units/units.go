// Package units converts device-native mg/dL values into the configured display unit.
package units

import (
	"fmt"
	"strconv"
	"strings"
)

// Unit is a glucose measurement scale.
type Unit uint8

const (
	MgDL Unit = iota
	MmolL
)

// mgdlPerMmol is the mg/dL to mmol/L divisor used for display.
const mgdlPerMmol = 18.0

func (u Unit) String() string {
	switch u {
	case MmolL:
		return "mmol/L"
	default:
		return "mg/dL"
	}
}

// ParseUnit accepts "mgdl", "mg/dl", "mmol" and "mmol/l" in any case.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mgdl", "mg/dl", "mg":
		return MgDL, nil
	case "mmol", "mmol/l", "mmoll":
		return MmolL, nil
	}
	return MgDL, fmt.Errorf("units: unknown unit %q", s)
}

func (u *Unit) UnmarshalText(b []byte) error {
	v, err := ParseUnit(string(b))
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// Toggle returns the other unit.
func (u Unit) Toggle() Unit {
	if u == MmolL {
		return MgDL
	}
	return MmolL
}

// Format renders a mg/dL value (or difference) for display in u.
// mmol/L values get one decimal.
func Format(v int, u Unit) string {
	if u == MmolL {
		return strconv.FormatFloat(float64(v)/mgdlPerMmol, 'f', 1, 64)
	}
	return strconv.Itoa(v)
}
