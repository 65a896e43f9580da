// Package face lays out glucose readings on the matrix.
package face

import (
	"bgmatrix/internal/glucose"
	"bgmatrix/internal/units"
)

const (
	// diffWindowSeconds bounds how far back from the newest reading the diff looks.
	diffWindowSeconds = 6*60 + 30
	// maxDiff is the largest change (mg/dL) still shown as a number.
	maxDiff = 99

	sgvCeiling = 9999
	sgvFloor   = 0
)

// Outcome classifies a diff computation.
type Outcome uint8

const (
	OutcomeOK Outcome = iota
	// OutcomeInsufficient means fewer than two readings; the label is empty.
	OutcomeInsufficient
	// OutcomeAmbiguous means the newest value sits strictly inside the window's range.
	OutcomeAmbiguous
	// OutcomeOutOfRange means the change exceeds maxDiff.
	OutcomeOutOfRange
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeInsufficient:
		return "insufficient"
	case OutcomeAmbiguous:
		return "ambiguous"
	case OutcomeOutOfRange:
		return "out_of_range"
	}
	return "unknown"
}

// Diff is the result of one diff computation.
type Diff struct {
	Outcome Outcome
	// Value is the signed change in mg/dL. It is only meaningful for OutcomeOK
	// and OutcomeOutOfRange.
	Value int
	// Window is the number of readings that took part.
	Window int
	// Label is the text drawn on the matrix.
	Label string
}

// FormatFunc renders a mg/dL quantity in the given unit.
type FormatFunc func(v int, u units.Unit) string

// ComputeDiff classifies the change over the readings within 6m30s of the
// newest one. readings are oldest first. A trend only counts when the newest
// value is the window's minimum or maximum.
func ComputeDiff(readings []glucose.Reading) Diff {
	if len(readings) < 2 {
		return Diff{Outcome: OutcomeInsufficient, Window: len(readings)}
	}

	last := readings[len(readings)-1]
	first := len(readings) - 1
	for i := len(readings) - 1; i >= 0; i-- {
		if last.Epoch-readings[i].Epoch > diffWindowSeconds {
			break
		}
		first = i
	}
	window := readings[first:]

	minSGV := sgvCeiling
	maxSGV := sgvFloor
	for _, r := range window {
		if r.SGV < minSGV {
			minSGV = r.SGV
		}
		if r.SGV > maxSGV {
			maxSGV = r.SGV
		}
	}

	base := last.SGV
	if base != minSGV && base != maxSGV {
		return Diff{Outcome: OutcomeAmbiguous, Window: len(window)}
	}

	var diff int
	if base == minSGV {
		diff = base - maxSGV
	} else {
		diff = base - minSGV
	}

	if diff > maxDiff || diff < -maxDiff {
		return Diff{Outcome: OutcomeOutOfRange, Value: diff, Window: len(window)}
	}
	return Diff{Outcome: OutcomeOK, Value: diff, Window: len(window)}
}

// DiffLabel returns the text for readings: "" with fewer than two readings,
// "?" when the trend is ambiguous or too large, otherwise the signed change
// with a leading "+" for zero and rises.
func DiffLabel(readings []glucose.Reading, u units.Unit, format FormatFunc) string {
	return labelFor(ComputeDiff(readings), u, format).Label
}

func labelFor(d Diff, u units.Unit, format FormatFunc) Diff {
	if format == nil {
		format = units.Format
	}
	switch d.Outcome {
	case OutcomeInsufficient:
		d.Label = ""
	case OutcomeAmbiguous, OutcomeOutOfRange:
		d.Label = "?"
	default:
		if d.Value >= 0 {
			d.Label = "+" + format(d.Value, u)
		} else {
			d.Label = format(d.Value, u)
		}
	}
	return d
}
