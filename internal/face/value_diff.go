package face

import (
	"fmt"
	"image/color"

	"bgmatrix/hal"
	"bgmatrix/internal/glucose"
	"bgmatrix/internal/matrix"
	"bgmatrix/internal/units"
)

var (
	ColorDefault = matrix.ColorWhite
	// ColorStale tints text once the newest reading is too old to trust.
	ColorStale = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
)

// Layout anchors, in matrix pixels.
const (
	valueX        = 13
	valueXWide    = 14
	valueY        = 6
	arrowX        = 13
	arrowY        = 1
	diffX         = 33
	diffY         = 6
	blockX        = 4
	blockY        = 30
	blockSize     = 4
	blockSpacing  = 6
	maxBlocks     = 5
	wideThreshold = 180
)

// Surface is the set of drawing primitives the face needs.
type Surface interface {
	Clear()
	SetTextColor(c color.RGBA)
	PrintText(x, y int16, s string, align matrix.Align, font matrix.Font)
	DrawRect(x, y, w, h int16, c color.RGBA)
	FillRect(x, y, w, h int16, c color.RGBA)
}

// ArrowRenderer draws the trend arrow of a reading.
type ArrowRenderer interface {
	DrawTrendArrow(r glucose.Reading, x, y int16)
}

// Observer receives the diff of every render. It must not draw.
type Observer interface {
	ObserveDiff(d Diff)
}

// Settings are the user preferences a render depends on.
type Settings struct {
	Unit units.Unit
}

// ValueAndDiff shows the newest value, its trend arrow, the short-term diff
// and one block per minute since the last reading.
type ValueAndDiff struct {
	Surface Surface
	Arrows  ArrowRenderer
	// Clock is required; the freshness blocks count minutes against it.
	Clock hal.Clock
	// Format defaults to units.Format.
	Format FormatFunc

	Observer Observer
	// Debug, when set, gets one diagnostic line per render.
	Debug hal.Logger
}

// Render draws readings (oldest first, non-empty). stale selects the dimmed text color.
// Surface and Clock must be set.
func (f *ValueAndDiff) Render(readings []glucose.Reading, stale bool, s Settings) {
	format := f.Format
	if format == nil {
		format = units.Format
	}

	f.Surface.Clear()

	last := readings[len(readings)-1]

	textColor := ColorDefault
	if stale {
		textColor = ColorStale
	}

	f.Surface.SetTextColor(textColor)
	f.Surface.PrintText(valueAnchor(last, s.Unit), valueY, format(last.SGV, s.Unit), matrix.AlignRight, matrix.FontMedium)

	if f.Arrows != nil {
		f.Arrows.DrawTrendArrow(last, arrowX, arrowY)
	}

	d := labelFor(ComputeDiff(readings), s.Unit, format)

	f.Surface.SetTextColor(textColor)
	f.Surface.PrintText(diffX, diffY, d.Label, matrix.AlignRight, matrix.FontSmall)

	blocks := FreshnessBlocks(last.Age(f.Clock.Now()))
	for i := 0; i < blocks; i++ {
		x := int16(blockX + i*blockSpacing)
		f.Surface.DrawRect(x, blockY, blockSize, blockSize, ColorDefault)
		f.Surface.FillRect(x, blockY, blockSize, blockSize, ColorDefault)
	}

	if f.Observer != nil {
		f.Observer.ObserveDiff(d)
	}
	if f.Debug != nil {
		f.Debug.WriteLineString(fmt.Sprintf("face: sgv=%d diff=%q outcome=%s raw=%d window=%d blocks=%d",
			last.SGV, d.Label, d.Outcome, d.Value, d.Window, blocks))
	}
}

// valueAnchor moves wide mmol/L values (10.0 and up) one column right.
func valueAnchor(last glucose.Reading, u units.Unit) int16 {
	if u == units.MmolL && last.SGV >= wideThreshold {
		return valueXWide
	}
	return valueX
}

// FreshnessBlocks is the number of minute blocks for a reading ageSeconds old,
// capped at five. Readings from the future show none.
func FreshnessBlocks(ageSeconds int64) int {
	if ageSeconds <= 0 {
		return 0
	}
	minutes := ageSeconds / 60
	if minutes > maxBlocks {
		return maxBlocks
	}
	return int(minutes)
}
