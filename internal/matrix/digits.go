package matrix

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// digitGlyph is a 5 row glyph; bit (width-1-col) of a row is column col.
type digitGlyph struct {
	r     rune
	width uint8
	rows  [5]uint8
}

const digitHeight = 5

func (g *digitGlyph) Draw(display drivers.Displayer, x, y int16, c color.RGBA) {
	top := y - digitHeight
	for row, bits := range g.rows {
		for col := uint8(0); col < g.width; col++ {
			if bits&(1<<(g.width-1-col)) != 0 {
				display.SetPixel(x+int16(col), top+int16(row), c)
			}
		}
	}
}

func (g *digitGlyph) Info() tinyfont.GlyphInfo {
	return tinyfont.GlyphInfo{
		Rune:     g.r,
		Width:    g.width,
		Height:   digitHeight,
		XAdvance: g.width + 1,
		YOffset:  -digitHeight,
	}
}

// digitFont is a 3x5 font covering what a glucose reading or diff can contain.
// Three digits fit in 12 columns and "10.0" in 14.
type digitFont struct{}

var digits = []digitGlyph{
	{r: '0', width: 3, rows: [5]uint8{0b111, 0b101, 0b101, 0b101, 0b111}},
	{r: '1', width: 3, rows: [5]uint8{0b010, 0b110, 0b010, 0b010, 0b111}},
	{r: '2', width: 3, rows: [5]uint8{0b111, 0b001, 0b111, 0b100, 0b111}},
	{r: '3', width: 3, rows: [5]uint8{0b111, 0b001, 0b111, 0b001, 0b111}},
	{r: '4', width: 3, rows: [5]uint8{0b101, 0b101, 0b111, 0b001, 0b001}},
	{r: '5', width: 3, rows: [5]uint8{0b111, 0b100, 0b111, 0b001, 0b111}},
	{r: '6', width: 3, rows: [5]uint8{0b111, 0b100, 0b111, 0b101, 0b111}},
	{r: '7', width: 3, rows: [5]uint8{0b111, 0b001, 0b001, 0b001, 0b001}},
	{r: '8', width: 3, rows: [5]uint8{0b111, 0b101, 0b111, 0b101, 0b111}},
	{r: '9', width: 3, rows: [5]uint8{0b111, 0b101, 0b111, 0b001, 0b111}},
	{r: '.', width: 1, rows: [5]uint8{0, 0, 0, 0, 0b1}},
	{r: '+', width: 3, rows: [5]uint8{0b000, 0b010, 0b111, 0b010, 0b000}},
	{r: '-', width: 3, rows: [5]uint8{0b000, 0b000, 0b111, 0b000, 0b000}},
	{r: '?', width: 3, rows: [5]uint8{0b111, 0b001, 0b011, 0b000, 0b010}},
	{r: ' ', width: 1},
}

func (digitFont) GetGlyph(r rune) tinyfont.Glypher {
	for i := range digits {
		if digits[i].r == r {
			return &digits[i]
		}
	}
	return &digits[len(digits)-1]
}

func (digitFont) GetYAdvance() uint8 { return digitHeight + 1 }
