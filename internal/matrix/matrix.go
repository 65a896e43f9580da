// Package matrix implements the drawing primitives of a small LED matrix on top of an RGB565 framebuffer.
package matrix

import (
	"image/color"

	"bgmatrix/hal"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

var ColorWhite = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Align selects which edge of the text the x anchor refers to.
type Align uint8

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Font selects one of the matrix fonts.
type Font uint8

const (
	FontSmall Font = iota
	// FontMedium is the 3x5 digit font sized for the primary value.
	FontMedium
)

func (f Font) fonter() tinyfont.Fonter {
	if f == FontMedium {
		return digitFont{}
	}
	return &tinyfont.TomThumb
}

// Matrix draws onto a framebuffer. It satisfies drivers.Displayer so tinyfont
// and the arrow bitmaps can draw through it.
type Matrix struct {
	fb   hal.Framebuffer
	text color.RGBA
}

var _ drivers.Displayer = (*Matrix)(nil)

func New(fb hal.Framebuffer) *Matrix {
	return &Matrix{fb: fb, text: ColorWhite}
}

func (m *Matrix) ok() bool {
	return m.fb != nil && m.fb.Format() == hal.PixelFormatRGB565 && m.fb.Buffer() != nil
}

func (m *Matrix) Size() (x, y int16) {
	if m.fb == nil {
		return 0, 0
	}
	return int16(m.fb.Width()), int16(m.fb.Height())
}

func (m *Matrix) SetPixel(x, y int16, c color.RGBA) {
	if !m.ok() {
		return
	}
	buf := m.fb.Buffer()
	ix := int(x)
	iy := int(y)
	if ix < 0 || ix >= m.fb.Width() || iy < 0 || iy >= m.fb.Height() {
		return
	}

	pixel := rgb565From888(c.R, c.G, c.B)
	off := iy*m.fb.StrideBytes() + ix*2
	if off < 0 || off+1 >= len(buf) {
		return
	}
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

// Display pushes the framebuffer to the panel.
func (m *Matrix) Display() error {
	if m.fb == nil {
		return nil
	}
	return m.fb.Present()
}

// Clear blanks every LED.
func (m *Matrix) Clear() {
	if m.fb == nil {
		return
	}
	m.fb.ClearRGB(0, 0, 0)
}

// SetTextColor sets the color used by subsequent PrintText calls.
func (m *Matrix) SetTextColor(c color.RGBA) { m.text = c }

// TextColor reports the current text color.
func (m *Matrix) TextColor() color.RGBA { return m.text }

// PrintText draws s with its baseline at y. For AlignRight x is the right
// edge, for AlignCenter the middle.
func (m *Matrix) PrintText(x, y int16, s string, align Align, font Font) {
	if s == "" {
		return
	}
	f := font.fonter()
	x0 := x
	switch align {
	case AlignRight:
		x0 = x - TextWidth(s, font)
	case AlignCenter:
		x0 = x - TextWidth(s, font)/2
	}
	tinyfont.WriteLine(m, f, x0, y, s, m.text)
}

// TextWidth is the advance width of s in font.
func TextWidth(s string, font Font) int16 {
	_, outboxWidth := tinyfont.LineWidth(font.fonter(), s)
	return int16(outboxWidth)
}

// DrawRect strokes a one pixel outline.
func (m *Matrix) DrawRect(x, y, w, h int16, c color.RGBA) {
	if w <= 0 || h <= 0 {
		return
	}
	m.FillRect(x, y, w, 1, c)
	m.FillRect(x, y+h-1, w, 1, c)
	m.FillRect(x, y, 1, h, c)
	m.FillRect(x+w-1, y, 1, h, c)
}

// FillRect fills a rectangle, clipped to the matrix.
func (m *Matrix) FillRect(x, y, w, h int16, c color.RGBA) {
	if !m.ok() {
		return
	}
	buf := m.fb.Buffer()

	fw := m.fb.Width()
	fh := m.fb.Height()

	x0 := clampInt(int(x), 0, fw)
	y0 := clampInt(int(y), 0, fh)
	x1 := clampInt(int(x)+int(w), 0, fw)
	y1 := clampInt(int(y)+int(h), 0, fh)
	if x0 >= x1 || y0 >= y1 {
		return
	}

	pixel := rgb565From888(c.R, c.G, c.B)
	lo := byte(pixel)
	hi := byte(pixel >> 8)

	stride := m.fb.StrideBytes()
	for py := y0; py < y1; py++ {
		row := py * stride
		for px := x0; px < x1; px++ {
			off := row + px*2
			if off < 0 || off+1 >= len(buf) {
				continue
			}
			buf[off] = lo
			buf[off+1] = hi
		}
	}
}

func rgb565From888(r, g, b uint8) uint16 {
	return uint16((uint16(r>>3)&0x1F)<<11 | (uint16(g>>2)&0x3F)<<5 | (uint16(b>>3) & 0x1F))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
