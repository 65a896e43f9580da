// Package trend draws the sensor's trend direction as a small pixel arrow.
package trend

import (
	"image/color"

	"bgmatrix/internal/glucose"

	"tinygo.org/x/drivers"
)

// bitmap rows are read left to right, '#' is a lit pixel.
type bitmap []string

var (
	arrowUp = bitmap{
		"..#..",
		".###.",
		"#.#.#",
		"..#..",
		"..#..",
	}
	arrowFortyFiveUp = bitmap{
		".####",
		"...##",
		"..#.#",
		".#...",
		"#....",
	}
	arrowFlat = bitmap{
		"..#..",
		"...#.",
		"#####",
		"...#.",
		"..#..",
	}
	arrowNarrowUp = bitmap{
		".#.",
		"###",
		".#.",
		".#.",
		".#.",
	}
)

// Renderer draws trend arrows onto a display.
type Renderer struct {
	Display drivers.Displayer
	Color   color.RGBA
}

// DrawTrendArrow draws r's trend with its top-left corner at (x, y).
// Readings without a usable direction draw nothing.
func (a *Renderer) DrawTrendArrow(r glucose.Reading, x, y int16) {
	if a.Display == nil {
		return
	}
	switch r.Trend {
	case glucose.TrendDoubleUp:
		a.draw(arrowNarrowUp, x, y, false)
		a.draw(arrowNarrowUp, x+4, y, false)
	case glucose.TrendSingleUp:
		a.draw(arrowUp, x, y, false)
	case glucose.TrendFortyFiveUp:
		a.draw(arrowFortyFiveUp, x, y, false)
	case glucose.TrendFlat:
		a.draw(arrowFlat, x, y, false)
	case glucose.TrendFortyFiveDown:
		a.draw(arrowFortyFiveUp, x, y, true)
	case glucose.TrendSingleDown:
		a.draw(arrowUp, x, y, true)
	case glucose.TrendDoubleDown:
		a.draw(arrowNarrowUp, x, y, true)
		a.draw(arrowNarrowUp, x+4, y, true)
	}
}

// draw plots b, mirrored vertically when flip is set.
func (a *Renderer) draw(b bitmap, x, y int16, flip bool) {
	n := len(b)
	for row := 0; row < n; row++ {
		src := b[row]
		if flip {
			src = b[n-1-row]
		}
		for col := 0; col < len(src); col++ {
			if src[col] == '#' {
				a.Display.SetPixel(x+int16(col), y+int16(row), a.Color)
			}
		}
	}
}
