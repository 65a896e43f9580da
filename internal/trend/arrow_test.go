package trend

import (
	"image/color"
	"testing"

	"bgmatrix/internal/glucose"
)

type pixel struct{ x, y int16 }

type recordDisplay struct {
	px map[pixel]color.RGBA
}

func newRecordDisplay() *recordDisplay {
	return &recordDisplay{px: make(map[pixel]color.RGBA)}
}

func (d *recordDisplay) Size() (x, y int16) { return 32, 32 }
func (d *recordDisplay) SetPixel(x, y int16, c color.RGBA) {
	d.px[pixel{x, y}] = c
}
func (d *recordDisplay) Display() error { return nil }

func TestDrawTrendArrowPixelCounts(t *testing.T) {
	tcs := []struct {
		trend glucose.Trend
		want  int
	}{
		{trend: glucose.TrendSingleUp, want: 9},
		{trend: glucose.TrendSingleDown, want: 9},
		{trend: glucose.TrendFlat, want: 9},
		{trend: glucose.TrendFortyFiveUp, want: 10},
		{trend: glucose.TrendFortyFiveDown, want: 10},
		{trend: glucose.TrendDoubleUp, want: 14},
		{trend: glucose.TrendDoubleDown, want: 14},
		{trend: glucose.TrendNone, want: 0},
		{trend: glucose.TrendNotComputable, want: 0},
		{trend: glucose.TrendRateOutOfRange, want: 0},
	}
	for _, tc := range tcs {
		t.Run(tc.trend.String(), func(t *testing.T) {
			d := newRecordDisplay()
			r := &Renderer{Display: d, Color: color.RGBA{R: 0xff, A: 0xff}}
			r.DrawTrendArrow(glucose.Reading{SGV: 120, Trend: tc.trend}, 13, 1)
			if len(d.px) != tc.want {
				t.Fatalf("lit pixels = %d; want %d", len(d.px), tc.want)
			}
		})
	}
}

func TestDrawTrendArrowOrientation(t *testing.T) {
	up := newRecordDisplay()
	(&Renderer{Display: up}).DrawTrendArrow(glucose.Reading{Trend: glucose.TrendSingleUp}, 0, 0)
	if _, ok := up.px[pixel{2, 0}]; !ok {
		t.Fatal("up arrow: expected tip at top row")
	}

	down := newRecordDisplay()
	(&Renderer{Display: down}).DrawTrendArrow(glucose.Reading{Trend: glucose.TrendSingleDown}, 0, 0)
	if _, ok := down.px[pixel{2, 4}]; !ok {
		t.Fatal("down arrow: expected tip at bottom row")
	}
	if _, ok := down.px[pixel{0, 2}]; !ok {
		t.Fatal("down arrow: expected barb at (0,2)")
	}
}

func TestDrawTrendArrowNilDisplay(t *testing.T) {
	r := &Renderer{}
	r.DrawTrendArrow(glucose.Reading{Trend: glucose.TrendFlat}, 0, 0)
}
