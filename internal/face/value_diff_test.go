package face

import (
	"fmt"
	"image/color"
	"reflect"
	"strings"
	"testing"

	"bgmatrix/hal"
	"bgmatrix/internal/glucose"
	"bgmatrix/internal/matrix"
	"bgmatrix/internal/units"
)

type recordSurface struct {
	calls []string
}

func (s *recordSurface) Clear() { s.calls = append(s.calls, "clear") }

func (s *recordSurface) SetTextColor(c color.RGBA) {
	s.calls = append(s.calls, fmt.Sprintf("color %02x%02x%02x", c.R, c.G, c.B))
}

func (s *recordSurface) PrintText(x, y int16, text string, align matrix.Align, font matrix.Font) {
	s.calls = append(s.calls, fmt.Sprintf("text %d,%d %q align=%d font=%d", x, y, text, align, font))
}

func (s *recordSurface) DrawRect(x, y, w, h int16, c color.RGBA) {
	s.calls = append(s.calls, fmt.Sprintf("rect %d,%d %dx%d", x, y, w, h))
}

func (s *recordSurface) FillRect(x, y, w, h int16, c color.RGBA) {
	s.calls = append(s.calls, fmt.Sprintf("fill %d,%d %dx%d", x, y, w, h))
}

func (s *recordSurface) count(prefix string) int {
	n := 0
	for _, c := range s.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

type recordArrows struct {
	calls []string
}

func (a *recordArrows) DrawTrendArrow(r glucose.Reading, x, y int16) {
	a.calls = append(a.calls, fmt.Sprintf("arrow %d %d,%d", r.SGV, x, y))
}

type fixedClock int64

func (c fixedClock) Now() int64 { return int64(c) }

type recordObserver struct {
	diffs []Diff
}

func (o *recordObserver) ObserveDiff(d Diff) { o.diffs = append(o.diffs, d) }

type recordLogger struct {
	lines []string
}

func (l *recordLogger) WriteLineString(s string) { l.lines = append(l.lines, s) }
func (l *recordLogger) WriteLineBytes(b []byte)  { l.lines = append(l.lines, string(b)) }

func newTestFace(now int64) (*ValueAndDiff, *recordSurface, *recordArrows) {
	s := &recordSurface{}
	a := &recordArrows{}
	return &ValueAndDiff{Surface: s, Arrows: a, Clock: fixedClock(now)}, s, a
}

func TestRenderCallSequence(t *testing.T) {
	f, s, a := newTestFace(300 + 125)
	f.Render(readings(100, 0, 105, 150, 110, 300), false, Settings{Unit: units.MgDL})

	want := []string{
		"clear",
		"color ffffff",
		`text 13,6 "110" align=2 font=1`,
		"color ffffff",
		`text 33,6 "+10" align=2 font=0`,
		"rect 4,30 4x4",
		"fill 4,30 4x4",
		"rect 10,30 4x4",
		"fill 10,30 4x4",
	}
	if !reflect.DeepEqual(s.calls, want) {
		t.Fatalf("calls =\n%s\nwant\n%s", strings.Join(s.calls, "\n"), strings.Join(want, "\n"))
	}
	if len(a.calls) != 1 || a.calls[0] != "arrow 110 13,1" {
		t.Fatalf("arrow calls = %v", a.calls)
	}
}

func TestRenderValueAnchor(t *testing.T) {
	tcs := []struct {
		name  string
		sgv   int64
		unit  units.Unit
		wantX int
	}{
		{name: "mgdl-low", sgv: 100, unit: units.MgDL, wantX: 13},
		{name: "mgdl-high", sgv: 250, unit: units.MgDL, wantX: 13},
		{name: "mmol-below", sgv: 179, unit: units.MmolL, wantX: 13},
		{name: "mmol-threshold", sgv: 180, unit: units.MmolL, wantX: 14},
		{name: "mmol-high", sgv: 300, unit: units.MmolL, wantX: 14},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			f, s, _ := newTestFace(0)
			f.Render(readings(tc.sgv, 0), false, Settings{Unit: tc.unit})
			prefix := fmt.Sprintf("text %d,6 ", tc.wantX)
			if !strings.HasPrefix(s.calls[2], prefix) {
				t.Fatalf("value call = %q; want prefix %q", s.calls[2], prefix)
			}
		})
	}
}

func TestRenderFreshnessBlocks(t *testing.T) {
	tcs := []struct {
		minutes int64
		want    int
	}{
		{minutes: 0, want: 0},
		{minutes: 1, want: 1},
		{minutes: 5, want: 5},
		{minutes: 7, want: 5},
	}
	for _, tc := range tcs {
		t.Run(fmt.Sprintf("%dmin", tc.minutes), func(t *testing.T) {
			f, s, _ := newTestFace(1000 + tc.minutes*60 + 59)
			f.Render(readings(100, 1000), false, Settings{})
			if got := s.count("rect"); got != tc.want {
				t.Fatalf("outlines = %d; want %d", got, tc.want)
			}
			if got := s.count("fill"); got != tc.want {
				t.Fatalf("fills = %d; want %d", got, tc.want)
			}
		})
	}
}

func TestRenderBlockPositions(t *testing.T) {
	f, s, _ := newTestFace(600)
	f.Render(readings(100, 0), false, Settings{})

	var xs []string
	for _, c := range s.calls {
		if strings.HasPrefix(c, "fill") {
			xs = append(xs, c)
		}
	}
	want := []string{"fill 4,30 4x4", "fill 10,30 4x4", "fill 16,30 4x4", "fill 22,30 4x4", "fill 28,30 4x4"}
	if !reflect.DeepEqual(xs, want) {
		t.Fatalf("fills = %v; want %v", xs, want)
	}
}

func TestRenderStaleColor(t *testing.T) {
	f, s, _ := newTestFace(0)
	f.Render(readings(100, 0, 104, 0), true, Settings{})
	if s.calls[3] != "color 808080" {
		t.Fatalf("diff color call = %q; want stale color", s.calls[3])
	}
	if s.calls[4] != `text 33,6 "+4" align=2 font=0` {
		t.Fatalf("diff call = %q", s.calls[4])
	}
}

func TestRenderIdempotent(t *testing.T) {
	in := readings(100, 0, 130, 150, 110, 300)

	f1, s1, a1 := newTestFace(500)
	f1.Render(in, false, Settings{Unit: units.MmolL})
	f1.Render(in, false, Settings{Unit: units.MmolL})

	f2, s2, a2 := newTestFace(500)
	f2.Render(in, false, Settings{Unit: units.MmolL})

	half := len(s1.calls) / 2
	if !reflect.DeepEqual(s1.calls[:half], s1.calls[half:]) || !reflect.DeepEqual(s1.calls[:half], s2.calls) {
		t.Fatalf("render not idempotent:\n%v\n%v", s1.calls, s2.calls)
	}
	if len(a1.calls) != 2 || a1.calls[0] != a1.calls[1] || a1.calls[0] != a2.calls[0] {
		t.Fatalf("arrow calls differ: %v %v", a1.calls, a2.calls)
	}
}

func TestRenderReportsDiagnostics(t *testing.T) {
	f, _, _ := newTestFace(300)
	obs := &recordObserver{}
	log := &recordLogger{}
	f.Observer = obs
	f.Debug = log

	f.Render(readings(100, 0, 130, 150, 110, 300), false, Settings{})

	if len(obs.diffs) != 1 || obs.diffs[0].Outcome != OutcomeAmbiguous || obs.diffs[0].Label != "?" {
		t.Fatalf("observed %+v", obs.diffs)
	}
	if len(log.lines) != 1 || !strings.Contains(log.lines[0], "outcome=ambiguous") {
		t.Fatalf("debug lines = %v", log.lines)
	}
}

func TestRenderWithoutArrows(t *testing.T) {
	f, s, _ := newTestFace(0)
	f.Arrows = nil
	f.Render(readings(100, 0), false, Settings{})
	if s.count("text") != 2 {
		t.Fatalf("text calls = %d; want 2", s.count("text"))
	}
}

func TestFreshnessBlocks(t *testing.T) {
	for age, want := range map[int64]int{-120: 0, 0: 0, 59: 0, 60: 1, 299: 4, 300: 5, 3600: 5} {
		if got := FreshnessBlocks(age); got != want {
			t.Fatalf("FreshnessBlocks(%d) = %d; want %d", age, got, want)
		}
	}
}

type litBox struct {
	n                      int
	minX, maxX, minY, maxY int
}

func scanLit(fb hal.Framebuffer) litBox {
	b := litBox{minX: fb.Width(), minY: fb.Height(), maxX: -1, maxY: -1}
	buf := fb.Buffer()
	for y := 0; y < fb.Height(); y++ {
		for x := 0; x < fb.Width(); x++ {
			off := y*fb.StrideBytes() + x*2
			if buf[off] == 0 && buf[off+1] == 0 {
				continue
			}
			b.n++
			b.minX, b.maxX = min(b.minX, x), max(b.maxX, x)
			b.minY, b.maxY = min(b.minY, y), max(b.maxY, y)
		}
	}
	return b
}

func TestRenderValueFitsMatrix(t *testing.T) {
	tcs := []struct {
		name    string
		sgv     int64
		unit    units.Unit
		text    string
		anchorX int
	}{
		{name: "mgdl-3-digit", sgv: 110, unit: units.MgDL, text: "110", anchorX: 13},
		{name: "mgdl-max", sgv: 400, unit: units.MgDL, text: "400", anchorX: 13},
		{name: "mmol-wide", sgv: 180, unit: units.MmolL, text: "10.0", anchorX: 14},
		{name: "mmol-high", sgv: 400, unit: units.MmolL, text: "22.2", anchorX: 14},
		{name: "mmol-narrow", sgv: 99, unit: units.MmolL, text: "5.5", anchorX: 13},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			fb := hal.NewMemFramebuffer(64, 64)
			f := &ValueAndDiff{Surface: matrix.New(fb), Clock: fixedClock(1000)}
			f.Render(readings(tc.sgv, 1000), false, Settings{Unit: tc.unit})
			got := scanLit(fb)

			// Same text away from every edge gives the full glyph pixel count.
			ref := hal.NewMemFramebuffer(64, 64)
			matrix.New(ref).PrintText(20, 20, tc.text, matrix.AlignLeft, matrix.FontMedium)
			want := scanLit(ref)

			if got.n != want.n {
				t.Fatalf("lit pixels = %d; want %d (value clipped)", got.n, want.n)
			}
			if got.minX < 0 || got.maxX >= tc.anchorX {
				t.Fatalf("value spans x=%d..%d; want inside 0..%d", got.minX, got.maxX, tc.anchorX-1)
			}
			if got.minY < 0 || got.maxY > 6 {
				t.Fatalf("value spans y=%d..%d; want at or above baseline 6", got.minY, got.maxY)
			}
		})
	}
}

func TestRenderBlocksFollowClock(t *testing.T) {
	s := &recordSurface{}
	clock := &stepClock{now: 1000}
	f := &ValueAndDiff{Surface: s, Clock: clock}
	in := readings(100, 1000)

	f.Render(in, false, Settings{})
	if got := s.count("fill"); got != 0 {
		t.Fatalf("fills at age 0 = %d; want 0", got)
	}

	clock.now = 1000 + 3*60
	s.calls = nil
	f.Render(in, false, Settings{})
	if got := s.count("fill"); got != 3 {
		t.Fatalf("fills at age 3m = %d; want 3", got)
	}
}

type stepClock struct{ now int64 }

func (c *stepClock) Now() int64 { return c.now }
