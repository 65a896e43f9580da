//go:build !tinygo

// Command bgsnap renders a readings file through the value-and-diff face and
// writes the matrix as a PNG.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"

	"bgmatrix/hal"
	"bgmatrix/internal/collector"
	"bgmatrix/internal/config"
	"bgmatrix/internal/face"
	"bgmatrix/internal/matrix"
	"bgmatrix/internal/trend"
	"bgmatrix/internal/units"
)

type options struct {
	inPath   string
	outPath  string
	cfgPath  string
	unit     string
	now      int64
	age      int64
	stale    bool
	scale    int
	printTxt bool
}

func main() {
	var opt options
	flag.StringVar(&opt.inPath, "in", "", "YAML readings file.")
	flag.StringVar(&opt.outPath, "out", "face.png", "Output PNG path.")
	flag.StringVar(&opt.cfgPath, "config", "", "Optional YAML config (units, size, stale_after).")
	flag.StringVar(&opt.unit, "units", "", "Override display units: mgdl or mmol.")
	flag.Int64Var(&opt.now, "now", 0, "Render time in Unix seconds (0 = last reading + -age).")
	flag.Int64Var(&opt.age, "age", 0, "Seconds since the last reading when -now is 0.")
	flag.BoolVar(&opt.stale, "stale", false, "Force the stale color.")
	flag.IntVar(&opt.scale, "scale", 8, "Pixels per matrix LED in the PNG.")
	flag.BoolVar(&opt.printTxt, "print", false, "Also print the diff label and outcome.")
	flag.Parse()

	if opt.inPath == "" {
		fmt.Fprintln(os.Stderr, "error: -in is required")
		os.Exit(2)
	}
	if err := run(opt); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type fixedClock int64

func (c fixedClock) Now() int64 { return int64(c) }

type lastDiff struct{ d face.Diff }

func (l *lastDiff) ObserveDiff(d face.Diff) { l.d = d }

func run(opt options) error {
	cfg, err := config.Load(opt.cfgPath)
	if err != nil {
		return err
	}
	if opt.unit != "" {
		if cfg.Units, err = units.ParseUnit(opt.unit); err != nil {
			return err
		}
	}

	readings, err := collector.LoadFile(opt.inPath)
	if err != nil {
		return err
	}
	if len(readings) == 0 {
		return errors.New("no readings to render")
	}
	last := readings[len(readings)-1]

	now := opt.now
	if now == 0 {
		now = last.Epoch + opt.age
	}
	stale := opt.stale || last.Age(now) > int64(cfg.StaleAfter.Seconds())

	fb := hal.NewMemFramebuffer(cfg.Width, cfg.Height)
	mx := matrix.New(fb)
	diag := &lastDiff{}
	f := &face.ValueAndDiff{
		Surface:  mx,
		Arrows:   &trend.Renderer{Display: mx, Color: face.ColorDefault},
		Clock:    fixedClock(now),
		Observer: diag,
	}
	f.Render(readings, stale, face.Settings{Unit: cfg.Units})

	if opt.printTxt {
		fmt.Printf("diff=%q outcome=%s raw=%d window=%d stale=%v\n", diag.d.Label, diag.d.Outcome, diag.d.Value, diag.d.Window, stale)
	}

	img, err := hal.Snapshot(fb)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return writePNG(opt.outPath, upscale(img, opt.scale))
}

// upscale draws every matrix LED as a scale x scale square.
func upscale(src *image.RGBA, scale int) *image.RGBA {
	if scale <= 1 {
		return src
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	for y := 0; y < b.Dy()*scale; y++ {
		for x := 0; x < b.Dx()*scale; x++ {
			dst.SetRGBA(x, y, src.RGBAAt(b.Min.X+x/scale, b.Min.Y+y/scale))
		}
	}
	return dst
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %q: %w", path, err)
	}
	return f.Close()
}
