package app

import (
	"context"
	"fmt"
	"time"

	"bgmatrix/hal"
	"bgmatrix/internal/collector"
	"bgmatrix/internal/config"
	"bgmatrix/internal/face"
	"bgmatrix/internal/glucose"
	"bgmatrix/internal/matrix"
	"bgmatrix/internal/metrics"
	"bgmatrix/internal/trend"
	"bgmatrix/internal/units"
)

// backfillReadings is how much simulated history exists at startup.
const backfillReadings = 12

type system struct {
	log   hal.Logger
	store *glucose.Store
	clock hal.Clock
	mx    *matrix.Matrix
	face  *face.ValueAndDiff

	ticks  <-chan uint64
	events <-chan hal.KeyEvent

	unit       units.Unit
	staleAfter int64
	refresh    time.Duration

	lastVersion uint64
	lastTick    uint64
	sinceDraw   time.Duration
	dirty       bool
}

// New builds the face and its reading source and returns the per-frame step
// function the host runners call. The simulator stops when ctx is done.
func New(ctx context.Context, h hal.HAL, cfg config.Config) func() error {
	s, err := newSystem(ctx, h, cfg)
	if err != nil {
		return func() error { return err }
	}
	return s.step
}

func newSystem(ctx context.Context, h hal.HAL, cfg config.Config) (*system, error) {
	var fb hal.Framebuffer
	if d := h.Display(); d != nil {
		fb = d.Framebuffer()
	}
	if fb == nil {
		return nil, fmt.Errorf("app: no framebuffer: %w", hal.ErrNotImplemented)
	}

	s := &system{
		log:        h.Logger(),
		store:      glucose.NewStore(cfg.HistorySize),
		clock:      h.Clock(),
		mx:         matrix.New(fb),
		unit:       cfg.Units,
		staleAfter: int64(cfg.StaleAfter / time.Second),
		refresh:    cfg.Refresh,
		dirty:      true,
	}
	if s.refresh <= 0 {
		s.refresh = time.Second
	}
	if s.clock == nil && !cfg.Sim.Enabled {
		return nil, fmt.Errorf("app: no clock: %w", hal.ErrNotImplemented)
	}

	if cfg.SeedFile != "" {
		rs, err := collector.LoadFile(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		for _, r := range rs {
			s.store.Append(r)
		}
		s.logf("app: seeded %d readings from %s", len(rs), cfg.SeedFile)
	}

	if cfg.Sim.Enabled {
		sim := collector.NewSim(s.store, cfg.Sim.Seed, cfg.Sim.StartSGV, nil)
		sim.Interval = cfg.Sim.Interval
		sim.Speed = cfg.Sim.Speed
		sim.DropRate = cfg.Sim.DropRate
		sim.Log = s.log
		if s.store.Len() == 0 {
			sim.Backfill(backfillReadings)
		}
		s.clock = sim
		go func() {
			if err := sim.Run(ctx); err != nil && err != context.Canceled {
				s.logf("app: simulator stopped: %v", err)
			}
		}()
	}

	s.face = &face.ValueAndDiff{
		Surface:  s.mx,
		Arrows:   &trend.Renderer{Display: s.mx, Color: face.ColorDefault},
		Clock:    s.clock,
		Format:   units.Format,
		Observer: metrics.DiffObserver{},
	}
	if cfg.Debug {
		s.face.Debug = s.log
	}

	if t := h.Time(); t != nil {
		s.ticks = t.Ticks()
	}
	if in := h.Input(); in != nil {
		if kbd := in.Keyboard(); kbd != nil {
			s.events = kbd.Events()
		}
	}
	return s, nil
}

func (s *system) step() error {
	s.drainTicks()
	s.drainKeys()

	if v := s.store.Version(); v != s.lastVersion {
		metrics.ReadingsTotal.Add(float64(v - s.lastVersion))
		s.lastVersion = v
		s.dirty = true
	}
	if !s.dirty && s.sinceDraw < s.refresh {
		return nil
	}
	s.dirty = false
	s.sinceDraw = 0
	return s.draw()
}

func (s *system) draw() error {
	readings := s.store.Snapshot()
	if len(readings) == 0 {
		s.mx.Clear()
		return s.mx.Display()
	}

	last := readings[len(readings)-1]
	age := last.Age(s.clock.Now())
	stale := age > s.staleAfter

	s.face.Render(readings, stale, face.Settings{Unit: s.unit})

	metrics.RendersTotal.Inc()
	metrics.LastSGV.Set(float64(last.SGV))
	metrics.ReadingAge.Set(float64(age))

	if err := s.mx.Display(); err != nil {
		return fmt.Errorf("app: present: %w", err)
	}
	return nil
}

// drainTicks accumulates elapsed milliseconds since the last draw.
func (s *system) drainTicks() {
	if s.ticks == nil {
		s.sinceDraw = s.refresh
		return
	}
	for {
		select {
		case seq := <-s.ticks:
			if seq > s.lastTick {
				s.sinceDraw += time.Duration(seq-s.lastTick) * time.Millisecond
				s.lastTick = seq
			}
		default:
			return
		}
	}
}

// drainKeys handles host keys: 'u' toggles mg/dL and mmol/L.
func (s *system) drainKeys() {
	if s.events == nil {
		return
	}
	for {
		select {
		case ev := <-s.events:
			if !ev.Press {
				continue
			}
			switch ev.Rune {
			case 'u', 'U':
				s.unit = s.unit.Toggle()
				s.dirty = true
				s.logf("app: units %s", s.unit)
			}
		default:
			return
		}
	}
}

func (s *system) logf(format string, args ...any) {
	if s.log == nil {
		return
	}
	s.log.WriteLineString(fmt.Sprintf(format, args...))
}
