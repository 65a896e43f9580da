// Package collector owns the reading history: it fills a glucose.Store from a
// simulated sensor or a readings file.
package collector

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"bgmatrix/hal"
	"bgmatrix/internal/glucose"
)

const (
	minSGV = 40
	maxSGV = 400
)

// Sim is a random-walk sensor. Its clock runs Speed times faster than wall
// time so a full diff window can be watched in seconds.
type Sim struct {
	Store    *glucose.Store
	Log      hal.Logger
	Interval time.Duration
	Speed    float64
	DropRate float64

	mu    sync.Mutex
	rng   *rand.Rand
	sgv   int
	slope float64
	start time.Time
	base  int64
	now   func() time.Time
}

// NewSim returns a simulator starting at startSGV. now defaults to time.Now.
func NewSim(store *glucose.Store, seed int64, startSGV int, now func() time.Time) *Sim {
	if now == nil {
		now = time.Now
	}
	if startSGV <= 0 {
		startSGV = 120
	}
	t0 := now()
	return &Sim{
		Store:    store,
		Interval: 5 * time.Minute,
		Speed:    1,
		rng:      rand.New(rand.NewSource(seed)),
		sgv:      startSGV,
		start:    t0,
		base:     t0.Unix(),
		now:      now,
	}
}

// Now is the simulated time in Unix seconds.
func (s *Sim) Now() int64 {
	speed := s.Speed
	if speed <= 0 {
		speed = 1
	}
	elapsed := s.now().Sub(s.start).Seconds() * speed
	return s.base + int64(elapsed)
}

var _ hal.Clock = (*Sim)(nil)

// Next advances the walk by one interval and returns the reading at epoch.
func (s *Sim) Next(epoch int64) glucose.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Slope drifts slowly so runs of rising and falling readings appear.
	s.slope = s.slope*0.8 + (s.rng.Float64()*2-1)*4
	prev := s.sgv
	s.sgv = clamp(s.sgv+int(s.slope), minSGV, maxSGV)

	minutes := s.Interval.Minutes()
	if minutes <= 0 {
		minutes = 5
	}
	perMinute := float64(s.sgv-prev) / minutes
	return glucose.Reading{SGV: s.sgv, Epoch: epoch, Trend: TrendFromRate(perMinute)}
}

// Backfill appends n readings spaced one interval apart, ending at the current simulated time.
func (s *Sim) Backfill(n int) {
	step := int64(s.Interval / time.Second)
	end := s.Now()
	for i := n - 1; i >= 0; i-- {
		s.emit(s.Next(end - int64(i)*step))
	}
}

// Run emits a reading every Interval of simulated time until ctx is done.
func (s *Sim) Run(ctx context.Context) error {
	if s.Interval <= 0 {
		return fmt.Errorf("collector: invalid interval %v", s.Interval)
	}
	speed := s.Speed
	if speed <= 0 {
		speed = 1
	}
	period := time.Duration(float64(s.Interval) / speed)
	if period <= 0 {
		return fmt.Errorf("collector: interval %v too short for speed %v", s.Interval, speed)
	}

	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			r := s.Next(s.Now())
			if s.dropped() {
				s.logf("collector: dropped reading sgv=%d epoch=%d", r.SGV, r.Epoch)
				continue
			}
			s.emit(r)
		}
	}
}

func (s *Sim) dropped() bool {
	if s.DropRate <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < s.DropRate
}

func (s *Sim) emit(r glucose.Reading) {
	if s.Store == nil {
		return
	}
	if !s.Store.Append(r) {
		s.logf("collector: out-of-order reading epoch=%d ignored", r.Epoch)
		return
	}
	s.logf("collector: sgv=%d trend=%s epoch=%d", r.SGV, r.Trend, r.Epoch)
}

func (s *Sim) logf(format string, args ...any) {
	if s.Log == nil {
		return
	}
	s.Log.WriteLineString(fmt.Sprintf(format, args...))
}

// TrendFromRate maps a rate of change in mg/dL per minute to a trend arrow,
// using the thresholds CGM receivers report.
func TrendFromRate(perMinute float64) glucose.Trend {
	switch {
	case perMinute > 3:
		return glucose.TrendDoubleUp
	case perMinute > 2:
		return glucose.TrendSingleUp
	case perMinute > 1:
		return glucose.TrendFortyFiveUp
	case perMinute >= -1:
		return glucose.TrendFlat
	case perMinute >= -2:
		return glucose.TrendFortyFiveDown
	case perMinute >= -3:
		return glucose.TrendSingleDown
	default:
		return glucose.TrendDoubleDown
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
