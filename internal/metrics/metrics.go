// Package metrics summarizes a parking maneuver from its tick stream.
package metrics

import (
	"math"

	"github.com/eclesh/welford"

	"github.com/san-kum/autopark/internal/control"
	"github.com/san-kum/autopark/internal/park"
)

// Metric is a park.Observer that reduces a run to one number.
type Metric interface {
	park.Observer
	Name() string
	Value() float64
	Reset()
}

// Set fans observations out to several metrics.
type Set []Metric

func Default() Set {
	return Set{
		NewControlEffort(),
		NewTrackingError(),
		NewSaturation(),
		NewReinits(),
	}
}

func (s Set) OnTick(rec park.TickRecord) {
	for _, m := range s {
		m.OnTick(rec)
	}
}

func (s Set) OnTransition(from, to park.State) {
	for _, m := range s {
		m.OnTransition(from, to)
	}
}

func (s Set) Reset() {
	for _, m := range s {
		m.Reset()
	}
}

func (s Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s))
	for _, m := range s {
		out[m.Name()] = m.Value()
	}
	return out
}

// steering reports whether rec came from a tick that commanded the motors.
func steering(rec park.TickRecord) bool {
	return rec.State == park.SeekingSpace && !rec.Found
}

// ControlEffort is the mean absolute correction applied to the motors.
type ControlEffort struct {
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort { return &ControlEffort{} }

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) OnTick(rec park.TickRecord) {
	if !steering(rec) {
		return
	}
	c.sum += math.Abs(float64(rec.Output))
	c.samples++
}

func (c *ControlEffort) OnTransition(from, to park.State) {}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// TrackingError is the standard deviation of the wall-following error.
// Re-initialization ticks are excluded since their error is a glitch.
type TrackingError struct {
	stats   *welford.Stats
	samples int
}

func NewTrackingError() *TrackingError {
	return &TrackingError{stats: welford.New()}
}

func (e *TrackingError) Name() string { return "tracking_error_stddev" }

func (e *TrackingError) OnTick(rec park.TickRecord) {
	if !steering(rec) || rec.Reinit {
		return
	}
	e.stats.Add(float64(rec.Error))
	e.samples++
}

func (e *TrackingError) OnTransition(from, to park.State) {}

func (e *TrackingError) Value() float64 {
	if e.samples < 2 {
		return 0
	}
	return e.stats.Stddev()
}

func (e *TrackingError) Mean() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.stats.Mean()
}

func (e *TrackingError) Reset() {
	e.stats = welford.New()
	e.samples = 0
}

// Saturation is the fraction of steering ticks where the regulator hit
// its output limit.
type Saturation struct {
	saturated int
	samples   int
}

func NewSaturation() *Saturation { return &Saturation{} }

func (s *Saturation) Name() string { return "saturation" }

func (s *Saturation) OnTick(rec park.TickRecord) {
	if !steering(rec) {
		return
	}
	s.samples++
	if rec.Steering >= control.MVMax || rec.Steering <= control.MVMin {
		s.saturated++
	}
}

func (s *Saturation) OnTransition(from, to park.State) {}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.saturated) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.saturated = 0
	s.samples = 0
}

// Reinits counts abnormal-error re-initializations.
type Reinits struct {
	count int
}

func NewReinits() *Reinits { return &Reinits{} }

func (r *Reinits) Name() string { return "reinits" }

func (r *Reinits) OnTick(rec park.TickRecord) {
	if rec.Reinit {
		r.count++
	}
}

func (r *Reinits) OnTransition(from, to park.State) {}

func (r *Reinits) Value() float64 { return float64(r.count) }

func (r *Reinits) Reset() { r.count = 0 }
