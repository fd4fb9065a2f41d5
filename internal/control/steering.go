package control

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/san-kum/autopark/internal/filter"
	"github.com/san-kum/autopark/internal/vehicle"
)

const (
	// AbnormalDiff is the error magnitude treated as a sensor glitch.
	AbnormalDiff = 3000
	MVMax        = 200
	MVMin        = -200
)

// Gains holds the regulator gains. Ki is accepted for configuration
// compatibility but the controller never integrates.
type Gains struct {
	Kp float64 `yaml:"kp"`
	Ki float64 `yaml:"ki"`
	Kd float64 `yaml:"kd"`
}

// Sample is the outcome of one Compute call.
type Sample struct {
	Raw        int
	Filtered   int
	Error      int
	Derivative int
	Output     int
	Reinit     bool
}

// Steering is a proportional-derivative wall-following regulator. The
// target is whatever filtered distance was seen at Initialize; the
// controller holds that distance rather than converging to a fixed value.
type Steering struct {
	Kp    float64
	Ki    float64
	Kd    float64
	Retry vehicle.RetryPolicy

	sensor vehicle.DistanceSensor
	diag   vehicle.Diagnostics
	filter filter.Smoother

	target       int
	lastError    int
	filtered     int
	prevFiltered int
	last         Sample
	reinits      int
}

func NewSteering(sensor vehicle.DistanceSensor, diag vehicle.Diagnostics, gains Gains) *Steering {
	if diag == nil {
		diag = vehicle.Discard{}
	}
	return &Steering{
		Kp:     gains.Kp,
		Ki:     gains.Ki,
		Kd:     gains.Kd,
		Retry:  vehicle.DefaultRetryPolicy(),
		sensor: sensor,
		diag:   diag,
		filter: filter.NewMovingAverage(filter.DefaultWindow),
	}
}

// SetFilter replaces the distance smoother and clears its state.
func (s *Steering) SetFilter(f filter.Smoother) {
	f.Reset()
	s.filter = f
}

// Initialize seeds the filter and the target from one fresh reading.
func (s *Steering) Initialize(side vehicle.Side) {
	d := s.Retry.Read(s.sensor, side)

	s.lastError = 0
	s.filter.Reset()
	s.filtered = s.filter.Update(d)
	s.prevFiltered = s.filtered
	s.target = s.filtered

	log.Debugf("[steering] initialized on %s wall, target %d", side, s.target)
}

// Compute runs one control tick on a raw reading and returns the steering
// correction in [MVMin, MVMax].
func (s *Steering) Compute(raw int, side vehicle.Side) int {
	log.Debugf("[steering] raw: %d", raw)

	filtered := s.filter.Update(raw)
	s.filtered = filtered
	e := s.target - filtered

	if e >= AbnormalDiff || e <= -AbnormalDiff {
		log.Debugf("[steering] abnormal error %d (filtered %d, target %d), reinitializing", e, filtered, s.target)
		s.reinits++
		s.Initialize(side)
		s.last = Sample{Raw: raw, Filtered: filtered, Error: e, Reinit: true}
		return 0
	}

	derivative := e - s.lastError
	out := saturate(s.Kp*float64(e) + s.Kd*float64(derivative))

	s.lastError = e
	s.prevFiltered = filtered

	s.diag.Printf("%d,%d,%d\n", e, derivative, out)
	s.last = Sample{Raw: raw, Filtered: filtered, Error: e, Derivative: derivative, Output: out}
	return out
}

func saturate(u float64) int {
	if u > MVMax {
		return MVMax
	}
	if u < MVMin {
		return MVMin
	}
	return int(u)
}

func (s *Steering) Target() int           { return s.target }
func (s *Steering) LastError() int        { return s.lastError }
func (s *Steering) Filtered() int         { return s.filtered }
func (s *Steering) PreviousFiltered() int { return s.prevFiltered }
func (s *Steering) Last() Sample          { return s.last }

// Reinits counts abnormal-error re-initializations since construction.
func (s *Steering) Reinits() int { return s.reinits }

// Gains returns the current gains.
func (s *Steering) Gains() Gains {
	return Gains{Kp: s.Kp, Ki: s.Ki, Kd: s.Kd}
}

// GetParams returns tunable parameters for live adjustment
func (s *Steering) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp": s.Kp,
		"Kd": s.Kd,
	}
}

// SetParam adjusts a gain. Filter and target state are untouched.
func (s *Steering) SetParam(name string, value float64) error {
	switch name {
	case "Kp":
		s.Kp = value
	case "Kd":
		s.Kd = value
	default:
		return fmt.Errorf("unknown steering parameter %q", name)
	}
	return nil
}
