// Package park sequences the autonomous parking maneuver: wall-following
// until a slot is confirmed, an open-loop pivot, and a reverse into the slot.
package park

import (
	log "github.com/sirupsen/logrus"

	"github.com/san-kum/autopark/internal/control"
	"github.com/san-kum/autopark/internal/vehicle"
)

// Rig bundles the collaborators a maneuver drives.
type Rig struct {
	Sensor      vehicle.DistanceSensor
	Motor       vehicle.Motor
	Clock       vehicle.Clock
	Diagnostics vehicle.Diagnostics
}

// Maneuver owns all control and sequencing state for one parking run.
// It is not safe for concurrent use.
type Maneuver struct {
	Params   Params
	Steering *control.Steering
	Retry    vehicle.RetryPolicy

	// Rotation and Reverse decide when the open-loop phases end. Nil
	// values fall back to Timed checks built from Params.
	Rotation MotionCompletionCheck
	Reverse  MotionCompletionCheck

	sensor    vehicle.DistanceSensor
	motor     vehicle.Motor
	clock     vehicle.Clock
	diag      vehicle.Diagnostics
	observers []Observer

	state    State
	started  bool
	tick     int
	gapTicks int
	stable   int
}

func New(params Params, gains control.Gains, rig Rig) *Maneuver {
	diag := rig.Diagnostics
	if diag == nil {
		diag = vehicle.Discard{}
	}
	clock := rig.Clock
	if clock == nil {
		clock = vehicle.WallClock{}
	}
	return &Maneuver{
		Params:   params,
		Steering: control.NewSteering(rig.Sensor, diag, gains),
		Retry:    vehicle.DefaultRetryPolicy(),
		sensor:   rig.Sensor,
		motor:    rig.Motor,
		clock:    clock,
		diag:     diag,
		state:    SeekingSpace,
	}
}

func (m *Maneuver) AddObserver(o Observer) { m.observers = append(m.observers, o) }

func (m *Maneuver) State() State    { return m.state }
func (m *Maneuver) Ticks() int      { return m.tick }
func (m *Maneuver) GapTicks() int   { return m.gapTicks }
func (m *Maneuver) Stabilized() bool { return m.stable >= m.Params.StableTicks }

// Reset rewinds to SeekingSpace so the maneuver can be run again with the
// current Params.
func (m *Maneuver) Reset() {
	m.state = SeekingSpace
	m.started = false
	m.tick = 0
	m.gapTicks = 0
	m.stable = 0
}

// Run executes the whole maneuver. It returns once the vehicle is parked
// and stationary; sensor and control anomalies never abort it.
func (m *Maneuver) Run() {
	for m.state != Done {
		m.Advance()
	}
}

// Advance performs one unit of work: a single SeekingSpace tick, or a
// complete Rotating or Reversing phase. It returns the resulting state.
func (m *Maneuver) Advance() State {
	switch m.state {
	case SeekingSpace:
		if !m.started {
			m.startSeeking()
		}
		if m.seekTick() {
			m.transition(Rotating)
		}
	case Rotating:
		m.rotate()
		m.transition(Reversing)
	case Reversing:
		m.reverse()
		m.transition(Done)
	}
	return m.state
}

func (m *Maneuver) startSeeking() {
	m.started = true
	m.diag.Printf("[autopark] 1. Starting space finding...\n")
	m.Steering.Retry = m.Retry
	m.Steering.Initialize(m.Params.Side)
	log.Debugf("[findSpace] steering initialized, following %s wall", m.Params.Side)
}

// seekTick reports whether the slot was confirmed on this tick.
func (m *Maneuver) seekTick() bool {
	side := m.Params.Side
	raw := m.Retry.Read(m.sensor, side)
	m.tick++

	rec := TickRecord{Tick: m.tick, State: SeekingSpace, Raw: raw}

	if raw >= m.Params.GapDistance {
		m.gapTicks++
		log.Debugf("[findSpace] tick #%d (dist: %d)", m.gapTicks, raw)
		if m.gapTicks >= m.Params.ConfirmTicks {
			log.Infof("[findSpace] parking spot found after %d ticks", m.tick)
			rec.GapTicks = m.gapTicks
			rec.Found = true
			m.notifyTick(rec)

			m.motor.Stop()
			m.clock.Delay(m.Params.SettleDelay)
			return true
		}
	} else {
		if m.gapTicks > 0 {
			log.Debugf("[findSpace] spot lost at %d, resetting tick", raw)
		}
		m.gapTicks = 0
	}

	mv := m.Steering.Compute(raw, side)
	rec.Steering = mv

	if m.stable >= m.Params.StableTicks {
		mv = 0
		rec.Stabilized = true
	} else if mv < m.Params.Deadband && mv > -m.Params.Deadband {
		m.stable++
	} else {
		m.stable = 0
	}

	left := m.Params.ForwardSpeed + mv
	right := m.Params.ForwardSpeed - mv
	m.motor.SetDifferentialSpeed(left, right)

	s := m.Steering.Last()
	rec.Filtered = s.Filtered
	rec.Error = s.Error
	rec.Derivative = s.Derivative
	rec.Reinit = s.Reinit
	rec.Output = mv
	rec.Left = left
	rec.Right = right
	rec.GapTicks = m.gapTicks
	m.notifyTick(rec)
	return false
}

func (m *Maneuver) rotate() {
	m.diag.Printf("[autopark] 2. Executing rotation...\n")
	p := m.Params

	m.motor.MoveForward(p.ForwardSpeed)
	m.clock.Delay(p.ForwardDelay)
	m.motor.Stop()
	m.clock.Delay(p.StopDelay)

	// The wall-side wheel holds while the other reverses, swinging the
	// rear of the vehicle toward the slot.
	if p.Side == vehicle.Right {
		m.motor.SetDifferentialSpeed(-p.PivotSpeed, 0)
	} else {
		m.motor.SetDifferentialSpeed(0, -p.PivotSpeed)
	}
	m.rotation().Await(m.clock)
	m.motor.Stop()

	m.clock.Delay(p.StopDelay)
}

func (m *Maneuver) reverse() {
	m.diag.Printf("[autopark] 3. Executing backward maneuver...\n")

	m.motor.MoveReverse(m.Params.BackwardSpeed)
	m.reverseCheck().Await(m.clock)
	m.motor.Stop()

	m.diag.Printf("[autopark] Parking complete.\n")
}

func (m *Maneuver) rotation() MotionCompletionCheck {
	if m.Rotation != nil {
		return m.Rotation
	}
	return Timed{Duration: m.Params.RotateDelay}
}

func (m *Maneuver) reverseCheck() MotionCompletionCheck {
	if m.Reverse != nil {
		return m.Reverse
	}
	return Timed{Duration: m.Params.ReverseDuration}
}

func (m *Maneuver) transition(to State) {
	from := m.state
	m.state = to
	log.Infof("[autopark] %s -> %s", from, to)
	for _, o := range m.observers {
		o.OnTransition(from, to)
	}
}

func (m *Maneuver) notifyTick(rec TickRecord) {
	for _, o := range m.observers {
		o.OnTick(rec)
	}
}
