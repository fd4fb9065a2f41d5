package sim

import (
	"fmt"
	"math"
	"math/rand"

	log "github.com/sirupsen/logrus"

	"github.com/san-kum/autopark/internal/dynamo"
	"github.com/san-kum/autopark/internal/integrators"
	"github.com/san-kum/autopark/internal/models"
	"github.com/san-kum/autopark/internal/vehicle"
)

// SensorModel describes the simulated ranging sensors. NoiseStdDev is in
// sensor units, Latency in milliseconds of simulated time per reading.
type SensorModel struct {
	NoiseStdDev float64
	DropoutRate float64
	Latency     int
	MaxRange    float64
}

func DefaultSensorModel() SensorModel {
	return SensorModel{
		NoiseStdDev: 200,
		DropoutRate: 0,
		Latency:     30,
		MaxRange:    2.0,
	}
}

// Options configures a World.
type Options struct {
	Geometry   Geometry
	Sensor     SensorModel
	Plant      models.DiffDrive
	Integrator string
	// Step is the physics step in seconds.
	Step       float64
	Seed       int64
	HalfWidth  float64
	HalfLength float64
}

func DefaultOptions() Options {
	return Options{
		Geometry:   DefaultGeometry(),
		Sensor:     DefaultSensorModel(),
		Plant:      *models.NewDiffDrive(),
		Integrator: "rk4",
		Step:       0.005,
		Seed:       1,
		HalfWidth:  0.075,
		HalfLength: 0.1,
	}
}

// Pose is the vehicle reference point at simulated time T (seconds).
type Pose struct {
	T     float64
	X     float64
	Y     float64
	Theta float64
}

// World is a simulated vehicle next to a wall. It implements the sensor,
// motor and clock contracts of package vehicle. Time only passes through
// Delay and sensor latency. Not safe for concurrent use.
type World struct {
	opts  Options
	plant *models.DiffDrive
	integ dynamo.Integrator
	rng   *rand.Rand
	walls []segment

	x     dynamo.State
	u     dynamo.Control
	t     float64
	trace []Pose
	reads int
	err   error
}

func NewWorld(opts Options) (*World, error) {
	if opts.Step <= 0 {
		return nil, fmt.Errorf("physics step must be positive, got %f", opts.Step)
	}
	integ, err := integrators.New(opts.Integrator)
	if err != nil {
		return nil, err
	}
	plant := opts.Plant
	w := &World{
		opts:  opts,
		plant: &plant,
		integ: integ,
		rng:   rand.New(rand.NewSource(opts.Seed)),
		walls: opts.Geometry.segments(),
		x:     make(dynamo.State, plant.StateDim()),
		u:     make(dynamo.Control, plant.ControlDim()),
	}
	w.record()
	return w, nil
}

func (w *World) Options() Options { return w.opts }

// Err returns the first integration failure, if any. The world freezes
// once the plant state becomes invalid.
func (w *World) Err() error { return w.err }

// Elapsed returns simulated time in milliseconds.
func (w *World) Elapsed() int { return int(math.Round(w.t * 1000)) }

func (w *World) Reads() int { return w.reads }

func (w *World) Pose() Pose {
	return Pose{T: w.t, X: w.x[models.X], Y: w.x[models.Y], Theta: w.x[models.Theta]}
}

// Trace returns the poses recorded after every time advance.
func (w *World) Trace() []Pose { return w.trace }

// Command returns the PWM duty currently applied to each wheel.
func (w *World) Command() (left, right int) { return int(w.u[0]), int(w.u[1]) }

// Parked reports whether the vehicle ended inside the slot, roughly
// perpendicular to the wall with its rear toward the slot back.
func (w *World) Parked() bool {
	p := w.Pose()
	if !w.opts.Geometry.InSlot(p.X, p.Y) {
		return false
	}
	want := -w.opts.Geometry.sign() * math.Pi / 2
	return math.Abs(angleDiff(p.Theta, want)) < 0.35
}

func (w *World) SetDifferentialSpeed(left, right int) {
	w.u[0], w.u[1] = float64(left), float64(right)
	w.plant.Settle(w.x, w.u)
}

func (w *World) MoveForward(speed int) { w.SetDifferentialSpeed(speed, speed) }
func (w *World) MoveReverse(speed int) { w.SetDifferentialSpeed(-speed, -speed) }
func (w *World) Stop()                 { w.SetDifferentialSpeed(0, 0) }

func (w *World) Delay(ms int) { w.Advance(ms) }

// Advance integrates the plant forward by ms milliseconds under the
// current motor command.
func (w *World) Advance(ms int) {
	if ms <= 0 || w.err != nil {
		return
	}
	remaining := float64(ms) / 1000
	for remaining > 1e-9 {
		dt := math.Min(w.opts.Step, remaining)
		next := w.integ.Step(w.plant, w.x, w.u, w.t, dt)
		if !next.IsValid() {
			w.err = &dynamo.StepError{Time: w.t, State: w.x.Clone(), Wrapped: dynamo.ErrInvalidState}
			log.Errorf("[sim] %v", w.err)
			return
		}
		w.x = next
		w.t += dt
		remaining -= dt
	}
	w.record()
}

// ReadDistance measures from the sensor mounted on side. Each reading
// consumes the sensor latency in simulated time.
func (w *World) ReadDistance(side vehicle.Side) int {
	w.Advance(w.opts.Sensor.Latency)
	w.reads++

	if w.opts.Sensor.DropoutRate > 0 && w.rng.Float64() < w.opts.Sensor.DropoutRate {
		return vehicle.InvalidReading
	}

	o, d := w.mount(side)
	dist, ok := cast(w.walls, o, d)
	if !ok || dist > w.opts.Sensor.MaxRange {
		dist = w.opts.Sensor.MaxRange
	}
	units := dist*UnitsPerMeter + w.rng.NormFloat64()*w.opts.Sensor.NoiseStdDev
	if units < 0 {
		units = 0
	}
	return int(units)
}

// mount returns the origin and unit direction of the sensor on side.
func (w *World) mount(side vehicle.Side) (point, point) {
	p := w.Pose()
	cos, sin := math.Cos(p.Theta), math.Sin(p.Theta)
	switch side {
	case vehicle.Right:
		return point{p.X + w.opts.HalfWidth*sin, p.Y - w.opts.HalfWidth*cos}, point{sin, -cos}
	case vehicle.Rear:
		return point{p.X - w.opts.HalfLength*cos, p.Y - w.opts.HalfLength*sin}, point{-cos, -sin}
	default:
		return point{p.X - w.opts.HalfWidth*sin, p.Y + w.opts.HalfWidth*cos}, point{-sin, cos}
	}
}

func (w *World) record() {
	w.trace = append(w.trace, w.Pose())
}

func angleDiff(a, b float64) float64 {
	d := math.Mod(a-b+math.Pi, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	return d - math.Pi
}
