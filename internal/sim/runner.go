package sim

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/san-kum/autopark/internal/control"
	"github.com/san-kum/autopark/internal/park"
	"github.com/san-kum/autopark/internal/vehicle"
)

// DefaultMaxTicks bounds the SeekingSpace phase of a simulated run.
const DefaultMaxTicks = 2000

// Result summarizes one simulated maneuver.
type Result struct {
	Seed    int64
	State   park.State
	Ticks   int
	Parked  bool
	Elapsed int
	Final   Pose
	Reinits int
}

// Runner drives a park.Maneuver against a World.
type Runner struct {
	World    *World
	Maneuver *park.Maneuver
	MaxTicks int
}

// NewRunner builds a world from opts and a maneuver wired to it. The
// maneuver's Rig uses the world as sensor, motor and clock.
func NewRunner(opts Options, params park.Params, gains control.Gains, diag vehicle.Diagnostics) (*Runner, error) {
	world, err := NewWorld(opts)
	if err != nil {
		return nil, err
	}
	m := park.New(params, gains, park.Rig{
		Sensor:      world,
		Motor:       world,
		Clock:       world,
		Diagnostics: diag,
	})
	return &Runner{World: world, Maneuver: m, MaxTicks: DefaultMaxTicks}, nil
}

// Step advances the maneuver by one unit of work and enforces the tick
// budget. It returns ErrNoSpace once the budget is exhausted.
func (r *Runner) Step() error {
	if err := r.World.Err(); err != nil {
		return err
	}
	if r.Maneuver.State() == park.SeekingSpace && r.MaxTicks > 0 && r.Maneuver.Ticks() >= r.MaxTicks {
		r.World.Stop()
		return fmt.Errorf("%d ticks without a confirmed gap: %w", r.Maneuver.Ticks(), ErrNoSpace)
	}
	r.Maneuver.Advance()
	return r.World.Err()
}

// Run steps until the maneuver is Done, the context is canceled or the
// tick budget runs out. The partial Result is returned alongside errors.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	for r.Maneuver.State() != park.Done {
		if err := ctx.Err(); err != nil {
			return r.Result(), err
		}
		if err := r.Step(); err != nil {
			return r.Result(), err
		}
	}
	res := r.Result()
	log.Infof("[sim] done after %d ticks, %d ms simulated, parked=%v", res.Ticks, res.Elapsed, res.Parked)
	return res, nil
}

func (r *Runner) Result() *Result {
	return &Result{
		Seed:    r.World.Options().Seed,
		State:   r.Maneuver.State(),
		Ticks:   r.Maneuver.Ticks(),
		Parked:  r.Maneuver.State() == park.Done && r.World.Parked(),
		Elapsed: r.World.Elapsed(),
		Final:   r.World.Pose(),
		Reinits: r.Maneuver.Steering.Reinits(),
	}
}
