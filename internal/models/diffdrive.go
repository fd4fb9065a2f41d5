package models

import (
	"math"

	"github.com/san-kum/autopark/internal/dynamo"
)

const (
	DefaultTrack       = 0.15
	DefaultSpeedAtFull = 0.5
	DefaultFullPWM     = 1000
	DefaultMotorLag    = 0.05
)

// State indices for DiffDrive.
const (
	X = iota
	Y
	Theta
	VLeft
	VRight
)

// DiffDrive is a two-wheel differential-drive vehicle. Each wheel speed
// follows its PWM command through a first-order lag; the body is a
// non-holonomic unicycle. Lengths are metres, angles radians, time seconds.
type DiffDrive struct {
	Track       float64
	SpeedAtFull float64
	FullPWM     float64
	MotorLag    float64
}

func NewDiffDrive() *DiffDrive {
	return &DiffDrive{
		Track:       DefaultTrack,
		SpeedAtFull: DefaultSpeedAtFull,
		FullPWM:     DefaultFullPWM,
		MotorLag:    DefaultMotorLag,
	}
}

func (d *DiffDrive) StateDim() int   { return 5 }
func (d *DiffDrive) ControlDim() int { return 2 }

// WheelSpeed converts a signed PWM duty to the steady-state wheel speed.
func (d *DiffDrive) WheelSpeed(pwm float64) float64 {
	pwm = math.Max(-d.FullPWM, math.Min(d.FullPWM, pwm))
	return pwm / d.FullPWM * d.SpeedAtFull
}

func (d *DiffDrive) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	theta, vl, vr := x[Theta], x[VLeft], x[VRight]

	targetL, targetR := 0.0, 0.0
	if len(u) >= 2 {
		targetL, targetR = d.WheelSpeed(u[0]), d.WheelSpeed(u[1])
	}

	var al, ar float64
	if d.MotorLag > 0 {
		al = (targetL - vl) / d.MotorLag
		ar = (targetR - vr) / d.MotorLag
	}

	v := (vl + vr) / 2
	omega := (vr - vl) / d.Track

	return dynamo.State{v * math.Cos(theta), v * math.Sin(theta), omega, al, ar}
}

// Settle snaps wheel speeds to their commanded values when the plant has
// no motor lag.
func (d *DiffDrive) Settle(x dynamo.State, u dynamo.Control) {
	if d.MotorLag > 0 || len(u) < 2 {
		return
	}
	x[VLeft], x[VRight] = d.WheelSpeed(u[0]), d.WheelSpeed(u[1])
}

// Kinetic returns the translational speed and yaw rate of x.
func (d *DiffDrive) Kinetic(x dynamo.State) (v, omega float64) {
	return (x[VLeft] + x[VRight]) / 2, (x[VRight] - x[VLeft]) / d.Track
}
