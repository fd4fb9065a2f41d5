// Package vehicle defines the collaborator contracts the parking core drives:
// distance sensors, the differential motor pair, a diagnostics sink and a
// blocking delay primitive.
package vehicle

import (
	"fmt"
	"time"
)

// InvalidReading is the sentinel a sensor returns on a transient fault.
const InvalidReading = -1

// Side selects one of the vehicle's distance sensors.
type Side int

const (
	Left Side = iota
	Right
	Rear
)

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	case Rear:
		return "rear"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// ParseSide maps a config string to a Side.
func ParseSide(name string) (Side, error) {
	switch name {
	case "left", "LEFT", "Left":
		return Left, nil
	case "right", "RIGHT", "Right":
		return Right, nil
	case "rear", "REAR", "Rear":
		return Rear, nil
	}
	return Left, fmt.Errorf("unknown side %q", name)
}

//go:generate mockgen -destination=vehicle_mock.go -package=vehicle github.com/san-kum/autopark/internal/vehicle DistanceSensor,Motor,Clock

type DistanceSensor interface {
	// ReadDistance returns a non-negative reading or InvalidReading.
	ReadDistance(side Side) int
}

// Motor drives the two channels of a differential pair. Speeds are signed
// PWM duty values; positive drives forward. Calls are fire-and-forget.
type Motor interface {
	SetDifferentialSpeed(left, right int)
	MoveForward(speed int)
	MoveReverse(speed int)
	Stop()
}

// Diagnostics accepts status and telemetry lines. Delivery is best effort.
type Diagnostics interface {
	Printf(format string, args ...any)
}

type Clock interface {
	Delay(ms int)
}

// Valid reports whether a reading is usable.
func Valid(reading int) bool {
	return reading >= 0
}

// WallClock blocks the calling goroutine for real time.
type WallClock struct{}

func (WallClock) Delay(ms int) {
	if ms <= 0 {
		return
	}
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

// Discard drops every diagnostics line.
type Discard struct{}

func (Discard) Printf(string, ...any) {}
