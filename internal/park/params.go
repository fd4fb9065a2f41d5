package park

import "github.com/san-kum/autopark/internal/vehicle"

const (
	DefaultGapDistance     = 200000
	DefaultForwardSpeed    = 300
	DefaultBackwardSpeed   = 300
	DefaultConfirmTicks    = 30
	DefaultForwardDelay    = 0
	DefaultRotateDelay     = 480
	DefaultReverseDuration = 1000
	DefaultPivotSpeed      = 1000
	DefaultSettleDelay     = 50
	DefaultStopDelay       = 500
	DefaultStableTicks     = 5
	DefaultDeadband        = 100
)

// Params are the externally tunable maneuver settings. Delays are in
// milliseconds, speeds are PWM duty values.
type Params struct {
	Side            vehicle.Side
	GapDistance     int
	ForwardSpeed    int
	BackwardSpeed   int
	ConfirmTicks    int
	ForwardDelay    int
	RotateDelay     int
	ReverseDuration int
	PivotSpeed      int
	SettleDelay     int
	StopDelay       int
	StableTicks     int
	Deadband        int
}

func DefaultParams() Params {
	return Params{
		Side:            vehicle.Left,
		GapDistance:     DefaultGapDistance,
		ForwardSpeed:    DefaultForwardSpeed,
		BackwardSpeed:   DefaultBackwardSpeed,
		ConfirmTicks:    DefaultConfirmTicks,
		ForwardDelay:    DefaultForwardDelay,
		RotateDelay:     DefaultRotateDelay,
		ReverseDuration: DefaultReverseDuration,
		PivotSpeed:      DefaultPivotSpeed,
		SettleDelay:     DefaultSettleDelay,
		StopDelay:       DefaultStopDelay,
		StableTicks:     DefaultStableTicks,
		Deadband:        DefaultDeadband,
	}
}
