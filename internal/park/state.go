package park

import "fmt"

// State is a phase of the parking maneuver. Phases only move forward.
type State int

const (
	SeekingSpace State = iota
	Rotating
	Reversing
	Done
)

var stateNames = map[State]string{
	SeekingSpace: "seeking_space",
	Rotating:     "rotating",
	Reversing:    "reversing",
	Done:         "done",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func ParseState(name string) (State, error) {
	for s, n := range stateNames {
		if n == name {
			return s, nil
		}
	}
	return SeekingSpace, fmt.Errorf("unknown maneuver state %q", name)
}

// TickRecord describes one SeekingSpace control tick.
type TickRecord struct {
	Tick       int
	State      State
	Raw        int
	Filtered   int
	Error      int
	Derivative int
	Steering   int // controller output before the stabilizer
	Output     int // correction actually applied
	Left       int
	Right      int
	GapTicks   int
	Stabilized bool
	Reinit     bool
	Found      bool
}

// Observer is notified of maneuver progress. Implementations must not block.
type Observer interface {
	OnTick(rec TickRecord)
	OnTransition(from, to State)
}
