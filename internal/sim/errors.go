package sim

import "errors"

var (
	// ErrNoSpace indicates the vehicle ran out of tick budget before a
	// slot was confirmed.
	ErrNoSpace = errors.New("sim: no parking space found")
)
