// Package viz renders a simulated parking maneuver in the terminal.
//
// [Model] is a Bubble Tea model that steps a sim.Runner on every frame and
// draws a top-down view of the wall, the slot and the vehicle trail on a
// braille [Canvas], next to the steering output history and run metrics.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Rebuild the run, keeping tuned gains
//	Tab   - Select Kp or Kd
//	Up/Dn - Tune the selected gain
//	+/-   - Steps per frame
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
