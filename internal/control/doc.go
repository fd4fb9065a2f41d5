// Package control provides the wall-following steering regulator.
//
// [Steering] is a proportional-derivative controller fed by a moving
// average of raw lateral distance readings:
//
//	s := control.NewSteering(sensor, diag, control.Gains{Kd: 0.2})
//	s.Initialize(vehicle.Left)
//	mv := s.Compute(raw, vehicle.Left) // once per control tick
//
// The output is saturated to [MVMin, MVMax]. An error of AbnormalDiff or
// more is treated as a sensor glitch: the controller re-seeds itself from a
// fresh reading and returns 0 for that tick.
//
// Steering supports live tuning through GetParams/SetParam.
package control
