package park

import (
	"fmt"

	"github.com/san-kum/autopark/internal/vehicle"
)

// scriptedSensor replays a fixed sequence per side and then repeats the
// last value.
type scriptedSensor struct {
	seq   map[vehicle.Side][]int
	calls map[vehicle.Side]int
}

func newScriptedSensor() *scriptedSensor {
	return &scriptedSensor{
		seq:   make(map[vehicle.Side][]int),
		calls: make(map[vehicle.Side]int),
	}
}

func (s *scriptedSensor) with(side vehicle.Side, values ...int) *scriptedSensor {
	s.seq[side] = append(s.seq[side], values...)
	return s
}

func (s *scriptedSensor) ReadDistance(side vehicle.Side) int {
	values := s.seq[side]
	n := s.calls[side]
	s.calls[side]++
	if len(values) == 0 {
		return vehicle.InvalidReading
	}
	if n >= len(values) {
		return values[len(values)-1]
	}
	return values[n]
}

type recordingMotor struct {
	commands []string
}

func (m *recordingMotor) SetDifferentialSpeed(left, right int) {
	m.commands = append(m.commands, fmt.Sprintf("diff %d %d", left, right))
}
func (m *recordingMotor) MoveForward(speed int) {
	m.commands = append(m.commands, fmt.Sprintf("forward %d", speed))
}
func (m *recordingMotor) MoveReverse(speed int) {
	m.commands = append(m.commands, fmt.Sprintf("reverse %d", speed))
}
func (m *recordingMotor) Stop() { m.commands = append(m.commands, "stop") }

type fakeClock struct {
	delays []int
}

func (c *fakeClock) Delay(ms int) { c.delays = append(c.delays, ms) }

func (c *fakeClock) total() int {
	sum := 0
	for _, d := range c.delays {
		sum += d
	}
	return sum
}

type lineSink struct {
	lines []string
}

func (l *lineSink) Printf(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

type recordingObserver struct {
	ticks       []TickRecord
	transitions []string
}

func (o *recordingObserver) OnTick(rec TickRecord) { o.ticks = append(o.ticks, rec) }
func (o *recordingObserver) OnTransition(from, to State) {
	o.transitions = append(o.transitions, from.String()+"->"+to.String())
}

func repeat(v, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}
