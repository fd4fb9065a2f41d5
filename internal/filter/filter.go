// Package filter smooths raw distance samples before they reach the
// steering controller.
package filter

// DefaultWindow is the number of samples averaged by MovingAverage.
const DefaultWindow = 6

// Smoother turns a stream of raw samples into a filtered stream.
type Smoother interface {
	Update(sample int) int
	Reset()
}

// MovingAverage is a fixed-window running mean over the last N samples.
type MovingAverage struct {
	readings []int
	index    int
	count    int
	total    int
}

func NewMovingAverage(window int) *MovingAverage {
	if window <= 0 {
		window = DefaultWindow
	}
	return &MovingAverage{readings: make([]int, window)}
}

// Update stores sample in place of the oldest one and returns the truncated
// mean of the buffered samples.
func (m *MovingAverage) Update(sample int) int {
	m.total -= m.readings[m.index]
	m.readings[m.index] = sample
	m.total += sample
	m.index = (m.index + 1) % len(m.readings)

	if m.count < len(m.readings) {
		m.count++
	}
	return m.total / m.count
}

func (m *MovingAverage) Reset() {
	for i := range m.readings {
		m.readings[i] = 0
	}
	m.index = 0
	m.count = 0
	m.total = 0
}

// Count is the number of samples currently contributing to the mean.
func (m *MovingAverage) Count() int { return m.count }

// Window is the buffer capacity.
func (m *MovingAverage) Window() int { return len(m.readings) }

// Sum is the running total of the buffered samples.
func (m *MovingAverage) Sum() int { return m.total }
