package filter

// DefaultAlpha weights new samples in EMA.
const DefaultAlpha = 0.1

// EMA is an exponential moving average low-pass filter. It is an
// alternative to MovingAverage and is not used unless selected.
type EMA struct {
	Alpha       float64
	value       float64
	initialized bool
}

func NewEMA(alpha float64) *EMA {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultAlpha
	}
	return &EMA{Alpha: alpha}
}

func (e *EMA) Update(sample int) int {
	if !e.initialized {
		e.value = float64(sample)
		e.initialized = true
		return sample
	}
	e.value = e.Alpha*float64(sample) + (1-e.Alpha)*e.value
	return int(e.value)
}

func (e *EMA) Reset() {
	e.value = 0
	e.initialized = false
}
