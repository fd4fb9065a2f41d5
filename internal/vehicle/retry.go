package vehicle

import log "github.com/sirupsen/logrus"

// DefaultRetries is the number of extra attempts made after an invalid read.
const DefaultRetries = 1

// RetryPolicy caps how many times an invalid reading is re-requested.
type RetryPolicy struct {
	MaxRetries int
}

// DefaultRetryPolicy retries exactly once.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: DefaultRetries}
}

// Read queries the sensor and retries up to MaxRetries times while the
// reading is invalid. The last value obtained is returned even if it is
// still invalid; callers absorb persistent faults elsewhere.
func (p RetryPolicy) Read(sensor DistanceSensor, side Side) int {
	d := sensor.ReadDistance(side)
	for i := 0; i < p.MaxRetries && !Valid(d); i++ {
		log.Debugf("invalid %s reading %d, retry %d/%d", side, d, i+1, p.MaxRetries)
		d = sensor.ReadDistance(side)
	}
	if !Valid(d) {
		log.Warnf("%s sensor still invalid after %d retries: %d", side, p.MaxRetries, d)
	}
	return d
}
