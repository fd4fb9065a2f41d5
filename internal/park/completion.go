package park

import (
	log "github.com/sirupsen/logrus"

	"github.com/san-kum/autopark/internal/vehicle"
)

const (
	// DefaultPollInterval is the rear sensor poll period in milliseconds.
	DefaultPollInterval = 50
	// DefaultMaxPolls bounds a RearDistance check that sets no MaxPolls.
	DefaultMaxPolls = 200
)

// MotionCompletionCheck blocks until a bounded physical motion that has
// already been commanded is complete.
type MotionCompletionCheck interface {
	Await(clock vehicle.Clock)
}

// Timed treats a motion as complete after a fixed duration.
type Timed struct {
	Duration int
}

func (t Timed) Await(clock vehicle.Clock) {
	clock.Delay(t.Duration)
}

// RearDistance polls the rear sensor until the obstacle behind the vehicle
// is at most StopDistance away, giving up after MaxPolls polls
// (DefaultMaxPolls when zero).
type RearDistance struct {
	Sensor       vehicle.DistanceSensor
	Retry        vehicle.RetryPolicy
	StopDistance int
	PollInterval int
	MaxPolls     int
}

func (r RearDistance) Await(clock vehicle.Clock) {
	interval := r.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	limit := r.MaxPolls
	if limit <= 0 {
		limit = DefaultMaxPolls
	}
	for n := 0; n < limit; n++ {
		d := r.Retry.Read(r.Sensor, vehicle.Rear)
		if vehicle.Valid(d) && d <= r.StopDistance {
			log.Debugf("[reverse] rear distance %d reached stop distance %d", d, r.StopDistance)
			return
		}
		clock.Delay(interval)
	}
	log.Warnf("[reverse] rear stop distance %d not reached after %d polls", r.StopDistance, limit)
}
