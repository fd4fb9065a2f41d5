package canbus

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.einride.tech/can"

	"github.com/san-kum/autopark/internal/vehicle"
)

// DefaultTimeout bounds every frame exchange.
const DefaultTimeout = 100 * time.Millisecond

type FrameWriter interface {
	WriteFrame(ctx context.Context, frame can.Frame) error
}

type FrameReader interface {
	ReadFrame(ctx context.Context) (can.Frame, error)
}

// Motor implements vehicle.Motor by sending command frames. Transmit
// failures are logged and counted; the control loop is never blocked
// longer than Timeout.
type Motor struct {
	w       FrameWriter
	Timeout time.Duration

	mu     sync.Mutex
	errors int
}

func NewMotor(w FrameWriter) *Motor {
	return &Motor{w: w, Timeout: DefaultTimeout}
}

func (m *Motor) send(cmd Command, left, right int) {
	ctx, cancel := context.WithTimeout(context.Background(), m.Timeout)
	defer cancel()
	if err := m.w.WriteFrame(ctx, EncodeMotor(cmd, left, right)); err != nil {
		m.mu.Lock()
		m.errors++
		m.mu.Unlock()
		log.Warnf("[canbus] %s command failed: %v", cmd, err)
	}
}

func (m *Motor) SetDifferentialSpeed(left, right int) { m.send(CmdDifferential, left, right) }
func (m *Motor) MoveForward(speed int)                { m.send(CmdForward, speed, speed) }
func (m *Motor) MoveReverse(speed int)                { m.send(CmdReverse, speed, speed) }
func (m *Motor) Stop()                                { m.send(CmdStop, 0, 0) }

// Errors returns the number of commands that could not be sent.
func (m *Motor) Errors() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors
}

// Sensor implements vehicle.DistanceSensor with a request/reply exchange.
// Each request carries a sequence number and only the reply echoing it is
// accepted, so a late answer to an earlier request is dropped. A missing or
// late reply reads as vehicle.InvalidReading.
type Sensor struct {
	w       FrameWriter
	r       FrameReader
	Timeout time.Duration

	mu  sync.Mutex
	seq uint8
}

func NewSensor(w FrameWriter, r FrameReader) *Sensor {
	return &Sensor{w: w, r: r, Timeout: DefaultTimeout}
}

func (s *Sensor) ReadDistance(side vehicle.Side) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	seq := s.seq

	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	if err := s.w.WriteFrame(ctx, EncodeSensorRequest(side, seq)); err != nil {
		log.Debugf("[canbus] %s sensor request failed: %v", side, err)
		return vehicle.InvalidReading
	}
	for {
		f, err := s.r.ReadFrame(ctx)
		if err != nil {
			log.Debugf("[canbus] %s sensor reply: %v", side, err)
			return vehicle.InvalidReading
		}
		got, gotSeq, d, err := DecodeSensorReply(f)
		if err != nil || got != side {
			continue
		}
		if gotSeq != seq {
			log.Debugf("[canbus] %s sensor: dropping stale reply seq %d, want %d", side, gotSeq, seq)
			continue
		}
		return d
	}
}
