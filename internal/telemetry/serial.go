package telemetry

import (
	"fmt"
	"io"
	"sync"

	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

// DefaultSerialBuffer is the number of lines queued for the UART.
const DefaultSerialBuffer = 256

// SerialSink streams diagnostics over a serial link (the bluetooth UART on
// the vehicle). Printf never blocks the control loop: lines are queued
// and dropped when the queue is full.
type SerialSink struct {
	port    io.WriteCloser
	lines   chan string
	done    chan struct{}
	once    sync.Once
	mu      sync.Mutex
	dropped int
}

// OpenSerial opens device at baud and starts the writer.
func OpenSerial(device string, baud int) (*SerialSink, error) {
	mode := &serial.Mode{
		BaudRate: baud,
	}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}
	return NewSerialSink(port, DefaultSerialBuffer), nil
}

// NewSerialSink starts a writer goroutine draining into port.
func NewSerialSink(port io.WriteCloser, buffer int) *SerialSink {
	if buffer <= 0 {
		buffer = DefaultSerialBuffer
	}
	s := &SerialSink{
		port:  port,
		lines: make(chan string, buffer),
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *SerialSink) run() {
	defer close(s.done)
	for line := range s.lines {
		if _, err := io.WriteString(s.port, line); err != nil {
			log.Debugf("[telemetry] serial write: %v", err)
		}
	}
}

func (s *SerialSink) Printf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	select {
	case s.lines <- line:
	default:
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
	}
}

// Dropped returns how many lines were discarded on a full queue.
func (s *SerialSink) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close flushes queued lines and closes the port. Printf must not be
// called afterwards.
func (s *SerialSink) Close() error {
	var err error
	s.once.Do(func() {
		close(s.lines)
		<-s.done
		err = s.port.Close()
	})
	return err
}
