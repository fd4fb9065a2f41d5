// Package telemetry provides diagnostics sinks for the parking core and
// the parser for the error,derivative,mv tuning log.
package telemetry

import (
	"fmt"
	"io"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/san-kum/autopark/internal/vehicle"
)

// LogSink forwards diagnostics lines to logrus. Steering telemetry is
// logged at Debug so it only shows with --verbose; status lines at Info.
type LogSink struct{}

func (LogSink) Printf(format string, args ...any) {
	line := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	if _, ok := ParseLine(line); ok {
		log.Debugf("[telemetry] %s", line)
		return
	}
	log.Info(line)
}

// WriterSink writes lines verbatim to w. Write errors are logged once and
// otherwise ignored.
type WriterSink struct {
	mu     sync.Mutex
	w      io.Writer
	failed bool
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, format, args...); err != nil && !s.failed {
		s.failed = true
		log.Warnf("[telemetry] writer sink failed: %v", err)
	}
}

// Recorder keeps every line in memory.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *Recorder) Printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// Records returns the parsed steering telemetry seen so far.
func (r *Recorder) Records() []Record {
	var out []Record
	for _, l := range r.Lines() {
		if rec, ok := ParseLine(l); ok {
			out = append(out, rec)
		}
	}
	return out
}

// Multi fans every line out to all sinks.
type Multi []vehicle.Diagnostics

func (m Multi) Printf(format string, args ...any) {
	for _, s := range m {
		s.Printf(format, args...)
	}
}
