package telemetry

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	rec, ok := ParseLine("120,-30,18\n")
	require.True(t, ok)
	require.Equal(t, Record{Error: 120, Derivative: -30, Output: 18}, rec)
	require.Equal(t, "120,-30,18", rec.String())

	for _, line := range []string{
		"[autopark] 1. Starting space finding...",
		"1,2",
		"1,2,3,4",
		"a,b,c",
		"",
	} {
		_, ok := ParseLine(line)
		require.False(t, ok, line)
	}
}

func TestParseLogSkipsStatusLines(t *testing.T) {
	in := "[autopark] 1. Starting space finding...\n0,0,0\n300,300,60\n[autopark] 2. Executing rotation...\n-10,-310,-62\n"
	recs, err := ParseLog(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, []Record{{0, 0, 0}, {300, 300, 60}, {-10, -310, -62}}, recs)

	errs, derivs, outs := Columns(recs)
	require.Equal(t, []float64{0, 300, -10}, errs)
	require.Equal(t, []float64{0, 300, -310}, derivs)
	require.Equal(t, []float64{0, 60, -62}, outs)
}

func TestRecorderAndMulti(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	m := Multi{a, b}
	m.Printf("[autopark] %s\n", "hello")
	m.Printf("%d,%d,%d\n", 1, 2, 3)

	require.Equal(t, []string{"[autopark] hello\n", "1,2,3\n"}, a.Lines())
	require.Equal(t, a.Lines(), b.Lines())
	require.Equal(t, []Record{{1, 2, 3}}, a.Records())
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewWriterSink(&buf)
	s.Printf("%d,%d,%d\n", 4, 5, 6)
	s.Printf("[autopark] Parking complete.\n")
	require.Equal(t, "4,5,6\n[autopark] Parking complete.\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriterSinkSwallowsErrors(t *testing.T) {
	s := NewWriterSink(failingWriter{})
	s.Printf("1,2,3\n")
	s.Printf("1,2,3\n")
	require.True(t, s.failed)
}

type fakePort struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	closed  bool
	release chan struct{}
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.release != nil {
		<-p.release
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.Write(b)
}

func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func TestSerialSinkFlushesOnClose(t *testing.T) {
	port := &fakePort{}
	s := NewSerialSink(port, 8)
	s.Printf("%d,%d,%d\n", 1, 2, 3)
	s.Printf("[autopark] Parking complete.\n")

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	require.True(t, port.closed)
	require.Equal(t, "1,2,3\n[autopark] Parking complete.\n", port.buf.String())
	require.Zero(t, s.Dropped())
}

func TestSerialSinkDropsWhenFull(t *testing.T) {
	port := &fakePort{release: make(chan struct{})}
	s := NewSerialSink(port, 1)

	// The writer holds at most one line while blocked, the queue one more.
	for i := 0; i < 10; i++ {
		s.Printf("%d,0,0\n", i)
	}
	require.GreaterOrEqual(t, s.Dropped(), 8)

	close(port.release)
	require.NoError(t, s.Close())
}
