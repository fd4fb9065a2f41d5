package control

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/san-kum/autopark/internal/filter"
	"github.com/san-kum/autopark/internal/vehicle"
)

type scriptedSensor struct {
	values []int
	calls  int
}

func (s *scriptedSensor) ReadDistance(side vehicle.Side) int {
	if s.calls >= len(s.values) {
		s.calls++
		return s.values[len(s.values)-1]
	}
	v := s.values[s.calls]
	s.calls++
	return v
}

type lineSink struct {
	lines []string
}

func (l *lineSink) Printf(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func TestInitialize(t *testing.T) {
	sensor := &scriptedSensor{values: []int{30000}}
	s := NewSteering(sensor, nil, Gains{Kp: 1, Kd: 1})
	s.Initialize(vehicle.Left)

	if s.Target() != 30000 {
		t.Errorf("expected target 30000, got %d", s.Target())
	}
	if s.PreviousFiltered() != s.Target() {
		t.Errorf("previous filtered %d should equal target %d", s.PreviousFiltered(), s.Target())
	}
	if s.LastError() != 0 {
		t.Errorf("expected last error 0, got %d", s.LastError())
	}
}

func TestInitializeRetriesOnce(t *testing.T) {
	sensor := &scriptedSensor{values: []int{vehicle.InvalidReading, 25000, 99999}}
	s := NewSteering(sensor, nil, Gains{})
	s.Initialize(vehicle.Left)

	if sensor.calls != 2 {
		t.Errorf("expected 2 sensor reads, got %d", sensor.calls)
	}
	if s.Target() != 25000 {
		t.Errorf("expected target 25000, got %d", s.Target())
	}
}

func TestInitializeResetsState(t *testing.T) {
	sensor := &scriptedSensor{values: []int{30000, 31000, 31000, 40000}}
	s := NewSteering(sensor, nil, Gains{Kp: 0.1})
	s.Initialize(vehicle.Left)
	s.Compute(sensor.ReadDistance(vehicle.Left), vehicle.Left)
	s.Compute(sensor.ReadDistance(vehicle.Left), vehicle.Left)
	if s.LastError() == 0 {
		t.Fatal("expected non-zero error before reinitialization")
	}

	s.Initialize(vehicle.Left)
	if s.LastError() != 0 {
		t.Errorf("expected last error reset, got %d", s.LastError())
	}
	if s.Target() != 40000 {
		t.Errorf("expected target reseeded to 40000, got %d", s.Target())
	}
}

func TestComputeOutputRange(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	gains := []Gains{{Kp: 0, Kd: 0.2}, {Kp: 5, Kd: 10}, {Kp: -3, Kd: 0}, {Kp: 100, Kd: 100}}

	for _, g := range gains {
		sensor := &scriptedSensor{values: []int{30000}}
		s := NewSteering(sensor, nil, g)
		s.Initialize(vehicle.Left)
		for i := 0; i < 1000; i++ {
			raw := 30000 + r.Intn(8000) - 4000
			out := s.Compute(raw, vehicle.Left)
			if out < MVMin || out > MVMax {
				t.Fatalf("gains %+v tick %d: output %d outside [%d, %d]", g, i, out, MVMin, MVMax)
			}
		}
	}
}

func TestComputeProportionalDerivative(t *testing.T) {
	sensor := &scriptedSensor{values: []int{1000}}
	s := NewSteering(sensor, nil, Gains{Kp: 0.5, Kd: 0.25})
	s.Initialize(vehicle.Left)

	// filtered = (1000+400)/2 = 700, error = 300, derivative = 300, raw output 225
	out := s.Compute(400, vehicle.Left)
	if out != MVMax {
		t.Errorf("expected saturation at %d, got %d", MVMax, out)
	}

	last := s.Last()
	if last.Error != 300 || last.Derivative != 300 || last.Filtered != 700 {
		t.Errorf("unexpected sample %+v", last)
	}

	// filtered = (1000+400+700)/3 = 700, error = 300, derivative = 0
	out = s.Compute(700, vehicle.Left)
	if out != 150 {
		t.Errorf("expected 150, got %d", out)
	}
}

func TestComputeTruncates(t *testing.T) {
	sensor := &scriptedSensor{values: []int{1000}}
	s := NewSteering(sensor, nil, Gains{Kp: 0.3})
	s.Initialize(vehicle.Left)

	// filtered = (1000+995)/2 = 997, error = 3, 0.3*3 = 0.9 -> 0
	if out := s.Compute(995, vehicle.Left); out != 0 {
		t.Errorf("expected truncation to 0, got %d", out)
	}
	s2 := NewSteering(&scriptedSensor{values: []int{1000}}, nil, Gains{Kp: 0.3})
	s2.Initialize(vehicle.Left)
	// filtered = 1002, error = -2 -> -0.6 -> 0
	if out := s2.Compute(1005, vehicle.Left); out != 0 {
		t.Errorf("expected truncation toward zero, got %d", out)
	}
}

func TestComputeAbnormalReinitializes(t *testing.T) {
	sensor := &scriptedSensor{values: []int{30000, 120000}}
	sink := &lineSink{}
	s := NewSteering(sensor, sink, Gains{Kp: 1, Kd: 1})
	s.Initialize(vehicle.Left)

	// filtered = (30000+100000)/2 = 65000, error = -35000
	out := s.Compute(100000, vehicle.Left)
	if out != 0 {
		t.Errorf("expected zero output on abnormal error, got %d", out)
	}
	if s.Target() != 120000 {
		t.Errorf("expected target reseeded to 120000, got %d", s.Target())
	}
	if s.LastError() != 0 {
		t.Errorf("expected last error reset, got %d", s.LastError())
	}
	if !s.Last().Reinit {
		t.Error("expected reinit flag on sample")
	}
	if s.Reinits() != 1 {
		t.Errorf("expected 1 reinit, got %d", s.Reinits())
	}
	if len(sink.lines) != 0 {
		t.Errorf("abnormal tick should not emit telemetry, got %v", sink.lines)
	}
}

func TestComputeAbnormalBoundary(t *testing.T) {
	tests := []struct {
		name   string
		raw    int
		reinit bool
	}{
		// seed 10000; filtered = (10000+raw)/2; error = 10000 - filtered
		{"just below", 10000 - 2*2999, false},
		{"at threshold", 10000 - 2*3000, true},
		{"negative threshold", 10000 + 2*3000, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sensor := &scriptedSensor{values: []int{10000, 10000}}
			s := NewSteering(sensor, nil, Gains{Kp: 1})
			s.Initialize(vehicle.Left)
			s.Compute(tt.raw, vehicle.Left)
			if s.Last().Reinit != tt.reinit {
				t.Errorf("expected reinit=%v, got %v (error %d)", tt.reinit, s.Last().Reinit, s.Last().Error)
			}
		})
	}
}

func TestComputeConstantInputConverges(t *testing.T) {
	sensor := &scriptedSensor{values: []int{42000}}
	s := NewSteering(sensor, nil, Gains{Kp: 2, Kd: 3})
	s.Initialize(vehicle.Left)

	for i := 0; i < 3*filter.DefaultWindow; i++ {
		if out := s.Compute(s.Target(), vehicle.Left); out != 0 {
			t.Fatalf("tick %d: expected 0, got %d", i, out)
		}
		if s.LastError() != 0 {
			t.Fatalf("tick %d: expected zero error, got %d", i, s.LastError())
		}
	}
}

func TestComputeTelemetryFormat(t *testing.T) {
	sensor := &scriptedSensor{values: []int{1000}}
	sink := &lineSink{}
	s := NewSteering(sensor, sink, Gains{Kp: 0.5})
	s.Initialize(vehicle.Left)
	s.Compute(800, vehicle.Left)

	if len(sink.lines) != 1 {
		t.Fatalf("expected 1 telemetry line, got %d", len(sink.lines))
	}
	// filtered 900, error 100, derivative 100, output 50
	if got := strings.TrimSpace(sink.lines[0]); got != "100,100,50" {
		t.Errorf("unexpected telemetry line %q", got)
	}
}

func TestSetParam(t *testing.T) {
	s := NewSteering(&scriptedSensor{values: []int{1}}, nil, Gains{Kp: 1, Kd: 2})
	if err := s.SetParam("Kp", 3); err != nil {
		t.Fatal(err)
	}
	if err := s.SetParam("Kd", 4); err != nil {
		t.Fatal(err)
	}
	if err := s.SetParam("Ki", 1); err == nil {
		t.Error("expected error for Ki")
	}
	p := s.GetParams()
	if p["Kp"] != 3 || p["Kd"] != 4 {
		t.Errorf("unexpected params %v", p)
	}
}

func TestSetFilterEMA(t *testing.T) {
	sensor := &scriptedSensor{values: []int{1000}}
	s := NewSteering(sensor, nil, Gains{Kp: 1})
	s.SetFilter(filter.NewEMA(0.5))
	s.Initialize(vehicle.Left)

	// ema: 0.5*2000 + 0.5*1000 = 1500, error = -500
	out := s.Compute(2000, vehicle.Left)
	if out != MVMin {
		t.Errorf("expected saturated %d, got %d", MVMin, out)
	}
	if s.Filtered() != 1500 {
		t.Errorf("expected filtered 1500, got %d", s.Filtered())
	}
}
