package filter

import (
	"math/rand"
	"testing"
)

func TestMovingAverageFirstSample(t *testing.T) {
	m := NewMovingAverage(DefaultWindow)
	if got := m.Update(1234); got != 1234 {
		t.Errorf("expected 1234, got %d", got)
	}
	if m.Count() != 1 {
		t.Errorf("expected count 1, got %d", m.Count())
	}
}

func TestMovingAverageWindow(t *testing.T) {
	m := NewMovingAverage(6)
	samples := []int{10, 20, 30, 40, 50, 60, 70, 80}
	want := []int{10, 15, 20, 25, 30, 35, 45, 55}

	for i, s := range samples {
		if got := m.Update(s); got != want[i] {
			t.Errorf("sample %d: expected %d, got %d", i, want[i], got)
		}
	}
	if m.Count() != 6 {
		t.Errorf("count should saturate at 6, got %d", m.Count())
	}
}

func TestMovingAverageTruncates(t *testing.T) {
	m := NewMovingAverage(6)
	m.Update(1)
	if got := m.Update(2); got != 1 {
		t.Errorf("expected truncated mean 1, got %d", got)
	}
}

func TestMovingAverageSumInvariant(t *testing.T) {
	m := NewMovingAverage(6)
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		m.Update(r.Intn(300000))
		sum := 0
		for _, v := range m.readings {
			sum += v
		}
		if sum != m.Sum() {
			t.Fatalf("tick %d: running sum %d != buffer sum %d", i, m.Sum(), sum)
		}
	}
}

func TestMovingAverageBounded(t *testing.T) {
	m := NewMovingAverage(6)
	r := rand.New(rand.NewSource(42))
	var window []int

	for i := 0; i < 500; i++ {
		s := r.Intn(250000)
		window = append(window, s)
		if len(window) > 6 {
			window = window[1:]
		}
		got := m.Update(s)

		lo, hi := window[0], window[0]
		for _, v := range window {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		if got < lo || got > hi {
			t.Fatalf("tick %d: output %d outside [%d, %d]", i, got, lo, hi)
		}
	}
}

func TestMovingAverageReset(t *testing.T) {
	m := NewMovingAverage(6)
	m.Update(100)
	m.Update(200)
	m.Reset()

	if m.Count() != 0 || m.Sum() != 0 {
		t.Errorf("expected empty filter after reset, got count=%d sum=%d", m.Count(), m.Sum())
	}
	if got := m.Update(5000); got != 5000 {
		t.Errorf("expected 5000 after reset, got %d", got)
	}
}

func TestEMA(t *testing.T) {
	e := NewEMA(0.5)
	if got := e.Update(100); got != 100 {
		t.Errorf("first sample should seed the filter, got %d", got)
	}
	if got := e.Update(200); got != 150 {
		t.Errorf("expected 150, got %d", got)
	}
	e.Reset()
	if got := e.Update(40); got != 40 {
		t.Errorf("expected reseed to 40, got %d", got)
	}
}

func TestEMAInvalidAlpha(t *testing.T) {
	if e := NewEMA(0); e.Alpha != DefaultAlpha {
		t.Errorf("expected default alpha, got %f", e.Alpha)
	}
}
