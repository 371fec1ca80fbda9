package metrics

import (
	"math"
	"testing"

	"github.com/servokit/servokit/profile"
	"github.com/servokit/servokit/record"
	"github.com/servokit/servokit/units"
)

func mkSample(t, measurement, goal, output float64) record.Sample {
	return record.Sample{
		Time:        t,
		Measurement: units.Meters(measurement),
		Goal:        profile.State{Position: units.Meters(goal)},
		Output:      output,
	}
}

func TestControlEffort(t *testing.T) {
	var m ControlEffort
	m.Observe(mkSample(0, 0, 1, 1))
	m.Observe(mkSample(0.02, 0, 1, -3))
	if got := m.Value(); math.Abs(got-2) > 1e-9 {
		t.Errorf("expected mean effort 2, got %f", got)
	}

	m.Reset()
	if got := m.Value(); got != 0 {
		t.Errorf("expected zero effort after reset, got %f", got)
	}
}

func TestOvershootFromBelow(t *testing.T) {
	var m Overshoot
	for i, meas := range []float64{0, 0.9, 1.15, 1.05} {
		m.Observe(mkSample(float64(i), meas, 1, 0))
	}
	if got := m.Value(); math.Abs(got-0.15) > 1e-9 {
		t.Errorf("expected overshoot 0.15, got %f", got)
	}
}

func TestOvershootFromAbove(t *testing.T) {
	var m Overshoot
	for i, meas := range []float64{2, 1.1, 0.92} {
		m.Observe(mkSample(float64(i), meas, 1, 0))
	}
	if got := m.Value(); math.Abs(got-0.08) > 1e-9 {
		t.Errorf("expected overshoot 0.08, got %f", got)
	}
}

func TestOvershootNone(t *testing.T) {
	var m Overshoot
	for i, meas := range []float64{0, 0.5, 0.95} {
		m.Observe(mkSample(float64(i), meas, 1, 0))
	}
	if got := m.Value(); got != 0 {
		t.Errorf("expected no overshoot, got %f", got)
	}
}

func TestSettlingTime(t *testing.T) {
	m := NewSettlingTime(units.Centimeters(5))
	m.Observe(mkSample(0, 0, 1, 0))
	m.Observe(mkSample(0.5, 0.9, 1, 0))
	m.Observe(mkSample(1.0, 0.97, 1, 0))
	m.Observe(mkSample(1.5, 0.99, 1, 0))
	if got := m.Value(); got != 0.5 {
		t.Errorf("expected settling at 0.5s, got %f", got)
	}
}

func TestSettlingTimeNeverSettles(t *testing.T) {
	m := NewSettlingTime(units.Centimeters(5))
	m.Observe(mkSample(0, 0, 1, 0))
	m.Observe(mkSample(2, 0.5, 1, 0))
	if got := m.Value(); got != 2 {
		t.Errorf("expected final sample time 2s, got %f", got)
	}
}

func TestApply(t *testing.T) {
	samples := []record.Sample{
		mkSample(0, 0, 1, 2),
		mkSample(0.02, 0.5, 1, 2),
	}
	var effort ControlEffort
	var over Overshoot
	Apply(samples, &effort, &over)
	if got := effort.Value(); math.Abs(got-2) > 1e-9 {
		t.Errorf("expected effort 2, got %f", got)
	}
	if got := over.Value(); got != 0 {
		t.Errorf("expected no overshoot, got %f", got)
	}
}
