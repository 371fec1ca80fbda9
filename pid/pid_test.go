package pid

import (
	"math"
	"testing"
	"time"
)

const period = 20 * time.Millisecond

func TestCalculateProportional(t *testing.T) {
	c := New(2, 0, 0, period)
	if out := c.Calculate(1, 3); math.Abs(out-4) > 1e-9 {
		t.Errorf("expected output 4, got %f", out)
	}
	if out := c.Calculate(3, 3); math.Abs(out) > 1e-9 {
		t.Errorf("expected zero output at setpoint, got %f", out)
	}
}

func TestCalculateIntegralAccumulates(t *testing.T) {
	c := New(0, 1, 0, period)
	c.Calculate(0, 1)
	out := c.Calculate(0, 1)
	// Two periods of unit error integrate to 2 * 0.02.
	if math.Abs(out-0.04) > 1e-9 {
		t.Errorf("expected output 0.04, got %f", out)
	}
}

func TestCalculateDerivativeSeeded(t *testing.T) {
	c := New(0, 0, 1, period)
	if out := c.Calculate(0, 5); math.Abs(out) > 1e-9 {
		t.Errorf("expected no derivative kick on first call, got %f", out)
	}
	out := c.Calculate(1, 5)
	// Error moved from 5 to 4 in one period.
	if math.Abs(out-(-1/period.Seconds())) > 1e-9 {
		t.Errorf("expected output %f, got %f", -1/period.Seconds(), out)
	}
}

func TestReset(t *testing.T) {
	c := New(1, 1, 1, period)
	for i := 0; i < 10; i++ {
		c.Calculate(0, 1)
	}
	c.Reset()

	if c.AtSetpoint() {
		t.Error("expected AtSetpoint false after reset")
	}
	if out := c.Calculate(0, 1); math.Abs(out-(1+0.02)) > 1e-9 {
		t.Errorf("expected fresh controller output 1.02, got %f", out)
	}
}

func TestSetOutputRange(t *testing.T) {
	c := New(100, 0, 0, period)
	c.SetOutputRange(-1, 1)
	if out := c.Calculate(0, 10); out != 1 {
		t.Errorf("expected output clamped to 1, got %f", out)
	}
	if out := c.Calculate(10, 0); out != -1 {
		t.Errorf("expected output clamped to -1, got %f", out)
	}
}

func TestSetIntegralLimit(t *testing.T) {
	c := New(0, 1, 0, period)
	c.SetIntegralLimit(0.1)
	for i := 0; i < 100; i++ {
		c.Calculate(0, 1)
	}
	if out := c.Calculate(0, 1); math.Abs(out-0.1) > 1e-9 {
		t.Errorf("expected integral held at limit 0.1, got %f", out)
	}
}

func TestAtSetpoint(t *testing.T) {
	c := New(1, 0, 0, period)
	c.SetTolerance(0.05)

	if c.AtSetpoint() {
		t.Error("expected AtSetpoint false before any Calculate")
	}
	c.Calculate(0, 1)
	if c.AtSetpoint() {
		t.Error("expected AtSetpoint false with error 1")
	}
	c.Calculate(0.97, 1)
	if !c.AtSetpoint() {
		t.Error("expected AtSetpoint true with error 0.03")
	}
	if got := c.LastError(); math.Abs(got-0.03) > 1e-9 {
		t.Errorf("expected last error 0.03, got %f", got)
	}
}
