package units

import (
	"math"
	"testing"
	"time"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDistanceConstructors(t *testing.T) {
	if d := Meters(1.5); !approxEqual(d.Meters(), 1.5) {
		t.Errorf("expected 1.5m, got %v", d)
	}
	if d := Centimeters(250); !approxEqual(d.Meters(), 2.5) {
		t.Errorf("expected 2.5m from 250cm, got %v", d)
	}
	if d := Millimeters(42); !approxEqual(d.Meters(), 0.042) {
		t.Errorf("expected 0.042m from 42mm, got %v", d)
	}
}

func TestDistancePer(t *testing.T) {
	v := Meters(10).Per(2 * time.Second)
	if !approxEqual(v.MetersPerSecond(), 5) {
		t.Errorf("expected 5m/s, got %v", v)
	}
}

func TestVelocityPerAndOver(t *testing.T) {
	a := MetersPerSecond(6).Per(3 * time.Second)
	if !approxEqual(a.MetersPerSecondSquared(), 2) {
		t.Errorf("expected 2m/s², got %v", a)
	}

	d := MetersPerSecond(4).Over(500 * time.Millisecond)
	if !approxEqual(d.Meters(), 2) {
		t.Errorf("expected 2m, got %v", d)
	}
}

func TestAccelerationOver(t *testing.T) {
	v := MetersPerSecondSquared(3).Over(2 * time.Second)
	if !approxEqual(v.MetersPerSecond(), 6) {
		t.Errorf("expected 6m/s, got %v", v)
	}
}

func TestStrings(t *testing.T) {
	cases := []struct {
		got  string
		want string
	}{
		{Meters(1.25).String(), "1.250m"},
		{MetersPerSecond(0.5).String(), "0.500m/s"},
		{MetersPerSecondSquared(2).String(), "2.000m/s²"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("expected %q, got %q", c.want, c.got)
		}
	}
}
