package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/servokit/servokit/profile"
	"github.com/servokit/servokit/units"
)

func sampleAt(t float64) Sample {
	return Sample{
		Time:        t,
		Measurement: units.Meters(t * 0.5),
		Setpoint: profile.State{
			Position: units.Meters(t * 0.6),
			Velocity: units.MetersPerSecond(0.6),
		},
		Goal:   profile.State{Position: units.Meters(2)},
		Output: 1.5,
	}
}

func TestRecorderAccumulates(t *testing.T) {
	r := New()
	if r.Len() != 0 {
		t.Errorf("expected empty recorder, got %d samples", r.Len())
	}
	r.Add(sampleAt(0))
	r.Add(sampleAt(0.02))
	if r.Len() != 2 {
		t.Fatalf("expected 2 samples, got %d", r.Len())
	}
	if got := r.Samples()[1].Time; got != 0.02 {
		t.Errorf("expected second sample at 0.02s, got %f", got)
	}
	r.Reset()
	if r.Len() != 0 {
		t.Errorf("expected empty recorder after reset, got %d samples", r.Len())
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	samples := []Sample{sampleAt(0), sampleAt(0.02)}
	if err := WriteCSV(&buf, samples); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "time,measurement,setpoint_position,setpoint_velocity,goal_position,goal_velocity,output" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[1] != "0,0,0,0.6,2,0,1.5" {
		t.Errorf("unexpected first row %q", lines[1])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); !errors.Is(err, ErrNoSamples) {
		t.Errorf("expected ErrNoSamples, got %v", err)
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	run := Run{
		Name:    "elevator",
		Period:  0.02,
		Samples: []Sample{sampleAt(0), sampleAt(0.02)},
	}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, run); err != nil {
		t.Fatal(err)
	}

	var got Run
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Name != run.Name || got.Period != run.Period {
		t.Errorf("expected run header %+v, got %+v", run, got)
	}
	if len(got.Samples) != 2 || got.Samples[1] != run.Samples[1] {
		t.Errorf("expected samples to survive the round trip, got %+v", got.Samples)
	}
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, Run{Name: "empty"}); !errors.Is(err, ErrNoSamples) {
		t.Errorf("expected ErrNoSamples, got %v", err)
	}
}
