// Package record captures per-tick control loop telemetry and exports it
// for offline analysis.
package record

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"strconv"

	"github.com/servokit/servokit/profile"
	"github.com/servokit/servokit/units"
)

// ErrNoSamples is returned when an export has nothing to write.
var ErrNoSamples = errors.New("record: no samples")

// Sample is one tick of a control loop.
type Sample struct {
	// Time is seconds since activation.
	Time        float64        `json:"time"`
	Measurement units.Distance `json:"measurement"`
	Setpoint    profile.State  `json:"setpoint"`
	Goal        profile.State  `json:"goal"`
	Output      float64        `json:"output"`
}

// Recorder accumulates samples in memory. The zero value is ready to use.
// A Recorder is not safe for concurrent use.
type Recorder struct {
	samples []Sample
}

func New() *Recorder { return &Recorder{} }

func (r *Recorder) Add(s Sample) { r.samples = append(r.samples, s) }

// Samples returns the recorded samples in insertion order. The slice is
// shared with the recorder; callers must not modify it.
func (r *Recorder) Samples() []Sample { return r.samples }

func (r *Recorder) Len() int { return len(r.samples) }

func (r *Recorder) Reset() { r.samples = nil }

// Run is an exported recording along with the loop settings that made it.
type Run struct {
	// Name labels the command that produced the run.
	Name string `json:"name"`
	// Period is the loop period in seconds.
	Period  float64  `json:"period"`
	Samples []Sample `json:"samples"`
}

// WriteJSON exports a run as indented JSON.
func WriteJSON(w io.Writer, run Run) error {
	if len(run.Samples) == 0 {
		return ErrNoSamples
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}

// WriteCSV exports samples with one row per tick.
func WriteCSV(w io.Writer, samples []Sample) error {
	if len(samples) == 0 {
		return ErrNoSamples
	}
	cw := csv.NewWriter(w)
	header := []string{
		"time",
		"measurement",
		"setpoint_position",
		"setpoint_velocity",
		"goal_position",
		"goal_velocity",
		"output",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			formatFloat(s.Time),
			formatFloat(s.Measurement.Meters()),
			formatFloat(s.Setpoint.Position.Meters()),
			formatFloat(s.Setpoint.Velocity.MetersPerSecond()),
			formatFloat(s.Goal.Position.Meters()),
			formatFloat(s.Goal.Velocity.MetersPerSecond()),
			formatFloat(s.Output),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
