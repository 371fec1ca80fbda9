// Package metrics reduces a recorded control run to summary numbers.
package metrics

import (
	"math"

	"github.com/servokit/servokit/record"
	"github.com/servokit/servokit/units"
)

// Metric consumes samples during a run and reduces them to one value.
type Metric interface {
	Name() string
	Observe(s record.Sample)
	Value() float64
	Reset()
}

// Apply feeds every sample to every metric, in order.
func Apply(samples []record.Sample, ms ...Metric) {
	for _, s := range samples {
		for _, m := range ms {
			m.Observe(s)
		}
	}
}

// ControlEffort is the mean absolute output over the run. The zero value is
// ready to use.
type ControlEffort struct {
	sum float64
	n   int
}

func (m *ControlEffort) Name() string { return "control_effort" }

func (m *ControlEffort) Observe(s record.Sample) {
	m.sum += math.Abs(s.Output)
	m.n++
}

func (m *ControlEffort) Value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}

func (m *ControlEffort) Reset() { *m = ControlEffort{} }

// Overshoot is the farthest the measurement travelled past the goal, in
// meters. The approach direction is taken from the first sample. The zero
// value is ready to use.
type Overshoot struct {
	started   bool
	direction float64
	worst     float64
}

func (m *Overshoot) Name() string { return "overshoot" }

func (m *Overshoot) Observe(s record.Sample) {
	goal := s.Goal.Position.Meters()
	meas := s.Measurement.Meters()
	if !m.started {
		m.started = true
		if meas <= goal {
			m.direction = 1
		} else {
			m.direction = -1
		}
	}
	if past := (meas - goal) * m.direction; past > m.worst {
		m.worst = past
	}
}

func (m *Overshoot) Value() float64 { return m.worst }

func (m *Overshoot) Reset() { *m = Overshoot{} }

// SettlingTime is the time in seconds after which the measurement stayed
// within the band around the goal. A run that ends outside the band reports
// its final sample time.
type SettlingTime struct {
	band        float64
	lastOutside float64
}

func NewSettlingTime(band units.Distance) *SettlingTime {
	return &SettlingTime{band: math.Abs(band.Meters())}
}

func (m *SettlingTime) Name() string { return "settling_time" }

func (m *SettlingTime) Observe(s record.Sample) {
	if math.Abs(s.Measurement.Meters()-s.Goal.Position.Meters()) > m.band {
		m.lastOutside = s.Time
	}
}

func (m *SettlingTime) Value() float64 { return m.lastOutside }

func (m *SettlingTime) Reset() { m.lastOutside = 0 }
