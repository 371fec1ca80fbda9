package command

import (
	"github.com/servokit/servokit/profile"
	"github.com/servokit/servokit/units"
)

// Controller is the profiled feedback controller a Profiled command drives.
// *pid.ProfiledController satisfies it.
type Controller interface {
	// Reset clears accumulated state at activation.
	Reset()
	// Calculate runs one control step toward goal and returns the output.
	Calculate(measurement units.Distance, goal profile.State) float64
	// Setpoint returns the profile state chosen by the latest Calculate.
	Setpoint() profile.State
}

// DistanceSource reads a position, typically from an encoder.
type DistanceSource func() units.Distance

// GoalSource reads the state the mechanism should settle at. It is read
// once per tick, so the goal may move while the command runs.
type GoalSource func() profile.State

// OutputSink applies a controller output, typically to a motor. It also
// receives the profile setpoint the output was computed against, for
// feedforward or telemetry.
type OutputSink func(output float64, setpoint profile.State)

// Profiled feeds a measurement and a goal through a profiled feedback
// controller once per tick and hands the result to an output sink.
//
// Activation resets the controller, so a reused command starts cleanly.
// Deactivation sends a single zeroed output so the mechanism is never left
// driven by a stale value, whether the command finished or was interrupted.
//
// Profiled never finishes on its own. Wrap it with Until or WithTimeout,
// or let the driver decide when to cancel.
type Profiled struct {
	Base
	controller Controller
	measure    DistanceSource
	goal       GoalSource
	use        OutputSink
}

// New builds a profiled command from a goal source. None of the sources or
// the sink are invoked until the command runs.
func New(controller Controller, measure DistanceSource, goal GoalSource, use OutputSink, reqs ...Requirement) *Profiled {
	p := &Profiled{
		controller: controller,
		measure:    measure,
		goal:       goal,
		use:        use,
	}
	p.SetName("profiled")
	p.AddRequirements(reqs...)
	return p
}

// NewDistanceSource builds a profiled command whose goal is a moving
// position. The goal velocity is pinned to zero every tick so the profile
// always plans to settle at wherever the position reads right now.
func NewDistanceSource(controller Controller, measure DistanceSource, goal DistanceSource, use OutputSink, reqs ...Requirement) *Profiled {
	return New(controller, measure, func() profile.State {
		return profile.State{Position: goal()}
	}, use, reqs...)
}

// NewFixedGoal builds a profiled command that settles at goal.
func NewFixedGoal(controller Controller, measure DistanceSource, goal profile.State, use OutputSink, reqs ...Requirement) *Profiled {
	return New(controller, measure, func() profile.State {
		return goal
	}, use, reqs...)
}

// NewFixedDistance builds a profiled command that settles at rest at goal.
func NewFixedDistance(controller Controller, measure DistanceSource, goal units.Distance, use OutputSink, reqs ...Requirement) *Profiled {
	return NewFixedGoal(controller, measure, profile.State{Position: goal}, use, reqs...)
}

func (p *Profiled) Initialize() {
	p.controller.Reset()
}

func (p *Profiled) Execute() {
	measurement := p.measure()
	goal := p.goal()
	output := p.controller.Calculate(measurement, goal)
	p.use(output, p.controller.Setpoint())
}

func (p *Profiled) End(interrupted bool) {
	p.use(0, profile.State{})
}

func (p *Profiled) IsFinished() bool { return false }

// Controller returns the command's controller so callers can retune it or
// query progress. The command stays in control of Reset and Calculate.
func (p *Profiled) Controller() Controller { return p.controller }
