package pid

import (
	"time"

	"github.com/servokit/servokit/profile"
	"github.com/servokit/servokit/units"
)

// ProfiledController wraps a Controller so that the setpoint it chases is a
// trapezoid profile step toward the goal rather than the goal itself. The
// mechanism is asked to follow a feasible path and the feedback loop only
// corrects the deviation from that path.
//
// A ProfiledController is not safe for concurrent use.
type ProfiledController struct {
	pid      *Controller
	profile  profile.Trapezoid
	setpoint profile.State
	goal     profile.State
	first    bool
}

// NewProfiled returns a profiled controller stepped once per period.
func NewProfiled(kp, ki, kd float64, constraints profile.Constraints, period time.Duration) *ProfiledController {
	return &ProfiledController{
		pid:     New(kp, ki, kd, period),
		profile: profile.NewTrapezoid(constraints),
		first:   true,
	}
}

// Calculate advances the internal setpoint one period along the profile
// toward goal and returns the feedback output against that setpoint. On the
// first call after construction or Reset the profile is seeded at the
// measurement, so motion always starts from where the mechanism actually is.
func (c *ProfiledController) Calculate(measurement units.Distance, goal profile.State) float64 {
	if c.first {
		c.setpoint = profile.State{Position: measurement}
		c.first = false
	}
	c.goal = goal
	c.setpoint = c.profile.Step(c.pid.Period(), c.setpoint, goal)
	return c.pid.Calculate(measurement.Meters(), c.setpoint.Position.Meters())
}

// Reset clears the feedback state and forgets the current setpoint and
// goal. The next Calculate re-seeds the profile from its measurement.
func (c *ProfiledController) Reset() {
	c.pid.Reset()
	c.setpoint = profile.State{}
	c.goal = profile.State{}
	c.first = true
}

// Setpoint returns the profile state the controller is currently tracking.
func (c *ProfiledController) Setpoint() profile.State { return c.setpoint }

// Goal returns the goal passed to the most recent Calculate.
func (c *ProfiledController) Goal() profile.State { return c.goal }

// PID exposes the inner feedback controller for retuning and limits.
func (c *ProfiledController) PID() *Controller { return c.pid }

func (c *ProfiledController) Period() time.Duration { return c.pid.Period() }

// SetTolerance sets the position band AtGoal accepts.
func (c *ProfiledController) SetTolerance(tol units.Distance) {
	c.pid.SetTolerance(tol.Meters())
}

// AtGoal reports whether the profile has fully played out and the most
// recent measurement was within tolerance of the goal.
func (c *ProfiledController) AtGoal() bool {
	return c.pid.AtSetpoint() && c.setpoint == c.goal
}
