// Package pid implements positional PID feedback controllers stepped at a
// fixed period.
package pid

import (
	"math"
	"time"
)

// Controller is a PID controller over scalar measurements. Gains are
// exported and may be retuned between calls. A Controller is not safe for
// concurrent use.
type Controller struct {
	Kp float64
	Ki float64
	Kd float64

	period      time.Duration
	outputMin   float64
	outputMax   float64
	maxIntegral float64
	tolerance   float64

	integral float64
	prevErr  float64
	first    bool
}

// New returns a controller that expects Calculate once per period.
func New(kp, ki, kd float64, period time.Duration) *Controller {
	return &Controller{
		Kp:          kp,
		Ki:          ki,
		Kd:          kd,
		period:      period,
		outputMin:   math.Inf(-1),
		outputMax:   math.Inf(1),
		maxIntegral: math.Inf(1),
		first:       true,
	}
}

func (c *Controller) Period() time.Duration { return c.period }

// SetOutputRange clamps Calculate results to [min, max].
func (c *Controller) SetOutputRange(min, max float64) {
	c.outputMin = min
	c.outputMax = max
}

// SetIntegralLimit bounds the accumulated integral term to [-limit, limit]
// so a long approach cannot wind it up.
func (c *Controller) SetIntegralLimit(limit float64) {
	c.maxIntegral = math.Abs(limit)
}

// SetTolerance sets the error band AtSetpoint accepts.
func (c *Controller) SetTolerance(tol float64) {
	c.tolerance = math.Abs(tol)
}

// Calculate runs one control step and returns the output. The derivative
// term is seeded on the first call after construction or Reset so a large
// initial error does not produce a derivative kick.
func (c *Controller) Calculate(measurement, setpoint float64) float64 {
	err := setpoint - measurement
	dt := c.period.Seconds()

	if c.first {
		c.prevErr = err
		c.first = false
	}

	c.integral += err * dt
	if c.integral > c.maxIntegral {
		c.integral = c.maxIntegral
	} else if c.integral < -c.maxIntegral {
		c.integral = -c.maxIntegral
	}

	deriv := (err - c.prevErr) / dt
	c.prevErr = err

	out := c.Kp*err + c.Ki*c.integral + c.Kd*deriv
	if out > c.outputMax {
		out = c.outputMax
	} else if out < c.outputMin {
		out = c.outputMin
	}
	return out
}

// Reset clears the accumulated state. Gains, limits, and tolerance are kept.
func (c *Controller) Reset() {
	c.integral = 0
	c.prevErr = 0
	c.first = true
}

// LastError returns the error of the most recent Calculate.
func (c *Controller) LastError() float64 {
	if c.first {
		return 0
	}
	return c.prevErr
}

// AtSetpoint reports whether the most recent Calculate saw an error within
// tolerance. It is false before the first Calculate.
func (c *Controller) AtSetpoint() bool {
	return !c.first && math.Abs(c.prevErr) <= c.tolerance
}
