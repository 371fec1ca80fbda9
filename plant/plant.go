// Package plant simulates simple mechanisms for closing a control loop
// without hardware.
package plant

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/servokit/servokit/units"
)

// SecondOrder is a mass on a damped linear axis driven by a force input,
// in state-space form x' = Ax + Bu with x = [position, velocity]. It stands
// in for an elevator carriage or a slide when tuning a loop off the robot.
type SecondOrder struct {
	a *mat.Dense
	b *mat.VecDense
	x *mat.VecDense

	forceLimit float64
}

// NewSecondOrder builds a plant with the given mass in kilograms and
// viscous damping in newton-seconds per meter.
func NewSecondOrder(mass, damping float64) (*SecondOrder, error) {
	if mass <= 0 {
		return nil, fmt.Errorf("plant: mass must be positive, got %g", mass)
	}
	if damping < 0 {
		return nil, fmt.Errorf("plant: damping must not be negative, got %g", damping)
	}
	return &SecondOrder{
		a: mat.NewDense(2, 2, []float64{
			0, 1,
			0, -damping / mass,
		}),
		b: mat.NewVecDense(2, []float64{0, 1 / mass}),
		x: mat.NewVecDense(2, nil),
	}, nil
}

// SetForceLimit clamps the input force to [-limit, limit]. A zero limit
// leaves the input unclamped.
func (p *SecondOrder) SetForceLimit(limit float64) {
	p.forceLimit = math.Abs(limit)
}

// Reset places the plant at a known state.
func (p *SecondOrder) Reset(position units.Distance, velocity units.Velocity) {
	p.x.SetVec(0, position.Meters())
	p.x.SetVec(1, velocity.MetersPerSecond())
}

// Step advances the plant by dt under a constant force, integrating with
// classic fourth-order Runge-Kutta.
func (p *SecondOrder) Step(force float64, dt time.Duration) {
	u := force
	if p.forceLimit > 0 {
		u = math.Max(-p.forceLimit, math.Min(p.forceLimit, u))
	}
	h := dt.Seconds()

	xk := mat.NewVecDense(2, nil)
	k1 := p.deriv(p.x, u)
	xk.AddScaledVec(p.x, h/2, k1)
	k2 := p.deriv(xk, u)
	xk.AddScaledVec(p.x, h/2, k2)
	k3 := p.deriv(xk, u)
	xk.AddScaledVec(p.x, h, k3)
	k4 := p.deriv(xk, u)

	sum := mat.NewVecDense(2, nil)
	sum.AddVec(k1, k4)
	sum.AddScaledVec(sum, 2, k2)
	sum.AddScaledVec(sum, 2, k3)
	p.x.AddScaledVec(p.x, h/6, sum)
}

func (p *SecondOrder) deriv(x *mat.VecDense, u float64) *mat.VecDense {
	dx := mat.NewVecDense(2, nil)
	dx.MulVec(p.a, x)
	dx.AddScaledVec(dx, u, p.b)
	return dx
}

func (p *SecondOrder) Position() units.Distance {
	return units.Meters(p.x.AtVec(0))
}

func (p *SecondOrder) Velocity() units.Velocity {
	return units.MetersPerSecond(p.x.AtVec(1))
}
