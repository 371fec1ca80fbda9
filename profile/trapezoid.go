// Package profile plans velocity-constrained motion between two kinematic
// states. A Trapezoid profile accelerates at a fixed rate, cruises at the
// velocity ceiling, and brakes so that position and velocity land on the
// goal together.
package profile

import (
	"math"
	"time"

	"github.com/servokit/servokit/units"
)

// State is a point on a motion profile.
type State struct {
	Position units.Distance `json:"position" yaml:"position"`
	Velocity units.Velocity `json:"velocity" yaml:"velocity"`
}

// Constraints bound how fast a profile may move and how fast it may change
// speed. Both limits must be positive.
type Constraints struct {
	MaxVelocity     units.Velocity
	MaxAcceleration units.Acceleration
}

// Trapezoid generates motion profiles under a fixed set of constraints.
// The profile is stateless. Step replans from the current state every call,
// so callers may move the goal between steps.
type Trapezoid struct {
	Constraints Constraints
}

func NewTrapezoid(c Constraints) Trapezoid {
	return Trapezoid{Constraints: c}
}

// kin is a profile state in the planning frame, where the goal always lies
// at or ahead of the current position.
type kin struct {
	pos, vel float64
}

type plan struct {
	maxV, maxA                    float64
	endAccel, endCruise, endBrake float64
}

// Step advances from current toward goal by dt and returns the state the
// mechanism should be at after that interval. Once the goal is reachable
// within dt the returned state is exactly the goal, and further steps hold
// it there.
func (p Trapezoid) Step(dt time.Duration, current, goal State) State {
	flip := current.Position > goal.Position
	cur := toKin(current, flip)
	end := toKin(goal, flip)

	if cur.vel > p.Constraints.MaxVelocity.MetersPerSecond() {
		cur.vel = p.Constraints.MaxVelocity.MetersPerSecond()
	}

	pl := p.plan(cur, end)
	t := dt.Seconds()

	next := cur
	switch {
	case t < pl.endAccel:
		next.vel += t * pl.maxA
		next.pos += (cur.vel + t*pl.maxA/2) * t
	case t < pl.endCruise:
		next.vel = pl.maxV
		next.pos += (cur.vel+pl.endAccel*pl.maxA/2)*pl.endAccel + pl.maxV*(t-pl.endAccel)
	case t <= pl.endBrake:
		left := pl.endBrake - t
		next.vel = end.vel + left*pl.maxA
		next.pos = end.pos - (end.vel+left*pl.maxA/2)*left
	default:
		next = end
	}

	return fromKin(next, flip)
}

// TotalTime returns how long the profile from current to goal takes under
// the constraints.
func (p Trapezoid) TotalTime(current, goal State) time.Duration {
	flip := current.Position > goal.Position
	cur := toKin(current, flip)
	end := toKin(goal, flip)

	if cur.vel > p.Constraints.MaxVelocity.MetersPerSecond() {
		cur.vel = p.Constraints.MaxVelocity.MetersPerSecond()
	}

	pl := p.plan(cur, end)
	return time.Duration(pl.endBrake * float64(time.Second))
}

// plan lays out the acceleration, cruise, and brake phases in the planning
// frame. The profile is extended to rest at both ends, planned as one
// rest-to-rest trapezoid, and the lead-in and lead-out are cut off again,
// which handles nonzero velocity at either endpoint.
func (p Trapezoid) plan(cur, end kin) plan {
	maxV := p.Constraints.MaxVelocity.MetersPerSecond()
	maxA := p.Constraints.MaxAcceleration.MetersPerSecondSquared()

	leadIn := cur.vel / maxA
	leadInDist := leadIn * leadIn * maxA / 2
	leadOut := end.vel / maxA
	leadOutDist := leadOut * leadOut * maxA / 2

	fullDist := leadInDist + (end.pos - cur.pos) + leadOutDist
	accelTime := maxV / maxA
	cruiseDist := fullDist - accelTime*accelTime*maxA

	// A short move never reaches the velocity ceiling and degenerates to a
	// triangle.
	if cruiseDist < 0 {
		accelTime = math.Sqrt(fullDist / maxA)
		cruiseDist = 0
	}

	endAccel := accelTime - leadIn
	endCruise := endAccel + cruiseDist/maxV
	endBrake := endCruise + accelTime - leadOut

	return plan{
		maxV:      maxV,
		maxA:      maxA,
		endAccel:  endAccel,
		endCruise: endCruise,
		endBrake:  endBrake,
	}
}

func toKin(s State, flip bool) kin {
	k := kin{pos: s.Position.Meters(), vel: s.Velocity.MetersPerSecond()}
	if flip {
		k.pos, k.vel = -k.pos, -k.vel
	}
	return k
}

func fromKin(k kin, flip bool) State {
	if flip {
		k.pos, k.vel = -k.pos, -k.vel
	}
	return State{
		Position: units.Meters(k.pos),
		Velocity: units.MetersPerSecond(k.vel),
	}
}
