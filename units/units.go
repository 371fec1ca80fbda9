// Package units provides typed physical quantities for linear motion.
//
// Each quantity is a distinct defined type over float64, so mixing
// dimensions (assigning a Velocity where a Distance is expected) fails to
// compile. The zero value of every quantity is the zero quantity.
package units

import (
	"fmt"
	"time"
)

// Distance is a linear displacement, stored in meters.
type Distance float64

// Velocity is a rate of change of Distance, stored in meters per second.
type Velocity float64

// Acceleration is a rate of change of Velocity, stored in meters per
// second squared.
type Acceleration float64

func Meters(m float64) Distance       { return Distance(m) }
func Centimeters(cm float64) Distance { return Distance(cm / 100) }
func Millimeters(mm float64) Distance { return Distance(mm / 1000) }

func MetersPerSecond(mps float64) Velocity { return Velocity(mps) }

func MetersPerSecondSquared(mps2 float64) Acceleration { return Acceleration(mps2) }

// Meters returns the distance as a bare float64 in meters.
func (d Distance) Meters() float64 { return float64(d) }

// Per divides the distance by a duration, producing the velocity that
// covers d in t.
func (d Distance) Per(t time.Duration) Velocity {
	return Velocity(float64(d) / t.Seconds())
}

func (d Distance) String() string { return fmt.Sprintf("%.3fm", float64(d)) }

// MetersPerSecond returns the velocity as a bare float64 in m/s.
func (v Velocity) MetersPerSecond() float64 { return float64(v) }

// Per divides the velocity by a duration, producing the acceleration that
// reaches v in t.
func (v Velocity) Per(t time.Duration) Acceleration {
	return Acceleration(float64(v) / t.Seconds())
}

// Over returns the distance covered when holding v for t.
func (v Velocity) Over(t time.Duration) Distance {
	return Distance(float64(v) * t.Seconds())
}

func (v Velocity) String() string { return fmt.Sprintf("%.3fm/s", float64(v)) }

// MetersPerSecondSquared returns the acceleration as a bare float64 in m/s².
func (a Acceleration) MetersPerSecondSquared() float64 { return float64(a) }

// Over returns the velocity gained when holding a for t.
func (a Acceleration) Over(t time.Duration) Velocity {
	return Velocity(float64(a) * t.Seconds())
}

func (a Acceleration) String() string { return fmt.Sprintf("%.3fm/s²", float64(a)) }
