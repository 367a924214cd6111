package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ConeTwistOptions describes a cone-twist joint. A zero axis on either side disables the
// swing and twist limits, leaving a plain point joint.
type ConeTwistOptions struct {
	PivotA, PivotB mgl64.Vec3
	AxisA, AxisB   mgl64.Vec3
	// Angle is the swing cone half angle and TwistAngle the roll limit, both in radians.
	Angle      float64
	TwistAngle float64
	MaxForce   float64
}

// ConeTwist is a point joint with a swing cone and a twist limit about the joint axis.
type ConeTwist struct {
	PointToPoint
	AxisA, AxisB mgl64.Vec3
	Angle        float64
	TwistAngle   float64

	// twist reference vectors, perpendicular to the axes, equal in world space at creation
	perpA, perpB mgl64.Vec3
}

// NewConeTwist joins a and b with swing and twist limits.
func NewConeTwist(a, b *Body, opts ConeTwistOptions) *ConeTwist {
	c := &ConeTwist{
		PointToPoint: PointToPoint{
			BodyA:    a,
			BodyB:    b,
			PivotA:   opts.PivotA,
			PivotB:   opts.PivotB,
			MaxForce: opts.MaxForce,
		},
		AxisA:      opts.AxisA,
		AxisB:      opts.AxisB,
		Angle:      opts.Angle,
		TwistAngle: opts.TwistAngle,
	}
	if c.limited() {
		c.AxisA = c.AxisA.Normalize()
		c.AxisB = c.AxisB.Normalize()
		c.perpA = perpendicular(c.AxisA)
		c.perpB = b.Quaternion.Conjugate().Rotate(a.Quaternion.Rotate(c.perpA))
	}
	c.Update()
	return c
}

func (c *ConeTwist) limited() bool {
	return c.AxisA.Len() > 1e-9 && c.AxisB.Len() > 1e-9
}

func (c *ConeTwist) solvePosition(dt float64) {
	c.PointToPoint.solvePosition(dt)
	if !c.limited() {
		return
	}
	c.solveSwing()
	c.solveTwist()
}

func (c *ConeTwist) solveSwing() {
	a := c.BodyA.Quaternion.Rotate(c.AxisA)
	b := c.BodyB.Quaternion.Rotate(c.AxisB)
	phi := math.Acos(mgl64.Clamp(a.Dot(b), -1, 1))
	if phi <= c.Angle {
		return
	}
	n := a.Cross(b)
	if n.Len() < 1e-9 {
		return
	}
	solveAngular(c.BodyA, c.BodyB, n.Normalize(), phi-c.Angle)
}

func (c *ConeTwist) solveTwist() {
	a := c.BodyA.Quaternion.Rotate(c.AxisA)
	b := c.BodyB.Quaternion.Rotate(c.AxisB)
	n := a.Add(b)
	if n.Len() < 1e-9 {
		return
	}
	n = n.Normalize()
	a1 := project(c.BodyA.Quaternion.Rotate(c.perpA), n)
	b1 := project(c.BodyB.Quaternion.Rotate(c.perpB), n)
	if a1.Len() < 1e-9 || b1.Len() < 1e-9 {
		return
	}
	a1, b1 = a1.Normalize(), b1.Normalize()
	theta := math.Atan2(a1.Cross(b1).Dot(n), a1.Dot(b1))
	if math.Abs(theta) <= c.TwistAngle {
		return
	}
	limit := c.TwistAngle
	if theta < 0 {
		limit = -limit
	}
	solveAngular(c.BodyA, c.BodyB, n, theta-limit)
}

// TwistAngleNow returns the current twist between the bodies about the joint axis in radians.
func (c *ConeTwist) TwistAngleNow() float64 {
	if !c.limited() {
		return 0
	}
	a := c.BodyA.Quaternion.Rotate(c.AxisA)
	b := c.BodyB.Quaternion.Rotate(c.AxisB)
	n := a.Add(b)
	if n.Len() < 1e-9 {
		return 0
	}
	n = n.Normalize()
	a1 := project(c.BodyA.Quaternion.Rotate(c.perpA), n)
	b1 := project(c.BodyB.Quaternion.Rotate(c.perpB), n)
	return math.Atan2(a1.Cross(b1).Dot(n), a1.Dot(b1))
}

// project removes the component of v along unit n.
func project(v, n mgl64.Vec3) mgl64.Vec3 {
	return v.Sub(n.Mul(v.Dot(n)))
}

// perpendicular returns a unit vector perpendicular to unit v.
func perpendicular(v mgl64.Vec3) mgl64.Vec3 {
	ref := mgl64.Vec3{1, 0, 0}
	if math.Abs(v.X()) > 0.9 {
		ref = mgl64.Vec3{0, 1, 0}
	}
	return v.Cross(ref).Normalize()
}
