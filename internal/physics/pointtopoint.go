package physics

import "github.com/go-gl/mathgl/mgl64"

// PointToPoint pins a local pivot on BodyA to a local pivot on BodyB.
type PointToPoint struct {
	BodyA, BodyB   *Body
	PivotA, PivotB mgl64.Vec3
	// MaxForce caps the force the joint may apply, in newtons; 0 means unlimited.
	MaxForce float64
	// Compliance is the inverse stiffness; 0 is rigid.
	Compliance float64

	lambda         float64
	worldA, worldB mgl64.Vec3
}

// NewPointToPoint returns a rigid point joint between a and b.
func NewPointToPoint(a *Body, pivotA mgl64.Vec3, b *Body, pivotB mgl64.Vec3, maxForce float64) *PointToPoint {
	c := &PointToPoint{
		BodyA:    a,
		BodyB:    b,
		PivotA:   pivotA,
		PivotB:   pivotB,
		MaxForce: maxForce,
	}
	c.Update()
	return c
}

func (c *PointToPoint) Bodies() (*Body, *Body) {
	return c.BodyA, c.BodyB
}

// Update recomputes the world pivots.
func (c *PointToPoint) Update() {
	c.worldA = c.BodyA.PointToWorld(c.PivotA)
	c.worldB = c.BodyB.PointToWorld(c.PivotB)
}

// WorldPivots returns the pivots in world space as of the last Update.
func (c *PointToPoint) WorldPivots() (mgl64.Vec3, mgl64.Vec3) {
	return c.worldA, c.worldB
}

// Error is the current distance between the two pivots.
func (c *PointToPoint) Error() float64 {
	return c.BodyB.PointToWorld(c.PivotB).Sub(c.BodyA.PointToWorld(c.PivotA)).Len()
}

func (c *PointToPoint) preStep() {
	c.lambda = 0
	c.Update()
}

// maxLambda converts MaxForce to a positional multiplier bound. A position multiplier relates to
// force as F = lambda / dt^2.
func (c *PointToPoint) maxLambda(dt float64) float64 {
	if c.MaxForce <= 0 {
		return 0
	}
	return c.MaxForce * dt * dt
}

func (c *PointToPoint) solvePosition(dt float64) {
	solvePositional(c.BodyA, c.BodyB,
		c.BodyA.PointToWorld(c.PivotA), c.BodyB.PointToWorld(c.PivotB),
		c.Compliance, dt, &c.lambda, c.maxLambda(dt))
}
