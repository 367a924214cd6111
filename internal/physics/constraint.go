package physics

import "github.com/go-gl/mathgl/mgl64"

// Constraint is a joint solved by the world every step.
type Constraint interface {
	// Bodies returns the two bodies the constraint joins.
	Bodies() (*Body, *Body)
	// Update recomputes cached world-space data after bodies were moved directly.
	Update()

	preStep()
	solvePosition(dt float64)
}

// solvePositional pulls world point pa (on a) and pb (on b) together. lambda accumulates the
// multiplier over the step; maxLambda > 0 caps its magnitude. Returns the applied delta.
func solvePositional(a, b *Body, pa, pb mgl64.Vec3, compliance, dt float64, lambda *float64, maxLambda float64) float64 {
	d := pb.Sub(pa)
	dist := d.Len()
	if dist < 1e-9 {
		return 0
	}
	n := d.Mul(1 / dist)
	ra := pa.Sub(a.Position)
	rb := pb.Sub(b.Position)
	w := a.generalizedInvMass(ra, n) + b.generalizedInvMass(rb, n)
	alpha := compliance / (dt * dt)
	if w+alpha == 0 {
		return 0
	}
	dl := (dist - alpha*(*lambda)) / (w + alpha)
	if maxLambda > 0 {
		next := mgl64.Clamp(*lambda+dl, -maxLambda, maxLambda)
		dl = next - *lambda
	}
	if dl == 0 {
		return 0
	}
	*lambda += dl
	p := n.Mul(dl)
	a.applyPositional(p, ra)
	b.applyPositional(p.Mul(-1), rb)
	return dl
}

// solveAngular rotates a by +angle and b by -angle about the unit axis n, split by inertia.
func solveAngular(a, b *Body, n mgl64.Vec3, angle float64) {
	w := a.angularInvMass(n) + b.angularInvMass(n)
	if w == 0 {
		return
	}
	l := n.Mul(angle / w)
	a.applyAngular(l)
	b.applyAngular(l.Mul(-1))
}
