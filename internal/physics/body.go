package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Default collision filter: every body is in group 1 and collides with everything.
const (
	DefaultCollisionGroup = 1
	DefaultCollisionMask  = -1
)

// DefaultDamping is the linear and angular damping applied when BodyOptions leaves them unset.
const DefaultDamping = 0.01

// Body is a 3D rigid body with position, orientation, velocities and attached shapes.
// Mass 0 makes the body static (or kinematic when moved directly): it is not integrated and
// constraints and contacts never move it.
type Body struct {
	ID   int
	Name string

	Position        mgl64.Vec3
	Quaternion      mgl64.Quat
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3

	LinearDamping  float64
	AngularDamping float64

	Shapes            []Shape
	ShapeOffsets      []mgl64.Vec3
	ShapeOrientations []mgl64.Quat

	// Material tags the body for contact material lookups.
	Material string

	CollisionGroup int
	CollisionMask  int

	mass       float64
	invMass    float64
	invInertia mgl64.Vec3 // local principal axes

	prevPosition   mgl64.Vec3
	prevQuaternion mgl64.Quat
}

// BodyOptions configures NewBody. Zero damping values fall back to DefaultDamping; use a
// negative value for no damping.
type BodyOptions struct {
	Name           string
	Mass           float64
	Position       mgl64.Vec3
	Quaternion     *mgl64.Quat
	LinearDamping  float64
	AngularDamping float64
	Material       string
	// Collision filter. Nil pointers mean the default group and mask.
	CollisionGroup *int
	CollisionMask  *int
}

// NewBody returns a body at rest. Mass below zero is treated as zero (static).
func NewBody(opts BodyOptions) *Body {
	b := &Body{
		Name:           opts.Name,
		Position:       opts.Position,
		Quaternion:     mgl64.QuatIdent(),
		LinearDamping:  damping(opts.LinearDamping),
		AngularDamping: damping(opts.AngularDamping),
		Material:       opts.Material,
		CollisionGroup: DefaultCollisionGroup,
		CollisionMask:  DefaultCollisionMask,
	}
	if opts.Quaternion != nil {
		b.Quaternion = opts.Quaternion.Normalize()
	}
	if opts.CollisionGroup != nil {
		b.CollisionGroup = *opts.CollisionGroup
	}
	if opts.CollisionMask != nil {
		b.CollisionMask = *opts.CollisionMask
	}
	b.SetMass(opts.Mass)
	return b
}

func damping(v float64) float64 {
	switch {
	case v == 0:
		return DefaultDamping
	case v < 0:
		return 0
	}
	return v
}

// Mass returns the body's mass; 0 means static.
func (b *Body) Mass() float64 {
	return b.mass
}

// SetMass changes the mass and recomputes inverse mass and inertia.
func (b *Body) SetMass(mass float64) {
	if mass < 0 {
		mass = 0
	}
	b.mass = mass
	b.invMass = 0
	if mass > 0 {
		b.invMass = 1 / mass
	}
	b.updateInertia()
}

// IsDynamic reports whether the body responds to gravity, constraints and contacts.
func (b *Body) IsDynamic() bool {
	return b.invMass > 0
}

// AddShape attaches a shape at a local offset and orientation and updates inertia.
func (b *Body) AddShape(s Shape, offset mgl64.Vec3, orientation mgl64.Quat) {
	b.Shapes = append(b.Shapes, s)
	b.ShapeOffsets = append(b.ShapeOffsets, offset)
	b.ShapeOrientations = append(b.ShapeOrientations, orientation.Normalize())
	b.updateInertia()
}

// updateInertia uses the box inertia of the local AABB enclosing every shape.
func (b *Body) updateInertia() {
	b.invInertia = mgl64.Vec3{}
	if b.mass == 0 || len(b.Shapes) == 0 {
		return
	}
	var lo, hi mgl64.Vec3
	first := true
	for i, s := range b.Shapes {
		h := s.boundingHalfExtents()
		if h == (mgl64.Vec3{}) {
			continue
		}
		o := b.ShapeOffsets[i]
		for k := 0; k < 3; k++ {
			if first || o[k]-h[k] < lo[k] {
				lo[k] = o[k] - h[k]
			}
			if first || o[k]+h[k] > hi[k] {
				hi[k] = o[k] + h[k]
			}
		}
		first = false
	}
	if first {
		return
	}
	e := hi.Sub(lo).Mul(0.5)
	inertia := mgl64.Vec3{
		b.mass / 3 * (e[1]*e[1] + e[2]*e[2]),
		b.mass / 3 * (e[0]*e[0] + e[2]*e[2]),
		b.mass / 3 * (e[0]*e[0] + e[1]*e[1]),
	}
	for k := 0; k < 3; k++ {
		if inertia[k] > 0 {
			b.invInertia[k] = 1 / inertia[k]
		}
	}
}

// InvInertiaWorld returns R * I^-1 * R^T for the current orientation.
func (b *Body) InvInertiaWorld() mgl64.Mat3 {
	if !b.IsDynamic() {
		return mgl64.Mat3{}
	}
	r := b.Quaternion.Mat4().Mat3()
	return r.Mul3(mgl64.Diag3(b.invInertia)).Mul3(r.Transpose())
}

// PointToWorld converts a point in the body frame to world coordinates.
func (b *Body) PointToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return b.Position.Add(b.Quaternion.Rotate(local))
}

// PointToLocal converts a world point to the body frame.
func (b *Body) PointToLocal(world mgl64.Vec3) mgl64.Vec3 {
	return b.Quaternion.Conjugate().Rotate(world.Sub(b.Position))
}

// SetPosition teleports the body. Velocity is kept.
func (b *Body) SetPosition(p mgl64.Vec3) {
	b.Position = p
	b.prevPosition = p
}

// SetOrientation sets the orientation directly (used for kinematic head tracking and the
// debug rotation slider).
func (b *Body) SetOrientation(q mgl64.Quat) {
	b.Quaternion = q.Normalize()
	b.prevQuaternion = b.Quaternion
}

// Translate moves the body by delta.
func (b *Body) Translate(delta mgl64.Vec3) {
	b.SetPosition(b.Position.Add(delta))
}

// generalizedInvMass is the inverse mass seen by a positional correction along n applied at
// world offset r from the center of mass.
func (b *Body) generalizedInvMass(r, n mgl64.Vec3) float64 {
	if !b.IsDynamic() {
		return 0
	}
	rn := r.Cross(n)
	return b.invMass + rn.Dot(b.InvInertiaWorld().Mul3x1(rn))
}

// angularInvMass is the inverse inertia about world axis n.
func (b *Body) angularInvMass(n mgl64.Vec3) float64 {
	if !b.IsDynamic() {
		return 0
	}
	return n.Dot(b.InvInertiaWorld().Mul3x1(n))
}

// applyPositional moves the body by the positional impulse p applied at world offset r.
func (b *Body) applyPositional(p, r mgl64.Vec3) {
	if !b.IsDynamic() {
		return
	}
	b.Position = b.Position.Add(p.Mul(b.invMass))
	b.rotate(b.InvInertiaWorld().Mul3x1(r.Cross(p)))
}

// applyAngular rotates the body by the angular impulse l.
func (b *Body) applyAngular(l mgl64.Vec3) {
	if !b.IsDynamic() {
		return
	}
	b.rotate(b.InvInertiaWorld().Mul3x1(l))
}

// rotate applies a small rotation vector to the orientation.
func (b *Body) rotate(dtheta mgl64.Vec3) {
	if dtheta.Len() < 1e-12 {
		return
	}
	dq := mgl64.Quat{W: 0, V: dtheta}.Mul(b.Quaternion).Scale(0.5)
	b.Quaternion = b.Quaternion.Add(dq).Normalize()
}

// integrate advances a dynamic body by dt: gravity, damping, then position and orientation.
func (b *Body) integrate(dt float64, gravity mgl64.Vec3) {
	b.prevPosition = b.Position
	b.prevQuaternion = b.Quaternion
	if !b.IsDynamic() {
		return
	}
	b.Velocity = b.Velocity.Add(gravity.Mul(dt))
	b.Velocity = b.Velocity.Mul(math.Pow(1-b.LinearDamping, dt))
	b.AngularVelocity = b.AngularVelocity.Mul(math.Pow(1-b.AngularDamping, dt))
	b.Position = b.Position.Add(b.Velocity.Mul(dt))
	b.rotate(b.AngularVelocity.Mul(dt))
}

// updateVelocities derives velocities from the positional change of this step.
func (b *Body) updateVelocities(dt float64) {
	if !b.IsDynamic() {
		return
	}
	b.Velocity = b.Position.Sub(b.prevPosition).Mul(1 / dt)
	dq := b.Quaternion.Mul(b.prevQuaternion.Conjugate())
	if dq.W >= 0 {
		b.AngularVelocity = dq.V.Mul(2 / dt)
	} else {
		b.AngularVelocity = dq.V.Mul(-2 / dt)
	}
}

// collides reports whether the collision filters of a and b allow contact.
func collides(a, b *Body) bool {
	return a.CollisionGroup&b.CollisionMask != 0 && b.CollisionGroup&a.CollisionMask != 0
}
