package joints

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"ragdoll-rig/internal/physics"
)

// PointerCompliance softens pointer constraints so a target far from its body pulls instead of
// snapping the chain.
const PointerCompliance = 1e-4

// jointBodyRadius is the radius of the synthetic target sphere.
const jointBodyRadius = 0.1

type entry struct {
	constraint physics.Constraint
	// joint is the synthetic target body of a pointer constraint; nil for body-to-body joints.
	joint *physics.Body
}

// Manager is the registry of a world's named joints. At most one constraint is live per key.
type Manager struct {
	world   *physics.World
	entries map[Key]*entry
}

// NewManager returns an empty registry adding constraints to world.
func NewManager(world *physics.World) *Manager {
	return &Manager{world: world, entries: make(map[Key]*entry)}
}

// AddPointerConstraintToBody pins body to a new massless, collision-free target body placed at
// the body's position. Moving the target with MoveJointToPoint drags the body.
func (m *Manager) AddPointerConstraintToBody(key Key, body *physics.Body, maxForce float64) *physics.PointToPoint {
	m.RemoveJointConstraint(key)
	zero := 0
	joint := physics.NewBody(physics.BodyOptions{
		Name:           key.String(),
		Mass:           0,
		Position:       body.Position,
		CollisionGroup: &zero,
		CollisionMask:  &zero,
	})
	joint.AddShape(physics.Sphere(jointBodyRadius), mgl64.Vec3{}, mgl64.QuatIdent())
	m.world.AddBody(joint)

	c := physics.NewPointToPoint(body, mgl64.Vec3{}, joint, mgl64.Vec3{}, maxForce)
	c.Compliance = PointerCompliance
	m.world.AddConstraint(c)
	m.entries[key] = &entry{constraint: c, joint: joint}
	return c
}

// AddConstraintToBody pins two real bodies together at their centers.
func (m *Manager) AddConstraintToBody(key Key, a, b *physics.Body, maxForce float64) *physics.PointToPoint {
	m.RemoveJointConstraint(key)
	c := physics.NewPointToPoint(a, mgl64.Vec3{}, b, mgl64.Vec3{}, maxForce)
	m.world.AddConstraint(c)
	m.entries[key] = &entry{constraint: c}
	return c
}

// AddConeTwistConstraint joins a and b at local pivots. A zero Angle or TwistAngle means π.
func (m *Manager) AddConeTwistConstraint(key Key, a, b *physics.Body, opts physics.ConeTwistOptions) *physics.ConeTwist {
	m.RemoveJointConstraint(key)
	if opts.Angle == 0 {
		opts.Angle = math.Pi
	}
	if opts.TwistAngle == 0 {
		opts.TwistAngle = math.Pi
	}
	c := physics.NewConeTwist(a, b, opts)
	m.world.AddConstraint(c)
	m.entries[key] = &entry{constraint: c}
	return c
}

// MoveJointToPoint moves the target of the named joint to p and refreshes the constraint.
// For body-to-body joints the second body is moved. Unknown keys are ignored.
func (m *Manager) MoveJointToPoint(key Key, p mgl64.Vec3) {
	e, ok := m.entries[key]
	if !ok {
		return
	}
	if e.joint != nil {
		e.joint.SetPosition(p)
	} else {
		_, b := e.constraint.Bodies()
		b.SetPosition(p)
	}
	e.constraint.Update()
}

// RemoveJointConstraint removes the named constraint and its target body from the world.
// Unknown keys are ignored.
func (m *Manager) RemoveJointConstraint(key Key) {
	e, ok := m.entries[key]
	if !ok {
		return
	}
	m.world.RemoveConstraint(e.constraint)
	if e.joint != nil {
		m.world.RemoveBody(e.joint)
	}
	delete(m.entries, key)
}

// Constraint returns the live constraint for key, or nil.
func (m *Manager) Constraint(key Key) physics.Constraint {
	if e, ok := m.entries[key]; ok {
		return e.constraint
	}
	return nil
}

// Has reports whether a constraint is live under key.
func (m *Manager) Has(key Key) bool {
	_, ok := m.entries[key]
	return ok
}

// JointBody returns the target body of a pointer joint, or nil.
func (m *Manager) JointBody(key Key) *physics.Body {
	if e, ok := m.entries[key]; ok {
		return e.joint
	}
	return nil
}

// Refresh recomputes the cached pivots of the named constraint after its bodies were moved directly.
func (m *Manager) Refresh(key Key) {
	if e, ok := m.entries[key]; ok {
		e.constraint.Update()
	}
}

// Len returns the number of live constraints.
func (m *Manager) Len() int {
	return len(m.entries)
}
