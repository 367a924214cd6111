package physics

import (
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultIterations is the number of position passes per step.
const DefaultIterations = 20

// World holds bodies and constraints and advances them with a position-based solver:
// integrate, project constraints and contacts, then derive velocities.
type World struct {
	Gravity    mgl64.Vec3
	Iterations int

	bodies      []*Body
	constraints []Constraint
	materials   []ContactMaterial
	contacts    []*contact
	nextID      int
	time        float64
}

// NewWorld returns a new physics world with default gravity (0, -9.8, 0). Y is up.
func NewWorld() *World {
	return &World{
		Gravity:    mgl64.Vec3{0, -9.8, 0},
		Iterations: DefaultIterations,
	}
}

// SetGravity sets the gravity vector (e.g. (0, -9.8, 0) for down in -Y).
func (w *World) SetGravity(g mgl64.Vec3) {
	w.Gravity = g
}

// AddBody appends a body to the world and assigns its ID. Order is preserved.
func (w *World) AddBody(b *Body) {
	if slices.Contains(w.bodies, b) {
		return
	}
	b.ID = w.nextID
	w.nextID++
	b.prevPosition = b.Position
	b.prevQuaternion = b.Quaternion
	w.bodies = append(w.bodies, b)
}

// RemoveBody removes b. Constraints referencing it are left to the caller.
func (w *World) RemoveBody(b *Body) {
	w.bodies = slices.DeleteFunc(w.bodies, func(x *Body) bool { return x == b })
}

// Bodies returns the bodies in insertion order.
func (w *World) Bodies() []*Body {
	return w.bodies
}

// AddConstraint adds c. Adding the same constraint twice is a no-op.
func (w *World) AddConstraint(c Constraint) {
	if slices.Contains(w.constraints, c) {
		return
	}
	w.constraints = append(w.constraints, c)
}

// RemoveConstraint removes c if present.
func (w *World) RemoveConstraint(c Constraint) {
	w.constraints = slices.DeleteFunc(w.constraints, func(x Constraint) bool { return x == c })
}

// Constraints returns the live constraints.
func (w *World) Constraints() []Constraint {
	return w.constraints
}

// AddContactMaterial registers friction and restitution for a material pair. A later entry
// for the same pair replaces the earlier one.
func (w *World) AddContactMaterial(m ContactMaterial) {
	w.materials = slices.DeleteFunc(w.materials, func(x ContactMaterial) bool {
		return x.matches(m.MaterialA, m.MaterialB)
	})
	w.materials = append(w.materials, m)
}

func (w *World) contactMaterial(a, b *Body) ContactMaterial {
	for _, m := range w.materials {
		if m.matches(a.Material, b.Material) {
			return m
		}
	}
	return DefaultContactMaterial
}

// Time returns the simulated time in seconds.
func (w *World) Time() float64 {
	return w.time
}

// Step advances the simulation by exactly dt seconds. There is no sub-stepping.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	for _, c := range w.constraints {
		c.preStep()
	}
	for _, b := range w.bodies {
		b.integrate(dt, w.Gravity)
	}

	w.collectContacts()
	for _, c := range w.contacts {
		c.capturePreVelocity()
	}

	iterations := w.Iterations
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	for _i := 0; _i < iterations; _i++ {
		for _, c := range w.constraints {
			c.solvePosition(dt)
		}
		for _, c := range w.contacts {
			c.solvePosition(dt)
		}
	}

	for _, b := range w.bodies {
		b.updateVelocities(dt)
	}
	for _, c := range w.contacts {
		c.solveVelocity(dt, w.Gravity)
	}
	for _, c := range w.constraints {
		c.Update()
	}
	w.time += dt
}

// collectContacts finds touching shape pairs. Bodies joined by a constraint never collide.
func (w *World) collectContacts() {
	w.contacts = w.contacts[:0]
	joined := make(map[[2]*Body]bool, len(w.constraints))
	for _, c := range w.constraints {
		a, b := c.Bodies()
		joined[[2]*Body{a, b}] = true
		joined[[2]*Body{b, a}] = true
	}
	for i, a := range w.bodies {
		for _, b := range w.bodies[i+1:] {
			if !a.IsDynamic() && !b.IsDynamic() {
				continue
			}
			if !collides(a, b) || joined[[2]*Body{a, b}] {
				continue
			}
			w.contacts = findContacts(w.contacts, a, b, w.contactMaterial(a, b))
		}
	}
}
