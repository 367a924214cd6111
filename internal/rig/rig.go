package rig

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"ragdoll-rig/internal/joints"
	"ragdoll-rig/internal/physics"
)

// ErrInvalidScale is returned by Build for a scale that is not positive.
var ErrInvalidScale = errors.New("rig: scale must be > 0")

// Material is the contact material tag of every rig body.
const Material = "rig"

// Config describes one rig to build.
type Config struct {
	// ID numbers the rig from 1; joint keys of the rig use it.
	ID     int
	Anchor mgl64.Vec3
	Scale  float64
	// Color is a 0xRRGGBB tint for the rig's visuals.
	Color uint32
	// Kinematic pins the lower legs (mass 0).
	Kinematic bool
}

// Rig is a built ragdoll. Bodies belong to the world; the rig only references them.
type Rig struct {
	cfg         Config
	dims        Dimensions
	bodies      [partCount]*physics.Body
	headInitial mgl64.Vec3
}

// Build creates the bodies of a rig in world, joins them with cone-twist joints registered in
// m under the rig's ID and translates the whole rig to cfg.Anchor.
func Build(world *physics.World, m *joints.Manager, cfg Config) (*Rig, error) {
	if !(cfg.Scale > 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidScale, cfg.Scale)
	}
	if cfg.ID <= 0 {
		cfg.ID = 1
	}
	r := &Rig{cfg: cfg, dims: DimensionsFor(cfg.Scale)}
	d := r.dims

	legMass := 1.0
	if cfg.Kinematic {
		legMass = 0
	}

	// Legs bottom-up, then pelvis, torso and head.
	lowerLeg := physics.Box(mgl64.Vec3{d.LowerLegSize / 2, d.LowerLegLength / 2, d.LowerArmSize / 2})
	r.add(world, LowerLeftLeg, legMass, mgl64.Vec3{-d.ShouldersDistance / 2, d.LowerLegLength / 2, 0}, lowerLeg)
	r.add(world, LowerRightLeg, legMass, mgl64.Vec3{d.ShouldersDistance / 2, d.LowerLegLength / 2, 0}, lowerLeg)

	upperLeg := physics.Box(mgl64.Vec3{d.UpperLegSize / 2, d.UpperLegLength / 2, d.LowerArmSize / 2})
	upperLegY := d.LowerLegLength + d.UpperLegLength/2
	r.add(world, UpperLeftLeg, 1, mgl64.Vec3{-d.ShouldersDistance / 2, upperLegY, 0}, upperLeg)
	r.add(world, UpperRightLeg, 1, mgl64.Vec3{d.ShouldersDistance / 2, upperLegY, 0}, upperLeg)

	pelvisY := upperLegY + d.UpperLegLength/2 + d.PelvisLength/2
	r.add(world, Pelvis, 1, mgl64.Vec3{0, pelvisY, 0},
		physics.Box(mgl64.Vec3{d.ShouldersDistance / 2, d.PelvisLength / 2, d.LowerArmSize / 2}))

	upperBodyY := pelvisY + d.PelvisLength/2 + d.UpperBodyLength/2
	r.add(world, UpperBody, 1, mgl64.Vec3{0, upperBodyY, 0},
		physics.Box(mgl64.Vec3{d.ShouldersDistance / 2, d.UpperBodyLength / 2, d.LowerArmSize / 2}))

	headY := upperBodyY + d.UpperBodyLength/2 + d.HeadRadius + d.NeckLength
	r.add(world, Head, 1, mgl64.Vec3{0, headY, 0}, physics.Sphere(d.HeadRadius))

	// Arms outward from the shoulders, hands at the ends.
	shoulderY := upperBodyY + d.UpperBodyLength/2
	upperArm := physics.Box(mgl64.Vec3{d.UpperArmLength / 2, d.UpperArmSize / 2, d.UpperArmSize / 2})
	upperArmX := d.ShouldersDistance/2 + d.UpperArmLength/2
	r.add(world, UpperLeftArm, 1, mgl64.Vec3{-upperArmX, shoulderY, 0}, upperArm)
	r.add(world, UpperRightArm, 1, mgl64.Vec3{upperArmX, shoulderY, 0}, upperArm)

	lowerArm := physics.Box(mgl64.Vec3{d.LowerArmLength / 2, d.LowerArmSize / 2, d.LowerArmSize / 2})
	lowerArmX := upperArmX + d.LowerArmLength/2 + d.UpperArmLength/2
	r.add(world, LowerLeftArm, 1, mgl64.Vec3{-lowerArmX, shoulderY, 0}, lowerArm)
	r.add(world, LowerRightArm, 1, mgl64.Vec3{lowerArmX, shoulderY, 0}, lowerArm)

	handX := lowerArmX + d.LowerArmLength/2 + d.HandRadius
	r.add(world, LeftHand, 1, mgl64.Vec3{-handX, shoulderY, 0}, physics.Sphere(d.HandRadius))
	r.add(world, RightHand, 1, mgl64.Vec3{handX, shoulderY, 0}, physics.Sphere(d.HandRadius))

	r.addJoints(m)

	for _, b := range r.bodies {
		b.Translate(cfg.Anchor)
	}
	for p := range skeleton {
		m.Refresh(r.JointKey(p))
	}
	r.headInitial = r.bodies[Head].Position
	return r, nil
}

func (r *Rig) add(world *physics.World, p Part, mass float64, pos mgl64.Vec3, shape physics.Shape) {
	b := physics.NewBody(physics.BodyOptions{
		Name:     r.key(p),
		Mass:     mass,
		Position: pos,
		Material: Material,
	})
	b.AddShape(shape, mgl64.Vec3{}, mgl64.QuatIdent())
	world.AddBody(b)
	r.bodies[p] = b
}

func (r *Rig) key(p Part) string {
	if r.cfg.ID <= 1 {
		return p.String()
	}
	return fmt.Sprintf("%s%d", p, r.cfg.ID)
}

func (r *Rig) addJoints(m *joints.Manager) {
	d := r.dims
	// child names the joint through the skeleton table.
	joint := func(child, a, b Part, opts physics.ConeTwistOptions) {
		m.AddConeTwistConstraint(r.JointKey(child), r.bodies[a], r.bodies[b], opts)
	}

	joint(Head, Head, UpperBody, physics.ConeTwistOptions{
		PivotA: mgl64.Vec3{0, -d.HeadRadius - d.NeckLength/2, 0},
		PivotB: mgl64.Vec3{0, d.UpperBodyLength / 2, 0},
	})
	for _, side := range []struct {
		lower, upper Part
		sign         float64
	}{{LowerLeftLeg, UpperLeftLeg, -1}, {LowerRightLeg, UpperRightLeg, 1}} {
		joint(side.lower, side.lower, side.upper, physics.ConeTwistOptions{
			PivotA: mgl64.Vec3{0, d.LowerLegLength / 2, 0},
			PivotB: mgl64.Vec3{0, -d.UpperLegLength / 2, 0},
		})
		joint(side.upper, side.upper, Pelvis, physics.ConeTwistOptions{
			PivotA: mgl64.Vec3{0, d.UpperLegLength / 2, 0},
			PivotB: mgl64.Vec3{side.sign * d.ShouldersDistance / 2, -d.PelvisLength / 2, 0},
		})
	}
	joint(UpperBody, Pelvis, UpperBody, physics.ConeTwistOptions{
		PivotA:     mgl64.Vec3{0, d.PelvisLength / 2, 0},
		PivotB:     mgl64.Vec3{0, -d.UpperBodyLength / 2, 0},
		AxisA:      mgl64.Vec3{0, 1, 0},
		AxisB:      mgl64.Vec3{0, 1, 0},
		Angle:      math.Pi,
		TwistAngle: math.Pi / 3,
	})

	la, lb := r.LeftShoulderPivots()
	ra, rb := r.RightShoulderPivots()
	shoulder := func(arm Part, pa, pb mgl64.Vec3) {
		joint(arm, UpperBody, arm, physics.ConeTwistOptions{
			PivotA:     pa,
			PivotB:     pb,
			AxisA:      mgl64.Vec3{1, 0, 0},
			AxisB:      mgl64.Vec3{1, 0, 0},
			Angle:      math.Pi,
			TwistAngle: math.Pi,
		})
	}
	shoulder(UpperLeftArm, la, lb)
	shoulder(UpperRightArm, ra, rb)

	joint(LowerLeftArm, LowerLeftArm, UpperLeftArm, physics.ConeTwistOptions{
		PivotA: mgl64.Vec3{d.LowerArmLength / 2, 0, 0},
		PivotB: mgl64.Vec3{-d.UpperArmLength / 2, 0, 0},
	})
	joint(LowerRightArm, LowerRightArm, UpperRightArm, physics.ConeTwistOptions{
		PivotA: mgl64.Vec3{-d.LowerArmLength / 2, 0, 0},
		PivotB: mgl64.Vec3{d.UpperArmLength / 2, 0, 0},
	})
	joint(LeftHand, LeftHand, LowerLeftArm, physics.ConeTwistOptions{
		PivotA: mgl64.Vec3{d.HandRadius, 0, 0},
		PivotB: mgl64.Vec3{-d.LowerArmLength / 2, 0, 0},
	})
	joint(RightHand, RightHand, LowerRightArm, physics.ConeTwistOptions{
		PivotA: mgl64.Vec3{-d.HandRadius, 0, 0},
		PivotB: mgl64.Vec3{d.LowerArmLength / 2, 0, 0},
	})
}

// LeftShoulderPivots returns the left shoulder pivots on the upper body and the upper arm.
func (r *Rig) LeftShoulderPivots() (mgl64.Vec3, mgl64.Vec3) {
	d := r.dims
	return mgl64.Vec3{-d.ShouldersDistance / 2, d.UpperBodyLength / 2, 0}, mgl64.Vec3{d.UpperArmLength / 2, 0, 0}
}

// RightShoulderPivots returns the right shoulder pivots on the upper body and the upper arm.
func (r *Rig) RightShoulderPivots() (mgl64.Vec3, mgl64.Vec3) {
	d := r.dims
	return mgl64.Vec3{d.ShouldersDistance / 2, d.UpperBodyLength / 2, 0}, mgl64.Vec3{-d.UpperArmLength / 2, 0, 0}
}

// ID returns the rig number used in joint keys.
func (r *Rig) ID() int { return r.cfg.ID }

// Config returns the configuration the rig was built with.
func (r *Rig) Config() Config { return r.cfg }

// Scale returns the rig's scale factor.
func (r *Rig) Scale() float64 { return r.cfg.Scale }

// Dimensions returns the scaled segment sizes.
func (r *Rig) Dimensions() Dimensions { return r.dims }

// Body returns the body of part p.
func (r *Rig) Body(p Part) *physics.Body {
	if p < 0 || p >= partCount {
		return nil
	}
	return r.bodies[p]
}

// Bodies returns the rig's bodies in construction order.
func (r *Rig) Bodies() []*physics.Body {
	out := make([]*physics.Body, len(r.bodies))
	copy(out, r.bodies[:])
	return out
}

// Parent returns the parent of p in the skeleton. The pelvis has none.
func (r *Rig) Parent(p Part) (Part, bool) {
	s, ok := skeleton[p]
	return s.parent, ok
}

// JointKey returns the key of the joint connecting p to its parent.
func (r *Rig) JointKey(p Part) joints.Key {
	return joints.K(r.cfg.ID, skeleton[p].joint)
}

// Key returns the key of a named joint of this rig.
func (r *Rig) Key(name joints.Name) joints.Key {
	return joints.K(r.cfg.ID, name)
}

// HeadInitialPosition is the head position right after construction.
func (r *Rig) HeadInitialPosition() mgl64.Vec3 { return r.headInitial }

// UpperBodyOrientation returns the torso orientation.
func (r *Rig) UpperBodyOrientation() mgl64.Quat { return r.bodies[UpperBody].Quaternion }

// PelvisOrientation returns the pelvis orientation.
func (r *Rig) PelvisOrientation() mgl64.Quat { return r.bodies[Pelvis].Quaternion }

// PelvisPosition returns the pelvis position.
func (r *Rig) PelvisPosition() mgl64.Vec3 { return r.bodies[Pelvis].Position }

// MoveBy teleports every body of the rig by delta. Joint caches are not refreshed here; the
// world does it on the next step.
func (r *Rig) MoveBy(delta mgl64.Vec3) {
	for _, b := range r.bodies {
		b.Translate(delta)
	}
}

// DrivenBody returns the body a pointer joint of this name pulls.
func (r *Rig) DrivenBody(name joints.Name) (*physics.Body, bool) {
	p, ok := driven[name]
	if !ok {
		return nil, false
	}
	return r.bodies[p], true
}
