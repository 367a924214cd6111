package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ContactMaterial sets friction and restitution for contacts between two material tags.
// The pair is unordered.
type ContactMaterial struct {
	MaterialA   string
	MaterialB   string
	Friction    float64
	Restitution float64
}

// DefaultContactMaterial applies when no registered material matches a pair.
var DefaultContactMaterial = ContactMaterial{Friction: 0.3, Restitution: 0.3}

func (m ContactMaterial) matches(a, b string) bool {
	return (m.MaterialA == a && m.MaterialB == b) || (m.MaterialA == b && m.MaterialB == a)
}

// contactMargin keeps near-touching features in the contact set for the whole step.
const contactMargin = 0.02

type contactKind int

const (
	contactPlane contactKind = iota
	contactSpheres
)

// contact is a candidate touching pair found after integration. Geometry is recomputed from
// the stored local features on every solver iteration.
type contact struct {
	kind contactKind
	a, b *Body

	// plane: a owns the plane, localB is the touching point on b.
	planeOffset      mgl64.Vec3
	planeOrientation mgl64.Quat
	localB           mgl64.Vec3

	// spheres: local centers and radii.
	centerA, centerB mgl64.Vec3
	radiusA, radiusB float64

	material ContactMaterial
	lambda   float64
	normal   mgl64.Vec3
	vnPre    float64
	active   bool
}

// geometry returns the touching points on a and b, the normal from a to b and the depth.
func (c *contact) geometry() (pa, pb, n mgl64.Vec3, depth float64) {
	switch c.kind {
	case contactPlane:
		p0 := c.a.PointToWorld(c.planeOffset)
		n = c.a.Quaternion.Mul(c.planeOrientation).Rotate(mgl64.Vec3{0, 0, 1})
		x := c.b.PointToWorld(c.localB)
		depth = p0.Sub(x).Dot(n)
		return x.Add(n.Mul(depth)), x, n, depth
	default:
		ca := c.a.PointToWorld(c.centerA)
		cb := c.b.PointToWorld(c.centerB)
		d := cb.Sub(ca)
		dist := d.Len()
		n = mgl64.Vec3{0, 1, 0}
		if dist > 1e-9 {
			n = d.Mul(1 / dist)
		}
		depth = c.radiusA + c.radiusB - dist
		return ca.Add(n.Mul(c.radiusA)), cb.Sub(n.Mul(c.radiusB)), n, depth
	}
}

func (c *contact) solvePosition(dt float64) {
	pa, pb, n, depth := c.geometry()
	if depth <= 0 {
		return
	}
	c.active = true
	c.normal = n
	solvePositional(c.a, c.b, pa, pb, 0, dt, &c.lambda, 0)
}

// solveVelocity applies restitution and friction to the linear velocities.
func (c *contact) solveVelocity(dt float64, gravity mgl64.Vec3) {
	if !c.active {
		return
	}
	wa, wb := c.a.invMass, c.b.invMass
	if wa+wb == 0 {
		return
	}
	n := c.normal
	vrel := c.b.Velocity.Sub(c.a.Velocity)
	vn := vrel.Dot(n)
	vt := vrel.Sub(n.Mul(vn))

	var dv mgl64.Vec3
	if vtLen := vt.Len(); vtLen > 1e-9 {
		f := math.Min(c.material.Friction*math.Abs(c.lambda)/dt, vtLen)
		dv = dv.Sub(vt.Mul(f / vtLen))
	}
	e := c.material.Restitution
	if math.Abs(c.vnPre) <= 2*gravity.Len()*dt {
		e = 0
	}
	target := math.Max(-e*c.vnPre, 0)
	dv = dv.Add(n.Mul(target - vn))

	p := dv.Mul(1 / (wa + wb))
	c.a.Velocity = c.a.Velocity.Sub(p.Mul(wa))
	c.b.Velocity = c.b.Velocity.Add(p.Mul(wb))
}

// findContacts appends candidate contacts between a and b.
func findContacts(out []*contact, a, b *Body, material ContactMaterial) []*contact {
	for i, sa := range a.Shapes {
		for j, sb := range b.Shapes {
			out = shapeContacts(out, a, i, sa, b, j, sb, material)
		}
	}
	return out
}

func shapeContacts(out []*contact, a *Body, i int, sa Shape, b *Body, j int, sb Shape, material ContactMaterial) []*contact {
	if sb.Kind == ShapePlane && sa.Kind != ShapePlane {
		return shapeContacts(out, b, j, sb, a, i, sa, material)
	}
	switch {
	case sa.Kind == ShapePlane && sb.Kind != ShapePlane:
		p0 := a.PointToWorld(a.ShapeOffsets[i])
		n := a.Quaternion.Mul(a.ShapeOrientations[i]).Rotate(mgl64.Vec3{0, 0, 1})
		for _, local := range touchPoints(b, j, sb, n) {
			if p0.Sub(b.PointToWorld(local)).Dot(n) > -contactMargin {
				out = append(out, &contact{
					kind:             contactPlane,
					a:                a,
					b:                b,
					planeOffset:      a.ShapeOffsets[i],
					planeOrientation: a.ShapeOrientations[i],
					localB:           local,
					material:         material,
				})
			}
		}
	case sa.Kind == ShapeSphere && sb.Kind == ShapeSphere:
		ca := a.PointToWorld(a.ShapeOffsets[i])
		cb := b.PointToWorld(b.ShapeOffsets[j])
		if ca.Sub(cb).Len() < sa.Radius+sb.Radius+contactMargin {
			out = append(out, &contact{
				kind:     contactSpheres,
				a:        a,
				b:        b,
				centerA:  a.ShapeOffsets[i],
				centerB:  b.ShapeOffsets[j],
				radiusA:  sa.Radius,
				radiusB:  sb.Radius,
				material: material,
			})
		}
	}
	return out
}

// touchPoints returns the local points of shape j on b that may touch a plane with world normal n.
func touchPoints(b *Body, j int, s Shape, n mgl64.Vec3) []mgl64.Vec3 {
	off := b.ShapeOffsets[j]
	switch s.Kind {
	case ShapeSphere:
		down := b.Quaternion.Conjugate().Rotate(n.Mul(-s.Radius))
		return []mgl64.Vec3{off.Add(down)}
	case ShapeBox:
		q := b.ShapeOrientations[j]
		corners := s.corners()
		out := make([]mgl64.Vec3, 0, len(corners))
		for _, c := range corners {
			out = append(out, off.Add(q.Rotate(c)))
		}
		return out
	case ShapeParticle:
		return []mgl64.Vec3{off}
	}
	return nil
}

func (c *contact) capturePreVelocity() {
	_, _, n, _ := c.geometry()
	c.normal = n
	c.vnPre = c.b.Velocity.Sub(c.a.Velocity).Dot(n)
}
