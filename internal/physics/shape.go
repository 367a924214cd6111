package physics

import "github.com/go-gl/mathgl/mgl64"

// ShapeKind identifies the collision primitive attached to a body.
type ShapeKind int

const (
	ShapeSphere ShapeKind = iota
	ShapeBox
	ShapePlane
	ShapeParticle
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeSphere:
		return "sphere"
	case ShapeBox:
		return "box"
	case ShapePlane:
		return "plane"
	case ShapeParticle:
		return "particle"
	}
	return "unknown"
}

// Shape is a collision primitive in the body's local frame. Radius is used by spheres,
// HalfExtents by boxes. A plane is infinite with its normal along local +Z.
type Shape struct {
	Kind        ShapeKind
	Radius      float64
	HalfExtents mgl64.Vec3
}

// Sphere returns a sphere shape with the given radius.
func Sphere(radius float64) Shape {
	return Shape{Kind: ShapeSphere, Radius: radius}
}

// Box returns a box shape with the given half extents.
func Box(halfExtents mgl64.Vec3) Shape {
	return Shape{Kind: ShapeBox, HalfExtents: halfExtents}
}

// Plane returns an infinite plane shape (normal = local +Z).
func Plane() Shape {
	return Shape{Kind: ShapePlane}
}

// Particle returns a point shape.
func Particle() Shape {
	return Shape{Kind: ShapeParticle}
}

// boundingHalfExtents is the half size of the shape's local AABB. Planes and particles have none.
func (s Shape) boundingHalfExtents() mgl64.Vec3 {
	switch s.Kind {
	case ShapeSphere:
		return mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	case ShapeBox:
		return s.HalfExtents
	}
	return mgl64.Vec3{}
}

// corners returns the eight local corners of a box shape.
func (s Shape) corners() [8]mgl64.Vec3 {
	h := s.HalfExtents
	var out [8]mgl64.Vec3
	i := 0
	for _, sx := range []float64{-1, 1} {
		for _, sy := range []float64{-1, 1} {
			for _, sz := range []float64{-1, 1} {
				out[i] = mgl64.Vec3{sx * h[0], sy * h[1], sz * h[2]}
				i++
			}
		}
	}
	return out
}
