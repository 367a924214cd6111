package visual

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"ragdoll-rig/internal/physics"
)

// ErrUnknownShape is returned when a body carries a shape no mesh exists for.
var ErrUnknownShape = errors.New("visual type not recognized")

const (
	particleRadius = 0.05
	planeSize      = 1000
)

// Mesh is one renderable piece of a visual, placed in the body frame.
type Mesh struct {
	Kind physics.ShapeKind
	// Radius for spheres and particles.
	Radius float64
	// Size is the full extent for boxes and planes (planes use X and Y).
	Size        mgl64.Vec3
	Offset      mgl64.Vec3
	Orientation mgl64.Quat
}

// Visual is the render-side counterpart of one body. Position and Orientation mirror the body
// after every SyncAll.
type Visual struct {
	Name        string
	Color       uint32
	Position    mgl64.Vec3
	Orientation mgl64.Quat
	Meshes      []Mesh
}

// Binder pairs bodies with visuals and copies transforms from bodies to visuals.
type Binder struct {
	bodies  []*physics.Body
	visuals map[*physics.Body]*Visual
}

// NewBinder returns an empty binder.
func NewBinder() *Binder {
	return &Binder{visuals: make(map[*physics.Body]*Visual)}
}

// Bind builds a visual from body's shapes and registers the pair. Binding a body again replaces
// its visual.
func (b *Binder) Bind(body *physics.Body, color uint32) (*Visual, error) {
	v := &Visual{
		Name:        body.Name,
		Color:       color,
		Position:    body.Position,
		Orientation: body.Quaternion,
		Meshes:      make([]Mesh, 0, len(body.Shapes)),
	}
	for i, s := range body.Shapes {
		m, err := meshFor(s)
		if err != nil {
			return nil, fmt.Errorf("bind %q shape %d: %w", body.Name, i, err)
		}
		m.Offset = body.ShapeOffsets[i]
		m.Orientation = body.ShapeOrientations[i]
		v.Meshes = append(v.Meshes, m)
	}
	b.Register(body)
	b.visuals[body] = v
	return v, nil
}

func meshFor(s physics.Shape) (Mesh, error) {
	switch s.Kind {
	case physics.ShapeSphere:
		return Mesh{Kind: s.Kind, Radius: s.Radius}, nil
	case physics.ShapeParticle:
		return Mesh{Kind: s.Kind, Radius: particleRadius}, nil
	case physics.ShapeBox:
		return Mesh{Kind: s.Kind, Size: s.HalfExtents.Mul(2)}, nil
	case physics.ShapePlane:
		return Mesh{Kind: s.Kind, Size: mgl64.Vec3{planeSize, planeSize, 0}}, nil
	}
	return Mesh{}, fmt.Errorf("%w: %v", ErrUnknownShape, s.Kind)
}

// Register tracks body for syncing before its visual exists.
func (b *Binder) Register(body *physics.Body) {
	if _, ok := b.visuals[body]; ok {
		return
	}
	for _, x := range b.bodies {
		if x == body {
			return
		}
	}
	b.bodies = append(b.bodies, body)
}

// SyncAll copies every body's position and orientation to its visual. Bodies without a visual
// are skipped.
func (b *Binder) SyncAll() {
	for _, body := range b.bodies {
		v, ok := b.visuals[body]
		if !ok {
			continue
		}
		v.Position = body.Position
		v.Orientation = body.Quaternion
	}
}

// Visuals returns the bound visuals in registration order.
func (b *Binder) Visuals() []*Visual {
	out := make([]*Visual, 0, len(b.visuals))
	for _, body := range b.bodies {
		if v, ok := b.visuals[body]; ok {
			out = append(out, v)
		}
	}
	return out
}

// VisualFor returns the visual bound to body.
func (b *Binder) VisualFor(body *physics.Body) (*Visual, bool) {
	v, ok := b.visuals[body]
	return v, ok
}
