package visual

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragdoll-rig/internal/physics"
)

func TestBindBuildsOneMeshPerShape(t *testing.T) {
	body := physics.NewBody(physics.BodyOptions{Name: "torso", Mass: 1, Position: mgl64.Vec3{1, 2, 3}})
	tilt := mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 0, 1})
	body.AddShape(physics.Box(mgl64.Vec3{0.25, 0.3, 0.06}), mgl64.Vec3{}, mgl64.QuatIdent())
	body.AddShape(physics.Sphere(0.15), mgl64.Vec3{0, 0.5, 0}, tilt)
	body.AddShape(physics.Particle(), mgl64.Vec3{}, mgl64.QuatIdent())

	b := NewBinder()
	v, err := b.Bind(body, 0x772277)
	require.NoError(t, err)
	require.Len(t, v.Meshes, 3)

	assert.Equal(t, "torso", v.Name)
	assert.Equal(t, uint32(0x772277), v.Color)
	assert.Equal(t, body.Position, v.Position)
	assert.True(t, v.Meshes[0].Size.ApproxEqual(mgl64.Vec3{0.5, 0.6, 0.12}))
	assert.Equal(t, 0.15, v.Meshes[1].Radius)
	assert.Equal(t, mgl64.Vec3{0, 0.5, 0}, v.Meshes[1].Offset)
	assert.Equal(t, tilt.Normalize(), v.Meshes[1].Orientation)
	assert.Equal(t, physics.ShapeParticle, v.Meshes[2].Kind)

	got, ok := b.VisualFor(body)
	require.True(t, ok)
	assert.Same(t, v, got)
}

func TestBindUnknownShapeFails(t *testing.T) {
	body := physics.NewBody(physics.BodyOptions{Name: "odd"})
	body.AddShape(physics.Shape{Kind: physics.ShapeKind(42)}, mgl64.Vec3{}, mgl64.QuatIdent())

	b := NewBinder()
	_, err := b.Bind(body, 0)
	assert.ErrorIs(t, err, ErrUnknownShape)
	_, ok := b.VisualFor(body)
	assert.False(t, ok)
}

func TestSyncAllCopiesBodyTransforms(t *testing.T) {
	body := physics.NewBody(physics.BodyOptions{Mass: 1})
	body.AddShape(physics.Sphere(0.1), mgl64.Vec3{}, mgl64.QuatIdent())
	b := NewBinder()
	v, err := b.Bind(body, 0)
	require.NoError(t, err)

	q := mgl64.QuatRotate(1, mgl64.Vec3{0, 1, 0})
	body.SetPosition(mgl64.Vec3{4, 5, 6})
	body.SetOrientation(q)
	assert.NotEqual(t, body.Position, v.Position)

	b.SyncAll()
	assert.Equal(t, mgl64.Vec3{4, 5, 6}, v.Position)
	assert.Equal(t, body.Quaternion, v.Orientation)
}

func TestSyncAllSkipsBodiesWithoutVisual(t *testing.T) {
	lazy := physics.NewBody(physics.BodyOptions{Mass: 1})
	bound := physics.NewBody(physics.BodyOptions{Mass: 1})
	bound.AddShape(physics.Sphere(0.1), mgl64.Vec3{}, mgl64.QuatIdent())

	b := NewBinder()
	b.Register(lazy)
	v, err := b.Bind(bound, 0)
	require.NoError(t, err)
	bound.SetPosition(mgl64.Vec3{1, 0, 0})

	assert.NotPanics(t, b.SyncAll)
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, v.Position)
	assert.Equal(t, []*Visual{v}, b.Visuals())

	// a later bind picks the lazy body up
	lazy.AddShape(physics.Box(mgl64.Vec3{1, 1, 1}), mgl64.Vec3{}, mgl64.QuatIdent())
	lv, err := b.Bind(lazy, 0)
	require.NoError(t, err)
	assert.Equal(t, []*Visual{lv, v}, b.Visuals())
}

func TestPlaneMesh(t *testing.T) {
	floor := physics.NewBody(physics.BodyOptions{Name: "floor"})
	floor.AddShape(physics.Plane(), mgl64.Vec3{}, mgl64.QuatIdent())
	v, err := NewBinder().Bind(floor, 0xffffff)
	require.NoError(t, err)
	assert.Equal(t, physics.ShapePlane, v.Meshes[0].Kind)
	assert.Greater(t, v.Meshes[0].Size.X(), 10.0)
}
