package graphics

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl64"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	gridExtent     = 10
	gridMinorStep  = 1
	gridMajorStep  = 5
	gridMinorAlpha = 50
	gridMajorAlpha = 120
	axisLineAlpha  = 220

	orbitSpeed  = 0.005
	zoomStep    = 0.1
	minDistance = 1
	maxDistance = 40
	// follow is the fraction of the way the camera target moves toward the followed point per frame.
	follow = 0.05
)

var (
	minPitch = float32(-math.Pi/2) + 0.05
	maxPitch = float32(math.Pi/2) - 0.05
)

// Scene is an orbit camera around a target point plus the floor grid. Right mouse drag orbits,
// the wheel zooms.
type Scene struct {
	Camera      rl.Camera3D
	GridVisible bool

	yaw, pitch float32
	distance   float32
	target     rl.Vector3
}

// NewScene returns a scene looking at the rigs from the front at the given distance.
func NewScene(distance float32) *Scene {
	if distance <= 0 {
		distance = 5
	}
	s := &Scene{
		GridVisible: true,
		pitch:       0.35,
		distance:    distance,
		target:      rl.NewVector3(0, 1, 0),
	}
	s.Camera.Up = rl.NewVector3(0, 1, 0)
	s.Camera.Fovy = 45
	s.Camera.Projection = rl.CameraPerspective
	s.place()
	return s
}

// Distance returns the orbit radius.
func (s *Scene) Distance() float32 { return s.distance }

// SetGridVisible sets whether the floor grid is drawn.
func (s *Scene) SetGridVisible(visible bool) {
	s.GridVisible = visible
}

// Update orbits and zooms from the mouse. Call once per frame while the console is closed.
func (s *Scene) Update() {
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		s.yaw -= d.X * orbitSpeed
		s.pitch = math32.Min(maxPitch, math32.Max(minPitch, s.pitch+d.Y*orbitSpeed))
	}
	if w := rl.GetMouseWheelMove(); w != 0 {
		s.distance = math32.Min(maxDistance, math32.Max(minDistance, s.distance*(1-w*zoomStep)))
	}
	s.place()
}

// Follow eases the orbit target toward p.
func (s *Scene) Follow(p mgl64.Vec3) {
	s.target.X += (float32(p.X()) - s.target.X) * follow
	s.target.Y += (float32(p.Y()) - s.target.Y) * follow
	s.target.Z += (float32(p.Z()) - s.target.Z) * follow
	s.place()
}

func (s *Scene) place() {
	sy, cy := math32.Sincos(s.yaw)
	sp, cp := math32.Sincos(s.pitch)
	s.Camera.Target = s.target
	s.Camera.Position = rl.NewVector3(
		s.target.X+s.distance*cp*sy,
		s.target.Y+s.distance*sp,
		s.target.Z+s.distance*cp*cy,
	)
}

// FloorPoint returns where the ray through screen point p meets the floor plane y = floorY.
func (s *Scene) FloorPoint(p rl.Vector2, floorY float64) (mgl64.Vec3, bool) {
	ray := rl.GetScreenToWorldRay(p, s.Camera)
	if math32.Abs(ray.Direction.Y) < 1e-6 {
		return mgl64.Vec3{}, false
	}
	t := (float32(floorY) - ray.Position.Y) / ray.Direction.Y
	if t < 0 {
		return mgl64.Vec3{}, false
	}
	return mgl64.Vec3{
		float64(ray.Position.X + ray.Direction.X*t),
		floorY,
		float64(ray.Position.Z + ray.Direction.Z*t),
	}, true
}

// Draw renders draw3D in 3D mode after the grid.
func (s *Scene) Draw(draw3D func()) {
	rl.BeginMode3D(s.Camera)
	if s.GridVisible {
		drawEditorGrid()
	}
	draw3D()
	rl.EndMode3D()
}

// drawEditorGrid draws a grid on the XZ plane with major/minor lines and axis lines.
func drawEditorGrid() {
	minor := rl.NewColor(128, 128, 128, gridMinorAlpha)
	major := rl.NewColor(160, 160, 160, gridMajorAlpha)
	axisX := rl.NewColor(220, 80, 80, axisLineAlpha)
	axisY := rl.NewColor(80, 220, 80, axisLineAlpha)
	axisZ := rl.NewColor(80, 80, 220, axisLineAlpha)

	var start, end rl.Vector3
	for i := -gridExtent; i <= gridExtent; i += gridMinorStep {
		c := major
		if i%gridMajorStep != 0 {
			c = minor
		}
		start.X, start.Y, start.Z = float32(i), 0.001, -gridExtent
		end.X, end.Y, end.Z = float32(i), 0.001, gridExtent
		rl.DrawLine3D(start, end, c)
		start.X, start.Z = -gridExtent, float32(i)
		end.X, end.Z = gridExtent, float32(i)
		rl.DrawLine3D(start, end, c)
	}

	rl.DrawLine3D(rl.NewVector3(-gridExtent, 0.002, 0), rl.NewVector3(gridExtent, 0.002, 0), axisX)
	rl.DrawLine3D(rl.NewVector3(0, 0, 0), rl.NewVector3(0, gridExtent/2, 0), axisY)
	rl.DrawLine3D(rl.NewVector3(0, 0.002, -gridExtent), rl.NewVector3(0, 0.002, gridExtent), axisZ)
}
