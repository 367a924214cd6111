package control

import "github.com/go-gl/mathgl/mgl64"

// Device is a tracked input device.
type Device int

const (
	Camera Device = iota
	LeftController
	RightController
)

func (d Device) String() string {
	switch d {
	case Camera:
		return "camera"
	case LeftController:
		return "left_controller"
	case RightController:
		return "right_controller"
	}
	return "device?"
}

// Pose is a tracked position and orientation in tracking space.
type Pose struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

// Tracker reports the current pose of each device. A device without a pose yet returns false.
type Tracker interface {
	Pose(d Device) (Pose, bool)
	Pressed(d Device) bool
}

// ManualTracker is a Tracker whose poses and buttons are set by hand.
type ManualTracker struct {
	poses   map[Device]Pose
	pressed map[Device]bool
}

// NewManualTracker returns a tracker with no poses.
func NewManualTracker() *ManualTracker {
	return &ManualTracker{
		poses:   make(map[Device]Pose),
		pressed: make(map[Device]bool),
	}
}

// Set places device d at position p with identity orientation.
func (t *ManualTracker) Set(d Device, p mgl64.Vec3) {
	t.SetPose(d, Pose{Position: p, Orientation: mgl64.QuatIdent()})
}

// SetPose sets the full pose of d.
func (t *ManualTracker) SetPose(d Device, p Pose) {
	t.poses[d] = p
}

// Forget drops the pose of d, as when a controller loses tracking.
func (t *ManualTracker) Forget(d Device) {
	delete(t.poses, d)
}

// Press sets the button state of d.
func (t *ManualTracker) Press(d Device, down bool) {
	t.pressed[d] = down
}

func (t *ManualTracker) Pose(d Device) (Pose, bool) {
	p, ok := t.poses[d]
	return p, ok
}

func (t *ManualTracker) Pressed(d Device) bool {
	return t.pressed[d]
}

// Stand poses the headset at head with the right controller at head+hand and the left one
// mirrored across the headset's x.
func (t *ManualTracker) Stand(head, hand mgl64.Vec3) {
	t.Set(Camera, head)
	t.Set(LeftController, head.Add(mgl64.Vec3{-hand.X(), hand.Y(), hand.Z()}))
	t.Set(RightController, head.Add(hand))
}
