package control

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"ragdoll-rig/internal/joints"
)

// Source is where a driven joint takes its target from.
type Source int

const (
	// SourceCamera follows the headset.
	SourceCamera Source = iota
	SourceLeftController
	SourceRightController
	// SourceHeadInitial holds the rig's head where it was built.
	SourceHeadInitial
	SourceDanceLeftFoot
	SourceDanceRightFoot
)

var sourceNames = [...]string{
	SourceCamera:          "camera",
	SourceLeftController:  "left_controller",
	SourceRightController: "right_controller",
	SourceHeadInitial:     "head_initial",
	SourceDanceLeftFoot:   "dance_left_foot",
	SourceDanceRightFoot:  "dance_right_foot",
}

func (s Source) String() string {
	if s < 0 || int(s) >= len(sourceNames) {
		return fmt.Sprintf("source(%d)", int(s))
	}
	return sourceNames[s]
}

// ParseSource returns the Source with the given name.
func ParseSource(name string) (Source, error) {
	for i, n := range sourceNames {
		if n == name {
			return Source(i), nil
		}
	}
	return 0, fmt.Errorf("unknown drive source %q", name)
}

// device returns the tracked device behind s.
func (s Source) device() (Device, bool) {
	switch s {
	case SourceCamera:
		return Camera, true
	case SourceLeftController:
		return LeftController, true
	case SourceRightController:
		return RightController, true
	}
	return 0, false
}

// Drive says that the pointer joint Joint of rig Rig follows Source.
type Drive struct {
	Rig    int
	Joint  joints.Name
	Source Source
	// Offset is added to a tracked position before scaling. For floor drives in debug mode only
	// the signs of its X and Z pick the side the foot steps to.
	Offset mgl64.Vec3
	// Floor puts the target on the floor plane.
	Floor bool
}

func (d Drive) String() string {
	return fmt.Sprintf("%s <- %s", joints.K(d.Rig, d.Joint), d.Source)
}

// BasicTurnDrives is the drive table of the two-rig basic turn: the leader follows the headset
// and controllers, the partner keeps its head in place and steps with the dance.
func BasicTurnDrives(leader, partner int) []Drive {
	return []Drive{
		{Rig: leader, Joint: joints.Head, Source: SourceCamera},
		{Rig: leader, Joint: joints.LeftHand, Source: SourceLeftController, Offset: mgl64.Vec3{0, -1, 0}},
		{Rig: leader, Joint: joints.RightHand, Source: SourceRightController, Offset: mgl64.Vec3{0, -1, 0}},
		{Rig: leader, Joint: joints.LeftFoot, Source: SourceCamera, Offset: mgl64.Vec3{-DefaultFootOffset, 0, 0}, Floor: true},
		{Rig: leader, Joint: joints.RightFoot, Source: SourceCamera, Offset: mgl64.Vec3{DefaultFootOffset, 0, 0}, Floor: true},
		{Rig: partner, Joint: joints.Head, Source: SourceHeadInitial},
		{Rig: partner, Joint: joints.LeftFoot, Source: SourceDanceLeftFoot},
		{Rig: partner, Joint: joints.RightFoot, Source: SourceDanceRightFoot},
	}
}
