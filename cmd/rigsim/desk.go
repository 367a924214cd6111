package main

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"

	"ragdoll-rig/internal/control"
)

const deskSpeed = 0.8 // m/s

var (
	deskHead = mgl64.Vec3{0, 1.6, 0}
	// Controller offset from the headset. The headset scenario lowers hands by 1 m on its drives.
	deskHand = mgl64.Vec3{0.3, 0.6, -0.35}
)

// deskHeadset stands in for a tracked headset on a desktop: the keyboard moves a headset pose
// and presses the grip buttons of a ManualTracker.
type deskHeadset struct {
	tracker *control.ManualTracker
	head    mgl64.Vec3
}

func newDeskHeadset() *deskHeadset {
	d := &deskHeadset{tracker: control.NewManualTracker(), head: deskHead}
	d.tracker.Stand(d.head, deskHand)
	return d
}

func (d *deskHeadset) update(dt float32) {
	step := deskSpeed * float64(dt)
	var move mgl64.Vec3
	if rl.IsKeyDown(rl.KeyLeft) {
		move[0] -= step
	}
	if rl.IsKeyDown(rl.KeyRight) {
		move[0] += step
	}
	if rl.IsKeyDown(rl.KeyUp) {
		move[2] -= step
	}
	if rl.IsKeyDown(rl.KeyDown) {
		move[2] += step
	}
	d.head = d.head.Add(move)
	d.tracker.Stand(d.head, deskHand)
	d.tracker.Press(control.LeftController, rl.IsKeyDown(rl.KeyZ))
	d.tracker.Press(control.RightController, rl.IsKeyDown(rl.KeyX))
}
