package main

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"ragdoll-rig/internal/engineconfig"
	"ragdoll-rig/internal/graphics"
	"ragdoll-rig/internal/logger"
	"ragdoll-rig/internal/scenario"
	"ragdoll-rig/internal/terminal"
	"ragdoll-rig/internal/visual"
)

const (
	markerColor  = 0x33ccff
	markerRadius = 0.06
)

// viewer draws a running scenario and feeds it keyboard, mouse and console input.
//
// Keys while the console is closed: Space pause/resume, G grid, F FPS, M heap, K foot markers,
// T drive targets, R release both hands. Left click on the floor walks the leader toward the
// point; right drag orbits; the wheel zooms. With -live the arrow keys move the headset and Z/X
// hold the left/right grip buttons.
type viewer struct {
	sim     *scenario.Sim
	prefs   *engineconfig.EnginePrefs
	scene   *graphics.Scene
	meshes  *graphics.Meshes
	overlay *graphics.Overlay
	term    *terminal.Terminal
	targets map[*visual.Visual]bool
	desk    *deskHeadset
}

func newViewer(sim *scenario.Sim, prefs *engineconfig.EnginePrefs, log *logger.Logger) *viewer {
	v := &viewer{
		sim:     sim,
		prefs:   prefs,
		scene:   graphics.NewScene(prefs.CameraDistance),
		meshes:  graphics.NewMeshes(),
		overlay: graphics.NewOverlay(),
		term:    terminal.New(log, sim.Exec),
		targets: make(map[*visual.Visual]bool),
	}
	v.scene.SetGridVisible(prefs.GridVisible)
	v.overlay.ShowFPS = prefs.ShowFPS
	v.overlay.ShowMemAlloc = prefs.ShowMemAlloc
	v.overlay.Status = v.status
	for _, b := range sim.Targets {
		if vis, ok := sim.Binder.VisualFor(b); ok {
			v.targets[vis] = true
		}
	}
	return v
}

func (v *viewer) update() {
	v.term.Update()
	if !v.term.IsOpen() {
		v.shortcuts()
		if v.desk != nil {
			v.desk.update(rl.GetFrameTime())
		}
		v.scene.Update()
		if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
			if p, ok := v.scene.FloorPoint(rl.GetMousePosition(), v.sim.Scenario.FloorY); ok {
				v.sim.Loop.MoveToward(p)
			}
		}
	}
	v.sim.Step()
	v.scene.Follow(v.sim.Leader.PelvisPosition())
}

func (v *viewer) shortcuts() {
	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		if v.sim.Paused() {
			v.sim.Resume()
		} else {
			v.sim.Pause()
		}
	case rl.IsKeyPressed(rl.KeyG):
		v.prefs.GridVisible = !v.prefs.GridVisible
		v.scene.SetGridVisible(v.prefs.GridVisible)
	case rl.IsKeyPressed(rl.KeyF):
		v.prefs.ShowFPS = !v.prefs.ShowFPS
		v.overlay.ShowFPS = v.prefs.ShowFPS
	case rl.IsKeyPressed(rl.KeyM):
		v.prefs.ShowMemAlloc = !v.prefs.ShowMemAlloc
		v.overlay.ShowMemAlloc = v.prefs.ShowMemAlloc
	case rl.IsKeyPressed(rl.KeyK):
		v.prefs.FootMarkers = !v.prefs.FootMarkers
	case rl.IsKeyPressed(rl.KeyT):
		v.prefs.ShowTargets = !v.prefs.ShowTargets
	case rl.IsKeyPressed(rl.KeyR):
		v.term.Submit("release -hand both")
	}
}

func (v *viewer) draw() {
	v.meshes.SetView(v.scene.Camera)
	v.scene.Draw(func() {
		for _, vis := range v.sim.Binder.Visuals() {
			if v.targets[vis] && !v.prefs.ShowTargets {
				continue
			}
			v.meshes.DrawVisual(vis)
		}
		if v.prefs.FootMarkers {
			for _, p := range v.sim.FootMarkers() {
				graphics.DrawMarker(p, markerRadius, markerColor)
			}
		}
	})
	v.overlay.Draw()
	v.term.Draw()
}

func (v *viewer) status() []string {
	mode := "debug"
	if v.sim.Loop.Live() {
		mode = "live"
	}
	lines := []string{
		fmt.Sprintf("%s  t=%.2fs  tick %d  %s", v.sim.Scenario.Name, v.sim.Time(), v.sim.Loop.Ticks(), mode),
	}
	if d := v.sim.Dance; d != nil {
		lines = append(lines, fmt.Sprintf("dance: %s (%.0f deg)", d.State(), d.TurnDegrees()))
	}
	if h := v.sim.Holder; h != nil {
		l, r := h.Holding()
		lines = append(lines, fmt.Sprintf("holds: left %v right %v", l, r))
	}
	if v.sim.Paused() {
		lines = append(lines, "PAUSED")
	}
	return lines
}

func (v *viewer) close() {
	v.meshes.Unload()
	v.prefs.CameraDistance = v.scene.Distance()
}
