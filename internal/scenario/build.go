package scenario

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"ragdoll-rig/internal/commands"
	"ragdoll-rig/internal/control"
	"ragdoll-rig/internal/dance"
	"ragdoll-rig/internal/joints"
	"ragdoll-rig/internal/logger"
	"ragdoll-rig/internal/physics"
	"ragdoll-rig/internal/rig"
	"ragdoll-rig/internal/timeline"
	"ragdoll-rig/internal/visual"
)

const (
	// FloorMaterial is the contact material tag of the floor.
	FloorMaterial = "floor"
	floorColor    = 0x3a3a3a
	targetColor   = 0xffaa00
)

// Options are the runtime collaborators of a built scenario.
type Options struct {
	// Tracker supplies tracked input; nil runs from the debug panel.
	Tracker control.Tracker
	Log     *logger.Logger
}

// Sim is a built scenario ready to tick.
type Sim struct {
	Scenario *Scenario
	World    *physics.World
	Joints   *joints.Manager
	Binder   *visual.Binder
	Floor    *physics.Body
	Rigs     []*rig.Rig
	Leader   *rig.Rig
	Partner  *rig.Rig
	Dance    *dance.Manager
	Holder   *control.HandHolder
	Loop     *control.Loop
	Timeline *timeline.Timeline
	Commands *commands.Registry
	// Targets are the kinematic bodies the pointer joints pull toward, one per drive.
	Targets []*physics.Body

	log    *logger.Logger
	paused bool
}

// Build assembles the world, floor, rigs, pointer joints, visuals, dance, hand holds and control
// loop described by s, and schedules its script. Any failure aborts the whole build.
func Build(s *Scenario, opts Options) (*Sim, error) {
	sc, err := s.Resolve()
	if err != nil {
		return nil, err
	}
	log := opts.Log

	world := physics.NewWorld()
	world.SetGravity(sc.Gravity.Vec())
	world.Iterations = sc.Iterations
	world.AddContactMaterial(physics.ContactMaterial{
		MaterialA:   rig.Material,
		MaterialB:   FloorMaterial,
		Friction:    sc.Contact.Friction,
		Restitution: sc.Contact.Restitution,
	})

	sim := &Sim{
		Scenario: sc,
		World:    world,
		Joints:   joints.NewManager(world),
		Binder:   visual.NewBinder(),
		Timeline: timeline.New(),
		Commands: commands.NewRegistry(),
		log:      log,
	}

	floorQ := mgl64.QuatRotate(-math.Pi/2, mgl64.Vec3{1, 0, 0})
	sim.Floor = physics.NewBody(physics.BodyOptions{
		Name:       "floor",
		Position:   mgl64.Vec3{0, sc.FloorY, 0},
		Quaternion: &floorQ,
		Material:   FloorMaterial,
	})
	sim.Floor.AddShape(physics.Plane(), mgl64.Vec3{}, mgl64.QuatIdent())
	world.AddBody(sim.Floor)
	if _, err := sim.Binder.Bind(sim.Floor, floorColor); err != nil {
		return nil, err
	}

	byID := make(map[int]*rig.Rig)
	maxForce := make(map[int]float64)
	for _, spec := range sc.Rigs {
		r, err := sim.buildRig(spec, opts.Tracker)
		if err != nil {
			return nil, err
		}
		byID[spec.ID] = r
		maxForce[spec.ID] = spec.PointerMaxForce
		sim.Rigs = append(sim.Rigs, r)
		switch spec.Role {
		case RoleLeader:
			sim.Leader = r
		case RolePartner:
			sim.Partner = r
		}
	}

	drives := make([]control.Drive, 0, len(sc.Drives))
	for _, ds := range sc.Drives {
		d, _ := ds.drive()
		r := byID[d.Rig]
		body, ok := r.DrivenBody(d.Joint)
		if !ok {
			return nil, fmt.Errorf("drive %s: %s is not a pointer joint", d, d.Joint)
		}
		sim.Joints.AddPointerConstraintToBody(r.Key(d.Joint), body, maxForce[d.Rig])
		target := sim.Joints.JointBody(r.Key(d.Joint))
		if _, err := sim.Binder.Bind(target, targetColor); err != nil {
			return nil, err
		}
		sim.Targets = append(sim.Targets, target)
		drives = append(drives, d)
	}

	if sc.Dance.Enabled {
		sim.Dance = dance.NewManager(sim.Partner, log)
	}
	if sc.Hold.Enabled {
		sim.Holder = control.NewHandHolder(sim.Joints, sim.Leader, sim.Partner, sc.Hold.Distance, log)
	}

	sim.Loop, err = control.NewLoop(control.Options{
		World:        world,
		Joints:       sim.Joints,
		Binder:       sim.Binder,
		Leader:       sim.Leader,
		Partner:      sim.Partner,
		Drives:       drives,
		Dance:        sim.Dance,
		Holder:       sim.Holder,
		Tracker:      opts.Tracker,
		Timeline:     sim.Timeline,
		DT:           sc.DT,
		TrackingGain: sc.TrackingGain,
		FootOffset:   sc.FootOffset,
		Log:          log,
	})
	if err != nil {
		return nil, err
	}

	commands.RegisterDebugCommands(sim.Commands, sim.Loop, sim, log)
	if err := sim.schedule(sc.Script); err != nil {
		return nil, err
	}
	log.Logf("scenario %q built: %d rigs, %d drives, %d script entries", sc.Name, len(sim.Rigs), len(drives), len(sc.Script))
	return sim, nil
}

func (sim *Sim) buildRig(spec RigSpec, tracker control.Tracker) (*rig.Rig, error) {
	anchor := spec.Anchor.Vec()
	if spec.AnchorToCamera && tracker != nil {
		if cam, ok := tracker.Pose(control.Camera); ok {
			anchor = anchor.Add(mgl64.Vec3{cam.Position.X(), 0, cam.Position.Z()})
		}
	}
	r, err := rig.Build(sim.World, sim.Joints, rig.Config{
		ID:        spec.ID,
		Anchor:    anchor,
		Scale:     spec.Scale,
		Color:     spec.Color,
		Kinematic: spec.Kinematic,
	})
	if err != nil {
		return nil, fmt.Errorf("rig %d: %w", spec.ID, err)
	}
	for _, b := range r.Bodies() {
		if _, err := sim.Binder.Bind(b, spec.Color); err != nil {
			return nil, fmt.Errorf("rig %d: %w", spec.ID, err)
		}
	}
	sim.log.Logf("rig %d built: %s at (%.2f, %.2f, %.2f) scale %.2f", spec.ID, roleName(spec.Role), anchor.X(), anchor.Y(), anchor.Z(), spec.Scale)
	return r, nil
}

func roleName(role string) string {
	if role == "" {
		return "idle"
	}
	return role
}

// schedule puts every script entry on the timeline. Unknown commands fail the build; commands
// that fail when they run are logged.
func (sim *Sim) schedule(script []ScriptEntry) error {
	for i, e := range script {
		args, ok := commands.Parse(e.Cmd)
		if !ok {
			continue
		}
		if !sim.Commands.Has(args[0]) {
			return fmt.Errorf("script %d: %w: %s", i, commands.ErrUnknownCommand, args[0])
		}
		cmd := e.Cmd
		run := func() {
			if err := sim.Commands.Execute(args); err != nil {
				sim.log.Logf("script %q: %v", cmd, err)
			}
		}
		if e.After > 0 {
			sim.Timeline.Then(timeline.Seconds(e.After), run)
		} else {
			sim.Timeline.At(timeline.Seconds(e.At), run)
		}
	}
	return nil
}

// Step runs one tick unless the simulation is paused. It reports whether a tick ran.
func (sim *Sim) Step() bool {
	if sim.paused {
		return false
	}
	sim.Loop.Tick()
	return true
}

// Run calls Step n times.
func (sim *Sim) Run(n int) {
	for _i := 0; _i < n; _i++ {
		sim.Step()
	}
}

// Pause stops Step from ticking and holds the script; script entries due in the same tick as a
// scripted pause wait for Resume.
func (sim *Sim) Pause() {
	if !sim.paused {
		sim.log.Log("simulation paused")
	}
	sim.paused = true
	sim.Timeline.Pause()
}

// Resume lets Step tick again.
func (sim *Sim) Resume() {
	if sim.paused {
		sim.log.Log("simulation resumed")
	}
	sim.paused = false
	sim.Timeline.Resume()
}

// Paused reports whether the simulation is paused.
func (sim *Sim) Paused() bool { return sim.paused }

// Time returns the simulated time in seconds.
func (sim *Sim) Time() float64 { return sim.World.Time() }

// Exec runs one console line through the command registry.
func (sim *Sim) Exec(line string) error {
	return sim.Commands.ExecuteLine(line)
}

// LogBodies logs the position of every rig body.
func (sim *Sim) LogBodies() {
	for _, r := range sim.Rigs {
		for _, b := range r.Bodies() {
			p := b.Position
			sim.log.Logf("%s: (%.3f, %.3f, %.3f)", b.Name, p.X(), p.Y(), p.Z())
		}
	}
}

// FootMarkers returns the dance foot targets, if the scenario dances.
func (sim *Sim) FootMarkers() []mgl64.Vec3 {
	if sim.Dance == nil {
		return nil
	}
	return []mgl64.Vec3{sim.Dance.LeftFootPosition(), sim.Dance.RightFootPosition()}
}
