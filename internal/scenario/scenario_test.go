package scenario

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragdoll-rig/internal/commands"
	"ragdoll-rig/internal/control"
	"ragdoll-rig/internal/joints"
	"ragdoll-rig/internal/logger"
	"ragdoll-rig/internal/rig"
)

const scripted = `
name: scripted
rig_defaults:
  scale: 0.9
  color: 0x112233
rigs:
  - role: leader
    anchor: [0, 0.01, 0]
  - role: partner
    anchor: [0, 0.01, 0.5]
    scale: 0.8
drives:
  - {rig: 1, joint: head, source: camera}
  - {rig: 2, joint: leftFoot, source: dance_left_foot}
hold: {enabled: true}
dance: {enabled: true}
script:
  - {at: 0.01, cmd: set headX 1}
  - {at: 0.02, cmd: set tail 1}
  - {at: 0.03, cmd: release -hand left}
`

func TestParseFillsDefaults(t *testing.T) {
	s, err := Parse([]byte(scripted))
	require.NoError(t, err)
	assert.Equal(t, 1.0/180, s.DT)
	assert.Equal(t, Vec3{0, -9.8, 0}, s.Gravity)
	assert.Equal(t, 20, s.Iterations)
	assert.Equal(t, control.DefaultHoldDistance, s.Hold.Distance)
	assert.Equal(t, uint32(0x112233), s.RigDefaults.Color)
	require.Len(t, s.Script, 3)

	r, err := s.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 1, r.Rigs[0].ID)
	assert.Equal(t, 2, r.Rigs[1].ID)
	assert.Equal(t, 0.9, r.Rigs[0].Scale)
	assert.Equal(t, 0.8, r.Rigs[1].Scale)
	assert.Equal(t, uint32(0x112233), r.Rigs[1].Color)
	assert.Equal(t, DefaultPointerMaxForce, r.Rigs[1].PointerMaxForce)

	// resolving works on a copy
	assert.Zero(t, s.Rigs[0].ID)
}

func TestParseRejects(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown key":     "dt: 0.01\nrigz: []\n",
		"no rigs":         "dt: 0.01\n",
		"bad dt":          "dt: 0\nrigs: [{scale: 1}]\n",
		"two leaders":     "rigs: [{role: leader}, {role: leader}]\n",
		"bad role":        "rigs: [{role: judge}]\n",
		"duplicate ids":   "rigs: [{id: 3}, {id: 3}]\n",
		"dance alone":     "rigs: [{scale: 1}]\ndance: {enabled: true}\n",
		"partner alone":   "rigs:\n  - {role: partner}\ndance: {enabled: true}\n",
		"hold no leader":  "rigs: [{role: partner}]\nhold: {enabled: true}\n",
		"bad joint":       "rigs: [{scale: 1}]\ndrives: [{rig: 1, joint: tail, source: camera}]\n",
		"bad source":      "rigs: [{scale: 1}]\ndrives: [{rig: 1, joint: head, source: tail}]\n",
		"missing rig":     "rigs: [{scale: 1}]\ndrives: [{rig: 4, joint: head, source: camera}]\n",
		"driven twice":    "rigs: [{scale: 1}]\ndrives: [{rig: 1, joint: head, source: camera}, {rig: 1, joint: head, source: head_initial}]\n",
		"negative script": "rigs: [{scale: 1}]\nscript: [{at: -1, cmd: pause}]\n",
		"at and after":    "rigs: [{scale: 1}]\nscript: [{at: 1, after: 1, cmd: pause}]\n",
	} {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, name)
	}
	_, err := Parse(nil)
	assert.ErrorIs(t, err, ErrNoRigs)
}

func TestRolesPromoteFirstUnassignedRig(t *testing.T) {
	s, err := Parse([]byte("rigs: [{role: partner}, {scale: 0.9}]\ndance: {enabled: true}\n"))
	require.NoError(t, err)
	r, err := s.Resolve()
	require.NoError(t, err)
	assert.Equal(t, RolePartner, r.Rigs[0].Role)
	assert.Equal(t, RoleLeader, r.Rigs[1].Role)

	sim, err := Build(s, Options{Log: logger.NewAt("")})
	require.NoError(t, err)
	assert.Equal(t, 2, sim.Leader.ID())
	assert.Equal(t, 1, sim.Partner.ID())
	assert.NotNil(t, sim.Dance)

	lone, err := Parse([]byte("rigs: [{role: partner}]\n"))
	require.NoError(t, err)
	r, err = lone.Resolve()
	require.NoError(t, err)
	assert.Equal(t, RoleLeader, r.Rigs[0].Role)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios", "basic.yaml")
	require.NoError(t, Save(path, Default()))
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), s)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultBuildsBasicTurn(t *testing.T) {
	log := logger.NewAt("")
	sim, err := Build(Default(), Options{Log: log})
	require.NoError(t, err)

	require.Len(t, sim.Rigs, 2)
	assert.Equal(t, 1, sim.Leader.ID())
	assert.Equal(t, 0.8, sim.Partner.Scale())
	assert.NotNil(t, sim.Dance)
	assert.NotNil(t, sim.Holder)
	assert.False(t, sim.Loop.Live())

	for _, d := range control.BasicTurnDrives(1, 2) {
		assert.True(t, sim.Joints.Has(joints.K(d.Rig, d.Joint)), d.String())
	}
	// floor, two rigs and one target per drive
	assert.Len(t, sim.Binder.Visuals(), 1+26+8)
	require.Len(t, sim.Targets, 8)
	for _, b := range sim.Targets {
		v, ok := sim.Binder.VisualFor(b)
		require.True(t, ok)
		assert.Equal(t, uint32(targetColor), v.Color)
	}
	up := sim.Floor.Quaternion.Rotate(mgl64.Vec3{0, 0, 1})
	assert.True(t, up.ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, 1e-9), "floor faces up: %v", up)
	assert.True(t, strings.Contains(strings.Join(log.Lines(), "\n"), `scenario "basic-turn" built`))
	assert.Len(t, sim.FootMarkers(), 2)
}

func TestBasicTurnRunsStably(t *testing.T) {
	sim, err := Build(Default(), Options{})
	require.NoError(t, err)
	sim.Run(360)
	assert.InDelta(t, 2.0, sim.Time(), 1e-9)
	for _, r := range sim.Rigs {
		for _, b := range r.Bodies() {
			assert.False(t, math.IsNaN(b.Position.Len()), b.Name)
			assert.Greater(t, b.Position.Y(), -0.5, b.Name)
			assert.Less(t, b.Position.Len(), 20.0, b.Name)
		}
	}
}

func TestScriptRunsOnTheTimeline(t *testing.T) {
	s, err := Parse([]byte(scripted))
	require.NoError(t, err)
	log := logger.NewAt("")
	sim, err := Build(s, Options{Log: log})
	require.NoError(t, err)

	sim.Run(1)
	assert.NotEqual(t, 1.0, sim.Loop.Params().HeadX)
	sim.Run(2)
	assert.Equal(t, 1.0, sim.Loop.Params().HeadX)

	sim.Run(6)
	joined := strings.Join(log.Lines(), "\n")
	assert.Contains(t, joined, `script "set tail 1"`)
	assert.Contains(t, joined, "leftHandHold2 released")
	assert.True(t, sim.Timeline.Done())
}

func TestScriptChainsAndPauses(t *testing.T) {
	s := Default()
	s.Script = []ScriptEntry{
		{At: 0.01, Cmd: "set headX 1"},
		{After: 0.01, Cmd: "pause"},
		{At: 0.02, Cmd: "set headZ -1"},
		{After: 0.01, Cmd: "set headX 2"},
	}
	log := logger.NewAt("")
	sim, err := Build(s, Options{Log: log})
	require.NoError(t, err)

	sim.Run(4)
	p := sim.Loop.Params()
	assert.Equal(t, 1.0, p.HeadX)
	assert.True(t, sim.Paused())
	assert.True(t, sim.Timeline.Paused())
	assert.NotEqual(t, -1.0, p.HeadZ, "entries due with the pause wait for resume")
	assert.Equal(t, 2, sim.Timeline.Pending())

	require.NoError(t, sim.Exec("resume"))
	sim.Run(1)
	assert.Equal(t, -1.0, p.HeadZ)
	sim.Run(2)
	assert.Equal(t, 2.0, p.HeadX, "chained 0.01 s after the 0.02 s entry")
	assert.True(t, sim.Timeline.Done())
}

func TestCancelDropsTheScript(t *testing.T) {
	s := Default()
	s.Script = []ScriptEntry{{At: 1, Cmd: "set headX 1"}, {After: 1, Cmd: "set headX 2"}}
	log := logger.NewAt("")
	sim, err := Build(s, Options{Log: log})
	require.NoError(t, err)

	require.NoError(t, sim.Exec("cancel"))
	assert.True(t, sim.Timeline.Done())
	assert.Contains(t, strings.Join(log.Lines(), "\n"), "script cancelled, 2 entries dropped")
	sim.Run(400)
	assert.NotEqual(t, 2.0, sim.Loop.Params().HeadX)
}

func TestUnknownScriptCommandFailsBuild(t *testing.T) {
	s := Default()
	s.Script = []ScriptEntry{{At: 1, Cmd: "dance faster"}}
	_, err := Build(s, Options{})
	assert.ErrorIs(t, err, commands.ErrUnknownCommand)
}

func TestPauseStopsStepping(t *testing.T) {
	sim, err := Build(Default(), Options{})
	require.NoError(t, err)
	require.NoError(t, sim.Exec("pause"))
	assert.True(t, sim.Paused())
	assert.False(t, sim.Step())
	assert.Zero(t, sim.Loop.Ticks())

	require.NoError(t, sim.Exec("resume"))
	assert.True(t, sim.Step())
	assert.Equal(t, 1, sim.Loop.Ticks())
}

func TestAnchorToCamera(t *testing.T) {
	s := Default()
	s.Rigs[0].AnchorToCamera = true
	s.Rigs[0].Anchor = Vec3{}
	tr := control.NewManualTracker()
	tr.Set(control.Camera, mgl64.Vec3{1, 1.6, -2})

	sim, err := Build(s, Options{Tracker: tr})
	require.NoError(t, err)
	assert.True(t, sim.Loop.Live())
	pelvis := sim.Leader.Body(rig.Pelvis).Position
	assert.InDelta(t, 1, pelvis.X(), 1e-12)
	assert.InDelta(t, -2, pelvis.Z(), 1e-12)
}

func TestHeadsetScenarioRunsLive(t *testing.T) {
	s, err := Load("../../scenarios/vr-basic-turn.yaml")
	require.NoError(t, err)
	tr := control.NewManualTracker()
	tr.Stand(mgl64.Vec3{0.5, 1.6, 0}, mgl64.Vec3{0.3, 0.6, -0.3})

	sim, err := Build(s, Options{Tracker: tr})
	require.NoError(t, err)
	require.True(t, sim.Loop.Live())
	assert.InDelta(t, 0.5, sim.Leader.Body(rig.Pelvis).Position.X(), 1e-12)

	before := sim.Loop.Params().HeadX
	tr.Stand(mgl64.Vec3{0.8, 1.6, 0}, mgl64.Vec3{0.3, 0.6, -0.3})
	sim.Run(90)
	head := sim.Joints.JointBody(sim.Leader.Key(joints.Head)).Position
	want := mgl64.Vec3{0.8, 1.6, 0}.Mul(sim.Leader.Scale() * sim.Scenario.TrackingGain)
	assert.True(t, head.ApproxEqualThreshold(want, 1e-9), "head target follows the headset, got %v", head)
	assert.Equal(t, before, sim.Loop.Params().HeadX, "debug panel untouched")

	sim.Loop.SetTracker(nil)
	assert.False(t, sim.Loop.Live())
}

func TestBadScaleAbortsBuild(t *testing.T) {
	s := Default()
	s.Rigs[1].Scale = -1
	_, err := Build(s, Options{})
	assert.ErrorIs(t, err, rig.ErrInvalidScale)
}

func TestShippedScenariosParse(t *testing.T) {
	files, err := filepath.Glob("../../scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		s, err := Load(f)
		require.NoError(t, err, f)
		_, err = Build(s, Options{})
		require.NoError(t, err, f)
	}

	s, err := Load("../../scenarios/basic-turn.yaml")
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}
