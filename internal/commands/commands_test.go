package commands

import (
	"errors"
	"flag"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragdoll-rig/internal/control"
	"ragdoll-rig/internal/joints"
	"ragdoll-rig/internal/logger"
	"ragdoll-rig/internal/physics"
	"ragdoll-rig/internal/rig"
)

func TestParse(t *testing.T) {
	for _, tc := range []struct {
		line string
		args []string
		ok   bool
	}{
		{"set headX 1", []string{"set", "headX", "1"}, true},
		{"cmd  release -hand left ", []string{"release", "-hand", "left"}, true},
		{"   ", nil, false},
		{"# comment", nil, false},
		{"cmd ", nil, false},
	} {
		args, ok := Parse(tc.line)
		assert.Equal(t, tc.ok, ok, tc.line)
		assert.Equal(t, tc.args, args, tc.line)
	}
}

func TestExecuteResetsFlags(t *testing.T) {
	reg := NewRegistry()
	fs := flag.NewFlagSet("grid", flag.ContinueOnError)
	size := fs.Int("size", 10, "")
	var got []int
	reg.Register("grid", "grid -size N", fs, func() error {
		got = append(got, *size)
		return nil
	})

	require.NoError(t, reg.ExecuteLine("grid -size 3"))
	require.NoError(t, reg.ExecuteLine("grid"))
	assert.Equal(t, []int{3, 10}, got)
	assert.True(t, reg.Has("grid"))
	assert.Equal(t, "grid -size N", reg.Usage("grid"))

	assert.ErrorIs(t, reg.Execute([]string{"nope"}), ErrUnknownCommand)
	assert.Error(t, reg.Execute(nil))
	assert.Error(t, reg.ExecuteLine("grid -bogus"))
	assert.NoError(t, reg.ExecuteLine(""))
}

func TestExecutePassesRunError(t *testing.T) {
	reg := NewRegistry()
	boom := errors.New("boom")
	reg.Register("fail", "fail", nil, func() error { return boom })
	assert.ErrorIs(t, reg.ExecuteLine("fail"), boom)
}

type pauser struct{ paused bool }

func (p *pauser) Pause()  { p.paused = true }
func (p *pauser) Resume() { p.paused = false }

type debugFixture struct {
	reg     *Registry
	loop    *control.Loop
	joints  *joints.Manager
	leader  *rig.Rig
	partner *rig.Rig
	pause   *pauser
	log     *logger.Logger
}

func newDebugFixture(t *testing.T) *debugFixture {
	t.Helper()
	w := physics.NewWorld()
	m := joints.NewManager(w)
	leader, err := rig.Build(w, m, rig.Config{ID: 1, Scale: 1})
	require.NoError(t, err)
	partner, err := rig.Build(w, m, rig.Config{ID: 2, Anchor: mgl64.Vec3{0, 0, 0.5}, Scale: 0.8})
	require.NoError(t, err)
	log := logger.NewAt("")
	loop, err := control.NewLoop(control.Options{
		World:   w,
		Joints:  m,
		Leader:  leader,
		Partner: partner,
		Holder:  control.NewHandHolder(m, leader, partner, 0, log),
		DT:      1.0 / 180,
		Log:     log,
	})
	require.NoError(t, err)

	f := &debugFixture{reg: NewRegistry(), loop: loop, joints: m, leader: leader, partner: partner, pause: &pauser{}, log: log}
	RegisterDebugCommands(f.reg, loop, f.pause, log)
	return f
}

func TestSetAndGet(t *testing.T) {
	f := newDebugFixture(t)
	require.NoError(t, f.reg.ExecuteLine("set headX 1.5 rightHandY 0.25"))
	assert.Equal(t, 1.5, f.loop.Params().HeadX)
	assert.Equal(t, 0.25, f.loop.Params().RightHandY)

	require.NoError(t, f.reg.ExecuteLine("get headX"))
	lines := f.log.Lines()
	assert.Contains(t, lines[len(lines)-1], "headX = 1.500")

	assert.Error(t, f.reg.ExecuteLine("set headX"))
	assert.Error(t, f.reg.ExecuteLine("set headX abc"))
	assert.ErrorIs(t, f.reg.ExecuteLine("set tail 1"), control.ErrUnknownParam)
	assert.Error(t, f.reg.ExecuteLine("get"))
}

func TestReleaseCommand(t *testing.T) {
	f := newDebugFixture(t)
	f.partner.Body(rig.LeftHand).SetPosition(f.leader.Body(rig.LeftHand).Position)
	f.partner.Body(rig.RightHand).SetPosition(f.leader.Body(rig.RightHand).Position)
	f.loop.Holder().Update()
	left, right := f.loop.Holder().Holding()
	require.True(t, left && right)

	require.NoError(t, f.reg.ExecuteLine("release -hand left"))
	left, right = f.loop.Holder().Holding()
	assert.False(t, left)
	assert.True(t, right)

	require.NoError(t, f.reg.ExecuteLine("release"))
	_, right = f.loop.Holder().Holding()
	assert.False(t, right)

	assert.Error(t, f.reg.ExecuteLine("release -hand tail"))
}

func TestWalkPauseResumeHelp(t *testing.T) {
	f := newDebugFixture(t)
	before := f.loop.Params().HeadX
	require.NoError(t, f.reg.ExecuteLine("walk -x 5 -z 0"))
	assert.Greater(t, f.loop.Params().HeadX, before)

	require.NoError(t, f.reg.ExecuteLine("pause"))
	assert.True(t, f.pause.paused)
	require.NoError(t, f.reg.ExecuteLine("resume"))
	assert.False(t, f.pause.paused)

	assert.Error(t, f.reg.ExecuteLine("cancel"), "no timeline to cancel")

	n := len(f.log.Lines())
	require.NoError(t, f.reg.ExecuteLine("help"))
	assert.Len(t, f.log.Lines(), n+len(f.reg.Names())+1)
}
