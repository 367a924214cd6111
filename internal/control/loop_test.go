package control

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragdoll-rig/internal/dance"
	"ragdoll-rig/internal/joints"
	"ragdoll-rig/internal/logger"
	"ragdoll-rig/internal/physics"
	"ragdoll-rig/internal/rig"
	"ragdoll-rig/internal/timeline"
	"ragdoll-rig/internal/visual"
)

const dt = 1.0 / 180

type scene struct {
	world   *physics.World
	joints  *joints.Manager
	leader  *rig.Rig
	partner *rig.Rig
	opts    Options
}

func newScene(t *testing.T) *scene {
	t.Helper()
	w := physics.NewWorld()
	floor := physics.NewBody(physics.BodyOptions{Name: "floor", Quaternion: ptr(mgl64.QuatRotate(-math.Pi/2, mgl64.Vec3{1, 0, 0}))})
	floor.AddShape(physics.Plane(), mgl64.Vec3{}, mgl64.QuatIdent())
	w.AddBody(floor)

	m := joints.NewManager(w)
	leader, err := rig.Build(w, m, rig.Config{ID: 1, Anchor: mgl64.Vec3{0, 0.01, 0}, Scale: 1})
	require.NoError(t, err)
	partner, err := rig.Build(w, m, rig.Config{ID: 2, Anchor: mgl64.Vec3{0, 0.01, 0.5}, Scale: 0.8})
	require.NoError(t, err)

	drives := BasicTurnDrives(1, 2)
	rigs := map[int]*rig.Rig{1: leader, 2: partner}
	for _, d := range drives {
		body, ok := rigs[d.Rig].DrivenBody(d.Joint)
		require.True(t, ok)
		m.AddPointerConstraintToBody(joints.K(d.Rig, d.Joint), body, 180)
	}

	binder := visual.NewBinder()
	for _, b := range w.Bodies() {
		_, err := binder.Bind(b, 0)
		require.NoError(t, err)
	}

	return &scene{
		world: w, joints: m, leader: leader, partner: partner,
		opts: Options{
			World:   w,
			Joints:  m,
			Binder:  binder,
			Leader:  leader,
			Partner: partner,
			Drives:  drives,
			Dance:   dance.NewManager(partner, nil),
			Holder:  NewHandHolder(m, leader, partner, 0, nil),
			DT:      dt,
		},
	}
}

func ptr[T any](v T) *T { return &v }

func (s *scene) loop(t *testing.T) *Loop {
	t.Helper()
	l, err := NewLoop(s.opts)
	require.NoError(t, err)
	return l
}

func (s *scene) target(rigID int, name joints.Name) mgl64.Vec3 {
	return s.joints.JointBody(joints.K(rigID, name)).Position
}

func TestNewLoopValidates(t *testing.T) {
	s := newScene(t)
	for name, mutate := range map[string]func(o *Options){
		"zero dt":     func(o *Options) { o.DT = 0 },
		"no leader":   func(o *Options) { o.Leader = nil },
		"no world":    func(o *Options) { o.World = nil },
		"unknown rig": func(o *Options) { o.Drives = []Drive{{Rig: 7, Joint: joints.Head}} },
		"not pointer": func(o *Options) { o.Drives = []Drive{{Rig: 1, Joint: joints.Spine}} },
		"no dance":    func(o *Options) { o.Dance = nil },
	} {
		o := s.opts
		mutate(&o)
		_, err := NewLoop(o)
		assert.Error(t, err, name)
	}
}

func TestLiveTargetsFollowTracker(t *testing.T) {
	s := newScene(t)
	tr := NewManualTracker()
	tr.Set(Camera, mgl64.Vec3{0.2, 1.5, -0.3})
	tr.Set(LeftController, mgl64.Vec3{-0.3, 1.2, 0})
	s.opts.Tracker = tr
	l := s.loop(t)
	require.True(t, l.Live())

	l.Tick()
	assert.True(t, s.target(1, joints.Head).ApproxEqual(mgl64.Vec3{0.4, 3, -0.6}))
	assert.True(t, s.target(1, joints.LeftHand).ApproxEqual(mgl64.Vec3{-0.6, 0.4, 0}))
	assert.True(t, s.target(1, joints.LeftFoot).ApproxEqual(mgl64.Vec3{-0.1, 0, -0.6}))
	assert.True(t, s.target(1, joints.RightFoot).ApproxEqual(mgl64.Vec3{0.9, 0, -0.6}))

	// partner head stays where it was built, feet follow the dance
	assert.Equal(t, s.partner.HeadInitialPosition(), s.target(2, joints.Head))
	assert.Equal(t, l.Dance().LeftFootPosition(), s.target(2, joints.LeftFoot))
	assert.Equal(t, 1, l.Ticks())
}

func TestMissingInputFallsBack(t *testing.T) {
	s := newScene(t)
	tr := NewManualTracker()
	tr.Set(Camera, mgl64.Vec3{0, 1.5, 0})
	s.opts.Tracker = tr
	l := s.loop(t)

	// never tracked: debug panel
	l.Tick()
	assert.Equal(t, l.Params().RightHand(), s.target(1, joints.RightHand))

	tr.Set(RightController, mgl64.Vec3{0.5, 1.5, 0})
	l.Tick()
	want := mgl64.Vec3{1, 1, 0}
	assert.True(t, s.target(1, joints.RightHand).ApproxEqual(want))

	// lost tracking: last known
	tr.Forget(RightController)
	require.NoError(t, l.Params().Set("rightHandX", -3))
	l.Tick()
	assert.True(t, s.target(1, joints.RightHand).ApproxEqual(want))
}

func TestDebugTargetsFollowParams(t *testing.T) {
	s := newScene(t)
	l := s.loop(t)
	require.False(t, l.Live())

	p := l.Params()
	require.NoError(t, p.Set("headX", 1))
	require.NoError(t, p.Set("headZ", -0.5))
	require.NoError(t, p.Set("leftHandY", 1.1))
	l.Tick()

	assert.Equal(t, p.Head(), s.target(1, joints.Head))
	assert.Equal(t, p.LeftHand(), s.target(1, joints.LeftHand))
	assert.True(t, s.target(1, joints.LeftFoot).ApproxEqual(mgl64.Vec3{1 - DefaultFootOffset, 0, -0.5}))
	assert.True(t, s.target(1, joints.RightFoot).ApproxEqual(mgl64.Vec3{1 + DefaultFootOffset, 0, -0.5}))
}

func TestDebugStanceMatchesLiveStance(t *testing.T) {
	s := newScene(t)
	// a floor drive on the smaller partner steps as wide as the leader's
	s.opts.Drives = []Drive{
		{Rig: 2, Joint: joints.LeftFoot, Source: SourceCamera, Offset: mgl64.Vec3{-DefaultFootOffset, 0, 0}, Floor: true},
	}
	l := s.loop(t)
	p := l.Params()
	require.NoError(t, p.Set("headX", 0))
	require.NoError(t, p.Set("headZ", 0))
	l.Tick()
	assert.InDelta(t, -0.25, s.target(2, joints.LeftFoot).X(), 1e-12)
	assert.Equal(t, 0.0, s.target(2, joints.LeftFoot).Y())

	for _, d := range BasicTurnDrives(1, 2) {
		if d.Floor {
			assert.Equal(t, DefaultFootOffset, math.Abs(d.Offset.X()), d.String())
		}
	}
}

func TestDebugRotationTurnsPartner(t *testing.T) {
	s := newScene(t)
	l := s.loop(t)
	l.Params().RotationPelvis2 = 0.5
	l.turnPartner()
	assert.InDelta(t, mgl64.RadToDeg(0.5), dance.YawDegrees(s.partner.UpperBodyOrientation()), 1e-9)

	c := s.joints.Constraint(s.partner.Key(joints.RightShoulder)).(*physics.ConeTwist)
	pivot, _ := s.partner.RightShoulderPivots()
	wa, _ := c.WorldPivots()
	assert.True(t, wa.ApproxEqualThreshold(s.partner.Body(rig.UpperBody).PointToWorld(pivot), 1e-9))
}

func TestMoveToward(t *testing.T) {
	t.Run("debug shifts sliders", func(t *testing.T) {
		s := newScene(t)
		log := logger.NewAt("")
		s.opts.Log = log
		l := s.loop(t)
		head := s.leader.Body(rig.Head).Position
		before := *l.Params()

		l.MoveToward(head.Add(mgl64.Vec3{1, 5, -2}))
		p := l.Params()
		assert.InDelta(t, before.HeadX+0.2, p.HeadX, 1e-12)
		assert.InDelta(t, before.HeadZ-0.4, p.HeadZ, 1e-12)
		assert.InDelta(t, before.LeftHandX+0.2, p.LeftHandX, 1e-12)
		assert.Equal(t, before.HeadY, p.HeadY)
		assert.Zero(t, l.Walk())
		assert.Len(t, log.Lines(), 1)
	})
	t.Run("live accumulates walk", func(t *testing.T) {
		s := newScene(t)
		tr := NewManualTracker()
		tr.Set(Camera, mgl64.Vec3{0, 1, 0})
		s.opts.Tracker = tr
		l := s.loop(t)
		head := s.leader.Body(rig.Head).Position

		l.MoveToward(head.Add(mgl64.Vec3{1, 0, 0}))
		l.MoveToward(head.Add(mgl64.Vec3{1, 0, 0}))
		assert.True(t, l.Walk().ApproxEqual(mgl64.Vec3{0.4, 0, 0}))
		l.Tick()
		assert.True(t, s.target(1, joints.Head).ApproxEqual(mgl64.Vec3{0.4, 2, 0}))
	})
}

func TestReleaseThroughLoop(t *testing.T) {
	s := newScene(t)
	l := s.loop(t)
	s.partner.Body(rig.LeftHand).SetPosition(s.leader.Body(rig.LeftHand).Position)
	l.Holder().Update()
	left, _ := l.Holder().Holding()
	require.True(t, left)

	l.ReleaseLeftHand()
	l.ReleaseRightHand()
	left, right := l.Holder().Released()
	assert.True(t, left)
	assert.True(t, right)
	assert.False(t, s.joints.Has(s.partner.Key(joints.LeftHandHold)))
}

func TestLiveButtonReleasesHold(t *testing.T) {
	s := newScene(t)
	tr := NewManualTracker()
	s.opts.Tracker = tr
	l := s.loop(t)
	s.partner.Body(rig.RightHand).SetPosition(s.leader.Body(rig.RightHand).Position)
	l.Holder().Update()
	_, right := l.Holder().Holding()
	require.True(t, right)

	tr.Press(RightController, true)
	l.Tick()
	_, released := l.Holder().Released()
	assert.True(t, released)
}

func TestTickAdvancesTimeline(t *testing.T) {
	s := newScene(t)
	tl := timeline.New()
	var at []int
	var l *Loop
	tl.At(0, func() { at = append(at, l.Ticks()) })
	tl.At(timeline.Seconds(10*dt)+time.Microsecond, func() { at = append(at, l.Ticks()) })
	s.opts.Timeline = tl
	l, err := NewLoop(s.opts)
	require.NoError(t, err)

	for _i := 0; _i < 12; _i++ {
		l.Tick()
	}
	assert.Equal(t, []int{0, 10}, at)
	assert.Same(t, tl, l.Timeline())
}

func TestTimelineKeepsPaceWithWorldTime(t *testing.T) {
	s := newScene(t)
	tl := timeline.New()
	fired := -1
	var l *Loop
	tl.At(timeline.Seconds(0.5), func() { fired = l.Ticks() })
	s.opts.Timeline = tl
	l, err := NewLoop(s.opts)
	require.NoError(t, err)

	for _i := 0; _i < 90; _i++ {
		l.Tick()
	}
	// the 90th tick of 1/180 s reaches 0.5 s
	assert.Equal(t, 89, fired)
	assert.Equal(t, timeline.Seconds(0.5), tl.Now())
	assert.InDelta(t, 0.5, s.world.Time(), 1e-9)
}

func TestLoopStaysFinite(t *testing.T) {
	s := newScene(t)
	l := s.loop(t)
	for _i := 0; _i < 180; _i++ {
		l.Tick()
	}
	for _, b := range s.world.Bodies() {
		assert.False(t, math.IsNaN(b.Position.Len()), b.Name)
		assert.Less(t, b.Position.Len(), 100.0, b.Name)
	}
	v, ok := s.opts.Binder.VisualFor(s.leader.Body(rig.Head))
	require.True(t, ok)
	assert.Equal(t, s.leader.Body(rig.Head).Position, v.Position)
}

func TestParams(t *testing.T) {
	s := newScene(t)
	p := NewDebugParams(s.leader, s.partner)
	assert.Equal(t, 2.0, p.HeadY, "clamped to the slider range")
	assert.InDelta(t, s.leader.Body(rig.LeftHand).Position.X(), p.LeftHandX, 1e-12)
	assert.Zero(t, p.RotationPelvis2)

	require.NoError(t, p.Set("headX", 10))
	assert.Equal(t, 4.0, p.HeadX)
	require.NoError(t, p.Set("rotationPelvis2", -7))
	assert.Equal(t, -2*math.Pi, p.RotationPelvis2)
	v, err := p.Get("headX")
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)

	assert.ErrorIs(t, p.Set("tail", 1), ErrUnknownParam)
	_, err = p.Get("tail")
	assert.ErrorIs(t, err, ErrUnknownParam)
	assert.Len(t, ParamNames(), 10)
}

func TestSources(t *testing.T) {
	for _, s := range []Source{SourceCamera, SourceLeftController, SourceRightController, SourceHeadInitial, SourceDanceLeftFoot, SourceDanceRightFoot} {
		got, err := ParseSource(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseSource("tail")
	assert.Error(t, err)
	assert.Equal(t, "head2 <- head_initial", Drive{Rig: 2, Joint: joints.Head, Source: SourceHeadInitial}.String())
	assert.Equal(t, "right_controller", RightController.String())
}
