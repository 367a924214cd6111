package control

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"ragdoll-rig/internal/dance"
	"ragdoll-rig/internal/joints"
	"ragdoll-rig/internal/logger"
	"ragdoll-rig/internal/physics"
	"ragdoll-rig/internal/rig"
	"ragdoll-rig/internal/timeline"
	"ragdoll-rig/internal/visual"
)

const (
	// DefaultTrackingGain scales tracked positions into rig space on top of the rig scale.
	DefaultTrackingGain = 2
	// DefaultFootOffset is the stance half width of floor drives in debug mode. It matches the
	// lateral offset of the live foot drives and does not scale with the rig.
	DefaultFootOffset = 0.25
	walkFactor        = 0.2
)

// Options wires a Loop. World, Joints and at least one rig are required.
type Options struct {
	World  *physics.World
	Joints *joints.Manager
	Binder *visual.Binder
	// Leader is the rig the debug panel drives. Partner is optional.
	Leader  *rig.Rig
	Partner *rig.Rig
	Drives  []Drive
	Dance   *dance.Manager
	Holder  *HandHolder
	// Tracker is nil when there is no tracked session; the loop then runs from the debug panel.
	Tracker  Tracker
	Params   *DebugParams
	Timeline *timeline.Timeline

	DT           float64
	TrackingGain float64
	FootOffset   float64
	Log          *logger.Logger
}

// Loop runs one simulation tick at a time: dance feet, hand holds, driven targets, physics
// step and visual sync.
type Loop struct {
	opts Options
	rigs map[int]*rig.Rig

	walk  mgl64.Vec3
	last  map[int]mgl64.Vec3
	ticks int
}

// NewLoop validates opts and returns a loop.
func NewLoop(opts Options) (*Loop, error) {
	if opts.World == nil || opts.Joints == nil {
		return nil, errors.New("control: world and joints are required")
	}
	if opts.Leader == nil {
		return nil, errors.New("control: leader rig is required")
	}
	if !(opts.DT > 0) {
		return nil, fmt.Errorf("control: dt must be > 0, got %v", opts.DT)
	}
	if opts.TrackingGain == 0 {
		opts.TrackingGain = DefaultTrackingGain
	}
	if opts.FootOffset == 0 {
		opts.FootOffset = DefaultFootOffset
	}
	if opts.Params == nil {
		opts.Params = NewDebugParams(opts.Leader, opts.Partner)
	}

	l := &Loop{opts: opts, rigs: map[int]*rig.Rig{opts.Leader.ID(): opts.Leader}, last: make(map[int]mgl64.Vec3)}
	if opts.Partner != nil {
		l.rigs[opts.Partner.ID()] = opts.Partner
	}
	for _, d := range opts.Drives {
		r, ok := l.rigs[d.Rig]
		if !ok {
			return nil, fmt.Errorf("control: drive %s: no rig %d", d, d.Rig)
		}
		if _, ok := r.DrivenBody(d.Joint); !ok {
			return nil, fmt.Errorf("control: drive %s: %s is not a pointer joint", d, d.Joint)
		}
		if (d.Source == SourceDanceLeftFoot || d.Source == SourceDanceRightFoot) && opts.Dance == nil {
			return nil, fmt.Errorf("control: drive %s needs a dance manager", d)
		}
	}
	return l, nil
}

// Live reports whether targets come from tracked input.
func (l *Loop) Live() bool { return l.opts.Tracker != nil }

// SetTracker switches between tracked input and the debug panel. nil selects the panel.
func (l *Loop) SetTracker(t Tracker) { l.opts.Tracker = t }

// Params returns the debug panel.
func (l *Loop) Params() *DebugParams { return l.opts.Params }

func (l *Loop) Dance() *dance.Manager        { return l.opts.Dance }
func (l *Loop) Holder() *HandHolder          { return l.opts.Holder }
func (l *Loop) Timeline() *timeline.Timeline { return l.opts.Timeline }
func (l *Loop) Leader() *rig.Rig             { return l.opts.Leader }
func (l *Loop) Partner() *rig.Rig            { return l.opts.Partner }
func (l *Loop) DT() float64                  { return l.opts.DT }

// Ticks returns the number of completed ticks.
func (l *Loop) Ticks() int { return l.ticks }

// Walk returns the accumulated walking offset applied to tracked targets.
func (l *Loop) Walk() mgl64.Vec3 { return l.walk }

// Tick advances the simulation by one dt.
func (l *Loop) Tick() {
	o := l.opts
	if o.Timeline != nil {
		// step by the difference of rounded totals so timeline time stays equal to ticks*dt
		next := timeline.Seconds(float64(l.ticks+1) * o.DT)
		o.Timeline.Advance(next - timeline.Seconds(float64(l.ticks)*o.DT))
	}
	if o.Dance != nil {
		o.Dance.HandleBasicTurn()
	}

	live := l.Live()
	if o.Holder != nil {
		if live {
			o.Holder.HandleButtons(o.Tracker.Pressed(LeftController), o.Tracker.Pressed(RightController))
		}
		o.Holder.Update()
	}
	for i, d := range o.Drives {
		if p, ok := l.target(i, d, live); ok {
			o.Joints.MoveJointToPoint(joints.K(d.Rig, d.Joint), p)
		}
	}
	if !live && o.Partner != nil {
		l.turnPartner()
	}

	o.World.Step(o.DT)
	if o.Binder != nil {
		o.Binder.SyncAll()
	}
	l.ticks++
}

// turnPartner orients the partner's upper body from the rotation slider.
func (l *Loop) turnPartner() {
	p := l.opts.Partner
	q := mgl64.QuatRotate(l.opts.Params.RotationPelvis2, mgl64.Vec3{0, 1, 0})
	p.Body(rig.UpperBody).SetOrientation(q)
	l.opts.Joints.Refresh(p.Key(joints.RightShoulder))
	l.opts.Joints.Refresh(p.Key(joints.LeftShoulder))
}

// target computes the target of drive i. Input-driven drives without a pose this tick keep their
// last target, or take the debug panel value if they never had one.
func (l *Loop) target(i int, d Drive, live bool) (mgl64.Vec3, bool) {
	r := l.rigs[d.Rig]
	switch d.Source {
	case SourceHeadInitial:
		return r.HeadInitialPosition().Add(d.Offset), true
	case SourceDanceLeftFoot:
		return l.opts.Dance.LeftFootPosition(), true
	case SourceDanceRightFoot:
		return l.opts.Dance.RightFootPosition(), true
	}

	dev, ok := d.Source.device()
	if !ok {
		return mgl64.Vec3{}, false
	}
	if live {
		if pose, ok := l.opts.Tracker.Pose(dev); ok {
			p := pose.Position.Add(d.Offset).Mul(r.Scale() * l.opts.TrackingGain).Add(l.walk)
			if d.Floor {
				p[1] = 0
			}
			l.last[i] = p
			return p, true
		}
		if p, ok := l.last[i]; ok {
			return p, true
		}
	}
	return l.debugTarget(d, dev), true
}

func (l *Loop) debugTarget(d Drive, dev Device) mgl64.Vec3 {
	params := l.opts.Params
	var p mgl64.Vec3
	switch dev {
	case LeftController:
		p = params.LeftHand()
	case RightController:
		p = params.RightHand()
	default:
		p = params.Head()
	}
	if d.Floor {
		p[0] += sign(d.Offset.X()) * l.opts.FootOffset
		p[2] += sign(d.Offset.Z()) * l.opts.FootOffset
		p[1] = 0
	}
	return p
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// ReleaseLeftHand lets go of the partner's left hand.
func (l *Loop) ReleaseLeftHand() {
	if l.opts.Holder != nil {
		l.opts.Holder.ReleaseLeft()
	}
}

// ReleaseRightHand lets go of the partner's right hand.
func (l *Loop) ReleaseRightHand() {
	if l.opts.Holder != nil {
		l.opts.Holder.ReleaseRight()
	}
}

// MoveToward takes one walking step from the leader's head toward point on the floor plane.
// With tracked input the step adds to the walking offset; otherwise it shifts the debug sliders.
func (l *Loop) MoveToward(point mgl64.Vec3) {
	head := l.opts.Leader.Body(rig.Head).Position
	step := point.Sub(head).Mul(walkFactor)
	step[1] = 0
	if math.IsNaN(step.Len()) {
		return
	}
	if l.Live() {
		l.walk = l.walk.Add(step)
	} else {
		l.opts.Params.Shift(step)
	}
	l.opts.Log.Logf("walk step (%.2f, %.2f)", step.X(), step.Z())
}
