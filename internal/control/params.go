package control

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"ragdoll-rig/internal/dance"
	"ragdoll-rig/internal/rig"
)

// ErrUnknownParam is returned for a slider name the debug panel does not have.
var ErrUnknownParam = errors.New("unknown debug parameter")

// DebugParams are the debug panel sliders. They drive the leader when there is no tracked input.
type DebugParams struct {
	HeadX, HeadY, HeadZ                float64
	LeftHandX, LeftHandY, LeftHandZ    float64
	RightHandX, RightHandY, RightHandZ float64
	// RotationPelvis2 turns the partner's upper body about +Y, in radians.
	RotationPelvis2 float64
}

type slider struct {
	min, max float64
	field    func(p *DebugParams) *float64
}

var sliders = map[string]slider{
	"headX":           {-4, 4, func(p *DebugParams) *float64 { return &p.HeadX }},
	"headY":           {0, 2, func(p *DebugParams) *float64 { return &p.HeadY }},
	"headZ":           {-4, 4, func(p *DebugParams) *float64 { return &p.HeadZ }},
	"leftHandX":       {-4, 4, func(p *DebugParams) *float64 { return &p.LeftHandX }},
	"leftHandY":       {0, 2, func(p *DebugParams) *float64 { return &p.LeftHandY }},
	"leftHandZ":       {-4, 4, func(p *DebugParams) *float64 { return &p.LeftHandZ }},
	"rightHandX":      {-4, 4, func(p *DebugParams) *float64 { return &p.RightHandX }},
	"rightHandY":      {0, 2, func(p *DebugParams) *float64 { return &p.RightHandY }},
	"rightHandZ":      {-4, 4, func(p *DebugParams) *float64 { return &p.RightHandZ }},
	"rotationPelvis2": {-2 * math.Pi, 2 * math.Pi, func(p *DebugParams) *float64 { return &p.RotationPelvis2 }},
}

var axes = [3]string{"X", "Y", "Z"}

// NewDebugParams starts the sliders at the leader's current head and hands and at the
// partner's current upper body turn. partner may be nil.
func NewDebugParams(leader, partner *rig.Rig) *DebugParams {
	p := &DebugParams{}
	if leader != nil {
		p.setVec("head", leader.Body(rig.Head).Position)
		p.setVec("leftHand", leader.Body(rig.LeftHand).Position)
		p.setVec("rightHand", leader.Body(rig.RightHand).Position)
	}
	if partner != nil {
		p.RotationPelvis2 = mgl64.DegToRad(dance.YawDegrees(partner.UpperBodyOrientation()))
	}
	return p
}

func (p *DebugParams) setVec(prefix string, v mgl64.Vec3) {
	for i, axis := range axes {
		s := sliders[prefix+axis]
		*s.field(p) = mgl64.Clamp(v[i], s.min, s.max)
	}
}

// Set moves slider name to v, clamped to the slider range.
func (p *DebugParams) Set(name string, v float64) error {
	s, ok := sliders[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	*s.field(p) = mgl64.Clamp(v, s.min, s.max)
	return nil
}

// Get returns the value of slider name.
func (p *DebugParams) Get(name string) (float64, error) {
	s, ok := sliders[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return *s.field(p), nil
}

// Shift moves the head and both hands sliders by d on the floor plane.
func (p *DebugParams) Shift(d mgl64.Vec3) {
	for _, prefix := range []string{"head", "leftHand", "rightHand"} {
		for _, i := range []int{0, 2} {
			name := prefix + axes[i]
			v, _ := p.Get(name)
			_ = p.Set(name, v+d[i])
		}
	}
}

func (p *DebugParams) Head() mgl64.Vec3      { return mgl64.Vec3{p.HeadX, p.HeadY, p.HeadZ} }
func (p *DebugParams) LeftHand() mgl64.Vec3  { return mgl64.Vec3{p.LeftHandX, p.LeftHandY, p.LeftHandZ} }
func (p *DebugParams) RightHand() mgl64.Vec3 { return mgl64.Vec3{p.RightHandX, p.RightHandY, p.RightHandZ} }

// ParamNames lists the slider names in sorted order.
func ParamNames() []string {
	out := make([]string, 0, len(sliders))
	for k := range sliders {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
