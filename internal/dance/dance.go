package dance

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"ragdoll-rig/internal/logger"
)

// State is the phase of the basic turn.
type State int

const (
	Basis State = iota
	RightTurn
	RightTurn2
	LeftTurn
	LeftTurn2
)

func (s State) String() string {
	switch s {
	case Basis:
		return "BASIS"
	case RightTurn:
		return "RIGHT_TURN"
	case RightTurn2:
		return "RIGHT_TURN2"
	case LeftTurn:
		return "LEFT_TURN"
	case LeftTurn2:
		return "LEFT_TURN2"
	}
	return "UNKNOWN"
}

// footOffsetFactor times the rig scale is the step length.
const footOffsetFactor = 0.2

// Body is the dancing rig as the manager reads it.
type Body interface {
	UpperBodyOrientation() mgl64.Quat
	PelvisOrientation() mgl64.Quat
	PelvisPosition() mgl64.Vec3
	HeadInitialPosition() mgl64.Vec3
	Scale() float64
}

// Manager places the feet of a dancing rig from the turn of its upper body.
type Manager struct {
	body Body
	log  *logger.Logger

	state         State
	previousState State
	previousAngle float64
	turnDegrees   float64
	// pelvis turn when the current right turn began
	pelvisOnTurnStart float64

	footOffset float64
	leftFoot   mgl64.Vec3
	rightFoot  mgl64.Vec3
}

// NewManager starts in BASIS with the feet on the floor either side of the pelvis.
func NewManager(body Body, log *logger.Logger) *Manager {
	off := body.Scale() * footOffsetFactor
	p := body.PelvisPosition()
	return &Manager{
		body:          body,
		log:           log,
		previousAngle: YawDegrees(body.UpperBodyOrientation()),
		footOffset:    off,
		leftFoot:      mgl64.Vec3{p.X() - off, 0, p.Z()},
		rightFoot:     mgl64.Vec3{p.X() + off, 0, p.Z()},
	}
}

// YawDegrees returns the rotation angle of q in degrees, in [0, 360]. The sign of q's Y
// component tells the direction.
func YawDegrees(q mgl64.Quat) float64 {
	q = q.Normalize()
	return mgl64.RadToDeg(2 * math.Acos(mgl64.Clamp(q.W, -1, 1)))
}

// State returns the current phase.
func (m *Manager) State() State { return m.state }

// LeftFootPosition returns the left foot target on the floor plane (y = 0).
func (m *Manager) LeftFootPosition() mgl64.Vec3 { return m.leftFoot }

// RightFootPosition returns the right foot target on the floor plane (y = 0).
func (m *Manager) RightFootPosition() mgl64.Vec3 { return m.rightFoot }

// TurnDegrees returns the upper body angle seen by the last HandleBasicTurn.
func (m *Manager) TurnDegrees() float64 { return m.turnDegrees }

// PelvisDegreesOnTurnStart returns the pelvis angle recorded when the last right turn began.
func (m *Manager) PelvisDegreesOnTurnStart() float64 { return m.pelvisOnTurnStart }

// head returns a point on the floor offset from the initial head position by dx, dz foot offsets.
func (m *Manager) head(dx, dz float64) mgl64.Vec3 {
	h := m.body.HeadInitialPosition()
	return mgl64.Vec3{h.X() + dx*m.footOffset, 0, h.Z() + dz*m.footOffset}
}

func between(v, lo, hi float64) bool {
	return v > lo && v < hi
}

// HandleBasicTurn reads the upper body turn and updates the state and foot targets.
// The buckets and rules are tuned against one dance figure.
func (m *Manager) HandleBasicTurn() {
	q := m.body.UpperBodyOrientation()
	angle := YawDegrees(q)
	pelvis := YawDegrees(m.body.PelvisOrientation())
	m.turnDegrees = angle
	y := q.Normalize().Y()

	if r := math.Mod(angle, 180); r < 10 || r > 170 {
		m.state = Basis
	}

	switch {
	case between(angle, 10, 45):
		if m.state == LeftTurn2 {
			m.rightFoot = m.head(1, 0)
		}

	case between(angle, 45, 90):
		switch {
		case angle > m.previousAngle:
			if m.state == Basis {
				if y < 0 {
					m.state = RightTurn
					m.pelvisOnTurnStart = pelvis
					m.rightFoot = m.head(0, 1)
				} else {
					m.state = LeftTurn
					m.rightFoot = m.head(0, -1)
				}
			}
		case m.state == LeftTurn2:
			m.leftFoot = m.head(-1, 0)
		case m.state == RightTurn2:
			m.rightFoot = m.head(1, 0)
		}

	case between(angle, 90, 135):
		switch m.state {
		case RightTurn, LeftTurn:
			m.leftFoot = m.head(1, 0)
		case RightTurn2:
			m.leftFoot = m.head(-1, 0)
		case LeftTurn2:
			m.rightFoot = m.head(0, 1)
		}

	case between(angle, 135, 170):
		if m.state == Basis {
			if y > 0 {
				m.state = RightTurn2
			} else {
				m.state = LeftTurn2
			}
		}
		switch m.state {
		case RightTurn2:
			m.rightFoot = m.head(0, -1)
		default:
			m.rightFoot = m.head(-1, 0)
		}

	case between(angle, 190, 225):
		if m.state == Basis {
			if y > 0 {
				m.state = LeftTurn
			} else {
				m.state = RightTurn
			}
		}
		switch m.state {
		case RightTurn:
			m.rightFoot = m.head(0, -1)
		case RightTurn2:
			m.rightFoot = m.head(-1, 0)
		default:
			m.leftFoot = m.head(1, 0)
		}

	case between(angle, 225, 270):
		switch m.state {
		case RightTurn:
			m.leftFoot = m.head(-1, 0)
		case RightTurn2:
			m.leftFoot = m.head(1, 0)
		case LeftTurn:
			m.rightFoot = m.head(0, 1)
		case LeftTurn2:
			m.rightFoot = m.head(0, -1)
		}

	case between(angle, 270, 315):
		switch m.state {
		case RightTurn:
			m.rightFoot = m.head(1, 0)
		case LeftTurn, LeftTurn2:
			m.leftFoot = m.head(-1, 0)
		case RightTurn2:
			m.rightFoot = m.head(0, 1)
		}

	case between(angle, 315, 350):
		if m.state == LeftTurn {
			m.rightFoot = m.head(1, 0)
		}
		if m.state == Basis {
			if y > 0 {
				m.state = RightTurn2
			} else {
				m.state = LeftTurn2
			}
		}
	}

	m.previousAngle = angle
	if m.state != m.previousState {
		m.previousState = m.state
		m.log.Logf("dance state: %s (upper body %.1f°)", m.state, angle)
	}
}
