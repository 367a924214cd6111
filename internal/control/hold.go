package control

import (
	"ragdoll-rig/internal/joints"
	"ragdoll-rig/internal/logger"
	"ragdoll-rig/internal/rig"
)

const (
	// DefaultHoldDistance is how close two hands must come to take hold.
	DefaultHoldDistance = 0.3
	holdMaxForce        = 180
)

// HandHolder attaches the partner's hands to the leader's hands when they come close and lets
// them go on release. A released hand takes hold again only after it has left the hold radius
// of both leader hands and come back.
type HandHolder struct {
	joints  *joints.Manager
	leader  *rig.Rig
	partner *rig.Rig
	log     *logger.Logger

	Distance float64

	leftReleased  bool
	rightReleased bool

	// partner hand, leader hand
	holdingLL, holdingLR bool
	holdingRL, holdingRR bool
}

// NewHandHolder returns a holder for the two rigs. A distance <= 0 uses DefaultHoldDistance.
func NewHandHolder(m *joints.Manager, leader, partner *rig.Rig, distance float64, log *logger.Logger) *HandHolder {
	if distance <= 0 {
		distance = DefaultHoldDistance
	}
	return &HandHolder{joints: m, leader: leader, partner: partner, Distance: distance, log: log}
}

func (h *HandHolder) leftKey() joints.Key  { return h.partner.Key(joints.LeftHandHold) }
func (h *HandHolder) rightKey() joints.Key { return h.partner.Key(joints.RightHandHold) }

func (h *HandHolder) dist(a, b rig.Part, other *rig.Rig) float64 {
	return h.leader.Body(a).Position.Sub(other.Body(b).Position).Len()
}

// Update takes hold with any free partner hand that is close to a leader hand. The leader's
// left hand is tried first.
func (h *HandHolder) Update() {
	t := h.Distance
	p := h.partner

	if h.leftReleased && h.dist(rig.LeftHand, rig.LeftHand, p) > t && h.dist(rig.RightHand, rig.LeftHand, p) > t {
		h.leftReleased = false
	}
	if !h.leftReleased && !h.joints.Has(h.leftKey()) {
		switch {
		case h.dist(rig.LeftHand, rig.LeftHand, p) < t:
			h.hold(h.leftKey(), rig.LeftHand, rig.LeftHand)
			h.holdingLL = true
		case h.dist(rig.RightHand, rig.LeftHand, p) < t:
			h.hold(h.leftKey(), rig.LeftHand, rig.RightHand)
			h.holdingLR = true
		}
	}

	if h.rightReleased && h.dist(rig.LeftHand, rig.RightHand, p) > t && h.dist(rig.RightHand, rig.RightHand, p) > t {
		h.rightReleased = false
	}
	if !h.rightReleased && !h.joints.Has(h.rightKey()) {
		switch {
		case h.dist(rig.LeftHand, rig.RightHand, p) < t:
			h.hold(h.rightKey(), rig.RightHand, rig.LeftHand)
			h.holdingRL = true
		case h.dist(rig.RightHand, rig.RightHand, p) < t:
			h.hold(h.rightKey(), rig.RightHand, rig.RightHand)
			h.holdingRR = true
		}
	}
}

func (h *HandHolder) hold(key joints.Key, partnerHand, leaderHand rig.Part) {
	h.joints.AddConstraintToBody(key, h.partner.Body(partnerHand), h.leader.Body(leaderHand), holdMaxForce)
	h.log.Logf("hold %s: %s takes %s", key, partnerHand, leaderHand)
}

// HandleButtons releases the partner hand held by the leader hand whose controller is pressed.
func (h *HandHolder) HandleButtons(leftPressed, rightPressed bool) {
	if !h.rightReleased && ((rightPressed && h.holdingRR) || (leftPressed && h.holdingRL)) {
		h.ReleaseRight()
	}
	if !h.leftReleased && ((rightPressed && h.holdingLR) || (leftPressed && h.holdingLL)) {
		h.ReleaseLeft()
	}
}

// ReleaseLeft lets go of the partner's left hand.
func (h *HandHolder) ReleaseLeft() {
	h.joints.RemoveJointConstraint(h.leftKey())
	h.leftReleased = true
	h.holdingLL, h.holdingLR = false, false
	h.log.Logf("hold %s released", h.leftKey())
}

// ReleaseRight lets go of the partner's right hand.
func (h *HandHolder) ReleaseRight() {
	h.joints.RemoveJointConstraint(h.rightKey())
	h.rightReleased = true
	h.holdingRL, h.holdingRR = false, false
	h.log.Logf("hold %s released", h.rightKey())
}

// Holding reports which partner hands are held.
func (h *HandHolder) Holding() (left, right bool) {
	return h.joints.Has(h.leftKey()), h.joints.Has(h.rightKey())
}

// Released reports which partner hands are in the released state.
func (h *HandHolder) Released() (left, right bool) {
	return h.leftReleased, h.rightReleased
}
