package joints

import "strconv"

// Name identifies a joint of a rig. Only these names exist, so a misspelt joint is a compile error.
type Name int

const (
	// Pointer targets driven by input.
	Head Name = iota
	LeftHand
	RightHand
	LeftFoot
	RightFoot

	// Hand-to-hand holds between two rigs, keyed by the partner's hand.
	LeftHandHold
	RightHandHold

	// Anatomical cone-twist joints.
	Neck
	LeftKnee
	RightKnee
	LeftHip
	RightHip
	Spine
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
)

var names = [...]string{
	Head:          "head",
	LeftHand:      "leftHand",
	RightHand:     "rightHand",
	LeftFoot:      "leftFoot",
	RightFoot:     "rightFoot",
	LeftHandHold:  "leftHandHold",
	RightHandHold: "rightHandHold",
	Neck:          "neck",
	LeftKnee:      "leftKnee",
	RightKnee:     "rightKnee",
	LeftHip:       "leftHip",
	RightHip:      "rightHip",
	Spine:         "spine",
	LeftShoulder:  "leftShoulder",
	RightShoulder: "rightShoulder",
	LeftElbow:     "leftElbow",
	RightElbow:    "rightElbow",
	LeftWrist:     "leftWrist",
	RightWrist:    "rightWrist",
}

func (n Name) String() string {
	if n < 0 || int(n) >= len(names) {
		return "joint(" + strconv.Itoa(int(n)) + ")"
	}
	return names[n]
}

// ParseName returns the Name with the given string form.
func ParseName(s string) (Name, bool) {
	for i, v := range names {
		if v == s {
			return Name(i), true
		}
	}
	return 0, false
}

// Key addresses one joint of one rig. Rigs are numbered from 1.
type Key struct {
	Rig  int
	Name Name
}

// K is shorthand for Key{rig, name}.
func K(rig int, name Name) Key {
	return Key{Rig: rig, Name: name}
}

// String renders the key the way the demo panels name joints: "head" for rig 1, "head2" for rig 2.
func (k Key) String() string {
	if k.Rig <= 1 {
		return k.Name.String()
	}
	return k.Name.String() + strconv.Itoa(k.Rig)
}
