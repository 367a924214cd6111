package rig

import "ragdoll-rig/internal/joints"

// Part names one body of a rig.
type Part int

const (
	LowerLeftLeg Part = iota
	LowerRightLeg
	UpperLeftLeg
	UpperRightLeg
	Pelvis
	UpperBody
	Head
	UpperLeftArm
	UpperRightArm
	LowerLeftArm
	LowerRightArm
	LeftHand
	RightHand

	partCount
)

// The lower legs double as feet: foot targets drive them.
const (
	LeftFoot  = LowerLeftLeg
	RightFoot = LowerRightLeg
)

var partNames = [partCount]string{
	LowerLeftLeg:  "lowerLeftLeg",
	LowerRightLeg: "lowerRightLeg",
	UpperLeftLeg:  "upperLeftLeg",
	UpperRightLeg: "upperRightLeg",
	Pelvis:        "pelvis",
	UpperBody:     "upperBody",
	Head:          "head",
	UpperLeftArm:  "upperLeftArm",
	UpperRightArm: "upperRightArm",
	LowerLeftArm:  "lowerLeftArm",
	LowerRightArm: "lowerRightArm",
	LeftHand:      "leftHand",
	RightHand:     "rightHand",
}

func (p Part) String() string {
	if p < 0 || p >= partCount {
		return "part?"
	}
	return partNames[p]
}

// Parts returns every part in construction order.
func Parts() []Part {
	out := make([]Part, partCount)
	for i := range out {
		out[i] = Part(i)
	}
	return out
}

// skeleton is the parent of each non-root part and the joint connecting them. Pelvis is the root.
var skeleton = map[Part]struct {
	parent Part
	joint  joints.Name
}{
	LowerLeftLeg:  {UpperLeftLeg, joints.LeftKnee},
	LowerRightLeg: {UpperRightLeg, joints.RightKnee},
	UpperLeftLeg:  {Pelvis, joints.LeftHip},
	UpperRightLeg: {Pelvis, joints.RightHip},
	UpperBody:     {Pelvis, joints.Spine},
	Head:          {UpperBody, joints.Neck},
	UpperLeftArm:  {UpperBody, joints.LeftShoulder},
	UpperRightArm: {UpperBody, joints.RightShoulder},
	LowerLeftArm:  {UpperLeftArm, joints.LeftElbow},
	LowerRightArm: {UpperRightArm, joints.RightElbow},
	LeftHand:      {LowerLeftArm, joints.LeftWrist},
	RightHand:     {LowerRightArm, joints.RightWrist},
}

// driven maps the pointer joint names to the part they pull.
var driven = map[joints.Name]Part{
	joints.Head:      Head,
	joints.LeftHand:  LeftHand,
	joints.RightHand: RightHand,
	joints.LeftFoot:  LeftFoot,
	joints.RightFoot: RightFoot,
}
