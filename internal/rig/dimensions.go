package rig

// Base segment sizes of a scale 1 rig, in world units.
const (
	baseShouldersDistance = 0.5
	baseUpperArmLength    = 0.45
	baseLowerArmLength    = 0.45
	baseUpperArmSize      = 0.14
	baseLowerArmSize      = 0.12
	baseNeckLength        = 0.1
	baseHandRadius        = 0.08
	baseHeadRadius        = 0.15
	basePelvisLength      = 0.4
	baseUpperLegLength    = 0.5
	baseUpperLegSize      = 0.15
	baseLowerLegSize      = 0.15
	baseLowerLegLength    = 0.5
	baseUpperBodyLength   = 0.6
)

// Dimensions are the anthropometric lengths of one rig, already multiplied by its scale.
type Dimensions struct {
	ShouldersDistance float64
	UpperArmLength    float64
	LowerArmLength    float64
	UpperArmSize      float64
	LowerArmSize      float64
	NeckLength        float64
	HandRadius        float64
	HeadRadius        float64
	PelvisLength      float64
	UpperLegLength    float64
	UpperLegSize      float64
	LowerLegSize      float64
	LowerLegLength    float64
	UpperBodyLength   float64
}

// DimensionsFor returns the segment sizes for scale.
func DimensionsFor(scale float64) Dimensions {
	return Dimensions{
		ShouldersDistance: baseShouldersDistance * scale,
		UpperArmLength:    baseUpperArmLength * scale,
		LowerArmLength:    baseLowerArmLength * scale,
		UpperArmSize:      baseUpperArmSize * scale,
		LowerArmSize:      baseLowerArmSize * scale,
		NeckLength:        baseNeckLength * scale,
		HandRadius:        baseHandRadius * scale,
		HeadRadius:        baseHeadRadius * scale,
		PelvisLength:      basePelvisLength * scale,
		UpperLegLength:    baseUpperLegLength * scale,
		UpperLegSize:      baseUpperLegSize * scale,
		LowerLegSize:      baseLowerLegSize * scale,
		LowerLegLength:    baseLowerLegLength * scale,
		UpperBodyLength:   baseUpperBodyLength * scale,
	}
}
