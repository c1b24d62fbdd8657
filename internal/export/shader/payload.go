package shader

import (
	"github.com/Faultbox/export3dy/pkg/formats"
	"github.com/Faultbox/export3dy/pkg/scene"
)

// Payload is the kind specific data of a concrete node. The implementations
// below are the complete set.
type Payload interface {
	payload()
}

// ImagePayload belongs to TEX_IMAGE and TEX_ENVIRONMENT nodes.
type ImagePayload struct {
	Image         string
	Interpolation string
	Extension     string
}

// MappingPayload belongs to MAPPING nodes.
type MappingPayload struct {
	Translation, Rotation, Scale [3]float32
}

// MixPayload belongs to MIX_RGB nodes.
type MixPayload struct {
	BlendType string
	Clamp     bool
}

// MathPayload belongs to MATH nodes.
type MathPayload struct {
	Operation string
	Clamp     bool
}

// NormalMapPayload belongs to NORMAL_MAP nodes.
type NormalMapPayload struct {
	Space string
}

// RampPayload belongs to VALTORGB nodes and is baked into a lookup table.
type RampPayload struct {
	Ramp scene.ColorRamp
}

// CurvesPayload belongs to CURVE_RGB nodes and is baked into three lookup
// tables.
type CurvesPayload struct {
	Mapping scene.CurveMapping
}

func (ImagePayload) payload()     {}
func (MappingPayload) payload()   {}
func (MixPayload) payload()       {}
func (MathPayload) payload()      {}
func (NormalMapPayload) payload() {}
func (RampPayload) payload()      {}
func (CurvesPayload) payload()    {}

// payloadOf extracts the payload of a node. Kinds without kind specific
// data return nil.
func payloadOf(kind Kind, n *scene.Node) Payload {
	switch kind {
	case TexImage, TexEnvironment:
		return ImagePayload{Image: n.Image, Interpolation: n.Interpolation, Extension: n.Extension}
	case Mapping:
		p := MappingPayload{Scale: [3]float32{1, 1, 1}}
		if n.Transform != nil {
			p.Translation = n.Transform.Translation
			p.Rotation = n.Transform.Rotation
			p.Scale = n.Transform.Scale
		}
		return p
	case MixRGB:
		return MixPayload{BlendType: n.BlendType, Clamp: n.UseClamp}
	case Math:
		return MathPayload{Operation: n.Operation, Clamp: n.UseClamp}
	case NormalMap:
		return NormalMapPayload{Space: n.Space}
	case ColorRamp:
		var p RampPayload
		if n.ColorRamp != nil {
			p.Ramp = *n.ColorRamp
		}
		return p
	case CurveRGB:
		var p CurvesPayload
		if n.Curves != nil {
			p.Mapping = *n.Curves
		}
		return p
	case OutputMaterial, BsdfDiffuse, BsdfGlossy, BsdfTransparent, BsdfPrincipled,
		Emission, MixShader, AddShader, TexCoord, UVMap, Bump, RGB, Value,
		Fresnel, LayerWeight, Invert, Gamma,
		Group, GroupInput, GroupOutput, Reroute:
		return nil
	}
	return nil
}

// describe copies the properties of a payload that need no baking onto the
// output node.
func describe(p Payload, out *formats.ShaderNode) {
	switch p := p.(type) {
	case ImagePayload:
		out.Image = p.Image
		out.Interpolation = p.Interpolation
		out.Extension = p.Extension
	case MappingPayload:
		out.Mapping = &formats.Mapping{Translation: p.Translation, Rotation: p.Rotation, Scale: p.Scale}
	case MixPayload:
		out.BlendType = p.BlendType
		out.UseClamp = p.Clamp
	case MathPayload:
		out.Operation = p.Operation
		out.UseClamp = p.Clamp
	case NormalMapPayload:
		out.Space = p.Space
	case RampPayload, CurvesPayload, nil:
	}
}
