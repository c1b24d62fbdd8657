package shader

// Kind is the type of a shading node. The set is closed: nodes of any other
// type are dropped during flattening.
type Kind string

const (
	OutputMaterial  Kind = "OUTPUT_MATERIAL"
	BsdfDiffuse     Kind = "BSDF_DIFFUSE"
	BsdfGlossy      Kind = "BSDF_GLOSSY"
	BsdfTransparent Kind = "BSDF_TRANSPARENT"
	BsdfPrincipled  Kind = "BSDF_PRINCIPLED"
	Emission        Kind = "EMISSION"
	MixShader       Kind = "MIX_SHADER"
	AddShader       Kind = "ADD_SHADER"
	TexImage        Kind = "TEX_IMAGE"
	TexEnvironment  Kind = "TEX_ENVIRONMENT"
	TexCoord        Kind = "TEX_COORD"
	UVMap           Kind = "UVMAP"
	Mapping         Kind = "MAPPING"
	NormalMap       Kind = "NORMAL_MAP"
	Bump            Kind = "BUMP"
	MixRGB          Kind = "MIX_RGB"
	Math            Kind = "MATH"
	RGB             Kind = "RGB"
	Value           Kind = "VALUE"
	Fresnel         Kind = "FRESNEL"
	LayerWeight     Kind = "LAYER_WEIGHT"
	Invert          Kind = "INVERT"
	Gamma           Kind = "GAMMA"
	ColorRamp       Kind = "VALTORGB"
	CurveRGB        Kind = "CURVE_RGB"

	// Structural kinds. They never appear in a flattened graph.
	Group       Kind = "GROUP"
	GroupInput  Kind = "GROUP_INPUT"
	GroupOutput Kind = "GROUP_OUTPUT"
	Reroute     Kind = "REROUTE"
)

var kinds = map[Kind]bool{
	OutputMaterial: true, BsdfDiffuse: true, BsdfGlossy: true, BsdfTransparent: true,
	BsdfPrincipled: true, Emission: true, MixShader: true, AddShader: true,
	TexImage: true, TexEnvironment: true, TexCoord: true, UVMap: true,
	Mapping: true, NormalMap: true, Bump: true, MixRGB: true, Math: true,
	RGB: true, Value: true, Fresnel: true, LayerWeight: true, Invert: true,
	Gamma: true, ColorRamp: true, CurveRGB: true,
	Group: true, GroupInput: true, GroupOutput: true, Reroute: true,
}

// ParseKind maps a node type name to its Kind.
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	return k, kinds[k]
}

// Structural reports whether nodes of this kind are eliminated by
// flattening.
func (k Kind) Structural() bool {
	switch k {
	case Group, GroupInput, GroupOutput, Reroute:
		return true
	}
	return false
}
