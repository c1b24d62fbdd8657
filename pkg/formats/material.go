package formats

import "github.com/Faultbox/export3dy/pkg/blob"

// Material is a flattened shading graph: node groups are inlined and no
// group or proxy node remains.
type Material struct {
	Name  string       `json:"Name" yaml:"Name"`
	Nodes []ShaderNode `json:"Nodes" yaml:"Nodes"`
}

// ShaderNode is a concrete node of a flattened graph. Name is the full path
// of the node through the groups that contained it, joined with "/".
// Only the properties relevant to Type are set.
type ShaderNode struct {
	Name   string      `json:"Name" yaml:"Name"`
	Type   string      `json:"Type" yaml:"Type"`
	Inputs []NodeInput `json:"Inputs" yaml:"Inputs"`

	Image         string `json:"Image,omitempty" yaml:"Image,omitempty"`
	Interpolation string `json:"Interpolation,omitempty" yaml:"Interpolation,omitempty"`
	Extension     string `json:"Extension,omitempty" yaml:"Extension,omitempty"`
	BlendType     string `json:"BlendType,omitempty" yaml:"BlendType,omitempty"`
	Operation     string `json:"Operation,omitempty" yaml:"Operation,omitempty"`
	UseClamp      bool   `json:"UseClamp,omitempty" yaml:"UseClamp,omitempty"`
	Space         string `json:"Space,omitempty" yaml:"Space,omitempty"`

	Mapping *Mapping `json:"Mapping,omitempty" yaml:"Mapping,omitempty"`

	// ColorRamp is the baked gradient: Samples interleaved R,G,B[,A] values.
	ColorRamp *LUT `json:"ColorRamp,omitempty" yaml:"ColorRamp,omitempty"`
	// Curves holds one baked table per color channel.
	Curves *CurveLUTs `json:"Curves,omitempty" yaml:"Curves,omitempty"`
}

// NodeInput is an input slot. Link is set when the slot is fed by another
// node of the same material; Default holds the literal value otherwise, and
// may be set alongside Link when the authored socket had one.
type NodeInput struct {
	Name    string    `json:"Name" yaml:"Name"`
	Link    *NodeLink `json:"Link" yaml:"Link"`
	Default *Value    `json:"Default,omitempty" yaml:"Default,omitempty"`
}

// NodeLink points to an output slot of a node in the same flattened graph.
type NodeLink struct {
	Node   string `json:"Node" yaml:"Node"`
	Output string `json:"Output" yaml:"Output"`
}

// Mapping is the texture coordinate transform of a MAPPING node.
type Mapping struct {
	Translation [3]float32 `json:"Translation" yaml:"Translation"`
	Rotation    [3]float32 `json:"Rotation" yaml:"Rotation"`
	Scale       [3]float32 `json:"Scale" yaml:"Scale"`
}

// LUTSamples is the resolution of every baked lookup table.
const LUTSamples = 256

// LUT is a baked lookup table stored in the blob.
type LUT struct {
	DataBlock  blob.Ref        `json:"DataBlock" yaml:"DataBlock"`
	Type       blob.ScalarType `json:"Type" yaml:"Type"`
	Components int             `json:"Components" yaml:"Components"`
	Samples    int             `json:"Samples" yaml:"Samples"`
}

// CurveLUTs are the three baked channel curves of a CURVE_RGB node, each
// already composed with the master curve.
type CurveLUTs struct {
	R LUT `json:"R" yaml:"R"`
	G LUT `json:"G" yaml:"G"`
	B LUT `json:"B" yaml:"B"`
}

// Node returns the flattened node with the given name.
func (m *Material) Node(name string) (*ShaderNode, bool) {
	for i := range m.Nodes {
		if m.Nodes[i].Name == name {
			return &m.Nodes[i], true
		}
	}
	return nil, false
}

// Input returns the input with the given name.
func (n *ShaderNode) Input(name string) (*NodeInput, bool) {
	for i := range n.Inputs {
		if n.Inputs[i].Name == name {
			return &n.Inputs[i], true
		}
	}
	return nil, false
}
