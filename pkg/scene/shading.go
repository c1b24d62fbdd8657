package scene

// NodeTree is a shading graph: a material tree or a reusable node group.
type NodeTree struct {
	Name  string `yaml:"name"`
	Nodes []Node `yaml:"nodes"`
	Links []Link `yaml:"links"`
}

// Node is a shading node as authored. Only the properties relevant to its
// Type are set.
type Node struct {
	Name    string   `yaml:"name"`
	Type    string   `yaml:"type"`
	Inputs  []Socket `yaml:"inputs"`
	Outputs []Socket `yaml:"outputs"`

	Tree string `yaml:"node_tree"` // GROUP

	Image         string `yaml:"image"` // TEX_IMAGE, TEX_ENVIRONMENT
	Interpolation string `yaml:"interpolation"`
	Extension     string `yaml:"extension"`

	BlendType string `yaml:"blend_type"` // MIX_RGB
	Operation string `yaml:"operation"`  // MATH
	UseClamp  bool   `yaml:"use_clamp"`
	Space     string `yaml:"space"` // NORMAL_MAP

	Transform *MappingTransform `yaml:"transform"`  // MAPPING
	ColorRamp *ColorRamp        `yaml:"color_ramp"` // VALTORGB
	Curves    *CurveMapping     `yaml:"mapping"`    // CURVE_RGB
}

// Socket is a node input or output.
type Socket struct {
	Name       string `yaml:"name"`
	Identifier string `yaml:"identifier"`
	Default    *Value `yaml:"default_value"`
}

// ID returns the identifier, falling back to the display name.
func (s *Socket) ID() string {
	if s.Identifier != "" {
		return s.Identifier
	}
	return s.Name
}

// Link connects an output socket to an input socket.
type Link struct {
	FromNode   string `yaml:"from_node"`
	FromSocket string `yaml:"from_socket"`
	ToNode     string `yaml:"to_node"`
	ToSocket   string `yaml:"to_socket"`
	Muted      bool   `yaml:"is_muted"`
}

// MappingTransform is the texture-space transform of a MAPPING node.
type MappingTransform struct {
	Translation [3]float32 `yaml:"translation"`
	Rotation    [3]float32 `yaml:"rotation"`
	Scale       [3]float32 `yaml:"scale"`
}

// ColorRamp is a piecewise color gradient over [0, 1].
type ColorRamp struct {
	Interpolation string        `yaml:"interpolation"`
	Elements      []RampElement `yaml:"elements"`
}

// RampElement is a color stop.
type RampElement struct {
	Position float32    `yaml:"position"`
	Color    [4]float32 `yaml:"color"`
}

// CurveMapping holds the four curves of an RGB curves node: R, G, B and the
// combined (master) curve applied before them.
type CurveMapping struct {
	Curves []Curve `yaml:"curves"`
}

// Curve is a 2D curve defined by control points sorted by X.
type Curve struct {
	Points []CurvePoint `yaml:"points"`
}

// CurvePoint is a curve control point.
type CurvePoint struct {
	Location   [2]float32 `yaml:"location"`
	HandleType string     `yaml:"handle_type"` // AUTO or VECTOR
}

// Input returns the input socket with the given identifier.
func (n *Node) Input(id string) (*Socket, bool) {
	for i := range n.Inputs {
		if n.Inputs[i].ID() == id {
			return &n.Inputs[i], true
		}
	}
	return nil, false
}

// Node returns the node with the given name.
func (t *NodeTree) Node(name string) (*Node, bool) {
	for i := range t.Nodes {
		if t.Nodes[i].Name == name {
			return &t.Nodes[i], true
		}
	}
	return nil, false
}

// LinkTo returns the enabled link feeding the given input, if any.
// An input accepts at most one link.
func (t *NodeTree) LinkTo(node, socket string) (*Link, bool) {
	for i := range t.Links {
		l := &t.Links[i]
		if !l.Muted && l.ToNode == node && l.ToSocket == socket {
			return l, true
		}
	}
	return nil, false
}
