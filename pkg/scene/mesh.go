package scene

// Mesh is evaluated polygon data, with modifiers already applied by the host.
type Mesh struct {
	Name     string    `yaml:"name"`
	Vertices []Vertex  `yaml:"vertices"`
	Polygons []Polygon `yaml:"polygons"`

	// UV is the active UV layer, one entry per loop. Loops are the polygon
	// corners in polygon order. Empty when the mesh has no UV layer.
	UV [][2]float32 `yaml:"uv"`

	// VertexGroups maps a group id (the slice index) to its name.
	VertexGroups []string `yaml:"vertex_groups"`
}

// Vertex is a mesh vertex with its smooth normal and group memberships.
type Vertex struct {
	Co     [3]float32    `yaml:"co"`
	Normal [3]float32    `yaml:"normal"`
	Groups []GroupWeight `yaml:"groups"`
}

// GroupWeight is the membership of a vertex in a vertex group.
type GroupWeight struct {
	Group  int     `yaml:"group"`
	Weight float32 `yaml:"weight"`
}

// Polygon is a face of the mesh.
type Polygon struct {
	Vertices []int      `yaml:"vertices"`
	Smooth   bool       `yaml:"use_smooth"`
	Normal   [3]float32 `yaml:"normal"`
}

// LoopCount returns the total number of polygon corners.
func (m *Mesh) LoopCount() int {
	n := 0
	for i := range m.Polygons {
		n += len(m.Polygons[i].Vertices)
	}
	return n
}

// HasUV reports whether the mesh carries a UV layer covering every loop.
func (m *Mesh) HasUV() bool {
	return len(m.UV) > 0 && len(m.UV) >= m.LoopCount()
}
