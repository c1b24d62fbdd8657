// Package formats defines the 3DY metadata document: the structured index
// that accompanies a binary blob and locates every typed array inside it.
package formats

import (
	"github.com/Faultbox/export3dy/pkg/blob"
)

// Matrix is a 4x4 affine transform serialized as its 3 upper rows, column by
// column, with the translation last.
type Matrix [12]float32

// Document is the root of a 3DY metadata document.
type Document struct {
	DataBlocksFile     DataBlocksFile     `json:"DataBlocksFile" yaml:"DataBlocksFile"`
	Skeletons          []Skeleton         `json:"Skeletons" yaml:"Skeletons"`
	Lights             []Light            `json:"Lights" yaml:"Lights"`
	Materials          []Material         `json:"Materials" yaml:"Materials"`
	Environment        *Environment       `json:"Environment" yaml:"Environment"`
	Textures           []Texture          `json:"Textures" yaml:"Textures"`
	Actions            []Action           `json:"Actions" yaml:"Actions"`
	TransformHierarchy TransformHierarchy `json:"TransformHierarchy" yaml:"TransformHierarchy"`
	Surfaces           []Surface          `json:"Surfaces" yaml:"Surfaces"`
}

// New returns a document whose arrays encode as empty rather than null.
func New() *Document {
	d := &Document{}
	d.normalize()
	return d
}

func (d *Document) normalize() {
	if d.Skeletons == nil {
		d.Skeletons = []Skeleton{}
	}
	if d.Lights == nil {
		d.Lights = []Light{}
	}
	if d.Materials == nil {
		d.Materials = []Material{}
	}
	if d.Textures == nil {
		d.Textures = []Texture{}
	}
	if d.Actions == nil {
		d.Actions = []Action{}
	}
	if d.TransformHierarchy.Nodes == nil {
		d.TransformHierarchy.Nodes = []TransformNode{}
	}
	if d.Surfaces == nil {
		d.Surfaces = []Surface{}
	}
}

// DataBlocksFile names the companion blob, relative to the document.
type DataBlocksFile struct {
	Path  string `json:"Path" yaml:"Path"`
	Bytes uint64 `json:"Bytes" yaml:"Bytes"`
}

// Surface is a mesh object placed in the world.
type Surface struct {
	Name               string     `json:"Name" yaml:"Name"`
	CenterInLocal      [3]float32 `json:"CenterInLocal" yaml:"CenterInLocal"`
	Mesh               Mesh       `json:"Mesh" yaml:"Mesh"`
	Material           *string    `json:"Material" yaml:"Material"`
	WorldToLocalMatrix Matrix     `json:"WorldToLocalMatrix" yaml:"WorldToLocalMatrix"`
	Skeleton           *string    `json:"Skeleton" yaml:"Skeleton"`
}

// Mesh is a non-indexed triangle list: every triangle corner is its own
// vertex.
type Mesh struct {
	ID            string  `json:"Id" yaml:"Id"`
	TriangleCount int     `json:"TriangleCount" yaml:"TriangleCount"`
	VertexCount   int     `json:"VertexCount" yaml:"VertexCount"`
	Fields        []Field `json:"Fields" yaml:"Fields"`
}

// Field is one per-vertex attribute stream.
type Field struct {
	Name       string          `json:"Name" yaml:"Name"`
	Components int             `json:"Components" yaml:"Components"`
	DataBlock  blob.Ref        `json:"DataBlock" yaml:"DataBlock"`
	Type       blob.ScalarType `json:"Type" yaml:"Type"`
}

// Field names.
const (
	FieldPosition    = "position"
	FieldNormal      = "normal"
	FieldUV          = "uv"
	FieldBoneIndices = "bone_indices"
	FieldBoneWeights = "bone_weights"
)

// Field returns the field with the given name.
func (m *Mesh) Field(name string) (*Field, bool) {
	for i := range m.Fields {
		if m.Fields[i].Name == name {
			return &m.Fields[i], true
		}
	}
	return nil, false
}

// Skeleton is a flat, indexed bone list. A bone's Index is the value stored
// in the bone_indices field of meshes bound to the skeleton.
type Skeleton struct {
	Name                  string `json:"Name" yaml:"Name"`
	WorldToSkeletonMatrix Matrix `json:"WorldToSkeletonMatrix" yaml:"WorldToSkeletonMatrix"`
	Bones                 []Bone `json:"Bones" yaml:"Bones"`
}

// Bone is one skeleton joint.
type Bone struct {
	Name       string   `json:"Name" yaml:"Name"`
	Index      int      `json:"Index" yaml:"Index"`
	RestMatrix Matrix   `json:"RestMatrix" yaml:"RestMatrix"`
	Pose       Pose     `json:"Pose" yaml:"Pose"`
	Parent     *string  `json:"Parent" yaml:"Parent"`
	Children   []string `json:"Children" yaml:"Children"`
}

// Pose is the current bone pose relative to rest. RotationQuaternion is
// stored W, X, Y, Z.
type Pose struct {
	Location           [3]float32 `json:"Location" yaml:"Location"`
	RotationQuaternion [4]float32 `json:"RotationQuaternion" yaml:"RotationQuaternion"`
	Scale              [3]float32 `json:"Scale" yaml:"Scale"`
	Matrix             Matrix     `json:"Matrix" yaml:"Matrix"`
}

// Light types.
const (
	LightSphere    = "Sphere"
	LightRectangle = "Rectangle"
	LightSun       = "Sun"
	LightSpot      = "Spot"
)

// Light is a render-visible light object.
type Light struct {
	Name               string     `json:"Name" yaml:"Name"`
	Type               string     `json:"Type" yaml:"Type"`
	Color              [3]float32 `json:"Color" yaml:"Color"`
	Strength           float32    `json:"Strength" yaml:"Strength"`
	WorldToLocalMatrix Matrix     `json:"WorldToLocalMatrix" yaml:"WorldToLocalMatrix"`
	Size               float32    `json:"Size" yaml:"Size"`
	SizeX              float32    `json:"SizeX" yaml:"SizeX"`
	SizeY              float32    `json:"SizeY" yaml:"SizeY"`
	SpotAngle          float32    `json:"SpotAngle" yaml:"SpotAngle"`
	SpotBlend          float32    `json:"SpotBlend" yaml:"SpotBlend"`
}

// Environment is the world background image.
type Environment struct {
	Name string `json:"Name" yaml:"Name"`
	Path string `json:"Path" yaml:"Path"`
}

// Texture is an exported image file, relative to the document.
type Texture struct {
	Name string `json:"Name" yaml:"Name"`
	Path string `json:"Path" yaml:"Path"`
}

// Action holds the surviving animation curves of one object.
type Action struct {
	TargetObject string  `json:"TargetObject" yaml:"TargetObject"`
	Curves       []Curve `json:"Curves" yaml:"Curves"`
}

// Curve animates one scalar. TargetPath is either
// bone/<bone>/<channel>/<index> or transform/<channel>/<index>.
type Curve struct {
	TargetPath string     `json:"TargetPath" yaml:"TargetPath"`
	Keyframes  []Keyframe `json:"Keyframes" yaml:"Keyframes"`
}

// Keyframe is a (time, value) sample.
type Keyframe struct {
	Time  float32 `json:"Time" yaml:"Time"`
	Value float32 `json:"Value" yaml:"Value"`
}

// TransformHierarchy is a single tree of transform nodes, listed root first
// in depth-first pre-order.
type TransformHierarchy struct {
	Nodes []TransformNode `json:"Nodes" yaml:"Nodes"`
}

// RootName is the identity of the synthetic hierarchy root.
const RootName = "Root"

// TransformNode is one object in the hierarchy.
type TransformNode struct {
	Name               string         `json:"Name" yaml:"Name"`
	ParentToNodeMatrix Matrix         `json:"ParentToNodeMatrix" yaml:"ParentToNodeMatrix"`
	LocalTransform     LocalTransform `json:"LocalTransform" yaml:"LocalTransform"`
	Parent             *string        `json:"Parent" yaml:"Parent"`
	Children           []string       `json:"Children" yaml:"Children"`
}

// LocalTransform is the authored transform. Rotation is interpreted per
// RotationMode: 4 values W, X, Y, Z for QUATERNION, 4 values angle, X, Y, Z
// for AXIS_ANGLE, 3 Euler angles otherwise.
type LocalTransform struct {
	Location     [3]float32 `json:"Location" yaml:"Location"`
	RotationMode string     `json:"RotationMode" yaml:"RotationMode"`
	Rotation     []float32  `json:"Rotation" yaml:"Rotation"`
	Scale        [3]float32 `json:"Scale" yaml:"Scale"`
}

// Node returns the hierarchy node with the given name.
func (h *TransformHierarchy) Node(name string) (*TransformNode, bool) {
	for i := range h.Nodes {
		if h.Nodes[i].Name == name {
			return &h.Nodes[i], true
		}
	}
	return nil, false
}
