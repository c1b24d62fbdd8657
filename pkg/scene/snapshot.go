// Package scene holds the read-only snapshot of an authored scene that the
// exporter consumes. A Snapshot is captured once per export run and passed
// explicitly to every stage; nothing reads scene state from anywhere else.
package scene

import (
	"github.com/Faultbox/export3dy/pkg/math"
)

// ObjectKind is the type of data an object instantiates.
type ObjectKind string

const (
	KindMesh     ObjectKind = "MESH"
	KindArmature ObjectKind = "ARMATURE"
	KindLight    ObjectKind = "LIGHT"
	KindEmpty    ObjectKind = "EMPTY"
	KindCamera   ObjectKind = "CAMERA"
)

// RotationMode selects which rotation property of an object is active.
type RotationMode string

const (
	RotationQuaternion RotationMode = "QUATERNION"
	RotationAxisAngle  RotationMode = "AXIS_ANGLE"
	RotationXYZ        RotationMode = "XYZ"
	RotationXZY        RotationMode = "XZY"
	RotationYXZ        RotationMode = "YXZ"
	RotationYZX        RotationMode = "YZX"
	RotationZXY        RotationMode = "ZXY"
	RotationZYX        RotationMode = "ZYX"
)

// IsEuler reports whether the mode uses the Euler angle property.
func (m RotationMode) IsEuler() bool {
	switch m {
	case RotationXYZ, RotationXZY, RotationYXZ, RotationYZX, RotationZXY, RotationZYX:
		return true
	}
	return false
}

// Matrix is a 4x4 matrix written row by row. The zero value stands for
// identity so that snapshots may omit matrices they do not care about.
type Matrix [4][4]float32

// Mat4 converts to the column-major math type.
func (m Matrix) Mat4() math.Mat4 {
	if m == (Matrix{}) {
		return math.Identity()
	}
	return math.FromRows(m)
}

// Snapshot is an immutable capture of the scene at export start.
type Snapshot struct {
	Name       string     `yaml:"name"`
	Objects    []Object   `yaml:"objects"`
	Meshes     []Mesh     `yaml:"meshes"`
	Armatures  []Armature `yaml:"armatures"`
	Materials  []Material `yaml:"materials"`
	NodeGroups []NodeTree `yaml:"node_groups"`
	Actions    []Action   `yaml:"actions"`
	Images     []Image    `yaml:"images"`
	Lights     []Light    `yaml:"lights"`
	World      *World     `yaml:"world"`

	idx *index
}

// Object is an instance placed in the scene.
type Object struct {
	Name       string     `yaml:"name"`
	Kind       ObjectKind `yaml:"type"`
	Data       string     `yaml:"data"`
	Parent     string     `yaml:"parent"`
	HideRender bool       `yaml:"hide_render"`

	Location           [3]float32   `yaml:"location"`
	RotationMode       RotationMode `yaml:"rotation_mode"`
	RotationQuaternion [4]float32   `yaml:"rotation_quaternion"` // W, X, Y, Z
	RotationAxisAngle  [4]float32   `yaml:"rotation_axis_angle"` // angle, X, Y, Z
	RotationEuler      [3]float32   `yaml:"rotation_euler"`
	Scale              [3]float32   `yaml:"scale"`

	MatrixParentInverse Matrix `yaml:"matrix_parent_inverse"`
	MatrixWorld         Matrix `yaml:"matrix_world"`

	Action    string     `yaml:"action"`
	Materials []string   `yaml:"materials"`
	Armature  string     `yaml:"armature"` // target of the armature modifier
	Pose      []PoseBone `yaml:"pose"`
}

// Armature is a bone hierarchy in rest position. Bones are listed in
// declaration order.
type Armature struct {
	Name  string `yaml:"name"`
	Bones []Bone `yaml:"bones"`
}

// Bone is a rest-pose bone. MatrixLocal is expressed in armature space.
type Bone struct {
	Name        string `yaml:"name"`
	Parent      string `yaml:"parent"`
	MatrixLocal Matrix `yaml:"matrix_local"`
}

// PoseBone holds the current pose of one bone, relative to its rest pose.
type PoseBone struct {
	Bone               string     `yaml:"bone"`
	Location           [3]float32 `yaml:"location"`
	RotationQuaternion [4]float32 `yaml:"rotation_quaternion"` // W, X, Y, Z
	Scale              [3]float32 `yaml:"scale"`
}

// Action is a set of animation curves that can drive an object.
type Action struct {
	Name   string   `yaml:"name"`
	Curves []FCurve `yaml:"curves"`
}

// FCurve animates one component of one property.
type FCurve struct {
	DataPath  string       `yaml:"data_path"`
	Index     int          `yaml:"array_index"`
	Keyframes [][2]float32 `yaml:"keyframes"` // (time, value)
}

// LightType is the emitter shape of a light.
type LightType string

const (
	LightPoint LightType = "POINT"
	LightArea  LightType = "AREA"
	LightSun   LightType = "SUN"
	LightSpot  LightType = "SPOT"
)

// Light is a light datablock.
type Light struct {
	Name           string     `yaml:"name"`
	Type           LightType  `yaml:"type"`
	Color          [3]float32 `yaml:"color"`
	Energy         float32    `yaml:"energy"`
	ShadowSoftSize float32    `yaml:"shadow_soft_size"`
	Size           float32    `yaml:"size"`
	SizeY          float32    `yaml:"size_y"`
	SpotSize       float32    `yaml:"spot_size"`
	SpotBlend      float32    `yaml:"spot_blend"`
}

// World holds the environment settings.
type World struct {
	Name  string `yaml:"name"`
	Image string `yaml:"image"` // environment texture, empty when unset
}

// Material is a node-based surface shader.
type Material struct {
	Name string    `yaml:"name"`
	Tree *NodeTree `yaml:"node_tree"`
}
