package scene

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/export3dy/pkg/math"
)

const shedYAML = `
name: Shed
meshes:
  - name: Box
armatures:
  - name: RigData
actions:
  - name: Idle
lights:
  - {name: Bulb, type: POINT}
objects:
  - {name: Floor, type: MESH, data: Box}
  - {name: Door, type: MESH, data: Box, parent: Floor, rotation_mode: QUATERNION}
  - {name: Rig, type: ARMATURE, data: RigData, action: Idle}
  - {name: Lamp, type: LIGHT, data: Bulb, parent: Floor}
  - name: Body
    type: MESH
    data: Box
    armature: Rig
    pose:
      - {bone: Spine, location: [0, 1, 0]}
`

func parseShed(t *testing.T) *Snapshot {
	t.Helper()
	s, err := Parse([]byte(shedYAML))
	require.NoError(t, err)
	return s
}

func TestParseDefaults(t *testing.T) {
	s := parseShed(t)

	floor, ok := s.Object("Floor")
	require.True(t, ok)
	assert.Equal(t, RotationXYZ, floor.RotationMode)
	assert.Equal(t, [4]float32{1, 0, 0, 0}, floor.RotationQuaternion)
	assert.Equal(t, [3]float32{1, 1, 1}, floor.Scale)
	assert.Equal(t, math.Identity(), floor.MatrixWorld.Mat4())

	door, _ := s.Object("Door")
	assert.Equal(t, RotationQuaternion, door.RotationMode)

	body, _ := s.Object("Body")
	require.Len(t, body.Pose, 1)
	assert.Equal(t, [3]float32{0, 1, 0}, body.Pose[0].Location)
	assert.Equal(t, [4]float32{1, 0, 0, 0}, body.Pose[0].RotationQuaternion)
	assert.Equal(t, [3]float32{1, 1, 1}, body.Pose[0].Scale)
	assert.Equal(t, PoseBone{Bone: "Spine", RotationQuaternion: [4]float32{1, 0, 0, 0}, Scale: [3]float32{1, 1, 1}}, RestPose("Spine"))
}

func TestLookups(t *testing.T) {
	s := parseShed(t)

	var children []string
	for _, c := range s.Children("Floor") {
		children = append(children, c.Name)
	}
	assert.Equal(t, []string{"Door", "Lamp"}, children)
	assert.Empty(t, s.Children("Door"))

	_, ok := s.Mesh("Box")
	assert.True(t, ok)
	_, ok = s.Armature("RigData")
	assert.True(t, ok)
	_, ok = s.Action("Idle")
	assert.True(t, ok)
	_, ok = s.Light("Bulb")
	assert.True(t, ok)
	_, ok = s.Material("Nothing")
	assert.False(t, ok)
	_, ok = s.Image("Nothing")
	assert.False(t, ok)
	_, ok = s.NodeGroup("Nothing")
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{
			"duplicate object",
			"objects: [{name: A, type: EMPTY}, {name: A, type: EMPTY}]",
			ErrDuplicateName,
		},
		{
			"duplicate image",
			"images: [{name: Tex}, {name: Tex}]",
			ErrDuplicateName,
		},
		{
			"unknown parent",
			"objects: [{name: A, type: EMPTY, parent: B}]",
			ErrUnknownReference,
		},
		{
			"unknown mesh data",
			"objects: [{name: A, type: MESH, data: Nope}]",
			ErrUnknownReference,
		},
		{
			"unknown light data",
			"objects: [{name: A, type: LIGHT, data: Nope}]",
			ErrUnknownReference,
		},
		{
			"unknown action",
			"objects: [{name: A, type: EMPTY, action: Walk}]",
			ErrUnknownReference,
		},
		{
			"armature modifier on non armature",
			"objects: [{name: A, type: EMPTY}, {name: B, type: EMPTY, armature: A}]",
			ErrUnknownReference,
		},
		{
			"parent cycle",
			"objects: [{name: A, type: EMPTY, parent: B}, {name: B, type: EMPTY, parent: A}]",
			ErrParentCycle,
		},
		{
			"self parent",
			"objects: [{name: A, type: EMPTY, parent: A}]",
			ErrParentCycle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValue(t *testing.T) {
	var tree NodeTree
	err := yamlDecode(t, `
nodes:
  - name: Mix
    inputs:
      - {identifier: Fac, default_value: 0.5}
      - {identifier: Color1, default_value: [1, 0, 0, 1]}
      - {name: Shader}
`, &tree)
	require.NoError(t, err)

	mix, ok := tree.Node("Mix")
	require.True(t, ok)

	fac, ok := mix.Input("Fac")
	require.True(t, ok)
	assert.Equal(t, ScalarValue(0.5), fac.Default)
	assert.Equal(t, float32(0.5), fac.Default.Any())

	col, _ := mix.Input("Color1")
	assert.Equal(t, ArrayValue(1, 0, 0, 1), col.Default)
	assert.Equal(t, []float32{1, 0, 0, 1}, col.Default.Any())

	clone := col.Default.Clone()
	clone.Array[0] = 9
	assert.Equal(t, float32(1), col.Default.Array[0])

	shader, ok := mix.Input("Shader")
	require.True(t, ok, "identifier falls back to the name")
	assert.Nil(t, shader.Default)
	assert.Nil(t, shader.Default.Clone())

	err = yamlDecode(t, "nodes: [{name: X, inputs: [{identifier: A, default_value: {r: 1}}]}]", &tree)
	assert.ErrorContains(t, err, "expected number or list")
}

func TestLinkToSkipsMuted(t *testing.T) {
	tree := NodeTree{Links: []Link{
		{FromNode: "A", FromSocket: "Color", ToNode: "B", ToSocket: "Color", Muted: true},
		{FromNode: "C", FromSocket: "Color", ToNode: "B", ToSocket: "Color"},
	}}
	l, ok := tree.LinkTo("B", "Color")
	require.True(t, ok)
	assert.Equal(t, "C", l.FromNode)

	_, ok = tree.LinkTo("B", "Alpha")
	assert.False(t, ok)
}

func TestMeshLoops(t *testing.T) {
	m := Mesh{
		Polygons: []Polygon{{Vertices: []int{0, 1, 2}}, {Vertices: []int{0, 2, 3, 4}}},
		UV:       make([][2]float32, 6),
	}
	assert.Equal(t, 7, m.LoopCount())
	assert.False(t, m.HasUV())
	m.UV = append(m.UV, [2]float32{})
	assert.True(t, m.HasUV())
}

func TestRotationModes(t *testing.T) {
	assert.True(t, RotationZYX.IsEuler())
	assert.False(t, RotationQuaternion.IsEuler())
	assert.False(t, RotationAxisAngle.IsEuler())
}

func TestPackedBytes(t *testing.T) {
	img := Image{Name: "Tex", Packed: base64.StdEncoding.EncodeToString([]byte("\x89PNG"))}
	data, err := img.PackedBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), data)

	img.Packed = "%%%"
	_, err = img.PackedBytes()
	assert.ErrorContains(t, err, "Tex")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(shedYAML), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Shed", s.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("objects: [{name: A, parent: B}]"), 0o644))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrUnknownReference)
	assert.ErrorContains(t, err, path)
}

func yamlDecode(t *testing.T, src string, out any) error {
	t.Helper()
	return yaml.Unmarshal([]byte(src), out)
}
