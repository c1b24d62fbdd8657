package export

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/export3dy/internal/diag"
	"github.com/Faultbox/export3dy/pkg/blob"
	"github.com/Faultbox/export3dy/pkg/formats"
	"github.com/Faultbox/export3dy/pkg/scene"
)

const yardYAML = `
name: Yard
meshes:
  - name: TriMesh
    vertices:
      - {co: [0, 0, 0], normal: [0, 0, 1]}
      - {co: [1, 0, 0], normal: [0, 0, 1]}
      - {co: [0, 1, 0], normal: [0, 0, 1]}
    polygons:
      - {vertices: [0, 1, 2], normal: [0, 0, 1]}
  - name: QuadMesh
    vertex_groups: [Root, Tip, Paint]
    vertices:
      - {co: [0, 0, 0], normal: [0, 0, 1], groups: [{group: 0, weight: 1}]}
      - {co: [2, 0, 0], normal: [0, 0, 1], groups: [{group: 0, weight: 0.5}, {group: 1, weight: 0.5}]}
      - {co: [2, 2, 0], normal: [0, 0, 1], groups: [{group: 1, weight: 3}, {group: 2, weight: 1}]}
      - {co: [0, 2, 0], normal: [0, 0, 1], groups: [{group: 2, weight: 1}]}
    polygons:
      - {vertices: [0, 1, 2, 3], use_smooth: true, normal: [0, 0, 1]}
    uv: [[0, 0], [1, 0], [1, 1], [0, 1]]
armatures:
  - name: RigData
    bones:
      - {name: Root}
      - {name: Tip, parent: Root}
materials:
  - name: Paint
    node_tree:
      nodes:
        - {name: Image, type: TEX_IMAGE, image: Checker}
        - {name: Missing, type: TEX_IMAGE, image: Gone}
        - name: Ramp
          type: VALTORGB
          inputs: [{identifier: Fac, default_value: 0.5}]
          color_ramp:
            interpolation: LINEAR
            elements:
              - {position: 0, color: [0, 0, 0, 1]}
              - {position: 1, color: [1, 1, 1, 1]}
        - name: BSDF
          type: BSDF_DIFFUSE
          inputs: [{identifier: Color, default_value: [0.8, 0.8, 0.8, 1]}]
        - {name: Output, type: OUTPUT_MATERIAL, inputs: [{identifier: Surface}]}
      links:
        - {from_node: Image, from_socket: Color, to_node: BSDF, to_socket: Color}
        - {from_node: BSDF, from_socket: BSDF, to_node: Output, to_socket: Surface}
images:
  - name: Checker
    generated: {width: 4, height: 4, color: [1, 0, 0, 1]}
  - name: Gone
    filepath: //missing.png
  - name: Sky
    generated: {width: 8, height: 4, color: [0.2, 0.4, 1, 1]}
lights:
  - {name: Sun, type: SUN, energy: 3}
actions:
  - name: Wave
    curves:
      - {data_path: 'pose.bones["Tip"].location', array_index: 2, keyframes: [[0, 0], [10, 1]]}
      - {data_path: 'pose.bones["Tip"].scale', array_index: 0, keyframes: [[0, 1], [10, 1]]}
      - {data_path: location, array_index: 0, keyframes: [[0, 0], [10, 5]]}
world: {name: World, image: Sky}
objects:
  - {name: Rig, type: ARMATURE, data: RigData, action: Wave}
  - {name: Body, type: MESH, data: QuadMesh, parent: Rig, armature: Rig, materials: [Paint]}
  - {name: Tri, type: MESH, data: TriMesh, location: [0, 0, 3]}
  - {name: Sun, type: LIGHT, data: Sun}
`

// Body: 6 vertices x (3+3+2 floats, 4 shorts, 4 floats) = 336 bytes.
// Tri: 3 vertices x (3+3 floats) = 72 bytes. Ramp: 256 x 3 shorts = 1536.
const yardBytes = 336 + 72 + 1536

func loadYard(t *testing.T) *scene.Snapshot {
	t.Helper()
	s, err := scene.Parse([]byte(yardYAML))
	require.NoError(t, err)
	return s
}

func testOptions(dir string) Options {
	opts := DefaultOptions()
	opts.OutputDir = dir
	opts.BaseName = "yard"
	opts.SourceDir = dir
	opts.ValidateImages = true
	return opts
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	res, err := Run(loadYard(t), testOptions(dir))
	require.NoError(t, err)
	doc := res.Document

	assert.Equal(t, filepath.Join(dir, "yard.json"), res.DocumentPath)
	assert.Equal(t, formats.DataBlocksFile{Path: "yard.bin", Bytes: yardBytes}, doc.DataBlocksFile)
	info, err := os.Stat(res.BlobPath)
	require.NoError(t, err)
	assert.EqualValues(t, yardBytes, info.Size())

	t.Run("surfaces", func(t *testing.T) {
		require.Len(t, doc.Surfaces, 2)
		body, tri := doc.Surfaces[0], doc.Surfaces[1]

		assert.Equal(t, "Body", body.Name)
		assert.Equal(t, 1, body.Mesh.TriangleCount)
		assert.Equal(t, 6, body.Mesh.VertexCount)
		require.NotNil(t, body.Skeleton)
		assert.Equal(t, "Rig", *body.Skeleton)
		require.NotNil(t, body.Material)
		assert.Equal(t, "Paint", *body.Material)
		assert.Equal(t, [3]float32{1, 1, 0}, body.CenterInLocal)
		var fields []string
		for _, f := range body.Mesh.Fields {
			fields = append(fields, f.Name)
		}
		assert.Equal(t, []string{"position", "normal", "uv", "bone_indices", "bone_weights"}, fields)

		assert.Equal(t, "Tri", tri.Name)
		assert.Equal(t, 3, tri.Mesh.VertexCount)
		assert.Nil(t, tri.Skeleton)
		assert.Nil(t, tri.Material)
		assert.Equal(t, formats.Matrix{1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0}, tri.WorldToLocalMatrix)
		pos, ok := tri.Mesh.Field(formats.FieldPosition)
		require.True(t, ok)
		assert.EqualValues(t, 36, pos.DataBlock.Size)
	})

	t.Run("skin weights", func(t *testing.T) {
		f, err := os.Open(res.BlobPath)
		require.NoError(t, err)
		defer f.Close()

		weights, ok := doc.Surfaces[0].Mesh.Field(formats.FieldBoneWeights)
		require.True(t, ok)
		values, err := blob.Read[float32](f, yardBytes, weights.DataBlock)
		require.NoError(t, err)
		require.Len(t, values, 6*4)
		for v := 0; v < 6; v++ {
			sum := values[4*v] + values[4*v+1] + values[4*v+2] + values[4*v+3]
			if sum != 0 {
				assert.InDelta(t, 1, sum, 1e-6, "vertex %d", v)
			}
		}
		// Emitted vertex 4 is mesh vertex 3, which only belongs to a
		// non-bone group.
		assert.Equal(t, []float32{0, 0, 0, 0}, values[16:20])
		// Mesh vertex 2 keeps Tip alone once Paint is dropped.
		assert.Equal(t, float32(1), values[8])
	})

	t.Run("skeletons", func(t *testing.T) {
		require.Len(t, doc.Skeletons, 1)
		sk := doc.Skeletons[0]
		assert.Equal(t, "Rig", sk.Name)
		require.Len(t, sk.Bones, 2)
		assert.Equal(t, "Tip", sk.Bones[1].Name)
		assert.Equal(t, []string{"Tip"}, sk.Bones[0].Children)
	})

	t.Run("materials", func(t *testing.T) {
		require.Len(t, doc.Materials, 1)
		mat := doc.Materials[0]
		ramp, ok := mat.Node("Ramp")
		require.True(t, ok)
		require.NotNil(t, ramp.ColorRamp)
		assert.Equal(t, 3, ramp.ColorRamp.Components)
		assert.Equal(t, formats.LUTSamples, ramp.ColorRamp.Samples)

		bsdf, ok := mat.Node("BSDF")
		require.True(t, ok)
		in, ok := bsdf.Input("Color")
		require.True(t, ok)
		require.NotNil(t, in.Link)
		assert.Equal(t, "Image", in.Link.Node)
	})

	t.Run("assets", func(t *testing.T) {
		assert.Equal(t, []formats.Texture{{Name: "Checker", Path: "textures/Checker.png"}}, doc.Textures)
		assert.Equal(t, &formats.Environment{Name: "World", Path: "textures/Sky.png"}, doc.Environment)
		assert.FileExists(t, filepath.Join(dir, "textures", "Checker.png"))
		assert.FileExists(t, filepath.Join(dir, "textures", "Sky.png"))

		require.Len(t, res.Warnings, 1)
		assert.Equal(t, diag.KindAssetExport, res.Warnings[0].Kind)
		assert.Equal(t, "image Gone", res.Warnings[0].Subject)
	})

	t.Run("lights", func(t *testing.T) {
		require.Len(t, doc.Lights, 1)
		assert.Equal(t, formats.LightSun, doc.Lights[0].Type)
	})

	t.Run("actions", func(t *testing.T) {
		require.Len(t, doc.Actions, 1)
		act := doc.Actions[0]
		assert.Equal(t, "Rig", act.TargetObject)
		require.Len(t, act.Curves, 1)
		assert.Equal(t, "bone/Tip/location/2", act.Curves[0].TargetPath)
	})

	t.Run("hierarchy", func(t *testing.T) {
		var names []string
		for _, n := range doc.TransformHierarchy.Nodes {
			names = append(names, n.Name)
		}
		assert.Equal(t, []string{"Root", "Rig", "Body", "Tri"}, names)

		root, _ := doc.TransformHierarchy.Node("Root")
		assert.Equal(t, []string{"Rig", "Tri"}, root.Children)
		tri, _ := doc.TransformHierarchy.Node("Tri")
		assert.Nil(t, tri.Parent)
		body, _ := doc.TransformHierarchy.Node("Body")
		require.NotNil(t, body.Parent)
		assert.Equal(t, "Rig", *body.Parent)
	})
}

func TestRunVerifies(t *testing.T) {
	for _, format := range []formats.Format{formats.FormatJSON, formats.FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			opts := testOptions(t.TempDir())
			opts.Format = format
			res, err := Run(loadYard(t), opts)
			require.NoError(t, err)

			doc, report, err := formats.VerifyFile(res.DocumentPath)
			require.NoError(t, err)
			assert.Equal(t, 2, report.Surfaces)
			assert.Equal(t, 7, report.Fields)
			assert.Equal(t, 1, report.LUTs)
			assert.Equal(t, 9, report.Vertices)
			assert.EqualValues(t, yardBytes, report.Bytes)
			assert.Equal(t, res.Document.Surfaces, doc.Surfaces)
		})
	}
}

func TestRunIdempotent(t *testing.T) {
	read := func(dir string) (doc, data []byte) {
		res, err := Run(loadYard(t), testOptions(dir))
		require.NoError(t, err)
		doc, err = os.ReadFile(res.DocumentPath)
		require.NoError(t, err)
		data, err = os.ReadFile(res.BlobPath)
		require.NoError(t, err)
		return doc, data
	}

	doc1, blob1 := read(t.TempDir())
	doc2, blob2 := read(t.TempDir())
	assert.Equal(t, doc1, doc2)
	assert.Equal(t, blob1, blob2)
}

func TestRunImageNameCollision(t *testing.T) {
	snap, err := scene.Parse([]byte(`
meshes:
  - name: TriMesh
    vertices: [{co: [0, 0, 0]}, {co: [1, 0, 0]}, {co: [0, 1, 0]}]
    polygons: [{vertices: [0, 1, 2]}]
materials:
  - name: Wood
    node_tree:
      nodes:
        - {name: A, type: TEX_IMAGE, image: wood/oak}
        - {name: B, type: TEX_IMAGE, image: wood_oak}
images:
  - name: wood/oak
    generated: {width: 2, height: 2, color: [1, 0, 0, 1]}
  - name: wood_oak
    generated: {width: 2, height: 2, color: [0, 0, 1, 1]}
world: {name: World, image: wood/oak}
objects:
  - {name: Plank, type: MESH, data: TriMesh, materials: [Wood]}
`))
	require.NoError(t, err)

	dir := t.TempDir()
	res, err := Run(snap, testOptions(dir))
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	doc := res.Document
	assert.Equal(t, []formats.Texture{
		{Name: "wood/oak", Path: "textures/wood_oak.png"},
		{Name: "wood_oak", Path: "textures/wood_oak_1.png"},
	}, doc.Textures)
	require.NotNil(t, doc.Environment)
	assert.Equal(t, "textures/wood_oak.png", doc.Environment.Path, "environment reuses the texture file")

	entries, err := os.ReadDir(filepath.Join(dir, "textures"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	for p, want := range map[string]color.NRGBA{
		"textures/wood_oak.png":   {R: 255, A: 255},
		"textures/wood_oak_1.png": {B: 255, A: 255},
	} {
		f, err := os.Open(filepath.Join(dir, filepath.FromSlash(p)))
		require.NoError(t, err)
		img, err := png.Decode(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, want, color.NRGBAModel.Convert(img.At(0, 0)), p)
	}
}

func TestRunToggles(t *testing.T) {
	opts := testOptions(t.TempDir())
	opts.Materials = false
	opts.Lights = false
	opts.Animations = false

	res, err := Run(loadYard(t), opts)
	require.NoError(t, err)
	doc := res.Document
	assert.Empty(t, doc.Materials)
	assert.Empty(t, doc.Textures)
	assert.Nil(t, doc.Environment)
	assert.Empty(t, doc.Lights)
	assert.Empty(t, doc.Actions)
	assert.Empty(t, res.Warnings)
	assert.EqualValues(t, 336+72, doc.DataBlocksFile.Bytes)
	assert.Len(t, doc.Surfaces, 2)
}

func TestRunProgress(t *testing.T) {
	opts := testOptions(t.TempDir())
	var calls [][2]int
	opts.Progress = func(done, total int) {
		calls = append(calls, [2]int{done, total})
	}
	_, err := Run(loadYard(t), opts)
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, calls)
}

func TestRunErrors(t *testing.T) {
	t.Run("no output", func(t *testing.T) {
		_, err := Run(loadYard(t), Options{})
		assert.ErrorIs(t, err, ErrNoOutput)
	})

	t.Run("invalid scene", func(t *testing.T) {
		s := loadYard(t)
		s.Objects[2].Parent = "Nowhere"
		_, err := Run(s, testOptions(t.TempDir()))
		assert.ErrorIs(t, err, scene.ErrUnknownReference)
	})

	t.Run("unsupported topology", func(t *testing.T) {
		s := loadYard(t)
		m, ok := s.Mesh("TriMesh")
		require.True(t, ok)
		m.Vertices = append(m.Vertices, scene.Vertex{}, scene.Vertex{})
		m.Polygons = []scene.Polygon{{Vertices: []int{0, 1, 2, 3, 4}}}

		_, err := Run(s, testOptions(t.TempDir()))
		assert.ErrorIs(t, err, diag.ErrUnsupportedTopology)
		assert.ErrorContains(t, err, "object Tri")
		assert.Equal(t, diag.KindUnsupportedTopology, diag.KindOf(err))
	})

	t.Run("hidden armature", func(t *testing.T) {
		s := loadYard(t)
		s.Objects[0].HideRender = true
		res, err := Run(s, testOptions(t.TempDir()))
		require.NoError(t, err)
		assert.Nil(t, res.Document.Surfaces[0].Skeleton)
		_, ok := res.Document.Surfaces[0].Mesh.Field(formats.FieldBoneIndices)
		assert.False(t, ok)
		assert.Equal(t, 1, res.Warnings.Count(diag.KindMissingBoneReference))
	})
}
