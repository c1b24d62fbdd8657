// Package mesh flattens polygon meshes into non-indexed triangle lists and
// writes their attribute streams to the blob.
package mesh

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/export3dy/internal/diag"
	"github.com/Faultbox/export3dy/internal/export/skin"
	"github.com/Faultbox/export3dy/internal/logger"
	"github.com/Faultbox/export3dy/pkg/blob"
	"github.com/Faultbox/export3dy/pkg/formats"
	"github.com/Faultbox/export3dy/pkg/math"
	"github.com/Faultbox/export3dy/pkg/scene"
)

// Corner orders of the supported polygon sizes. Quads are always split
// along the 0-2 diagonal.
var (
	triangleFan = []int{0, 1, 2}
	quadFan     = []int{0, 1, 2, 2, 3, 0}
)

// Fan returns the corner order used to triangulate a polygon of n vertices.
func Fan(n int) ([]int, error) {
	switch n {
	case 3:
		return triangleFan, nil
	case 4:
		return quadFan, nil
	}
	return nil, fmt.Errorf("%w: %d-sided polygon", diag.ErrUnsupportedTopology, n)
}

// Encoded is a mesh whose fields have been written to the blob.
type Encoded struct {
	Mesh formats.Mesh
	// Bounds covers the emitted positions, in mesh space.
	Bounds math.Box3
	// Unresolved lists vertex groups that did not name a bone.
	Unresolved []string
}

// streams collects the attribute arrays of one mesh before they are
// written, so that each field occupies one contiguous block.
type streams struct {
	position    []float32
	normal      []float32
	uv          []float32
	boneIndices []uint16
	boneWeights []float32
}

// Encode expands every polygon of m into triangles and appends the
// resulting streams to w. bones maps bone names to skeleton indices; a nil
// map encodes the mesh without skin fields.
func Encode(w *blob.Writer, m *scene.Mesh, bones map[string]int) (*Encoded, error) {
	hasUV := m.HasUV()
	if len(m.UV) > 0 && !hasUV {
		logger.Warn("UV layer shorter than loop count, skipping UVs",
			zap.String("mesh", m.Name), zap.Int("uvs", len(m.UV)), zap.Int("loops", m.LoopCount()))
	}

	var reducer *skin.Reducer
	if bones != nil {
		reducer = skin.NewReducer(m.VertexGroups, bones)
	}

	// Every polygon emits at most six corners.
	capacity := 6 * len(m.Polygons)
	s := streams{
		position: make([]float32, 0, 3*capacity),
		normal:   make([]float32, 0, 3*capacity),
	}
	// TriangleCount is the source polygon count; readers that need the
	// emitted triangle count use VertexCount / 3.
	out := &Encoded{Mesh: formats.Mesh{ID: m.Name, TriangleCount: len(m.Polygons)}}

	loopStart := 0
	for pi := range m.Polygons {
		poly := &m.Polygons[pi]
		fan, err := Fan(len(poly.Vertices))
		if err != nil {
			return nil, fmt.Errorf("mesh %s polygon %d: %w", m.Name, pi, err)
		}

		for _, corner := range fan {
			vid := poly.Vertices[corner]
			if vid < 0 || vid >= len(m.Vertices) {
				return nil, fmt.Errorf("mesh %s polygon %d: vertex index %d out of range", m.Name, pi, vid)
			}
			v := &m.Vertices[vid]

			normal := poly.Normal
			if poly.Smooth {
				normal = v.Normal
			}
			s.position = append(s.position, v.Co[:]...)
			s.normal = append(s.normal, normal[:]...)
			out.Bounds.Extend(math.V3(v.Co))

			if hasUV {
				uv := m.UV[loopStart+corner]
				s.uv = append(s.uv, uv[:]...)
			}
			if reducer != nil {
				in := reducer.Reduce(v.Groups)
				s.boneIndices = append(s.boneIndices, in.Indices[:]...)
				s.boneWeights = append(s.boneWeights, in.Weights[:]...)
			}
			out.Mesh.VertexCount++
		}
		loopStart += len(poly.Vertices)
	}

	if err := s.write(w, &out.Mesh, hasUV, reducer != nil); err != nil {
		return nil, fmt.Errorf("mesh %s: %w", m.Name, err)
	}
	if reducer != nil {
		out.Unresolved = reducer.Unresolved()
	}
	return out, nil
}

func (s *streams) write(w *blob.Writer, m *formats.Mesh, uv, skinned bool) error {
	if err := appendField(w, m, formats.FieldPosition, 3, s.position); err != nil {
		return err
	}
	if err := appendField(w, m, formats.FieldNormal, 3, s.normal); err != nil {
		return err
	}
	if uv {
		if err := appendField(w, m, formats.FieldUV, 2, s.uv); err != nil {
			return err
		}
	}
	if skinned {
		if err := appendField(w, m, formats.FieldBoneIndices, skin.MaxInfluences, s.boneIndices); err != nil {
			return err
		}
		if err := appendField(w, m, formats.FieldBoneWeights, skin.MaxInfluences, s.boneWeights); err != nil {
			return err
		}
	}
	return nil
}

func appendField[T blob.Scalar](w *blob.Writer, m *formats.Mesh, name string, components int, data []T) error {
	ref, err := blob.Append(w, data)
	if err != nil {
		return diag.IOError("writing field "+name, err)
	}
	m.Fields = append(m.Fields, formats.Field{
		Name:       name,
		Components: components,
		DataBlock:  ref,
		Type:       blob.TypeOf[T](),
	})
	return nil
}
