// Package hierarchy rebuilds a single rooted transform tree from the flat
// object list of a scene.
package hierarchy

import (
	"github.com/Faultbox/export3dy/pkg/formats"
	"github.com/Faultbox/export3dy/pkg/math"
	"github.com/Faultbox/export3dy/pkg/scene"
)

// Exported reports whether an object takes part in the hierarchy: render
// visible meshes and armatures.
func Exported(o *scene.Object) bool {
	return !o.HideRender && (o.Kind == scene.KindMesh || o.Kind == scene.KindArmature)
}

// Build returns the hierarchy of the exported objects. A synthetic Root
// node comes first and parents the top level ancestor of every exported
// object; the remaining nodes follow in depth-first pre-order, siblings in
// scene order. Ancestors of exported objects are kept whatever their kind so
// that the tree stays connected.
//
// Top level objects keep a null Parent in their own node even though Root
// lists them as children.
func Build(s *scene.Snapshot) formats.TransformHierarchy {
	keep := make(map[string]bool)
	for i := range s.Objects {
		o := &s.Objects[i]
		if !Exported(o) {
			continue
		}
		for cur := o; cur != nil && !keep[cur.Name]; {
			keep[cur.Name] = true
			parent, ok := s.Object(cur.Parent)
			if cur.Parent == "" || !ok {
				break
			}
			cur = parent
		}
	}

	root := formats.TransformNode{
		Name:               formats.RootName,
		ParentToNodeMatrix: math.Identity().Affine(),
		LocalTransform: formats.LocalTransform{
			RotationMode: string(scene.RotationQuaternion),
			Rotation:     []float32{1, 0, 0, 0},
			Scale:        [3]float32{1, 1, 1},
		},
		Children: []string{},
	}
	nodes := []formats.TransformNode{root}

	var visit func(o *scene.Object)
	visit = func(o *scene.Object) {
		node := formats.TransformNode{
			Name:               o.Name,
			ParentToNodeMatrix: o.MatrixParentInverse.Mat4().Affine(),
			LocalTransform:     localTransform(o),
			Children:           []string{},
		}
		if o.Parent != "" {
			parent := o.Parent
			node.Parent = &parent
		}
		children := keptChildren(s, o.Name, keep)
		for _, c := range children {
			node.Children = append(node.Children, c.Name)
		}
		nodes = append(nodes, node)
		for _, c := range children {
			visit(c)
		}
	}

	for i := range s.Objects {
		o := &s.Objects[i]
		if !keep[o.Name] || o.Parent != "" {
			continue
		}
		nodes[0].Children = append(nodes[0].Children, o.Name)
		visit(o)
	}
	return formats.TransformHierarchy{Nodes: nodes}
}

func keptChildren(s *scene.Snapshot, name string, keep map[string]bool) []*scene.Object {
	var out []*scene.Object
	for _, c := range s.Children(name) {
		if keep[c.Name] {
			out = append(out, c)
		}
	}
	return out
}

func localTransform(o *scene.Object) formats.LocalTransform {
	lt := formats.LocalTransform{
		Location:     o.Location,
		RotationMode: string(o.RotationMode),
		Scale:        o.Scale,
	}
	switch {
	case o.RotationMode == scene.RotationQuaternion:
		lt.Rotation = append([]float32(nil), o.RotationQuaternion[:]...)
	case o.RotationMode == scene.RotationAxisAngle:
		lt.Rotation = append([]float32(nil), o.RotationAxisAngle[:]...)
	default:
		if !o.RotationMode.IsEuler() {
			lt.RotationMode = string(scene.RotationXYZ)
		}
		lt.Rotation = append([]float32(nil), o.RotationEuler[:]...)
	}
	return lt
}

// LocalMatrix composes the local transform of an object in its active
// rotation mode.
func LocalMatrix(o *scene.Object) math.Mat4 {
	var rot math.Quat
	switch {
	case o.RotationMode == scene.RotationQuaternion:
		rot = math.QuatWXYZ(o.RotationQuaternion)
	case o.RotationMode == scene.RotationAxisAngle:
		aa := o.RotationAxisAngle
		rot = math.QuatFromAxisAngle(math.Vec3{X: aa[1], Y: aa[2], Z: aa[3]}.Normalize(), aa[0])
	case o.RotationMode.IsEuler():
		rot = math.QuatFromEuler(o.RotationEuler, string(o.RotationMode))
	default:
		rot = math.QuatFromEuler(o.RotationEuler, string(scene.RotationXYZ))
	}
	return math.Compose(math.V3(o.Location), rot, math.V3(o.Scale))
}

// driftTolerance is how far, in scene units, a composed basis point may sit
// from the stored one before an object counts as drifted.
const driftTolerance = 1e-3

// Drifted returns the exported objects whose stored world matrix is not the
// product of their parent chain, parent inverse and local transform. Such
// objects are posed by something the hierarchy cannot carry, a constraint or
// a driver for example, and a consumer rebuilding world space from the
// hierarchy would place them elsewhere.
func Drifted(s *scene.Snapshot) []string {
	world := make(map[string]math.Mat4)
	var compose func(o *scene.Object, depth int) math.Mat4
	compose = func(o *scene.Object, depth int) math.Mat4 {
		if m, ok := world[o.Name]; ok {
			return m
		}
		m := LocalMatrix(o)
		if parent, ok := s.Object(o.Parent); ok && o.Parent != "" && depth < len(s.Objects) {
			m = compose(parent, depth+1).Mul(o.MatrixParentInverse.Mat4()).Mul(m)
		}
		world[o.Name] = m
		return m
	}

	var out []string
	for i := range s.Objects {
		o := &s.Objects[i]
		if !Exported(o) {
			continue
		}
		if !samePlacement(compose(o, 0), o.MatrixWorld.Mat4()) {
			out = append(out, o.Name)
		}
	}
	return out
}

// samePlacement compares where a and b send the origin and the unit axes.
func samePlacement(a, b math.Mat4) bool {
	for _, p := range [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
		d := math.V3(a.TransformPoint(p)).Sub(math.V3(b.TransformPoint(p)))
		if d.Length() > driftTolerance {
			return false
		}
	}
	return true
}
