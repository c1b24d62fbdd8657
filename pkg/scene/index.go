package scene

import (
	"errors"
	"fmt"
)

// Snapshot validation errors.
var (
	ErrDuplicateName    = errors.New("duplicate datablock name")
	ErrUnknownReference = errors.New("reference to unknown datablock")
	ErrParentCycle      = errors.New("object parent chain forms a cycle")
)

type index struct {
	objects    map[string]*Object
	children   map[string][]*Object
	meshes     map[string]*Mesh
	armatures  map[string]*Armature
	materials  map[string]*Material
	nodeGroups map[string]*NodeTree
	actions    map[string]*Action
	images     map[string]*Image
	lights     map[string]*Light
}

func (s *Snapshot) index() *index {
	if s.idx != nil {
		return s.idx
	}
	idx := &index{
		objects:    make(map[string]*Object, len(s.Objects)),
		children:   make(map[string][]*Object),
		meshes:     make(map[string]*Mesh, len(s.Meshes)),
		armatures:  make(map[string]*Armature, len(s.Armatures)),
		materials:  make(map[string]*Material, len(s.Materials)),
		nodeGroups: make(map[string]*NodeTree, len(s.NodeGroups)),
		actions:    make(map[string]*Action, len(s.Actions)),
		images:     make(map[string]*Image, len(s.Images)),
		lights:     make(map[string]*Light, len(s.Lights)),
	}
	for i := range s.Objects {
		o := &s.Objects[i]
		idx.objects[o.Name] = o
		if o.Parent != "" {
			idx.children[o.Parent] = append(idx.children[o.Parent], o)
		}
	}
	for i := range s.Meshes {
		idx.meshes[s.Meshes[i].Name] = &s.Meshes[i]
	}
	for i := range s.Armatures {
		idx.armatures[s.Armatures[i].Name] = &s.Armatures[i]
	}
	for i := range s.Materials {
		idx.materials[s.Materials[i].Name] = &s.Materials[i]
	}
	for i := range s.NodeGroups {
		idx.nodeGroups[s.NodeGroups[i].Name] = &s.NodeGroups[i]
	}
	for i := range s.Actions {
		idx.actions[s.Actions[i].Name] = &s.Actions[i]
	}
	for i := range s.Images {
		idx.images[s.Images[i].Name] = &s.Images[i]
	}
	for i := range s.Lights {
		idx.lights[s.Lights[i].Name] = &s.Lights[i]
	}
	s.idx = idx
	return idx
}

// Object returns the object with the given name.
func (s *Snapshot) Object(name string) (*Object, bool) {
	o, ok := s.index().objects[name]
	return o, ok
}

// Children returns the direct children of an object, in scene order.
func (s *Snapshot) Children(name string) []*Object {
	return s.index().children[name]
}

// Mesh returns the mesh datablock with the given name.
func (s *Snapshot) Mesh(name string) (*Mesh, bool) {
	m, ok := s.index().meshes[name]
	return m, ok
}

// Armature returns the armature datablock with the given name.
func (s *Snapshot) Armature(name string) (*Armature, bool) {
	a, ok := s.index().armatures[name]
	return a, ok
}

// Material returns the material with the given name.
func (s *Snapshot) Material(name string) (*Material, bool) {
	m, ok := s.index().materials[name]
	return m, ok
}

// NodeGroup returns the node group with the given name.
func (s *Snapshot) NodeGroup(name string) (*NodeTree, bool) {
	t, ok := s.index().nodeGroups[name]
	return t, ok
}

// Action returns the action with the given name.
func (s *Snapshot) Action(name string) (*Action, bool) {
	a, ok := s.index().actions[name]
	return a, ok
}

// Image returns the image with the given name.
func (s *Snapshot) Image(name string) (*Image, bool) {
	img, ok := s.index().images[name]
	return img, ok
}

// Light returns the light datablock with the given name.
func (s *Snapshot) Light(name string) (*Light, bool) {
	l, ok := s.index().lights[name]
	return l, ok
}

// Validate checks name uniqueness, cross references and the parent graph.
func (s *Snapshot) Validate() error {
	if err := s.checkUnique(); err != nil {
		return err
	}
	idx := s.index()

	for i := range s.Objects {
		o := &s.Objects[i]
		if o.Parent != "" {
			if _, ok := idx.objects[o.Parent]; !ok {
				return fmt.Errorf("%w: object %s has parent %s", ErrUnknownReference, o.Name, o.Parent)
			}
		}
		if err := s.checkData(o); err != nil {
			return err
		}
		if o.Action != "" {
			if _, ok := idx.actions[o.Action]; !ok {
				return fmt.Errorf("%w: object %s uses action %s", ErrUnknownReference, o.Name, o.Action)
			}
		}
		if o.Armature != "" {
			target, ok := idx.objects[o.Armature]
			if !ok || target.Kind != KindArmature {
				return fmt.Errorf("%w: object %s is skinned to %s", ErrUnknownReference, o.Name, o.Armature)
			}
		}
	}

	for i := range s.Objects {
		if err := s.checkParentChain(&s.Objects[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Snapshot) checkData(o *Object) error {
	idx := s.index()
	var ok bool
	switch o.Kind {
	case KindMesh:
		_, ok = idx.meshes[o.Data]
	case KindArmature:
		_, ok = idx.armatures[o.Data]
	case KindLight:
		_, ok = idx.lights[o.Data]
	default:
		return nil
	}
	if !ok {
		return fmt.Errorf("%w: %s object %s has data %q", ErrUnknownReference, o.Kind, o.Name, o.Data)
	}
	return nil
}

func (s *Snapshot) checkParentChain(o *Object) error {
	seen := map[string]bool{o.Name: true}
	for p := o.Parent; p != ""; {
		if seen[p] {
			return fmt.Errorf("%w: %s", ErrParentCycle, o.Name)
		}
		seen[p] = true
		parent, ok := s.Object(p)
		if !ok {
			return nil
		}
		p = parent.Parent
	}
	return nil
}

func (s *Snapshot) checkUnique() error {
	check := func(kind string, names []string) error {
		seen := make(map[string]bool, len(names))
		for _, n := range names {
			if seen[n] {
				return fmt.Errorf("%w: %s %q", ErrDuplicateName, kind, n)
			}
			seen[n] = true
		}
		return nil
	}
	groups := []struct {
		kind  string
		names []string
	}{
		{"object", names(s.Objects, func(o Object) string { return o.Name })},
		{"mesh", names(s.Meshes, func(m Mesh) string { return m.Name })},
		{"armature", names(s.Armatures, func(a Armature) string { return a.Name })},
		{"material", names(s.Materials, func(m Material) string { return m.Name })},
		{"node group", names(s.NodeGroups, func(t NodeTree) string { return t.Name })},
		{"action", names(s.Actions, func(a Action) string { return a.Name })},
		{"image", names(s.Images, func(i Image) string { return i.Name })},
		{"light", names(s.Lights, func(l Light) string { return l.Name })},
	}
	for _, g := range groups {
		if err := check(g.kind, g.names); err != nil {
			return err
		}
	}
	return nil
}

func names[T any](items []T, name func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = name(it)
	}
	return out
}
