// Package shader flattens node based materials: node groups are inlined,
// links crossing group boundaries are rewritten to the concrete nodes on
// either side, and procedural ramp and curve nodes are baked into lookup
// tables.
//
// Flattening runs in two passes. The first walks the group instances and
// builds a scope for each of them, recording the group node that
// instantiated it and the concrete nodes it contributes. The second resolves
// every input link through that scope table.
package shader

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/export3dy/internal/diag"
	"github.com/Faultbox/export3dy/internal/logger"
	"github.com/Faultbox/export3dy/pkg/blob"
	"github.com/Faultbox/export3dy/pkg/formats"
	"github.com/Faultbox/export3dy/pkg/scene"
)

// maxHops bounds link resolution through proxies and reroutes.
const maxHops = 256

var (
	errMissingGroupTree = errors.New("node group tree not found")
	errRecursiveGroup   = errors.New("node group instantiates itself")
	errUnknownNodeType  = errors.New("unknown node type")
	errOutsideGroup     = errors.New("group input used outside a group")
	errTooManyHops      = errors.New("link chain too long")
)

// scope is one instantiation of a node tree.
type scope struct {
	path   Path
	tree   *scene.NodeTree
	parent *scope
	// group is the node in parent that instantiated this scope.
	group *scene.Node
	// children maps group node names of this tree to their scopes.
	children map[string]*scope
}

// concrete is a node that survives flattening.
type concrete struct {
	scope   *scope
	node    *scene.Node
	kind    Kind
	payload Payload
	// alpha is set on ramps whose Alpha output is linked in their own tree.
	alpha bool
}

type flattener struct {
	snap     *scene.Snapshot
	material string
	nodes    []concrete
	warnings diag.Warnings
	log      *zap.Logger
}

// Flatten flattens the node tree of mat and writes its baked tables to w.
// Problems local to one node are returned as warnings; only blob write
// failures abort.
func Flatten(w *blob.Writer, snap *scene.Snapshot, mat *scene.Material) (*formats.Material, diag.Warnings, error) {
	out := &formats.Material{Name: mat.Name, Nodes: []formats.ShaderNode{}}
	if mat.Tree == nil {
		return out, nil, nil
	}

	f := &flattener{
		snap:     snap,
		material: mat.Name,
		log:      logger.Named("shader").With(zap.String("material", mat.Name)),
	}
	root := &scope{tree: mat.Tree}
	f.collect(root, map[string]bool{})

	for _, c := range f.nodes {
		out.Nodes = append(out.Nodes, f.emit(c))
	}
	if err := f.bake(w, out); err != nil {
		return nil, f.warnings, err
	}
	f.log.Debug("flattened material", zap.Int("nodes", len(out.Nodes)), zap.Int("warnings", len(f.warnings)))
	return out, f.warnings, nil
}

func (f *flattener) warn(p Path, err error) {
	subject := f.material + ":" + p.String()
	f.log.Warn("shader graph problem", zap.String("node", p.String()), zap.Error(err))
	f.warnings.Add(subject, err)
}

// collect is the first pass. It records the concrete nodes of s in tree
// order and recurses into group instances where they appear. active holds
// the trees currently being expanded.
func (f *flattener) collect(s *scope, active map[string]bool) {
	s.children = make(map[string]*scope)
	for i := range s.tree.Nodes {
		n := &s.tree.Nodes[i]
		p := s.path.Child(n.Name)

		kind, ok := ParseKind(n.Type)
		if !ok {
			f.warn(p, fmt.Errorf("%w: %s", errUnknownNodeType, n.Type))
			continue
		}
		if kind != Group {
			if !kind.Structural() {
				f.nodes = append(f.nodes, concrete{
					scope:   s,
					node:    n,
					kind:    kind,
					payload: payloadOf(kind, n),
					alpha:   kind == ColorRamp && linksFrom(s.tree, n.Name, alphaOutput),
				})
			}
			continue
		}

		tree, ok := f.snap.NodeGroup(n.Tree)
		if !ok {
			f.warn(p, fmt.Errorf("%w: %w: %q", diag.ErrUnresolvedGroupLink, errMissingGroupTree, n.Tree))
			continue
		}
		if active[tree.Name] {
			f.warn(p, fmt.Errorf("%w: %w: %q", diag.ErrUnresolvedGroupLink, errRecursiveGroup, tree.Name))
			continue
		}
		child := &scope{path: p, tree: tree, parent: s, group: n}
		s.children[n.Name] = child

		active[tree.Name] = true
		f.collect(child, active)
		delete(active, tree.Name)
	}
}

// emit is the second pass for one node: every input is resolved to a link
// or a literal.
func (f *flattener) emit(c concrete) formats.ShaderNode {
	p := c.scope.path.Child(c.node.Name)
	out := formats.ShaderNode{
		Name:   p.String(),
		Type:   string(c.kind),
		Inputs: make([]formats.NodeInput, 0, len(c.node.Inputs)),
	}
	describe(c.payload, &out)

	for i := range c.node.Inputs {
		sock := &c.node.Inputs[i]
		in := formats.NodeInput{Name: sock.ID(), Default: toValue(sock.Default)}
		if l, ok := c.scope.tree.LinkTo(c.node.Name, sock.ID()); ok {
			link, fallback, err := f.resolve(c.scope, l.FromNode, l.FromSocket, 0)
			switch {
			case err != nil:
				f.warn(p.Child(sock.ID()), err)
			case link != nil:
				in.Link = link
			case fallback != nil:
				in.Default = toValue(fallback)
			}
		}
		out.Inputs = append(out.Inputs, in)
	}
	return out
}

// resolve follows a link source through groups, group inputs and reroutes
// until it reaches a concrete node. When the chain ends at an unconnected
// socket, that socket's default is returned instead; both results are nil
// when there is nothing to use and the input keeps its own default.
func (f *flattener) resolve(s *scope, fromNode, fromSocket string, hops int) (*formats.NodeLink, *scene.Value, error) {
	if hops > maxHops {
		return nil, nil, fmt.Errorf("%w: %w", diag.ErrUnresolvedGroupLink, errTooManyHops)
	}
	src, ok := s.tree.Node(fromNode)
	if !ok {
		return nil, nil, nil
	}
	kind, known := ParseKind(src.Type)
	if !known {
		return nil, nil, nil
	}

	switch kind {
	case Group:
		child, ok := s.children[src.Name]
		if !ok {
			return nil, nil, nil
		}
		out, ok := groupOutput(child.tree)
		if !ok {
			return nil, nil, fmt.Errorf("%w: group %s has no output node", diag.ErrUnresolvedGroupLink, child.path)
		}
		if l, ok := child.tree.LinkTo(out.Name, fromSocket); ok {
			return f.resolve(child, l.FromNode, l.FromSocket, hops+1)
		}
		if sock, ok := out.Input(fromSocket); ok {
			return nil, sock.Default, nil
		}
		return nil, nil, nil

	case GroupInput:
		if s.parent == nil {
			return nil, nil, fmt.Errorf("%w: %w", diag.ErrUnresolvedGroupLink, errOutsideGroup)
		}
		if l, ok := s.parent.tree.LinkTo(s.group.Name, fromSocket); ok {
			return f.resolve(s.parent, l.FromNode, l.FromSocket, hops+1)
		}
		sock, ok := s.group.Input(fromSocket)
		if !ok {
			return nil, nil, fmt.Errorf("%w: group %s has no input %q", diag.ErrUnresolvedGroupLink, s.path, fromSocket)
		}
		return nil, sock.Default, nil

	case Reroute:
		if l, ok := rerouteInput(s.tree, src); ok {
			return f.resolve(s, l.FromNode, l.FromSocket, hops+1)
		}
		return nil, nil, nil

	case GroupOutput:
		// Nothing reads from an output proxy.
		return nil, nil, nil
	}

	return &formats.NodeLink{Node: s.path.Child(src.Name).String(), Output: fromSocket}, nil, nil
}

// groupOutput returns the output proxy of a group tree.
func groupOutput(t *scene.NodeTree) (*scene.Node, bool) {
	for i := range t.Nodes {
		if t.Nodes[i].Type == string(GroupOutput) {
			return &t.Nodes[i], true
		}
	}
	return nil, false
}

// linksFrom reports whether an unmuted link leaves the given output socket.
// Where the link ends does not matter.
func linksFrom(t *scene.NodeTree, node, socket string) bool {
	for i := range t.Links {
		if l := &t.Links[i]; !l.Muted && l.FromNode == node && l.FromSocket == socket {
			return true
		}
	}
	return false
}

// rerouteInput returns the link feeding a reroute node, whatever its input
// socket is called.
func rerouteInput(t *scene.NodeTree, n *scene.Node) (*scene.Link, bool) {
	if len(n.Inputs) > 0 {
		return t.LinkTo(n.Name, n.Inputs[0].ID())
	}
	for i := range t.Links {
		if l := &t.Links[i]; !l.Muted && l.ToNode == n.Name {
			return l, true
		}
	}
	return nil, false
}

func toValue(v *scene.Value) *formats.Value {
	if v == nil {
		return nil
	}
	c := v.Clone()
	return &formats.Value{Scalar: c.Scalar, Array: c.Array, IsArray: c.IsArray}
}
