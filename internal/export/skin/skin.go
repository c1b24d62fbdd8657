// Package skin reduces per-vertex group memberships to a fixed set of four
// bone influences.
package skin

import (
	"math"
	"sort"

	"github.com/Faultbox/export3dy/pkg/scene"
)

// MaxInfluences is the number of (bone, weight) slots per vertex.
const MaxInfluences = 4

// Influences is the reduced skin binding of one vertex. Unused slots are
// (0, 0). The slot order carries no meaning.
type Influences struct {
	Indices [MaxInfluences]uint16
	Weights [MaxInfluences]float32
}

// Sum returns the total weight.
func (in Influences) Sum() float32 {
	var s float32
	for _, w := range in.Weights {
		s += w
	}
	return s
}

type influence struct {
	bone   uint16
	weight float32
}

// Reducer maps the vertex groups of one mesh onto the bones of one
// skeleton and reduces vertices to their strongest influences.
type Reducer struct {
	// boneOf maps a vertex group id to a bone index, -1 for groups with no
	// bone of the same name.
	boneOf     []int
	unresolved []string
}

// NewReducer resolves the vertex group table of a mesh against a bone
// name to index map.
func NewReducer(groups []string, bones map[string]int) *Reducer {
	r := &Reducer{boneOf: make([]int, len(groups))}
	for id, name := range groups {
		idx, ok := bones[name]
		// Influence indices are uint16; skeleton.Build caps bones at 65536.
		if !ok || idx < 0 || idx > math.MaxUint16 {
			r.boneOf[id] = -1
			r.unresolved = append(r.unresolved, name)
			continue
		}
		r.boneOf[id] = idx
	}
	return r
}

// Unresolved lists the vertex groups that do not name a bone. Memberships in
// them are dropped.
func (r *Reducer) Unresolved() []string {
	return r.unresolved
}

// Reduce keeps the four highest weighted resolvable memberships and
// normalizes their weights to sum to one. Ties keep the earlier membership.
// A vertex without any positive influence reduces to all zero slots.
func (r *Reducer) Reduce(groups []scene.GroupWeight) Influences {
	pairs := make([]influence, 0, len(groups))
	for _, g := range groups {
		if g.Group < 0 || g.Group >= len(r.boneOf) || r.boneOf[g.Group] < 0 {
			continue
		}
		pairs = append(pairs, influence{bone: uint16(r.boneOf[g.Group]), weight: g.Weight})
	}

	if len(pairs) > MaxInfluences {
		sort.SliceStable(pairs, func(i, j int) bool {
			return pairs[i].weight > pairs[j].weight
		})
		pairs = pairs[:MaxInfluences]
	}

	var out Influences
	var sum float32
	for i, p := range pairs {
		out.Indices[i] = p.bone
		out.Weights[i] = p.weight
		sum += p.weight
	}
	if sum > 0 {
		for i := range out.Weights {
			out.Weights[i] /= sum
		}
	}
	return out
}
