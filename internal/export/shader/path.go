package shader

import "strings"

// Path identifies a node of a flattened graph: the names of the group nodes
// enclosing it, outermost first, followed by its own name.
type Path []string

// segmentEscaper keeps a "/" inside a node name apart from the separator.
var segmentEscaper = strings.NewReplacer(`\`, `\\`, "/", `\/`)

// Child returns p extended by name. p is never modified.
func (p Path) Child(name string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, name)
}

// String joins the segments with "/". Backslashes and slashes inside a
// segment are escaped with a backslash, so distinct paths never print the
// same.
func (p Path) String() string {
	segs := make([]string, len(p))
	for i, s := range p {
		segs[i] = segmentEscaper.Replace(s)
	}
	return strings.Join(segs, "/")
}
