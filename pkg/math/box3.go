package math

// Box3 is an axis-aligned bounding box. The zero value is empty.
type Box3 struct {
	Min, Max Vec3
	valid    bool
}

// Extend grows the box to contain p.
func (b *Box3) Extend(p Vec3) {
	if !b.valid {
		b.Min, b.Max, b.valid = p, p, true
		return
	}
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// Center returns the box center, or the origin for an empty box.
func (b Box3) Center() Vec3 {
	if !b.valid {
		return Vec3{}
	}
	return b.Min.Add(b.Max).Scale(0.5)
}
