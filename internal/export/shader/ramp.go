package shader

import (
	"sort"

	"github.com/chewxy/math32"

	"github.com/Faultbox/export3dy/pkg/scene"
)

// sortedElements returns the ramp stops ordered by position.
func sortedElements(r *scene.ColorRamp) []scene.RampElement {
	els := append([]scene.RampElement(nil), r.Elements...)
	sort.SliceStable(els, func(i, j int) bool {
		return els[i].Position < els[j].Position
	})
	return els
}

// evalSorted returns the RGBA color at t of a ramp whose stops are sorted by
// position. Outside the stops the nearest stop color is held. CONSTANT holds
// the stop at or below t and EASE blends with a smoothstep. Every other
// interpolation blends linearly.
func evalSorted(els []scene.RampElement, interpolation string, t float32) [4]float32 {
	if len(els) == 0 {
		return [4]float32{}
	}
	if t <= els[0].Position {
		return els[0].Color
	}
	last := els[len(els)-1]
	if t >= last.Position {
		return last.Color
	}

	i := sort.Search(len(els), func(i int) bool { return els[i].Position > t }) - 1
	a, b := els[i], els[i+1]
	if interpolation == "CONSTANT" {
		return a.Color
	}
	span := b.Position - a.Position
	if span <= 0 {
		return b.Color
	}
	f := (t - a.Position) / span
	if interpolation == "EASE" {
		f = f * f * (3 - 2*f)
	}
	var out [4]float32
	for c := range out {
		out[c] = a.Color[c] + (b.Color[c]-a.Color[c])*f
	}
	return out
}

// Quantize maps v in [0, 1] to the full uint16 range, rounding to nearest
// and clamping values outside the range.
func Quantize(v float32) uint16 {
	q := math32.Floor(v*65535 + 0.5)
	switch {
	case q <= 0 || math32.IsNaN(q):
		return 0
	case q >= 65535:
		return 65535
	}
	return uint16(q)
}

// sampleAt returns the parameter of sample i out of n, evenly covering
// [0, 1] with both ends included.
func sampleAt(i, n int) float32 {
	return float32(i) / float32(n-1)
}

// BakeRamp samples the ramp n times and interleaves the R, G, B channels,
// plus A when alpha is set.
func BakeRamp(r *scene.ColorRamp, n int, alpha bool) []uint16 {
	comps := 3
	if alpha {
		comps = 4
	}
	els := sortedElements(r)
	out := make([]uint16, 0, n*comps)
	for i := 0; i < n; i++ {
		c := evalSorted(els, r.Interpolation, sampleAt(i, n))
		for ch := 0; ch < comps; ch++ {
			out = append(out, Quantize(c[ch]))
		}
	}
	return out
}
