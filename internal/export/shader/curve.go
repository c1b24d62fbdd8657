package shader

import (
	"sort"

	"github.com/Faultbox/export3dy/pkg/scene"
)

// Curve indices inside a CURVE_RGB mapping.
const (
	curveR = iota
	curveG
	curveB
	curveMaster
)

// sortedPoints returns the control points of c ordered by x.
func sortedPoints(c *scene.Curve) []scene.CurvePoint {
	pts := append([]scene.CurvePoint(nil), c.Points...)
	sort.SliceStable(pts, func(i, j int) bool {
		return pts[i].Location[0] < pts[j].Location[0]
	})
	return pts
}

// evalPoints evaluates a curve with sorted points at x. Segments between two
// VECTOR points are straight; others use a cubic Hermite spline with
// Catmull-Rom tangents. Outside the control points the end values are held.
// A curve without points is the identity.
func evalPoints(pts []scene.CurvePoint, x float32) float32 {
	switch {
	case len(pts) == 0:
		return x
	case x <= pts[0].Location[0]:
		return pts[0].Location[1]
	case x >= pts[len(pts)-1].Location[0]:
		return pts[len(pts)-1].Location[1]
	}

	k := sort.Search(len(pts), func(i int) bool { return pts[i].Location[0] > x }) - 1
	p0, p1 := pts[k].Location, pts[k+1].Location
	dx := p1[0] - p0[0]
	if dx <= 0 {
		return p1[1]
	}
	s := (x - p0[0]) / dx
	if pts[k].HandleType == "VECTOR" && pts[k+1].HandleType == "VECTOR" {
		return p0[1] + (p1[1]-p0[1])*s
	}

	m0 := tangent(pts, k) * dx
	m1 := tangent(pts, k+1) * dx
	s2 := s * s
	s3 := s2 * s
	return (2*s3-3*s2+1)*p0[1] + (s3-2*s2+s)*m0 + (-2*s3+3*s2)*p1[1] + (s3-s2)*m1
}

// tangent is the Catmull-Rom slope at point i, one sided at the ends.
func tangent(pts []scene.CurvePoint, i int) float32 {
	if pts[i].HandleType == "VECTOR" {
		return 0
	}
	lo, hi := i-1, i+1
	if lo < 0 {
		lo = i
	}
	if hi >= len(pts) {
		hi = i
	}
	dx := pts[hi].Location[0] - pts[lo].Location[0]
	if dx <= 0 {
		return 0
	}
	return (pts[hi].Location[1] - pts[lo].Location[1]) / dx
}

// BakeCurves samples each color channel composed with the master curve,
// channel(master(t)), n times. Missing curves act as the identity.
func BakeCurves(m *scene.CurveMapping, n int) [3][]uint16 {
	sorted := make([][]scene.CurvePoint, curveMaster+1)
	for i := range sorted {
		if i < len(m.Curves) {
			sorted[i] = sortedPoints(&m.Curves[i])
		}
	}

	var out [3][]uint16
	for ch := curveR; ch <= curveB; ch++ {
		out[ch] = make([]uint16, n)
	}
	for i := 0; i < n; i++ {
		master := evalPoints(sorted[curveMaster], sampleAt(i, n))
		for ch := curveR; ch <= curveB; ch++ {
			out[ch][i] = Quantize(evalPoints(sorted[ch], master))
		}
	}
	return out
}
