package display

import "github.com/roman-kulish/spectrum-viewer/internal/spectrum"

// DefaultRCWeight is the share of the previous output carried into each new one.
const DefaultRCWeight = 0.65

// RCFilter smooths points with a first-order low-pass filter:
//
//	OUTn = weight * OUTn-1 + (1 - weight) * INn
//
// The filter runs on linear power (mW), not on dBm, and is seeded with the first
// point. The input is left untouched.
func RCFilter(points []Point, weight float64) []Point {
	out := make([]Point, len(points))
	if len(points) == 0 {
		return out
	}

	out[0] = points[0]
	for i := 1; i < len(points); i++ {
		previous := spectrum.ToMilliwatt(out[i-1].Y)
		current := spectrum.ToMilliwatt(points[i].Y)
		out[i] = Point{X: points[i].X, Y: spectrum.ToDbm(weight*previous + (1-weight)*current)}
	}
	return out
}
