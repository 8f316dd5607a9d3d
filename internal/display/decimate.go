package display

import "errors"

// ErrLengthMismatch is returned when x and y sequences differ in length.
var ErrLengthMismatch = errors.New("x and y lengths differ")

// Point is a single (frequency, power) display point.
type Point struct {
	X float64 `json:"x"` // Frequency in MHz
	Y float64 `json:"y"` // Power in dBm
}

// DecimationFactor returns how many consecutive samples collapse into one display
// point. It is the number of samples falling inside the visible span divided by the
// display width, and never less than 1.
func DecimationFactor(visibleStart, visibleStop, samplingRate float64, displayWidth int) int {
	if displayWidth <= 0 || !(samplingRate > 0) {
		return 1
	}
	pointsInDisplayRange := int((visibleStop - visibleStart) / samplingRate)
	return max(1, pointsInDisplayRange/displayWidth)
}

// Decimate reduces the series to one point per window of factor samples. Windows
// are aligned to index 0 and the last one may be shorter. Each point takes the
// frequency of its window's first sample and the window's peak power, so narrow
// peaks survive. A factor below 1 means no decimation.
func Decimate(xs, ys []float64, factor int) ([]Point, error) {
	if len(xs) != len(ys) {
		return nil, ErrLengthMismatch
	}
	factor = max(1, factor)

	points := make([]Point, 0, (len(xs)+factor-1)/factor)
	for start := 0; start < len(xs); start += factor {
		end := min(start+factor, len(ys))
		peak := ys[start]
		for _, y := range ys[start+1 : end] {
			peak = max(peak, y)
		}
		points = append(points, Point{X: xs[start], Y: peak})
	}
	return points, nil
}
