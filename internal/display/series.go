package display

import "github.com/roman-kulish/spectrum-viewer/internal/spectrum"

// Series is the display-ready point sequence of one record, in ascending frequency.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// SeriesParams holds the display parameters a series is computed for.
type SeriesParams struct {
	Detrend      *spectrum.Record // Optional baseline reference
	UseDetrend   bool             // Subtract the baseline when a reference is set
	UseRCFilter  bool             // Smooth the decimated series
	RCWeight     float64          // Filter weight, see RCFilter
	VisibleStart float64          // MHz
	VisibleStop  float64          // MHz
	DisplayWidth int              // Pixels available for the visible span
}

// ComputeSeries turns every record into a display series. Records are processed
// independently and in order.
func ComputeSeries(records []*spectrum.Record, p SeriesParams) []Series {
	series := make([]Series, 0, len(records))
	for _, r := range records {
		series = append(series, Series{Name: r.Name(), Points: computePoints(r, p)})
	}
	return series
}

func computePoints(r *spectrum.Record, p SeriesParams) []Point {
	var powers []float64
	if p.UseDetrend && p.Detrend != nil {
		powers = spectrum.DetrendedPowers(r, p.Detrend)
	} else {
		powers = r.Powers()
	}

	factor := DecimationFactor(p.VisibleStart, p.VisibleStop, r.SamplingRate(), p.DisplayWidth)

	// both slices come from the same record, lengths always match
	points, _ := Decimate(r.Frequencies(), powers, factor)
	if p.UseRCFilter {
		points = RCFilter(points, p.RCWeight)
	}
	return points
}
