package display

import (
	"math"
	"slices"

	"github.com/roman-kulish/spectrum-viewer/internal/spectrum"
)

const (
	DefaultVisibleStart   = 950.0  // MHz
	DefaultVisibleStop    = 1450.0 // MHz
	DefaultReferenceLevel = 0.0    // dBm
	DefaultScale          = 5.0    // dBm per division
	DefaultDisplayWidth   = 1024   // Pixels

	// recreateSpanRatio is how far the visible span may grow or shrink before the
	// current decimation no longer fits the display.
	recreateSpanRatio = 2
)

// View is the set of loaded records together with the parameters they are displayed
// with. It belongs to the presentation layer and is not safe for concurrent use.
type View struct {
	records []*spectrum.Record
	detrend *spectrum.Record

	VisibleStart   float64 // MHz
	VisibleStop    float64 // MHz
	ReferenceLevel float64 // Top of the power axis in dBm
	Scale          float64 // dBm per division, the power axis spans 10 divisions
	DisplayWidth   int     // Pixels
	UseDetrend     bool
	UseRCFilter    bool
	RCWeight       float64
}

// NewView creates an empty view with default display parameters.
func NewView() *View {
	return &View{
		VisibleStart:   DefaultVisibleStart,
		VisibleStop:    DefaultVisibleStop,
		ReferenceLevel: DefaultReferenceLevel,
		Scale:          DefaultScale,
		DisplayWidth:   DefaultDisplayWidth,
		RCWeight:       DefaultRCWeight,
	}
}

// Load adds a record and adopts its frequency range, reference level and scale.
// It returns false, changing nothing, when an equal record is already loaded.
func (v *View) Load(r *spectrum.Record) bool {
	if slices.ContainsFunc(v.records, r.Equal) {
		return false
	}

	v.records = append(v.records, r)
	v.VisibleStart = r.StartFrequency()
	v.VisibleStop = r.StopFrequency()
	v.ReferenceLevel = float64(r.ReferenceLevel())
	v.Scale = float64(r.Scale())
	return true
}

// Remove drops every record with the given name and returns how many were removed.
func (v *View) Remove(name string) int {
	n := len(v.records)
	v.records = slices.DeleteFunc(v.records, func(r *spectrum.Record) bool {
		return r.Name() == name
	})
	return n - len(v.records)
}

// Records returns the loaded records in load order.
func (v *View) Records() []*spectrum.Record {
	return slices.Clone(v.records)
}

// Record returns the loaded record with the given name.
func (v *View) Record(name string) (*spectrum.Record, bool) {
	i := slices.IndexFunc(v.records, func(r *spectrum.Record) bool {
		return r.Name() == name
	})
	if i < 0 {
		return nil, false
	}
	return v.records[i], true
}

// SetDetrend sets the baseline reference; nil clears it.
func (v *View) SetDetrend(r *spectrum.Record) {
	v.detrend = r
}

func (v *View) Detrend() *spectrum.Record {
	return v.detrend
}

// Span returns the width of the visible frequency range in MHz.
func (v *View) Span() float64 {
	return v.VisibleStop - v.VisibleStart
}

// SetVisibleRange changes the visible frequency range.
func (v *View) SetVisibleRange(start, stop float64) error {
	if !(start < stop) {
		return spectrum.NewInvalidRangeError("visible start frequency %f is not below stop frequency %f", start, stop)
	}
	v.VisibleStart = start
	v.VisibleStop = stop
	return nil
}

// Pan shifts the visible range by delta MHz, keeping its span.
func (v *View) Pan(delta float64) {
	v.VisibleStart += delta
	v.VisibleStop += delta
}

// PowerRange returns the bottom and top of the power axis in dBm.
func (v *View) PowerRange() (bottom, top float64) {
	return v.ReferenceLevel - v.Scale*spectrum.Divisions, v.ReferenceLevel
}

// NeedsRecreate reports whether the span changed enough since previousSpan that
// the series have to be decimated again.
func (v *View) NeedsRecreate(previousSpan float64) bool {
	span := v.Span()
	return math.Max(span, previousSpan)/math.Min(span, previousSpan) > recreateSpanRatio
}

// Params returns the series parameters described by the view.
func (v *View) Params() SeriesParams {
	return SeriesParams{
		Detrend:      v.detrend,
		UseDetrend:   v.UseDetrend,
		UseRCFilter:  v.UseRCFilter,
		RCWeight:     v.RCWeight,
		VisibleStart: v.VisibleStart,
		VisibleStop:  v.VisibleStop,
		DisplayWidth: v.DisplayWidth,
	}
}

// Series computes the display series of every loaded record.
func (v *View) Series() []Series {
	return ComputeSeries(v.records, v.Params())
}
