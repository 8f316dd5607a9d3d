package plot

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/roman-kulish/spectrum-viewer/internal/display"
)

func testChart() *Chart {
	return &Chart{
		Series: []display.Series{
			{Name: "a", Points: []display.Point{{X: 1000, Y: -10}, {X: 1050, Y: -40}, {X: 1100, Y: -20}}},
			{Name: "b", Points: []display.Point{{X: 1000, Y: -45}, {X: 1100, Y: -45}}},
		},
		VisibleStart:   1000,
		VisibleStop:    1100,
		ReferenceLevel: 0,
		Scale:          5,
	}
}

func TestRender(t *testing.T) {
	r := NewRenderer(Config{Width: 200, Height: 100})
	if r.Width() != 200 {
		t.Errorf("Expected width 200, got %d", r.Width())
	}

	img, err := r.Render(testChart())
	if err != nil {
		t.Fatalf("Failed to render: %v", err)
	}

	expected := image.Rect(0, 0, 200+defaultLeftBorder+defaultRightBorder, 100+defaultTopBorder+defaultBottomBorder)
	if img.Bounds() != expected {
		t.Errorf("Expected bounds %v, got %v", expected, img.Bounds())
	}

	// trace b is flat at -45 dBm, 90% of the way down the 100 pixel plot area
	palette := Palette(2)
	y := defaultTopBorder + 89
	x := defaultLeftBorder + 100
	if got := img.At(x, y); !sameColor(got, palette[1]) {
		t.Errorf("Expected trace b color at (%d, %d), got %v", x, y, got)
	}
}

func TestRender_InvalidChart(t *testing.T) {
	r := NewRenderer(Config{Width: 100, Height: 100})

	chart := testChart()
	chart.VisibleStop = chart.VisibleStart
	if _, err := r.Render(chart); err == nil {
		t.Error("Expected error for empty frequency range")
	}

	chart = testChart()
	chart.Scale = 0
	if _, err := r.Render(chart); err == nil {
		t.Error("Expected error for zero scale")
	}
}

func TestRender_ClipsOutOfRange(t *testing.T) {
	r := NewRenderer(Config{Width: 100, Height: 100})
	chart := testChart()
	chart.Series = []display.Series{
		{Name: "wild", Points: []display.Point{{X: 900, Y: 50}, {X: 1200, Y: -200}}},
	}

	if _, err := r.Render(chart); err != nil {
		t.Fatalf("Failed to render: %v", err)
	}
}

func TestRender_NonFinitePoints(t *testing.T) {
	testCases := []struct {
		name string
		y    float64
	}{
		{"NaN", math.NaN()},
		{"negative infinity", math.Inf(-1)},
		{"positive infinity", math.Inf(1)},
		{"far below", -1e15},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRenderer(Config{Width: 100, Height: 100})
			chart := testChart()
			chart.Series = []display.Series{
				{Name: "a", Points: []display.Point{{X: 1000, Y: -20}, {X: 1001, Y: tc.y}, {X: 1100, Y: -20}}},
			}

			if _, err := r.Render(chart); err != nil {
				t.Fatalf("Failed to render: %v", err)
			}
		})
	}
}

func TestRender_ClipsSteepSegment(t *testing.T) {
	r := NewRenderer(Config{Width: 100, Height: 100})
	chart := testChart()
	chart.Series = []display.Series{
		{Name: "a", Points: []display.Point{{X: 1000, Y: -20}, {X: 1001, Y: -1e15}}},
	}

	img, err := r.Render(chart)
	if err != nil {
		t.Fatalf("Failed to render: %v", err)
	}

	// the segment falls straight through the bottom edge of the plot area
	x, y := defaultLeftBorder, defaultTopBorder+99
	if got := img.At(x, y); !sameColor(got, Palette(1)[0]) {
		t.Errorf("Expected trace color at (%d, %d), got %v", x, y, got)
	}
}

func TestRender_FarOffscreenX(t *testing.T) {
	r := NewRenderer(Config{Width: 100, Height: 100})
	chart := testChart()
	chart.VisibleStart = 1000
	chart.VisibleStop = 1000.000001
	chart.Series = []display.Series{
		{Name: "wide", Points: []display.Point{{X: 0, Y: -20}, {X: 1e9, Y: -30}}},
	}

	if _, err := r.Render(chart); err != nil {
		t.Fatalf("Failed to render: %v", err)
	}
}

func TestRender_NonFiniteAxis(t *testing.T) {
	r := NewRenderer(Config{Width: 100, Height: 100})

	chart := testChart()
	chart.ReferenceLevel = math.NaN()
	if _, err := r.Render(chart); err == nil {
		t.Error("Expected error for NaN reference level")
	}

	chart = testChart()
	chart.Scale = math.Inf(1)
	if _, err := r.Render(chart); err == nil {
		t.Error("Expected error for infinite scale")
	}
}

func TestClipSegment(t *testing.T) {
	testCases := []struct {
		name           string
		x0, y0, x1, y1 float64
		ok             bool
		want           [4]float64
	}{
		{"inside", 1, 1, 9, 9, true, [4]float64{1, 1, 9, 9}},
		{"crosses bottom", 5, 5, 5, 1e15, true, [4]float64{5, 5, 5, 10}},
		{"crosses both sides", -1000, 5, 1000, 5, true, [4]float64{0, 5, 10, 5}},
		{"outside", 20, 20, 30, 30, false, [4]float64{}},
		{"parallel outside", -5, -1, 15, -1, false, [4]float64{}},
		{"NaN", 1, 1, 5, math.NaN(), false, [4]float64{}},
		{"infinite", 1, 1, 5, math.Inf(-1), false, [4]float64{}},
		{"opposite extremes", -math.MaxFloat64, 5, math.MaxFloat64, 5, false, [4]float64{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			x0, y0, x1, y1, ok := clipSegment(0, 0, 10, 10, tc.x0, tc.y0, tc.x1, tc.y1)
			if ok != tc.ok {
				t.Fatalf("Expected ok %v, got %v", tc.ok, ok)
			}
			if !ok {
				return
			}
			got := [4]float64{x0, y0, x1, y1}
			for i := range got {
				if math.Abs(got[i]-tc.want[i]) > 1e-9 {
					t.Errorf("Expected %v, got %v", tc.want, got)
					break
				}
			}
		})
	}
}

func TestEncode(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))

	var buf bytes.Buffer
	if err := Encode(&buf, img, ImagePNG); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Errorf("Output is not a PNG: %v", err)
	}

	buf.Reset()
	if err := Encode(&buf, img, ImageJPEG); err != nil {
		t.Fatalf("Failed to encode JPEG: %v", err)
	}

	if err := Encode(&buf, img, "gif"); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestPalette(t *testing.T) {
	if got := Palette(0); len(got) != 0 {
		t.Errorf("Expected empty palette, got %d colors", len(got))
	}

	palette := Palette(5)
	for i := 1; i < len(palette); i++ {
		if sameColor(palette[i-1], palette[i]) {
			t.Errorf("Colors %d and %d are equal", i-1, i)
		}
	}
}

func TestFormatFrequency(t *testing.T) {
	testCases := []struct {
		mhz      float64
		expected string
	}{
		{1000, "1 GHz"},
		{1450, "1.45 GHz"},
		{950, "950 MHz"},
		{0.5, "500 kHz"},
	}
	for _, tc := range testCases {
		if got := FormatFrequency(tc.mhz); got != tc.expected {
			t.Errorf("FormatFrequency(%g): expected %q, got %q", tc.mhz, tc.expected, got)
		}
	}
}

func sameColor(a, b color.Color) bool {
	return color.RGBAModel.Convert(a) == color.RGBAModel.Convert(b)
}
