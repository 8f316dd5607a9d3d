package plot

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/roman-kulish/spectrum-viewer/internal/display"
)

const (
	dpi            = 96.0
	fontSize       = 10.0
	tickMarkLength = 5
	divisions      = 10

	// Default sizes in pixels
	defaultWidth        = 1024
	defaultHeight       = 600
	defaultTopBorder    = 40
	defaultLeftBorder   = 80
	defaultBottomBorder = 60
	defaultRightBorder  = 40
)

const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"
)

type ImageFormat string

var (
	gridColor  = color.RGBA{R: 0xd8, G: 0xd8, B: 0xd8, A: 0xff}
	frameColor = color.Black
)

// BorderConfig defines the sizes of white space around the plot area
type BorderConfig struct {
	Top    int // Space for the legend
	Left   int // Space for the power scale
	Bottom int // Space for the frequency scale and information bar
	Right  int // Right padding
}

// Config holds the renderer options. Zero values select defaults.
type Config struct {
	Width        int     // Width of the plot area in pixels, one pixel per display point at most
	Height       int     // Height of the plot area in pixels
	FontSize     float64 // Font size in points
	BorderConfig BorderConfig
}

// Chart is what gets drawn: the display series and the axes they are drawn on.
type Chart struct {
	Series         []display.Series
	VisibleStart   float64 // MHz, left edge
	VisibleStop    float64 // MHz, right edge
	ReferenceLevel float64 // dBm, top edge
	Scale          float64 // dBm per division
}

func (c *Chart) powerRange() (bottom, top float64) {
	return c.ReferenceLevel - c.Scale*divisions, c.ReferenceLevel
}

// Renderer draws charts into images
type Renderer struct {
	config Config
}

// NewRenderer creates a renderer with the given configuration
func NewRenderer(config Config) *Renderer {
	if config.Width <= 0 {
		config.Width = defaultWidth
	}
	if config.Height <= 0 {
		config.Height = defaultHeight
	}
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}
	if config.BorderConfig.Top == 0 {
		config.BorderConfig.Top = defaultTopBorder
	}
	if config.BorderConfig.Left == 0 {
		config.BorderConfig.Left = defaultLeftBorder
	}
	if config.BorderConfig.Bottom == 0 {
		config.BorderConfig.Bottom = defaultBottomBorder
	}
	if config.BorderConfig.Right == 0 {
		config.BorderConfig.Right = defaultRightBorder
	}
	return &Renderer{config: config}
}

// Width returns the width of the plot area, which is the display width series
// should be decimated for.
func (r *Renderer) Width() int {
	return r.config.Width
}

// Render draws chart into a new image
func (r *Renderer) Render(chart *Chart) (*image.RGBA, error) {
	if !(chart.VisibleStart < chart.VisibleStop) {
		return nil, fmt.Errorf("invalid frequency range %f - %f", chart.VisibleStart, chart.VisibleStop)
	}
	if !(chart.Scale > 0) || !finite(chart.VisibleStart, chart.VisibleStop, chart.ReferenceLevel, chart.Scale) {
		return nil, fmt.Errorf("invalid power axis: reference level %f, scale %f", chart.ReferenceLevel, chart.Scale)
	}

	b := r.config.BorderConfig
	img := image.NewRGBA(image.Rect(0, 0, r.config.Width+b.Left+b.Right, r.config.Height+b.Top+b.Bottom))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	area := image.Rect(b.Left, b.Top, b.Left+r.config.Width, b.Top+r.config.Height)
	r.drawGrid(img, area)

	palette := Palette(len(chart.Series))
	for i, s := range chart.Series {
		r.drawSeries(img, area, chart, s, palette[i])
	}
	drawRect(img, area, frameColor)

	ann, err := newAnnotator(r.config.FontSize)
	if err != nil {
		return nil, fmt.Errorf("creating annotator: %w", err)
	}
	defer ann.Close()

	if err = ann.annotate(img, area, chart, palette); err != nil {
		return nil, fmt.Errorf("drawing annotations: %w", err)
	}
	return img, nil
}

func (r *Renderer) drawGrid(img *image.RGBA, area image.Rectangle) {
	for d := 1; d < divisions; d++ {
		x := area.Min.X + d*area.Dx()/divisions
		y := area.Min.Y + d*area.Dy()/divisions
		drawLine(img, area, image.Pt(x, area.Min.Y), image.Pt(x, area.Max.Y-1), gridColor)
		drawLine(img, area, image.Pt(area.Min.X, y), image.Pt(area.Max.X-1, y), gridColor)
	}
}

// drawSeries connects consecutive points. Segments are clipped to the plot area
// before rasterizing and points that are not finite are skipped.
func (r *Renderer) drawSeries(img *image.RGBA, area image.Rectangle, chart *Chart, s display.Series, c color.Color) {
	bottom, top := chart.powerRange()
	minX, minY := float64(area.Min.X), float64(area.Min.Y)
	maxX, maxY := float64(area.Max.X-1), float64(area.Max.Y-1)

	toPixel := func(p display.Point) (float64, float64) {
		x := (p.X - chart.VisibleStart) / (chart.VisibleStop - chart.VisibleStart)
		y := (top - p.Y) / (top - bottom)
		return minX + x*(maxX-minX), minY + y*(maxY-minY)
	}

	for i := 1; i < len(s.Points); i++ {
		x0, y0 := toPixel(s.Points[i-1])
		x1, y1 := toPixel(s.Points[i])
		x0, y0, x1, y1, ok := clipSegment(minX, minY, maxX, maxY, x0, y0, x1, y1)
		if !ok {
			continue
		}
		drawLine(img, area, roundPt(x0, y0), roundPt(x1, y1), c)
	}
	if len(s.Points) == 1 {
		x, y := toPixel(s.Points[0])
		if finite(x, y) && x >= minX && x <= maxX && y >= minY && y <= maxY {
			p := roundPt(x, y)
			img.Set(p.X, p.Y, c)
		}
	}
}

func roundPt(x, y float64) image.Point {
	return image.Pt(int(math.Round(x)), int(math.Round(y)))
}

// Encode writes img in the given format
func Encode(w io.Writer, img image.Image, format ImageFormat) error {
	switch format {
	case ImagePNG:
		return png.Encode(w, img)
	case ImageJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{
			Quality: 98,
		})
	default:
		return fmt.Errorf("unsupported image format: %s", format)
	}
}

type annotator struct {
	context  *freetype.Context
	fontFace font.Face
}

func newAnnotator(size float64) (*annotator, error) {
	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(size)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    size,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

func (a *annotator) annotate(img *image.RGBA, area image.Rectangle, chart *Chart, palette []color.Color) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	ops := []struct {
		msg string
		fn  func(*image.RGBA, image.Rectangle, *Chart, []color.Color) error
	}{
		{"drawing frequency scale", a.drawFrequencyScale},
		{"drawing power scale", a.drawPowerScale},
		{"drawing legend", a.drawLegend},
		{"drawing info bar", a.drawInfoBar},
	}
	for _, op := range ops {
		if err := op.fn(img, area, chart, palette); err != nil {
			return fmt.Errorf("%s: %w", op.msg, err)
		}
	}
	return nil
}

func (a *annotator) fontHeight() int {
	metrics := a.fontFace.Metrics()
	return (metrics.Ascent + metrics.Descent).Round()
}

func (a *annotator) drawFrequencyScale(img *image.RGBA, area image.Rectangle, chart *Chart, _ []color.Color) error {
	step := (chart.VisibleStop - chart.VisibleStart) / divisions
	textY := area.Max.Y + tickMarkLength + a.fontHeight()

	// every other division, labels of all eleven would overlap on narrow charts
	for d := 0; d <= divisions; d += 2 {
		x := area.Min.X + d*(area.Dx()-1)/divisions
		for y := area.Max.Y; y < area.Max.Y+tickMarkLength; y++ {
			img.Set(x, y, frameColor)
		}

		label := FormatFrequency(chart.VisibleStart + float64(d)*step)
		width := font.MeasureString(a.fontFace, label).Round()
		if _, err := a.context.DrawString(label, freetype.Pt(x-width/2, textY)); err != nil {
			return fmt.Errorf("drawing frequency label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawPowerScale(img *image.RGBA, area image.Rectangle, chart *Chart, _ []color.Color) error {
	_, top := chart.powerRange()
	metrics := a.fontFace.Metrics()

	for d := 0; d <= divisions; d++ {
		y := area.Min.Y + d*(area.Dy()-1)/divisions
		for x := area.Min.X - tickMarkLength; x < area.Min.X; x++ {
			img.Set(x, y, frameColor)
		}

		label := fmt.Sprintf("%.1f dBm", top-float64(d)*chart.Scale)
		width := font.MeasureString(a.fontFace, label).Round()
		textY := y + a.fontHeight()/2 - metrics.Descent.Round()
		pt := freetype.Pt(area.Min.X-tickMarkLength-4-width, textY)
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing power label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawLegend(img *image.RGBA, area image.Rectangle, chart *Chart, palette []color.Color) error {
	const swatch = 10

	x := area.Min.X
	textY := area.Min.Y - (area.Min.Y-a.fontHeight())/2 - a.fontFace.Metrics().Descent.Round()
	for i, s := range chart.Series {
		top := textY - swatch
		draw.Draw(img, image.Rect(x, top, x+swatch, top+swatch), image.NewUniform(palette[i]), image.Point{}, draw.Src)
		x += swatch + 4

		end, err := a.context.DrawString(s.Name, freetype.Pt(x, textY))
		if err != nil {
			return fmt.Errorf("drawing legend label: %w", err)
		}
		x = end.X.Round() + 16
	}
	return nil
}

func (a *annotator) drawInfoBar(img *image.RGBA, area image.Rectangle, chart *Chart, _ []color.Color) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Freq: %s - %s",
		FormatFrequency(chart.VisibleStart), FormatFrequency(chart.VisibleStop)))
	sb.WriteString("; ")
	sb.WriteString(fmt.Sprintf("Span: %s", FormatFrequency(chart.VisibleStop-chart.VisibleStart)))
	sb.WriteString("; ")
	sb.WriteString(fmt.Sprintf("1px = %s", FormatFrequency((chart.VisibleStop-chart.VisibleStart)/float64(area.Dx()))))
	sb.WriteString("; ")
	sb.WriteString(fmt.Sprintf("%.1f dB/div", chart.Scale))

	textY := img.Bounds().Max.Y - a.fontFace.Metrics().Descent.Round() - 4
	if _, err := a.context.DrawString(sb.String(), freetype.Pt(area.Min.X, textY)); err != nil {
		return fmt.Errorf("drawing info text: %w", err)
	}
	return nil
}

// FormatFrequency formats a frequency given in MHz with an SI prefix.
func FormatFrequency(mhz float64) string {
	value, prefix := humanize.ComputeSI(mhz * 1e6)
	return fmt.Sprintf("%s %sHz", humanize.FtoaWithDigits(value, 3), prefix)
}
