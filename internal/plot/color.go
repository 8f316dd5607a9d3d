package plot

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	hueStart = 236.0
	hueEnd   = 0.0
)

// Palette returns n distinct trace colors, walking the hue from blue to red.
func Palette(n int) []color.Color {
	palette := make([]color.Color, n)
	for i := range palette {
		hue := hueStart
		if n > 1 {
			hue = hueStart - float64(i)*(hueStart-hueEnd)/float64(n-1)
		}
		palette[i] = colorful.Hsv(hue, 1, 0.80)
	}
	return palette
}
