package plot

import (
	"image"
	"image/color"
	"math"
)

// drawLine draws a one pixel wide line from a to b, skipping pixels outside clip.
// Both ends are expected to lie near clip, see clipSegment.
func drawLine(img *image.RGBA, clip image.Rectangle, a, b image.Point, c color.Color) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}

	e := dx + dy
	for {
		if a.In(clip) {
			img.Set(a.X, a.Y, c)
		}
		if a == b {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			a.X += sx
		}
		if e2 <= dx {
			e += dx
			a.Y += sy
		}
	}
}

// clipSegment clips the segment (x0, y0)-(x1, y1) to the closed rectangle
// [minX, maxX] x [minY, maxY] with the Liang-Barsky algorithm. It reports false
// when the segment misses the rectangle or any coordinate is not finite.
func clipSegment(minX, minY, maxX, maxY, x0, y0, x1, y1 float64) (cx0, cy0, cx1, cy1 float64, ok bool) {
	if !finite(x0, y0, x1, y1) {
		return
	}

	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, x0 - minX},
		{dx, maxX - x0},
		{-dy, y0 - minY},
		{dy, maxY - y0},
	}
	for _, edge := range edges {
		p, q := edge[0], edge[1]
		if p == 0 {
			// parallel to this edge
			if q < 0 {
				return
			}
			continue
		}

		t := q / p
		if p < 0 {
			if t > t1 {
				return
			}
			t0 = max(t0, t)
		} else {
			if t < t0 {
				return
			}
			t1 = min(t1, t)
		}
	}

	cx0, cy0 = x0+t0*dx, y0+t0*dy
	cx1, cy1 = x0+t1*dx, y0+t1*dy
	// dx or dy may overflow to infinity for ends at opposite extremes
	if !finite(cx0, cy0, cx1, cy1) {
		return 0, 0, 0, 0, false
	}
	return cx0, cy0, cx1, cy1, true
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func drawRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	clip := r.Inset(-1)
	drawLine(img, clip, image.Pt(r.Min.X-1, r.Min.Y-1), image.Pt(r.Max.X, r.Min.Y-1), c)
	drawLine(img, clip, image.Pt(r.Min.X-1, r.Max.Y), image.Pt(r.Max.X, r.Max.Y), c)
	drawLine(img, clip, image.Pt(r.Min.X-1, r.Min.Y-1), image.Pt(r.Min.X-1, r.Max.Y), c)
	drawLine(img, clip, image.Pt(r.Max.X, r.Min.Y-1), image.Pt(r.Max.X, r.Max.Y), c)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
