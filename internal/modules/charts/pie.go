package charts

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// pieSlices draws a pie chart in the middle of the data area. gonum/plot has
// no pie plotter, so wedges are filled polygons approximating each arc.
type pieSlices struct {
	values []float64
	colors []color.Color
}

// arcStep is the angular resolution of a wedge edge, in radians
const arcStep = math.Pi / 90

func (p *pieSlices) Plot(c draw.Canvas, plt *plot.Plot) {
	total := 0.0
	for _, v := range p.values {
		total += v
	}
	if total <= 0 {
		return
	}

	center := c.Center()
	radius := vg.Length(math.Min(float64(c.Max.X-c.Min.X), float64(c.Max.Y-c.Min.Y))) * 0.45

	// Start at twelve o'clock and go clockwise
	angle := math.Pi / 2
	for i, v := range p.values {
		if v <= 0 {
			continue
		}
		sweep := v / total * 2 * math.Pi
		pts := []vg.Point{center}
		for a := 0.0; a < sweep; a += arcStep {
			pts = append(pts, polar(center, radius, angle-a))
		}
		pts = append(pts, polar(center, radius, angle-sweep))
		c.FillPolygon(p.colors[i%len(p.colors)], c.ClipPolygonXY(pts))
		angle -= sweep
	}
}

func polar(center vg.Point, r vg.Length, angle float64) vg.Point {
	return vg.Point{
		X: center.X + r*vg.Length(math.Cos(angle)),
		Y: center.Y + r*vg.Length(math.Sin(angle)),
	}
}

// swatch is a legend entry for one wedge
type swatch struct {
	color color.Color
}

func (s swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(s.color, c.ClipPolygonY(pts))
}
