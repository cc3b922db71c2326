package analytics

import (
	"math"
	"strconv"
	"strings"
)

// Viewport sizes of the rendered charts.
const (
	AreaWidth  = 900
	AreaHeight = 220
	AreaPad    = 18

	SparkWidth  = 240
	SparkHeight = 60
	SparkPad    = 6

	DonutCX     = 120
	DonutCY     = 120
	DonutRadius = 78
)

// Point is one plotted value.
type Point struct {
	X, Y  float64
	Value float64
}

// AreaChart is the SVG geometry of a line series and the area under it.
type AreaChart struct {
	Width, Height, Pad float64
	Min, Max           float64
	Points             []Point
	Line               string
	Area               string
}

// First returns the leftmost point.
func (c *AreaChart) First() Point { return c.Points[0] }

// Last returns the rightmost point.
func (c *AreaChart) Last() Point { return c.Points[len(c.Points)-1] }

// BuildAreaChart maps values into the dashboard viewport. It returns nil for
// fewer than two values.
func BuildAreaChart(values []float64) *AreaChart {
	return buildArea(values, AreaWidth, AreaHeight, AreaPad)
}

// Sparkline maps values into the small home page viewport. It returns nil for
// fewer than two values.
func Sparkline(values []float64) *AreaChart {
	return buildArea(values, SparkWidth, SparkHeight, SparkPad)
}

func buildArea(values []float64, w, h, pad float64) *AreaChart {
	if len(values) < 2 {
		return nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	xStep := (w - pad*2) / float64(len(values)-1)
	pts := make([]Point, len(values))
	var line strings.Builder
	line.WriteString("M ")
	for i, v := range values {
		x := pad + float64(i)*xStep
		y := pad + (h-pad*2)*(1-(v-lo)/span)
		pts[i] = Point{X: x, Y: y, Value: v}
		if i > 0 {
			line.WriteString(" L ")
		}
		line.WriteString(fnum(x) + " " + fnum(y))
	}

	base := fnum(h - pad)
	first, last := pts[0], pts[len(pts)-1]
	l := line.String()
	return &AreaChart{
		Width: w, Height: h, Pad: pad,
		Min: lo, Max: hi,
		Points: pts,
		Line:   l,
		Area:   l + " L " + fnum(last.X) + " " + base + " L " + fnum(first.X) + " " + base + " Z",
	}
}

// DonutSegment is one category arc.
type DonutSegment struct {
	CategoryAggregate
	Frac float64
	// Start and End are angles in radians, clockwise from the positive x axis.
	Start, End float64
	Mid        float64
	Path       string
	// Full is set when the segment covers the whole circle; an SVG arc with
	// equal endpoints draws nothing, so renderers should draw a circle instead.
	Full bool
}

// Donut is the category share chart.
type Donut struct {
	CX, CY, R float64
	Total     float64
	Segments  []DonutSegment
}

// BuildDonut lays out cats clockwise from the top, in the order given. It
// returns nil when the absolute totals sum to zero, including for no input.
func BuildDonut(cats []CategoryAggregate) *Donut {
	var total float64
	for _, c := range cats {
		total += math.Abs(c.Total)
	}
	if total == 0 {
		return nil
	}

	d := &Donut{CX: DonutCX, CY: DonutCY, R: DonutRadius, Total: total}
	a := -math.Pi / 2
	for _, c := range cats {
		frac := math.Abs(c.Total) / total
		b := a + frac*math.Pi*2
		d.Segments = append(d.Segments, DonutSegment{
			CategoryAggregate: c,
			Frac:              frac,
			Start:             a,
			End:               b,
			Mid:               (a + b) / 2,
			Path:              DonutPath(d.CX, d.CY, d.R, a, b),
			Full:              frac >= 1,
		})
		a = b
	}
	return d
}

// DonutPath renders an SVG arc from start to end (radians).
func DonutPath(cx, cy, r, start, end float64) string {
	x1 := cx + r*math.Cos(start)
	y1 := cy + r*math.Sin(start)
	x2 := cx + r*math.Cos(end)
	y2 := cy + r*math.Sin(end)
	largeArc := "0"
	if end-start > math.Pi {
		largeArc = "1"
	}
	rs := fnum(r)
	return "M " + fnum(x1) + " " + fnum(y1) +
		" A " + rs + " " + rs + " 0 " + largeArc + " 1 " +
		fnum(x2) + " " + fnum(y2)
}

// Shade picks one of n tones for name, stable across requests.
func Shade(name string, n int) int {
	if n <= 0 {
		return 0
	}
	var h uint32
	for _, r := range name {
		h = h*31 + uint32(r)
	}
	return int(h % uint32(n))
}

func fnum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
