package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/nlink/internal/dynamo"
)

var linkColors = []asciigraph.AnsiColor{
	asciigraph.Red,
	asciigraph.Green,
	asciigraph.Yellow,
	asciigraph.Blue,
	asciigraph.Magenta,
	asciigraph.Cyan,
}

// SeriesPlot draws a single series.
func SeriesPlot(data []float64, height, width int, caption string) string {
	data = finite(data)
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(data, asciigraph.Height(height), asciigraph.Width(width), asciigraph.Caption(caption))
}

// AnglesPlot overlays the angle of every link, one colour per link.
func AnglesPlot(snaps []dynamo.Snapshot, height, width int) string {
	if len(snaps) == 0 {
		return ""
	}
	links := snaps[0].State.Len()
	series := make([][]float64, 0, links)
	colors := make([]asciigraph.AnsiColor, 0, links)
	for i := 0; i < links; i++ {
		s := finite(AngleSeries(snaps, i))
		if len(s) == 0 {
			continue
		}
		series = append(series, s)
		colors = append(colors, linkColors[i%len(linkColors)])
	}
	if len(series) == 0 {
		return ""
	}
	return asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(colors...),
		asciigraph.Caption("θ per link [rad]"))
}

func EnergySeries(snaps []dynamo.Snapshot) []float64 {
	out := make([]float64, len(snaps))
	for i, s := range snaps {
		out[i] = s.Energy
	}
	return out
}

func AngleSeries(snaps []dynamo.Snapshot, link int) []float64 {
	out := make([]float64, 0, len(snaps))
	for _, s := range snaps {
		if link < s.State.Len() {
			out = append(out, s.State.Theta[link])
		}
	}
	return out
}

// finite truncates data at its first NaN or Inf.
func finite(data []float64) []float64 {
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return data[:i]
		}
	}
	return data
}

// Scatter draws points on a braille canvas of w x h cells scaled to their
// bounding box. Non-finite points are skipped.
func Scatter(points []dynamo.Point, w, h int) string {
	c := NewCanvas(w, h)
	pts := make([]dynamo.Point, 0, len(points))
	for _, p := range points {
		if !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0) {
			pts = append(pts, p)
		}
	}
	if len(pts) == 0 {
		return c.String()
	}

	minX, maxX, minY, maxY := pts[0].X, pts[0].X, pts[0].Y, pts[0].Y
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	spanX, spanY := maxX-minX, maxY-minY
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}

	dw, dh := float64(2*w-1), float64(4*h-1)
	for _, p := range pts {
		x := int(math.Round((p.X - minX) / spanX * dw))
		y := int(math.Round((maxY - p.Y) / spanY * dh))
		c.Set(x, y)
	}
	return c.String()
}
