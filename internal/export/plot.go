package export

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/san-kum/nlink/internal/dynamo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var (
	rodColor     = color.RGBA{R: 60, G: 60, B: 60, A: 255}
	bobColor     = color.RGBA{R: 200, G: 40, B: 40, A: 255}
	seriesColors = []color.RGBA{
		{R: 31, G: 119, B: 180, A: 255},
		{R: 255, G: 127, B: 14, A: 255},
		{R: 44, G: 160, B: 44, A: 255},
		{R: 214, G: 39, B: 40, A: 255},
		{R: 148, G: 103, B: 189, A: 255},
	}
)

// Series is one named curve of a time-series plot.
type Series struct {
	Name string
	X, Y []float64
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.Padding = vg.Points(8)
	p.X.Label.TextStyle.Font.Size = vg.Points(12)
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)
	p.X.Padding = vg.Points(6)
	p.Y.Padding = vg.Points(6)
	p.Add(plotter.NewGrid())
}

// SeriesPlot builds a line plot with one curve per series.
func SeriesPlot(title, xLabel, yLabel string, series ...Series) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	stylePlot(p)

	for i, s := range series {
		if len(s.X) != len(s.Y) {
			return nil, fmt.Errorf("%w: series %q has %d x and %d y values", dynamo.ErrDimensionMismatch, s.Name, len(s.X), len(s.Y))
		}
		pts := make(plotter.XYs, len(s.X))
		for k := range s.X {
			pts[k].X = s.X[k]
			pts[k].Y = s.Y[k]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", s.Name, err)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = seriesColors[i%len(seriesColors)]
		p.Add(line)
		if s.Name != "" {
			p.Legend.Add(s.Name, line)
		}
	}
	p.Legend.Top = true
	return p, nil
}

// FramePlot draws the chain (pivot first) on square axes spanning
// [-extent, extent].
func FramePlot(frame []dynamo.Point, extent float64, title string) (*plot.Plot, error) {
	if len(frame) < 2 {
		return nil, fmt.Errorf("%w: frame needs the pivot and at least one mass", dynamo.ErrDimensionMismatch)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Min, p.X.Max = -extent, extent
	p.Y.Min, p.Y.Max = -extent, extent
	stylePlot(p)

	pts := make(plotter.XYs, len(frame))
	for i, q := range frame {
		pts[i].X, pts[i].Y = q.X, q.Y
	}

	rods, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	rods.LineStyle.Width = vg.Points(2)
	rods.LineStyle.Color = rodColor

	bobs, err := plotter.NewScatter(pts[1:])
	if err != nil {
		return nil, err
	}
	bobs.GlyphStyle.Shape = draw.CircleGlyph{}
	bobs.GlyphStyle.Radius = vg.Points(4)
	bobs.GlyphStyle.Color = bobColor

	p.Add(rods, bobs)
	return p, nil
}

func rasterize(p *plot.Plot, w, h vg.Length, dpi int) *vgimg.Canvas {
	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi))
	p.Draw(draw.New(c))
	return c
}

// WritePNG renders p as a PNG of widthIn x heightIn inches at dpi.
func WritePNG(w io.Writer, p *plot.Plot, widthIn, heightIn float64, dpi int) error {
	c := rasterize(p, vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch, dpi)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// RenderImage rasterizes p into an in-memory image.
func RenderImage(p *plot.Plot, widthIn, heightIn float64, dpi int) image.Image {
	return rasterize(p, vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch, dpi).Image()
}
