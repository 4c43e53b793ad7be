package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/nlink/internal/dynamo"
)

const svgBackground = "#0a0a0a"

// ChainSVG draws a single frame (pivot first) in a square viewport spanning
// [-extent, extent] on both axes.
func ChainSVG(frame []dynamo.Point, extent float64, size int) string {
	if len(frame) == 0 || extent <= 0 || size <= 0 {
		return ""
	}
	toPx := func(p dynamo.Point) (float64, float64) {
		s := float64(size)
		return (p.X + extent) / (2 * extent) * s, s - (p.Y+extent)/(2*extent)*s
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, size, size, size, size, svgBackground)

	sb.WriteString(`<polyline fill="none" stroke="#cccccc" stroke-width="2" points="`)
	for i, p := range frame {
		x, y := toPx(p)
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}
	sb.WriteString("\"/>\n")

	px, py := toPx(frame[0])
	fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="6" height="6" fill="#888888"/>`+"\n", px-3, py-3)
	for _, p := range frame[1:] {
		x, y := toPx(p)
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="5" fill="#00ff88"/>`+"\n", x, y)
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectoryToSVG draws a path through points scaled to fit the viewport.
func TrajectoryToSVG(points []dynamo.Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, svgBackground, strokeColor)

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// TipTrace returns the position of the last mass in every snapshot.
func TipTrace(snaps []dynamo.Snapshot) []dynamo.Point {
	out := make([]dynamo.Point, 0, len(snaps))
	for _, s := range snaps {
		if n := len(s.Positions); n > 0 {
			out = append(out, s.Positions[n-1])
		}
	}
	return out
}
