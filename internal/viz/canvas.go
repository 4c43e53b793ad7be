package viz

import (
	"math"
	"strings"

	"github.com/san-kum/nlink/internal/dynamo"
)

const brailleBlank = 0x2800

// Braille cells are 2x4 dots:
// 1 4
// 2 5
// 3 6
// 7 8
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of braille characters addressed in dot coordinates. A
// canvas of Width x Height cells holds (2*Width) x (4*Height) dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set turns on the dot at (x, y). Dots outside the canvas are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= pixelMap[y%4][x%2]
}

// IsSet reports whether the dot at (x, y) is on.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&pixelMap[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Fill turns on the (2r+1)-dot square centred on (x, y).
func (c *Canvas) Fill(x, y, r int) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			c.Set(x+dx, y+dy)
		}
	}
}

// Project maps a point of the chain plane to dot coordinates. The square
// [-extent, extent]² is fitted to the canvas with the pivot at its centre.
func (c *Canvas) Project(p dynamo.Point, extent float64) (int, int) {
	w, h := float64(2*c.Width), float64(4*c.Height)
	scale := math.Min(w, h) / (2 * extent)
	return int(math.Round(w/2 + p.X*scale)), int(math.Round(h/2 - p.Y*scale))
}

// DrawChain draws the rods and masses of frame (pivot first).
func (c *Canvas) DrawChain(frame []dynamo.Point, extent float64) {
	if len(frame) == 0 {
		return
	}
	px, py := c.Project(frame[0], extent)
	c.Set(px, py)
	for _, p := range frame[1:] {
		x, y := c.Project(p, extent)
		c.DrawLine(px, py, x, y)
		c.Fill(x, y, 1)
		px, py = x, y
	}
}

// DrawTrail plots each point as a single dot.
func (c *Canvas) DrawTrail(points []dynamo.Point, extent float64) {
	for _, p := range points {
		c.Set(c.Project(p, extent))
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
