// Package braille renders dot graphics onto a grid of braille cells.
// Each terminal cell carries a 2x4 dot matrix, giving plots and traces
// an effective resolution of 2*width x 4*height dots.
package braille

import "strings"

// Canvas is a braille dot canvas sized in terminal cells.
type Canvas struct {
	cells  [][]uint8
	width  int
	height int
}

// NewCanvas creates an empty canvas of width x height cells.
func NewCanvas(width, height int) *Canvas {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	return &Canvas{cells: cells, width: width, height: height}
}

// Width returns the canvas width in cells.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in cells.
func (c *Canvas) Height() int { return c.height }

// DotWidth returns the canvas width in dots.
func (c *Canvas) DotWidth() int { return c.width * 2 }

// DotHeight returns the canvas height in dots.
func (c *Canvas) DotHeight() int { return c.height * 4 }

// Set turns on the dot at the given dot coordinates. Out-of-range
// coordinates are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	cellY := y / 4
	cellX := x / 2
	if cellY >= c.height || cellX >= c.width {
		return
	}
	c.cells[cellY][cellX] |= DotMask(x%2, y%4)
}

// Line draws a straight dot line between two dot coordinates using
// Bresenham's algorithm.
func (c *Canvas) Line(x0, y0, x1, y1 int) {
	DrawLine(x0, y0, x1, y1, c.Set)
}

// Mask returns the raw dot mask of the cell at cell coordinates.
func (c *Canvas) Mask(x, y int) uint8 {
	if y < 0 || y >= c.height || x < 0 || x >= c.width {
		return 0
	}
	return c.cells[y][x]
}

// Row renders one cell row as a string of braille runes.
func (c *Canvas) Row(y int) string {
	if y < 0 || y >= c.height {
		return ""
	}
	var b strings.Builder
	for x := 0; x < c.width; x++ {
		b.WriteRune(FromMask(c.cells[y][x]))
	}
	return b.String()
}

// Rows renders the full canvas, one string per cell row.
func (c *Canvas) Rows() []string {
	rows := make([]string, c.height)
	for y := 0; y < c.height; y++ {
		rows[y] = c.Row(y)
	}
	return rows
}

// DrawLine walks a Bresenham line between two dot coordinates, calling
// plot for every dot.
func DrawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				break
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

// DotMask returns the braille bit for a dot position within a cell,
// x in 0..1 and y in 0..3.
func DotMask(x, y int) uint8 {
	switch {
	case x == 0 && y == 0:
		return 0x01
	case x == 0 && y == 1:
		return 0x02
	case x == 0 && y == 2:
		return 0x04
	case x == 0 && y == 3:
		return 0x40
	case x == 1 && y == 0:
		return 0x08
	case x == 1 && y == 1:
		return 0x10
	case x == 1 && y == 2:
		return 0x20
	case x == 1 && y == 3:
		return 0x80
	default:
		return 0
	}
}

// FromMask converts a dot mask to its braille rune.
func FromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
