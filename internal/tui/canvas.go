// Package tui provides the Bubble Tea gesture trainer interface.
package tui

import (
	"strings"

	"github.com/verte-zerg/swish/internal/braille"
	"github.com/verte-zerg/swish/internal/gesture"
)

// renderTrace draws a gesture path onto a braille canvas sized in
// terminal cells. Sample coordinates are screen cell positions; topOffset
// shifts the trace up by the rows occupied above the canvas. Consecutive
// samples are connected so sparse captures still read as a stroke.
func renderTrace(series gesture.Timeseries, width, height, topOffset int) string {
	canvas := braille.NewCanvas(width, height)
	prevX, prevY := -1, -1
	for _, s := range series {
		if len(s) < 2 {
			continue
		}
		x := int(s[0]) * 2
		y := (int(s[1]) - topOffset) * 4
		if prevX >= 0 {
			canvas.Line(prevX, prevY, x, y)
		} else {
			canvas.Set(x, y)
		}
		prevX, prevY = x, y
	}
	return strings.Join(canvas.Rows(), "\n")
}
