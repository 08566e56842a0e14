// Package surface draws render directives onto a character-cell canvas.
//
// Terminal cells are about twice as tall as they are wide, so one cell covers
// one pixel horizontally and two vertically. A View sized with PixelSize keeps
// the sky's proportions.
package surface

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	glyphPoint  = '·'
	glyphSmall  = '•'
	glyphMedium = '✸'
	glyphLarge  = '✶'

	colorBackground = "234"
	colorLabel      = "252"
)

// Canvas is a grid of cells. The zero value is unusable; use New.
type Canvas struct {
	cols, rows int
	cells      [][]rune
	colors     [][]lipgloss.Color
}

// New returns a blank canvas of cols x rows cells.
func New(cols, rows int) *Canvas {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	c := &Canvas{cols: cols, rows: rows}
	c.cells = make([][]rune, rows)
	c.colors = make([][]lipgloss.Color, rows)
	for y := range c.cells {
		c.cells[y] = make([]rune, cols)
		c.colors[y] = make([]lipgloss.Color, cols)
	}
	c.Clear()
	return c
}

// Clear blanks every cell.
func (c *Canvas) Clear() {
	for y := range c.cells {
		for x := range c.cells[y] {
			c.cells[y][x] = ' '
			c.colors[y][x] = colorBackground
		}
	}
}

// Size returns the canvas size in cells.
func (c *Canvas) Size() (cols, rows int) {
	return c.cols, c.rows
}

// PixelSize returns the pixel dimensions a View should use for this canvas.
func (c *Canvas) PixelSize() (width, height int) {
	return c.cols, c.rows * 2
}

// cell converts a pixel position to a cell, reporting whether it is on canvas.
func (c *Canvas) cell(x, y int) (int, int, bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	row := y / 2
	if x >= c.cols || row >= c.rows {
		return 0, 0, false
	}
	return x, row, true
}

func (c *Canvas) set(col, row int, r rune, color lipgloss.Color) {
	c.cells[row][col] = r
	c.colors[row][col] = color
}

// Point plots a single-pixel star.
func (c *Canvas) Point(x, y int) {
	col, row, ok := c.cell(x, y)
	if !ok {
		return
	}
	// Never overwrite a larger symbol with a point
	if c.cells[row][col] != ' ' && c.cells[row][col] != glyphPoint {
		return
	}
	c.set(col, row, glyphPoint, "244")
}

// Circle plots a filled disc as one glyph chosen by radius.
func (c *Canvas) Circle(x, y int, radius float64) {
	col, row, ok := c.cell(x, y)
	if !ok {
		return
	}
	glyph, color := circleGlyph(radius)
	if rank(c.cells[row][col]) > rank(glyph) {
		return
	}
	c.set(col, row, glyph, color)
}

// Text writes s starting at the pixel position, clipped to the canvas. Only
// the cells covered by the text change.
func (c *Canvas) Text(x, y int, s string) {
	row := y / 2
	if y < 0 || row >= c.rows {
		return
	}
	for i, r := range []rune(s) {
		col := x + i
		if col < 0 || col >= c.cols {
			continue
		}
		c.set(col, row, r, colorLabel)
	}
}

func circleGlyph(radius float64) (rune, lipgloss.Color) {
	switch {
	case radius < 3:
		return glyphSmall, "248"
	case radius < 5:
		return glyphMedium, "252"
	default:
		return glyphLarge, "255"
	}
}

func rank(r rune) int {
	switch r {
	case glyphLarge:
		return 4
	case glyphMedium:
		return 3
	case glyphSmall:
		return 2
	case glyphPoint:
		return 1
	default:
		return 0
	}
}

// Rune returns the rune at a cell, for tests and hit checks.
func (c *Canvas) Rune(col, row int) rune {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return 0
	}
	return c.cells[row][col]
}

// String renders the canvas as plain text, one line per row.
func (c *Canvas) String() string {
	var b strings.Builder
	for y, row := range c.cells {
		b.WriteString(string(row))
		if y < c.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Styled renders the canvas with colours. Runs of one colour share a style.
func (c *Canvas) Styled() string {
	var b strings.Builder
	for y := range c.cells {
		start := 0
		for x := 1; x <= c.cols; x++ {
			if x < c.cols && c.colors[y][x] == c.colors[y][start] {
				continue
			}
			style := lipgloss.NewStyle().
				Foreground(c.colors[y][start]).
				Background(lipgloss.Color("0"))
			b.WriteString(style.Render(string(c.cells[y][start:x])))
			start = x
		}
		if y < c.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
