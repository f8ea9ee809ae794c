package systems

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pthm-cable/critter/components"
)

// CellKind classifies a grid cell.
type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellWall
	CellColored
)

// Cell is one square of the maze.
type Cell struct {
	Kind  CellKind
	Color components.Color // set when Kind == CellColored
}

// Grid stores the static maze. It is immutable after ParseGrid.
type Grid struct {
	cells   []Cell
	width   int
	height  int
	unknown int // characters loaded as empty cells
}

// ErrEmptyMap is returned when a map has no rows.
var ErrEmptyMap = errors.New("map has no rows")

// ParseGrid builds a grid from the text map format: '#' wall, 'G', 'R', 'B',
// 'M', 'Y' coloured cells, space empty. Blank leading and trailing lines are
// ignored and rows must all have the same width. Any other character loads as
// an empty cell and is counted in Unknown.
func ParseGrid(text string) (*Grid, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil, ErrEmptyMap
	}

	rows := make([][]rune, len(lines))
	for i, line := range lines {
		rows[i] = []rune(line)
	}
	w := len(rows[0])
	for i, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("map row %d has width %d, want %d", i, len(row), w)
		}
	}

	g := &Grid{
		cells:  make([]Cell, w*len(rows)),
		width:  w,
		height: len(rows),
	}
	for y, row := range rows {
		for x, r := range row {
			var c Cell
			switch {
			case r == '#':
				c.Kind = CellWall
			case r == ' ':
			default:
				if col, ok := components.ColorFromRune(r); ok {
					c = Cell{Kind: CellColored, Color: col}
				} else {
					g.unknown++
				}
			}
			g.cells[y*w+x] = c
		}
	}
	return g, nil
}

// MustParseGrid is like ParseGrid but panics on error.
func MustParseGrid(text string) *Grid {
	g, err := ParseGrid(text)
	if err != nil {
		panic(fmt.Sprintf("systems: bad map: %v", err))
	}
	return g
}

// Width returns the grid width in cells.
func (g *Grid) Width() int { return g.width }

// Height returns the grid height in cells.
func (g *Grid) Height() int { return g.height }

// Unknown returns how many map characters were not recognised.
func (g *Grid) Unknown() int { return g.unknown }

// InBounds reports whether (x, y) is a grid cell.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// CellAt returns the cell at (x, y). Out of bounds reads as a wall.
func (g *Grid) CellAt(x, y int) Cell {
	if !g.InBounds(x, y) {
		return Cell{Kind: CellWall}
	}
	return g.cells[y*g.width+x]
}

// IsWall returns true if (x, y) is a wall or out of bounds.
func (g *Grid) IsWall(x, y int) bool {
	return g.CellAt(x, y).Kind == CellWall
}

// ColorAt returns the colour of the cell at (x, y), ColorNone if uncoloured.
func (g *Grid) ColorAt(x, y int) components.Color {
	c := g.CellAt(x, y)
	if c.Kind != CellColored {
		return components.ColorNone
	}
	return c.Color
}

// Colors returns the set of colours present in the maze.
func (g *Grid) Colors() components.ColorSet {
	var s components.ColorSet
	for _, c := range g.cells {
		if c.Kind == CellColored {
			s = s.Add(c.Color)
		}
	}
	return s
}

// String serializes the grid back to the text map format, one row per line.
func (g *Grid) String() string {
	var b strings.Builder
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			c := g.cells[y*g.width+x]
			switch c.Kind {
			case CellWall:
				b.WriteByte('#')
			case CellColored:
				b.WriteRune(c.Color.Rune())
			default:
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
