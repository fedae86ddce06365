// apps/go-server/internal/grid/grid.go
//
// Letter grid for a word search round.
// Defines:
//   - Cell: a (row, col) coordinate, used as a value.
//   - Grid: an N×N matrix of uppercase letters, indexed by Cell.
//
// The grid is the single source of truth for letters; anything rendered
// in the browser is a projection of Rows().

package grid

import (
	"encoding/json"
	"fmt"
)

// empty marks a cell that has not been written yet (only during generation).
const empty byte = 0

// Cell is a 0-indexed grid coordinate.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// String returns "(row,col)".
func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Grid holds Size×Size letters in row-major order.
type Grid struct {
	Size  int
	cells []byte
}

// New allocates an empty size×size grid.
func New(size int) *Grid {
	if size < 0 {
		size = 0
	}
	return &Grid{Size: size, cells: make([]byte, size*size)}
}

// FromRows builds a grid from equal-length rows of letters.
// Mostly useful in tests and for reloading a rendered grid.
func FromRows(rows []string) (*Grid, error) {
	g := New(len(rows))
	for r, row := range rows {
		if len(row) != len(rows) {
			return nil, fmt.Errorf("row %d: want %d letters, got %d", r, len(rows), len(row))
		}
		for c := 0; c < len(row); c++ {
			g.cells[r*g.Size+c] = row[c]
		}
	}
	return g, nil
}

// InBounds reports whether c lies inside the grid.
func (g *Grid) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < g.Size && c.Col >= 0 && c.Col < g.Size
}

// At returns the letter at c. Callers must check InBounds first.
func (g *Grid) At(c Cell) byte {
	return g.cells[c.Row*g.Size+c.Col]
}

// Set writes letter b at c.
func (g *Grid) Set(c Cell, b byte) {
	g.cells[c.Row*g.Size+c.Col] = b
}

// Filled reports whether every cell holds a letter.
func (g *Grid) Filled() bool {
	for _, b := range g.cells {
		if b == empty {
			return false
		}
	}
	return true
}

// Rows projects the grid into one string per row.
func (g *Grid) Rows() []string {
	out := make([]string, g.Size)
	for r := range g.Size {
		out[r] = string(g.cells[r*g.Size : (r+1)*g.Size])
	}
	return out
}

// Clone returns an independent copy.
func (g *Grid) Clone() *Grid {
	cp := &Grid{Size: g.Size, cells: make([]byte, len(g.cells))}
	copy(cp.cells, g.cells)
	return cp
}

// MarshalJSON encodes the grid as its rows.
func (g *Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Rows())
}
