package grid

// Direction is a unit step between neighbouring cells.
type Direction struct {
	DR int `json:"dr"`
	DC int `json:"dc"`
}

// Directions lists the eight placement/selection directions.
// The order is fixed: Locate scans directions by index.
var Directions = [8]Direction{
	{0, 1},   // right
	{1, 0},   // down
	{1, 1},   // down-right
	{1, -1},  // down-left
	{0, -1},  // left
	{-1, 0},  // up
	{-1, -1}, // up-left
	{-1, 1},  // up-right
}

// Step returns the cell n steps from c along d.
func (c Cell) Step(d Direction, n int) Cell {
	return Cell{Row: c.Row + d.DR*n, Col: c.Col + d.DC*n}
}
