package grid

// BuildPath returns the straight run of cells from start to end inclusive.
//
// Horizontal, vertical and 45° diagonal runs are allowed. Any other pair
// yields the single-cell path [start], which can never spell a word of two
// or more letters. The cost is proportional to the path length.
func BuildPath(start, end Cell) []Cell {
	dr, dc := end.Row-start.Row, end.Col-start.Col

	var n int
	switch {
	case dr == 0:
		n = abs(dc)
	case dc == 0:
		n = abs(dr)
	case abs(dr) == abs(dc):
		n = abs(dr)
	default:
		return []Cell{start}
	}

	d := Direction{DR: sign(dr), DC: sign(dc)}
	path := make([]Cell, n+1)
	for i := range path {
		path[i] = start.Step(d, i)
	}
	return path
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
