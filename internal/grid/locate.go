package grid

import "github.com/zyedidia/generic/mapset"

// Locate finds the first occurrence of word, scanning start cells in
// row-major order and directions by index. The returned cells run from
// the first letter to the last.
func Locate(word string, g *Grid) ([]Cell, bool) {
	if len(word) == 0 {
		return nil, false
	}
	for r := range g.Size {
		for c := range g.Size {
			start := Cell{Row: r, Col: c}
			if g.At(start) != word[0] {
				continue
			}
			for _, d := range Directions {
				if matchesAt(g, word, start, d) {
					return Placement{Word: word, Start: start, Dir: d}.Cells(), true
				}
			}
		}
	}
	return nil, false
}

func matchesAt(g *Grid, word string, start Cell, d Direction) bool {
	for i := 0; i < len(word); i++ {
		c := start.Step(d, i)
		if !g.InBounds(c) || g.At(c) != word[i] {
			return false
		}
	}
	return true
}

// Covered returns the set of cells used by any of the placements.
func Covered(placements []Placement) mapset.Set[Cell] {
	set := mapset.New[Cell]()
	for _, p := range placements {
		for _, c := range p.Cells() {
			set.Put(c)
		}
	}
	return set
}
