package grid

// Spell concatenates the letters along path. It returns false if any cell
// is outside the grid.
func Spell(path []Cell, g *Grid) (string, bool) {
	b := make([]byte, len(path))
	for i, c := range path {
		if !g.InBounds(c) {
			return "", false
		}
		b[i] = g.At(c)
	}
	return string(b), true
}

// Match checks the letters along path, forwards then backwards, against
// the remaining words. Words already found must not be in remaining.
func Match(path []Cell, g *Grid, remaining []string) (string, bool) {
	s, ok := Spell(path, g)
	if !ok || s == "" {
		return "", false
	}
	for _, w := range remaining {
		if w == s {
			return w, true
		}
	}
	rev := reverse(s)
	for _, w := range remaining {
		if w == rev {
			return w, true
		}
	}
	return "", false
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
