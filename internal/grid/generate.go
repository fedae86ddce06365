// apps/go-server/internal/grid/generate.go
//
// Randomised word placement.
// Responsibilities:
//   - Place each target word along one of the eight directions, allowing
//     crossings only where letters agree.
//   - Report which words were placed and which ran out of attempts.
//   - Fill every remaining cell with a random letter A–Z.
//
// Notes:
//   - Words are placed sequentially in the given order; no global search.
//   - The random source is injected so daily puzzles can be reproduced
//     from a seed.

package grid

// MaxAttempts is the per-word trial budget.
const MaxAttempts = 100

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Rand is the random source used by the generator and the session.
// *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// Placement records where a word was written.
type Placement struct {
	Word  string    `json:"word"`
	Start Cell      `json:"start"`
	Dir   Direction `json:"dir"`
}

// Cells returns the placement's cells from first to last letter.
func (p Placement) Cells() []Cell {
	out := make([]Cell, len(p.Word))
	for i := range out {
		out[i] = p.Start.Step(p.Dir, i)
	}
	return out
}

// Layout is the generator output.
type Layout struct {
	Grid       *Grid
	Placements []Placement // in word order, placed words only
	Skipped    []string    // words that could not be placed
}

// Placed returns the words that made it into the grid, in word order.
func (l Layout) Placed() []string {
	out := make([]string, len(l.Placements))
	for i, p := range l.Placements {
		out[i] = p.Word
	}
	return out
}

// Generate builds a size×size grid containing as many of words as fit.
// Words must already be uppercase A–Z.
func Generate(words []string, size int, rng Rand) Layout {
	g := New(size)
	layout := Layout{Grid: g}

	for _, w := range words {
		if p, ok := place(g, w, rng); ok {
			layout.Placements = append(layout.Placements, p)
		} else {
			layout.Skipped = append(layout.Skipped, w)
		}
	}

	fill(g, rng)
	return layout
}

// GenerateWithRetry regenerates the whole grid while any word is skipped,
// up to tries times, and returns the layout with the fewest skips.
func GenerateWithRetry(words []string, size int, rng Rand, tries int) Layout {
	if tries < 1 {
		tries = 1
	}
	var best Layout
	for i := range tries {
		l := Generate(words, size, rng)
		if i == 0 || len(l.Skipped) < len(best.Skipped) {
			best = l
		}
		if len(best.Skipped) == 0 {
			break
		}
	}
	return best
}

// place tries up to MaxAttempts random (start, direction) pairs.
func place(g *Grid, word string, rng Rand) (Placement, bool) {
	if len(word) == 0 || len(word) > g.Size {
		return Placement{}, false
	}
	for range MaxAttempts {
		start := Cell{Row: rng.IntN(g.Size), Col: rng.IntN(g.Size)}
		dir := Directions[rng.IntN(len(Directions))]
		if !canPlace(g, word, start, dir) {
			continue
		}
		for i := 0; i < len(word); i++ {
			g.Set(start.Step(dir, i), word[i])
		}
		return Placement{Word: word, Start: start, Dir: dir}, true
	}
	return Placement{}, false
}

// canPlace checks bounds and that every target cell is empty or already
// holds the same letter.
func canPlace(g *Grid, word string, start Cell, dir Direction) bool {
	for i := 0; i < len(word); i++ {
		c := start.Step(dir, i)
		if !g.InBounds(c) {
			return false
		}
		if b := g.At(c); b != empty && b != word[i] {
			return false
		}
	}
	return true
}

func fill(g *Grid, rng Rand) {
	for i, b := range g.cells {
		if b == empty {
			g.cells[i] = alphabet[rng.IntN(len(alphabet))]
		}
	}
}
