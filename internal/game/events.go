package game

import "github.com/robalobadob/wordsearch/apps/go-server/internal/grid"

// Listener receives round events for rendering and feedback.
// Calls are made synchronously while the round is locked; implementations
// must not block and must not call back into the Controller.
type Listener interface {
	GridReady(g *grid.Grid, words []string)
	SelectionChanged(path []grid.Cell)
	WordFound(word string, score int, combo float64)
	WordMissed()
	HintRevealed(word string, cells []grid.Cell)
	Tick(secondsRemaining int)
	RoundEnded(r Result)
}

// NopListener ignores every event.
type NopListener struct{}

func (NopListener) GridReady(*grid.Grid, []string) {}
func (NopListener) SelectionChanged([]grid.Cell) {}
func (NopListener) WordFound(string, int, float64) {}
func (NopListener) WordMissed() {}
func (NopListener) HintRevealed(string, []grid.Cell) {}
func (NopListener) Tick(int) {}
func (NopListener) RoundEnded(Result) {}

// Listeners fans every event out to each listener in order.
type Listeners []Listener

func (ls Listeners) GridReady(g *grid.Grid, words []string) {
	for _, l := range ls {
		l.GridReady(g, words)
	}
}

func (ls Listeners) SelectionChanged(path []grid.Cell) {
	for _, l := range ls {
		l.SelectionChanged(path)
	}
}

func (ls Listeners) WordFound(word string, score int, combo float64) {
	for _, l := range ls {
		l.WordFound(word, score, combo)
	}
}

func (ls Listeners) WordMissed() {
	for _, l := range ls {
		l.WordMissed()
	}
}

func (ls Listeners) HintRevealed(word string, cells []grid.Cell) {
	for _, l := range ls {
		l.HintRevealed(word, cells)
	}
}

func (ls Listeners) Tick(secondsRemaining int) {
	for _, l := range ls {
		l.Tick(secondsRemaining)
	}
}

func (ls Listeners) RoundEnded(r Result) {
	for _, l := range ls {
		l.RoundEnded(r)
	}
}
