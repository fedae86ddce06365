// apps/go-server/internal/game/engine.go
//
// Core game engine for a single word search round.
// Responsibilities:
//   - Start rounds: pick words for a tier/category, generate the grid,
//     reset score/combo/hints/found words.
//   - Turn pointer input into straight-line selections and match them
//     (forwards or backwards) against the words still hidden.
//   - Track state transitions: idle → playing ⇄ paused → completed/expired.
//   - Hints, shuffles, countdown ticks, end-of-round scoring and career totals.
//
// Notes:
//   - A Session is not safe for concurrent use; Controller serialises access.
//   - Placements are kept from generation so a shuffle never disturbs a word.
//   - Words that still cannot be placed after regenerating are dropped from
//     the round, so completion means "every placed word found".

package game

import (
	"math/rand/v2"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/robalobadob/wordsearch/apps/go-server/internal/grid"
	"github.com/robalobadob/wordsearch/apps/go-server/internal/words"
)

const (
	defaultHints    = 3
	generationTries = 10
	timeBonusPerSec = 1
)

// Session is the live state of one round.
type Session struct {
	State      State
	Difficulty Difficulty
	Category   string
	Daily      string

	Grid       *grid.Grid
	Words      []string
	Placements []grid.Placement
	Found      []string // discovery order

	Selection []grid.Cell
	selecting bool

	Score     int
	Combo     Combo
	HintsLeft int
	TimeLeft  int // seconds

	catalog  *words.Catalog
	career   *Career
	listener Listener
	rng      grid.Rand // session default source
	roundRng grid.Rand // source of the current round
}

// NewSession returns an idle session. career is updated in place when a
// round ends; it may be shared with the owner of the session.
func NewSession(catalog *words.Catalog, career *Career, l Listener, rng grid.Rand) *Session {
	if l == nil {
		l = NopListener{}
	}
	if career == nil {
		career = &Career{}
	}
	if rng == nil {
		rng = NewRand()
	}
	return &Session{
		State:    StateIdle,
		catalog:  catalog,
		career:   career,
		listener: l,
		rng:      rng,
		Combo:    newCombo(),
	}
}

// Start begins a new round. Allowed from idle and finished states.
func (s *Session) Start(cfg RoundConfig) error {
	if s.State == StatePlaying || s.State == StatePaused {
		return ErrRoundInProgress
	}
	diff, err := LookupDifficulty(cfg.Difficulty)
	if err != nil {
		return err
	}
	rng := cfg.Rand
	if rng == nil {
		rng = s.rng
	}

	var list []string
	if len(cfg.Words) > 0 {
		list = lo.Uniq(lo.FilterMap(cfg.Words, func(w string, _ int) (string, bool) {
			return words.Normalize(w)
		}))
	} else {
		list, err = s.catalog.Pick(diff.Name, cfg.Category, diff.WordCount, diff.GridSize, rng)
		if err != nil {
			return err
		}
	}

	layout := grid.GenerateWithRetry(list, diff.GridSize, rng, generationTries)
	if len(layout.Skipped) > 0 {
		log.Warn().
			Strs("skipped", layout.Skipped).
			Str("difficulty", diff.Name).
			Msg("words dropped from round after placement retries")
	}
	if len(layout.Placements) == 0 {
		return ErrNoWords
	}

	category := cfg.Category
	switch {
	case len(cfg.Words) > 0:
		category = "custom"
	case category == "":
		category = words.Random
	}

	s.State = StatePlaying
	s.Difficulty = diff
	s.Category = category
	s.Daily = cfg.Daily
	s.Grid = layout.Grid
	s.Placements = layout.Placements
	s.Words = layout.Placed()
	s.Found = []string{}
	s.Selection = nil
	s.selecting = false
	s.Score = 0
	s.Combo = newCombo()
	s.HintsLeft = defaultHints
	s.TimeLeft = diff.TimeBudget
	s.roundRng = rng

	s.listener.GridReady(s.Grid, s.Words)
	return nil
}

// NewRand returns a randomly seeded source.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// SeededRand returns a deterministic source for seed.
func SeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed>>32|seed<<32))
}

// Remaining returns the words not yet found, in word order.
func (s *Session) Remaining() []string {
	return lo.Filter(s.Words, func(w string, _ int) bool {
		return !lo.Contains(s.Found, w)
	})
}

// Pause suspends a playing round and drops any in-flight selection.
func (s *Session) Pause() error {
	if s.State != StatePlaying {
		return ErrNotPlaying
	}
	s.State = StatePaused
	s.Selection, s.selecting = nil, false
	return nil
}

// Resume continues a paused round.
func (s *Session) Resume() error {
	if s.State != StatePaused {
		return ErrNotPlaying
	}
	s.State = StatePlaying
	return nil
}

// Tick counts down one second. At zero the round expires.
func (s *Session) Tick() {
	if s.State != StatePlaying {
		return
	}
	s.TimeLeft--
	s.listener.Tick(s.TimeLeft)
	if s.TimeLeft <= 0 {
		s.TimeLeft = 0
		s.finish(StateExpired)
	}
}

// BeginSelection starts a drag at c.
func (s *Session) BeginSelection(c grid.Cell) error {
	if s.State != StatePlaying {
		return ErrNotPlaying
	}
	if !s.Grid.InBounds(c) {
		return ErrOutOfBounds
	}
	s.Selection, s.selecting = []grid.Cell{c}, true
	s.listener.SelectionChanged(s.Selection)
	return nil
}

// ExtendSelection moves the drag end to c and recomputes the path.
func (s *Session) ExtendSelection(c grid.Cell) error {
	if s.State != StatePlaying {
		return ErrNotPlaying
	}
	if !s.selecting {
		return ErrNoSelection
	}
	if !s.Grid.InBounds(c) {
		return ErrOutOfBounds
	}
	s.Selection = grid.BuildPath(s.Selection[0], c)
	s.listener.SelectionChanged(s.Selection)
	return nil
}

// EndSelection releases the drag and evaluates the selected path.
func (s *Session) EndSelection() (Outcome, error) {
	if s.State != StatePlaying {
		return Outcome{}, ErrNotPlaying
	}
	if !s.selecting {
		return Outcome{}, ErrNoSelection
	}
	path := s.Selection
	s.Selection, s.selecting = nil, false

	out := Outcome{Path: path}
	if word, ok := grid.Match(path, s.Grid, s.Remaining()); ok {
		out.Matched, out.Word = true, word
		out.Points = s.Combo.Points(word)
		s.Score += out.Points
		s.Combo.Hit()
		s.Found = append(s.Found, word)
		s.listener.WordFound(word, s.Score, s.Combo.Multiplier)
		if len(s.Found) == len(s.Words) {
			s.finish(StateCompleted)
		}
	} else {
		s.Combo.Miss()
		s.listener.WordMissed()
	}

	out.Score, out.Combo, out.State = s.Score, s.Combo.Multiplier, s.State
	return out, nil
}

// Select runs a whole drag from start to end.
func (s *Session) Select(start, end grid.Cell) (Outcome, error) {
	if err := s.BeginSelection(start); err != nil {
		return Outcome{}, err
	}
	if err := s.ExtendSelection(end); err != nil {
		s.Selection, s.selecting = nil, false
		return Outcome{}, err
	}
	return s.EndSelection()
}

// UseHint reveals a random remaining word. It is a no-op when the round is
// not playing, hints are used up, or nothing remains.
func (s *Session) UseHint() (Hint, bool) {
	if s.State != StatePlaying || s.HintsLeft <= 0 {
		return Hint{}, false
	}
	remaining := s.Remaining()
	if len(remaining) == 0 {
		return Hint{}, false
	}
	word := remaining[s.roundRng.IntN(len(remaining))]
	cells, ok := grid.Locate(word, s.Grid)
	if !ok {
		return Hint{}, false
	}
	s.HintsLeft--
	s.listener.HintRevealed(word, cells)
	return Hint{Word: word, Cells: cells}, true
}

// Shuffle permutes the filler letters. Cells of every placed word, found
// or hidden, keep their letters.
func (s *Session) Shuffle() error {
	if s.State != StatePlaying {
		return ErrNotPlaying
	}
	covered := grid.Covered(s.Placements)
	var free []grid.Cell
	for r := range s.Grid.Size {
		for c := range s.Grid.Size {
			if cell := (grid.Cell{Row: r, Col: c}); !covered.Has(cell) {
				free = append(free, cell)
			}
		}
	}
	for i := len(free) - 1; i > 0; i-- {
		j := s.roundRng.IntN(i + 1)
		a, b := s.Grid.At(free[i]), s.Grid.At(free[j])
		s.Grid.Set(free[i], b)
		s.Grid.Set(free[j], a)
	}
	s.listener.GridReady(s.Grid, s.Words)
	return nil
}

// finish closes the round, scores it and updates the career.
func (s *Session) finish(outcome State) {
	s.State = outcome
	s.Selection, s.selecting = nil, false

	r := Result{
		Outcome:    outcome,
		Difficulty: s.Difficulty.Name,
		Category:   s.Category,
		Daily:      s.Daily,
		Score:      s.Score,
		WordsFound: len(s.Found),
		TotalWords: len(s.Words),
		BestCombo:  s.Combo.Best,
		TimeUsed:   s.Difficulty.TimeBudget - s.TimeLeft,
	}
	if outcome == StateCompleted {
		r.TimeBonus = s.TimeLeft * timeBonusPerSec
	}
	r.FinalScore = r.Score + r.TimeBonus

	r.NewAchievements = s.career.Apply(r)
	r.Career = s.career.clone()

	s.listener.RoundEnded(r)
}
