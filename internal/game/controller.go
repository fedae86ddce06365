// apps/go-server/internal/game/controller.go
//
// Controller owns one player's current round and the countdown driving it.
//
// Responsibilities:
//   - Replace the session wholesale on every Start (reset, new difficulty,
//     new category, daily challenge); career totals carry over and are
//     reloaded first when a loader is configured.
//   - Run the one-second countdown on its own goroutine, stopped while
//     paused and once the round ends.
//   - Serialise every call onto the session with a mutex, so the HTTP
//     layer can call from any goroutine.

package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/robalobadob/wordsearch/apps/go-server/internal/grid"
	"github.com/robalobadob/wordsearch/apps/go-server/internal/words"
)

// DefaultTickInterval is one countdown unit.
const DefaultTickInterval = time.Second

// Options configures a Controller.
type Options struct {
	Catalog *words.Catalog
	Career  Career
	// LoadCareer, when set, refreshes the career before each round so that
	// totals written by other games are picked up.
	LoadCareer func() (Career, error)
	Listener   Listener
	Rand       grid.Rand
	// Interval between countdown ticks. Zero disables the background
	// ticker; callers then drive the countdown with Tick.
	Interval time.Duration
}

// Controller is safe for concurrent use.
type Controller struct {
	ID string

	mu       sync.Mutex
	opts     Options
	career   Career
	sess     *Session
	stop     chan struct{} // non-nil while the ticker runs
	lastUsed time.Time
}

// NewController returns a controller with an idle session.
func NewController(id string, opts Options) *Controller {
	if opts.Catalog == nil {
		opts.Catalog = words.Default()
	}
	if opts.Listener == nil {
		opts.Listener = NopListener{}
	}
	if opts.Rand == nil {
		opts.Rand = NewRand()
	}
	c := &Controller{ID: id, opts: opts, career: opts.Career.clone(), lastUsed: time.Now()}
	c.sess = NewSession(opts.Catalog, &c.career, opts.Listener, opts.Rand)
	return c
}

// Start supersedes any round in progress with a new one.
func (c *Controller) Start(cfg RoundConfig) error {
	var (
		fresh  Career
		loaded bool
	)
	if c.opts.LoadCareer != nil {
		var err error
		if fresh, err = c.opts.LoadCareer(); err != nil {
			return fmt.Errorf("load career: %w", err)
		}
		loaded = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	sess := NewSession(c.opts.Catalog, &c.career, c.opts.Listener, c.opts.Rand)
	if err := sess.Start(cfg); err != nil {
		return err
	}
	if loaded {
		c.career = fresh.clone()
	}
	c.stopTickerLocked()
	c.sess = sess
	c.startTickerLocked()
	return nil
}

// Pause suspends the round and its countdown.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	if err := c.sess.Pause(); err != nil {
		return err
	}
	c.stopTickerLocked()
	return nil
}

// Resume restarts the countdown.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	if err := c.sess.Resume(); err != nil {
		return err
	}
	c.startTickerLocked()
	return nil
}

// Tick advances the countdown by one unit. Used when Interval is zero.
func (c *Controller) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sess.Tick()
	c.afterLocked()
}

// BeginSelection, ExtendSelection and EndSelection forward pointer events.
func (c *Controller) BeginSelection(cell grid.Cell) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	return c.sess.BeginSelection(cell)
}

func (c *Controller) ExtendSelection(cell grid.Cell) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	return c.sess.ExtendSelection(cell)
}

func (c *Controller) EndSelection() (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	out, err := c.sess.EndSelection()
	c.afterLocked()
	return out, err
}

// Select evaluates a complete drag from start to end.
func (c *Controller) Select(start, end grid.Cell) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	out, err := c.sess.Select(start, end)
	c.afterLocked()
	return out, err
}

// Hint reveals one remaining word, if any hints are left.
func (c *Controller) Hint() (Hint, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	return c.sess.UseHint()
}

// Shuffle scrambles the filler letters.
func (c *Controller) Shuffle() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	return c.sess.Shuffle()
}

// Career returns a copy of the running totals.
func (c *Controller) Career() Career {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.career.clone()
}

// Idle reports how long the controller has gone without player input.
func (c *Controller) Idle(now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Sub(c.lastUsed)
}

// Close stops the countdown. The controller must not be used afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTickerLocked()
}

// Snapshot is a read-only view of the current round.
type Snapshot struct {
	ID         string      `json:"gameId"`
	State      State       `json:"state"`
	Difficulty string      `json:"difficulty"`
	Category   string      `json:"category"`
	Daily      string      `json:"daily,omitempty"`
	Size       int         `json:"size"`
	Grid       []string    `json:"grid"`
	Words      []string    `json:"words"`
	Found      []string    `json:"found"`
	Selection  []grid.Cell `json:"selection"`
	Score      int         `json:"score"`
	Combo      Combo       `json:"combo"`
	HintsLeft  int         `json:"hintsLeft"`
	TimeLeft   int         `json:"timeLeft"`
	Career     Career      `json:"career"`
}

// Snapshot copies the current round state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.sess
	snap := Snapshot{
		ID:         c.ID,
		State:      s.State,
		Difficulty: s.Difficulty.Name,
		Category:   s.Category,
		Daily:      s.Daily,
		Words:      append([]string{}, s.Words...),
		Found:      append([]string{}, s.Found...),
		Selection:  append([]grid.Cell{}, s.Selection...),
		Score:      s.Score,
		Combo:      s.Combo,
		HintsLeft:  s.HintsLeft,
		TimeLeft:   s.TimeLeft,
		Career:     c.career.clone(),
	}
	if s.Grid != nil {
		snap.Size = s.Grid.Size
		snap.Grid = s.Grid.Rows()
	}
	return snap
}

// Placements returns the word placements of the current round.
func (c *Controller) Placements() []grid.Placement {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]grid.Placement(nil), c.sess.Placements...)
}

func (c *Controller) touch() { c.lastUsed = time.Now() }

// afterLocked stops the countdown once the round is over.
func (c *Controller) afterLocked() {
	if c.sess.State.Terminal() {
		c.stopTickerLocked()
	}
}

func (c *Controller) startTickerLocked() {
	if c.stop != nil || c.opts.Interval <= 0 || c.sess.State != StatePlaying {
		return
	}
	stop := make(chan struct{})
	c.stop = stop
	go c.run(stop, c.opts.Interval)
}

func (c *Controller) stopTickerLocked() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

// run delivers ticks until stop is closed. A tick that races with a stop
// is dropped by comparing against the current stop channel.
func (c *Controller) run(stop chan struct{}, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			c.mu.Lock()
			if c.stop != stop {
				c.mu.Unlock()
				return
			}
			c.sess.Tick()
			c.afterLocked()
			c.mu.Unlock()
		}
	}
}
