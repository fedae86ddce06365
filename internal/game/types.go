// apps/go-server/internal/game/types.go
//
// Core type definitions for the word search game engine.
// Defines:
//   - State: lifecycle of a round (idle → playing ⇄ paused → completed/expired).
//   - Difficulty: static tier table (grid size, time budget, word count).
//   - RoundConfig: what to play next.
//   - Outcome, Hint, Result: values reported back to callers and listeners.
//   - Career: totals that survive from one round to the next.

package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robalobadob/wordsearch/apps/go-server/internal/grid"
)

// State is the lifecycle state of a round.
type State string

const (
	StateIdle      State = "idle"
	StatePlaying   State = "playing"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
	StateExpired   State = "expired"
)

// Terminal reports whether the round is over.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateExpired
}

var (
	ErrNotPlaying        = errors.New("round is not in progress")
	ErrRoundInProgress   = errors.New("round already in progress")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	ErrNoSelection       = errors.New("no selection in progress")
	ErrOutOfBounds       = errors.New("cell out of bounds")
	ErrNoWords           = errors.New("no words could be placed")
)

// Difficulty is one row of the static tier table.
type Difficulty struct {
	Name       string `json:"name"`
	GridSize   int    `json:"gridSize"`
	TimeBudget int    `json:"timeBudget"` // seconds
	WordCount  int    `json:"wordCount"`
}

// Difficulties lists the tiers in increasing order.
var Difficulties = []Difficulty{
	{Name: "easy", GridSize: 8, TimeBudget: 90, WordCount: 7},
	{Name: "medium", GridSize: 12, TimeBudget: 120, WordCount: 7},
	{Name: "hard", GridSize: 16, TimeBudget: 150, WordCount: 6},
	{Name: "expert", GridSize: 20, TimeBudget: 180, WordCount: 6},
}

// LookupDifficulty finds a tier by name (case-insensitive).
func LookupDifficulty(name string) (Difficulty, error) {
	for _, d := range Difficulties {
		if strings.EqualFold(d.Name, name) {
			return d, nil
		}
	}
	return Difficulty{}, fmt.Errorf("%w: %q", ErrUnknownDifficulty, name)
}

// RoundConfig describes the next round.
type RoundConfig struct {
	Difficulty string
	Category   string    // words.Random pools every category of the tier
	Words      []string  // explicit word set; overrides Category when set
	Rand       grid.Rand // optional seeded source for this round (daily puzzles)
	Daily      string    // date key when this is a daily challenge round
}

// Outcome is the result of evaluating one selection.
type Outcome struct {
	Matched bool        `json:"matched"`
	Word    string      `json:"word,omitempty"`
	Path    []grid.Cell `json:"path"`
	Points  int         `json:"points"`
	Score   int         `json:"score"`
	Combo   float64     `json:"combo"`
	State   State       `json:"state"`
}

// Hint is a revealed word location.
type Hint struct {
	Word  string      `json:"word"`
	Cells []grid.Cell `json:"cells"`
}

// Result summarises a finished round.
type Result struct {
	Outcome         State         `json:"outcome"`
	Difficulty      string        `json:"difficulty"`
	Category        string        `json:"category"`
	Daily           string        `json:"daily,omitempty"`
	Score           int           `json:"score"`
	TimeBonus       int           `json:"timeBonus"`
	FinalScore      int           `json:"finalScore"`
	WordsFound      int           `json:"wordsFound"`
	TotalWords      int           `json:"totalWords"`
	BestCombo       float64       `json:"bestCombo"`
	TimeUsed        int           `json:"timeUsed"` // seconds
	NewAchievements []Achievement `json:"newAchievements"`
	Career          Career        `json:"career"`
}

// Career holds the totals carried across rounds.
type Career struct {
	TotalScore   int      `json:"totalScore"`
	Streak       int      `json:"streak"`
	BestStreak   int      `json:"bestStreak"`
	Achievements []string `json:"achievements"`
}

// Apply adds a finished round to the totals and returns the achievements
// it unlocked.
func (c *Career) Apply(r Result) []Achievement {
	c.TotalScore += r.FinalScore
	if r.Outcome == StateCompleted {
		c.Streak++
		c.BestStreak = max(c.BestStreak, c.Streak)
	} else {
		c.Streak = 0
	}
	return unlock(c, r)
}

func (c Career) clone() Career {
	c.Achievements = append([]string(nil), c.Achievements...)
	return c
}
