package game

import "math"

const (
	ComboEvery = 3   // consecutive finds per step
	ComboStep  = 0.5 // multiplier increase per step
	ComboMax   = 5.0
	BasePoints = 10 // per letter
)

// Combo tracks the run of consecutive correct finds.
type Combo struct {
	Multiplier float64 `json:"multiplier"`
	Count      int     `json:"count"`
	Best       float64 `json:"best"`
}

func newCombo() Combo {
	return Combo{Multiplier: 1, Best: 1}
}

// Points scores a word at the current multiplier, rounding down.
func (c *Combo) Points(word string) int {
	return int(math.Floor(float64(len(word)*BasePoints) * c.Multiplier))
}

// Hit records a correct find. Every ComboEvery-th consecutive find raises
// the multiplier by ComboStep, up to ComboMax.
func (c *Combo) Hit() {
	c.Count++
	if c.Count%ComboEvery == 0 {
		c.Multiplier = math.Min(c.Multiplier+ComboStep, ComboMax)
	}
	if c.Multiplier > c.Best {
		c.Best = c.Multiplier
	}
}

// Miss zeroes the run.
func (c *Combo) Miss() {
	c.Multiplier = 1
	c.Count = 0
}
