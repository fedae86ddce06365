package game

import "github.com/samber/lo"

// Achievement is a one-time career unlock.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type achievementRule struct {
	Achievement
	met func(r Result, c Career) bool
}

var achievementRules = []achievementRule{
	{Achievement{"first_win", "First Victory", "Complete your first game"},
		func(r Result, _ Career) bool { return r.Outcome == StateCompleted }},
	{Achievement{"speed_demon", "Speed Demon", "Complete a game in under 30 seconds"},
		func(r Result, _ Career) bool { return r.Outcome == StateCompleted && r.TimeUsed < 30 }},
	{Achievement{"combo_master", "Combo Master", "Achieve a 3x combo multiplier"},
		func(r Result, _ Career) bool { return r.BestCombo >= 3 }},
	{Achievement{"high_scorer", "High Scorer", "Score over 500 points in a single game"},
		func(r Result, _ Career) bool { return r.Score >= 500 }},
	{Achievement{"streak_master", "Streak Master", "Win 5 games in a row"},
		func(_ Result, c Career) bool { return c.Streak >= 5 }},
}

// Achievements returns the catalogue of unlockable achievements.
func Achievements() []Achievement {
	return lo.Map(achievementRules, func(r achievementRule, _ int) Achievement {
		return r.Achievement
	})
}

// unlock appends newly met achievements to the career and returns them.
func unlock(c *Career, r Result) []Achievement {
	out := []Achievement{}
	for _, rule := range achievementRules {
		if lo.Contains(c.Achievements, rule.ID) || !rule.met(r, *c) {
			continue
		}
		c.Achievements = append(c.Achievements, rule.ID)
		out = append(out, rule.Achievement)
	}
	return out
}
