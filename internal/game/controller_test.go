package game

import (
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/robalobadob/wordsearch/apps/go-server/internal/words"
)

func TestControllerManualCountdown(t *testing.T) {
	c := NewController("g1", Options{Rand: SeededRand(5)})
	defer c.Close()
	if err := c.Start(RoundConfig{Difficulty: "easy", Words: []string{"CAT", "DOG"}}); err != nil {
		t.Fatal(err)
	}
	for range 4 {
		c.Tick()
	}
	if got := c.Snapshot().TimeLeft; got != 86 {
		t.Fatalf("expected 86s left, got %d", got)
	}
	if err := c.Pause(); err != nil {
		t.Fatal(err)
	}
	c.Tick()
	if got := c.Snapshot().TimeLeft; got != 86 {
		t.Fatalf("paused controller ticked: %d", got)
	}
	if err := c.Resume(); err != nil {
		t.Fatal(err)
	}
	c.Tick()
	if snap := c.Snapshot(); snap.TimeLeft != 85 || snap.State != StatePlaying {
		t.Fatalf("after resume: %+v", snap)
	}
}

func TestControllerTickerSuspendedWhilePaused(t *testing.T) {
	c := NewController("g2", Options{Rand: SeededRand(5), Interval: 2 * time.Millisecond})
	defer c.Close()
	if err := c.Start(RoundConfig{Difficulty: "hard", Category: words.Random}); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for c.Snapshot().TimeLeft == 150 {
		if time.Now().After(deadline) {
			t.Fatal("ticker never fired")
		}
		time.Sleep(time.Millisecond)
	}

	if err := c.Pause(); err != nil {
		t.Fatal(err)
	}
	frozen := c.Snapshot().TimeLeft
	time.Sleep(30 * time.Millisecond)
	if got := c.Snapshot().TimeLeft; got != frozen {
		t.Fatalf("time moved while paused: %d -> %d", frozen, got)
	}

	if err := c.Resume(); err != nil {
		t.Fatal(err)
	}
	deadline = time.Now().Add(2 * time.Second)
	for c.Snapshot().TimeLeft == frozen {
		if time.Now().After(deadline) {
			t.Fatal("ticker did not resume")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestControllerExpiresAndStops(t *testing.T) {
	l := &recorder{}
	c := NewController("g3", Options{Rand: SeededRand(9), Listener: l})
	defer c.Close()
	_ = c.Start(RoundConfig{Difficulty: "easy", Words: []string{"CAT"}})
	for range 100 {
		c.Tick()
	}
	if snap := c.Snapshot(); snap.State != StateExpired || snap.TimeLeft != 0 {
		t.Fatalf("expected expired round, got %+v", snap)
	}
	if len(l.results) != 1 {
		t.Fatalf("expected exactly one RoundEnded, got %d", len(l.results))
	}
}

func TestControllerReloadsCareerOnStart(t *testing.T) {
	saved := Career{TotalScore: 40, Streak: 2, BestStreak: 3, Achievements: []string{"first_win"}}
	loads := 0
	c := NewController("g5", Options{
		Rand: SeededRand(3),
		LoadCareer: func() (Career, error) {
			loads++
			return saved, nil
		},
	})
	defer c.Close()

	if err := c.Start(RoundConfig{Difficulty: "easy", Words: []string{"CAT", "DOG"}}); err != nil {
		t.Fatal(err)
	}
	if got := c.Career(); got.TotalScore != 40 || got.Streak != 2 || loads != 1 {
		t.Fatalf("career not loaded: %+v (loads %d)", got, loads)
	}

	// Another game raised the stored totals in the meantime.
	saved.TotalScore = 500
	if err := c.Start(RoundConfig{Difficulty: "easy", Words: []string{"CAT"}}); err != nil {
		t.Fatal(err)
	}
	if got := c.Career(); got.TotalScore != 500 || loads != 2 {
		t.Fatalf("career not refreshed: %+v", got)
	}

	boom := errors.New("db down")
	c2 := NewController("g6", Options{LoadCareer: func() (Career, error) { return Career{}, boom }})
	defer c2.Close()
	if err := c2.Start(RoundConfig{Difficulty: "easy", Words: []string{"CAT"}}); !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
}

func TestCareerApply(t *testing.T) {
	c := Career{TotalScore: 10, Streak: 4, BestStreak: 4}
	unlocked := c.Apply(Result{Outcome: StateCompleted, FinalScore: 90, TimeUsed: 60})
	if c.TotalScore != 100 || c.Streak != 5 || c.BestStreak != 5 {
		t.Fatalf("after win: %+v", c)
	}
	if len(unlocked) != 2 || !slices.Contains(c.Achievements, "streak_master") {
		t.Fatalf("unlocked %+v, career %+v", unlocked, c)
	}
	if again := c.Apply(Result{Outcome: StateExpired, FinalScore: 5}); len(again) != 0 || c.Streak != 0 || c.BestStreak != 5 || c.TotalScore != 105 {
		t.Fatalf("after loss: %+v %+v", c, again)
	}
}

func TestControllerRestartSupersedesAndKeepsCareer(t *testing.T) {
	c := NewController("g4", Options{Rand: SeededRand(1), Career: Career{TotalScore: 100, BestStreak: 2}})
	defer c.Close()

	_ = c.Start(RoundConfig{Difficulty: "easy", Words: []string{"CAT", "DOG"}})
	for _, p := range c.Placements() {
		cells := p.Cells()
		if _, err := c.Select(cells[0], cells[len(cells)-1]); err != nil {
			t.Fatal(err)
		}
	}
	if snap := c.Snapshot(); snap.State != StateCompleted {
		t.Fatalf("expected completed, got %s", snap.State)
	}
	career := c.Career()
	if career.TotalScore <= 100 || career.Streak != 1 || career.BestStreak != 2 {
		t.Fatalf("career after win: %+v", career)
	}

	// Mid-round restart replaces the round; career is untouched.
	_ = c.Start(RoundConfig{Difficulty: "medium", Category: words.Random})
	_ = c.BeginSelection(c.Placements()[0].Start)
	if err := c.Start(RoundConfig{Difficulty: "easy", Category: "animals"}); err != nil {
		t.Fatal(err)
	}
	snap := c.Snapshot()
	if snap.Difficulty != "easy" || snap.Category != "animals" || len(snap.Found) != 0 || len(snap.Selection) != 0 {
		t.Fatalf("restart did not reset the round: %+v", snap)
	}
	if got := c.Career(); got.TotalScore != career.TotalScore || got.Streak != 1 {
		t.Fatalf("restart changed career: %+v", got)
	}

	// A failed start leaves the current round alone.
	if err := c.Start(RoundConfig{Difficulty: "impossible"}); !errors.Is(err, ErrUnknownDifficulty) {
		t.Fatalf("expected ErrUnknownDifficulty, got %v", err)
	}
	if c.Snapshot().Difficulty != "easy" {
		t.Fatal("failed start replaced the round")
	}
}

func TestControllerConcurrentAccess(t *testing.T) {
	c := NewController("g5", Options{Rand: SeededRand(2), Interval: time.Millisecond})
	defer c.Close()
	_ = c.Start(RoundConfig{Difficulty: "medium", Category: words.Random})

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 5 {
			case 0:
				_ = c.Pause()
			case 1:
				_ = c.Resume()
			case 2:
				c.Hint()
			case 3:
				_ = c.Shuffle()
			default:
				c.Snapshot()
			}
		}(i)
	}
	wg.Wait()
	if hl := c.Snapshot().HintsLeft; hl < 0 {
		t.Fatalf("hints went negative: %d", hl)
	}
}
