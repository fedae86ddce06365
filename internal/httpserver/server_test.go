package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalobadob/wordsearch/apps/go-server/internal/db"
	"github.com/robalobadob/wordsearch/apps/go-server/internal/game"
	"github.com/robalobadob/wordsearch/apps/go-server/internal/grid"
	"github.com/robalobadob/wordsearch/apps/go-server/internal/profile"
	"github.com/robalobadob/wordsearch/apps/go-server/internal/store"
	"github.com/robalobadob/wordsearch/apps/go-server/internal/words"
)

var testDay = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	conn, err := db.OpenAndMigrate(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	cfg := Config{
		JWTSecret:    "test_secret",
		JWTExpiry:    time.Hour,
		CookieName:   "test_token",
		ClientOrigin: "*",
		DailySalt:    "test_salt",
	}
	s := New(cfg, store.NewMemoryStore(), conn, words.Default())
	s.today = func() time.Time { return testDay }
	ts := httptest.NewServer(s.Router())
	t.Cleanup(func() {
		ts.Close()
		s.Shutdown()
		conn.Close()
	})
	return s, ts
}

// player is an HTTP client with its own cookie jar.
type player struct {
	t    *testing.T
	base string
	jar  http.CookieJar
	http *http.Client
}

func newPlayer(t *testing.T, ts *httptest.Server) *player {
	jar, _ := cookiejar.New(nil)
	return &player{t: t, base: ts.URL, jar: jar, http: &http.Client{Jar: jar}}
}

// do sends body as JSON and decodes the response into out (if non-nil).
func (p *player) do(method, path string, body, out any) int {
	p.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			p.t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, p.base+path, &buf)
	if err != nil {
		p.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := p.http.Do(req)
	if err != nil {
		p.t.Fatal(err)
	}
	defer res.Body.Close()
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			p.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return res.StatusCode
}

// solve selects every placed word of a game through the HTTP API and
// returns the last outcome.
func solve(t *testing.T, s *Server, p *player, gameID string) game.Outcome {
	t.Helper()
	e, err := s.store.Get(context.Background(), gameID)
	if err != nil {
		t.Fatal(err)
	}
	var out game.Outcome
	for _, pl := range e.Game.Placements() {
		cells := pl.Cells()
		code := p.do("POST", "/game/"+gameID+"/select", selectReq{Start: cells[0], End: cells[len(cells)-1]}, &out)
		if code != http.StatusOK || !out.Matched {
			t.Fatalf("select %s: status %d, outcome %+v", pl.Word, code, out)
		}
	}
	return out
}

func TestHealthAndCatalog(t *testing.T) {
	_, ts := newTestServer(t)
	p := newPlayer(t, ts)

	var health map[string]any
	if code := p.do("GET", "/health", nil, &health); code != http.StatusOK || health["ok"] != true {
		t.Fatalf("health: %d %v", code, health)
	}

	var diffs []game.Difficulty
	p.do("GET", "/difficulties", nil, &diffs)
	if len(diffs) != 4 || diffs[0].Name != "easy" || diffs[3].GridSize != 20 {
		t.Fatalf("difficulties: %+v", diffs)
	}

	var cats struct {
		Difficulty string   `json:"difficulty"`
		Categories []string `json:"categories"`
	}
	p.do("GET", "/categories?difficulty=easy", nil, &cats)
	if len(cats.Categories) == 0 || cats.Categories[len(cats.Categories)-1] != words.Random {
		t.Fatalf("categories: %+v", cats)
	}

	var all map[string][]string
	p.do("GET", "/categories", nil, &all)
	if len(all) != 4 {
		t.Fatalf("expected categories for 4 tiers, got %v", all)
	}

	var errBody map[string]string
	if code := p.do("GET", "/categories?difficulty=legendary", nil, &errBody); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if code := p.do("GET", "/nope", nil, &errBody); code != http.StatusNotFound || errBody["error"] != "not_found" {
		t.Fatalf("404 body: %d %v", code, errBody)
	}
}

func TestPlayRoundPersistsProfileAndHistory(t *testing.T) {
	s, ts := newTestServer(t)
	p := newPlayer(t, ts)

	var snap game.Snapshot
	code := p.do("POST", "/game/new", roundReq{Difficulty: "easy", Words: []string{"CAT", "DOG", "BIRD"}}, &snap)
	if code != http.StatusCreated {
		t.Fatalf("new game: %d", code)
	}
	if snap.State != game.StatePlaying || snap.Size != 8 || len(snap.Words) != 3 || snap.TimeLeft != 90 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	last := solve(t, s, p, snap.ID)
	if last.State != game.StateCompleted {
		t.Fatalf("expected completed round, got %s", last.State)
	}
	s.Wait()

	var prof profileRes
	p.do("GET", "/profile/me", nil, &prof)
	if prof.GamesPlayed != 1 || prof.Wins != 1 || prof.Streak != 1 || prof.TotalScore <= last.Score {
		t.Fatalf("profile not updated: %+v", prof.Profile)
	}
	if len(prof.Achievements) == 0 || prof.Achievements[0] != "first_win" {
		t.Fatalf("expected first_win, got %v", prof.Achievements)
	}
	if len(prof.Catalog) != len(game.Achievements()) {
		t.Fatalf("achievement catalog missing")
	}

	var history []struct {
		ID      string `json:"id"`
		Outcome string `json:"outcome"`
	}
	p.do("GET", "/games/mine", nil, &history)
	if len(history) != 1 || history[0].ID != snap.ID || history[0].Outcome != "completed" {
		t.Fatalf("history: %+v", history)
	}

	// The next game starts from the saved career.
	p.do("POST", "/game/new", roundReq{Difficulty: "medium"}, &snap)
	if snap.Career.TotalScore != prof.TotalScore || snap.Career.Streak != 1 {
		t.Fatalf("career not carried into new game: %+v", snap.Career)
	}
}

func TestTwoLiveGamesKeepEveryRoundInCareer(t *testing.T) {
	s, ts := newTestServer(t)
	p := newPlayer(t, ts)

	// Both games load the same empty career before either finishes.
	var a, b game.Snapshot
	p.do("POST", "/game/new", newRoundWords("CAT", "DOG"), &a)
	p.do("POST", "/game/new", newRoundWords("BIRD", "FISH"), &b)

	solve(t, s, p, a.ID)
	s.Wait()
	solve(t, s, p, b.ID)
	s.Wait()

	var history []profile.Round
	p.do("GET", "/games/mine", nil, &history)
	if len(history) != 2 {
		t.Fatalf("history: %+v", history)
	}
	want := history[0].FinalScore + history[1].FinalScore

	var prof profileRes
	p.do("GET", "/profile/me", nil, &prof)
	if prof.TotalScore != want || prof.Streak != 2 || prof.BestStreak != 2 || prof.GamesPlayed != 2 || prof.Wins != 2 {
		t.Fatalf("career lost a round: %+v played=%d wins=%d, want total %d", prof.Career, prof.GamesPlayed, prof.Wins, want)
	}

	// Restarting a game picks up what the other game saved.
	var again game.Snapshot
	if code := p.do("POST", "/game/"+a.ID+"/restart", roundReq{Category: words.Random}, &again); code != http.StatusOK {
		t.Fatalf("restart: %d", code)
	}
	if again.Career.TotalScore != want || again.Career.Streak != 2 {
		t.Fatalf("restart kept a stale career: %+v", again.Career)
	}
}

func TestGameIsPrivateToItsPlayer(t *testing.T) {
	_, ts := newTestServer(t)
	alice, bob := newPlayer(t, ts), newPlayer(t, ts)

	var snap game.Snapshot
	alice.do("POST", "/game/new", nil, &snap)
	if snap.Difficulty != defaultDifficulty {
		t.Fatalf("expected default difficulty, got %s", snap.Difficulty)
	}
	if code := bob.do("GET", "/game/"+snap.ID, nil, nil); code != http.StatusNotFound {
		t.Fatalf("another player saw the game: %d", code)
	}
	if code := alice.do("GET", "/game/"+snap.ID, nil, nil); code != http.StatusOK {
		t.Fatalf("owner could not see the game: %d", code)
	}
	if code := alice.do("GET", "/game/missing", nil, nil); code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing game, got %d", code)
	}
}

func TestPointerRoutesHintsAndPause(t *testing.T) {
	s, ts := newTestServer(t)
	p := newPlayer(t, ts)

	var snap game.Snapshot
	p.do("POST", "/game/new", roundReq{Difficulty: "easy", Words: []string{"CAT", "DOG"}}, &snap)
	id := snap.ID
	e, _ := s.store.Get(context.Background(), id)
	cells := e.Game.Placements()[0].Cells()

	var errBody map[string]string
	if code := p.do("POST", "/game/"+id+"/end", nil, &errBody); code != http.StatusConflict || errBody["error"] != "no_selection" {
		t.Fatalf("end without begin: %d %v", code, errBody)
	}
	if code := p.do("POST", "/game/"+id+"/begin", cellReq{Cell: grid.Cell{Row: 8, Col: 0}}, &errBody); code != http.StatusBadRequest {
		t.Fatalf("out of bounds begin: %d", code)
	}

	var sel struct {
		Selection []grid.Cell `json:"selection"`
	}
	p.do("POST", "/game/"+id+"/begin", cellReq{Cell: cells[0]}, &sel)
	p.do("POST", "/game/"+id+"/extend", cellReq{Cell: cells[len(cells)-1]}, &sel)
	if len(sel.Selection) != len(cells) {
		t.Fatalf("expected %d cell path, got %v", len(cells), sel.Selection)
	}
	var out game.Outcome
	p.do("POST", "/game/"+id+"/end", nil, &out)
	if !out.Matched || out.Points != len(out.Word)*game.BasePoints {
		t.Fatalf("pointer drag did not match: %+v", out)
	}

	var hint hintRes
	p.do("POST", "/game/"+id+"/hint", nil, &hint)
	if !hint.Revealed || hint.Hint == nil || hint.HintsLeft != 2 {
		t.Fatalf("hint: %+v", hint)
	}

	if code := p.do("POST", "/game/"+id+"/pause", nil, &snap); code != http.StatusOK || snap.State != game.StatePaused {
		t.Fatalf("pause: %d %s", code, snap.State)
	}
	if code := p.do("POST", "/game/"+id+"/select", selectReq{Start: cells[0], End: cells[1]}, &errBody); code != http.StatusConflict {
		t.Fatalf("select while paused: %d", code)
	}
	if code := p.do("POST", "/game/"+id+"/shuffle", nil, &errBody); code != http.StatusConflict {
		t.Fatalf("shuffle while paused: %d", code)
	}
	if code := p.do("POST", "/game/"+id+"/resume", nil, &snap); code != http.StatusOK || snap.State != game.StatePlaying {
		t.Fatalf("resume: %d %s", code, snap.State)
	}
	if code := p.do("POST", "/game/"+id+"/shuffle", nil, &snap); code != http.StatusOK || len(snap.Found) != 1 {
		t.Fatalf("shuffle: %d %+v", code, snap)
	}
}

func TestRestart(t *testing.T) {
	_, ts := newTestServer(t)
	p := newPlayer(t, ts)

	var snap game.Snapshot
	p.do("POST", "/game/new", roundReq{Difficulty: "easy", Category: "animals"}, &snap)
	id := snap.ID

	p.do("POST", "/game/"+id+"/restart", nil, &snap)
	if snap.ID != id || snap.Difficulty != "easy" || snap.Category != "animals" || snap.State != game.StatePlaying {
		t.Fatalf("plain restart: %+v", snap)
	}

	// animals is an easy category; a harder tier falls back to random.
	p.do("POST", "/game/"+id+"/restart", roundReq{Difficulty: "hard"}, &snap)
	if snap.Difficulty != "hard" || snap.Category != words.Random || snap.Size != 16 {
		t.Fatalf("restart on hard: %+v", snap)
	}

	var errBody map[string]string
	if code := p.do("POST", "/game/"+id+"/restart", roundReq{Difficulty: "hard", Category: "nonsense"}, &errBody); code != http.StatusBadRequest || errBody["error"] != "unknown_category" {
		t.Fatalf("unknown category: %d %v", code, errBody)
	}
	if code := p.do("POST", "/game/new", roundReq{Difficulty: "legendary"}, &errBody); code != http.StatusBadRequest || errBody["error"] != "unknown_difficulty" {
		t.Fatalf("unknown difficulty: %d %v", code, errBody)
	}
}

func TestSweepDropsIdleGames(t *testing.T) {
	s, ts := newTestServer(t)
	p := newPlayer(t, ts)

	var snap game.Snapshot
	p.do("POST", "/game/new", nil, &snap)
	s.sweep(time.Now().Add(time.Hour), 30*time.Minute)
	if code := p.do("GET", "/game/"+snap.ID, nil, nil); code != http.StatusNotFound {
		t.Fatalf("idle game survived the sweep: %d", code)
	}
}

func TestShutdownStopsCountdowns(t *testing.T) {
	s, ts := newTestServer(t)
	s.cfg.TickInterval = time.Millisecond
	p := newPlayer(t, ts)

	var snap game.Snapshot
	p.do("POST", "/game/new", nil, &snap)
	e, err := s.store.Get(context.Background(), snap.ID)
	if err != nil {
		t.Fatal(err)
	}

	s.Shutdown()
	if s.store.Len() != 0 {
		t.Fatalf("%d games left after shutdown", s.store.Len())
	}
	frozen := e.Game.Snapshot().TimeLeft
	time.Sleep(20 * time.Millisecond)
	if got := e.Game.Snapshot().TimeLeft; got != frozen {
		t.Fatalf("countdown kept running after shutdown: %d -> %d", frozen, got)
	}
}
