// apps/go-server/internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes two endpoints under /daily:
//   - POST /daily/new         → start (or resume) today's puzzle
//   - GET  /daily/leaderboard → top results for today (or ?date=YYYY-MM-DD)
//
// Everyone gets the same grid on the same day: the round's random source is
// seeded from HMAC(salt, date). Each player can finish it once per day
// (enforced by the daily_results UNIQUE constraint); while it is in
// progress the same game is handed back. Once started it is played through
// the regular /game/{id}/... routes, which refuse to restart it.

package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordsearch/apps/go-server/internal/daily"
	"github.com/robalobadob/wordsearch/apps/go-server/internal/game"
	"github.com/robalobadob/wordsearch/apps/go-server/internal/store"
)

// dailyGames tracks each player's live daily game, keyed by player|date.
type dailyGames struct {
	mu    sync.Mutex
	games map[string]string
}

func dailyKey(playerID, date string) string { return playerID + "|" + date }

// newRes is returned by /daily/new.
type newRes struct {
	GameID string         `json:"gameId,omitempty"`
	Date   string         `json:"date"`
	Played bool           `json:"played"`
	Game   *game.Snapshot `json:"game,omitempty"`
}

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.handleDailyNew)
		r.Get("/leaderboard", s.handleLeaderboard)
	})
}

// handleDailyNew hands back today's game for the caller.
//   - A stored result for today → played=true, no game.
//   - A live daily game for today → that game.
//   - Otherwise a new seeded round.
func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	pid := s.playerID(w, r)
	now := s.today()
	date := daily.DateKey(now)

	played, err := s.daily.AlreadyPlayed(r.Context(), pid, date)
	if err != nil {
		log.Error().Err(err).Msg("daily lookup")
		writeErr(w, http.StatusInternalServerError, "server_error")
		return
	}
	if played {
		writeJSON(w, http.StatusOK, newRes{Date: date, Played: true})
		return
	}

	key := dailyKey(pid, date)
	s.dailies.mu.Lock()
	defer s.dailies.mu.Unlock()

	if id, ok := s.dailies.games[key]; ok {
		e, err := s.store.Get(r.Context(), id)
		switch {
		case errors.Is(err, store.ErrNotFound):
			// swept; start over below
		case err != nil:
			writeErr(w, http.StatusInternalServerError, "server_error")
			return
		default:
			snap := e.Game.Snapshot()
			if snap.State.Terminal() {
				writeJSON(w, http.StatusOK, newRes{Date: date, Played: true})
				return
			}
			writeJSON(w, http.StatusOK, newRes{GameID: id, Date: date, Game: &snap})
			return
		}
	}

	c := s.newController(pid)
	err = c.Start(game.RoundConfig{
		Difficulty: daily.Difficulty,
		Category:   daily.Category,
		Rand:       game.SeededRand(daily.Seed(now, s.cfg.DailySalt)),
		Daily:      date,
	})
	if err != nil {
		c.Close()
		writeGameErr(w, err)
		return
	}
	if err := s.store.Save(r.Context(), store.Entry{Owner: pid, Game: c}); err != nil {
		c.Close()
		writeErr(w, http.StatusInternalServerError, "save_failed")
		return
	}
	s.dailies.games[key] = c.ID
	snap := c.Snapshot()
	writeJSON(w, http.StatusCreated, newRes{GameID: c.ID, Date: date, Game: &snap})
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(s.today())
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit > 100 {
		limit = 100
	}
	rows, err := s.daily.Leaderboard(r.Context(), date, limit)
	if err != nil {
		log.Error().Err(err).Str("date", date).Msg("daily leaderboard")
		writeErr(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}

// rekey moves a player's live daily games to a new player id.
func (d *dailyGames) rekey(from, to string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	moved := map[string]string{}
	for k, id := range d.games {
		if date, ok := strings.CutPrefix(k, from+"|"); ok {
			delete(d.games, k)
			moved[dailyKey(to, date)] = id
		}
	}
	for k, id := range moved {
		if _, exists := d.games[k]; !exists {
			d.games[k] = id
		}
	}
}

// forget drops entries pointing at the given game ids.
func (d *dailyGames) forget(ids []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, id := range d.games {
		for _, gone := range ids {
			if id == gone {
				delete(d.games, k)
			}
		}
	}
}
