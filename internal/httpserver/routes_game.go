// apps/go-server/internal/httpserver/routes_game.go
//
// HTTP routes for regular rounds.
//   - POST /game/new                → create a game and start its first round
//   - GET  /game/{id}               → current snapshot
//   - POST /game/{id}/restart       → supersede the round (same or new tier/category)
//   - POST /game/{id}/select        → evaluate a whole drag {start, end}
//   - POST /game/{id}/begin|extend  → pointer down / move {cell}
//   - POST /game/{id}/end           → pointer up, evaluates the path
//   - POST /game/{id}/pause|resume|hint|shuffle
//   - GET  /game/{id}/events        → WebSocket event stream
//
// A game is only visible to the player that created it.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/wordsearch/apps/go-server/internal/events"
	"github.com/robalobadob/wordsearch/apps/go-server/internal/game"
	"github.com/robalobadob/wordsearch/apps/go-server/internal/grid"
	"github.com/robalobadob/wordsearch/apps/go-server/internal/store"
	"github.com/robalobadob/wordsearch/apps/go-server/internal/words"
)

const defaultDifficulty = "easy"

// roundReq is the payload for /game/new and /game/{id}/restart.
type roundReq struct {
	Difficulty string   `json:"difficulty"`
	Category   string   `json:"category"`
	Words      []string `json:"words"` // optional custom word set
}

type selectReq struct {
	Start grid.Cell `json:"start"`
	End   grid.Cell `json:"end"`
}

type cellReq struct {
	Cell grid.Cell `json:"cell"`
}

type hintRes struct {
	Revealed  bool       `json:"revealed"`
	Hint      *game.Hint `json:"hint,omitempty"`
	HintsLeft int        `json:"hintsLeft"`
}

type gameHandler func(w http.ResponseWriter, r *http.Request, c *game.Controller)

func (s *Server) mountGame(r chi.Router) {
	r.Post("/game/new", s.handleNewGame)
	r.Get("/game/{id}", s.withGame(func(w http.ResponseWriter, r *http.Request, c *game.Controller) {
		writeJSON(w, http.StatusOK, c.Snapshot())
	}))
	r.Post("/game/{id}/restart", s.withGame(s.handleRestart))
	r.Post("/game/{id}/select", s.withGame(s.handleSelect))
	r.Post("/game/{id}/begin", s.withGame(s.handleBegin))
	r.Post("/game/{id}/extend", s.withGame(s.handleExtend))
	r.Post("/game/{id}/end", s.withGame(s.handleEnd))
	r.Post("/game/{id}/pause", s.withGame(func(w http.ResponseWriter, r *http.Request, c *game.Controller) {
		s.snapshotAfter(w, c, c.Pause())
	}))
	r.Post("/game/{id}/resume", s.withGame(func(w http.ResponseWriter, r *http.Request, c *game.Controller) {
		s.snapshotAfter(w, c, c.Resume())
	}))
	r.Post("/game/{id}/shuffle", s.withGame(func(w http.ResponseWriter, r *http.Request, c *game.Controller) {
		s.snapshotAfter(w, c, c.Shuffle())
	}))
	r.Post("/game/{id}/hint", s.withGame(s.handleHint))
}

// withGame resolves {id} to a game owned by the caller.
func (s *Server) withGame(h gameHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, store.ErrNotFound) || (err == nil && e.Owner != s.playerID(w, r)) {
			writeErr(w, http.StatusNotFound, "not_found")
			return
		}
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "server_error")
			return
		}
		h(w, r, e.Game)
	}
}

// newController builds a game for owner. Each round starts from the
// owner's saved career.
func (s *Server) newController(owner string) *game.Controller {
	id := genID()
	return game.NewController(id, game.Options{
		Catalog:    s.catalog,
		LoadCareer: func() (game.Career, error) { return s.loadCareer(id, owner) },
		Listener: game.Listeners{
			s.hub.Listener(id),
			&recorder{s: s, gameID: id, owner: owner},
		},
		Interval: s.cfg.TickInterval,
	})
}

// loadCareer reads the saved career of the game's current owner. It runs
// before the controller takes its lock.
func (s *Server) loadCareer(gameID, owner string) (game.Career, error) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if e, err := s.store.Get(ctx, gameID); err == nil {
		owner = e.Owner
	}
	p, err := s.profiles.Get(ctx, owner)
	return p.Career, err
}

// handleNewGame creates a game, starts its first round and registers it.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req roundReq
	if !decodeOptional(w, r, &req) {
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = defaultDifficulty
	}
	owner := s.playerID(w, r)
	c := s.newController(owner)
	if err := c.Start(game.RoundConfig{Difficulty: req.Difficulty, Category: req.Category, Words: req.Words}); err != nil {
		c.Close()
		writeGameErr(w, err)
		return
	}
	if err := s.store.Save(r.Context(), store.Entry{Owner: owner, Game: c}); err != nil {
		c.Close()
		writeErr(w, http.StatusInternalServerError, "save_failed")
		return
	}
	writeJSON(w, http.StatusCreated, c.Snapshot())
}

// handleRestart starts a fresh round on an existing game. Omitted fields
// keep the current tier and category.
func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request, c *game.Controller) {
	snap := c.Snapshot()
	if snap.Daily != "" {
		writeErr(w, http.StatusConflict, "daily_locked")
		return
	}
	var req roundReq
	if !decodeOptional(w, r, &req) {
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = snap.Difficulty
	}
	if req.Category == "" && len(req.Words) == 0 && snap.Category != "custom" {
		req.Category = snap.Category
	}
	if req.Difficulty != snap.Difficulty && req.Category != "" && req.Category != words.Random {
		// categories belong to a tier
		if _, err := s.catalog.Pool(req.Difficulty, req.Category); err != nil {
			req.Category = words.Random
		}
	}
	if err := c.Start(game.RoundConfig{Difficulty: req.Difficulty, Category: req.Category, Words: req.Words}); err != nil {
		writeGameErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request, c *game.Controller) {
	var req selectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	out, err := c.Select(req.Start, req.End)
	if err != nil {
		writeGameErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBegin(w http.ResponseWriter, r *http.Request, c *game.Controller) {
	var req cellReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	if err := c.BeginSelection(req.Cell); err != nil {
		writeGameErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"selection": c.Snapshot().Selection})
}

func (s *Server) handleExtend(w http.ResponseWriter, r *http.Request, c *game.Controller) {
	var req cellReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	if err := c.ExtendSelection(req.Cell); err != nil {
		writeGameErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"selection": c.Snapshot().Selection})
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request, c *game.Controller) {
	out, err := c.EndSelection()
	if err != nil {
		writeGameErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleHint never fails: an exhausted or finished round reports revealed=false.
func (s *Server) handleHint(w http.ResponseWriter, r *http.Request, c *game.Controller) {
	h, ok := c.Hint()
	res := hintRes{Revealed: ok, HintsLeft: c.Snapshot().HintsLeft}
	if ok {
		res.Hint = &h
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) snapshotAfter(w http.ResponseWriter, c *game.Controller, err error) {
	if err != nil {
		writeGameErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

// handleEvents streams the game's events, starting with a snapshot.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.withGame(func(w http.ResponseWriter, r *http.Request, c *game.Controller) {
		s.hub.ServeWS(w, r, c.ID, &events.Event{Type: events.TypeSnapshot, GameID: c.ID, Data: c.Snapshot()})
	})(w, r)
}

// decodeOptional decodes a JSON body that may be empty.
func decodeOptional(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return false
	}
	return true
}
