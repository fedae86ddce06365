package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordsearch/apps/go-server/internal/game"
	"github.com/robalobadob/wordsearch/apps/go-server/internal/profile"
)

// profileRes is returned by GET /profile/me.
type profileRes struct {
	profile.Profile
	User    *authUser          `json:"user,omitempty"`
	Catalog []game.Achievement `json:"achievementCatalog"`
	Themes  []string           `json:"themes"`
}

func (s *Server) mountProfile(r chi.Router) {
	r.Get("/profile/me", s.handleProfile)
	r.Put("/profile/prefs", s.handlePrefs)
	r.Get("/games/mine", s.handleHistory)
}

// handleProfile returns the caller's career, preferences and the
// achievement catalog to render them against.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.profiles.Get(r.Context(), s.playerID(w, r))
	if err != nil {
		log.Error().Err(err).Msg("load profile")
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, profileRes{
		Profile: p,
		User:    userFrom(r.Context()),
		Catalog: game.Achievements(),
		Themes:  profile.Themes,
	})
}

func (s *Server) handlePrefs(w http.ResponseWriter, r *http.Request) {
	var req profile.Prefs
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	p, err := s.profiles.SavePrefs(r.Context(), s.playerID(w, r), req)
	if errors.Is(err, profile.ErrUnknownTheme) {
		writeErr(w, http.StatusBadRequest, "unknown_theme")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("save prefs")
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleHistory lists the caller's finished rounds, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rounds, err := s.profiles.Rounds(r.Context(), s.playerID(w, r), min(limit, 200))
	if err != nil {
		log.Error().Err(err).Msg("list rounds")
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, rounds)
}
