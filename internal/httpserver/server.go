// apps/go-server/internal/httpserver/server.go
//
// HTTP server wiring for the Word Search backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/difficulties", "/categories".
//   - Game endpoints (optional auth): /game/new, /game/{id}/...
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile endpoints: /auth/*, /profile/*, /games/mine.
//   - Background bookkeeping: persisting finished rounds, sweeping idle games.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Guests are identified by an anonymous cookie; signing in claims their
//     profile, history and daily results.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordsearch/apps/go-server/internal/daily"
	"github.com/robalobadob/wordsearch/apps/go-server/internal/events"
	"github.com/robalobadob/wordsearch/apps/go-server/internal/game"
	"github.com/robalobadob/wordsearch/apps/go-server/internal/profile"
	"github.com/robalobadob/wordsearch/apps/go-server/internal/store"
	"github.com/robalobadob/wordsearch/apps/go-server/internal/words"
)

// Config holds the environment-driven server settings.
type Config struct {
	JWTSecret    string
	JWTExpiry    time.Duration
	CookieName   string
	ClientOrigin string
	Production   bool
	DailySalt    string
	TickInterval time.Duration // zero disables background countdowns
}

// ConfigFromEnv reads Config from the process environment.
func ConfigFromEnv() Config {
	days, err := strconv.Atoi(getEnv("JWT_EXPIRES_DAYS", "14"))
	if err != nil || days <= 0 {
		days = 14
	}
	tick := game.DefaultTickInterval
	if v := os.Getenv("TICK_INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			tick = time.Duration(ms) * time.Millisecond
		}
	}
	return Config{
		JWTSecret:    getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTExpiry:    time.Duration(days) * 24 * time.Hour,
		CookieName:   getEnv("COOKIE_NAME", "wordsearch_token"),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		Production:   os.Getenv("NODE_ENV") == "production",
		DailySalt:    getEnv("DAILY_SALT", "local_dev_salt"),
		TickInterval: tick,
	}
}

// Server bundles router, live game registry, and DB-backed stores.
type Server struct {
	r   *chi.Mux
	cfg Config

	store    store.Store
	db       *sql.DB
	catalog  *words.Catalog
	hub      *events.Hub
	profiles *profile.Store
	daily    *daily.Store
	dailies  dailyGames

	pending sync.WaitGroup   // in-flight round persistence
	today   func() time.Time // picks the daily puzzle date
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg Config, st store.Store, db *sql.DB, catalog *words.Catalog) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		cfg:      cfg,
		store:    st,
		db:       db,
		catalog:  catalog,
		hub:      events.NewHub(cfg.ClientOrigin),
		profiles: profile.NewStore(db),
		daily:    daily.NewStore(db),
		dailies:  dailyGames{games: make(map[string]string)},
		today:    time.Now,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(s.cors)

	// The event stream is long-lived; mount it before the timeout and JSON middleware.
	s.r.With(s.withOptionalAuth()).Get("/game/{id}/events", s.handleEvents)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Use(jsonContentType)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"service":   "wordsearch-go",
				"endpoints": []string{"/health", "POST /game/new", "/game/{id}", "/daily/*", "/auth/*", "/profile/*"},
			})
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true, "games": s.store.Len()})
		})
		r.Get("/difficulties", s.handleDifficulties)
		r.Get("/categories", s.handleCategories)

		// Guests can play; signed-in players get their profile carried over.
		r.Group(func(r chi.Router) {
			r.Use(s.withOptionalAuth())
			s.mountGame(r)
			s.mountDaily(r)
			s.mountProfile(r)
		})

		s.mountAuth(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Wait blocks until every finished round has been persisted.
func (s *Server) Wait() { s.pending.Wait() }

// Shutdown closes every live game, so no countdown can end a round any
// more, then waits for pending persistence. Call it after the HTTP server
// has stopped accepting requests.
func (s *Server) Shutdown() {
	// Against a far-off instant every game counts as idle.
	s.sweep(time.Now().Add(24*time.Hour), 0)
	s.Wait()
}

// Janitor drops games idle for longer than maxIdle, checking every interval,
// until ctx is done.
func (s *Server) Janitor(ctx context.Context, every, maxIdle time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.sweep(now, maxIdle)
		}
	}
}

func (s *Server) sweep(now time.Time, maxIdle time.Duration) {
	ids := s.store.Sweep(now, maxIdle)
	for _, id := range ids {
		s.hub.Close(id)
	}
	s.dailies.forget(ids)
	if len(ids) > 0 {
		log.Info().Int("count", len(ids)).Msg("swept idle games")
	}
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.ClientOrigin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request with zerolog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// ------------------------------- catalog -----------------------------------

func (s *Server) handleDifficulties(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, game.Difficulties)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	d := r.URL.Query().Get("difficulty")
	if d == "" {
		out := map[string][]string{}
		for _, diff := range game.Difficulties {
			out[diff.Name] = s.catalog.Categories(diff.Name)
		}
		writeJSON(w, http.StatusOK, out)
		return
	}
	if _, err := game.LookupDifficulty(d); err != nil {
		writeErr(w, http.StatusBadRequest, "unknown_difficulty")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"difficulty": d, "categories": s.catalog.Categories(d)})
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}

func writeErr(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// writeGameErr maps engine and catalog errors onto HTTP statuses.
func writeGameErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrNotPlaying), errors.Is(err, game.ErrRoundInProgress):
		writeErr(w, http.StatusConflict, "not_playing")
	case errors.Is(err, game.ErrNoSelection):
		writeErr(w, http.StatusConflict, "no_selection")
	case errors.Is(err, game.ErrOutOfBounds):
		writeErr(w, http.StatusBadRequest, "out_of_bounds")
	case errors.Is(err, game.ErrUnknownDifficulty), errors.Is(err, words.ErrUnknownDifficulty):
		writeErr(w, http.StatusBadRequest, "unknown_difficulty")
	case errors.Is(err, words.ErrUnknownCategory):
		writeErr(w, http.StatusBadRequest, "unknown_category")
	case errors.Is(err, game.ErrNoWords), errors.Is(err, words.ErrNotEnoughWords):
		writeErr(w, http.StatusUnprocessableEntity, "no_words")
	default:
		log.Error().Err(err).Msg("game error")
		writeErr(w, http.StatusInternalServerError, "server_error")
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
