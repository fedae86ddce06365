// apps/go-server/internal/events/hub.go
//
// Hub fans round events out to WebSocket clients.
//
// Responsibilities:
//   - Adapt game.Listener callbacks into JSON events, one stream per game id.
//   - Track connected clients per game; slow clients miss messages instead of
//     stalling the round (the listener runs while the round is locked).
//   - Serve the stream over gorilla/websocket with ping/pong keepalive.

package events

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordsearch/apps/go-server/internal/game"
	"github.com/robalobadob/wordsearch/apps/go-server/internal/grid"
)

const (
	clientBuffer = 32
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
)

// Event types, one per listener callback plus the initial snapshot.
const (
	TypeSnapshot         = "snapshot"
	TypeGridReady        = "grid_ready"
	TypeSelectionChanged = "selection_changed"
	TypeWordFound        = "word_found"
	TypeWordMissed       = "word_missed"
	TypeHintRevealed     = "hint_revealed"
	TypeTick             = "tick"
	TypeRoundEnded       = "round_ended"
)

// Event is one frame on the wire.
type Event struct {
	Type   string `json:"type"`
	GameID string `json:"gameId"`
	Data   any    `json:"data,omitempty"`
}

type client struct {
	ch     chan []byte
	gameID string
}

// Hub is safe for concurrent use.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}

	upgrader websocket.Upgrader
}

// NewHub accepts WebSocket handshakes from origin ("*" allows any).
func NewHub(origin string) *Hub {
	h := &Hub{clients: make(map[*client]struct{})}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			o := r.Header.Get("Origin")
			return o == "" || origin == "*" || o == origin
		},
	}
	return h
}

func (h *Hub) register(gameID string) *client {
	c := &client{ch: make(chan []byte, clientBuffer), gameID: gameID}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.ch)
	}
	h.mu.Unlock()
}

// Publish sends ev to every client of its game without blocking.
func (h *Hub) Publish(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("type", ev.Type).Msg("marshal event")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.gameID != ev.GameID {
			continue
		}
		select {
		case c.ch <- data:
		default:
			// slow client
		}
	}
}

// ClientCount returns the number of connected clients for a game.
func (h *Hub) ClientCount(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for c := range h.clients {
		if c.gameID == gameID {
			n++
		}
	}
	return n
}

// Close disconnects every client of a game.
func (h *Hub) Close(gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.gameID == gameID {
			delete(h.clients, c)
			close(c.ch)
		}
	}
}

// ServeWS upgrades the request and streams gameID's events until either
// side goes away. hello, when non-nil, is sent first.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, gameID string, hello *Event) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	c := h.register(gameID)
	defer h.unregister(c)

	// Reader: only pongs and close frames are expected.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if hello != nil {
		data, err := json.Marshal(hello)
		if err == nil {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-done:
			return
		case msg, ok := <-c.ch:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Listener returns a game.Listener publishing to gameID's stream.
func (h *Hub) Listener(gameID string) game.Listener {
	return &listener{hub: h, gameID: gameID}
}

type listener struct {
	hub    *Hub
	gameID string
}

func (l *listener) publish(typ string, data any) {
	l.hub.Publish(Event{Type: typ, GameID: l.gameID, Data: data})
}

func (l *listener) GridReady(g *grid.Grid, words []string) {
	l.publish(TypeGridReady, map[string]any{"size": g.Size, "grid": g.Rows(), "words": words})
}

func (l *listener) SelectionChanged(path []grid.Cell) {
	l.publish(TypeSelectionChanged, map[string]any{"path": path})
}

func (l *listener) WordFound(word string, score int, combo float64) {
	l.publish(TypeWordFound, map[string]any{"word": word, "score": score, "combo": combo})
}

func (l *listener) WordMissed() { l.publish(TypeWordMissed, nil) }

func (l *listener) HintRevealed(word string, cells []grid.Cell) {
	l.publish(TypeHintRevealed, map[string]any{"word": word, "cells": cells})
}

func (l *listener) Tick(secondsRemaining int) {
	l.publish(TypeTick, map[string]int{"timeLeft": secondsRemaining})
}

func (l *listener) RoundEnded(r game.Result) { l.publish(TypeRoundEnded, r) }
