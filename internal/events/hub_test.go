package events

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/robalobadob/wordsearch/apps/go-server/internal/game"
)

func TestPublishOnlyReachesSameGame(t *testing.T) {
	h := NewHub("*")
	c1 := h.register("g1")
	c2 := h.register("g2")
	defer h.unregister(c1)
	defer h.unregister(c2)

	h.Listener("g1").WordMissed()

	select {
	case msg := <-c1.ch:
		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			t.Fatal(err)
		}
		if ev.Type != TypeWordMissed || ev.GameID != "g1" {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("g1 client did not receive event")
	}

	select {
	case <-c2.ch:
		t.Fatal("g2 client received g1 event")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestSlowClientDoesNotBlock(t *testing.T) {
	h := NewHub("*")
	c := h.register("g1")
	defer h.unregister(c)

	l := h.Listener("g1")
	done := make(chan struct{})
	go func() {
		for i := range clientBuffer * 3 {
			l.Tick(i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full client")
	}
	if len(c.ch) != clientBuffer {
		t.Fatalf("expected a full buffer, got %d", len(c.ch))
	}
}

func TestCloseAndDoubleUnregister(t *testing.T) {
	h := NewHub("*")
	c := h.register("g1")
	h.register("g1")
	if n := h.ClientCount("g1"); n != 2 {
		t.Fatalf("expected 2 clients, got %d", n)
	}
	h.Close("g1")
	if n := h.ClientCount("g1"); n != 0 {
		t.Fatalf("expected 0 clients after close, got %d", n)
	}
	h.unregister(c) // must not panic on a closed channel
}

func TestServeWSStreamsEvents(t *testing.T) {
	h := NewHub("*")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeWS(w, r, "g1", &Event{Type: TypeSnapshot, GameID: "g1", Data: map[string]int{"timeLeft": 90}})
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatal(err)
	}
	if ev.Type != TypeSnapshot {
		t.Fatalf("expected snapshot first, got %s", ev.Type)
	}

	// The hello is written after registration, so publishing now reaches us.
	h.Listener("g1").RoundEnded(game.Result{Outcome: game.StateCompleted, FinalScore: 148})
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatal(err)
	}
	if ev.Type != TypeRoundEnded {
		t.Fatalf("expected round_ended, got %s", ev.Type)
	}
	data, _ := ev.Data.(map[string]any)
	if data["finalScore"] != float64(148) {
		t.Fatalf("unexpected payload %v", ev.Data)
	}

	// Closing the game ends the stream with a close frame.
	h.Close("g1")
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("expected normal close, got %v", err)
	}
}

func TestServeWSRejectsForeignOrigin(t *testing.T) {
	h := NewHub("http://localhost:5173")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeWS(w, r, "g1", nil)
	}))
	defer srv.Close()

	hdr := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), hdr)
	if err == nil {
		t.Fatal("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", resp)
	}
}
