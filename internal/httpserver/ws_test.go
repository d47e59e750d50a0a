package httpserver

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/robalobadob/jigsaw/internal/game"
)

func readOut(t *testing.T, conn *websocket.Conn) wsOut {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var m wsOut
	if err := conn.ReadJSON(&m); err != nil {
		t.Fatalf("read: %v", err)
	}
	return m
}

func TestWebsocketStream(t *testing.T) {
	f := newFixture(t)
	g := f.newGame(t, nil)
	srv := httptest.NewServer(f.srv.Router())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + g.GameID
	if _, _, err := websocket.DefaultDialer.Dial(url, nil); err == nil {
		t.Fatal("dial without token succeeded")
	}

	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+g.Token, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	first := readOut(t, conn)
	if first.Type != "state" || first.State == nil || first.State.Phase != game.PhasePreview {
		t.Fatalf("first message = %+v", first)
	}

	if err := conn.WriteJSON(wsIn{Type: "drag_start", PieceID: 0}); err != nil {
		t.Fatal(err)
	}
	if m := readOut(t, conn); m.Type != "error" || m.Error != "wrong_phase" {
		t.Fatalf("drag in preview = %+v", m)
	}

	if err := conn.WriteJSON(wsIn{Type: "bogus"}); err != nil {
		t.Fatal(err)
	}
	if m := readOut(t, conn); m.Type != "error" || m.Error != "unknown_type" {
		t.Fatalf("unknown type = %+v", m)
	}

	f.sched.Advance(time.Second)
	m := readOut(t, conn)
	if m.Type != "state" || m.Event == nil || m.Event.Kind != game.EventPhase || m.State.Phase != game.PhasePlaying {
		t.Fatalf("pushed state = %+v", m)
	}
}
