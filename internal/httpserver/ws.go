// internal/httpserver/ws.go
//
// Websocket stream at /ws/{id}.
//   - Server → client: a full state snapshot after every session event, plus
//     drop verdicts and error codes.
//   - Client → server: drag, restart, idle and viewport messages.
//
// Each connection runs a read pump on the handler goroutine and a write pump
// with a ping ticker, the usual gorilla/websocket pairing.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/jigsaw/internal/game"
	"github.com/robalobadob/jigsaw/internal/puzzle"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

// wsIn is a client message. Type selects the session operation.
type wsIn struct {
	Type    string  `json:"type"` // drag_start | drag_move | drag_end | restart | idle | viewport | state
	PieceID int     `json:"pieceId"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// wsOut is a server message.
type wsOut struct {
	Type    string          `json:"type"` // state | verdict | error
	Event   *game.Event     `json:"event,omitempty"`
	State   *game.Snapshot  `json:"state,omitempty"`
	Verdict *puzzle.Verdict `json:"verdict,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	sess *game.Session
	send chan []byte
	done chan struct{}
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			o := r.Header.Get("Origin")
			return o == "" || o == s.origin
		},
	}
}

// handleWS streams a snapshot after every session event and accepts input
// messages on the same connection.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess := session(r)
	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("ws upgrade")
		return
	}
	c := &wsClient{conn: conn, sess: sess, send: make(chan []byte, 64), done: make(chan struct{})}
	cancel := sess.Subscribe(c.onEvent)

	go c.writePump()
	snap := sess.Snapshot()
	c.push(wsOut{Type: "state", State: &snap})
	c.readPump()

	cancel()
	close(c.done)
	log.Debug().Str("gameId", sess.ID()).Msg("ws closed")
}

// onEvent runs on whichever goroutine changed the session; it never blocks.
func (c *wsClient) onEvent(ev game.Event) {
	snap := c.sess.Snapshot()
	c.push(wsOut{Type: "state", Event: &ev, State: &snap})
}

func (c *wsClient) push(m wsOut) {
	msg, err := json.Marshal(m)
	if err != nil {
		return
	}
	select {
	case c.send <- msg:
	case <-c.done:
	default:
		// slow reader; the next state message supersedes this one
	}
}

func (c *wsClient) readPump() {
	defer c.conn.Close()
	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var in wsIn
		if err := json.Unmarshal(raw, &in); err != nil {
			c.push(wsOut{Type: "error", Error: "bad_json"})
			continue
		}
		c.handle(in)
	}
}

func (c *wsClient) handle(in wsIn) {
	pointer := puzzle.Point{X: in.X, Y: in.Y}
	var err error
	switch in.Type {
	case "drag_start":
		err = c.sess.DragStart(in.PieceID, pointer)
	case "drag_move":
		err = c.sess.DragMove(in.PieceID, pointer)
	case "drag_end":
		var v puzzle.Verdict
		v, err = c.sess.DragEnd(in.PieceID)
		if err == nil || errors.Is(err, puzzle.ErrPlacementConflict) {
			c.push(wsOut{Type: "verdict", Verdict: &v})
			err = nil
		}
	case "restart":
		c.sess.Touch()
		err = c.sess.Restart()
	case "idle":
		err = c.sess.Idle()
	case "viewport":
		err = c.sess.Resize(puzzle.Size{Width: in.Width, Height: in.Height})
	case "state":
		snap := c.sess.Snapshot()
		c.push(wsOut{Type: "state", State: &snap})
	default:
		c.push(wsOut{Type: "error", Error: "unknown_type"})
		return
	}
	if err != nil {
		_, msg := errorCode(err)
		c.push(wsOut{Type: "error", Error: msg})
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
