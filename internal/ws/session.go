// Package ws bridges websocket connections to room actors. The room core
// is transport-agnostic; this package is the one adapter that speaks the
// wire protocol.
package ws

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"splitroom/internal/displayname"
	"splitroom/internal/room"
)

// Config bounds a connection's IO behavior.
type Config struct {
	WriteTimeout    time.Duration
	PongTimeout     time.Duration
	MaxMessageBytes int64
}

// Session pumps one websocket connection against one room: reads claims
// off the socket, applies them synchronously, and forwards the room's
// broadcast snapshots back out. The gorilla writer is single-threaded, so
// acks and snapshots funnel through one write pump.
type Session struct {
	conn *websocket.Conn
	rm   *room.Room
	cfg  Config
	log  zerolog.Logger

	token string
	sub   *room.Subscriber
}

// Serve runs the session until the client disconnects or the room becomes
// unreachable. It owns conn and closes it on return.
func Serve(conn *websocket.Conn, rm *room.Room, cfg Config, log zerolog.Logger) {
	s := &Session{conn: conn, rm: rm, cfg: cfg, log: log}
	s.run()
}

func (s *Session) run() {
	defer s.conn.Close()

	s.conn.SetReadLimit(s.cfg.MaxMessageBytes)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	})

	// The first frame must be a join.
	var join ClientMessage
	if err := s.conn.ReadJSON(&join); err != nil {
		return
	}
	if join.Type != "join" {
		_ = s.write(ErrorMessage{Type: "error", Code: CodeValidation})
		return
	}

	s.token = join.Token
	if s.token == "" {
		s.token = uuid.NewString()
	}
	sub, st := s.rm.Join(s.token, displayname.Sanitize(join.Name))
	s.sub = sub
	defer s.rm.Leave(sub)

	if !s.write(JoinedMessage{Type: "joined", Token: s.token, Receipt: s.rm.Receipt(), State: st}) {
		return
	}
	s.log.Debug().Str("participant", s.token).Msg("participant joined")

	acks := make(chan AckMessage, 4)
	done := make(chan struct{})
	defer close(done)
	go s.writePump(acks, done)

	for {
		var msg ClientMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug().Err(err).Msg("connection dropped")
			}
			return
		}
		switch msg.Type {
		case "claim", "unclaim":
			select {
			case acks <- s.apply(msg):
			case <-time.After(s.cfg.WriteTimeout):
				return
			}
		case "join":
			// A repeated join on an open connection only updates the name.
			s.rm.Rename(s.token, displayname.Sanitize(msg.Name))
		default:
			select {
			case acks <- AckMessage{Type: "ack", Op: msg.Type, OK: false, Error: CodeValidation}:
			case <-time.After(s.cfg.WriteTimeout):
				return
			}
		}
	}
}

// apply runs one claim/unclaim against the room and shapes the ack. The
// room answers synchronously, so the initiator always learns the outcome
// before any later operation is applied.
func (s *Session) apply(msg ClientMessage) AckMessage {
	ack := AckMessage{Type: "ack", Op: msg.Type, OK: true}
	if msg.Item == nil || msg.Qty == nil {
		ack.OK = false
		ack.Error = CodeValidation
		return ack
	}

	var err error
	if msg.Type == "claim" {
		err = s.rm.Claim(*msg.Item, s.token, *msg.Qty)
	} else {
		err = s.rm.Unclaim(*msg.Item, s.token, *msg.Qty)
	}
	if err != nil {
		ack.OK = false
		ack.Error = errorCode(err)
		var capErr *room.CapacityError
		if errors.As(err, &capErr) {
			remaining := capErr.Remaining
			ack.Remaining = &remaining
		}
	}
	return ack
}

func (s *Session) writePump(acks <-chan AckMessage, done <-chan struct{}) {
	defer s.conn.Close()

	pingPeriod := s.cfg.PongTimeout * 9 / 10
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ack := <-acks:
			if !s.write(ack) {
				return
			}
		case st := <-s.sub.States():
			if !s.write(StateMessage{Type: "state", State: st}) {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (s *Session) write(v any) bool {
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	return s.conn.WriteJSON(v) == nil
}
