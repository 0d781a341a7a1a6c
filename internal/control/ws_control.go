// Package control turns touchpad pointer events into remote input commands.
package control

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/frudas24/remotemouse/internal/session"
	"github.com/gorilla/websocket"
)

const writeWait = time.Second

// ErrConnActive is returned when a second touchpad connects.
var ErrConnActive = errors.New("control connection already active")

// StateMessage is pushed to the page whenever the session snapshot changes.
type StateMessage struct {
	T string `json:"t"`
	session.Snapshot
}

// Server handles websocket control input from the touchpad page.
type Server struct {
	mu       sync.Mutex
	upgrader websocket.Upgrader
	session  *session.Session
	pad      *Pad
	conn     *websocket.Conn
	notify   chan struct{}
	log      *slog.Logger
}

// NewServer creates a control websocket server feeding pad.
func NewServer(sess *session.Session, pad *Pad, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		session: sess,
		pad:     pad,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: logger,
	}
}

// ServeHTTP upgrades the connection and processes control messages.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("control: upgrade failed", "err", err)
		return
	}
	notify, err := s.acceptConn(conn)
	if err != nil {
		s.log.Info("control: rejected connection", "remote", r.RemoteAddr, "err", err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	s.log.Info("control: touchpad connected", "remote", r.RemoteAddr)

	done := make(chan struct{})
	defer s.cleanupConn(conn, done)
	go s.writeLoop(conn, notify, done)
	s.PushState()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		s.pad.Handle(msg)
		if msg.changesState() {
			s.PushState()
		}
	}
}

// PushState schedules a state message for the connected page. Calls never block.
func (s *Server) PushState() {
	s.mu.Lock()
	notify := s.notify
	s.mu.Unlock()
	if notify == nil {
		return
	}
	select {
	case notify <- struct{}{}:
	default:
	}
}

// writeLoop sends the latest snapshot each time PushState fires.
func (s *Server) writeLoop(conn *websocket.Conn, notify <-chan struct{}, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-notify:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			msg := StateMessage{T: MsgState, Snapshot: s.session.Snapshot()}
			if err := conn.WriteJSON(msg); err != nil {
				s.log.Debug("control: state push failed", "err", err)
				return
			}
		}
	}
}

// acceptConn ensures only one active control connection exists.
func (s *Server) acceptConn(conn *websocket.Conn) (chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return nil, ErrConnActive
	}
	s.conn = conn
	s.notify = make(chan struct{}, 1)
	return s.notify, nil
}

// cleanupConn clears the active connection and drops any contacts it left behind.
func (s *Server) cleanupConn(conn *websocket.Conn, done chan struct{}) {
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
		s.notify = nil
	}
	s.mu.Unlock()
	close(done)
	_ = conn.Close()
	s.pad.Reset()
	s.log.Info("control: touchpad disconnected")
}
