// Package host receives binary input commands and applies them to an injector.
package host

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/frudas24/remotemouse/internal/metrics"
	"github.com/frudas24/remotemouse/internal/protocol"
	"github.com/frudas24/remotemouse/internal/wininput"
	"github.com/gorilla/websocket"
)

const (
	// maxMessageSize bounds a single command frame.
	maxMessageSize = 64 << 10
	// DefaultPongWait is how long a silent peer is tolerated.
	DefaultPongWait = 30 * time.Second
)

// Options configures a Server.
type Options struct {
	Logger   *slog.Logger
	Metrics  *metrics.Host
	PongWait time.Duration
}

// Server handles websocket command input from a pad.
type Server struct {
	mu       sync.Mutex
	upgrader websocket.Upgrader
	injector wininput.Injector
	conn     *websocket.Conn
	pongWait time.Duration

	log     *slog.Logger
	metrics *metrics.Host
}

// NewServer creates a host websocket server applying commands to injector.
func NewServer(injector wininput.Injector, opts Options) *Server {
	s := &Server{
		injector: injector,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		pongWait: opts.PongWait,
		log:      opts.Logger,
		metrics:  opts.Metrics,
	}
	if s.pongWait <= 0 {
		s.pongWait = DefaultPongWait
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// ServeHTTP upgrades the connection and applies binary commands until it closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("host: upgrade failed", "err", err)
		return
	}
	s.acceptConn(conn)
	s.metrics.ConnOpened()
	s.log.Info("host: pad connected", "remote", r.RemoteAddr)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(s.pongWait))
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(s.pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	rs := &receiveState{}
	defer s.cleanupConn(conn, rs)

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("host: read ended", "err", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.pongWait))
		if kind != websocket.BinaryMessage {
			continue
		}
		s.handleFrame(rs, data)
	}
}

// receiveState tracks per-connection input that must be released on disconnect.
type receiveState struct {
	dragging bool
}

// handleFrame decodes and applies one frame. Bad frames are logged and skipped.
func (s *Server) handleFrame(rs *receiveState, data []byte) {
	cmd, err := protocol.Decode(data)
	if err != nil {
		s.metrics.DecodeError()
		s.log.Warn("host: bad frame", "len", len(data), "err", err)
		return
	}
	s.metrics.Command(cmd.Op().String())
	if d, ok := cmd.(protocol.Drag); ok {
		rs.dragging = d.Active
	}
	if err := Apply(s.injector, cmd); err != nil {
		s.metrics.ApplyError()
		s.log.Warn("host: apply failed", "op", cmd.Op().String(), "err", err)
	}
}

// acceptConn makes conn the active connection, closing any previous one.
func (s *Server) acceptConn(conn *websocket.Conn) {
	s.mu.Lock()
	prev := s.conn
	s.conn = conn
	s.mu.Unlock()
	if prev != nil {
		s.log.Info("host: replacing previous pad connection")
		_ = prev.Close()
	}
}

// cleanupConn clears the active connection and releases a held drag.
func (s *Server) cleanupConn(conn *websocket.Conn, rs *receiveState) {
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
	}
	s.mu.Unlock()
	_ = conn.Close()
	s.metrics.ConnClosed()
	if rs.dragging {
		if err := s.injector.LeftUp(); err != nil {
			s.log.Warn("host: release drag failed", "err", err)
		}
	}
	s.log.Info("host: pad disconnected")
}

// Connected reports whether a pad connection is active.
func (s *Server) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Apply executes a single decoded command on injector.
func Apply(injector wininput.Injector, cmd protocol.Command) error {
	switch c := cmd.(type) {
	case protocol.Move:
		return injector.MoveRel(c.DX, c.DY)
	case protocol.Click:
		button := c.Button
		if button != protocol.ButtonLeft {
			button = protocol.ButtonRight
		}
		return injector.Click(button, c.Modifiers)
	case protocol.Scroll:
		if c.SX == 0 && c.SY == 0 {
			return nil
		}
		return injector.Scroll(c.SX, c.SY)
	case protocol.Drag:
		if c.Active {
			return injector.LeftDown()
		}
		return injector.LeftUp()
	case protocol.Text:
		if c.Text == "" {
			return nil
		}
		return injector.TypeUnicode(c.Text)
	case protocol.KeyAction:
		if c.Name == "" {
			return errors.New("host: empty key name")
		}
		return injector.PressKey(wininput.NormalizeKey(c.Name), c.Modifiers)
	default:
		return fmt.Errorf("host: unsupported command %T", cmd)
	}
}
