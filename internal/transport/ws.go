// Package transport keeps one auto-reconnecting message channel to the host.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Keepalive defaults for websocket channels.
const (
	DefaultPingInterval = 2 * time.Second
	DefaultPongWait     = 8 * time.Second

	writeWait = 5 * time.Second
)

// ErrNotOpen is returned when sending on a channel that is not open yet.
var ErrNotOpen = errors.New("transport: channel not open")

// Resolver rewrites a host name before each dial. It returns host unchanged
// when it has nothing to say about it.
type Resolver interface {
	ResolveHost(ctx context.Context, host string) (string, error)
}

// WSOpener opens websocket channels that carry binary messages.
type WSOpener struct {
	// Dialer is used when set; otherwise a dialer with TCP keepalive is built.
	Dialer *websocket.Dialer
	// Resolver, when set, is consulted by the default dialer on every attempt
	// so a reconnect follows a host whose address changed.
	Resolver Resolver
	// Header is sent with the handshake.
	Header http.Header
	// PingInterval enables client pings; zero uses DefaultPingInterval, negative disables.
	PingInterval time.Duration
	// PongWait is the read deadline refreshed by each pong; zero uses DefaultPongWait.
	PongWait time.Duration
}

// Open validates rawURL and dials it in the background.
func (o *WSOpener) Open(rawURL string, h Handler) (Channel, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &wsChannel{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go c.run(ctx, o.dialer(), u.String(), o.Header, o.pingInterval(), o.pongWait(), h)
	return c, nil
}

// dialer returns the configured dialer or a default one.
func (o *WSOpener) dialer() *websocket.Dialer {
	if o.Dialer != nil {
		return o.Dialer
	}
	nd := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 15 * time.Second,
	}
	return &websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		NetDialContext:   resolvingDial(nd, o.Resolver),
	}
}

// resolvingDial returns nd.DialContext preceded by r on the host part.
func resolvingDial(nd *net.Dialer, r Resolver) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if r == nil {
		return nd.DialContext
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}
		resolved, err := r.ResolveHost(ctx, host)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", host, err)
		}
		return nd.DialContext(ctx, network, net.JoinHostPort(resolved, port))
	}
}

// pingInterval returns the effective ping interval; zero disables pings.
func (o *WSOpener) pingInterval() time.Duration {
	switch {
	case o.PingInterval < 0:
		return 0
	case o.PingInterval == 0:
		return DefaultPingInterval
	default:
		return o.PingInterval
	}
}

// pongWait returns the effective pong wait.
func (o *WSOpener) pongWait() time.Duration {
	if o.PongWait <= 0 {
		return DefaultPongWait
	}
	return o.PongWait
}

// wsChannel is one websocket connection attempt.
type wsChannel struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// run dials, reports open, then reads until the connection fails.
func (c *wsChannel) run(ctx context.Context, d *websocket.Dialer, target string, header http.Header, pingEvery, pongWait time.Duration, h Handler) {
	conn, resp, err := d.DialContext(ctx, target, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		h.OnError(err)
		h.OnClose()
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close()
		h.OnClose()
		return
	}
	c.conn = conn
	c.mu.Unlock()

	// Reading is required for pong and close frames to be processed.
	conn.SetReadLimit(1 << 16)
	if pingEvery > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		go c.pingLoop(conn, pingEvery)
	}

	h.OnOpen()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !c.isClosed() && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.OnError(err)
			}
			break
		}
	}
	_ = conn.Close()
	h.OnClose()
}

// pingLoop sends pings until the channel closes or a write fails.
func (c *wsChannel) pingLoop(conn *websocket.Conn, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-t.C:
			c.mu.Lock()
			err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait))
			c.mu.Unlock()
			if err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}

// Send writes data as one binary message.
func (c *wsChannel) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.closed {
		return ErrNotOpen
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.BinaryMessage, data)
}

// Close aborts a pending dial or closes the open connection.
func (c *wsChannel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.cancel()
		c.mu.Lock()
		c.closed = true
		conn := c.conn
		if conn != nil {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		}
		c.mu.Unlock()
		if conn != nil {
			err = conn.Close()
		}
	})
	return err
}

// isClosed reports whether Close was called.
func (c *wsChannel) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
