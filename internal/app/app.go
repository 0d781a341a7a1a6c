// Package app wires the touchpad HTTP surface, gesture pipeline and transport together.
package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/frudas24/remotemouse/internal/config"
	"github.com/frudas24/remotemouse/internal/control"
	"github.com/frudas24/remotemouse/internal/discovery"
	"github.com/frudas24/remotemouse/internal/dispatch"
	"github.com/frudas24/remotemouse/internal/metrics"
	"github.com/frudas24/remotemouse/internal/session"
	"github.com/frudas24/remotemouse/internal/transport"
	"github.com/prometheus/client_golang/prometheus"
)

// Options carries the optional collaborators of an App.
type Options struct {
	Logger *slog.Logger
	// Registry receives the pad collectors and backs /metrics. Nil creates one.
	Registry *prometheus.Registry
	// Opener overrides the websocket opener, mainly for tests.
	Opener transport.Opener
}

// App coordinates the control websocket, dispatcher and host transport.
type App struct {
	mu         sync.Mutex
	cfg        config.Config
	log        *slog.Logger
	registry   *prometheus.Registry
	session    *session.Session
	transport  *transport.Transport
	dispatcher *dispatch.Dispatcher
	pad        *control.Pad
	control    *control.Server
	cancel     context.CancelFunc
	done       chan struct{}
}

// New creates a pad application with its dependencies wired.
func New(cfg config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{
		cfg:      cfg,
		log:      opts.Logger,
		registry: opts.Registry,
	}
	if a.log == nil {
		a.log = slog.Default()
	}
	if a.registry == nil {
		a.registry = prometheus.NewRegistry()
	}

	opener := opts.Opener
	if opener == nil {
		opener = &transport.WSOpener{
			PingInterval: cfg.PingInterval(),
			PongWait:     cfg.PongWait(),
			Resolver:     &discovery.Resolver{Logger: a.log.With("component", "discovery")},
		}
	}

	a.session = session.New(cfg.HostURL)
	a.session.SetSensitivity(cfg.Sensitivity)
	a.session.SetScrollSensitivity(cfg.ScrollSensitivity)
	a.session.SetStripSensitivity(cfg.StripSensitivity)

	a.transport = transport.New(transport.Options{
		Opener:         opener,
		ReconnectDelay: cfg.ReconnectDelay(),
		OnStateChange:  a.onStateChange,
		Logger:         a.log.With("component", "transport"),
		Metrics:        metrics.NewTransport(a.registry),
	})
	a.dispatcher = dispatch.New(a.transport, dispatch.Options{
		Logger:  a.log.With("component", "dispatch"),
		Metrics: metrics.NewDispatcher(a.registry),
	})
	a.pad = control.NewPad(a.session, a.dispatcher)
	a.control = control.NewServer(a.session, a.pad, a.log.With("component", "control"))
	return a, nil
}

// Start connects to the host and starts the frame flush loop.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return errors.New("app already started")
	}
	ctx, a.cancel = context.WithCancel(ctx)
	a.done = make(chan struct{})
	go func() {
		defer close(a.done)
		a.dispatcher.Run(ctx, a.cfg.FrameInterval())
	}()
	a.transport.Connect(a.cfg.HostURL)
	return nil
}

// Stop halts the flush loop and closes the host connection. Pending moves are flushed first.
func (a *App) Stop() error {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	a.dispatcher.Drain()
	a.transport.Disconnect()
	return nil
}

// onStateChange mirrors transport state into the session and notifies the page.
// It runs inside the transport and must not call back into it.
func (a *App) onStateChange(state transport.State, status string) {
	a.session.SetConnection(state.String(), status)
	a.log.Info("host connection", "state", state.String(), "status", status)
	if a.control != nil {
		a.control.PushState()
	}
}

// Session returns the runtime session.
func (a *App) Session() *session.Session {
	return a.session
}

// Transport returns the host transport.
func (a *App) Transport() *transport.Transport {
	return a.transport
}

// Dispatcher returns the command dispatcher.
func (a *App) Dispatcher() *dispatch.Dispatcher {
	return a.dispatcher
}

// Pad returns the control message handler.
func (a *App) Pad() *control.Pad {
	return a.pad
}

// Control returns the control websocket handler.
func (a *App) Control() *control.Server {
	return a.control
}
