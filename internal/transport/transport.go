// Package transport keeps one auto-reconnecting message channel to the host.
package transport

import (
	"log/slog"
	"sync"
	"time"

	"github.com/frudas24/remotemouse/internal/metrics"
)

// DefaultReconnectDelay is the fixed wait before reconnecting after a failure.
const DefaultReconnectDelay = 3000 * time.Millisecond

// Status texts reported with state changes.
const (
	StatusConnecting   = "connecting..."
	StatusConnected    = "connected"
	StatusLost         = "connection lost"
	StatusError        = "connection error"
	StatusFailed       = "connection failed"
	StatusDisconnected = "disconnected"
)

// State is the lifecycle state of the connection.
type State int

const (
	// StateDisconnected means no usable channel.
	StateDisconnected State = iota
	// StateConnecting means a channel is being opened.
	StateConnecting
	// StateConnected means sends are forwarded.
	StateConnected
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Channel is an open message-oriented channel.
type Channel interface {
	Send(data []byte) error
	Close() error
}

// Handler receives lifecycle events for one channel.
type Handler interface {
	OnOpen()
	OnError(err error)
	OnClose()
}

// Opener opens channels. Open must not call h before it returns.
type Opener interface {
	Open(url string, h Handler) (Channel, error)
}

// Timer is a pending deferred call.
type Timer interface {
	Stop() bool
}

// Clock schedules deferred calls.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// realClock schedules with the time package.
type realClock struct{}

// AfterFunc wraps time.AfterFunc.
func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// StateFunc is notified on every state transition. It must not call back into
// the Transport.
type StateFunc func(state State, status string)

// Options configures a Transport.
type Options struct {
	Opener         Opener
	ReconnectDelay time.Duration
	OnStateChange  StateFunc
	Clock          Clock
	Logger         *slog.Logger
	Metrics        *metrics.Transport
}

// Transport owns one logical connection and its reconnection timer.
type Transport struct {
	mu sync.Mutex

	opener   Opener
	delay    time.Duration
	onChange StateFunc
	clock    Clock
	log      *slog.Logger
	metrics  *metrics.Transport

	url              string
	ch               Channel
	gen              uint64
	state            State
	status           string
	explicitlyClosed bool

	timer    Timer
	timerSeq uint64
}

// New returns a disconnected Transport.
func New(opts Options) *Transport {
	t := &Transport{
		opener:   opts.Opener,
		delay:    opts.ReconnectDelay,
		onChange: opts.OnStateChange,
		clock:    opts.Clock,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		state:    StateDisconnected,
		status:   StatusDisconnected,
	}
	if t.opener == nil {
		t.opener = &WSOpener{}
	}
	if t.delay <= 0 {
		t.delay = DefaultReconnectDelay
	}
	if t.clock == nil {
		t.clock = realClock{}
	}
	if t.log == nil {
		t.log = slog.Default()
	}
	return t
}

// Connect opens a channel to url, replacing any current one.
func (t *Transport) Connect(url string) {
	t.mu.Lock()
	old := t.connectLocked(url)
	t.mu.Unlock()

	closeQuietly(old)
}

// connectLocked starts an attempt to url and returns the channel it replaced.
func (t *Transport) connectLocked(url string) Channel {
	old := t.detachLocked()
	t.cancelTimerLocked()
	t.explicitlyClosed = false
	t.url = url
	t.setStateLocked(StateConnecting, StatusConnecting)
	t.metrics.ConnectAttempt()

	ch, err := t.opener.Open(url, &attempt{t: t, gen: t.gen})
	if err != nil {
		t.log.Warn("transport: open failed", "url", url, "err", err)
		t.setStateLocked(StateDisconnected, StatusFailed)
		t.scheduleReconnectLocked()
	} else {
		t.ch = ch
	}
	return old
}

// Disconnect closes the channel and stops reconnecting.
func (t *Transport) Disconnect() {
	t.mu.Lock()
	t.explicitlyClosed = true
	t.cancelTimerLocked()
	old := t.detachLocked()
	if t.state != StateDisconnected {
		t.setStateLocked(StateDisconnected, StatusDisconnected)
	}
	t.mu.Unlock()

	closeQuietly(old)
}

// Send forwards data when connected and silently drops it otherwise.
func (t *Transport) Send(data []byte) {
	t.mu.Lock()
	ch := t.ch
	ok := ch != nil && t.state == StateConnected
	t.mu.Unlock()

	if !ok {
		t.metrics.Dropped()
		return
	}
	if err := ch.Send(data); err != nil {
		t.log.Debug("transport: send failed", "err", err)
		t.metrics.Dropped()
		return
	}
	t.metrics.Sent(len(data))
}

// State returns the current state and status text.
func (t *Transport) State() (State, string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state, t.status
}

// URL returns the address of the last Connect call.
func (t *Transport) URL() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.url
}

// ReconnectPending reports whether a reconnection timer is armed.
func (t *Transport) ReconnectPending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

// detachLocked forgets the current channel so its late events are ignored.
func (t *Transport) detachLocked() Channel {
	old := t.ch
	t.ch = nil
	t.gen++
	return old
}

// setStateLocked records a transition and notifies the listener.
func (t *Transport) setStateLocked(state State, status string) {
	t.state = state
	t.status = status
	t.metrics.SetConnected(state == StateConnected)
	t.log.Debug("transport: state", "state", state.String(), "status", status)
	if t.onChange != nil {
		t.onChange(state, status)
	}
}

// scheduleReconnectLocked arms the reconnection timer unless one is pending
// or the connection was closed on purpose.
func (t *Transport) scheduleReconnectLocked() {
	if t.explicitlyClosed || t.timer != nil {
		return
	}
	t.timerSeq++
	seq := t.timerSeq
	t.metrics.ReconnectScheduled()
	t.log.Info("transport: reconnecting", "in", t.delay, "url", t.url)
	t.timer = t.clock.AfterFunc(t.delay, func() { t.fireReconnect(seq) })
}

// cancelTimerLocked stops a pending reconnection timer.
func (t *Transport) cancelTimerLocked() {
	if t.timer == nil {
		return
	}
	t.timer.Stop()
	t.timer = nil
	t.timerSeq++
}

// fireReconnect reconnects when timer seq is still the armed one. The check
// and the new attempt share one critical section so a concurrent Disconnect
// either cancels the reconnect or closes the channel it opened.
func (t *Transport) fireReconnect(seq uint64) {
	t.mu.Lock()
	if seq != t.timerSeq || t.timer == nil || t.explicitlyClosed {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	old := t.connectLocked(t.url)
	t.mu.Unlock()

	closeQuietly(old)
}

// attempt routes channel events for one generation back to the Transport.
type attempt struct {
	t   *Transport
	gen uint64
}

// OnOpen marks the transport connected.
func (a *attempt) OnOpen() {
	t := a.t
	t.mu.Lock()
	defer t.mu.Unlock()
	if a.gen != t.gen {
		return
	}
	t.log.Info("transport: connected", "url", t.url)
	t.setStateLocked(StateConnected, StatusConnected)
}

// OnError marks the transport disconnected and schedules a reconnect.
func (a *attempt) OnError(err error) {
	t := a.t
	t.mu.Lock()
	defer t.mu.Unlock()
	if a.gen != t.gen {
		return
	}
	t.log.Warn("transport: channel error", "url", t.url, "err", err)
	t.setStateLocked(StateDisconnected, StatusError)
	t.scheduleReconnectLocked()
}

// OnClose drops the channel and schedules a reconnect.
func (a *attempt) OnClose() {
	t := a.t
	t.mu.Lock()
	defer t.mu.Unlock()
	if a.gen != t.gen {
		return
	}
	t.ch = nil
	t.setStateLocked(StateDisconnected, StatusLost)
	t.scheduleReconnectLocked()
}

// closeQuietly closes ch when present; close errors carry no meaning here.
func closeQuietly(ch Channel) {
	if ch != nil {
		_ = ch.Close()
	}
}
